package ppx

/// A circle shape with a local center offset.
type CircleShape struct {
	Center Vec2
	Radius float64
}

func MakeCircleShape(radius float64) CircleShape {
	return CircleShape{
		Center: MakeVec2(0.0, 0.0),
		Radius: radius,
	}
}

func NewCircleShape(radius float64) *CircleShape {
	res := MakeCircleShape(radius)
	return &res
}

func (shape CircleShape) GetType() uint8 {
	return ShapeType.E_circle
}

func (shape CircleShape) Support(xf Transform2D, dir Vec2) Vec2 {
	center := TransformVec2Mul(xf, shape.Center)
	d := dir
	if d.Normalize() == 0.0 {
		d = MakeVec2(1.0, 0.0)
	}
	return Vec2Add(center, Vec2MulScalar(shape.Radius, d))
}

func (shape CircleShape) ComputeAABB(xf Transform2D) AABB {
	center := TransformVec2Mul(xf, shape.Center)
	r := MakeVec2(shape.Radius, shape.Radius)
	return MakeAABB(Vec2Sub(center, r), Vec2Add(center, r))
}

func (shape CircleShape) ComputeInertia(mass float64) float64 {
	return mass * (0.5*shape.Radius*shape.Radius + Vec2Dot(shape.Center, shape.Center))
}

func (shape CircleShape) Clone() Shape {
	clone := shape
	return &clone
}
