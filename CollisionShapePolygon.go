package ppx

import (
	"fmt"
)

/// A convex polygon. Vertices are stored counter-clockwise in the body's
/// local frame, re-centered so the centroid sits at the local origin.
type PolygonShape struct {
	Vertices []Vec2
	Normals  []Vec2
}

/// Build a polygon from an ordered vertex list. The list must hold at least
/// three counter-clockwise vertices forming a strictly convex loop.
func MakePolygonShape(vertices []Vec2) (PolygonShape, error) {
	if len(vertices) < 3 {
		return PolygonShape{}, fmt.Errorf("%w: polygon needs at least 3 vertices, got %d", ErrInvalidSpecs, len(vertices))
	}

	if len(vertices) > MaxPolygonVertices {
		return PolygonShape{}, fmt.Errorf("%w: polygon exceeds %d vertices", ErrInvalidSpecs, MaxPolygonVertices)
	}

	for _, v := range vertices {
		if !v.IsValid() {
			return PolygonShape{}, fmt.Errorf("%w: polygon vertex is not finite", ErrInvalidSpecs)
		}
	}

	n := len(vertices)
	for i := 0; i < n; i++ {
		prev := vertices[(i+n-1)%n]
		curr := vertices[i]
		next := vertices[(i+1)%n]
		cross := Vec2Cross(Vec2Sub(curr, prev), Vec2Sub(next, curr))
		if cross <= Epsilon {
			return PolygonShape{}, fmt.Errorf("%w: polygon is not strictly convex and counter-clockwise", ErrInvalidSpecs)
		}
	}

	centroid := polygonCentroid(vertices)
	shape := PolygonShape{
		Vertices: make([]Vec2, n),
		Normals:  make([]Vec2, n),
	}
	for i := 0; i < n; i++ {
		shape.Vertices[i] = Vec2Sub(vertices[i], centroid)
	}
	for i := 0; i < n; i++ {
		edge := Vec2Sub(shape.Vertices[(i+1)%n], shape.Vertices[i])
		normal := MakeVec2(edge.Y, -edge.X)
		normal.Normalize()
		shape.Normals[i] = normal
	}
	return shape, nil
}

func NewPolygonShape(vertices []Vec2) (*PolygonShape, error) {
	res, err := MakePolygonShape(vertices)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

/// Build an axis-aligned box with the given half-extents.
func MakeBoxShape(hx, hy float64) PolygonShape {
	shape, err := MakePolygonShape([]Vec2{
		MakeVec2(-hx, -hy),
		MakeVec2(hx, -hy),
		MakeVec2(hx, hy),
		MakeVec2(-hx, hy),
	})
	Assert(err == nil)
	return shape
}

func polygonCentroid(vertices []Vec2) Vec2 {
	c := MakeVec2(0.0, 0.0)
	area := 0.0

	// The reference point keeps the cross products well conditioned.
	ref := vertices[0]
	const inv3 = 1.0 / 3.0

	for i := 1; i+1 < len(vertices); i++ {
		e1 := Vec2Sub(vertices[i], ref)
		e2 := Vec2Sub(vertices[i+1], ref)
		d := Vec2Cross(e1, e2)

		triangleArea := 0.5 * d
		area += triangleArea

		center := Vec2MulScalar(inv3, Vec2Add(e1, e2))
		c.OperatorPlusInplace(Vec2MulScalar(triangleArea, center))
	}

	Assert(area > Epsilon)
	c.OperatorScalarMulInplace(1.0 / area)
	return Vec2Add(c, ref)
}

func (shape PolygonShape) GetType() uint8 {
	return ShapeType.E_polygon
}

func (shape PolygonShape) Support(xf Transform2D, dir Vec2) Vec2 {
	// The local-frame direction avoids transforming every vertex.
	localDir := RotVec2MulT(xf.Q, dir)

	best := 0
	bestDot := Vec2Dot(shape.Vertices[0], localDir)
	for i := 1; i < len(shape.Vertices); i++ {
		d := Vec2Dot(shape.Vertices[i], localDir)
		if d > bestDot {
			bestDot = d
			best = i
		}
	}
	return TransformVec2Mul(xf, shape.Vertices[best])
}

func (shape PolygonShape) ComputeAABB(xf Transform2D) AABB {
	lower := TransformVec2Mul(xf, shape.Vertices[0])
	upper := lower
	for i := 1; i < len(shape.Vertices); i++ {
		v := TransformVec2Mul(xf, shape.Vertices[i])
		lower = Vec2Min(lower, v)
		upper = Vec2Max(upper, v)
	}
	return MakeAABB(lower, upper)
}

func (shape PolygonShape) ComputeInertia(mass float64) float64 {
	// Standard polygon second moment about the centroid, which is the local
	// origin after construction.
	numerator := 0.0
	denominator := 0.0
	n := len(shape.Vertices)
	for i := 0; i < n; i++ {
		v1 := shape.Vertices[i]
		v2 := shape.Vertices[(i+1)%n]
		cross := Vec2Cross(v1, v2)
		numerator += cross * (Vec2Dot(v1, v1) + Vec2Dot(v1, v2) + Vec2Dot(v2, v2))
		denominator += cross
	}
	Assert(denominator > Epsilon)
	return mass * numerator / (6.0 * denominator)
}

func (shape PolygonShape) Clone() Shape {
	clone := PolygonShape{
		Vertices: make([]Vec2, len(shape.Vertices)),
		Normals:  make([]Vec2, len(shape.Normals)),
	}
	copy(clone.Vertices, shape.Vertices)
	copy(clone.Normals, shape.Normals)
	return &clone
}

/// World-space vertices under a transform, appended to out.
func (shape PolygonShape) WorldVertices(xf Transform2D, out []Vec2) []Vec2 {
	for _, v := range shape.Vertices {
		out = append(out, TransformVec2Mul(xf, v))
	}
	return out
}
