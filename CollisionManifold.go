package ppx

/// A temporary record of one detected overlap between two bodies. Touch
/// points are world-space, one pair per manifold slot, and satisfy
/// touch1 = touch2 + MTV. The MTV points from body 1 toward body 2.
type Collision2D struct {
	Index1, Index2 int
	ID1, ID2       uint64

	Touch1, Touch2 [MaxManifoldPoints]Vec2
	ManifoldCount  int

	MTV   Vec2
	Valid bool
}

/// The unit penetration normal, pointing from body 1 toward body 2.
func (c Collision2D) Normal() Vec2 {
	n := c.MTV
	n.Normalize()
	return n
}

func (c Collision2D) Depth() float64 {
	return c.MTV.Length()
}

/// Analytic circle-circle test. Exactly touching circles do not collide.
func CollideCircles(c1 *CircleShape, xf1 Transform2D, c2 *CircleShape, xf2 Transform2D) (Vec2, Vec2, Vec2, bool) {
	center1 := TransformVec2Mul(xf1, c1.Center)
	center2 := TransformVec2Mul(xf2, c2.Center)

	delta := Vec2Sub(center2, center1)
	dist := delta.Length()
	radiiSum := c1.Radius + c2.Radius
	if dist >= radiiSum || dist < Epsilon {
		return Vec2{}, Vec2{}, Vec2{}, false
	}

	normal := Vec2MulScalar(1.0/dist, delta)
	depth := radiiSum - dist

	touch1 := Vec2Add(center1, Vec2MulScalar(c1.Radius, normal))
	touch2 := Vec2Sub(center2, Vec2MulScalar(c2.Radius, normal))
	return touch1, touch2, Vec2MulScalar(depth, normal), true
}

type clipVertex struct {
	v Vec2
}

/// Sutherland-Hodgman style clip of a two point segment against the half
/// plane dot(normal, p) - offset <= 0. Returns the number of output points.
func clipSegmentToLine(vOut *[2]clipVertex, vIn [2]clipVertex, normal Vec2, offset float64) int {
	count := 0

	distance0 := Vec2Dot(normal, vIn[0].v) - offset
	distance1 := Vec2Dot(normal, vIn[1].v) - offset

	if distance0 <= 0.0 {
		vOut[count] = vIn[0]
		count++
	}
	if distance1 <= 0.0 {
		vOut[count] = vIn[1]
		count++
	}

	if distance0*distance1 < 0.0 {
		interp := distance0 / (distance0 - distance1)
		vOut[count].v = Vec2Add(vIn[0].v, Vec2MulScalar(interp, Vec2Sub(vIn[1].v, vIn[0].v)))
		count++
	}

	return count
}

/// Build up to two contact points for a polygon-polygon overlap by clipping
/// the incident face against the side planes of the reference face. The MTV
/// must point from poly 1 toward poly 2. Returns the points lying on body 2
/// and the manifold count.
func PolygonContactPoints(p1 *PolygonShape, xf1 Transform2D, p2 *PolygonShape, xf2 Transform2D, mtv Vec2) ([MaxManifoldPoints]Vec2, int) {
	var out [MaxManifoldPoints]Vec2

	normal := mtv
	if normal.Normalize() == 0.0 {
		return out, 0
	}

	// Reference face: the face of poly 1 most aligned with the normal.
	refIndex := 0
	refBest := -MaxFloat
	for i := range p1.Normals {
		d := Vec2Dot(RotVec2Mul(xf1.Q, p1.Normals[i]), normal)
		if d > refBest {
			refBest = d
			refIndex = i
		}
	}

	// Incident face: the face of poly 2 most anti-parallel to the normal.
	incIndex := 0
	incBest := MaxFloat
	for i := range p2.Normals {
		d := Vec2Dot(RotVec2Mul(xf2.Q, p2.Normals[i]), normal)
		if d < incBest {
			incBest = d
			incIndex = i
		}
	}

	refV1 := TransformVec2Mul(xf1, p1.Vertices[refIndex])
	refV2 := TransformVec2Mul(xf1, p1.Vertices[(refIndex+1)%len(p1.Vertices)])
	refNormal := RotVec2Mul(xf1.Q, p1.Normals[refIndex])

	incident := [2]clipVertex{
		{v: TransformVec2Mul(xf2, p2.Vertices[incIndex])},
		{v: TransformVec2Mul(xf2, p2.Vertices[(incIndex+1)%len(p2.Vertices)])},
	}

	tangent := Vec2Sub(refV2, refV1)
	if tangent.Normalize() == 0.0 {
		return out, 0
	}

	var clipped1, clipped2 [2]clipVertex
	if clipSegmentToLine(&clipped1, incident, tangent.OperatorNegate(), -Vec2Dot(tangent, refV1)) < 2 {
		return out, 0
	}
	if clipSegmentToLine(&clipped2, clipped1, tangent, Vec2Dot(tangent, refV2)) < 2 {
		return out, 0
	}

	count := 0
	for i := 0; i < 2; i++ {
		separation := Vec2Dot(refNormal, Vec2Sub(clipped2[i].v, refV1))
		if separation <= 0.0 && count < MaxManifoldPoints {
			out[count] = clipped2[i].v
			count++
		}
	}
	return out, count
}

/// Contact points for a pair where at least one shape is a circle, given the
/// MTV from GJK/EPA. A single manifold point is produced.
func MixedContactPoints(sh1 Shape, xf1 Transform2D, sh2 Shape, xf2 Transform2D, mtv Vec2) (Vec2, Vec2, bool) {
	normal := mtv
	if normal.Normalize() == 0.0 {
		return Vec2{}, Vec2{}, false
	}

	if circle, ok := sh1.(*CircleShape); ok {
		touch1 := circle.Support(xf1, normal)
		return touch1, Vec2Sub(touch1, mtv), true
	}

	touch2 := sh2.Support(xf2, normal.OperatorNegate())
	return Vec2Add(touch2, mtv), touch2, true
}
