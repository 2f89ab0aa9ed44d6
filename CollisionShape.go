package ppx

var ShapeType = struct {
	E_circle  uint8
	E_polygon uint8
}{
	E_circle:  0,
	E_polygon: 1,
}

/// A convex shape attached to a body, expressed in the body's local frame.
/// World-space queries take the owning body's transform.
type Shape interface {
	GetType() uint8

	/// Get the world point of the shape furthest along the given direction:
	/// support(d) = argmax over the shape of dot(v, d).
	Support(xf Transform2D, dir Vec2) Vec2

	/// Compute the world-space AABB of the shape under a transform.
	ComputeAABB(xf Transform2D) AABB

	/// Moment of inertia about the local centroid for the given mass.
	ComputeInertia(mass float64) float64

	Clone() Shape
}

/// A cheap pre-filter over cached world AABBs.
func MayIntersect(a, b AABB) bool {
	return TestOverlapBoundingBoxes(a, b)
}

/// Exact point containment test in world space.
func ShapeContainsPoint(shape Shape, xf Transform2D, point Vec2) bool {
	switch sh := shape.(type) {
	case *CircleShape:
		center := TransformVec2Mul(xf, sh.Center)
		return Vec2DistanceSquared(center, point) <= sh.Radius*sh.Radius
	case *PolygonShape:
		local := TransformVec2MulT(xf, point)
		for i := range sh.Vertices {
			if Vec2Dot(sh.Normals[i], Vec2Sub(local, sh.Vertices[i])) > 0.0 {
				return false
			}
		}
		return true
	default:
		return false
	}
}
