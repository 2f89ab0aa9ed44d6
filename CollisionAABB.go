package ppx

/// An axis aligned bounding box.
type AABB struct {
	Min, Max Vec2
}

func MakeAABB(min, max Vec2) AABB {
	return AABB{Min: min, Max: max}
}

/// A degenerate box enclosing a single point; used for point queries.
func MakeAABBFromPoint(point Vec2) AABB {
	return AABB{Min: point, Max: point}
}

/// Verify that the bounds are sorted and finite.
func (bb AABB) IsValid() bool {
	d := Vec2Sub(bb.Max, bb.Min)
	valid := d.X >= 0.0 && d.Y >= 0.0
	return valid && bb.Min.IsValid() && bb.Max.IsValid()
}

/// Get the center of the AABB.
func (bb AABB) GetCenter() Vec2 {
	return Vec2MulScalar(0.5, Vec2Add(bb.Min, bb.Max))
}

/// Get the extents of the AABB (half-widths).
func (bb AABB) GetExtents() Vec2 {
	return Vec2MulScalar(0.5, Vec2Sub(bb.Max, bb.Min))
}

/// Get the full width and height.
func (bb AABB) Dimension() Vec2 {
	return Vec2Sub(bb.Max, bb.Min)
}

func (bb AABB) GetPerimeter() float64 {
	wx := bb.Max.X - bb.Min.X
	wy := bb.Max.Y - bb.Min.Y
	return 2.0 * (wx + wy)
}

/// Combine an AABB into this one.
func (bb *AABB) CombineInPlace(other AABB) {
	bb.Min = Vec2Min(bb.Min, other.Min)
	bb.Max = Vec2Max(bb.Max, other.Max)
}

/// Does this AABB fully contain the provided AABB?
func (bb AABB) Contains(other AABB) bool {
	result := true
	result = result && bb.Min.X <= other.Min.X
	result = result && bb.Min.Y <= other.Min.Y
	result = result && other.Max.X <= bb.Max.X
	result = result && other.Max.Y <= bb.Max.Y
	return result
}

/// Grow the box by a proportional enlargement of its dimension plus a flat
/// buffer, so small jitters do not force spatial index churn.
func (bb AABB) Enlarged(enlargement, buffer float64) AABB {
	delta := Vec2Add(
		Vec2MulScalar(0.5*enlargement, bb.Dimension()),
		MakeVec2(buffer, buffer),
	)
	return AABB{
		Min: Vec2Sub(bb.Min, delta),
		Max: Vec2Add(bb.Max, delta),
	}
}

func TestOverlapBoundingBoxes(a, b AABB) bool {
	d1 := Vec2Sub(b.Min, a.Max)
	d2 := Vec2Sub(a.Min, b.Max)

	if d1.X > 0.0 || d1.Y > 0.0 {
		return false
	}

	if d2.X > 0.0 || d2.Y > 0.0 {
		return false
	}

	return true
}
