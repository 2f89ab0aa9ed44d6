package ppx

/// A simplex of up to three vertices of the Minkowski difference. The last
/// added vertex always sits at index Count-1.
type Simplex struct {
	Points [3]Vec2
	Count  int
}

func (s *Simplex) push(p Vec2) {
	s.Points[s.Count] = p
	s.Count++
}

/// Support point of the Minkowski difference sh1 - sh2 along dir.
func MinkowskiSupport(sh1 Shape, xf1 Transform2D, sh2 Shape, xf2 Transform2D, dir Vec2) Vec2 {
	support1 := sh1.Support(xf1, dir)
	support2 := sh2.Support(xf2, dir.OperatorNegate())
	return Vec2Sub(support1, support2)
}

/// GJK tests whether the Minkowski difference of the two shapes contains the
/// origin, which is equivalent to the shapes overlapping. On success the
/// returned simplex is a triangle enclosing the origin, ready for EPA.
func GJK(sh1 Shape, xf1 Transform2D, sh2 Shape, xf2 Transform2D) (Simplex, bool) {
	var simplex Simplex

	// Searching toward the other shape first typically converges in a
	// handful of iterations.
	dir := Vec2Sub(xf2.P, xf1.P)
	if dir.LengthSquared() < Epsilon {
		dir = MakeVec2(1.0, 0.0)
	}

	simplex.push(MinkowskiSupport(sh1, xf1, sh2, xf2, dir))
	dir = simplex.Points[0].OperatorNegate()
	if dir.LengthSquared() < Epsilon {
		// The first support already sits on the origin: shapes exactly
		// touching, which counts as no penetration.
		return simplex, false
	}

	for i := 0; i < GJKMaxIterations; i++ {
		p := MinkowskiSupport(sh1, xf1, sh2, xf2, dir)

		// The new support never passed the origin: the shapes are separated.
		if Vec2Dot(p, dir) <= 0.0 {
			return simplex, false
		}

		simplex.push(p)
		if refineSimplex(&simplex, &dir) {
			return simplex, true
		}
	}

	// Non-convergence is treated as no collision.
	return simplex, false
}

/// Reduce the simplex to the feature closest to the origin and point dir at
/// the origin from that feature. Returns true when the simplex encloses it.
func refineSimplex(simplex *Simplex, dir *Vec2) bool {
	switch simplex.Count {
	case 2:
		return refineLine(simplex, dir)
	case 3:
		return refineTriangle(simplex, dir)
	}
	return false
}

func refineLine(simplex *Simplex, dir *Vec2) bool {
	a := simplex.Points[1]
	b := simplex.Points[0]
	ab := Vec2Sub(b, a)
	ao := a.OperatorNegate()

	if Vec2Dot(ab, ao) > 0.0 {
		perp := Vec2CrossScalarVector(Vec2Cross(ab, ao), ab)
		if perp.LengthSquared() < Epsilon {
			// Origin sits on the segment; pick either perpendicular so the
			// triangle case can close around it.
			perp = ab.Skew()
		}
		*dir = perp
		return false
	}

	simplex.Points[0] = a
	simplex.Count = 1
	*dir = ao
	return false
}

func refineTriangle(simplex *Simplex, dir *Vec2) bool {
	a := simplex.Points[2]
	b := simplex.Points[1]
	c := simplex.Points[0]

	ab := Vec2Sub(b, a)
	ac := Vec2Sub(c, a)
	ao := a.OperatorNegate()

	abPerp := Vec2CrossScalarVector(Vec2Cross(ac, ab), ab)
	acPerp := Vec2CrossScalarVector(Vec2Cross(ab, ac), ac)

	if Vec2Dot(abPerp, ao) > 0.0 {
		// Drop c, keep the ab edge.
		simplex.Points[0] = b
		simplex.Points[1] = a
		simplex.Count = 2
		*dir = abPerp
		return false
	}

	if Vec2Dot(acPerp, ao) > 0.0 {
		// Drop b, keep the ac edge.
		simplex.Points[1] = a
		simplex.Count = 2
		*dir = acPerp
		return false
	}

	return true
}
