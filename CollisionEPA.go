package ppx

import (
	"fmt"
	"math"
)

/// EPA expands the GJK simplex into a polytope that hugs the boundary of the
/// Minkowski difference around the origin, recovering the minimum translation
/// vector. The returned MTV points from body 1 toward body 2 and its length
/// is the penetration depth; translating body 2 by the MTV separates the
/// shapes.
func EPA(sh1 Shape, xf1 Transform2D, sh2 Shape, xf2 Transform2D, simplex Simplex, threshold float64) (Vec2, error) {
	if simplex.Count != 3 {
		return Vec2{}, fmt.Errorf("%w: EPA requires an enclosing triangle, got %d vertices", ErrGeometryDegenerate, simplex.Count)
	}

	polytope := make([]Vec2, 0, 8)
	polytope = append(polytope, simplex.Points[0], simplex.Points[1], simplex.Points[2])

	// The expansion below assumes counter-clockwise winding.
	signedArea := Vec2Cross(Vec2Sub(polytope[1], polytope[0]), Vec2Sub(polytope[2], polytope[0]))
	if math.Abs(signedArea) < Epsilon {
		return Vec2{}, fmt.Errorf("%w: EPA simplex is collinear", ErrGeometryDegenerate)
	}
	if signedArea < 0.0 {
		polytope[1], polytope[2] = polytope[2], polytope[1]
	}

	for i := 0; i < EPAMaxIterations; i++ {
		edge, normal, dist, ok := closestPolytopeEdge(polytope)
		if !ok {
			return Vec2{}, fmt.Errorf("%w: EPA polytope degenerated", ErrGeometryDegenerate)
		}

		support := MinkowskiSupport(sh1, xf1, sh2, xf2, normal)
		supportDist := Vec2Dot(support, normal)

		if supportDist-dist < threshold {
			return Vec2MulScalar(supportDist, normal), nil
		}

		// Insert the new vertex between the edge endpoints, keeping winding.
		polytope = append(polytope, Vec2{})
		copy(polytope[edge+2:], polytope[edge+1:])
		polytope[edge+1] = support
	}

	return Vec2{}, fmt.Errorf("%w: EPA did not converge", ErrGeometryDegenerate)
}

/// Find the polytope edge closest to the origin. Returns the edge start
/// index, its outward normal and its distance to the origin.
func closestPolytopeEdge(polytope []Vec2) (int, Vec2, float64, bool) {
	bestEdge := -1
	bestNormal := Vec2{}
	bestDist := MaxFloat

	for i := 0; i < len(polytope); i++ {
		j := (i + 1) % len(polytope)
		e := Vec2Sub(polytope[j], polytope[i])

		normal := MakeVec2(e.Y, -e.X)
		if normal.Normalize() == 0.0 {
			continue
		}

		dist := Vec2Dot(normal, polytope[i])
		if dist < bestDist {
			bestDist = dist
			bestNormal = normal
			bestEdge = i
		}
	}

	if bestEdge < 0 || !IsValidFloat(bestDist) {
		return 0, Vec2{}, 0.0, false
	}
	return bestEdge, bestNormal, bestDist, true
}
