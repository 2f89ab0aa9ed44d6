package ppx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func identityAt(position Vec2) Transform2D {
	return MakeTransform2DByPositionAndAngle(position, 0.0)
}

func TestGJKOverlappingBoxes(t *testing.T) {
	box := MakeBoxShape(1.0, 1.0)
	xf1 := identityAt(MakeVec2(0.0, 0.0))
	xf2 := identityAt(MakeVec2(1.5, 0.0))

	simplex, hit := GJK(&box, xf1, &box, xf2)
	require.True(t, hit)
	require.Equal(t, 3, simplex.Count)
}

func TestGJKSeparatedBoxes(t *testing.T) {
	box := MakeBoxShape(1.0, 1.0)
	xf1 := identityAt(MakeVec2(0.0, 0.0))
	xf2 := identityAt(MakeVec2(3.0, 0.5))

	_, hit := GJK(&box, xf1, &box, xf2)
	require.False(t, hit)
}

func TestGJKExactTouchingIsNoCollision(t *testing.T) {
	box := MakeBoxShape(1.0, 1.0)
	xf1 := identityAt(MakeVec2(0.0, 0.0))
	xf2 := identityAt(MakeVec2(2.0, 0.0))

	_, hit := GJK(&box, xf1, &box, xf2)
	require.False(t, hit)
}

func TestEPABoxPenetration(t *testing.T) {
	box := MakeBoxShape(1.0, 1.0)
	xf1 := identityAt(MakeVec2(0.0, 0.0))
	xf2 := identityAt(MakeVec2(1.5, 0.0))

	simplex, hit := GJK(&box, xf1, &box, xf2)
	require.True(t, hit)

	mtv, err := EPA(&box, xf1, &box, xf2, simplex, 1e-3)
	require.NoError(t, err)
	require.InDelta(t, 0.5, mtv.X, 1e-2)
	require.InDelta(t, 0.0, mtv.Y, 1e-2)
}

func TestEPASwapSymmetry(t *testing.T) {
	box := MakeBoxShape(1.0, 1.0)
	xf1 := identityAt(MakeVec2(0.0, 0.0))
	xf2 := identityAt(MakeVec2(0.0, 1.25))

	simplex12, hit := GJK(&box, xf1, &box, xf2)
	require.True(t, hit)
	mtv12, err := EPA(&box, xf1, &box, xf2, simplex12, 1e-3)
	require.NoError(t, err)

	simplex21, hit := GJK(&box, xf2, &box, xf1)
	require.True(t, hit)
	mtv21, err := EPA(&box, xf2, &box, xf1, simplex21, 1e-3)
	require.NoError(t, err)

	require.InDelta(t, mtv12.X, -mtv21.X, 1e-2)
	require.InDelta(t, mtv12.Y, -mtv21.Y, 1e-2)
	require.InDelta(t, 0.75, mtv12.Length(), 1e-2)
}

func TestCollideCircles(t *testing.T) {
	c1 := MakeCircleShape(1.0)
	c2 := MakeCircleShape(1.0)
	xf1 := identityAt(MakeVec2(0.0, 0.0))
	xf2 := identityAt(MakeVec2(1.5, 0.0))

	touch1, touch2, mtv, hit := CollideCircles(&c1, xf1, &c2, xf2)
	require.True(t, hit)
	require.InDelta(t, 0.5, mtv.Length(), 1e-12)
	require.InDelta(t, 1.0, touch1.X, 1e-12)
	require.InDelta(t, 0.5, touch2.X, 1e-12)

	// touch1 = touch2 + MTV.
	require.InDelta(t, touch2.X+mtv.X, touch1.X, 1e-12)
	require.InDelta(t, touch2.Y+mtv.Y, touch1.Y, 1e-12)

	// Exactly touching circles do not collide.
	xf3 := identityAt(MakeVec2(2.0, 0.0))
	_, _, _, hit = CollideCircles(&c1, xf1, &c2, xf3)
	require.False(t, hit)
}

func TestPolygonContactPointsFaceOverlap(t *testing.T) {
	box := MakeBoxShape(1.0, 1.0)
	xf1 := identityAt(MakeVec2(0.0, 0.0))
	xf2 := identityAt(MakeVec2(0.0, 1.5))

	simplex, hit := GJK(&box, xf1, &box, xf2)
	require.True(t, hit)
	mtv, err := EPA(&box, xf1, &box, xf2, simplex, 1e-3)
	require.NoError(t, err)

	points, count := PolygonContactPoints(&box, xf1, &box, xf2, mtv)
	require.Equal(t, 2, count)
	for i := 0; i < count; i++ {
		// Contact points lie on the incident (upper) box's bottom face.
		require.InDelta(t, 0.5, points[i].Y, 1e-6)
		require.LessOrEqual(t, points[i].X, 1.0+1e-9)
		require.GreaterOrEqual(t, points[i].X, -1.0-1e-9)
	}
}
