package ppx

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolygonShapeValidation(t *testing.T) {
	_, err := MakePolygonShape([]Vec2{MakeVec2(0.0, 0.0), MakeVec2(1.0, 0.0)})
	require.ErrorIs(t, err, ErrInvalidSpecs)

	// Clockwise winding is rejected.
	_, err = MakePolygonShape([]Vec2{
		MakeVec2(0.0, 0.0), MakeVec2(0.0, 1.0), MakeVec2(1.0, 0.0),
	})
	require.ErrorIs(t, err, ErrInvalidSpecs)

	// Collinear vertices are rejected.
	_, err = MakePolygonShape([]Vec2{
		MakeVec2(0.0, 0.0), MakeVec2(1.0, 0.0), MakeVec2(2.0, 0.0), MakeVec2(0.0, 1.0),
	})
	require.ErrorIs(t, err, ErrInvalidSpecs)

	_, err = MakePolygonShape([]Vec2{
		MakeVec2(math.NaN(), 0.0), MakeVec2(1.0, 0.0), MakeVec2(0.0, 1.0),
	})
	require.ErrorIs(t, err, ErrInvalidSpecs)

	tooMany := make([]Vec2, MaxPolygonVertices+1)
	for i := range tooMany {
		angle := 2.0 * Pi * float64(i) / float64(len(tooMany))
		tooMany[i] = MakeVec2(math.Cos(angle), math.Sin(angle))
	}
	_, err = MakePolygonShape(tooMany)
	require.ErrorIs(t, err, ErrInvalidSpecs)
}

func TestPolygonShapeRecentersOnCentroid(t *testing.T) {
	shape, err := MakePolygonShape([]Vec2{
		MakeVec2(1.0, 1.0), MakeVec2(3.0, 1.0), MakeVec2(3.0, 3.0), MakeVec2(1.0, 3.0),
	})
	require.NoError(t, err)

	assert.InDelta(t, -1.0, shape.Vertices[0].X, 1e-12)
	assert.InDelta(t, -1.0, shape.Vertices[0].Y, 1e-12)
	assert.InDelta(t, 1.0, shape.Vertices[2].X, 1e-12)
	assert.InDelta(t, 1.0, shape.Vertices[2].Y, 1e-12)

	// Edge normals point outward.
	assert.InDelta(t, -1.0, shape.Normals[0].Y, 1e-12)
	assert.InDelta(t, 1.0, shape.Normals[1].X, 1e-12)
}

func TestBoxInertiaMatchesClosedForm(t *testing.T) {
	box := MakeBoxShape(1.0, 2.0)
	// I = m (w^2 + h^2) / 12 for a full box of 2x4.
	require.InDelta(t, 3.0*(4.0+16.0)/12.0, box.ComputeInertia(3.0), 1e-9)
}

func TestCircleInertiaIncludesCenterOffset(t *testing.T) {
	circle := MakeCircleShape(2.0)
	require.InDelta(t, 2.0*0.5*4.0, circle.ComputeInertia(2.0), 1e-12)

	circle.Center = MakeVec2(3.0, 0.0)
	require.InDelta(t, 2.0*(0.5*4.0+9.0), circle.ComputeInertia(2.0), 1e-12)
}

func TestShapeSupport(t *testing.T) {
	box := MakeBoxShape(1.0, 1.0)
	xf := MakeTransform2DByPositionAndAngle(MakeVec2(5.0, 0.0), 0.0)

	support := box.Support(xf, MakeVec2(1.0, 1.0))
	assert.InDelta(t, 6.0, support.X, 1e-12)
	assert.InDelta(t, 1.0, support.Y, 1e-12)

	circle := MakeCircleShape(2.0)
	support = circle.Support(xf, MakeVec2(0.0, -3.0))
	assert.InDelta(t, 5.0, support.X, 1e-12)
	assert.InDelta(t, -2.0, support.Y, 1e-12)
}

func TestShapeContainsPoint(t *testing.T) {
	xf := MakeTransform2DByPositionAndAngle(MakeVec2(2.0, 0.0), 0.0)

	circle := NewCircleShape(1.0)
	assert.True(t, ShapeContainsPoint(circle, xf, MakeVec2(2.5, 0.0)))
	assert.False(t, ShapeContainsPoint(circle, xf, MakeVec2(4.0, 0.0)))

	box := MakeBoxShape(1.0, 1.0)
	assert.True(t, ShapeContainsPoint(&box, xf, MakeVec2(2.9, 0.9)))
	assert.False(t, ShapeContainsPoint(&box, xf, MakeVec2(0.5, 0.0)))

	// Rotated by 45 degrees the former corner region is outside.
	rotated := MakeTransform2DByPositionAndAngle(MakeVec2(2.0, 0.0), Pi/4.0)
	assert.False(t, ShapeContainsPoint(&box, rotated, MakeVec2(2.9, 0.9)))
	assert.True(t, ShapeContainsPoint(&box, rotated, MakeVec2(2.0, 1.3)))
}

func TestComputeAABB(t *testing.T) {
	circle := MakeCircleShape(1.5)
	bb := circle.ComputeAABB(MakeTransform2DByPositionAndAngle(MakeVec2(1.0, 2.0), 0.0))
	assert.InDelta(t, -0.5, bb.Min.X, 1e-12)
	assert.InDelta(t, 3.5, bb.Max.Y, 1e-12)

	box := MakeBoxShape(1.0, 1.0)
	bb = box.ComputeAABB(MakeTransform2DByPositionAndAngle(MakeVec2(0.0, 0.0), Pi/4.0))
	// A rotated unit box reaches sqrt(2) along both axes.
	assert.InDelta(t, math.Sqrt2, bb.Max.X, 1e-9)
	assert.InDelta(t, -math.Sqrt2, bb.Min.Y, 1e-9)
}

func TestShapeCloneIsIndependent(t *testing.T) {
	box := MakeBoxShape(1.0, 1.0)
	clone := box.Clone().(*PolygonShape)
	clone.Vertices[0] = MakeVec2(-9.0, -9.0)
	require.InDelta(t, -1.0, box.Vertices[0].X, 1e-12)

	circle := NewCircleShape(1.0)
	circleClone := circle.Clone().(*CircleShape)
	circleClone.Radius = 5.0
	require.Equal(t, 1.0, circle.Radius)
}
