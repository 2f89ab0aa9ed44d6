package ppx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConnectedBodiesSleepTogether(t *testing.T) {
	world := newTestWorld(t)
	body1 := addCircleBody(t, world, MakeVec2(0.0, 0.0), MakeVec2(0.0, 0.0), 0.5)
	body2 := addCircleBody(t, world, MakeVec2(3.0, 0.0), MakeVec2(0.0, 0.0), 0.5)

	specs := MakeDistanceJointSpecs2D(body1.Index, body2.Index)
	specs.Joint.Anchor1 = body1.Position
	specs.Joint.Anchor2 = body2.Position
	_, err := world.AddDistanceJoint(specs)
	require.NoError(t, err)

	stepN(t, world, 1700)
	require.True(t, body1.Asleep())
	require.True(t, body2.Asleep())
}

func TestMovingNeighbourKeepsIslandAwake(t *testing.T) {
	world := newTestWorld(t)
	still := addCircleBody(t, world, MakeVec2(0.0, 0.0), MakeVec2(0.0, 0.0), 0.5)
	spinner := addCircleBody(t, world, MakeVec2(3.0, 0.0), MakeVec2(0.0, 0.0), 0.5)

	rotorSpecs := MakeRotorJointSpecs2D(still.Index, spinner.Index)
	rotorSpecs.TargetSpeed = 3.0
	rotorSpecs.SpinIndefinitely = true
	_, err := world.AddRotorJoint(rotorSpecs)
	require.NoError(t, err)

	stepN(t, world, 2000)

	// The driven wheel stores enough rotational energy to keep its whole
	// island awake.
	require.False(t, spinner.Asleep())
	require.False(t, still.Asleep())
}

func TestDisconnectedBodiesSleepIndependently(t *testing.T) {
	world := newTestWorld(t)
	idle := addCircleBody(t, world, MakeVec2(0.0, 0.0), MakeVec2(0.0, 0.0), 0.5)
	mover := addCircleBody(t, world, MakeVec2(30.0, 0.0), MakeVec2(2.0, 0.0), 0.5)

	stepN(t, world, 1700)
	require.True(t, idle.Asleep())
	require.False(t, mover.Asleep())
}

func TestSleepDisabledKeepsBodiesAwake(t *testing.T) {
	specs := MakeWorldSpecs2D()
	specs.Islands.Enabled = false
	world, err := MakeWorld2D(specs)
	require.NoError(t, err)

	body, err := world.AddBody(MakeBodySpecs2D())
	require.NoError(t, err)

	for i := 0; i < 2000; i++ {
		require.True(t, world.Step())
	}
	require.False(t, body.Asleep())
}

func TestSleepingBodyIsFrozen(t *testing.T) {
	world := newTestWorld(t)
	body := addCircleBody(t, world, MakeVec2(0.0, 0.0), MakeVec2(0.0, 0.0), 0.5)

	stepN(t, world, 1700)
	require.True(t, body.Asleep())
	require.Equal(t, 0.0, body.Velocity.X)
	require.Equal(t, 0.0, body.Velocity.Y)
	require.Equal(t, 0.0, body.AngularVelocity)

	// A sleeping body contributes nothing to the derivative.
	before := body.Position
	stepN(t, world, 100)
	require.Equal(t, before, body.Position)
}
