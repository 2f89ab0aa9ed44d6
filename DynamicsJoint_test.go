package ppx

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJointRejectsBadBodyIndices(t *testing.T) {
	world := newTestWorld(t)
	body := addCircleBody(t, world, MakeVec2(0.0, 0.0), MakeVec2(0.0, 0.0), 0.5)

	specs := MakeDistanceJointSpecs2D(body.Index, 9)
	_, err := world.AddDistanceJoint(specs)
	require.ErrorIs(t, err, ErrUnknownEntity)

	specs = MakeDistanceJointSpecs2D(body.Index, body.Index)
	_, err = world.AddDistanceJoint(specs)
	require.ErrorIs(t, err, ErrInvalidSpecs)
}

func TestJointManagerSolveOrderAndLookup(t *testing.T) {
	world := newTestWorld(t)
	body1 := addCircleBody(t, world, MakeVec2(0.0, 0.0), MakeVec2(0.0, 0.0), 0.5)
	body2 := addCircleBody(t, world, MakeVec2(3.0, 0.0), MakeVec2(0.0, 0.0), 0.5)
	body3 := addCircleBody(t, world, MakeVec2(6.0, 0.0), MakeVec2(0.0, 0.0), 0.5)

	distSpecs := MakeDistanceJointSpecs2D(body1.Index, body2.Index)
	distSpecs.Joint.Anchor1 = body1.Position
	distSpecs.Joint.Anchor2 = body2.Position
	distance, err := world.AddDistanceJoint(distSpecs)
	require.NoError(t, err)

	rotorSpecs := MakeRotorJointSpecs2D(body2.Index, body3.Index)
	rotorSpecs.SpinIndefinitely = true
	rotor, err := world.AddRotorJoint(rotorSpecs)
	require.NoError(t, err)

	require.Equal(t, 2, world.Joints.Size())
	require.Len(t, world.Joints.OfKind(JointKind.E_distanceJoint), 1)
	require.Len(t, world.Joints.OfKind(JointKind.E_rotorJoint), 1)
	require.Empty(t, world.Joints.OfKind(JointKind.E_weldJoint))

	var kinds []uint8
	world.Joints.ForEach(func(joint Joint2D) { kinds = append(kinds, joint.Kind()) })
	require.Equal(t, []uint8{JointKind.E_distanceJoint, JointKind.E_rotorJoint}, kinds)

	require.True(t, world.RemoveJoint(rotor))
	require.False(t, world.RemoveJoint(rotor))
	require.Equal(t, 1, world.Joints.Size())
	require.True(t, distance.Valid())
}

func TestWeldJointLocksRelativePose(t *testing.T) {
	world := newTestWorld(t)
	body1 := addCircleBody(t, world, MakeVec2(0.0, 10.0), MakeVec2(0.0, 0.0), 0.5)
	body2 := addCircleBody(t, world, MakeVec2(2.0, 10.0), MakeVec2(0.0, 0.0), 0.5)

	specs := MakeWeldJointSpecs2D(body1.Index, body2.Index, MakeVec2(1.0, 10.0))
	joint, err := world.AddWeldJoint(specs)
	require.NoError(t, err)

	// Asymmetric load: only body 2 is pulled down.
	gravity := NewGravity2D(world, -9.8)
	gravity.AddBody(body2.ID)
	world.AddBehaviour(gravity)

	stepN(t, world, 1000)

	require.Less(t, Vec2Distance(joint.GlobalAnchor1(), joint.GlobalAnchor2()), 0.3)
	require.InDelta(t, body1.Rotation, body2.Rotation, 0.2)
	// The pair fell as one rigid unit.
	require.InDelta(t, 2.0, Vec2Distance(body1.Position, body2.Position), 0.3)
}

func TestPrismaticJointConstrainsMotionToAxis(t *testing.T) {
	world := newTestWorld(t)

	railSpecs := MakeBodySpecs2D()
	railSpecs.Type = BodyType.E_staticBody
	railSpecs.Radius = 0.5
	rail, err := world.AddBody(railSpecs)
	require.NoError(t, err)

	slider := addCircleBody(t, world, MakeVec2(2.0, 0.0), MakeVec2(1.0, 0.0), 0.5)

	specs := MakePrismaticJointSpecs2D(rail.Index, slider.Index)
	specs.Joint.Anchor1 = rail.Position
	specs.Joint.Anchor2 = slider.Position
	specs.Axis = MakeVec2(1.0, 0.0)
	joint, err := world.AddPrismaticJoint(specs)
	require.NoError(t, err)
	require.InDelta(t, 1.0, joint.Axis().X, 1e-12)

	gravity := NewGravity2D(world, -9.8)
	gravity.AddBody(slider.ID)
	world.AddBehaviour(gravity)

	stepN(t, world, 2000)

	// Gravity cannot pull the slider off the horizontal axis, while the
	// initial velocity carries it along the axis unopposed.
	require.InDelta(t, 0.0, slider.Position.Y, 0.3)
	require.InDelta(t, 0.0, slider.Rotation, 0.2)
	require.Greater(t, slider.Position.X, 3.0)
}

func TestBallJointEnforcesAngularLimits(t *testing.T) {
	world := newTestWorld(t)

	baseSpecs := MakeBodySpecs2D()
	baseSpecs.Type = BodyType.E_staticBody
	baseSpecs.Radius = 0.5
	base, err := world.AddBody(baseSpecs)
	require.NoError(t, err)

	wheel := addCircleBody(t, world, MakeVec2(3.0, 0.0), MakeVec2(0.0, 0.0), 0.5)
	wheel.AngularVelocity = 2.0

	specs := MakeBallJointSpecs2D(base.Index, wheel.Index)
	specs.MinAngle = -0.5
	specs.MaxAngle = 0.5
	_, err = world.AddBallJoint(specs)
	require.NoError(t, err)

	// Unconstrained the wheel would reach 2 radians within a second.
	stepN(t, world, 1000)
	require.Less(t, wheel.Rotation, 0.7)
	require.Greater(t, wheel.Rotation, 0.3)
	require.Less(t, math.Abs(wheel.AngularVelocity), 0.5)
}

func TestMotorJointDrivesTowardTargetOffset(t *testing.T) {
	world := newTestWorld(t)

	baseSpecs := MakeBodySpecs2D()
	baseSpecs.Type = BodyType.E_staticBody
	baseSpecs.Radius = 0.5
	base, err := world.AddBody(baseSpecs)
	require.NoError(t, err)

	follower := addCircleBody(t, world, MakeVec2(1.0, 0.0), MakeVec2(0.0, 0.0), 0.5)

	specs := MakeMotorJointSpecs2D(base.Index, follower.Index)
	specs.TargetOffset = MakeVec2(3.0, 1.0)
	_, err = world.AddMotorJoint(specs)
	require.NoError(t, err)

	stepN(t, world, 2000)
	require.InDelta(t, 3.0, follower.Position.X, 0.1)
	require.InDelta(t, 1.0, follower.Position.Y, 0.1)
}

func TestSoftDistanceJointOscillatesAroundRestLength(t *testing.T) {
	world := newTestWorld(t)

	pivotSpecs := MakeBodySpecs2D()
	pivotSpecs.Type = BodyType.E_staticBody
	pivotSpecs.Radius = 0.5
	pivot, err := world.AddBody(pivotSpecs)
	require.NoError(t, err)

	bob := addCircleBody(t, world, MakeVec2(0.0, -3.0), MakeVec2(0.0, 0.0), 0.5)

	specs := MakeDistanceJointSpecs2D(pivot.Index, bob.Index)
	specs.Joint.Anchor1 = pivot.Position
	specs.Joint.Anchor2 = bob.Position
	specs.Joint.IsSoft = true
	specs.Joint.Frequency = 2.0
	specs.Joint.DampingRatio = 0.7
	joint, err := world.AddDistanceJoint(specs)
	require.NoError(t, err)

	gravity := NewGravity2D(world, -9.8)
	gravity.AddBody(bob.ID)
	world.AddBehaviour(gravity)

	// A soft constraint stretches under load but stays bounded.
	stepN(t, world, 3000)
	dist := Vec2Distance(joint.GlobalAnchor1(), joint.GlobalAnchor2())
	require.Greater(t, dist, 2.9)
	require.Less(t, dist, 4.0)
}

func TestJointReactiveForceBalancesLoad(t *testing.T) {
	world := newTestWorld(t)

	pivotSpecs := MakeBodySpecs2D()
	pivotSpecs.Type = BodyType.E_staticBody
	pivotSpecs.Radius = 0.5
	pivot, err := world.AddBody(pivotSpecs)
	require.NoError(t, err)

	bob := addCircleBody(t, world, MakeVec2(0.0, -4.0), MakeVec2(0.0, 0.0), 0.5)

	specs := MakeDistanceJointSpecs2D(pivot.Index, bob.Index)
	specs.Joint.Anchor1 = pivot.Position
	specs.Joint.Anchor2 = bob.Position
	joint, err := world.AddDistanceJoint(specs)
	require.NoError(t, err)

	gravity := NewGravity2D(world, -9.8)
	gravity.AddBody(bob.ID)
	world.AddBehaviour(gravity)

	stepN(t, world, 3000)

	// Hanging straight down at rest, the rod carries the bob's weight.
	force := joint.ReactiveForce()
	require.InDelta(t, 9.8, force.Length(), 1.5)
}
