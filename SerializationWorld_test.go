package ppx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func buildSnapshotWorld(t *testing.T, specs WorldSpecs2D) *World2D {
	world, err := MakeWorld2D(specs)
	require.NoError(t, err)

	ground := MakeBodySpecs2D()
	ground.Type = BodyType.E_staticBody
	ground.Vertices = []Vec2{
		MakeVec2(-10.0, -1.0), MakeVec2(10.0, -1.0),
		MakeVec2(10.0, 1.0), MakeVec2(-10.0, 1.0),
	}
	_, err = world.AddBody(ground)
	require.NoError(t, err)

	circle := MakeBodySpecs2D()
	circle.Position = MakeVec2(-3.0, 5.0)
	circle.Velocity = MakeVec2(0.5, 0.0)
	circle.Radius = 1.0
	circle.Restitution = 0.4
	body1, err := world.AddBody(circle)
	require.NoError(t, err)

	box := MakeBodySpecs2D()
	box.Position = MakeVec2(3.0, 5.0)
	box.Rotation = 0.3
	box.Vertices = []Vec2{
		MakeVec2(-0.5, -0.5), MakeVec2(0.5, -0.5),
		MakeVec2(0.5, 0.5), MakeVec2(-0.5, 0.5),
	}
	body2, err := world.AddBody(box)
	require.NoError(t, err)

	springSpecs := MakeSpringSpecs2D(body1.Index, body2.Index)
	springSpecs.Anchor1 = body1.Position
	springSpecs.Anchor2 = body2.Position
	springSpecs.Stiffness = 7.5
	springSpecs.Damping = 0.5
	springSpecs.Length = 4.0
	_, err = world.AddSpring(springSpecs)
	require.NoError(t, err)

	jointSpecs := MakeDistanceJointSpecs2D(body1.Index, body2.Index)
	jointSpecs.Joint.Anchor1 = body1.Position
	jointSpecs.Joint.Anchor2 = body2.Position
	jointSpecs.MinDistance = 4.0
	jointSpecs.MaxDistance = 8.0
	_, err = world.AddDistanceJoint(jointSpecs)
	require.NoError(t, err)

	gravity := NewGravity2D(world, -9.8)
	gravity.AddBody(body1.ID)
	gravity.AddBody(body2.ID)
	world.AddBehaviour(gravity)

	drag := NewDrag2D(world, 0.2, 0.1)
	drag.AddBody(body2.ID)
	world.AddBehaviour(drag)

	return world
}

func TestWorldYAMLRoundTrip(t *testing.T) {
	specs := MakeWorldSpecs2D()
	specs.Integrator.Tableau = TableauNameRK4
	world := buildSnapshotWorld(t, specs)

	data, err := EncodeWorld(world)
	require.NoError(t, err)

	decoded, err := DecodeWorld(data, MakeWorldSpecs2D())
	require.NoError(t, err)

	// The snapshot's tableau overrides the fallback specs.
	require.Equal(t, TableauNameRK4, decoded.Specs.Integrator.Tableau)
	require.Equal(t, world.Elapsed(), decoded.Elapsed())

	require.Equal(t, world.Bodies.Size(), decoded.Bodies.Size())
	for i := 0; i < world.Bodies.Size(); i++ {
		original := world.Bodies.At(i)
		restored := decoded.Bodies.At(i)
		require.InDelta(t, original.Position.X, restored.Position.X, 1e-12)
		require.InDelta(t, original.Position.Y, restored.Position.Y, 1e-12)
		require.InDelta(t, original.Rotation, restored.Rotation, 1e-12)
		require.Equal(t, original.Type, restored.Type)
		require.InDelta(t, original.Mass, restored.Mass, 1e-12)
		require.InDelta(t, original.Restitution, restored.Restitution, 1e-12)
		require.Equal(t, original.Shape.GetType(), restored.Shape.GetType())
	}

	require.Equal(t, 1, decoded.Springs.Size())
	spring := decoded.Springs.Springs()[0]
	require.InDelta(t, 7.5, spring.Stiffness, 1e-12)
	require.InDelta(t, 4.0, spring.Length, 1e-12)

	require.Equal(t, 1, decoded.Joints.Size())
	joints := decoded.Joints.OfKind(JointKind.E_distanceJoint)
	require.Len(t, joints, 1)
	joint := joints[0].(*DistanceJoint2D)
	require.InDelta(t, 4.0, joint.MinDistance, 1e-12)
	require.InDelta(t, 8.0, joint.MaxDistance, 1e-12)

	require.Equal(t, 2, decoded.Behaviours.Size())
	gravity, ok := decoded.Behaviours.FromName("gravity").(*Gravity2D)
	require.True(t, ok)
	require.InDelta(t, -9.8, gravity.Magnitude, 1e-12)
	require.Len(t, gravity.BodyIDs(), 2)
	drag, ok := decoded.Behaviours.FromName("drag").(*Drag2D)
	require.True(t, ok)
	require.InDelta(t, 0.2, drag.LinearTerm, 1e-12)
}

/// A freshly decoded world must continue the simulation exactly as the
/// encoded one would have.
func TestDecodedWorldReplaysIdentically(t *testing.T) {
	specs := MakeWorldSpecs2D()
	specs.Collision.DetectionMethod = DetectionNameSortAndSweep

	world := buildSnapshotWorld(t, specs)
	data, err := EncodeWorld(world)
	require.NoError(t, err)

	decoded, err := DecodeWorld(data, specs)
	require.NoError(t, err)

	for i := 0; i < 200; i++ {
		require.True(t, world.Step())
		require.True(t, decoded.Step())
	}
	requireIdenticalStates(t, world, decoded)
}

func TestDecodeWorldRejectsMalformedSnapshots(t *testing.T) {
	_, err := DecodeWorld([]byte("{not yaml"), MakeWorldSpecs2D())
	require.ErrorIs(t, err, ErrInvalidSpecs)

	unknownJoint := []byte(`
bodies:
  - position: [0.0, 0.0]
    mass: 1.0
    radius: 1.0
  - position: [3.0, 0.0]
    mass: 1.0
    radius: 1.0
constraints:
  - kind: rope
    index1: 0
    index2: 1
`)
	_, err = DecodeWorld(unknownJoint, MakeWorldSpecs2D())
	require.ErrorIs(t, err, ErrInvalidSpecs)

	unknownBehaviour := []byte(`
bodies:
  - position: [0.0, 0.0]
    mass: 1.0
    radius: 1.0
behaviours:
  - name: wind
    enabled: true
`)
	_, err = DecodeWorld(unknownBehaviour, MakeWorldSpecs2D())
	require.ErrorIs(t, err, ErrInvalidSpecs)
}
