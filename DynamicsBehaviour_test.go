package ppx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGravityPotentialEnergy(t *testing.T) {
	world := newTestWorld(t)
	body := addCircleBody(t, world, MakeVec2(0.0, 2.0), MakeVec2(0.0, 0.0), 1.0)

	gravity := NewGravity2D(world, -9.8)
	gravity.AddBody(body.ID)
	world.AddBehaviour(gravity)

	require.InDelta(t, 19.6, gravity.PotentialEnergy(), 1e-12)
	require.InDelta(t, 19.6, world.PotentialEnergy(), 1e-12)

	gravity.SetEnabled(false)
	require.Equal(t, 0.0, gravity.PotentialEnergy())
}

func TestGravityOnlyAffectsMemberBodies(t *testing.T) {
	world := newTestWorld(t)
	member := addCircleBody(t, world, MakeVec2(0.0, 10.0), MakeVec2(0.0, 0.0), 1.0)
	bystander := addCircleBody(t, world, MakeVec2(20.0, 10.0), MakeVec2(0.0, 0.0), 1.0)

	gravity := NewGravity2D(world, -9.8)
	require.True(t, gravity.AddBody(member.ID))
	require.False(t, gravity.AddBody(member.ID), "double insertion is rejected")
	world.AddBehaviour(gravity)

	stepN(t, world, 500)
	require.Less(t, member.Position.Y, 9.0)
	require.InDelta(t, 10.0, bystander.Position.Y, 1e-9)
}

func TestDragDecaysVelocity(t *testing.T) {
	world := newTestWorld(t)
	body := addCircleBody(t, world, MakeVec2(0.0, 0.0), MakeVec2(10.0, 0.0), 1.0)
	body.AngularVelocity = 5.0

	drag := NewDrag2D(world, 1.0, 1.0)
	drag.AddBody(body.ID)
	world.AddBehaviour(drag)

	// dv/dt = -v: after one second the speed decays to v/e.
	stepN(t, world, 1000)
	require.InDelta(t, 10.0/2.718281828, body.Velocity.X, 0.1)
	require.Less(t, body.AngularVelocity, 5.0)
	require.Equal(t, 0.0, drag.PotentialEnergy())
}

func TestGravitationalAttractionPullsBodiesTogether(t *testing.T) {
	world := newTestWorld(t)
	body1 := addCircleBody(t, world, MakeVec2(-5.0, 0.0), MakeVec2(0.0, 0.0), 0.5)
	body2 := addCircleBody(t, world, MakeVec2(5.0, 0.0), MakeVec2(0.0, 0.0), 0.5)

	attraction := NewGravitational2D(world, 10.0)
	attraction.AddBody(body1.ID)
	attraction.AddBody(body2.ID)
	world.AddBehaviour(attraction)

	before := Vec2Distance(body1.Position, body2.Position)
	require.Less(t, attraction.PotentialEnergy(), 0.0)

	stepN(t, world, 1000)
	require.Less(t, Vec2Distance(body1.Position, body2.Position), before)
}

func TestElectricalRepulsionPushesBodiesApart(t *testing.T) {
	world := newTestWorld(t)
	specs := MakeBodySpecs2D()
	specs.Radius = 0.5
	specs.Charge = 2.0

	specs.Position = MakeVec2(-2.0, 0.0)
	body1, err := world.AddBody(specs)
	require.NoError(t, err)
	specs.Position = MakeVec2(2.0, 0.0)
	body2, err := world.AddBody(specs)
	require.NoError(t, err)

	repulsion := NewElectricalRepulsion2D(world, 5.0)
	repulsion.AddBody(body1.ID)
	repulsion.AddBody(body2.ID)
	world.AddBehaviour(repulsion)

	before := Vec2Distance(body1.Position, body2.Position)
	require.Greater(t, repulsion.PotentialEnergy(), 0.0)

	stepN(t, world, 1000)
	require.Greater(t, Vec2Distance(body1.Position, body2.Position), before)
}

func TestBehaviourManagerLookupAndRemoval(t *testing.T) {
	world := newTestWorld(t)
	gravity := NewGravity2D(world, -9.8)
	drag := NewDrag2D(world, 0.5, 0.0)
	world.AddBehaviour(gravity)
	world.AddBehaviour(drag)

	require.Equal(t, 2, world.Behaviours.Size())
	require.Same(t, Behaviour2D(gravity), world.Behaviours.FromName("gravity"))
	require.Nil(t, world.Behaviours.FromName("wind"))

	require.True(t, world.RemoveBehaviour(gravity))
	require.False(t, world.RemoveBehaviour(gravity))
	require.Equal(t, 1, world.Behaviours.Size())
}

func TestBehaviourValidatePrunesDeadBodies(t *testing.T) {
	world := newTestWorld(t)
	body1 := addCircleBody(t, world, MakeVec2(0.0, 0.0), MakeVec2(0.0, 0.0), 1.0)
	body2 := addCircleBody(t, world, MakeVec2(10.0, 0.0), MakeVec2(0.0, 0.0), 1.0)

	gravity := NewGravity2D(world, -9.8)
	gravity.AddBody(body1.ID)
	gravity.AddBody(body2.ID)
	world.AddBehaviour(gravity)

	require.NoError(t, world.RemoveBodyByID(body1.ID))
	require.Len(t, gravity.BodyIDs(), 1)
	require.True(t, gravity.ContainsBody(body2.ID))
	require.False(t, gravity.ContainsBody(body1.ID))
}
