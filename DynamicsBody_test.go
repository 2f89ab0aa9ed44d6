package ppx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBodySpecsValidation(t *testing.T) {
	world := newTestWorld(t)

	specs := MakeBodySpecs2D()
	specs.Mass = 0.0
	_, err := world.AddBody(specs)
	require.ErrorIs(t, err, ErrInvalidSpecs)

	specs = MakeBodySpecs2D()
	specs.Radius = -1.0
	_, err = world.AddBody(specs)
	require.ErrorIs(t, err, ErrInvalidSpecs)

	specs = MakeBodySpecs2D()
	specs.Vertices = []Vec2{MakeVec2(0.0, 0.0), MakeVec2(1.0, 0.0)}
	_, err = world.AddBody(specs)
	require.ErrorIs(t, err, ErrInvalidSpecs)
}

func TestBodyTypeInvariants(t *testing.T) {
	world := newTestWorld(t)

	specs := MakeBodySpecs2D()
	dynamic, err := world.AddBody(specs)
	require.NoError(t, err)
	require.True(t, dynamic.IsDynamic())
	require.Greater(t, dynamic.InvMass, 0.0)
	require.Greater(t, dynamic.InvInertia, 0.0)

	specs.Type = BodyType.E_staticBody
	static, err := world.AddBody(specs)
	require.NoError(t, err)
	require.True(t, static.IsStatic())
	require.Equal(t, 0.0, static.InvMass)
	require.Equal(t, 0.0, static.InvInertia)

	specs.Type = BodyType.E_kinematicBody
	kinematic, err := world.AddBody(specs)
	require.NoError(t, err)
	require.True(t, kinematic.IsKinematic())
	require.Equal(t, 0.0, kinematic.InvMass)
}

func TestPersistentForceKeepsActing(t *testing.T) {
	world := newTestWorld(t)
	body := addCircleBody(t, world, MakeVec2(0.0, 0.0), MakeVec2(0.0, 0.0), 1.0)

	body.ApplyForce(MakeVec2(2.0, 0.0))
	stepN(t, world, 1000)

	// a = 2 for one second.
	require.InDelta(t, 2.0, body.Velocity.X, 0.01)
	require.InDelta(t, 1.0, body.Position.X, 0.01)
}

func TestImpulseForceActsForOneStep(t *testing.T) {
	world := newTestWorld(t)
	body := addCircleBody(t, world, MakeVec2(0.0, 0.0), MakeVec2(0.0, 0.0), 1.0)

	body.ApplyImpulseForce(MakeVec2(1000.0, 0.0))
	stepN(t, world, 1)
	velocityAfterOne := body.Velocity.X
	require.InDelta(t, 1.0, velocityAfterOne, 1e-9)

	// The impulse does not act again.
	stepN(t, world, 100)
	require.InDelta(t, velocityAfterOne, body.Velocity.X, 1e-9)
}

func TestStaticBodyIgnoresForces(t *testing.T) {
	world := newTestWorld(t)

	specs := MakeBodySpecs2D()
	specs.Type = BodyType.E_staticBody
	body, err := world.AddBody(specs)
	require.NoError(t, err)

	body.ApplyForce(MakeVec2(100.0, 0.0))
	stepN(t, world, 100)
	require.Equal(t, 0.0, body.Position.X)
	require.Equal(t, 0.0, body.Velocity.X)
}

func TestKinematicBodyKeepsItsVelocity(t *testing.T) {
	world := newTestWorld(t)

	specs := MakeBodySpecs2D()
	specs.Type = BodyType.E_kinematicBody
	specs.Velocity = MakeVec2(2.0, 0.0)
	body, err := world.AddBody(specs)
	require.NoError(t, err)

	body.ApplyForce(MakeVec2(0.0, -100.0))
	stepN(t, world, 1000)
	require.InDelta(t, 2.0, body.Position.X, 1e-9)
	require.InDelta(t, 2.0, body.Velocity.X, 1e-12)
	require.Equal(t, 0.0, body.Velocity.Y)
}

func TestSetMassRefreshesInertia(t *testing.T) {
	world := newTestWorld(t)
	body := addCircleBody(t, world, MakeVec2(0.0, 0.0), MakeVec2(0.0, 0.0), 2.0)

	inertia := body.Inertia
	body.SetMass(4.0)
	require.InDelta(t, 4.0*inertia, body.Inertia, 1e-12)
	require.InDelta(t, 0.25, body.InvMass, 1e-12)
}

func TestVelocityAtOffset(t *testing.T) {
	world := newTestWorld(t)
	body := addCircleBody(t, world, MakeVec2(0.0, 0.0), MakeVec2(1.0, 0.0), 1.0)
	body.AngularVelocity = 2.0

	// v + w x r with r = (0, 1): w x r = (-2, 0).
	v := body.VelocityAt(MakeVec2(0.0, 1.0))
	require.InDelta(t, -1.0, v.X, 1e-12)
	require.InDelta(t, 0.0, v.Y, 1e-12)
}
