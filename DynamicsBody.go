package ppx

import (
	"fmt"
)

/// The body type.
/// dynamic: positive mass, moved by forces and constraints
/// kinematic: user-driven velocity, ignores forces, infinite mass to the solver
/// static: never moves, infinite mass
var BodyType = struct {
	E_dynamicBody   uint8
	E_kinematicBody uint8
	E_staticBody    uint8
}{
	E_dynamicBody:   0,
	E_kinematicBody: 1,
	E_staticBody:    2,
}

/// A body specification holds all the data needed to construct a rigid body.
/// Specs can safely be re-used. A body carries exactly one shape: a polygon
/// when Vertices has three or more entries, a circle of Radius otherwise.
type BodySpecs2D struct {
	Position        Vec2
	Velocity        Vec2
	Rotation        float64
	AngularVelocity float64

	Mass   float64
	Charge float64
	Type   uint8

	Restitution float64
	Friction    float64

	Radius   float64
	Vertices []Vec2
}

func MakeBodySpecs2D() BodySpecs2D {
	return BodySpecs2D{
		Position:        MakeVec2(0.0, 0.0),
		Velocity:        MakeVec2(0.0, 0.0),
		Rotation:        0.0,
		AngularVelocity: 0.0,
		Mass:            1.0,
		Charge:          1.0,
		Type:            BodyType.E_dynamicBody,
		Restitution:     0.0,
		Friction:        0.8,
		Radius:          2.5,
	}
}

func (specs BodySpecs2D) validate() error {
	if specs.Mass <= 0.0 || !IsValidFloat(specs.Mass) {
		return fmt.Errorf("%w: body mass must be positive and finite, got %v", ErrInvalidSpecs, specs.Mass)
	}
	if !specs.Position.IsValid() || !specs.Velocity.IsValid() {
		return fmt.Errorf("%w: body position and velocity must be finite", ErrInvalidSpecs)
	}
	if !IsValidFloat(specs.Rotation) || !IsValidFloat(specs.AngularVelocity) {
		return fmt.Errorf("%w: body rotation state must be finite", ErrInvalidSpecs)
	}
	if !IsValidFloat(specs.Charge) {
		return fmt.Errorf("%w: body charge must be finite", ErrInvalidSpecs)
	}
	if len(specs.Vertices) == 0 && specs.Radius <= 0.0 {
		return fmt.Errorf("%w: circle body needs a positive radius, got %v", ErrInvalidSpecs, specs.Radius)
	}
	return nil
}

/// A rigid element of the simulation. Between steps the kinematic attributes
/// mirror the integrator's state vector; during a step the state vector is
/// the single source of truth.
type Body2D struct {
	// Stable identity and dense index into the body store.
	ID    uint64
	Index int

	Position        Vec2
	Rotation        float64
	Velocity        Vec2
	AngularVelocity float64

	// Forces that survive across steps.
	persistentForce  Vec2
	persistentTorque float64
	// Forces cleared after every step.
	impulseForce  Vec2
	impulseTorque float64
	// Per-derivative accumulation: behaviours, springs and solver impulses.
	simForce  Vec2
	simTorque float64

	Mass       float64
	InvMass    float64
	Inertia    float64
	InvInertia float64
	Charge     float64
	Type       uint8

	Restitution float64
	Friction    float64

	Shape       Shape
	BoundingBox AABB

	// Snapshot of velocity taken before the solver runs; impulses are
	// applied here so later constraint rows see earlier corrections.
	CtrVelocity        Vec2
	CtrAngularVelocity float64

	sleepTime float64
	asleep    bool
}

func (body *Body2D) Transform() Transform2D {
	return MakeTransform2DByPositionAndAngle(body.Position, body.Rotation)
}

func (body *Body2D) IsDynamic() bool {
	return body.Type == BodyType.E_dynamicBody
}

func (body *Body2D) IsKinematic() bool {
	return body.Type == BodyType.E_kinematicBody
}

func (body *Body2D) IsStatic() bool {
	return body.Type == BodyType.E_staticBody
}

/// Recompute the cached world AABB, fattened so small jitters do not force
/// quad tree churn.
func (body *Body2D) UpdateBoundingBox() {
	body.BoundingBox = body.Shape.ComputeAABB(body.Transform()).Enlarged(AABBEnlargement, AABBBuffer)
}

/// Recompute inertia from shape and mass, honoring the body type
/// invariants: non-dynamic bodies have zero inverse mass and inertia.
func (body *Body2D) UpdateMassData() {
	body.Inertia = body.Shape.ComputeInertia(body.Mass)
	if body.IsDynamic() {
		body.InvMass = 1.0 / body.Mass
		body.InvInertia = 1.0 / body.Inertia
	} else {
		body.InvMass = 0.0
		body.InvInertia = 0.0
	}
}

func (body *Body2D) SetShape(shape Shape) {
	body.Shape = shape
	body.UpdateMassData()
	body.UpdateBoundingBox()
}

func (body *Body2D) SetMass(mass float64) {
	Assert(mass > 0.0)
	body.Mass = mass
	body.UpdateMassData()
}

/// Apply a force that persists across steps.
func (body *Body2D) ApplyForce(force Vec2) {
	body.persistentForce.OperatorPlusInplace(force)
	body.Awake()
}

func (body *Body2D) ApplyTorque(torque float64) {
	body.persistentTorque += torque
	body.Awake()
}

/// Apply a force that is cleared once the current step finishes.
func (body *Body2D) ApplyImpulseForce(force Vec2) {
	body.impulseForce.OperatorPlusInplace(force)
	body.Awake()
}

func (body *Body2D) ApplyImpulseTorque(torque float64) {
	body.impulseTorque += torque
	body.Awake()
}

/// Accumulate a force into the per-derivative slot, with the torque induced
/// by applying it at an offset from the centroid.
func (body *Body2D) ApplySimulationForceAt(force Vec2, offset Vec2) {
	body.simForce.OperatorPlusInplace(force)
	body.simTorque += Vec2Cross(offset, force)
}

func (body *Body2D) ApplySimulationForce(force Vec2) {
	body.simForce.OperatorPlusInplace(force)
}

func (body *Body2D) ApplySimulationTorque(torque float64) {
	body.simTorque += torque
}

func (body *Body2D) Force() Vec2 {
	return body.simForce
}

func (body *Body2D) Torque() float64 {
	return body.simTorque
}

/// World velocity of the body point at the given centroid offset.
func (body *Body2D) VelocityAt(offset Vec2) Vec2 {
	return Vec2Add(body.Velocity, Vec2CrossScalarVector(body.AngularVelocity, offset))
}

/// Constraint-phase velocity of the body point at the given offset.
func (body *Body2D) CtrVelocityAt(offset Vec2) Vec2 {
	return Vec2Add(body.CtrVelocity, Vec2CrossScalarVector(body.CtrAngularVelocity, offset))
}

func (body *Body2D) KineticEnergy() float64 {
	linear := 0.5 * body.Mass * body.Velocity.LengthSquared()
	angular := 0.5 * body.Inertia * body.AngularVelocity * body.AngularVelocity
	return linear + angular
}

func (body *Body2D) Asleep() bool {
	return body.asleep
}

func (body *Body2D) Awake() {
	body.asleep = false
	body.sleepTime = 0.0
}
