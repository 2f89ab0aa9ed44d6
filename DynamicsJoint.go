package ppx

import (
	"fmt"
	"math"
)

var JointKind = struct {
	E_distanceJoint  uint8
	E_revoluteJoint  uint8
	E_weldJoint      uint8
	E_prismaticJoint uint8
	E_ballJoint      uint8
	E_rotorJoint     uint8
	E_motorJoint     uint8
}{
	E_distanceJoint:  0,
	E_revoluteJoint:  1,
	E_weldJoint:      2,
	E_prismaticJoint: 3,
	E_ballJoint:      4,
	E_rotorJoint:     5,
	E_motorJoint:     6,
}

/// The uniform constraint contract every joint implements. The solver driver
/// calls Startup once per derivative evaluation, Warmup when warm starting
/// is enabled, SolveVelocities once per velocity iteration and
/// SolvePositions once per position iteration; the latter reports whether
/// the joint's positional error is already below the slop.
type Joint2D interface {
	Kind() uint8
	Startup()
	Warmup()
	SolveVelocities()
	SolvePositions() bool
	ReactiveForce() Vec2
	ReactiveTorque() float64
	BodyIDs() (uint64, uint64)
	ContainsBody(id uint64) bool
	BodiesCollide() bool
	Awake()
	Valid() bool
}

/// Common joint specification: two bodies referenced by dense index, two
/// world anchors captured at setup, whether the bodies keep colliding, and
/// the soft constraint parameters.
type JointSpecs2D struct {
	BodyIndex1, BodyIndex2 int
	Anchor1, Anchor2       Vec2

	CollideBodies bool
	IsSoft        bool
	Frequency     float64
	DampingRatio  float64
}

func MakeJointSpecs2D(index1, index2 int) JointSpecs2D {
	return JointSpecs2D{
		BodyIndex1:    index1,
		BodyIndex2:    index2,
		CollideBodies: true,
		Frequency:     DefaultJointFrequency,
		DampingRatio:  DefaultJointDampingRatio,
	}
}

/// Shared joint state: stable body ids resolved to live bodies each startup,
/// local anchors, and the soft constraint knobs.
type jointBase struct {
	world *World2D

	id1, id2     uint64
	body1, body2 *Body2D

	localAnchor1, localAnchor2 Vec2

	collideBodies bool
	isSoft        bool
	frequency     float64
	dampingRatio  float64
}

func (j *jointBase) init(world *World2D, specs JointSpecs2D) error {
	if specs.BodyIndex1 < 0 || specs.BodyIndex1 >= world.Bodies.Size() ||
		specs.BodyIndex2 < 0 || specs.BodyIndex2 >= world.Bodies.Size() {
		return fmt.Errorf("%w: joint body index out of range (%d, %d)", ErrUnknownEntity, specs.BodyIndex1, specs.BodyIndex2)
	}
	if specs.BodyIndex1 == specs.BodyIndex2 {
		return fmt.Errorf("%w: joint cannot bind a body to itself (index %d)", ErrInvalidSpecs, specs.BodyIndex1)
	}

	body1 := world.Bodies.At(specs.BodyIndex1)
	body2 := world.Bodies.At(specs.BodyIndex2)

	j.world = world
	j.id1 = body1.ID
	j.id2 = body2.ID
	j.body1 = body1
	j.body2 = body2
	j.localAnchor1 = TransformVec2MulT(body1.Transform(), specs.Anchor1)
	j.localAnchor2 = TransformVec2MulT(body2.Transform(), specs.Anchor2)
	j.collideBodies = specs.CollideBodies
	j.isSoft = specs.IsSoft
	j.frequency = specs.Frequency
	j.dampingRatio = specs.DampingRatio
	return nil
}

/// Re-resolve the dense body references from the stable ids.
func (j *jointBase) startupBodies() {
	j.body1 = j.world.Bodies.FromID(j.id1)
	j.body2 = j.world.Bodies.FromID(j.id2)
	Assert(j.body1 != nil && j.body2 != nil)
	if j.body1.asleep != j.body2.asleep {
		j.body1.Awake()
		j.body2.Awake()
	}
}

/// World-space anchor offsets from each body's centroid.
func (j *jointBase) rotatedAnchors() (Vec2, Vec2) {
	r1 := RotVec2Mul(MakeRotFromAngle(j.body1.Rotation), j.localAnchor1)
	r2 := RotVec2Mul(MakeRotFromAngle(j.body2.Rotation), j.localAnchor2)
	return r1, r2
}

func (j *jointBase) GlobalAnchor1() Vec2 {
	r1, _ := j.rotatedAnchors()
	return Vec2Add(j.body1.Position, r1)
}

func (j *jointBase) GlobalAnchor2() Vec2 {
	_, r2 := j.rotatedAnchors()
	return Vec2Add(j.body2.Position, r2)
}

func (j *jointBase) ContainsBody(id uint64) bool {
	return j.id1 == id || j.id2 == id
}

func (j *jointBase) BodiesCollide() bool {
	return j.collideBodies
}

func (j *jointBase) BodyIDs() (uint64, uint64) {
	return j.id1, j.id2
}

func (j *jointBase) SoftParameters() (bool, float64, float64) {
	return j.isSoft, j.frequency, j.dampingRatio
}

func (j *jointBase) Awake() {
	if j.body1 != nil {
		j.body1.Awake()
	}
	if j.body2 != nil {
		j.body2.Awake()
	}
}

func (j *jointBase) Valid() bool {
	return j.world.Bodies.FromID(j.id1) != nil && j.world.Bodies.FromID(j.id2) != nil
}

/// Apply an impulse at the joint anchors: positive onto body 2, negative
/// onto body 1. The impulse lands on the constraint velocities so later rows
/// see it, and as an impulse/dt force so the integrator does too.
func (j *jointBase) applyImpulse(impulse Vec2, r1, r2 Vec2) {
	body1 := j.body1
	body2 := j.body2

	body1.CtrVelocity.OperatorMinusInplace(Vec2MulScalar(body1.InvMass, impulse))
	body1.CtrAngularVelocity -= body1.InvInertia * Vec2Cross(r1, impulse)
	body2.CtrVelocity.OperatorPlusInplace(Vec2MulScalar(body2.InvMass, impulse))
	body2.CtrAngularVelocity += body2.InvInertia * Vec2Cross(r2, impulse)

	dt := j.world.Integrator.Timestep
	if dt > 0.0 {
		force := Vec2MulScalar(1.0/dt, impulse)
		body1.ApplySimulationForceAt(force.OperatorNegate(), r1)
		body2.ApplySimulationForceAt(force, r2)
	}
}

/// Apply a pure angular impulse: positive onto body 2, negative onto body 1.
func (j *jointBase) applyAngularImpulse(impulse float64) {
	j.body1.CtrAngularVelocity -= j.body1.InvInertia * impulse
	j.body2.CtrAngularVelocity += j.body2.InvInertia * impulse

	dt := j.world.Integrator.Timestep
	if dt > 0.0 {
		j.body1.ApplySimulationTorque(-impulse / dt)
		j.body2.ApplySimulationTorque(impulse / dt)
	}
}

/// Softness coefficients derived from frequency and damping ratio: gamma
/// (added to the effective mass denominator) and the factor turning the
/// positional error into a bias velocity.
func (j *jointBase) softCoefficients(effMass float64) (float64, float64) {
	dt := j.world.Integrator.Timestep
	if effMass == 0.0 || dt == 0.0 {
		return 0.0, 0.0
	}

	omega := 2.0 * math.Pi * j.frequency
	stiffness := effMass * omega * omega
	damping := 2.0 * effMass * j.dampingRatio * omega

	gamma := dt * (damping + dt*stiffness)
	if gamma != 0.0 {
		gamma = 1.0 / gamma
	}
	return gamma, dt * stiffness * gamma
}

/// Translate frequency and damping ratio into the solver's softness terms.
/// effMass is the row's effective mass before softening; C the positional
/// error. Returns the softened effective mass, gamma and bias.
func (j *jointBase) softParams(effMass, c float64) (float64, float64, float64) {
	gamma, biasCoef := j.softCoefficients(effMass)
	if gamma == 0.0 && biasCoef == 0.0 {
		return effMass, 0.0, 0.0
	}
	invEff := 1.0/effMass + gamma
	return 1.0 / invEff, gamma, c * biasCoef
}

/// Baumgarte velocity bias for a hard constraint with positional error c,
/// active only outside the dead zone.
func (j *jointBase) baumgarteBias(c float64) float64 {
	specs := &j.world.Specs.Constraints
	dt := j.world.Integrator.Timestep
	if !specs.BaumgarteCorrection || dt == 0.0 {
		return 0.0
	}
	if math.Abs(c) <= specs.BaumgarteThreshold {
		return 0.0
	}
	return specs.BaumgarteCoef * c / dt
}
