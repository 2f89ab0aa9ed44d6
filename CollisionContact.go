package ppx

import (
	"fmt"
	"math"
)

/// A persistent contact constraint identified by the canonical pair key plus
/// the manifold slot it occupies. It carries the accumulated normal and
/// tangent impulses across steps for warm starting.
type ContactKey struct {
	ID1, ID2 uint64
	Feature  int
}

func MakeContactKey(id1, id2 uint64, feature int) ContactKey {
	if id1 > id2 {
		id1, id2 = id2, id1
	}
	return ContactKey{ID1: id1, ID2: id2, Feature: feature}
}

type Contact2D struct {
	world *World2D
	key   ContactKey

	// Participants in collision order: the normal points from body 1
	// toward body 2.
	id1, id2       uint64
	index1, index2 int

	localAnchor1, localAnchor2 Vec2
	normal                     Vec2
	penetration                float64

	restitution float64
	friction    float64

	// Solver temp, recomputed at startup.
	body1, body2 *Body2D
	r1, r2       Vec2
	tangent      Vec2
	normalMass   float64
	tangentMass  float64
	bias         float64

	accNormalImpulse  float64
	accTangentImpulse float64

	unmatchedSteps int
}

func NewContact2D(world *World2D, collision *Collision2D, feature int) *Contact2D {
	contact := &Contact2D{
		world: world,
		key:   MakeContactKey(collision.ID1, collision.ID2, feature),
	}
	contact.Update(collision, feature)
	return contact
}

func (contact *Contact2D) Key() ContactKey {
	return contact.key
}

/// Refresh the contact from the current step's manifold slot.
func (contact *Contact2D) Update(collision *Collision2D, feature int) {
	Assert(feature < collision.ManifoldCount)

	contact.id1 = collision.ID1
	contact.id2 = collision.ID2
	contact.index1 = collision.Index1
	contact.index2 = collision.Index2

	body1 := contact.world.Bodies.At(collision.Index1)
	body2 := contact.world.Bodies.At(collision.Index2)

	xf1 := body1.Transform()
	xf2 := body2.Transform()
	contact.localAnchor1 = TransformVec2MulT(xf1, collision.Touch1[feature])
	contact.localAnchor2 = TransformVec2MulT(xf2, collision.Touch2[feature])

	contact.normal = collision.Normal()
	contact.penetration = collision.Depth()

	// Restitution and friction mixing: bounce wins, friction is the
	// geometric mean.
	contact.restitution = body1.Restitution
	if body2.Restitution > contact.restitution {
		contact.restitution = body2.Restitution
	}
	contact.friction = sqrtMixFriction(body1.Friction, body2.Friction)

	contact.unmatchedSteps = 0
}

func (contact *Contact2D) Startup() {
	world := contact.world
	contact.body1 = world.Bodies.FromID(contact.id1)
	contact.body2 = world.Bodies.FromID(contact.id2)
	Assert(contact.body1 != nil && contact.body2 != nil)
	contact.index1 = contact.body1.Index
	contact.index2 = contact.body2.Index

	body1 := contact.body1
	body2 := contact.body2
	if body1.asleep != body2.asleep {
		body1.Awake()
		body2.Awake()
	}

	contact.r1 = RotVec2Mul(MakeRotFromAngle(body1.Rotation), contact.localAnchor1)
	contact.r2 = RotVec2Mul(MakeRotFromAngle(body2.Rotation), contact.localAnchor2)
	contact.tangent = contact.normal.Skew()

	contact.normalMass = effectiveInverseMass(body1, body2, contact.r1, contact.r2, contact.normal)
	contact.tangentMass = effectiveInverseMass(body1, body2, contact.r1, contact.r2, contact.tangent)

	specs := &world.Specs.Constraints
	dt := world.Integrator.Timestep

	contact.bias = 0.0
	vn := Vec2Dot(contact.normal, Vec2Sub(body2.CtrVelocityAt(contact.r2), body1.CtrVelocityAt(contact.r1)))
	if vn < -specs.BaumgarteThreshold {
		contact.bias += contact.restitution * vn
	}
	if specs.BaumgarteCorrection && contact.penetration > specs.BaumgarteThreshold && dt > 0.0 {
		excess := contact.penetration - specs.Slop
		if excess > 0.0 {
			contact.bias -= specs.BaumgarteCoef * excess / dt
		}
	}
}

/// Re-apply last step's converged impulses, rescaled by the timestep ratio
/// so the equivalent force stays continuous across dt changes.
func (contact *Contact2D) Warmup() {
	ratio := contact.world.TimestepRatio()
	contact.accNormalImpulse *= ratio
	contact.accTangentImpulse *= ratio
	if contact.accNormalImpulse == 0.0 && contact.accTangentImpulse == 0.0 {
		return
	}

	impulse := Vec2Add(
		Vec2MulScalar(contact.accNormalImpulse, contact.normal),
		Vec2MulScalar(contact.accTangentImpulse, contact.tangent),
	)
	contact.applyImpulse(impulse)
}

func (contact *Contact2D) SolveVelocities() {
	body1 := contact.body1
	body2 := contact.body2

	// Normal row: accumulated impulse stays non-negative.
	vn := Vec2Dot(contact.normal, Vec2Sub(body2.CtrVelocityAt(contact.r2), body1.CtrVelocityAt(contact.r1)))
	lambda := -contact.normalMass * (vn + contact.bias)

	newAcc := contact.accNormalImpulse + lambda
	if newAcc < 0.0 {
		newAcc = 0.0
	}
	if !IsValidFloat(newAcc) {
		contact.world.reportError(fmt.Errorf("%w: contact between bodies %d and %d", ErrConstraintDivergence, contact.id1, contact.id2))
		newAcc = 0.0
	}
	lambda = newAcc - contact.accNormalImpulse
	contact.accNormalImpulse = newAcc
	contact.applyImpulse(Vec2MulScalar(lambda, contact.normal))

	// Friction row: the accumulated tangent impulse lives in the cone
	// |lambda_t| <= mu * lambda_n.
	vt := Vec2Dot(contact.tangent, Vec2Sub(body2.CtrVelocityAt(contact.r2), body1.CtrVelocityAt(contact.r1)))
	lambdaT := -contact.tangentMass * vt

	maxTangent := contact.friction * contact.accNormalImpulse
	newAccT := FloatClamp(contact.accTangentImpulse+lambdaT, -maxTangent, maxTangent)
	if !IsValidFloat(newAccT) {
		contact.world.reportError(fmt.Errorf("%w: contact friction between bodies %d and %d", ErrConstraintDivergence, contact.id1, contact.id2))
		newAccT = 0.0
	}
	lambdaT = newAccT - contact.accTangentImpulse
	contact.accTangentImpulse = newAccT
	contact.applyImpulse(Vec2MulScalar(lambdaT, contact.tangent))
}

/// Non-linear Gauss-Seidel position pass: push the bodies apart along the
/// normal until the remaining penetration drops below the slop.
func (contact *Contact2D) SolvePositions() bool {
	specs := &contact.world.Specs.Constraints
	c := contact.penetration - specs.Slop
	if c <= 0.0 {
		return true
	}

	body1 := contact.body1
	body2 := contact.body2
	invMassSum := body1.InvMass + body2.InvMass
	if invMassSum == 0.0 {
		return true
	}

	correction := FloatClamp(specs.PositionResolutionSpeed*c, 0.0, specs.MaxPositionCorrection)
	shift := Vec2MulScalar(correction/invMassSum, contact.normal)

	body1.Position.OperatorMinusInplace(Vec2MulScalar(body1.InvMass, shift))
	body2.Position.OperatorPlusInplace(Vec2MulScalar(body2.InvMass, shift))
	contact.penetration -= correction

	return contact.penetration < specs.Slop
}

func (contact *Contact2D) applyImpulse(impulse Vec2) {
	body1 := contact.body1
	body2 := contact.body2

	body1.CtrVelocity.OperatorMinusInplace(Vec2MulScalar(body1.InvMass, impulse))
	body1.CtrAngularVelocity -= body1.InvInertia * Vec2Cross(contact.r1, impulse)
	body2.CtrVelocity.OperatorPlusInplace(Vec2MulScalar(body2.InvMass, impulse))
	body2.CtrAngularVelocity += body2.InvInertia * Vec2Cross(contact.r2, impulse)

	dt := contact.world.Integrator.Timestep
	if dt > 0.0 {
		force := Vec2MulScalar(1.0/dt, impulse)
		body1.ApplySimulationForceAt(force.OperatorNegate(), contact.r1)
		body2.ApplySimulationForceAt(force, contact.r2)
	}
}

func (contact *Contact2D) ContainsBody(id uint64) bool {
	return contact.id1 == id || contact.id2 == id
}

func (contact *Contact2D) BodyIDs() (uint64, uint64) {
	return contact.id1, contact.id2
}

/// Effective mass of a one dimensional constraint row along dir, anchored at
/// the world offsets r1 and r2.
func effectiveInverseMass(body1, body2 *Body2D, r1, r2, dir Vec2) float64 {
	cross1 := Vec2Cross(r1, dir)
	cross2 := Vec2Cross(r2, dir)
	invMass := body1.InvMass + body2.InvMass +
		body1.InvInertia*cross1*cross1 + body2.InvInertia*cross2*cross2
	if invMass <= 0.0 {
		return 0.0
	}
	return 1.0 / invMass
}

func sqrtMixFriction(f1, f2 float64) float64 {
	mixed := f1 * f2
	if mixed <= 0.0 {
		return 0.0
	}
	return math.Sqrt(mixed)
}
