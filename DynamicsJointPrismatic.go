package ppx

import (
	"math"
)

/// Prismatic joint specification. Axis is given in world coordinates at
/// setup; a zero axis is deduced from the anchor separation, falling back to
/// the world x axis when the anchors coincide.
type PrismaticJointSpecs2D struct {
	Joint JointSpecs2D
	Axis  Vec2
}

func MakePrismaticJointSpecs2D(index1, index2 int) PrismaticJointSpecs2D {
	return PrismaticJointSpecs2D{
		Joint: MakeJointSpecs2D(index1, index2),
	}
}

/// A prismatic joint allows translation along a single axis fixed to body 1
/// and locks relative rotation: one row perpendicular to the axis plus one
/// angular row, solved as a 2x2 block.
type PrismaticJoint2D struct {
	jointBase

	localAxis Vec2
	refAngle  float64

	accImpulse Vec2

	// Solver temp
	r1, r2  Vec2
	perp    Vec2
	s1, s2  float64
	k       Mat22
	gamma   float64
	biasVec Vec2
}

func MakePrismaticJoint2D(world *World2D, specs PrismaticJointSpecs2D) (*PrismaticJoint2D, error) {
	joint := &PrismaticJoint2D{}
	if err := joint.init(world, specs.Joint); err != nil {
		return nil, err
	}

	axis := specs.Axis
	if axis.LengthSquared() < Epsilon*Epsilon {
		axis = Vec2Sub(specs.Joint.Anchor2, specs.Joint.Anchor1)
	}
	if axis.LengthSquared() < Epsilon*Epsilon {
		axis = MakeVec2(1.0, 0.0)
	}
	axis.Normalize()
	joint.localAxis = RotVec2MulT(MakeRotFromAngle(joint.body1.Rotation), axis)
	joint.refAngle = joint.body2.Rotation - joint.body1.Rotation
	return joint, nil
}

func (joint *PrismaticJoint2D) Kind() uint8 {
	return JointKind.E_prismaticJoint
}

/// The world axis the joint slides along.
func (joint *PrismaticJoint2D) Axis() Vec2 {
	return RotVec2Mul(MakeRotFromAngle(joint.body1.Rotation), joint.localAxis)
}

func (joint *PrismaticJoint2D) constraintError() (Vec2, float64, float64, float64, Vec2) {
	r1, r2 := joint.rotatedAnchors()
	d := Vec2Sub(
		Vec2Add(joint.body2.Position, r2),
		Vec2Add(joint.body1.Position, r1),
	)
	perp := Vec2CrossScalarVector(1.0, joint.Axis())
	cPerp := Vec2Dot(perp, d)
	cAngle := joint.body2.Rotation - joint.body1.Rotation - joint.refAngle
	return perp, Vec2Cross(Vec2Add(d, r1), perp), Vec2Cross(r2, perp), cPerp, MakeVec2(cPerp, cAngle)
}

func prismaticMassMatrix(body1, body2 *Body2D, s1, s2 float64) Mat22 {
	k11 := body1.InvMass + body2.InvMass + body1.InvInertia*s1*s1 + body2.InvInertia*s2*s2
	k12 := body1.InvInertia*s1 + body2.InvInertia*s2
	k22 := body1.InvInertia + body2.InvInertia
	if k22 == 0.0 {
		k22 = 1.0
	}
	return MakeMat22FromScalars(k11, k12, k12, k22)
}

func (joint *PrismaticJoint2D) Startup() {
	joint.startupBodies()
	joint.r1, joint.r2 = joint.rotatedAnchors()

	perp, s1, s2, _, c := joint.constraintError()
	joint.perp = perp
	joint.s1 = s1
	joint.s2 = s2
	joint.k = prismaticMassMatrix(joint.body1, joint.body2, s1, s2)

	if joint.isSoft {
		meanInv := 0.5 * (joint.k.Ex.X + joint.k.Ey.Y)
		effMass := 0.0
		if meanInv > 0.0 {
			effMass = 1.0 / meanInv
		}
		gamma, biasCoef := joint.softCoefficients(effMass)
		joint.gamma = gamma
		joint.biasVec = Vec2MulScalar(biasCoef, c)
		joint.k.Ex.X += gamma
		joint.k.Ey.Y += gamma
		return
	}
	joint.gamma = 0.0
	joint.biasVec = MakeVec2(joint.baumgarteBias(c.X), joint.baumgarteBias(c.Y))
}

/// Apply the perpendicular and angular impulses with the prismatic torque
/// arms, which are not the plain anchor crosses.
func (joint *PrismaticJoint2D) applyPrismaticImpulse(impulse Vec2) {
	body1 := joint.body1
	body2 := joint.body2

	p := Vec2MulScalar(impulse.X, joint.perp)
	l1 := impulse.X*joint.s1 + impulse.Y
	l2 := impulse.X*joint.s2 + impulse.Y

	body1.CtrVelocity.OperatorMinusInplace(Vec2MulScalar(body1.InvMass, p))
	body1.CtrAngularVelocity -= body1.InvInertia * l1
	body2.CtrVelocity.OperatorPlusInplace(Vec2MulScalar(body2.InvMass, p))
	body2.CtrAngularVelocity += body2.InvInertia * l2

	dt := joint.world.Integrator.Timestep
	if dt > 0.0 {
		force := Vec2MulScalar(1.0/dt, p)
		body1.ApplySimulationForce(force.OperatorNegate())
		body1.ApplySimulationTorque(-l1 / dt)
		body2.ApplySimulationForce(force)
		body2.ApplySimulationTorque(l2 / dt)
	}
}

func (joint *PrismaticJoint2D) Warmup() {
	joint.accImpulse.OperatorScalarMulInplace(joint.world.TimestepRatio())
	if joint.accImpulse.LengthSquared() == 0.0 {
		return
	}
	joint.applyPrismaticImpulse(joint.accImpulse)
}

func (joint *PrismaticJoint2D) SolveVelocities() {
	body1 := joint.body1
	body2 := joint.body2

	dv := Vec2Sub(body2.CtrVelocity, body1.CtrVelocity)
	cdotPerp := Vec2Dot(joint.perp, dv) + joint.s2*body2.CtrAngularVelocity - joint.s1*body1.CtrAngularVelocity
	cdotAngle := body2.CtrAngularVelocity - body1.CtrAngularVelocity

	rhs := MakeVec2(cdotPerp+joint.biasVec.X, cdotAngle+joint.biasVec.Y)
	rhs.OperatorPlusInplace(Vec2MulScalar(joint.gamma, joint.accImpulse))

	impulse := joint.k.Solve(rhs.OperatorNegate())
	if !impulse.IsValid() {
		joint.world.reportConstraintDivergence(joint.id1, joint.id2)
		joint.accImpulse.SetZero()
		return
	}
	joint.accImpulse.OperatorPlusInplace(impulse)
	joint.applyPrismaticImpulse(impulse)
}

func (joint *PrismaticJoint2D) SolvePositions() bool {
	if joint.isSoft {
		return true
	}
	specs := &joint.world.Specs.Constraints

	_, s1, s2, _, c := joint.constraintError()
	if math.Abs(c.X) < specs.Slop && math.Abs(c.Y) < specs.Slop {
		return true
	}

	k := prismaticMassMatrix(joint.body1, joint.body2, s1, s2)
	correction := MakeVec2(
		FloatClamp(specs.PositionResolutionSpeed*c.X, -specs.MaxPositionCorrection, specs.MaxPositionCorrection),
		FloatClamp(specs.PositionResolutionSpeed*c.Y, -MaxAngularCorrection, MaxAngularCorrection),
	)
	impulse := k.Solve(correction.OperatorNegate())

	perp, _, _, _, _ := joint.constraintError()
	p := Vec2MulScalar(impulse.X, perp)
	l1 := impulse.X*s1 + impulse.Y
	l2 := impulse.X*s2 + impulse.Y

	body1 := joint.body1
	body2 := joint.body2
	body1.Position.OperatorMinusInplace(Vec2MulScalar(body1.InvMass, p))
	body1.Rotation -= body1.InvInertia * l1
	body2.Position.OperatorPlusInplace(Vec2MulScalar(body2.InvMass, p))
	body2.Rotation += body2.InvInertia * l2

	_, _, _, _, c = joint.constraintError()
	return math.Abs(c.X) < specs.Slop && math.Abs(c.Y) < specs.Slop
}

func (joint *PrismaticJoint2D) ReactiveForce() Vec2 {
	dt := joint.world.Integrator.Timestep
	if dt == 0.0 {
		return Vec2{}
	}
	return Vec2MulScalar(joint.accImpulse.X/dt, joint.perp)
}

func (joint *PrismaticJoint2D) ReactiveTorque() float64 {
	dt := joint.world.Integrator.Timestep
	if dt == 0.0 {
		return 0.0
	}
	return joint.accImpulse.Y / dt
}
