package ppx

import (
	"math"
)

/// Weld joint specification: a single world anchor; the relative rotation is
/// locked at its setup value.
type WeldJointSpecs2D struct {
	Joint  JointSpecs2D
	Anchor Vec2
}

func MakeWeldJointSpecs2D(index1, index2 int, anchor Vec2) WeldJointSpecs2D {
	specs := WeldJointSpecs2D{
		Joint:  MakeJointSpecs2D(index1, index2),
		Anchor: anchor,
	}
	specs.Joint.Anchor1 = anchor
	specs.Joint.Anchor2 = anchor
	specs.Joint.CollideBodies = false
	return specs
}

/// A weld joint is a revolute joint plus a locked relative angle: three
/// constraint rows solved as one 3x3 block. Softness only relaxes the
/// angular row; the translational rows stay rigid.
type WeldJoint2D struct {
	jointBase

	refAngle float64

	accImpulse Vec3

	// Solver temp
	r1, r2  Vec2
	k       Mat33
	gamma   float64
	biasVec Vec3
}

func MakeWeldJoint2D(world *World2D, specs WeldJointSpecs2D) (*WeldJoint2D, error) {
	joint := &WeldJoint2D{}
	if err := joint.init(world, specs.Joint); err != nil {
		return nil, err
	}
	joint.refAngle = joint.body2.Rotation - joint.body1.Rotation
	return joint, nil
}

func (joint *WeldJoint2D) Kind() uint8 {
	return JointKind.E_weldJoint
}

func (joint *WeldJoint2D) constraintError() (Vec2, float64) {
	r1, r2 := joint.rotatedAnchors()
	linear := Vec2Sub(
		Vec2Add(joint.body2.Position, r2),
		Vec2Add(joint.body1.Position, r1),
	)
	angular := joint.body2.Rotation - joint.body1.Rotation - joint.refAngle
	return linear, angular
}

func weldMassMatrix(body1, body2 *Body2D, r1, r2 Vec2) Mat33 {
	m := body1.InvMass + body2.InvMass
	i1 := body1.InvInertia
	i2 := body2.InvInertia

	var k Mat33
	k.Ex.X = m + r1.Y*r1.Y*i1 + r2.Y*r2.Y*i2
	k.Ey.X = -r1.Y*r1.X*i1 - r2.Y*r2.X*i2
	k.Ez.X = -r1.Y*i1 - r2.Y*i2
	k.Ex.Y = k.Ey.X
	k.Ey.Y = m + r1.X*r1.X*i1 + r2.X*r2.X*i2
	k.Ez.Y = r1.X*i1 + r2.X*i2
	k.Ex.Z = k.Ez.X
	k.Ey.Z = k.Ez.Y
	k.Ez.Z = i1 + i2
	return k
}

func (joint *WeldJoint2D) Startup() {
	joint.startupBodies()
	joint.r1, joint.r2 = joint.rotatedAnchors()
	joint.k = weldMassMatrix(joint.body1, joint.body2, joint.r1, joint.r2)

	linearC, angularC := joint.constraintError()
	joint.gamma = 0.0
	if joint.isSoft && joint.k.Ez.Z > 0.0 {
		gamma, biasCoef := joint.softCoefficients(1.0 / joint.k.Ez.Z)
		joint.gamma = gamma
		joint.k.Ez.Z += gamma
		joint.biasVec = MakeVec3(
			joint.baumgarteBias(linearC.X),
			joint.baumgarteBias(linearC.Y),
			angularC*biasCoef,
		)
		return
	}
	joint.biasVec = MakeVec3(
		joint.baumgarteBias(linearC.X),
		joint.baumgarteBias(linearC.Y),
		joint.baumgarteBias(angularC),
	)
}

func (joint *WeldJoint2D) Warmup() {
	ratio := joint.world.TimestepRatio()
	joint.accImpulse.X *= ratio
	joint.accImpulse.Y *= ratio
	joint.accImpulse.Z *= ratio

	linear := MakeVec2(joint.accImpulse.X, joint.accImpulse.Y)
	joint.applyImpulse(linear, joint.r1, joint.r2)
	joint.applyAngularImpulse(joint.accImpulse.Z)
}

func (joint *WeldJoint2D) SolveVelocities() {
	body1 := joint.body1
	body2 := joint.body2

	cdotLinear := Vec2Sub(body2.CtrVelocityAt(joint.r2), body1.CtrVelocityAt(joint.r1))
	cdotAngular := body2.CtrAngularVelocity - body1.CtrAngularVelocity

	rhs := MakeVec3(
		cdotLinear.X+joint.biasVec.X,
		cdotLinear.Y+joint.biasVec.Y,
		cdotAngular+joint.biasVec.Z+joint.gamma*joint.accImpulse.Z,
	)
	impulse := joint.k.Solve33(rhs.OperatorNegate())
	if !IsValidFloat(impulse.X) || !IsValidFloat(impulse.Y) || !IsValidFloat(impulse.Z) {
		joint.world.reportConstraintDivergence(joint.id1, joint.id2)
		joint.accImpulse.SetZero()
		return
	}
	joint.accImpulse.OperatorPlusInplace(impulse)

	joint.applyImpulse(MakeVec2(impulse.X, impulse.Y), joint.r1, joint.r2)
	joint.applyAngularImpulse(impulse.Z)
}

func (joint *WeldJoint2D) SolvePositions() bool {
	specs := &joint.world.Specs.Constraints

	linearC, angularC := joint.constraintError()
	if linearC.Length() < specs.Slop && math.Abs(angularC) < specs.Slop {
		return true
	}

	r1, r2 := joint.rotatedAnchors()
	k := weldMassMatrix(joint.body1, joint.body2, r1, r2)

	correction := MakeVec3(
		FloatClamp(specs.PositionResolutionSpeed*linearC.X, -specs.MaxPositionCorrection, specs.MaxPositionCorrection),
		FloatClamp(specs.PositionResolutionSpeed*linearC.Y, -specs.MaxPositionCorrection, specs.MaxPositionCorrection),
		FloatClamp(specs.PositionResolutionSpeed*angularC, -MaxAngularCorrection, MaxAngularCorrection),
	)
	impulse := k.Solve33(correction.OperatorNegate())
	linear := MakeVec2(impulse.X, impulse.Y)

	body1 := joint.body1
	body2 := joint.body2
	body1.Position.OperatorMinusInplace(Vec2MulScalar(body1.InvMass, linear))
	body1.Rotation -= body1.InvInertia * (Vec2Cross(r1, linear) + impulse.Z)
	body2.Position.OperatorPlusInplace(Vec2MulScalar(body2.InvMass, linear))
	body2.Rotation += body2.InvInertia * (Vec2Cross(r2, linear) + impulse.Z)

	linearC, angularC = joint.constraintError()
	return linearC.Length() < specs.Slop && math.Abs(angularC) < specs.Slop
}

func (joint *WeldJoint2D) ReactiveForce() Vec2 {
	dt := joint.world.Integrator.Timestep
	if dt == 0.0 {
		return Vec2{}
	}
	return Vec2MulScalar(1.0/dt, MakeVec2(joint.accImpulse.X, joint.accImpulse.Y))
}

func (joint *WeldJoint2D) ReactiveTorque() float64 {
	dt := joint.world.Integrator.Timestep
	if dt == 0.0 {
		return 0.0
	}
	return joint.accImpulse.Z / dt
}
