package ppx

import (
	"math"
)

/// Motor joint specification. The motor drives body 2's centroid toward
/// body 1's centroid plus TargetOffset, never exceeding MaxForce.
type MotorJointSpecs2D struct {
	Joint JointSpecs2D

	TargetOffset     Vec2
	MaxForce         float64
	CorrectionFactor float64
}

func MakeMotorJointSpecs2D(index1, index2 int) MotorJointSpecs2D {
	return MotorJointSpecs2D{
		Joint:            MakeJointSpecs2D(index1, index2),
		MaxForce:         math.MaxFloat64,
		CorrectionFactor: DefaultCorrectionFactor,
	}
}

/// A motor joint is a force-limited linear drive between centroids: two
/// rows whose accumulated impulse is clamped to MaxForce * dt.
type MotorJoint2D struct {
	jointBase

	TargetOffset     Vec2
	MaxForce         float64
	CorrectionFactor float64

	accImpulse Vec2

	// Solver temp
	mass    float64
	biasVec Vec2
}

func MakeMotorJoint2D(world *World2D, specs MotorJointSpecs2D) (*MotorJoint2D, error) {
	joint := &MotorJoint2D{
		TargetOffset:     specs.TargetOffset,
		MaxForce:         specs.MaxForce,
		CorrectionFactor: specs.CorrectionFactor,
	}
	if err := joint.init(world, specs.Joint); err != nil {
		return nil, err
	}
	if joint.TargetOffset.LengthSquared() == 0.0 {
		joint.TargetOffset = Vec2Sub(joint.body2.Position, joint.body1.Position)
	}
	Assert(joint.MaxForce >= 0.0)
	return joint, nil
}

func (joint *MotorJoint2D) Kind() uint8 {
	return JointKind.E_motorJoint
}

func (joint *MotorJoint2D) constraintError() Vec2 {
	target := Vec2Add(joint.body1.Position, joint.TargetOffset)
	return Vec2Sub(joint.body2.Position, target)
}

func (joint *MotorJoint2D) Startup() {
	joint.startupBodies()

	invMass := joint.body1.InvMass + joint.body2.InvMass
	if invMass == 0.0 {
		joint.mass = 0.0
		return
	}
	joint.mass = 1.0 / invMass

	joint.biasVec = Vec2{}
	dt := joint.world.Integrator.Timestep
	if dt > 0.0 {
		joint.biasVec = Vec2MulScalar(joint.CorrectionFactor/dt, joint.constraintError())
	}
}

func (joint *MotorJoint2D) Warmup() {
	joint.accImpulse.OperatorScalarMulInplace(joint.world.TimestepRatio())
	if joint.accImpulse.LengthSquared() == 0.0 {
		return
	}
	joint.applyImpulse(joint.accImpulse, Vec2{}, Vec2{})
}

func (joint *MotorJoint2D) SolveVelocities() {
	if joint.mass == 0.0 {
		return
	}

	cdot := Vec2Sub(joint.body2.CtrVelocity, joint.body1.CtrVelocity)
	rhs := Vec2Add(cdot, joint.biasVec)
	lambda := Vec2MulScalar(-joint.mass, rhs)

	newAcc := Vec2Add(joint.accImpulse, lambda)
	maxImpulse := joint.MaxForce * joint.world.Integrator.Timestep
	if newAcc.Length() > maxImpulse {
		newAcc.OperatorScalarMulInplace(maxImpulse / newAcc.Length())
	}
	if !newAcc.IsValid() {
		joint.world.reportConstraintDivergence(joint.id1, joint.id2)
		newAcc.SetZero()
	}
	lambda = Vec2Sub(newAcc, joint.accImpulse)
	joint.accImpulse = newAcc
	joint.applyImpulse(lambda, Vec2{}, Vec2{})
}

/// The drive's bias term handles positional convergence; there is nothing to
/// correct geometrically.
func (joint *MotorJoint2D) SolvePositions() bool {
	return true
}

func (joint *MotorJoint2D) ReactiveForce() Vec2 {
	dt := joint.world.Integrator.Timestep
	if dt == 0.0 {
		return Vec2{}
	}
	return Vec2MulScalar(1.0/dt, joint.accImpulse)
}

func (joint *MotorJoint2D) ReactiveTorque() float64 {
	return 0.0
}
