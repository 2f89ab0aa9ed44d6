package ppx

import (
	"math"
)

/// Rotor joint specification. The rotor drives the relative angular velocity
/// toward TargetSpeed, never exceeding MaxTorque. With SpinIndefinitely off
/// the relative angle is steered back into [MinAngle, MaxAngle] at a rate
/// set by CorrectionFactor.
type RotorJointSpecs2D struct {
	Joint JointSpecs2D

	TargetSpeed      float64
	MaxTorque        float64
	CorrectionFactor float64
	MinAngle         float64
	MaxAngle         float64
	SpinIndefinitely bool
}

func MakeRotorJointSpecs2D(index1, index2 int) RotorJointSpecs2D {
	return RotorJointSpecs2D{
		Joint:            MakeJointSpecs2D(index1, index2),
		MaxTorque:        math.MaxFloat64,
		CorrectionFactor: DefaultCorrectionFactor,
	}
}

/// A rotor joint is a torque-limited angular drive: one angular row whose
/// accumulated impulse is clamped to MaxTorque * dt.
type RotorJoint2D struct {
	jointBase

	TargetSpeed      float64
	MaxTorque        float64
	CorrectionFactor float64
	MinAngle         float64
	MaxAngle         float64
	SpinIndefinitely bool

	accImpulse float64

	// Solver temp
	mass float64
	bias float64
}

func MakeRotorJoint2D(world *World2D, specs RotorJointSpecs2D) (*RotorJoint2D, error) {
	joint := &RotorJoint2D{
		TargetSpeed:      specs.TargetSpeed,
		MaxTorque:        specs.MaxTorque,
		CorrectionFactor: specs.CorrectionFactor,
		MinAngle:         specs.MinAngle,
		MaxAngle:         specs.MaxAngle,
		SpinIndefinitely: specs.SpinIndefinitely,
	}
	if err := joint.init(world, specs.Joint); err != nil {
		return nil, err
	}
	Assert(joint.MinAngle <= joint.MaxAngle)
	Assert(joint.MaxTorque >= 0.0)
	return joint, nil
}

func (joint *RotorJoint2D) Kind() uint8 {
	return JointKind.E_rotorJoint
}

func (joint *RotorJoint2D) angleError() float64 {
	rel := joint.body2.Rotation - joint.body1.Rotation
	switch {
	case rel < joint.MinAngle:
		return rel - joint.MinAngle
	case rel > joint.MaxAngle:
		return rel - joint.MaxAngle
	default:
		return 0.0
	}
}

func (joint *RotorJoint2D) Startup() {
	joint.startupBodies()

	invMass := joint.body1.InvInertia + joint.body2.InvInertia
	if invMass == 0.0 {
		joint.mass = 0.0
		return
	}
	joint.mass = 1.0 / invMass

	joint.bias = 0.0
	dt := joint.world.Integrator.Timestep
	if !joint.SpinIndefinitely && dt > 0.0 {
		joint.bias = joint.CorrectionFactor * joint.angleError() / dt
	}
}

func (joint *RotorJoint2D) Warmup() {
	joint.accImpulse *= joint.world.TimestepRatio()
	if joint.accImpulse == 0.0 {
		return
	}
	joint.applyAngularImpulse(joint.accImpulse)
}

func (joint *RotorJoint2D) SolveVelocities() {
	if joint.mass == 0.0 {
		return
	}

	cdot := joint.body2.CtrAngularVelocity - joint.body1.CtrAngularVelocity - joint.TargetSpeed
	lambda := -joint.mass * (cdot + joint.bias)

	maxImpulse := joint.MaxTorque * joint.world.Integrator.Timestep
	newAcc := FloatClamp(joint.accImpulse+lambda, -maxImpulse, maxImpulse)
	if !IsValidFloat(newAcc) {
		joint.world.reportConstraintDivergence(joint.id1, joint.id2)
		newAcc = 0.0
	}
	lambda = newAcc - joint.accImpulse
	joint.accImpulse = newAcc
	joint.applyAngularImpulse(lambda)
}

func (joint *RotorJoint2D) SolvePositions() bool {
	if joint.SpinIndefinitely {
		return true
	}
	specs := &joint.world.Specs.Constraints

	c := joint.angleError()
	if math.Abs(c) < specs.Slop {
		return true
	}
	invMass := joint.body1.InvInertia + joint.body2.InvInertia
	if invMass == 0.0 {
		return true
	}

	correction := FloatClamp(joint.CorrectionFactor*c, -MaxAngularCorrection, MaxAngularCorrection)
	impulse := -correction / invMass
	joint.body1.Rotation -= joint.body1.InvInertia * impulse
	joint.body2.Rotation += joint.body2.InvInertia * impulse

	return math.Abs(joint.angleError()) < specs.Slop
}

func (joint *RotorJoint2D) ReactiveForce() Vec2 {
	return Vec2{}
}

func (joint *RotorJoint2D) ReactiveTorque() float64 {
	dt := joint.world.Integrator.Timestep
	if dt == 0.0 {
		return 0.0
	}
	return joint.accImpulse / dt
}
