package ppx

import (
	"math"
)

/// Ball joint specification. When both angles are zero the current relative
/// rotation is locked; otherwise the relative rotation is kept inside
/// [MinAngle, MaxAngle].
type BallJointSpecs2D struct {
	Joint JointSpecs2D

	MinAngle float64
	MaxAngle float64
}

func MakeBallJointSpecs2D(index1, index2 int) BallJointSpecs2D {
	return BallJointSpecs2D{
		Joint: MakeJointSpecs2D(index1, index2),
	}
}

/// A ball joint limits the relative rotation between two bodies: a single
/// angular row, active only when the relative angle leaves the allowed range.
type BallJoint2D struct {
	jointBase

	MinAngle float64
	MaxAngle float64

	accImpulse float64

	// Solver temp
	mass       float64
	gamma      float64
	bias       float64
	c          float64
	active     bool
	lowerBound bool
}

func MakeBallJoint2D(world *World2D, specs BallJointSpecs2D) (*BallJoint2D, error) {
	joint := &BallJoint2D{
		MinAngle: specs.MinAngle,
		MaxAngle: specs.MaxAngle,
	}
	if err := joint.init(world, specs.Joint); err != nil {
		return nil, err
	}
	if joint.MinAngle == 0.0 && joint.MaxAngle == 0.0 {
		rel := joint.body2.Rotation - joint.body1.Rotation
		joint.MinAngle = rel
		joint.MaxAngle = rel
	}
	Assert(joint.MinAngle <= joint.MaxAngle)
	return joint, nil
}

func (joint *BallJoint2D) Kind() uint8 {
	return JointKind.E_ballJoint
}

func (joint *BallJoint2D) rigid() bool {
	return joint.MinAngle == joint.MaxAngle
}

func (joint *BallJoint2D) relativeAngle() float64 {
	return joint.body2.Rotation - joint.body1.Rotation
}

func (joint *BallJoint2D) angleError(rel float64) (float64, bool, bool) {
	switch {
	case joint.rigid():
		return rel - joint.MinAngle, true, true
	case rel < joint.MinAngle:
		return rel - joint.MinAngle, true, true
	case rel > joint.MaxAngle:
		return rel - joint.MaxAngle, true, false
	default:
		return 0.0, false, false
	}
}

func (joint *BallJoint2D) Startup() {
	joint.startupBodies()

	var active bool
	joint.c, active, joint.lowerBound = joint.angleError(joint.relativeAngle())
	joint.active = active
	if !active {
		joint.accImpulse = 0.0
		return
	}

	invMass := joint.body1.InvInertia + joint.body2.InvInertia
	if invMass == 0.0 {
		joint.active = false
		return
	}
	joint.mass = 1.0 / invMass
	if joint.isSoft {
		joint.mass, joint.gamma, joint.bias = joint.softParams(joint.mass, joint.c)
	} else {
		joint.gamma = 0.0
		joint.bias = joint.baumgarteBias(joint.c)
	}
}

func (joint *BallJoint2D) Warmup() {
	if !joint.active {
		return
	}
	joint.accImpulse *= joint.world.TimestepRatio()
	if joint.accImpulse == 0.0 {
		return
	}
	joint.applyAngularImpulse(joint.accImpulse)
}

func (joint *BallJoint2D) SolveVelocities() {
	if !joint.active {
		return
	}

	cdot := joint.body2.CtrAngularVelocity - joint.body1.CtrAngularVelocity
	lambda := -joint.mass * (cdot + joint.bias + joint.gamma*joint.accImpulse)

	newAcc := joint.accImpulse + lambda
	if !joint.rigid() {
		if joint.lowerBound && newAcc < 0.0 {
			newAcc = 0.0
		}
		if !joint.lowerBound && newAcc > 0.0 {
			newAcc = 0.0
		}
	}
	if !IsValidFloat(newAcc) {
		joint.world.reportConstraintDivergence(joint.id1, joint.id2)
		newAcc = 0.0
	}
	lambda = newAcc - joint.accImpulse
	joint.accImpulse = newAcc
	joint.applyAngularImpulse(lambda)
}

func (joint *BallJoint2D) SolvePositions() bool {
	if joint.isSoft {
		return true
	}
	specs := &joint.world.Specs.Constraints

	c, active, _ := joint.angleError(joint.relativeAngle())
	if !active || math.Abs(c) < specs.Slop {
		return true
	}

	invMass := joint.body1.InvInertia + joint.body2.InvInertia
	if invMass == 0.0 {
		return true
	}
	correction := FloatClamp(specs.PositionResolutionSpeed*c, -MaxAngularCorrection, MaxAngularCorrection)
	impulse := -correction / invMass

	joint.body1.Rotation -= joint.body1.InvInertia * impulse
	joint.body2.Rotation += joint.body2.InvInertia * impulse

	c, active, _ = joint.angleError(joint.relativeAngle())
	return !active || math.Abs(c) < specs.Slop
}

func (joint *BallJoint2D) ReactiveForce() Vec2 {
	return Vec2{}
}

func (joint *BallJoint2D) ReactiveTorque() float64 {
	dt := joint.world.Integrator.Timestep
	if dt == 0.0 {
		return 0.0
	}
	return joint.accImpulse / dt
}
