package ppx

import (
	"math"
)

/// Distance joint specification. A zero distance band deduces the rest
/// distance from the initial anchor separation, producing a rigid rod; a
/// MinDistance < MaxDistance band only constrains outside the band.
type DistanceJointSpecs2D struct {
	Joint JointSpecs2D

	MinDistance float64
	MaxDistance float64
}

func MakeDistanceJointSpecs2D(index1, index2 int) DistanceJointSpecs2D {
	return DistanceJointSpecs2D{
		Joint: MakeJointSpecs2D(index1, index2),
	}
}

/// A distance joint keeps the anchor separation inside [MinDistance,
/// MaxDistance]: one constraint row along the anchor-to-anchor direction.
type DistanceJoint2D struct {
	jointBase

	MinDistance float64
	MaxDistance float64

	accImpulse float64

	// Solver temp
	dir        Vec2
	r1, r2     Vec2
	mass       float64
	gamma      float64
	bias       float64
	c          float64
	active     bool
	lowerBound bool
}

func MakeDistanceJoint2D(world *World2D, specs DistanceJointSpecs2D) (*DistanceJoint2D, error) {
	joint := &DistanceJoint2D{
		MinDistance: specs.MinDistance,
		MaxDistance: specs.MaxDistance,
	}
	if err := joint.init(world, specs.Joint); err != nil {
		return nil, err
	}
	if joint.MinDistance == 0.0 && joint.MaxDistance == 0.0 {
		rest := Vec2Distance(specs.Joint.Anchor1, specs.Joint.Anchor2)
		joint.MinDistance = rest
		joint.MaxDistance = rest
	}
	Assert(joint.MinDistance <= joint.MaxDistance)
	return joint, nil
}

func (joint *DistanceJoint2D) Kind() uint8 {
	return JointKind.E_distanceJoint
}

func (joint *DistanceJoint2D) rigid() bool {
	return joint.MinDistance == joint.MaxDistance
}

func (joint *DistanceJoint2D) Startup() {
	joint.startupBodies()
	joint.r1, joint.r2 = joint.rotatedAnchors()

	delta := Vec2Sub(
		Vec2Add(joint.body2.Position, joint.r2),
		Vec2Add(joint.body1.Position, joint.r1),
	)
	dist := delta.Length()
	if dist < Epsilon {
		joint.active = false
		return
	}
	joint.dir = Vec2MulScalar(1.0/dist, delta)

	joint.active = true
	switch {
	case joint.rigid():
		joint.c = dist - joint.MinDistance
	case dist < joint.MinDistance:
		joint.c = dist - joint.MinDistance
		joint.lowerBound = true
	case dist > joint.MaxDistance:
		joint.c = dist - joint.MaxDistance
		joint.lowerBound = false
	default:
		joint.active = false
		joint.accImpulse = 0.0
		return
	}

	joint.mass = effectiveInverseMass(joint.body1, joint.body2, joint.r1, joint.r2, joint.dir)
	if joint.isSoft {
		joint.mass, joint.gamma, joint.bias = joint.softParams(joint.mass, joint.c)
	} else {
		joint.gamma = 0.0
		joint.bias = joint.baumgarteBias(joint.c)
	}
}

func (joint *DistanceJoint2D) Warmup() {
	if !joint.active {
		return
	}
	joint.accImpulse *= joint.world.TimestepRatio()
	if joint.accImpulse == 0.0 {
		return
	}
	joint.applyImpulse(Vec2MulScalar(joint.accImpulse, joint.dir), joint.r1, joint.r2)
}

func (joint *DistanceJoint2D) SolveVelocities() {
	if !joint.active {
		return
	}

	cdot := Vec2Dot(joint.dir, Vec2Sub(
		joint.body2.CtrVelocityAt(joint.r2),
		joint.body1.CtrVelocityAt(joint.r1),
	))
	lambda := -joint.mass * (cdot + joint.bias + joint.gamma*joint.accImpulse)

	newAcc := joint.accImpulse + lambda
	if !joint.rigid() {
		// A violated lower bound may only push apart, an upper bound may
		// only pull together.
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
	joint.applyImpulse(Vec2MulScalar(lambda, joint.dir), joint.r1, joint.r2)
}

func (joint *DistanceJoint2D) SolvePositions() bool {
	if joint.isSoft {
		return true
	}
	specs := &joint.world.Specs.Constraints

	r1, r2 := joint.rotatedAnchors()
	delta := Vec2Sub(
		Vec2Add(joint.body2.Position, r2),
		Vec2Add(joint.body1.Position, r1),
	)
	dist := delta.Length()
	if dist < Epsilon {
		return true
	}
	dir := Vec2MulScalar(1.0/dist, delta)

	var c float64
	switch {
	case joint.rigid():
		c = dist - joint.MinDistance
	case dist < joint.MinDistance:
		c = dist - joint.MinDistance
	case dist > joint.MaxDistance:
		c = dist - joint.MaxDistance
	default:
		return true
	}
	if math.Abs(c) < specs.Slop {
		return true
	}

	correction := FloatClamp(specs.PositionResolutionSpeed*c, -specs.MaxPositionCorrection, specs.MaxPositionCorrection)
	mass := effectiveInverseMass(joint.body1, joint.body2, r1, r2, dir)
	impulse := Vec2MulScalar(-mass*correction, dir)

	body1 := joint.body1
	body2 := joint.body2
	body1.Position.OperatorMinusInplace(Vec2MulScalar(body1.InvMass, impulse))
	body1.Rotation -= body1.InvInertia * Vec2Cross(r1, impulse)
	body2.Position.OperatorPlusInplace(Vec2MulScalar(body2.InvMass, impulse))
	body2.Rotation += body2.InvInertia * Vec2Cross(r2, impulse)

	return math.Abs(c)-math.Abs(correction) < specs.Slop
}

func (joint *DistanceJoint2D) ReactiveForce() Vec2 {
	dt := joint.world.Integrator.Timestep
	if dt == 0.0 {
		return Vec2{}
	}
	return Vec2MulScalar(joint.accImpulse/dt, joint.dir)
}

func (joint *DistanceJoint2D) ReactiveTorque() float64 {
	return 0.0
}
