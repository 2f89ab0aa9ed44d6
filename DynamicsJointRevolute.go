package ppx

/// Revolute joint specification: a single world anchor both bodies pin to.
type RevoluteJointSpecs2D struct {
	Joint  JointSpecs2D
	Anchor Vec2
}

func MakeRevoluteJointSpecs2D(index1, index2 int, anchor Vec2) RevoluteJointSpecs2D {
	specs := RevoluteJointSpecs2D{
		Joint:  MakeJointSpecs2D(index1, index2),
		Anchor: anchor,
	}
	specs.Joint.Anchor1 = anchor
	specs.Joint.Anchor2 = anchor
	// Pinned bodies overlap by construction.
	specs.Joint.CollideBodies = false
	return specs
}

/// A revolute joint enforces coincident world anchors: two constraint rows,
/// one per translation axis, leaving relative rotation free.
type RevoluteJoint2D struct {
	jointBase

	accImpulse Vec2

	// Solver temp
	r1, r2   Vec2
	k        Mat22
	gamma    float64
	biasVec  Vec2
}

func MakeRevoluteJoint2D(world *World2D, specs RevoluteJointSpecs2D) (*RevoluteJoint2D, error) {
	joint := &RevoluteJoint2D{}
	if err := joint.init(world, specs.Joint); err != nil {
		return nil, err
	}
	return joint, nil
}

func (joint *RevoluteJoint2D) Kind() uint8 {
	return JointKind.E_revoluteJoint
}

/// The 2x2 effective mass matrix of the two translational rows.
func anchorMassMatrix(body1, body2 *Body2D, r1, r2 Vec2) Mat22 {
	k11 := body1.InvMass + body2.InvMass + body1.InvInertia*r1.Y*r1.Y + body2.InvInertia*r2.Y*r2.Y
	k12 := -body1.InvInertia*r1.X*r1.Y - body2.InvInertia*r2.X*r2.Y
	k22 := body1.InvMass + body2.InvMass + body1.InvInertia*r1.X*r1.X + body2.InvInertia*r2.X*r2.X
	return MakeMat22FromScalars(k11, k12, k12, k22)
}

func (joint *RevoluteJoint2D) constraintError() Vec2 {
	r1, r2 := joint.rotatedAnchors()
	return Vec2Sub(
		Vec2Add(joint.body2.Position, r2),
		Vec2Add(joint.body1.Position, r1),
	)
}

func (joint *RevoluteJoint2D) Startup() {
	joint.startupBodies()
	joint.r1, joint.r2 = joint.rotatedAnchors()
	joint.k = anchorMassMatrix(joint.body1, joint.body2, joint.r1, joint.r2)

	c := joint.constraintError()
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
	} else {
		joint.gamma = 0.0
		joint.biasVec = MakeVec2(joint.baumgarteBias(c.X), joint.baumgarteBias(c.Y))
	}
}

func (joint *RevoluteJoint2D) Warmup() {
	joint.accImpulse.OperatorScalarMulInplace(joint.world.TimestepRatio())
	if joint.accImpulse.LengthSquared() == 0.0 {
		return
	}
	joint.applyImpulse(joint.accImpulse, joint.r1, joint.r2)
}

func (joint *RevoluteJoint2D) SolveVelocities() {
	cdot := Vec2Sub(
		joint.body2.CtrVelocityAt(joint.r2),
		joint.body1.CtrVelocityAt(joint.r1),
	)
	rhs := Vec2Add(cdot, joint.biasVec)
	rhs.OperatorPlusInplace(Vec2MulScalar(joint.gamma, joint.accImpulse))

	impulse := joint.k.Solve(rhs.OperatorNegate())
	if !impulse.IsValid() {
		joint.world.reportConstraintDivergence(joint.id1, joint.id2)
		joint.accImpulse.SetZero()
		return
	}
	joint.accImpulse.OperatorPlusInplace(impulse)
	joint.applyImpulse(impulse, joint.r1, joint.r2)
}

func (joint *RevoluteJoint2D) SolvePositions() bool {
	if joint.isSoft {
		return true
	}
	specs := &joint.world.Specs.Constraints

	c := joint.constraintError()
	if c.Length() < specs.Slop {
		return true
	}

	r1, r2 := joint.rotatedAnchors()
	k := anchorMassMatrix(joint.body1, joint.body2, r1, r2)
	correction := Vec2MulScalar(specs.PositionResolutionSpeed, c)
	if correction.Length() > specs.MaxPositionCorrection {
		correction.OperatorScalarMulInplace(specs.MaxPositionCorrection / correction.Length())
	}
	impulse := k.Solve(correction.OperatorNegate())

	body1 := joint.body1
	body2 := joint.body2
	body1.Position.OperatorMinusInplace(Vec2MulScalar(body1.InvMass, impulse))
	body1.Rotation -= body1.InvInertia * Vec2Cross(r1, impulse)
	body2.Position.OperatorPlusInplace(Vec2MulScalar(body2.InvMass, impulse))
	body2.Rotation += body2.InvInertia * Vec2Cross(r2, impulse)

	return joint.constraintError().Length() < specs.Slop
}

func (joint *RevoluteJoint2D) ReactiveForce() Vec2 {
	dt := joint.world.Integrator.Timestep
	if dt == 0.0 {
		return Vec2{}
	}
	return Vec2MulScalar(1.0/dt, joint.accImpulse)
}

func (joint *RevoluteJoint2D) ReactiveTorque() float64 {
	return 0.0
}
