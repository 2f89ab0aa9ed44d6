package ppx

import (
	"fmt"

	"github.com/jinzhu/copier"
)

/// The simulation hub: the body store, the constraint and actuator managers,
/// the collision pipeline and the integrator, stepped as one unit.
type World2D struct {
	Specs WorldSpecs2D

	Bodies     BodyManager2D
	Joints     JointManager2D
	Springs    SpringManager2D
	Behaviours BehaviourManager2D
	Collisions CollisionManager2D
	Islands    IslandManager2D
	Integrator Integrator

	Callbacks WorldCallbacks

	prevTimestep float64
	checkpoint   *worldCheckpoint
}

func MakeWorld2D(specs WorldSpecs2D) (*World2D, error) {
	tableau, err := specs.Integrator.Tableau.toTableau()
	if err != nil {
		return nil, err
	}
	if specs.Integrator.Timestep <= 0.0 {
		return nil, fmt.Errorf("%w: timestep must be positive, got %v", ErrInvalidSpecs, specs.Integrator.Timestep)
	}

	world := &World2D{Specs: specs}
	world.Bodies = MakeBodyManager2D(world)
	world.Joints = MakeJointManager2D(world)
	world.Springs = MakeSpringManager2D(world)
	world.Behaviours = MakeBehaviourManager2D(world)
	world.Collisions = MakeCollisionManager2D(world, specs.Collision)
	world.Islands = MakeIslandManager2D(world, specs.Islands)
	world.Integrator = MakeIntegrator(tableau, specs.Integrator.Timestep)
	return world, nil
}

/// The warm starting scale: current timestep over the previous step's, so
/// cached impulses stay commensurate when the timestep changes.
func (w *World2D) TimestepRatio() float64 {
	if w.prevTimestep == 0.0 {
		return 1.0
	}
	return w.Integrator.Timestep / w.prevTimestep
}

func (w *World2D) Elapsed() float64 {
	return w.Integrator.Elapsed()
}

/// Advance the simulation by one timestep. Returns false, with the state
/// untouched, when the integrator produced a non-finite result.
func (w *World2D) Step() bool {
	w.preStep()

	var ok bool
	if w.Integrator.Tableau.Embedded {
		ok = w.Integrator.EmbeddedForward(w.ode)
	} else {
		ok = w.Integrator.RawForward(w.ode)
	}
	if !ok {
		w.reportError(fmt.Errorf("%w: step aborted at t=%v", ErrIntegratorNonFinite, w.Integrator.Elapsed()))
		return false
	}

	w.postStep()
	return true
}

/// Broad phase results are only valid within one step: later derivative
/// evaluations reuse the detected pairs, the next step re-detects.
func (w *World2D) preStep() {
	w.Collisions.FlushCollisions()
	w.Bodies.SendDataToState(w.Integrator.State)
}

func (w *World2D) postStep() {
	w.Bodies.ResetImpulseForces()
	w.Bodies.RetrieveDataFromState(w.Integrator.State)

	// Position corrections run on the integrated poses and are written back
	// so the state vector stays the source of truth between steps.
	w.Joints.SolvePositions()
	w.Bodies.SendDataToState(w.Integrator.State)
	w.Bodies.RetrieveDataFromState(w.Integrator.State)

	w.Islands.Process(w.Integrator.Timestep)
	w.prevTimestep = w.Integrator.Timestep
}

/// The system derivative handed to the integrator. Loads bodies from the
/// stage state, accumulates forces, runs the collision pipeline and the
/// velocity solver, and emits [velocity, force/mass] per body.
func (w *World2D) ode(t, dt float64, state []float64) []float64 {
	w.Bodies.ResetSimulationForces()
	w.Bodies.RetrieveDataFromState(state)
	w.Bodies.ApplyImpulseAndPersistentForces()
	w.Behaviours.ApplyForces()
	w.Springs.Solve()
	w.Collisions.Solve()
	w.Bodies.PrepareConstraintVelocities()
	w.Joints.SolveVelocities()

	deriv := make([]float64, len(state))
	for _, body := range w.Bodies.Bodies() {
		if body.asleep {
			continue
		}
		index := 6 * body.Index
		deriv[index] = body.CtrVelocity.X
		deriv[index+1] = body.CtrVelocity.Y
		deriv[index+2] = body.CtrAngularVelocity
		deriv[index+3] = body.simForce.X * body.InvMass
		deriv[index+4] = body.simForce.Y * body.InvMass
		deriv[index+5] = body.simTorque * body.InvInertia
	}
	return deriv
}

/// Prune every reference to bodies that no longer live in the store and
/// refresh the spatial indices.
func (w *World2D) Validate() {
	w.Joints.Validate()
	w.Springs.Validate()
	w.Behaviours.Validate()
	w.Collisions.Validate()
}

// Entity management.

func (w *World2D) AddBody(specs BodySpecs2D) (*Body2D, error) {
	return w.Bodies.Add(specs)
}

func (w *World2D) RemoveBody(index int) error {
	return w.Bodies.RemoveByIndex(index)
}

func (w *World2D) RemoveBodyByID(id uint64) error {
	return w.Bodies.RemoveByID(id)
}

func (w *World2D) AddDistanceJoint(specs DistanceJointSpecs2D) (*DistanceJoint2D, error) {
	joint, err := MakeDistanceJoint2D(w, specs)
	if err != nil {
		return nil, err
	}
	w.Joints.Add(joint)
	return joint, nil
}

func (w *World2D) AddRevoluteJoint(specs RevoluteJointSpecs2D) (*RevoluteJoint2D, error) {
	joint, err := MakeRevoluteJoint2D(w, specs)
	if err != nil {
		return nil, err
	}
	w.Joints.Add(joint)
	return joint, nil
}

func (w *World2D) AddWeldJoint(specs WeldJointSpecs2D) (*WeldJoint2D, error) {
	joint, err := MakeWeldJoint2D(w, specs)
	if err != nil {
		return nil, err
	}
	w.Joints.Add(joint)
	return joint, nil
}

func (w *World2D) AddPrismaticJoint(specs PrismaticJointSpecs2D) (*PrismaticJoint2D, error) {
	joint, err := MakePrismaticJoint2D(w, specs)
	if err != nil {
		return nil, err
	}
	w.Joints.Add(joint)
	return joint, nil
}

func (w *World2D) AddBallJoint(specs BallJointSpecs2D) (*BallJoint2D, error) {
	joint, err := MakeBallJoint2D(w, specs)
	if err != nil {
		return nil, err
	}
	w.Joints.Add(joint)
	return joint, nil
}

func (w *World2D) AddRotorJoint(specs RotorJointSpecs2D) (*RotorJoint2D, error) {
	joint, err := MakeRotorJoint2D(w, specs)
	if err != nil {
		return nil, err
	}
	w.Joints.Add(joint)
	return joint, nil
}

func (w *World2D) AddMotorJoint(specs MotorJointSpecs2D) (*MotorJoint2D, error) {
	joint, err := MakeMotorJoint2D(w, specs)
	if err != nil {
		return nil, err
	}
	w.Joints.Add(joint)
	return joint, nil
}

func (w *World2D) RemoveJoint(joint Joint2D) bool {
	return w.Joints.Remove(joint)
}

func (w *World2D) AddSpring(specs SpringSpecs2D) (*Spring2D, error) {
	spring, err := MakeSpring2D(w, specs)
	if err != nil {
		return nil, err
	}
	w.Springs.Add(spring)
	return spring, nil
}

func (w *World2D) RemoveSpring(spring *Spring2D) bool {
	return w.Springs.Remove(spring)
}

func (w *World2D) AddBehaviour(behaviour Behaviour2D) {
	w.Behaviours.Add(behaviour)
}

func (w *World2D) RemoveBehaviour(behaviour Behaviour2D) bool {
	return w.Behaviours.Remove(behaviour)
}

// Queries.

func (w *World2D) BodyFromID(id uint64) *Body2D {
	return w.Bodies.FromID(id)
}

/// Bodies whose fattened AABB overlaps the given region.
func (w *World2D) BodiesInAABB(aabb AABB) []*Body2D {
	var hits []*Body2D
	for _, body := range w.Bodies.Bodies() {
		if TestOverlapBoundingBoxes(body.BoundingBox, aabb) {
			hits = append(hits, body)
		}
	}
	return hits
}

/// The first body whose shape contains the world point, in store order.
func (w *World2D) BodyAtPoint(point Vec2) *Body2D {
	for _, body := range w.Bodies.Bodies() {
		if !body.BoundingBox.Contains(MakeAABBFromPoint(point)) {
			continue
		}
		if ShapeContainsPoint(body.Shape, body.Transform(), point) {
			return body
		}
	}
	return nil
}

// Energies.

func (w *World2D) KineticEnergy() float64 {
	energy := 0.0
	for _, body := range w.Bodies.Bodies() {
		energy += body.KineticEnergy()
	}
	return energy
}

func (w *World2D) PotentialEnergy() float64 {
	return w.Behaviours.PotentialEnergy() + w.Springs.PotentialEnergy()
}

func (w *World2D) Energy() float64 {
	return w.KineticEnergy() + w.PotentialEnergy()
}

// Checkpointing.

type worldCheckpoint struct {
	elapsed      float64
	timestep     float64
	prevTimestep float64
	state        []float64
	bodies       []Body2D
}

/// Snapshot elapsed time, the state vector and every body. Only one
/// checkpoint is held at a time.
func (w *World2D) Checkpoint() {
	cp := &worldCheckpoint{
		elapsed:      w.Integrator.Elapsed(),
		timestep:     w.Integrator.Timestep,
		prevTimestep: w.prevTimestep,
	}
	err := copier.CopyWithOption(&cp.state, &w.Integrator.State, copier.Option{DeepCopy: true})
	Assert(err == nil)

	cp.bodies = make([]Body2D, len(w.Bodies.bodies))
	for i, body := range w.Bodies.bodies {
		err = copier.Copy(&cp.bodies[i], body)
		Assert(err == nil)
		cp.bodies[i].Shape = body.Shape.Clone()
	}
	w.checkpoint = cp
}

/// Restore the last checkpoint. Fails when no checkpoint exists or the body
/// count changed since it was taken; body pointers stay stable so joints and
/// springs survive the revert.
func (w *World2D) Revert() error {
	cp := w.checkpoint
	if cp == nil {
		return fmt.Errorf("%w: no checkpoint to revert to", ErrUnknownEntity)
	}
	if len(cp.bodies) != len(w.Bodies.bodies) {
		return fmt.Errorf("%w: body count changed since checkpoint (%d != %d)",
			ErrUnknownEntity, len(cp.bodies), len(w.Bodies.bodies))
	}

	w.Integrator.SetElapsed(cp.elapsed)
	w.Integrator.Timestep = cp.timestep
	w.prevTimestep = cp.prevTimestep
	w.Integrator.State = append(w.Integrator.State[:0], cp.state...)

	for i := range cp.bodies {
		live := w.Bodies.bodies[i]
		saved := cp.bodies[i]
		shape := saved.Shape.Clone()
		*live = saved
		live.Shape = shape
		live.UpdateBoundingBox()
	}
	w.Validate()
	return nil
}
