package ppx

import (
	"fmt"
)

/// The body store. Bodies live in a dense slice; removal swaps with the last
/// element so indices stay packed, and a map resolves stable ids to dense
/// indices. On any mutation the store notifies the world so spatial indices
/// and joint references can refresh.
type BodyManager2D struct {
	world  *World2D
	bodies []*Body2D
	lookup map[uint64]int
	nextID uint64
}

func MakeBodyManager2D(world *World2D) BodyManager2D {
	return BodyManager2D{
		world:  world,
		bodies: make([]*Body2D, 0, 32),
		lookup: make(map[uint64]int),
	}
}

func (bm *BodyManager2D) Size() int {
	return len(bm.bodies)
}

func (bm *BodyManager2D) At(index int) *Body2D {
	Assert(index < len(bm.bodies))
	return bm.bodies[index]
}

func (bm *BodyManager2D) Bodies() []*Body2D {
	return bm.bodies
}

func (bm *BodyManager2D) FromID(id uint64) *Body2D {
	index, ok := bm.lookup[id]
	if !ok {
		return nil
	}
	return bm.bodies[index]
}

func (bm *BodyManager2D) Add(specs BodySpecs2D) (*Body2D, error) {
	if err := specs.validate(); err != nil {
		return nil, err
	}

	var shape Shape
	if len(specs.Vertices) > 0 {
		polygon, err := NewPolygonShape(specs.Vertices)
		if err != nil {
			return nil, err
		}
		shape = polygon
	} else {
		shape = NewCircleShape(specs.Radius)
	}

	body := &Body2D{
		ID:              bm.nextID,
		Index:           len(bm.bodies),
		Position:        specs.Position,
		Rotation:        specs.Rotation,
		Velocity:        specs.Velocity,
		AngularVelocity: specs.AngularVelocity,
		Mass:            specs.Mass,
		Charge:          specs.Charge,
		Type:            specs.Type,
		Restitution:     specs.Restitution,
		Friction:        specs.Friction,
		Shape:           shape,
	}
	bm.nextID++
	body.UpdateMassData()
	body.UpdateBoundingBox()

	bm.bodies = append(bm.bodies, body)
	bm.lookup[body.ID] = body.Index

	// The state vector grows alongside the store so dense index i always
	// owns slots [6i, 6i+6).
	state := &bm.world.Integrator.State
	*state = append(*state,
		body.Position.X, body.Position.Y, body.Rotation,
		body.Velocity.X, body.Velocity.Y, body.AngularVelocity)

	bm.world.notifyBodyAdded(body)
	return body, nil
}

/// Remove a body by dense index: O(1) swap-remove of both the body slot and
/// its six state-vector slots. The moved body's index is fixed up and the
/// world is validated so dangling joints, springs and contacts are pruned.
func (bm *BodyManager2D) RemoveByIndex(index int) error {
	if index < 0 || index >= len(bm.bodies) {
		return fmt.Errorf("%w: body index %d out of range", ErrUnknownEntity, index)
	}

	removed := bm.bodies[index]
	bm.world.notifyBodyEarlyRemoval(removed)

	last := len(bm.bodies) - 1
	delete(bm.lookup, removed.ID)
	if index != last {
		moved := bm.bodies[last]
		bm.bodies[index] = moved
		moved.Index = index
		bm.lookup[moved.ID] = index
	}
	bm.bodies = bm.bodies[:last]

	state := &bm.world.Integrator.State
	for i := 0; i < 6; i++ {
		(*state)[6*index+i] = (*state)[6*last+i]
	}
	*state = (*state)[:6*last]

	bm.world.Validate()
	bm.world.notifyBodyLateRemoval(index)
	return nil
}

func (bm *BodyManager2D) RemoveByID(id uint64) error {
	index, ok := bm.lookup[id]
	if !ok {
		return fmt.Errorf("%w: body id %d", ErrUnknownEntity, id)
	}
	return bm.RemoveByIndex(index)
}

/// Write every body's kinematic state into the flat state vector.
func (bm *BodyManager2D) SendDataToState(state []float64) {
	Assert(len(state) == 6*len(bm.bodies))
	for _, body := range bm.bodies {
		index := 6 * body.Index
		state[index] = body.Position.X
		state[index+1] = body.Position.Y
		state[index+2] = body.Rotation
		state[index+3] = body.Velocity.X
		state[index+4] = body.Velocity.Y
		state[index+5] = body.AngularVelocity
	}
}

/// Load every body from the flat state vector and refresh its world AABB.
func (bm *BodyManager2D) RetrieveDataFromState(vars []float64) {
	Assert(len(vars) == 6*len(bm.bodies))
	for _, body := range bm.bodies {
		index := 6 * body.Index
		body.Position = MakeVec2(vars[index], vars[index+1])
		body.Rotation = vars[index+2]
		body.Velocity = MakeVec2(vars[index+3], vars[index+4])
		body.AngularVelocity = vars[index+5]
		body.UpdateBoundingBox()
	}
}

func (bm *BodyManager2D) ResetImpulseForces() {
	for _, body := range bm.bodies {
		body.impulseForce.SetZero()
		body.impulseTorque = 0.0
	}
}

func (bm *BodyManager2D) ResetSimulationForces() {
	for _, body := range bm.bodies {
		body.simForce.SetZero()
		body.simTorque = 0.0
	}
}

/// Feed accumulated persistent and impulse forces into the per-derivative
/// slots. Kinematic and static bodies ignore forces; so do sleeping ones.
func (bm *BodyManager2D) ApplyImpulseAndPersistentForces() {
	for _, body := range bm.bodies {
		if !body.IsDynamic() || body.asleep {
			continue
		}
		body.simForce.OperatorPlusInplace(body.persistentForce)
		body.simForce.OperatorPlusInplace(body.impulseForce)
		body.simTorque += body.persistentTorque + body.impulseTorque
	}
}

/// Snapshot current velocities as the working velocities the constraint
/// solver corrects in place.
func (bm *BodyManager2D) PrepareConstraintVelocities() {
	for _, body := range bm.bodies {
		body.CtrVelocity = body.Velocity
		body.CtrAngularVelocity = body.AngularVelocity
	}
}
