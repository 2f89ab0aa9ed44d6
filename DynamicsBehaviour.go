package ppx

import (
	"math"
)

/// A behaviour is a global force field applied to an explicit set of bodies
/// during every derivative evaluation, before springs and the solver.
/// Behaviours are addressed by name when serialized.
type Behaviour2D interface {
	Name() string
	Enabled() bool
	SetEnabled(enabled bool)

	AddBody(id uint64) bool
	RemoveBody(id uint64) bool
	ContainsBody(id uint64) bool
	BodyIDs() []uint64

	ApplyForces()
	PotentialEnergy() float64
	Validate()
}

/// Shared behaviour state: the member body ids in insertion order.
type behaviourBase struct {
	world   *World2D
	name    string
	enabled bool
	ids     []uint64
}

func makeBehaviourBase(world *World2D, name string) behaviourBase {
	return behaviourBase{world: world, name: name, enabled: true}
}

func (b *behaviourBase) Name() string {
	return b.name
}

func (b *behaviourBase) Enabled() bool {
	return b.enabled
}

func (b *behaviourBase) SetEnabled(enabled bool) {
	b.enabled = enabled
	if enabled {
		for _, body := range b.bodies() {
			body.Awake()
		}
	}
}

func (b *behaviourBase) AddBody(id uint64) bool {
	body := b.world.Bodies.FromID(id)
	if body == nil || b.ContainsBody(id) {
		return false
	}
	b.ids = append(b.ids, id)
	body.Awake()
	return true
}

func (b *behaviourBase) RemoveBody(id uint64) bool {
	for i, candidate := range b.ids {
		if candidate == id {
			b.ids = append(b.ids[:i], b.ids[i+1:]...)
			return true
		}
	}
	return false
}

func (b *behaviourBase) ContainsBody(id uint64) bool {
	for _, candidate := range b.ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func (b *behaviourBase) BodyIDs() []uint64 {
	return b.ids
}

/// Prune ids whose bodies no longer live in the store.
func (b *behaviourBase) Validate() {
	kept := b.ids[:0]
	for _, id := range b.ids {
		if b.world.Bodies.FromID(id) != nil {
			kept = append(kept, id)
		}
	}
	b.ids = kept
}

/// The live member bodies, in id insertion order.
func (b *behaviourBase) bodies() []*Body2D {
	bodies := make([]*Body2D, 0, len(b.ids))
	for _, id := range b.ids {
		if body := b.world.Bodies.FromID(id); body != nil {
			bodies = append(bodies, body)
		}
	}
	return bodies
}

/// A uniform gravity field along the y axis. Magnitude is the signed
/// acceleration, negative for a downward pull.
type Gravity2D struct {
	behaviourBase

	Magnitude float64
}

func NewGravity2D(world *World2D, magnitude float64) *Gravity2D {
	return &Gravity2D{
		behaviourBase: makeBehaviourBase(world, "gravity"),
		Magnitude:     magnitude,
	}
}

func (bhv *Gravity2D) ApplyForces() {
	if !bhv.enabled {
		return
	}
	for _, body := range bhv.bodies() {
		if !body.IsDynamic() || body.Asleep() {
			continue
		}
		body.ApplySimulationForce(MakeVec2(0.0, bhv.Magnitude*body.Mass))
	}
}

func (bhv *Gravity2D) PotentialEnergy() float64 {
	if !bhv.enabled {
		return 0.0
	}
	energy := 0.0
	for _, body := range bhv.bodies() {
		energy -= body.Mass * bhv.Magnitude * body.Position.Y
	}
	return energy
}

/// Linear drag on velocity and angular velocity. Purely dissipative, so it
/// carries no potential energy.
type Drag2D struct {
	behaviourBase

	LinearTerm  float64
	AngularTerm float64
}

func NewDrag2D(world *World2D, linearTerm, angularTerm float64) *Drag2D {
	return &Drag2D{
		behaviourBase: makeBehaviourBase(world, "drag"),
		LinearTerm:    linearTerm,
		AngularTerm:   angularTerm,
	}
}

func (bhv *Drag2D) ApplyForces() {
	if !bhv.enabled {
		return
	}
	for _, body := range bhv.bodies() {
		if !body.IsDynamic() || body.Asleep() {
			continue
		}
		body.ApplySimulationForce(Vec2MulScalar(-bhv.LinearTerm, body.Velocity))
		body.ApplySimulationTorque(-bhv.AngularTerm * body.AngularVelocity)
	}
}

func (bhv *Drag2D) PotentialEnergy() float64 {
	return 0.0
}

/// Pairwise newtonian attraction between the member bodies.
type Gravitational2D struct {
	behaviourBase

	Magnitude float64
}

func NewGravitational2D(world *World2D, magnitude float64) *Gravitational2D {
	return &Gravitational2D{
		behaviourBase: makeBehaviourBase(world, "gravitational"),
		Magnitude:     magnitude,
	}
}

func (bhv *Gravitational2D) ApplyForces() {
	if !bhv.enabled {
		return
	}
	bodies := bhv.bodies()
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			body1, body2 := bodies[i], bodies[j]
			delta := Vec2Sub(body2.Position, body1.Position)
			distSq := delta.LengthSquared()
			if distSq < Epsilon {
				continue
			}
			force := Vec2MulScalar(bhv.Magnitude*body1.Mass*body2.Mass/(distSq*math.Sqrt(distSq)), delta)
			if body1.IsDynamic() && !body1.Asleep() {
				body1.ApplySimulationForce(force)
			}
			if body2.IsDynamic() && !body2.Asleep() {
				body2.ApplySimulationForce(force.OperatorNegate())
			}
		}
	}
}

func (bhv *Gravitational2D) PotentialEnergy() float64 {
	if !bhv.enabled {
		return 0.0
	}
	energy := 0.0
	bodies := bhv.bodies()
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			dist := Vec2Distance(bodies[i].Position, bodies[j].Position)
			if dist < Epsilon {
				continue
			}
			energy -= bhv.Magnitude * bodies[i].Mass * bodies[j].Mass / dist
		}
	}
	return energy
}

/// Pairwise Coulomb repulsion on the bodies' charges.
type ElectricalRepulsion2D struct {
	behaviourBase

	Magnitude float64
}

func NewElectricalRepulsion2D(world *World2D, magnitude float64) *ElectricalRepulsion2D {
	return &ElectricalRepulsion2D{
		behaviourBase: makeBehaviourBase(world, "electrical repulsion"),
		Magnitude:     magnitude,
	}
}

func (bhv *ElectricalRepulsion2D) ApplyForces() {
	if !bhv.enabled {
		return
	}
	bodies := bhv.bodies()
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			body1, body2 := bodies[i], bodies[j]
			delta := Vec2Sub(body2.Position, body1.Position)
			distSq := delta.LengthSquared()
			if distSq < Epsilon {
				continue
			}
			force := Vec2MulScalar(bhv.Magnitude*body1.Charge*body2.Charge/(distSq*math.Sqrt(distSq)), delta)
			if body2.IsDynamic() && !body2.Asleep() {
				body2.ApplySimulationForce(force)
			}
			if body1.IsDynamic() && !body1.Asleep() {
				body1.ApplySimulationForce(force.OperatorNegate())
			}
		}
	}
}

func (bhv *ElectricalRepulsion2D) PotentialEnergy() float64 {
	if !bhv.enabled {
		return 0.0
	}
	energy := 0.0
	bodies := bhv.bodies()
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			dist := Vec2Distance(bodies[i].Position, bodies[j].Position)
			if dist < Epsilon {
				continue
			}
			energy += bhv.Magnitude * bodies[i].Charge * bodies[j].Charge / dist
		}
	}
	return energy
}

/// Behaviour storage in insertion order.
type BehaviourManager2D struct {
	world      *World2D
	behaviours []Behaviour2D
}

func MakeBehaviourManager2D(world *World2D) BehaviourManager2D {
	return BehaviourManager2D{world: world}
}

func (bm *BehaviourManager2D) Add(behaviour Behaviour2D) {
	bm.behaviours = append(bm.behaviours, behaviour)
}

func (bm *BehaviourManager2D) Remove(behaviour Behaviour2D) bool {
	for i, candidate := range bm.behaviours {
		if candidate == behaviour {
			bm.behaviours = append(bm.behaviours[:i], bm.behaviours[i+1:]...)
			return true
		}
	}
	return false
}

func (bm *BehaviourManager2D) FromName(name string) Behaviour2D {
	for _, behaviour := range bm.behaviours {
		if behaviour.Name() == name {
			return behaviour
		}
	}
	return nil
}

func (bm *BehaviourManager2D) Behaviours() []Behaviour2D {
	return bm.behaviours
}

func (bm *BehaviourManager2D) Size() int {
	return len(bm.behaviours)
}

func (bm *BehaviourManager2D) Validate() {
	for _, behaviour := range bm.behaviours {
		behaviour.Validate()
	}
}

func (bm *BehaviourManager2D) ApplyForces() {
	for _, behaviour := range bm.behaviours {
		behaviour.ApplyForces()
	}
}

func (bm *BehaviourManager2D) PotentialEnergy() float64 {
	energy := 0.0
	for _, behaviour := range bm.behaviours {
		energy += behaviour.PotentialEnergy()
	}
	return energy
}
