package ppx

import (
	"fmt"
	"math"
)

/// Spring specification: two bodies by dense index, world anchors at setup,
/// rest length and the force law parameters. NonLinearTerms adds odd powers
/// of the displacement with rapidly decaying weights.
type SpringSpecs2D struct {
	BodyIndex1, BodyIndex2 int
	Anchor1, Anchor2       Vec2

	Stiffness float64
	Damping   float64
	Length    float64

	NonLinearTerms        uint32
	NonLinearContribution float64
}

func MakeSpringSpecs2D(index1, index2 int) SpringSpecs2D {
	return SpringSpecs2D{
		BodyIndex1:            index1,
		BodyIndex2:            index2,
		Stiffness:             1.0,
		Damping:               0.0,
		NonLinearContribution: 0.001,
	}
}

/// Derive stiffness and damping from an oscillation frequency and damping
/// ratio, the same translation the soft constraints use.
func SpringStiffnessAndDamping(frequency, dampingRatio, mass float64) (float64, float64) {
	omega := 2.0 * math.Pi * frequency
	return mass * omega * omega, 2.0 * mass * dampingRatio * omega
}

/// A spring is an actuator: it contributes forces to the derivative and
/// never enters the constraint solver.
type Spring2D struct {
	world *World2D

	id1, id2     uint64
	body1, body2 *Body2D

	localAnchor1, localAnchor2 Vec2

	Stiffness float64
	Damping   float64
	Length    float64

	NonLinearTerms        uint32
	NonLinearContribution float64
}

func MakeSpring2D(world *World2D, specs SpringSpecs2D) (*Spring2D, error) {
	if specs.BodyIndex1 < 0 || specs.BodyIndex1 >= world.Bodies.Size() ||
		specs.BodyIndex2 < 0 || specs.BodyIndex2 >= world.Bodies.Size() {
		return nil, fmt.Errorf("%w: spring body index out of range (%d, %d)", ErrUnknownEntity, specs.BodyIndex1, specs.BodyIndex2)
	}
	if specs.BodyIndex1 == specs.BodyIndex2 {
		return nil, fmt.Errorf("%w: spring cannot bind a body to itself (index %d)", ErrInvalidSpecs, specs.BodyIndex1)
	}
	if specs.Stiffness < 0.0 || specs.Damping < 0.0 || specs.Length < 0.0 || specs.NonLinearContribution < 0.0 {
		return nil, fmt.Errorf("%w: spring parameters must be non-negative", ErrInvalidSpecs)
	}

	body1 := world.Bodies.At(specs.BodyIndex1)
	body2 := world.Bodies.At(specs.BodyIndex2)
	return &Spring2D{
		world:                 world,
		id1:                   body1.ID,
		id2:                   body2.ID,
		body1:                 body1,
		body2:                 body2,
		localAnchor1:          TransformVec2MulT(body1.Transform(), specs.Anchor1),
		localAnchor2:          TransformVec2MulT(body2.Transform(), specs.Anchor2),
		Stiffness:             specs.Stiffness,
		Damping:               specs.Damping,
		Length:                specs.Length,
		NonLinearTerms:        specs.NonLinearTerms,
		NonLinearContribution: specs.NonLinearContribution,
	}, nil
}

func (spring *Spring2D) BodyIDs() (uint64, uint64) {
	return spring.id1, spring.id2
}

func (spring *Spring2D) ContainsBody(id uint64) bool {
	return spring.id1 == id || spring.id2 == id
}

func (spring *Spring2D) Valid() bool {
	return spring.world.Bodies.FromID(spring.id1) != nil && spring.world.Bodies.FromID(spring.id2) != nil
}

func (spring *Spring2D) Awake() {
	if spring.body1 != nil {
		spring.body1.Awake()
	}
	if spring.body2 != nil {
		spring.body2.Awake()
	}
}

func (spring *Spring2D) anchors() (Vec2, Vec2) {
	r1 := RotVec2Mul(MakeRotFromAngle(spring.body1.Rotation), spring.localAnchor1)
	r2 := RotVec2Mul(MakeRotFromAngle(spring.body2.Rotation), spring.localAnchor2)
	return r1, r2
}

func (spring *Spring2D) GlobalAnchor1() Vec2 {
	r1, _ := spring.anchors()
	return Vec2Add(spring.body1.Position, r1)
}

func (spring *Spring2D) GlobalAnchor2() Vec2 {
	_, r2 := spring.anchors()
	return Vec2Add(spring.body2.Position, r2)
}

/// Each extra term appends displacement^(2n+1) weighted by a decay that
/// squares every term, so higher powers only matter for large stretches.
func (spring *Spring2D) nonLinearDisplacement(displacement Vec2) Vec2 {
	term := displacement
	cumulative := displacement
	decay := SpringNonLinearDecay
	for i := uint32(0); i < spring.NonLinearTerms; i++ {
		term = MakeVec2(
			term.X*displacement.X*displacement.X,
			term.Y*displacement.Y*displacement.Y,
		)
		cumulative.OperatorPlusInplace(Vec2MulScalar(1.0/decay, term))
		decay *= decay
	}
	return Vec2MulScalar(spring.NonLinearContribution, cumulative)
}

/// The force on body 1 and the two anchor torques. Body 2 receives the
/// opposite force.
func (spring *Spring2D) Force() (Vec2, float64, float64) {
	r1, r2 := spring.anchors()
	ga1 := Vec2Add(spring.body1.Position, r1)
	ga2 := Vec2Add(spring.body2.Position, r2)

	relpos := Vec2Sub(ga2, ga1)
	dist := relpos.Length()
	if dist < Epsilon {
		return Vec2{}, 0.0, 0.0
	}
	dir := Vec2MulScalar(1.0/dist, relpos)

	relvel := Vec2MulScalar(Vec2Dot(
		Vec2Sub(spring.body2.VelocityAt(r2), spring.body1.VelocityAt(r1)),
		dir,
	), dir)

	displacement := Vec2Sub(relpos, Vec2MulScalar(spring.Length, dir))
	if spring.NonLinearTerms != 0 {
		displacement = spring.nonLinearDisplacement(displacement)
	}

	force := Vec2Add(
		Vec2MulScalar(spring.Stiffness, displacement),
		Vec2MulScalar(spring.Damping, relvel),
	)
	return force, Vec2Cross(r1, force), Vec2Cross(force, r2)
}

/// Accumulate the spring force into both bodies' simulation forces.
func (spring *Spring2D) Solve() {
	force, torque1, torque2 := spring.Force()
	spring.body1.ApplySimulationForce(force)
	spring.body2.ApplySimulationForce(force.OperatorNegate())
	spring.body1.ApplySimulationTorque(torque1)
	spring.body2.ApplySimulationTorque(torque2)
}

func (spring *Spring2D) PotentialEnergy() float64 {
	dist := Vec2Distance(spring.GlobalAnchor1(), spring.GlobalAnchor2()) - spring.Length
	return 0.5 * spring.Stiffness * dist * dist
}

func (spring *Spring2D) KineticEnergy() float64 {
	return spring.body1.KineticEnergy() + spring.body2.KineticEnergy()
}

func (spring *Spring2D) Energy() float64 {
	return spring.KineticEnergy() + spring.PotentialEnergy()
}

/// Re-resolve the dense body references from the stable ids.
func (spring *Spring2D) startupBodies() {
	spring.body1 = spring.world.Bodies.FromID(spring.id1)
	spring.body2 = spring.world.Bodies.FromID(spring.id2)
	Assert(spring.body1 != nil && spring.body2 != nil)
}

/// Spring storage in insertion order.
type SpringManager2D struct {
	world   *World2D
	springs []*Spring2D
}

func MakeSpringManager2D(world *World2D) SpringManager2D {
	return SpringManager2D{world: world}
}

func (sm *SpringManager2D) Add(spring *Spring2D) {
	sm.springs = append(sm.springs, spring)
	spring.Awake()
}

func (sm *SpringManager2D) Remove(spring *Spring2D) bool {
	for i, candidate := range sm.springs {
		if candidate == spring {
			spring.Awake()
			sm.springs = append(sm.springs[:i], sm.springs[i+1:]...)
			return true
		}
	}
	return false
}

func (sm *SpringManager2D) Springs() []*Spring2D {
	return sm.springs
}

func (sm *SpringManager2D) Size() int {
	return len(sm.springs)
}

/// Drop springs referencing bodies that no longer live in the store.
func (sm *SpringManager2D) Validate() {
	kept := sm.springs[:0]
	for _, spring := range sm.springs {
		if spring.Valid() {
			kept = append(kept, spring)
		}
	}
	sm.springs = kept
}

/// Accumulate every spring's force into its bodies' simulation forces.
func (sm *SpringManager2D) Solve() {
	for _, spring := range sm.springs {
		spring.startupBodies()
		if spring.body1.asleep && spring.body2.asleep {
			continue
		}
		spring.Solve()
	}
}

func (sm *SpringManager2D) PotentialEnergy() float64 {
	energy := 0.0
	for _, spring := range sm.springs {
		energy += spring.PotentialEnergy()
	}
	return energy
}
