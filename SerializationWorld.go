package ppx

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type integratorSnapshot struct {
	Tableau  string  `yaml:"tableau"`
	Timestep float64 `yaml:"timestep"`
	Elapsed  float64 `yaml:"elapsed"`
}

type bodySnapshot struct {
	Position        [2]float64   `yaml:"position,flow"`
	Velocity        [2]float64   `yaml:"velocity,flow"`
	Rotation        float64      `yaml:"rotation"`
	AngularVelocity float64      `yaml:"angular_velocity"`
	Mass            float64      `yaml:"mass"`
	Charge          float64      `yaml:"charge"`
	Type            uint8        `yaml:"type"`
	Restitution     float64      `yaml:"restitution"`
	Friction        float64      `yaml:"friction"`
	Radius          float64      `yaml:"radius,omitempty"`
	Vertices        [][2]float64 `yaml:"vertices,omitempty,flow"`
}

type springSnapshot struct {
	Index1                int        `yaml:"index1"`
	Index2                int        `yaml:"index2"`
	Anchor1               [2]float64 `yaml:"anchor1,flow"`
	Anchor2               [2]float64 `yaml:"anchor2,flow"`
	Stiffness             float64    `yaml:"stiffness"`
	Damping               float64    `yaml:"damping"`
	Length                float64    `yaml:"length"`
	NonLinearTerms        uint32     `yaml:"non_linear_terms"`
	NonLinearContribution float64    `yaml:"non_linear_contribution"`
}

/// One snapshot record covers every joint kind; the kind tag decides which
/// fields are meaningful.
type jointSnapshot struct {
	Kind   string `yaml:"kind"`
	Index1 int    `yaml:"index1"`
	Index2 int    `yaml:"index2"`

	Anchor1 [2]float64 `yaml:"anchor1,flow"`
	Anchor2 [2]float64 `yaml:"anchor2,flow"`

	CollideBodies bool    `yaml:"collide_bodies"`
	IsSoft        bool    `yaml:"soft,omitempty"`
	Frequency     float64 `yaml:"frequency,omitempty"`
	DampingRatio  float64 `yaml:"damping_ratio,omitempty"`

	MinDistance float64 `yaml:"min_distance,omitempty"`
	MaxDistance float64 `yaml:"max_distance,omitempty"`

	Axis [2]float64 `yaml:"axis,omitempty,flow"`

	MinAngle float64 `yaml:"min_angle,omitempty"`
	MaxAngle float64 `yaml:"max_angle,omitempty"`

	TargetSpeed      float64 `yaml:"target_speed,omitempty"`
	MaxTorque        float64 `yaml:"max_torque,omitempty"`
	SpinIndefinitely bool    `yaml:"spin_indefinitely,omitempty"`

	TargetOffset     [2]float64 `yaml:"target_offset,omitempty,flow"`
	MaxForce         float64    `yaml:"max_force,omitempty"`
	CorrectionFactor float64    `yaml:"correction_factor,omitempty"`
}

type behaviourSnapshot struct {
	Name    string `yaml:"name"`
	Enabled bool   `yaml:"enabled"`
	Bodies  []int  `yaml:"bodies,flow"`

	Magnitude   float64 `yaml:"magnitude,omitempty"`
	LinearTerm  float64 `yaml:"linear_term,omitempty"`
	AngularTerm float64 `yaml:"angular_term,omitempty"`
}

type worldSnapshot struct {
	Integrator integratorSnapshot  `yaml:"integrator"`
	Bodies     []bodySnapshot      `yaml:"bodies"`
	Springs    []springSnapshot    `yaml:"springs,omitempty"`
	Joints     []jointSnapshot     `yaml:"constraints,omitempty"`
	Behaviours []behaviourSnapshot `yaml:"behaviours,omitempty"`
}

func vecToPair(v Vec2) [2]float64 {
	return [2]float64{v.X, v.Y}
}

func pairToVec(p [2]float64) Vec2 {
	return MakeVec2(p[0], p[1])
}

/// Serialize the world to a YAML snapshot. Bodies are listed in dense order,
/// so every other section can reference them by index.
func EncodeWorld(world *World2D) ([]byte, error) {
	snapshot := worldSnapshot{
		Integrator: integratorSnapshot{
			Tableau:  string(world.Specs.Integrator.Tableau),
			Timestep: world.Integrator.Timestep,
			Elapsed:  world.Integrator.Elapsed(),
		},
	}

	for _, body := range world.Bodies.Bodies() {
		record := bodySnapshot{
			Position:        vecToPair(body.Position),
			Velocity:        vecToPair(body.Velocity),
			Rotation:        body.Rotation,
			AngularVelocity: body.AngularVelocity,
			Mass:            body.Mass,
			Charge:          body.Charge,
			Type:            body.Type,
			Restitution:     body.Restitution,
			Friction:        body.Friction,
		}
		switch shape := body.Shape.(type) {
		case *CircleShape:
			record.Radius = shape.Radius
		case *PolygonShape:
			// Stored vertices are centroid-local; shift back to world-less
			// body coordinates so decoding rebuilds the identical shape.
			for _, v := range shape.Vertices {
				record.Vertices = append(record.Vertices, vecToPair(v))
			}
		}
		snapshot.Bodies = append(snapshot.Bodies, record)
	}

	for _, spring := range world.Springs.Springs() {
		snapshot.Springs = append(snapshot.Springs, springSnapshot{
			Index1:                spring.body1.Index,
			Index2:                spring.body2.Index,
			Anchor1:               vecToPair(spring.GlobalAnchor1()),
			Anchor2:               vecToPair(spring.GlobalAnchor2()),
			Stiffness:             spring.Stiffness,
			Damping:               spring.Damping,
			Length:                spring.Length,
			NonLinearTerms:        spring.NonLinearTerms,
			NonLinearContribution: spring.NonLinearContribution,
		})
	}

	world.Joints.ForEach(func(joint Joint2D) {
		record, err := encodeJoint(world, joint)
		if err == nil {
			snapshot.Joints = append(snapshot.Joints, record)
		}
	})

	for _, behaviour := range world.Behaviours.Behaviours() {
		record := behaviourSnapshot{
			Name:    behaviour.Name(),
			Enabled: behaviour.Enabled(),
		}
		for _, id := range behaviour.BodyIDs() {
			if body := world.Bodies.FromID(id); body != nil {
				record.Bodies = append(record.Bodies, body.Index)
			}
		}
		switch bhv := behaviour.(type) {
		case *Gravity2D:
			record.Magnitude = bhv.Magnitude
		case *Gravitational2D:
			record.Magnitude = bhv.Magnitude
		case *ElectricalRepulsion2D:
			record.Magnitude = bhv.Magnitude
		case *Drag2D:
			record.LinearTerm = bhv.LinearTerm
			record.AngularTerm = bhv.AngularTerm
		}
		snapshot.Behaviours = append(snapshot.Behaviours, record)
	}

	return yaml.Marshal(&snapshot)
}

func encodeJoint(world *World2D, joint Joint2D) (jointSnapshot, error) {
	base := jointSnapshotBase(world, joint)
	switch j := joint.(type) {
	case *DistanceJoint2D:
		base.Kind = "distance"
		base.MinDistance = j.MinDistance
		base.MaxDistance = j.MaxDistance
	case *RevoluteJoint2D:
		base.Kind = "revolute"
	case *WeldJoint2D:
		base.Kind = "weld"
	case *PrismaticJoint2D:
		base.Kind = "prismatic"
		base.Axis = vecToPair(j.Axis())
	case *BallJoint2D:
		base.Kind = "ball"
		base.MinAngle = j.MinAngle
		base.MaxAngle = j.MaxAngle
	case *RotorJoint2D:
		base.Kind = "rotor"
		base.TargetSpeed = j.TargetSpeed
		base.MaxTorque = j.MaxTorque
		base.CorrectionFactor = j.CorrectionFactor
		base.MinAngle = j.MinAngle
		base.MaxAngle = j.MaxAngle
		base.SpinIndefinitely = j.SpinIndefinitely
	case *MotorJoint2D:
		base.Kind = "motor"
		base.TargetOffset = vecToPair(j.TargetOffset)
		base.MaxForce = j.MaxForce
		base.CorrectionFactor = j.CorrectionFactor
	default:
		return base, fmt.Errorf("%w: joint kind %d cannot be serialized", ErrInvalidSpecs, joint.Kind())
	}
	return base, nil
}

func jointSnapshotBase(world *World2D, joint Joint2D) jointSnapshot {
	id1, id2 := joint.BodyIDs()
	body1 := world.Bodies.FromID(id1)
	body2 := world.Bodies.FromID(id2)
	record := jointSnapshot{
		Index1:        body1.Index,
		Index2:        body2.Index,
		CollideBodies: joint.BodiesCollide(),
	}
	type anchored interface {
		GlobalAnchor1() Vec2
		GlobalAnchor2() Vec2
	}
	if j, ok := joint.(anchored); ok {
		record.Anchor1 = vecToPair(j.GlobalAnchor1())
		record.Anchor2 = vecToPair(j.GlobalAnchor2())
	}
	type softened interface {
		SoftParameters() (bool, float64, float64)
	}
	if j, ok := joint.(softened); ok {
		record.IsSoft, record.Frequency, record.DampingRatio = j.SoftParameters()
	}
	return record
}

/// Rebuild a world from a YAML snapshot. Bodies come back in dense order so
/// the snapshot's index references stay valid; springs, joints and
/// behaviours follow.
func DecodeWorld(data []byte, specs WorldSpecs2D) (*World2D, error) {
	var snapshot worldSnapshot
	if err := yaml.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpecs, err)
	}

	if snapshot.Integrator.Tableau != "" {
		specs.Integrator.Tableau = TableauName(snapshot.Integrator.Tableau)
	}
	if snapshot.Integrator.Timestep > 0.0 {
		specs.Integrator.Timestep = snapshot.Integrator.Timestep
	}

	world, err := MakeWorld2D(specs)
	if err != nil {
		return nil, err
	}
	world.Integrator.SetElapsed(snapshot.Integrator.Elapsed)

	for _, record := range snapshot.Bodies {
		bodySpecs := MakeBodySpecs2D()
		bodySpecs.Position = pairToVec(record.Position)
		bodySpecs.Velocity = pairToVec(record.Velocity)
		bodySpecs.Rotation = record.Rotation
		bodySpecs.AngularVelocity = record.AngularVelocity
		bodySpecs.Mass = record.Mass
		bodySpecs.Charge = record.Charge
		bodySpecs.Type = record.Type
		bodySpecs.Restitution = record.Restitution
		bodySpecs.Friction = record.Friction
		bodySpecs.Radius = record.Radius
		for _, v := range record.Vertices {
			bodySpecs.Vertices = append(bodySpecs.Vertices, pairToVec(v))
		}
		if _, err := world.AddBody(bodySpecs); err != nil {
			return nil, err
		}
	}

	for _, record := range snapshot.Springs {
		springSpecs := MakeSpringSpecs2D(record.Index1, record.Index2)
		springSpecs.Anchor1 = pairToVec(record.Anchor1)
		springSpecs.Anchor2 = pairToVec(record.Anchor2)
		springSpecs.Stiffness = record.Stiffness
		springSpecs.Damping = record.Damping
		springSpecs.Length = record.Length
		springSpecs.NonLinearTerms = record.NonLinearTerms
		springSpecs.NonLinearContribution = record.NonLinearContribution
		if _, err := world.AddSpring(springSpecs); err != nil {
			return nil, err
		}
	}

	for _, record := range snapshot.Joints {
		if err := decodeJoint(world, record); err != nil {
			return nil, err
		}
	}

	for _, record := range snapshot.Behaviours {
		behaviour, err := decodeBehaviour(world, record)
		if err != nil {
			return nil, err
		}
		world.AddBehaviour(behaviour)
	}
	return world, nil
}

func decodeJoint(world *World2D, record jointSnapshot) error {
	base := MakeJointSpecs2D(record.Index1, record.Index2)
	base.Anchor1 = pairToVec(record.Anchor1)
	base.Anchor2 = pairToVec(record.Anchor2)
	base.CollideBodies = record.CollideBodies
	base.IsSoft = record.IsSoft
	if record.Frequency > 0.0 {
		base.Frequency = record.Frequency
	}
	if record.DampingRatio > 0.0 {
		base.DampingRatio = record.DampingRatio
	}

	var err error
	switch record.Kind {
	case "distance":
		specs := DistanceJointSpecs2D{Joint: base, MinDistance: record.MinDistance, MaxDistance: record.MaxDistance}
		_, err = world.AddDistanceJoint(specs)
	case "revolute":
		specs := RevoluteJointSpecs2D{Joint: base, Anchor: base.Anchor1}
		_, err = world.AddRevoluteJoint(specs)
	case "weld":
		specs := WeldJointSpecs2D{Joint: base, Anchor: base.Anchor1}
		_, err = world.AddWeldJoint(specs)
	case "prismatic":
		specs := PrismaticJointSpecs2D{Joint: base, Axis: pairToVec(record.Axis)}
		_, err = world.AddPrismaticJoint(specs)
	case "ball":
		specs := BallJointSpecs2D{Joint: base, MinAngle: record.MinAngle, MaxAngle: record.MaxAngle}
		_, err = world.AddBallJoint(specs)
	case "rotor":
		specs := RotorJointSpecs2D{
			Joint:            base,
			TargetSpeed:      record.TargetSpeed,
			MaxTorque:        record.MaxTorque,
			CorrectionFactor: record.CorrectionFactor,
			MinAngle:         record.MinAngle,
			MaxAngle:         record.MaxAngle,
			SpinIndefinitely: record.SpinIndefinitely,
		}
		_, err = world.AddRotorJoint(specs)
	case "motor":
		specs := MotorJointSpecs2D{
			Joint:            base,
			TargetOffset:     pairToVec(record.TargetOffset),
			MaxForce:         record.MaxForce,
			CorrectionFactor: record.CorrectionFactor,
		}
		_, err = world.AddMotorJoint(specs)
	default:
		err = fmt.Errorf("%w: unknown joint kind %q", ErrInvalidSpecs, record.Kind)
	}
	return err
}

func decodeBehaviour(world *World2D, record behaviourSnapshot) (Behaviour2D, error) {
	var behaviour Behaviour2D
	switch record.Name {
	case "gravity":
		behaviour = NewGravity2D(world, record.Magnitude)
	case "drag":
		behaviour = NewDrag2D(world, record.LinearTerm, record.AngularTerm)
	case "gravitational":
		behaviour = NewGravitational2D(world, record.Magnitude)
	case "electrical repulsion":
		behaviour = NewElectricalRepulsion2D(world, record.Magnitude)
	default:
		return nil, fmt.Errorf("%w: unknown behaviour %q", ErrInvalidSpecs, record.Name)
	}
	behaviour.SetEnabled(record.Enabled)
	for _, index := range record.Bodies {
		if index < 0 || index >= world.Bodies.Size() {
			return nil, fmt.Errorf("%w: behaviour body index %d out of range", ErrUnknownEntity, index)
		}
		behaviour.AddBody(world.Bodies.At(index).ID)
	}
	return behaviour, nil
}
