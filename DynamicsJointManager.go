package ppx

/// Joint storage and the constraint solver driver. Joints live in per-kind
/// containers iterated in a fixed kind order, so the solve order never
/// depends on insertion interleavings across kinds.
type JointManager2D struct {
	world *World2D

	containers [7][]Joint2D
}

func MakeJointManager2D(world *World2D) JointManager2D {
	return JointManager2D{world: world}
}

func (jm *JointManager2D) Add(joint Joint2D) {
	kind := joint.Kind()
	jm.containers[kind] = append(jm.containers[kind], joint)
	joint.Awake()
}

/// Remove the joint, preserving the container order. Both bodies are woken so
/// a newly released pair never sleeps through its first free step.
func (jm *JointManager2D) Remove(joint Joint2D) bool {
	kind := joint.Kind()
	container := jm.containers[kind]
	for i, candidate := range container {
		if candidate == joint {
			joint.Awake()
			jm.containers[kind] = append(container[:i], container[i+1:]...)
			return true
		}
	}
	return false
}

func (jm *JointManager2D) Size() int {
	total := 0
	for _, container := range jm.containers {
		total += len(container)
	}
	return total
}

func (jm *JointManager2D) OfKind(kind uint8) []Joint2D {
	return jm.containers[kind]
}

func (jm *JointManager2D) ForEach(fn func(Joint2D)) {
	for _, container := range jm.containers {
		for _, joint := range container {
			fn(joint)
		}
	}
}

/// Drop joints referencing bodies that no longer live in the store.
func (jm *JointManager2D) Validate() {
	for kind := range jm.containers {
		kept := jm.containers[kind][:0]
		for _, joint := range jm.containers[kind] {
			if joint.Valid() {
				kept = append(kept, joint)
			}
		}
		jm.containers[kind] = kept
	}
}

/// Whether the broad phase may report collisions between the two bodies. Any
/// joint binding them with CollideBodies off suppresses the pair.
func (jm *JointManager2D) BodiesMayCollide(id1, id2 uint64) bool {
	for _, container := range jm.containers {
		for _, joint := range container {
			if joint.ContainsBody(id1) && joint.ContainsBody(id2) && !joint.BodiesCollide() {
				return false
			}
		}
	}
	return true
}

func (jm *JointManager2D) contacts() []*Contact2D {
	collisions := &jm.world.Collisions
	if collisions.Resolution != ResolutionMethod.E_constraintDriven {
		return nil
	}
	return collisions.Contacts.Contacts()
}

/// The velocity phase, run inside each derivative evaluation: refresh every
/// constraint's solver state, warm start from the previous step's impulses
/// and run the velocity iterations, joints before contacts.
func (jm *JointManager2D) SolveVelocities() {
	specs := &jm.world.Specs.Constraints
	contacts := jm.contacts()

	jm.ForEach(func(joint Joint2D) { joint.Startup() })
	for _, contact := range contacts {
		contact.Startup()
	}

	if specs.Warmup {
		jm.ForEach(func(joint Joint2D) { joint.Warmup() })
		for _, contact := range contacts {
			contact.Warmup()
		}
	}

	for it := 0; it < specs.VelocityIterations; it++ {
		jm.ForEach(func(joint Joint2D) { joint.SolveVelocities() })
		for _, contact := range contacts {
			contact.SolveVelocities()
		}
	}
}

/// The position phase, run after integration on the retrieved body poses.
/// Iterations stop early once every constraint reports its error below the
/// slop.
func (jm *JointManager2D) SolvePositions() {
	specs := &jm.world.Specs.Constraints
	contacts := jm.contacts()

	for it := 0; it < specs.PositionIterations; it++ {
		solved := true
		jm.ForEach(func(joint Joint2D) {
			if !joint.SolvePositions() {
				solved = false
			}
		})
		for _, contact := range contacts {
			if !contact.SolvePositions() {
				solved = false
			}
		}
		if solved {
			break
		}
	}
}
