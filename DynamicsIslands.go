package ppx

/// Island bookkeeping. Bodies linked by joints, springs or contacts form an
/// island; an island falls asleep once every member's kinetic energy has
/// stayed below EnergyThreshold for TimeThreshold seconds. Sleeping bodies
/// receive no forces and emit a zero derivative until something wakes them.
type IslandManager2D struct {
	world *World2D

	Enabled         bool
	EnergyThreshold float64
	TimeThreshold   float64

	adjacency map[uint64][]uint64
	visited   map[uint64]bool
	stack     []uint64
	island    []*Body2D
}

func MakeIslandManager2D(world *World2D, specs IslandSpecs2D) IslandManager2D {
	return IslandManager2D{
		world:           world,
		Enabled:         specs.Enabled,
		EnergyThreshold: specs.SleepEnergyThreshold,
		TimeThreshold:   specs.SleepTimeThreshold,
		adjacency:       make(map[uint64][]uint64),
		visited:         make(map[uint64]bool),
	}
}

/// Advance the per-body sleep clocks and put exhausted islands to sleep.
/// Called once per step, after integration.
func (im *IslandManager2D) Process(dt float64) {
	if !im.Enabled {
		return
	}

	for _, body := range im.world.Bodies.Bodies() {
		if !body.IsDynamic() || body.asleep {
			continue
		}
		if body.KineticEnergy() < im.EnergyThreshold {
			body.sleepTime += dt
		} else {
			body.sleepTime = 0.0
		}
	}

	im.buildAdjacency()
	for key := range im.visited {
		delete(im.visited, key)
	}
	for _, body := range im.world.Bodies.Bodies() {
		if !body.IsDynamic() || im.visited[body.ID] {
			continue
		}
		im.collectIsland(body)
		im.settleIsland()
	}
}

/// Islands only merge through dynamic bodies: a shared static anchor does not
/// couple the sleep state of two otherwise independent stacks.
func (im *IslandManager2D) buildAdjacency() {
	for key := range im.adjacency {
		delete(im.adjacency, key)
	}
	link := func(id1, id2 uint64) {
		body1 := im.world.Bodies.FromID(id1)
		body2 := im.world.Bodies.FromID(id2)
		if body1 == nil || body2 == nil || !body1.IsDynamic() || !body2.IsDynamic() {
			return
		}
		im.adjacency[id1] = append(im.adjacency[id1], id2)
		im.adjacency[id2] = append(im.adjacency[id2], id1)
	}

	im.world.Joints.ForEach(func(joint Joint2D) {
		id1, id2 := joint.BodyIDs()
		link(id1, id2)
	})
	for _, spring := range im.world.Springs.Springs() {
		id1, id2 := spring.BodyIDs()
		link(id1, id2)
	}
	for _, contact := range im.world.Collisions.Contacts.Contacts() {
		id1, id2 := contact.BodyIDs()
		link(id1, id2)
	}
}

func (im *IslandManager2D) collectIsland(seed *Body2D) {
	im.island = im.island[:0]
	im.stack = append(im.stack[:0], seed.ID)
	im.visited[seed.ID] = true

	for len(im.stack) > 0 {
		id := im.stack[len(im.stack)-1]
		im.stack = im.stack[:len(im.stack)-1]

		body := im.world.Bodies.FromID(id)
		if body == nil {
			continue
		}
		im.island = append(im.island, body)
		for _, neighbor := range im.adjacency[id] {
			if !im.visited[neighbor] {
				im.visited[neighbor] = true
				im.stack = append(im.stack, neighbor)
			}
		}
	}
}

/// An island sleeps as a whole or not at all: one restless member keeps every
/// body awake.
func (im *IslandManager2D) settleIsland() {
	for _, body := range im.island {
		if body.sleepTime < im.TimeThreshold {
			return
		}
	}
	for _, body := range im.island {
		body.asleep = true
		body.Velocity.SetZero()
		body.AngularVelocity = 0.0
	}
}
