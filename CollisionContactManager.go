package ppx

/// The contact cache. Contacts are matched across steps by their canonical
/// key so converged impulses survive for warm starting; entries that go
/// unobserved for Lifetime steps are evicted. Contacts are stored in
/// creation order, which fixes the solve order deterministically.
type ContactManager2D struct {
	world    *World2D
	contacts []*Contact2D
	lookup   map[ContactKey]int
	pairs    map[ContactKey]int

	Lifetime int
}

func MakeContactManager2D(world *World2D) ContactManager2D {
	return ContactManager2D{
		world:    world,
		contacts: make([]*Contact2D, 0, 32),
		lookup:   make(map[ContactKey]int),
		pairs:    make(map[ContactKey]int),
	}
}

func (cm *ContactManager2D) Contacts() []*Contact2D {
	return cm.contacts
}

func (cm *ContactManager2D) Size() int {
	return len(cm.contacts)
}

/// Fold the step's detected collisions into the cache. Duplicate keys from
/// overlapping quad tree leaves collapse onto one contact, which yields the
/// at-most-one-solve guarantee per pair and feature.
func (cm *ContactManager2D) UpdateFromCollisions(collisions []*Collision2D) {
	matched := make(map[ContactKey]bool, len(collisions))

	for _, collision := range collisions {
		if !collision.Valid {
			continue
		}
		for feature := 0; feature < collision.ManifoldCount; feature++ {
			key := MakeContactKey(collision.ID1, collision.ID2, feature)
			if matched[key] {
				continue
			}
			matched[key] = true

			if index, ok := cm.lookup[key]; ok {
				cm.contacts[index].Update(collision, feature)
				continue
			}

			contact := NewContact2D(cm.world, collision, feature)
			cm.lookup[key] = len(cm.contacts)
			cm.contacts = append(cm.contacts, contact)

			pair := MakeContactKey(collision.ID1, collision.ID2, 0)
			cm.pairs[pair]++
			if cm.pairs[pair] == 1 {
				cm.world.notifyCollisionEnter(collision)
			}
		}
	}

	kept := cm.contacts[:0]
	for _, contact := range cm.contacts {
		if !matched[contact.key] {
			contact.unmatchedSteps++
			if contact.unmatchedSteps >= cm.Lifetime {
				cm.dropPair(contact)
				continue
			}
		}
		kept = append(kept, contact)
	}
	cm.contacts = kept
	cm.rebuildLookup()
}

/// Drop every contact touching the given body id. Used when a body is
/// removed from the world.
func (cm *ContactManager2D) PruneBody(id uint64) {
	kept := cm.contacts[:0]
	for _, contact := range cm.contacts {
		if contact.ContainsBody(id) {
			cm.dropPair(contact)
			continue
		}
		kept = append(kept, contact)
	}
	cm.contacts = kept
	cm.rebuildLookup()
}

func (cm *ContactManager2D) Clear() {
	cm.contacts = cm.contacts[:0]
	cm.lookup = make(map[ContactKey]int)
	cm.pairs = make(map[ContactKey]int)
}

func (cm *ContactManager2D) dropPair(contact *Contact2D) {
	pair := MakeContactKey(contact.id1, contact.id2, 0)
	cm.pairs[pair]--
	if cm.pairs[pair] <= 0 {
		delete(cm.pairs, pair)
		cm.world.notifyCollisionExit(contact.id1, contact.id2)
	}
}

func (cm *ContactManager2D) rebuildLookup() {
	for key := range cm.lookup {
		delete(cm.lookup, key)
	}
	for i, contact := range cm.contacts {
		cm.lookup[contact.key] = i
	}
}
