package ppx

import (
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

var DetectionMethod = struct {
	E_bruteForce   uint8
	E_sortAndSweep uint8
	E_quadTree     uint8
}{
	E_bruteForce:   0,
	E_sortAndSweep: 1,
	E_quadTree:     2,
}

var ResolutionMethod = struct {
	E_constraintDriven uint8
	E_springDriven     uint8
}{
	E_constraintDriven: 0,
	E_springDriven:     1,
}

// Rebuild bookkeeping for the quad tree is shared process wide, so the
// build period spans every world in the process.
var qtBuildCalls int

/// An x-axis interval endpoint of a body's AABB, used by sort-and-sweep.
type sweepInterval struct {
	body  *Body2D
	lower bool
}

func (itv sweepInterval) value() float64 {
	if itv.lower {
		return itv.body.BoundingBox.Min.X
	}
	return itv.body.BoundingBox.Max.X
}

/// The collision pipeline: an interchangeable broad phase feeding a GJK/EPA
/// narrow phase, with either constraint driven (sequential impulses) or
/// spring driven resolution. Detected collisions are cached for the step;
/// later derivative evaluations only re-run the narrow phase on them.
type CollisionManager2D struct {
	world *World2D

	Enabled        bool
	Multithreading bool
	Detection      uint8
	Resolution     uint8

	EpaThreshold  float64
	QtProps       QuadTreeProps
	QtBuildPeriod int
	ForceSquare   bool

	// Spring driven resolution parameters.
	Rigidity       float64
	NormalDamping  float64
	TangentDamping float64

	Contacts ContactManager2D

	quadTree   QuadTree2D
	intervals  []sweepInterval
	collisions []*Collision2D
}

func MakeCollisionManager2D(world *World2D, specs CollisionSpecs2D) CollisionManager2D {
	cm := CollisionManager2D{
		world:          world,
		Enabled:        specs.Enabled,
		Multithreading: specs.Multithreading,
		Detection:      specs.DetectionMethod.toEnum(),
		Resolution:     specs.ResolutionMethod.toEnum(),
		EpaThreshold:   specs.EpaThreshold,
		QtProps: QuadTreeProps{
			MaxEntities: specs.QuadTree.MaxEntities,
			MaxDepth:    specs.QuadTree.MaxDepth,
			MinSize:     specs.QuadTree.MinSize,
		},
		QtBuildPeriod:  specs.QuadTree.BuildPeriod,
		ForceSquare:    specs.QuadTree.ForceSquare,
		Rigidity:       specs.SpringDriven.Rigidity,
		NormalDamping:  specs.SpringDriven.NormalDamping,
		TangentDamping: specs.SpringDriven.TangentDamping,
		Contacts:       MakeContactManager2D(world),
	}
	cm.Contacts.Lifetime = specs.ContactLifetime
	cm.quadTree = MakeQuadTree2D(MakeVec2(-100.0, -100.0), MakeVec2(100.0, 100.0), &cm.QtProps)
	return cm
}

/// Body store observer: keep the sweep intervals and the quad tree in sync.
func (cm *CollisionManager2D) OnBodyAdded(body *Body2D) {
	cm.intervals = append(cm.intervals,
		sweepInterval{body: body, lower: true},
		sweepInterval{body: body, lower: false})
	cm.quadTree.Insert(body)
}

/// Prune references to bodies that no longer live in the store.
func (cm *CollisionManager2D) Validate() {
	kept := cm.intervals[:0]
	for _, itv := range cm.intervals {
		if cm.world.Bodies.FromID(itv.body.ID) == itv.body {
			kept = append(kept, itv)
		}
	}
	cm.intervals = kept
	cm.quadTree.Rebuild(cm.world.Bodies.Bodies(), cm.ForceSquare)
}

/// Drop the step's cached collisions; the next derivative evaluation runs a
/// fresh broad phase.
func (cm *CollisionManager2D) FlushCollisions() {
	cm.collisions = cm.collisions[:0]
}

func (cm *CollisionManager2D) CachedCollisions() []*Collision2D {
	return cm.collisions
}

func (cm *CollisionManager2D) Solve() {
	if !cm.Enabled {
		return
	}

	if len(cm.collisions) == 0 {
		cm.detectCollisions()
	} else {
		cm.refineCollisions()
	}

	switch cm.Resolution {
	case ResolutionMethod.E_constraintDriven:
		cm.Contacts.UpdateFromCollisions(cm.collisions)
	case ResolutionMethod.E_springDriven:
		cm.resolveWithSprings()
	}
}

func (cm *CollisionManager2D) detectCollisions() {
	switch cm.Detection {
	case DetectionMethod.E_bruteForce:
		cm.bruteForce()
	case DetectionMethod.E_sortAndSweep:
		cm.sortAndSweep()
	case DetectionMethod.E_quadTree:
		cm.quadTreeScan()
	}
	cm.canonicalize()
}

/// Re-run the narrow phase on the cached pair set. Each refinement is
/// independent, so the multithreaded path splits them across workers.
func (cm *CollisionManager2D) refineCollisions() {
	refine := func(collision *Collision2D) {
		body1 := cm.world.Bodies.At(collision.Index1)
		body2 := cm.world.Bodies.At(collision.Index2)
		fresh, ok := cm.narrowCheck(body1, body2)
		if !ok {
			collision.Valid = false
			return
		}
		*collision = *fresh
	}

	if !cm.Multithreading {
		for _, collision := range cm.collisions {
			refine(collision)
		}
		return
	}

	group := new(errgroup.Group)
	group.SetLimit(runtime.NumCPU())
	for _, collision := range cm.collisions {
		group.Go(func() error {
			refine(collision)
			return nil
		})
	}
	group.Wait()
}

func (cm *CollisionManager2D) bruteForce() {
	bodies := cm.world.Bodies.Bodies()
	if !cm.Multithreading {
		for i := 0; i < len(bodies); i++ {
			for j := i + 1; j < len(bodies); j++ {
				cm.checkPair(bodies[i], bodies[j], &cm.collisions)
			}
		}
		return
	}

	// The parallel variant sweeps the full inner range for every body, so
	// each pair is visited twice; the canonicalization pass collapses the
	// duplicates.
	results := make([][]*Collision2D, len(bodies))
	group := new(errgroup.Group)
	group.SetLimit(runtime.NumCPU())
	for i := range bodies {
		group.Go(func() error {
			var local []*Collision2D
			for j := 0; j < len(bodies); j++ {
				cm.checkPair(bodies[i], bodies[j], &local)
			}
			results[i] = local
			return nil
		})
	}
	group.Wait()
	for _, local := range results {
		cm.collisions = append(cm.collisions, local...)
	}
}

func (cm *CollisionManager2D) sortAndSweep() {
	intervals := cm.intervals
	sort.SliceStable(intervals, func(i, j int) bool {
		vi, vj := intervals[i].value(), intervals[j].value()
		if vi != vj {
			return vi < vj
		}
		// Ties break LOWER before HIGHER, then by body id.
		if intervals[i].lower != intervals[j].lower {
			return intervals[i].lower
		}
		return intervals[i].body.ID < intervals[j].body.ID
	})

	open := make([]*Body2D, 0, 32)
	for _, itv := range intervals {
		if itv.lower {
			for _, other := range open {
				cm.checkPair(other, itv.body, &cm.collisions)
			}
			open = append(open, itv.body)
			continue
		}
		for i, other := range open {
			if other == itv.body {
				open[i] = open[len(open)-1]
				open = open[:len(open)-1]
				break
			}
		}
	}
}

func (cm *CollisionManager2D) quadTreeScan() {
	qtBuildCalls++
	if qtBuildCalls >= cm.QtBuildPeriod {
		cm.quadTree.Rebuild(cm.world.Bodies.Bodies(), cm.ForceSquare)
		qtBuildCalls = 0
	}

	partitions := cm.quadTree.CollectPartitions(make([][]*Body2D, 0, 20))

	if !cm.Multithreading {
		for _, partition := range partitions {
			for i := 0; i < len(partition); i++ {
				for j := i + 1; j < len(partition); j++ {
					cm.checkPair(partition[i], partition[j], &cm.collisions)
				}
			}
		}
		return
	}

	// Each leaf is an independent pairwise check; workers accumulate into
	// per-leaf lists merged after the join.
	results := make([][]*Collision2D, len(partitions))
	group := new(errgroup.Group)
	group.SetLimit(runtime.NumCPU())
	for p, partition := range partitions {
		group.Go(func() error {
			var local []*Collision2D
			for i := 0; i < len(partition); i++ {
				for j := i + 1; j < len(partition); j++ {
					cm.checkPair(partition[i], partition[j], &local)
				}
			}
			results[p] = local
			return nil
		})
	}
	group.Wait()
	for _, local := range results {
		cm.collisions = append(cm.collisions, local...)
	}
}

/// Sort the detected collisions by canonical pair id and collapse the
/// duplicates produced by overlapping leaves or the parallel merge, so the
/// downstream solve order is independent of thread interleaving.
func (cm *CollisionManager2D) canonicalize() {
	sort.Slice(cm.collisions, func(i, j int) bool {
		ci, cj := cm.collisions[i], cm.collisions[j]
		if ci.ID1 != cj.ID1 {
			return ci.ID1 < cj.ID1
		}
		return ci.ID2 < cj.ID2
	})

	kept := cm.collisions[:0]
	var prev *Collision2D
	for _, collision := range cm.collisions {
		if prev != nil && prev.ID1 == collision.ID1 && prev.ID2 == collision.ID2 {
			continue
		}
		kept = append(kept, collision)
		prev = collision
	}
	cm.collisions = kept
}

func (cm *CollisionManager2D) checkPair(body1, body2 *Body2D, out *[]*Collision2D) {
	if !cm.broadCheck(body1, body2) {
		return
	}
	collision, ok := cm.narrowCheck(body1, body2)
	if ok {
		*out = append(*out, collision)
	}
}

func (cm *CollisionManager2D) broadCheck(body1, body2 *Body2D) bool {
	if body1 == body2 {
		return false
	}
	if !body1.IsDynamic() && !body2.IsDynamic() {
		return false
	}
	if body1.asleep && body2.asleep {
		return false
	}
	if !MayIntersect(body1.BoundingBox, body2.BoundingBox) {
		return false
	}
	return cm.world.Joints.BodiesMayCollide(body1.ID, body2.ID)
}

/// Narrow phase on one candidate pair. The collision record is always
/// canonical: the low-id body comes first and the MTV points away from it.
func (cm *CollisionManager2D) narrowCheck(body1, body2 *Body2D) (*Collision2D, bool) {
	if body1.ID > body2.ID {
		body1, body2 = body2, body1
	}

	xf1 := body1.Transform()
	xf2 := body2.Transform()

	collision := &Collision2D{
		Index1: body1.Index,
		Index2: body2.Index,
		ID1:    body1.ID,
		ID2:    body2.ID,
		Valid:  true,
	}

	circle1, ok1 := body1.Shape.(*CircleShape)
	circle2, ok2 := body2.Shape.(*CircleShape)
	if ok1 && ok2 {
		touch1, touch2, mtv, hit := CollideCircles(circle1, xf1, circle2, xf2)
		if !hit {
			return nil, false
		}
		collision.Touch1[0] = touch1
		collision.Touch2[0] = touch2
		collision.ManifoldCount = 1
		collision.MTV = mtv
		return collision, true
	}

	simplex, hit := GJK(body1.Shape, xf1, body2.Shape, xf2)
	if !hit {
		return nil, false
	}

	mtv, err := EPA(body1.Shape, xf1, body2.Shape, xf2, simplex, cm.EpaThreshold)
	if err != nil {
		cm.world.reportError(err)
		return nil, false
	}
	if mtv.LengthSquared() < Epsilon {
		return nil, false
	}
	collision.MTV = mtv

	poly1, isPoly1 := body1.Shape.(*PolygonShape)
	poly2, isPoly2 := body2.Shape.(*PolygonShape)
	if isPoly1 && isPoly2 {
		points, count := PolygonContactPoints(poly1, xf1, poly2, xf2, mtv)
		if count == 0 {
			return nil, false
		}
		collision.ManifoldCount = count
		for i := 0; i < count; i++ {
			collision.Touch2[i] = points[i]
			collision.Touch1[i] = Vec2Add(points[i], mtv)
		}
		return collision, true
	}

	touch1, touch2, ok := MixedContactPoints(body1.Shape, xf1, body2.Shape, xf2, mtv)
	if !ok {
		return nil, false
	}
	collision.Touch1[0] = touch1
	collision.Touch2[0] = touch2
	collision.ManifoldCount = 1
	return collision, true
}

/// Spring driven resolution: a stiff spring plus damping at every manifold
/// point, applied as simulation forces instead of solver impulses.
func (cm *CollisionManager2D) resolveWithSprings() {
	for _, collision := range cm.collisions {
		if !collision.Valid {
			continue
		}
		body1 := cm.world.Bodies.At(collision.Index1)
		body2 := cm.world.Bodies.At(collision.Index2)
		normal := collision.Normal()
		tangent := normal.Skew()

		for i := 0; i < collision.ManifoldCount; i++ {
			offset1 := Vec2Sub(collision.Touch1[i], body1.Position)
			offset2 := Vec2Sub(collision.Touch2[i], body2.Position)

			relVel := Vec2Sub(body2.VelocityAt(offset2), body1.VelocityAt(offset1))
			vn := Vec2MulScalar(Vec2Dot(relVel, normal), normal)
			vt := Vec2MulScalar(Vec2Dot(relVel, tangent), tangent)

			force := Vec2MulScalar(cm.Rigidity, Vec2Sub(collision.Touch2[i], collision.Touch1[i]))
			force.OperatorPlusInplace(Vec2MulScalar(cm.NormalDamping, vn))
			force.OperatorPlusInplace(Vec2MulScalar(cm.TangentDamping, vt))

			body1.ApplySimulationForceAt(force, offset1)
			body2.ApplySimulationForceAt(force.OperatorNegate(), offset2)
		}
	}
}
