package ppx

/// Tuning knobs of a quad tree. They live on the owning detection component
/// so multiple worlds stay independent.
type QuadTreeProps struct {
	MaxEntities int
	MaxDepth    int
	MinSize     float64
}

func MakeQuadTreeProps() QuadTreeProps {
	return QuadTreeProps{
		MaxEntities: 12,
		MaxDepth:    12,
		MinSize:     14.0,
	}
}

/// A quad tree node partitioning bodies by their world AABBs. A body is
/// inserted into every child whose bounds intersect its bounding box, so a
/// body may appear in several leaves.
type QuadTree2D struct {
	Bounds AABB

	props       *QuadTreeProps
	depth       int
	partitioned bool
	hasChildren bool
	bodies      []*Body2D
	children    [4]*QuadTree2D
}

func MakeQuadTree2D(min, max Vec2, props *QuadTreeProps) QuadTree2D {
	return QuadTree2D{
		Bounds: MakeAABB(min, max),
		props:  props,
		bodies: make([]*Body2D, 0, 4*props.MaxEntities),
	}
}

func NewQuadTree2D(min, max Vec2, props *QuadTreeProps) *QuadTree2D {
	res := MakeQuadTree2D(min, max, props)
	return &res
}

func (qt *QuadTree2D) Insert(body *Body2D) {
	if !TestOverlapBoundingBoxes(qt.Bounds, body.BoundingBox) {
		return
	}
	if qt.full() && !qt.rockBottom() {
		qt.subdivide()
	}
	if qt.partitioned {
		qt.insertToChildren(body)
	} else {
		qt.bodies = append(qt.bodies, body)
	}
}

func (qt *QuadTree2D) Clear() {
	qt.partitioned = false
	qt.bodies = qt.bodies[:0]
}

/// Walk the leaves and push each leaf's body list into out.
func (qt *QuadTree2D) CollectPartitions(out [][]*Body2D) [][]*Body2D {
	if !qt.partitioned {
		if len(qt.bodies) > 0 {
			out = append(out, qt.bodies)
		}
		return out
	}
	for _, child := range qt.children {
		out = child.CollectPartitions(out)
	}
	return out
}

/// Throw away the current partition and re-insert every body. The root AABB
/// grows to enclose all bodies; forceSquare keeps it square.
func (qt *QuadTree2D) Rebuild(bodies []*Body2D, forceSquare bool) {
	qt.Clear()
	if len(bodies) == 0 {
		return
	}

	enclosing := bodies[0].BoundingBox
	for _, body := range bodies[1:] {
		enclosing.CombineInPlace(body.BoundingBox)
	}
	enclosing = enclosing.Enlarged(AABBEnlargement, AABBBuffer)

	if forceSquare {
		center := enclosing.GetCenter()
		ext := enclosing.GetExtents()
		side := ext.X
		if ext.Y > side {
			side = ext.Y
		}
		half := MakeVec2(side, side)
		enclosing = MakeAABB(Vec2Sub(center, half), Vec2Add(center, half))
	}

	qt.Bounds = enclosing
	for _, body := range bodies {
		qt.Insert(body)
	}
}

func (qt *QuadTree2D) subdivide() {
	if qt.hasChildren {
		qt.resetChildren()
	} else {
		qt.createChildren()
	}
	for _, body := range qt.bodies {
		qt.insertToChildren(body)
	}
	qt.bodies = qt.bodies[:0]
}

// Children order: top-left, top-right, bottom-left, bottom-right.
func (qt *QuadTree2D) createChildren() {
	qt.hasChildren = true
	qt.partitioned = true
	mm := qt.Bounds.Min
	mx := qt.Bounds.Max
	mid := qt.Bounds.GetCenter()

	qt.children[0] = NewQuadTree2D(MakeVec2(mm.X, mid.Y), MakeVec2(mid.X, mx.Y), qt.props)
	qt.children[1] = NewQuadTree2D(mid, mx, qt.props)
	qt.children[2] = NewQuadTree2D(mm, mid, qt.props)
	qt.children[3] = NewQuadTree2D(MakeVec2(mid.X, mm.Y), MakeVec2(mx.X, mid.Y), qt.props)
	for _, child := range qt.children {
		child.depth = qt.depth + 1
	}
}

// Subdivision reuses previously allocated children.
func (qt *QuadTree2D) resetChildren() {
	qt.partitioned = true
	mm := qt.Bounds.Min
	mx := qt.Bounds.Max
	mid := qt.Bounds.GetCenter()

	bounds := [4]AABB{
		MakeAABB(MakeVec2(mm.X, mid.Y), MakeVec2(mid.X, mx.Y)),
		MakeAABB(mid, mx),
		MakeAABB(mm, mid),
		MakeAABB(MakeVec2(mid.X, mm.Y), MakeVec2(mx.X, mid.Y)),
	}
	for i, child := range qt.children {
		child.Bounds = bounds[i]
		child.depth = qt.depth + 1
		child.Clear()
	}
}

func (qt *QuadTree2D) insertToChildren(body *Body2D) {
	for _, child := range qt.children {
		child.Insert(body)
	}
}

func (qt *QuadTree2D) full() bool {
	return len(qt.bodies) >= qt.props.MaxEntities
}

func (qt *QuadTree2D) rockBottom() bool {
	if qt.depth >= qt.props.MaxDepth {
		return true
	}
	dim := qt.Bounds.Dimension()
	return dim.X*dim.Y < qt.props.MinSize*qt.props.MinSize
}

func (qt *QuadTree2D) Partitioned() bool {
	return qt.partitioned
}

func (qt *QuadTree2D) Bodies() []*Body2D {
	return qt.bodies
}

func (qt *QuadTree2D) Child(index int) *QuadTree2D {
	Assert(index < 4)
	return qt.children[index]
}
