package ppx

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func scatteredCircleBodies(count int, seed int64) []*Body2D {
	rng := rand.New(rand.NewSource(seed))
	bodies := make([]*Body2D, 0, count)
	for i := 0; i < count; i++ {
		body := &Body2D{
			ID:       uint64(i + 1),
			Index:    i,
			Position: MakeVec2(rng.Float64()*100.0-50.0, rng.Float64()*100.0-50.0),
			Mass:     1.0,
			Type:     BodyType.E_dynamicBody,
			Shape:    NewCircleShape(0.5 + 2.0*rng.Float64()),
		}
		body.UpdateMassData()
		body.UpdateBoundingBox()
		bodies = append(bodies, body)
	}
	return bodies
}

func partitionPairs(partitions [][]*Body2D) (map[[2]uint64]bool, map[uint64]bool) {
	pairs := make(map[[2]uint64]bool)
	seen := make(map[uint64]bool)
	for _, partition := range partitions {
		for i, body1 := range partition {
			seen[body1.ID] = true
			for _, body2 := range partition[i+1:] {
				key := [2]uint64{body1.ID, body2.ID}
				if key[0] > key[1] {
					key[0], key[1] = key[1], key[0]
				}
				pairs[key] = true
			}
		}
	}
	return pairs, seen
}

/// Any pair of bodies whose AABBs overlap must share at least one leaf:
/// missing a candidate pair means missed collisions.
func TestQuadTreeCandidatePairsCoverAABBOverlaps(t *testing.T) {
	const count = 300
	bodies := scatteredCircleBodies(count, 0x5eed)

	props := MakeQuadTreeProps()
	qt := MakeQuadTree2D(MakeVec2(-1.0, -1.0), MakeVec2(1.0, 1.0), &props)
	qt.Rebuild(bodies, false)

	pairs, seen := partitionPairs(qt.CollectPartitions(nil))
	require.Len(t, seen, count, "every body must land in at least one partition")

	for i := 0; i < count; i++ {
		for j := i + 1; j < count; j++ {
			if !TestOverlapBoundingBoxes(bodies[i].BoundingBox, bodies[j].BoundingBox) {
				continue
			}
			key := [2]uint64{bodies[i].ID, bodies[j].ID}
			require.True(t, pairs[key], "missing candidate pair (%d, %d)", key[0], key[1])
		}
	}
}

func TestQuadTreeRebuildEnclosesAllBodies(t *testing.T) {
	bodies := scatteredCircleBodies(64, 0xcafe)

	props := MakeQuadTreeProps()
	qt := MakeQuadTree2D(MakeVec2(0.0, 0.0), MakeVec2(1.0, 1.0), &props)
	qt.Rebuild(bodies, true)

	ext := qt.Bounds.GetExtents()
	require.InDelta(t, ext.X, ext.Y, 1e-12, "forceSquare must keep the root square")
	for _, body := range bodies {
		require.True(t, qt.Bounds.Contains(MakeAABBFromPoint(body.Position)))
	}
}

func TestQuadTreeSubdividesUnderLoad(t *testing.T) {
	props := MakeQuadTreeProps()
	props.MaxEntities = 4
	bodies := scatteredCircleBodies(64, 7)

	qt := MakeQuadTree2D(MakeVec2(0.0, 0.0), MakeVec2(1.0, 1.0), &props)
	qt.Rebuild(bodies, false)
	require.True(t, qt.Partitioned())

	partitions := qt.CollectPartitions(nil)
	require.NotEmpty(t, partitions)
	for _, partition := range partitions {
		require.NotEmpty(t, partition)
	}
}
