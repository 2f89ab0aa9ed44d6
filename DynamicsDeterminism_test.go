package ppx

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/require"
)

func buildDeterminismWorld(t *testing.T, specs WorldSpecs2D) *World2D {
	world, err := MakeWorld2D(specs)
	require.NoError(t, err)

	ground := MakeBodySpecs2D()
	ground.Type = BodyType.E_staticBody
	ground.Vertices = []Vec2{
		MakeVec2(-20.0, -1.0), MakeVec2(20.0, -1.0),
		MakeVec2(20.0, 1.0), MakeVec2(-20.0, 1.0),
	}
	_, err = world.AddBody(ground)
	require.NoError(t, err)

	gravity := NewGravity2D(world, -9.8)
	positions := []Vec2{
		MakeVec2(-4.0, 3.0), MakeVec2(-2.0, 4.0), MakeVec2(0.0, 5.0),
		MakeVec2(2.0, 4.0), MakeVec2(4.0, 3.0),
	}
	for _, position := range positions {
		specs := MakeBodySpecs2D()
		specs.Position = position
		specs.Radius = 0.5
		body, err := world.AddBody(specs)
		require.NoError(t, err)
		gravity.AddBody(body.ID)
	}
	world.AddBehaviour(gravity)

	springSpecs := MakeSpringSpecs2D(1, 2)
	springSpecs.Anchor1 = positions[0]
	springSpecs.Anchor2 = positions[1]
	springSpecs.Stiffness = 5.0
	springSpecs.Damping = 1.0
	_, err = world.AddSpring(springSpecs)
	require.NoError(t, err)

	jointSpecs := MakeDistanceJointSpecs2D(3, 4)
	jointSpecs.Joint.Anchor1 = positions[2]
	jointSpecs.Joint.Anchor2 = positions[3]
	_, err = world.AddDistanceJoint(jointSpecs)
	require.NoError(t, err)

	return world
}

func dumpWorldState(world *World2D) string {
	var sb strings.Builder
	for _, v := range world.Integrator.State {
		fmt.Fprintf(&sb, "%016x\n", math.Float64bits(v))
	}
	return sb.String()
}

func requireIdenticalStates(t *testing.T, worldA, worldB *World2D) {
	dumpA := dumpWorldState(worldA)
	dumpB := dumpWorldState(worldB)
	if dumpA != dumpB {
		diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(dumpA),
			B:        difflib.SplitLines(dumpB),
			FromFile: "world A",
			ToFile:   "world B",
			Context:  2,
		})
		t.Fatalf("simulations diverged:\n%s", diff)
	}
}

/// Two identically built worlds stepped in lockstep must produce bit
/// identical trajectories.
func TestSimulationIsDeterministic(t *testing.T) {
	specs := MakeWorldSpecs2D()
	specs.Collision.DetectionMethod = DetectionNameSortAndSweep

	worldA := buildDeterminismWorld(t, specs)
	worldB := buildDeterminismWorld(t, specs)

	for i := 0; i < 1000; i++ {
		require.True(t, worldA.Step())
		require.True(t, worldB.Step())
	}
	requireIdenticalStates(t, worldA, worldB)
}

/// The multithreaded broad phase merges per-worker results in body order and
/// canonicalizes the pair list, so it cannot perturb the trajectory.
func TestMultithreadedDetectionMatchesSingleThreaded(t *testing.T) {
	single := MakeWorldSpecs2D()
	single.Collision.DetectionMethod = DetectionNameBruteForce

	multi := single
	multi.Collision.Multithreading = true

	worldA := buildDeterminismWorld(t, single)
	worldB := buildDeterminismWorld(t, multi)

	for i := 0; i < 1000; i++ {
		require.True(t, worldA.Step())
		require.True(t, worldB.Step())
	}
	requireIdenticalStates(t, worldA, worldB)
}

/// Detection strategy only changes how candidate pairs are found, never
/// which ones exist, so the resolved physics must agree.
func TestBroadPhaseMethodsAgree(t *testing.T) {
	brute := MakeWorldSpecs2D()
	brute.Collision.DetectionMethod = DetectionNameBruteForce

	sweep := brute
	sweep.Collision.DetectionMethod = DetectionNameSortAndSweep

	worldA := buildDeterminismWorld(t, brute)
	worldB := buildDeterminismWorld(t, sweep)

	for i := 0; i < 1000; i++ {
		require.True(t, worldA.Step())
		require.True(t, worldB.Step())
	}
	requireIdenticalStates(t, worldA, worldB)
}
