package ppx

const PPXDEBUG = false

func Assert(a bool) {
	if !a {
		panic("Assert")
	}
}

/// @file
/// Global tuning constants based on meters-kilograms-seconds (MKS) units.
///

// Collision

/// The maximum number of contact points between two convex shapes. Do
/// not change this value.
const MaxManifoldPoints = 2

/// The maximum number of vertices on a convex polygon.
const MaxPolygonVertices = 8

/// This is used to fatten AABBs so that bodies can move by a small amount
/// without triggering a quad tree adjustment. This is in meters.
const AABBEnlargement = 0.1

/// Flat AABB fattening applied on top of the proportional enlargement.
const AABBBuffer = 0.5

/// Iteration cap for the GJK simplex refinement loop.
const GJKMaxIterations = 32

/// Iteration cap for the EPA polytope expansion loop.
const EPAMaxIterations = 32

// Dynamics

/// A velocity threshold for elastic collisions. Any collision with a relative
/// normal velocity below this threshold will be treated as inelastic.
const VelocityThreshold = 1.0

/// The maximum angular position correction used when solving constraints.
/// This helps to prevent overshoot.
const MaxAngularCorrection = (8.0 / 180.0 * Pi)

/// Default stiffness and damping used when translating a soft constraint's
/// frequency into spring coefficients.
const DefaultJointFrequency = 10.0
const DefaultJointDampingRatio = 1.0

/// Rotor and motor joints scale their positional error correction by this
/// factor to avoid fighting their own velocity drive.
const DefaultCorrectionFactor = 0.05

/// Decay base of the spring non-linear polynomial term.
const SpringNonLinearDecay = 16.0
