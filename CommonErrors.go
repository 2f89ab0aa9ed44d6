package ppx

import (
	"errors"
	"log/slog"
)

/// Error kinds surfaced by the simulation core. Callers discriminate with
/// errors.Is; every wrapped instance carries the offending body or joint id.
var (
	// Add-time validation failures: negative mass, NaN positions, degenerate polygons.
	ErrInvalidSpecs = errors.New("ppx: invalid specs")

	// A handle (body id, joint, spring or behaviour reference) does not resolve.
	ErrUnknownEntity = errors.New("ppx: unknown entity")

	// The integrator produced a NaN or infinite derivative or state entry.
	ErrIntegratorNonFinite = errors.New("ppx: integrator produced a non-finite state")

	// A constraint accumulated a non-finite impulse. Non-fatal: the impulse is
	// clamped to zero and the step continues.
	ErrConstraintDivergence = errors.New("ppx: constraint impulse diverged")

	// GJK or EPA could not converge on a pair. Non-fatal: the pair is dropped
	// from the current step.
	ErrGeometryDegenerate = errors.New("ppx: degenerate geometry")
)

/// ErrorCallback receives non-fatal internal errors (divergence, degenerate
/// geometry) as the step runs. It must not mutate the world.
type ErrorCallback func(err error)

/// The default callback logs degenerate geometry at debug and everything
/// else at warn, through log/slog.
func DefaultErrorCallback(err error) {
	if errors.Is(err, ErrGeometryDegenerate) {
		slog.Debug("ppx recoverable geometry failure", "error", err)
		return
	}
	slog.Warn("ppx non-fatal solver error", "error", err)
}
