package ppx

import (
	"fmt"
)

/// User hooks into world mutation seams. Callbacks run synchronously at
/// well-defined points: body added right after insertion, early removal
/// before any mutation, late removal after the store is consistent again,
/// collision enter/exit when the contact cache gains or fully loses a pair.
type WorldCallbacks struct {
	BodyAdded        []func(body *Body2D)
	BodyEarlyRemoval []func(body *Body2D)
	BodyLateRemoval  []func(index int)

	CollisionEnter []func(collision *Collision2D)
	CollisionExit  []func(id1, id2 uint64)

	Error []ErrorCallback
}

func (w *World2D) notifyBodyAdded(body *Body2D) {
	w.Collisions.OnBodyAdded(body)
	for _, callback := range w.Callbacks.BodyAdded {
		callback(body)
	}
}

func (w *World2D) notifyBodyEarlyRemoval(body *Body2D) {
	w.Collisions.Contacts.PruneBody(body.ID)
	for _, callback := range w.Callbacks.BodyEarlyRemoval {
		callback(body)
	}
}

func (w *World2D) notifyBodyLateRemoval(index int) {
	for _, callback := range w.Callbacks.BodyLateRemoval {
		callback(index)
	}
}

func (w *World2D) notifyCollisionEnter(collision *Collision2D) {
	for _, callback := range w.Callbacks.CollisionEnter {
		callback(collision)
	}
}

func (w *World2D) notifyCollisionExit(id1, id2 uint64) {
	for _, callback := range w.Callbacks.CollisionExit {
		callback(id1, id2)
	}
}

/// Route a non-fatal internal error through the registered callbacks, or the
/// default slog-backed one when none are registered.
func (w *World2D) reportError(err error) {
	if len(w.Callbacks.Error) == 0 {
		DefaultErrorCallback(err)
		return
	}
	for _, callback := range w.Callbacks.Error {
		callback(err)
	}
}

func (w *World2D) reportConstraintDivergence(id1, id2 uint64) {
	w.reportError(fmt.Errorf("%w: constraint between bodies %d and %d", ErrConstraintDivergence, id1, id2))
}
