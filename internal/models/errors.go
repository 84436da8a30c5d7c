package models

import "fmt"

// ValidationError reports malformed or missing input. Surfaced verbatim to
// the caller as a 400.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// ConflictError reports an invariant violation: a duplicate active override,
// a revert on a non-active override, or a lost revert/expire race. Retrying
// without operator action could double-apply effects, so this maps to 409.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

// NotFoundError reports an unknown override id
type NotFoundError struct {
	OverrideID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("override %s not found", e.OverrideID)
}

// HandlerError reports that an action handler's call into the external
// collaborator failed. Nothing is committed when this happens: a failed
// Apply writes no override row, a failed Restore leaves the override active
// so a retry is safe.
type HandlerError struct {
	ActionType ActionType
	Op         string // "capture", "apply" or "restore"
	Err        error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("%s handler failed during %s: %v", e.ActionType, e.Op, e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}
