package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotConnected means the mailbox connector has no authenticated
// account; every send-dependent intent short-circuits on it.
var ErrNotConnected = errors.New("mailbox account not connected")

// ValidationError is a local input failure. It is never retried and is
// returned before any side effect runs.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InvalidTransitionError names the current and requested state so the
// caller can tell a stale view from a bad request.
type InvalidTransitionError struct {
	Current   Status
	Requested string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s an interview in status %q", e.Requested, e.Current)
}

type NotFoundError struct {
	ID uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("interview %s not found", e.ID)
}

// ConflictError is returned when an update's expected version no longer
// matches the stored row (a concurrent writer got there first).
type ConflictError struct {
	ID uuid.UUID
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("interview %s was modified concurrently", e.ID)
}

// ProvisioningError wraps a meeting-provisioner failure. The transition
// that needed the meeting is not committed.
type ProvisioningError struct {
	Err error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("meeting provisioning failed: %v", e.Err)
}

func (e *ProvisioningError) Unwrap() error { return e.Err }

// DeliveryError wraps a mailbox send failure. Whether it blocks the
// transition depends on the intent; cancellation notices are best-effort.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("email delivery failed: %v", e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
