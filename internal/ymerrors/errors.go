// Package ymerrors defines the error kinds surfaced by the Y Monitor core:
// sentinel/wrapped error values discriminated with
// errors.Is/errors.As, in the teacher's own style of wrapped stdlib
// errors rather than an errors-handling library.
package ymerrors

import "fmt"

// Sentinel errors for kinds that carry no structured payload. Wrap with
// fmt.Errorf("%w: ...") at the call site to attach context.
var (
	// ErrValidationFailed marks a bad device/OID/credential/condition.
	// Returned to the caller, never retried.
	ErrValidationFailed = fmt.Errorf("validation failed")

	// ErrUnreachable marks a failed connectivity probe. The device is
	// marked down and its poll is aborted for the cycle.
	ErrUnreachable = fmt.Errorf("device unreachable")

	// ErrTimeout marks a per-operation timeout (SNMP, HTTP, store).
	ErrTimeout = fmt.Errorf("operation timed out")

	// ErrNotFound marks an unknown rule/device/transport id.
	ErrNotFound = fmt.Errorf("not found")

	// ErrConflict marks a state conflict, e.g. deleting a rule with
	// active alerts.
	ErrConflict = fmt.Errorf("conflict")

	// ErrInternal marks an unexpected failure, logged with full context
	// at the call site.
	ErrInternal = fmt.Errorf("internal error")
)

// SnmpError is a PDU-level SNMP error (one of the error_code values).
// Recorded per operation; it does not abort the poll cycle.
type SnmpError struct {
	Code string // e.g. "noSuchName", "genErr", "resourceUnavailable"
	Op   string // operation that failed, e.g. "get", "walk", "set"
}

func (e *SnmpError) Error() string {
	return fmt.Sprintf("snmp %s: %s", e.Op, e.Code)
}

// Is lets errors.Is(err, &SnmpError{}) match any SnmpError regardless of
// Code/Op, matching the pattern errors.As callers use to discriminate by
// type and then inspect fields.
func (e *SnmpError) Is(target error) bool {
	_, ok := target.(*SnmpError)
	return ok
}

// TransportFailed marks a notification adapter failure. Persisted on the
// notification row; it does not affect alert state.
type TransportFailed struct {
	TransportID string
	Reason      string
}

func (e *TransportFailed) Error() string {
	return fmt.Sprintf("transport %s failed: %s", e.TransportID, e.Reason)
}

func (e *TransportFailed) Is(target error) bool {
	_, ok := target.(*TransportFailed)
	return ok
}

// Validation wraps ErrValidationFailed with a field-level message,
// matching the validator's accumulate-all-errors style in
// internal/snmp/validator.go.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidationFailed}, args...)...)
}

// NotFound wraps ErrNotFound with the kind and id that was missing.
func NotFound(kind, id string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, kind, id)
}

// Conflict wraps ErrConflict with a human-readable reason.
func Conflict(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrConflict}, args...)...)
}

// Internal wraps ErrInternal, preserving the original cause so both
// errors.Is(err, ErrInternal) and errors.Is(err, cause) succeed.
func Internal(cause error) error {
	return fmt.Errorf("%w: %w", ErrInternal, cause)
}
