package models

import "errors"

// ErrorKind groups domain failures so callers can map them without knowing every code.
type ErrorKind string

const (
	KindNotFound           ErrorKind = "not_found"
	KindInvalidInput       ErrorKind = "invalid_input"
	KindPreconditionFailed ErrorKind = "precondition_failed"
	KindInconsistent       ErrorKind = "computation_inconsistency"
	KindInternal           ErrorKind = "internal"
)

// Error is a domain failure identified by a stable code.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind ErrorKind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

var (
	ErrEmployeeNotFound = newError(KindNotFound, "employee_not_found", "employee not found")
	ErrShiftNotFound    = newError(KindNotFound, "shift_not_found", "shift not found")
	ErrShiftNotAssigned = newError(KindNotFound, "shift_not_assigned", "shift not assigned")
	ErrRecordNotFound   = newError(KindNotFound, "record_not_found", "attendance record not found")

	ErrInvalidTimeFormat = newError(KindInvalidInput, "invalid_time_format", "time must be in HH:mm format")
	ErrInvalidMonth      = newError(KindInvalidInput, "invalid_month", "month must be between 1 and 12")
	ErrInvalidLeaveKind  = newError(KindInvalidInput, "invalid_leave_kind", "leave kind must be paid or unpaid")
	ErrMissingField      = newError(KindInvalidInput, "missing_field", "required field missing")

	ErrNoCheckInFound     = newError(KindPreconditionFailed, "no_check_in_found", "no existing check-in found for today")
	ErrRecordOnLeave      = newError(KindPreconditionFailed, "record_on_leave", "leave is applied to this day; clear it first")
	ErrAlreadyProvisioned = newError(KindPreconditionFailed, "already_provisioned", "attendance record already provisioned for this day")
	ErrConcurrentUpdate   = newError(KindPreconditionFailed, "concurrent_update", "attendance record changed concurrently")

	ErrStaleSalaryRates = newError(KindInconsistent, "stale_salary_rates", "derived salary rates do not match monthly salary")

	// ErrSequenceConsumed is returned when a record sequence is ranged over twice.
	ErrSequenceConsumed = newError(KindInternal, "sequence_consumed", "record sequence already consumed")
)

// KindOf returns the kind of the first domain error in err's chain, or KindInternal.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// CodeOf returns the code of the first domain error in err's chain.
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return "internal_error"
}
