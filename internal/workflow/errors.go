package workflow

import (
	"errors"
	"fmt"
)

// ErrorCode classifies workflow failures so callers can decide between
// retrying, correcting input, or giving up.
type ErrorCode string

const (
	// CodeInvalidTransition means the target phase is not reachable
	// from the request's current phase.
	CodeInvalidTransition ErrorCode = "invalid_transition"
	// CodeGateNotSatisfied means an advance was attempted past an
	// approval gate without the required approval recorded.
	CodeGateNotSatisfied ErrorCode = "approval_gate_not_satisfied"
	// CodeDuplicateApprover means the same actor attempted both steps
	// of a dual approval.
	CodeDuplicateApprover ErrorCode = "duplicate_approver"
	// CodeReconciliationMatch means a fulfilled item could not be
	// matched to a priced supplier quotation line.
	CodeReconciliationMatch ErrorCode = "reconciliation_match_error"
	// CodeConcurrentModification means the request changed between
	// read and commit. The only retryable class.
	CodeConcurrentModification ErrorCode = "concurrent_modification"
)

// Error is a workflow failure tagged with the request it concerns and
// the entity or step implicated.
type Error struct {
	Code      ErrorCode
	RequestID string
	Detail    string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.RequestID == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Detail)
	}
	return fmt.Sprintf("%s: request %s: %s", e.Code, e.RequestID, e.Detail)
}

// Retryable reports whether the caller may retry the operation as-is.
func (e *Error) Retryable() bool {
	return e.Code == CodeConcurrentModification
}

// NewError builds a workflow error.
func NewError(code ErrorCode, requestID, format string, args ...interface{}) *Error {
	return &Error{
		Code:      code,
		RequestID: requestID,
		Detail:    fmt.Sprintf(format, args...),
	}
}

// CodeOf extracts the workflow error code from err, if any.
func CodeOf(err error) (ErrorCode, bool) {
	var we *Error
	if errors.As(err, &we) {
		return we.Code, true
	}
	return "", false
}

// IsCode reports whether err carries the given workflow error code.
func IsCode(err error, code ErrorCode) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}
