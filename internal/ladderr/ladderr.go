// Package ladderr defines the typed failure taxonomy shared by every core
// component. Handlers map Kind to a transport-specific response; components
// never invent ad-hoc error strings for conditions a caller must branch on.
package ladderr

import "fmt"

// Kind is a category of failure, not a specific message. Two errors of the
// same Kind may carry different messages but must be handled identically by
// callers that only care about the category (e.g. "return 404").
type Kind string

const (
	InvalidInput         Kind = "invalid_input"
	InvalidTransition    Kind = "invalid_transition"
	AuthorizationFailure Kind = "authorization_failure"
	NotFound             Kind = "not_found"
	PersistenceFailure   Kind = "persistence_failure"
	IntegrityViolation   Kind = "integrity_violation"
)

// Error is a typed failure. Use errors.Is(err, ladderr.ErrInvalidInput) (via
// (*Error).Is) or errors.As to recover the Kind at a boundary.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ladderr.New(kind, "")) match on Kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Sentinel values for errors.Is comparisons, e.g. errors.Is(err, ladderr.ErrNotFound).
var (
	ErrInvalidInput        = New(InvalidInput, "")
	ErrInvalidTransition    = New(InvalidTransition, "")
	ErrAuthorizationFailure = New(AuthorizationFailure, "")
	ErrNotFound             = New(NotFound, "")
	ErrPersistenceFailure   = New(PersistenceFailure, "")
	ErrIntegrityViolation   = New(IntegrityViolation, "")
)
