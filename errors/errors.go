package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the pipeline error taxonomy.
var (
	// ErrNotFound indicates a referenced project or artifact does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition indicates a status precondition was violated,
	// e.g. approving a non-draft artifact or drafting over an approved one.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrDuplicateStage indicates a stage name was registered twice.
	ErrDuplicateStage = errors.New("stage already registered")

	// ErrUnknownStage indicates a stage name is not in the registry.
	ErrUnknownStage = errors.New("unknown stage")
)

// NotFoundError reports a missing project or artifact.
type NotFoundError struct {
	Project string
	Type    string // artifact type, empty when the project itself is missing
}

func (e *NotFoundError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("project %q not found", e.Project)
	}
	return fmt.Sprintf("artifact %q not found for project %q", e.Type, e.Project)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// TransitionError reports a rejected lifecycle transition.
// It is distinct from ValidationError: it indicates a protocol-sequencing
// mistake, not bad input content.
type TransitionError struct {
	Project string
	Type    string
	Op      string // "draft", "approve", "reject", "reopen"
	From    string // current status when the operation was attempted
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s artifact %q for project %q: current status is %s",
		e.Op, e.Type, e.Project, e.From)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// ValidationError carries caller-input problems. Across the facade boundary
// it is always surfaced as structured data in the result envelope, never as
// a hard failure.
type ValidationError struct {
	Messages []string
}

// NewValidation creates a ValidationError from one or more messages.
func NewValidation(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// InfraError wraps a failure in an external collaborator (store unreachable,
// model provider down). This is the only error class that propagates to
// callers as a hard failure. The pipeline performs no automatic retry.
type InfraError struct {
	Op  string // what was being attempted, e.g. "store put", "stage compute"
	Err error
}

func (e *InfraError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InfraError) Unwrap() error { return e.Err }

// Infra wraps err as an InfraError. Returns nil if err is nil.
func Infra(op string, err error) error {
	if err == nil {
		return nil
	}
	return &InfraError{Op: op, Err: err}
}
