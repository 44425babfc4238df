package errors

import "errors"

// IsNotFound checks if an error indicates a missing project or artifact.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidTransition checks if an error is a status precondition violation.
func IsInvalidTransition(err error) bool {
	return errors.Is(err, ErrInvalidTransition)
}

// IsDuplicateStage checks if an error is a duplicate stage registration.
func IsDuplicateStage(err error) bool {
	return errors.Is(err, ErrDuplicateStage)
}

// IsUnknownStage checks if an error names an unregistered stage.
func IsUnknownStage(err error) bool {
	return errors.Is(err, ErrUnknownStage)
}

// IsValidation checks if an error is a caller-input problem.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsInfrastructure checks if an error is a hard infrastructure fault.
func IsInfrastructure(err error) bool {
	var i *InfraError
	return errors.As(err, &i)
}

// ValidationMessages extracts the messages from a ValidationError,
// or nil if err is not one.
func ValidationMessages(err error) []string {
	var v *ValidationError
	if errors.As(err, &v) {
		return v.Messages
	}
	return nil
}
