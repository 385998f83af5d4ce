package assessment

import (
	"errors"
	"fmt"
)

var (
	// ErrModelUnavailable means the model artifact is missing, corrupt or
	// unreachable. It is not retried; an operator has to restore the artifact.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrPrediction means the artifact rejected a well-formed record, usually
	// a schema/version mismatch between the record and the artifact.
	ErrPrediction = errors.New("prediction failed")

	// ErrInvalidProbability means the classifier produced a value outside [0,1].
	ErrInvalidProbability = errors.New("invalid probability")

	// ErrInvalidRecord wraps every Input Record range or enum violation.
	ErrInvalidRecord = errors.New("invalid input record")
)

// ValidationError represents one rejected Input Record field.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidRecord }

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}
