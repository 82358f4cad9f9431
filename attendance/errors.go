package attendance

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidRequest is matched by every client-side validation failure
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNotFound is returned when no job exists for an ID
	ErrNotFound = errors.New("job not found")
	// ErrAlreadyExists is returned when storing a job whose ID is taken
	ErrAlreadyExists = errors.New("job already exists")
	// ErrInvalidTransition is returned when a terminal job is asked to change state again
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError carries a message that is safe to return to the client
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is lets errors.Is(err, ErrInvalidRequest) match any ValidationError
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidRequest
}

func missingFieldsError(fields []string) *ValidationError {
	return &ValidationError{Message: "Missing required fields: " + strings.Join(fields, ", ")}
}

func invalidActionError() *ValidationError {
	return &ValidationError{Message: "Action must be either 'login' or 'logout'"}
}
