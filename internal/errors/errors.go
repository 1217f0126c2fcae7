package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/taskflow/internal/logger"
)

// Error kinds. Use errors.Is against these to classify a returned error.
var (
	ErrValidation        = stderrors.New("validation failed")
	ErrNotFound          = stderrors.New("not found")
	ErrSchedulingFailure = stderrors.New("scheduling failure")
)

// ValidationError reports a rejected input field. It is surfaced to
// callers verbatim and never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Validation builds a ValidationError for field.
func Validation(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an unknown resource id.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// SchedulingFailure wraps a persistence failure behind a generic message.
// The cause stays reachable through Unwrap for logging.
type SchedulingFailure struct {
	Op  string
	Err error
}

func (e *SchedulingFailure) Error() string {
	return fmt.Sprintf("failed to %s", e.Op)
}

func (e *SchedulingFailure) Unwrap() error {
	return e.Err
}

func (e *SchedulingFailure) Is(target error) bool {
	return target == ErrSchedulingFailure
}

func Failure(op string, err error) error {
	return &SchedulingFailure{Op: op, Err: err}
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	var failure *SchedulingFailure
	if stderrors.As(err, &failure) && failure.Err != nil {
		return fmt.Sprintf("Error: %v (%v)", err, failure.Err)
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
