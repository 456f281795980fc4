package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	// ErrCommandFailed indicates a shelled-out command exited with a nonzero status
	ErrCommandFailed = errors.New("command failed")

	// ErrSourceNotFound indicates the source directory is missing from the clone
	ErrSourceNotFound = errors.New("source directory not found")
)

// ErrorKind distinguishes the recognized build failures
type ErrorKind int

const (
	// KindCommandExecution is raised when a command or clone fails
	KindCommandExecution ErrorKind = iota + 1
	// KindSourceNotFound is raised when the located path is absent or not a directory
	KindSourceNotFound
)

// String returns the kind name
func (k ErrorKind) String() string {
	switch k {
	case KindCommandExecution:
		return "CommandExecutionError"
	case KindSourceNotFound:
		return "SourceNotFoundError"
	default:
		return "UnknownError"
	}
}

// BuildError is the single error category surfaced by the build pipeline.
// It is caught once at the top level, logged and swallowed.
type BuildError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *BuildError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel that corresponds to the error kind
func (e *BuildError) Is(target error) bool {
	switch target {
	case ErrCommandFailed:
		return e.Kind == KindCommandExecution
	case ErrSourceNotFound:
		return e.Kind == KindSourceNotFound
	}
	return false
}

// NewCommandExecutionError creates a BuildError for a failed command
func NewCommandExecutionError(command string, err error) *BuildError {
	return &BuildError{
		Kind:    KindCommandExecution,
		Message: fmt.Sprintf("command execution failed: %s", command),
		Err:     err,
	}
}

// NewSourceNotFoundError creates a BuildError for a missing source directory
func NewSourceNotFoundError(path string) *BuildError {
	return &BuildError{
		Kind:    KindSourceNotFound,
		Message: fmt.Sprintf("source directory not found: %s", path),
	}
}

// IsBuildError reports whether err carries a BuildError
func IsBuildError(err error) bool {
	var buildErr *BuildError
	return errors.As(err, &buildErr)
}

// IsCommandExecution reports whether err is a command execution failure
func IsCommandExecution(err error) bool {
	return errors.Is(err, ErrCommandFailed)
}

// IsSourceNotFound reports whether err is a missing source failure
func IsSourceNotFound(err error) bool {
	return errors.Is(err, ErrSourceNotFound)
}
