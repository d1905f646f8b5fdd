package progress

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by every NotFoundError.
var ErrNotFound = errors.New("not found")

// NotFoundError reports a missing course, block, user or activity instance.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// Is lets errors.Is(err, ErrNotFound) match.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFound builds a NotFoundError.
func NewNotFound(entity string, id uint) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConfigurationError signals a registry or query definition that cannot be
// evaluated. It is fatal to the evaluation that hit it.
type ConfigurationError struct {
	Query       string
	Placeholder string
	Reason      string
}

func (e *ConfigurationError) Error() string {
	switch {
	case e.Placeholder != "":
		return fmt.Sprintf("progress configuration: unknown placeholder @%s in query %q", e.Placeholder, e.Query)
	case e.Query != "":
		return fmt.Sprintf("progress configuration: %s (query %q)", e.Reason, e.Query)
	default:
		return "progress configuration: " + e.Reason
	}
}

// IsConfigurationError reports whether err wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}
