package engine

import (
	"errors"
	"fmt"

	"github.com/inamate/heraldry/internal/document"
)

var (
	// ErrNotFound reports a missing layer or container.
	ErrNotFound = document.ErrNotFound
	// ErrInvalid reports an argument rejected before any mutation.
	ErrInvalid = document.ErrInvalid
	// ErrNoTransform reports an apply call without a matching begin.
	ErrNoTransform = errors.New("no transform in progress")
)

func layerNotFound(uuid string) error {
	return fmt.Errorf("layer %w: %s", ErrNotFound, uuid)
}

func containerNotFound(id string) error {
	return fmt.Errorf("container %w: %s", ErrNotFound, id)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}
