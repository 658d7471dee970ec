package migrations

import (
	"errors"
	"fmt"
)

var (
	// ErrResponseInaccessible is returned by Exchange.Response while a
	// migration runs upwards, when there is no response yet.
	ErrResponseInaccessible = errors.New("cannot access response when migrating upwards")
	// ErrMissingResponse is returned when running downwards without a
	// response to migrate.
	ErrMissingResponse = errors.New("no response to migrate downwards")
	// ErrDuplicateVersion is returned when a version number is registered twice.
	ErrDuplicateVersion = errors.New("duplicate version number")
	// ErrInvalidVersion is returned when a version token cannot be parsed.
	ErrInvalidVersion = errors.New("invalid version number")
	// ErrRegistryFrozen is returned when adding a version to a frozen registry.
	ErrRegistryFrozen = errors.New("registry is frozen")
	// ErrEmptyRegistry is returned when resolving a version against a
	// registry without versions.
	ErrEmptyRegistry = errors.New("registry has no versions")
)

// Direction is the way a migration is being run.
type Direction string

const (
	// Upwards migrates an old-shaped request to the current shape.
	Upwards Direction = "up"
	// Downwards migrates a current-shaped response to an old shape.
	Downwards Direction = "down"
)

// TransformError wraps an error returned by a migration transform with the
// migration that failed and the direction it was running in.
type TransformError struct {
	Migration string
	Direction Direction
	Err       error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("migration %s failed running %s: %v", e.Migration, e.Direction, e.Err)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}
