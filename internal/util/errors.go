package util

import "errors"

// Sentinel errors for common failure modes
var (
	// ErrUnsupported indicates a file format or operation is not supported
	ErrUnsupported = errors.New("unsupported")

	// ErrConflict indicates a destination already exists
	ErrConflict = errors.New("destination conflict")

	// ErrNotFound indicates a required resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidConfig indicates invalid configuration
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrMissingReleaseID indicates no release id was given on the command line or in the id file
	ErrMissingReleaseID = errors.New("missing release id")
)

// Temporary is implemented by errors that describe a transient condition,
// such as a rate-limited or unavailable remote service.
type Temporary interface {
	Temporary() bool
}
