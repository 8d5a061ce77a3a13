package pipeline

import (
	"errors"
	"fmt"
)

// Process exit codes, one per failure kind so callers can tell stages apart.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitFetch       = 10
	ExitSchema      = 11
	ExitGeometry    = 12
	ExitCrsMismatch = 13
	ExitPublish     = 14
)

// FetchError - a source feed could not be retrieved or read
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %s", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// SchemaError - a source feed is missing an expected column or carries an
// unparseable value in one
type SchemaError struct {
	Source string
	Err    error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema %s: %s", e.Source, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// GeometryError - malformed geometry encountered during the spatial join,
// naming the offending record
type GeometryError struct {
	Subject string
	Err     error
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("geometry %s: %s", e.Subject, e.Err)
}

func (e *GeometryError) Unwrap() error {
	return e.Err
}

// CrsMismatchError - the two datasets of the spatial join disagree on
// coordinate reference system
type CrsMismatchError struct {
	Left  string
	Right string
}

func (e *CrsMismatchError) Error() string {
	return fmt.Sprintf("crs mismatch: %s vs %s", e.Left, e.Right)
}

// PublishError - authentication, validation or network failure against the
// portal, carrying the underlying cause
type PublishError struct {
	Err error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish: %s", e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

// ExitCode - map a pipeline error to its process exit status
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var fetchErr *FetchError
	var schemaErr *SchemaError
	var geomErr *GeometryError
	var crsErr *CrsMismatchError
	var publishErr *PublishError

	switch {
	case errors.As(err, &fetchErr):
		return ExitFetch
	case errors.As(err, &schemaErr):
		return ExitSchema
	case errors.As(err, &geomErr):
		return ExitGeometry
	case errors.As(err, &crsErr):
		return ExitCrsMismatch
	case errors.As(err, &publishErr):
		return ExitPublish
	}

	return ExitFailure
}
