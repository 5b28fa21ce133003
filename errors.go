package dune

import (
	"github.com/dropbox/godropbox/errors"
)

// Engine operations report failures through this fixed taxonomy.
// Callers that only care about success/failure can treat any non-nil
// error uniformly; tests can compare against the sentinels.
var (
	// ErrValidation covers malformed type specs, name grammar
	// violations, and arity mismatches, all rejected before any
	// mutation.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound covers unknown types, missing data files, and
	// absent keys.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when the primary key is already
	// present anywhere in the type's data file, live or tombstoned.
	ErrDuplicateKey = errors.New("duplicate primary key")

	// ErrCapacity is returned when every page is full and the file
	// has reached its maximum page count.
	ErrCapacity = errors.New("capacity exhausted")

	// ErrEncoding is returned when a value does not fit its declared
	// field width or range.
	ErrEncoding = errors.New("value does not fit field")

	// ErrTruncatedData is returned when on-disk bytes are shorter
	// than the fixed layout requires.
	ErrTruncatedData = errors.New("truncated data")
)
