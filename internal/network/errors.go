package network

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure raised by the pipeline wraps exactly one of
// these so callers can classify it with errors.Is and print it with a
// distinguishing prefix.
var (
	ErrParse      = errors.New("parse error")
	ErrValidation = errors.New("validation error")
	ErrIO         = errors.New("io error")
	ErrSolver     = errors.New("solver error")
)

var kinds = []error{ErrParse, ErrValidation, ErrIO, ErrSolver}

// Errorf formats an error of the given kind. The kind is wrapped so the
// message reads "<kind>: <detail>".
func Errorf(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// Kind returns the kind wrapped by err, or nil when err is not one of ours.
func Kind(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
