package recordstore

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrMergeConflict     = errors.New("parameter merge conflict")
	ErrDuplicateKey      = errors.New("key already exists")
	ErrUnsupportedDriver = errors.New("unsupported driver")
)

// ArgumentError reports a rejected input value. Param names the offending
// parameter the way the caller passed it.
type ArgumentError struct {
	Param  string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidArgument, e.Param, e.Reason)
}

func (e *ArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

func invalidArgument(param, format string, args ...any) error {
	return &ArgumentError{Param: param, Reason: fmt.Sprintf(format, args...)}
}

// MergeConflictError is returned when a filter parameter would shadow a
// system parameter or another parameter of the same name.
type MergeConflictError struct {
	Name string
}

func (e *MergeConflictError) Error() string {
	return fmt.Sprintf("%s: parameter %q is already bound", ErrMergeConflict, e.Name)
}

func (e *MergeConflictError) Unwrap() error {
	return ErrMergeConflict
}

// IsDuplicateKey reports whether err came from inserting an id that already exists.
func IsDuplicateKey(err error) bool {
	return errors.Is(err, ErrDuplicateKey)
}

// IsInvalidArgument reports whether err is an input validation failure.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}
