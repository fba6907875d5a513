package access

import (
	"errors"

	"github.com/ezrec/drf/translate"
)

var f = translate.From

var (
	// Device errors
	ErrBadRead = errors.New(f("device returned bad read"))

	// Operation errors
	ErrValueRange    = errors.New(f("value does not fit field"))
	ErrFieldRepeated = errors.New(f("field given more than once"))
	ErrPollTimeout   = errors.New(f("poll timed out"))
	ErrCheck         = errors.New(f("check failed"))
)

// ErrRead is a bad read from a device address.
type ErrRead struct {
	Address uint32
	Value   uint32
}

func (err *ErrRead) Error() string {
	return f("0x%08x: read 0x%08x: %v", err.Address, err.Value, ErrBadRead)
}

func (err *ErrRead) Is(other error) bool {
	return other == ErrBadRead
}

// ErrName is a failed operation on a named register, field or value.
type ErrName struct {
	Name string
	Err  error
}

func (err *ErrName) Error() string {
	return f("%v: %v", err.Name, err.Err)
}

func (err *ErrName) Unwrap() error {
	return err.Err
}
