package manual

import (
	"errors"

	"github.com/ezrec/drf/translate"
)

var f = translate.From

var (
	// Name resolution errors
	ErrNotFound = errors.New(f("not found"))

	// Manual construction errors
	ErrDuplicate    = errors.New(f("duplicate name"))
	ErrFieldOverlap = errors.New(f("field bits overlap"))
	ErrFieldRange   = errors.New(f("field bits out of range"))
	ErrAccess       = errors.New(f("access mode invalid"))
	ErrFormula      = errors.New(f("array formula invalid"))
	ErrOrphan       = errors.New(f("definition has no parent"))

	// Register view errors
	ErrArity      = errors.New(f("index count does not match dimensions"))
	ErrIndexRange = errors.New(f("index out of range"))
)

// ErrRegisterMissing is a register name unknown to the manual.
type ErrRegisterMissing string

func (err ErrRegisterMissing) Error() string {
	return f("register %v missing", string(err))
}

func (err ErrRegisterMissing) Is(target error) bool {
	return target == ErrNotFound
}

// ErrFieldMissing is a field name unknown to its register.
type ErrFieldMissing string

func (err ErrFieldMissing) Error() string {
	return f("field %v missing", string(err))
}

func (err ErrFieldMissing) Is(target error) bool {
	return target == ErrNotFound
}

// ErrValueMissing is a value name unknown to its field.
type ErrValueMissing string

func (err ErrValueMissing) Error() string {
	return f("value %v missing", string(err))
}

func (err ErrValueMissing) Is(target error) bool {
	return target == ErrNotFound
}

// ErrAddressMissing is an address no register covers.
type ErrAddressMissing uint32

func (err ErrAddressMissing) Error() string {
	return f("no register at 0x%08x", uint32(err))
}

func (err ErrAddressMissing) Is(target error) bool {
	return target == ErrNotFound
}

// ErrParseIndex is a malformed parenthesized index expression.
type ErrParseIndex string

func (err ErrParseIndex) Error() string {
	return f("'%v' is not a valid index expression", string(err))
}

func (err ErrParseIndex) Is(target error) bool {
	return target == ErrNotFound
}

// ErrSyntax locates a manual source line that could not be parsed.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err *ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err *ErrSyntax) Unwrap() error {
	return err.Err
}

// ErrDefinition names the manual definition that failed validation.
type ErrDefinition struct {
	Name string
	Err  error
}

func (err *ErrDefinition) Error() string {
	return f("%v: %v", err.Name, err.Err)
}

func (err *ErrDefinition) Unwrap() error {
	return err.Err
}
