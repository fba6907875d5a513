package exclusion

import (
	"errors"

	"github.com/ezrec/drf/translate"
)

var f = translate.From

var (
	// Directive errors
	ErrDirective = errors.New(f("directive malformed"))
	ErrNoMatch   = errors.New(f("no array register matches"))

	// Per-register errors
	ErrRange             = errors.New(f("index beyond array bound"))
	ErrDimensionMismatch = errors.New(f("exclusion dimensions differ"))
)

// ErrVerb is an unknown directive verb.
type ErrVerb string

func (err ErrVerb) Error() string {
	return f("directive '%v' unknown", string(err))
}

func (err ErrVerb) Is(target error) bool {
	return target == ErrDirective
}

// ErrRegister names the register a directive failed to apply to.
type ErrRegister struct {
	Register string
	Err      error
}

func (err *ErrRegister) Error() string {
	return f("%v: %v", err.Register, err.Err)
}

func (err *ErrRegister) Unwrap() error {
	return err.Err
}

// isSoft reports if a directive may be dropped without aborting.
func isSoft(err error) bool {
	return errors.Is(err, ErrRange) || errors.Is(err, ErrNoMatch)
}

// IsFatal reports if a Load or MapArrayReg error must abort, rather than
// only report dropped directives.
func IsFatal(err error) bool {
	return err != nil && !isSoft(err)
}
