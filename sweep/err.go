package sweep

import (
	"errors"

	"github.com/ezrec/drf/translate"
)

var f = translate.From

var (
	// Sweep errors
	ErrNoRegisters = errors.New(f("no registers match"))
)

// ErrPattern is a register pattern that matched nothing.
type ErrPattern string

func (err ErrPattern) Error() string {
	return f("%v: %v", string(err), ErrNoRegisters)
}

func (err ErrPattern) Is(target error) bool {
	return target == ErrNoRegisters
}
