package device

import (
	"errors"

	"github.com/ezrec/drf/translate"
)

var f = translate.From

var (
	// Dump errors
	ErrDumpLine = errors.New(f("dump line invalid"))
)

// ErrSyntax is a dump syntax error at a line.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err *ErrSyntax) Error() string {
	return f("line %d: %v: %v", err.LineNo, err.Line, err.Err)
}

func (err *ErrSyntax) Unwrap() error {
	return err.Err
}

