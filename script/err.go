package script

import (
	"errors"

	"github.com/ezrec/lmcview/translate"
)

var f = translate.From

var (
	ErrNoInput = errors.New(f("INP reached with no input queued"))
)

// ErrValue is a builtin argument of the wrong kind.
type ErrValue struct {
	Builtin string
	Value   string
}

func (err *ErrValue) Error() string {
	return f("%v: %v is not a valid argument", err.Builtin, err.Value)
}
