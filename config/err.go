package config

import (
	"github.com/ezrec/lmcview/translate"
)

var f = translate.From

// ErrDuration is an animation timing that is not a Go duration.
type ErrDuration struct {
	Field string
	Value string
	Err   error
}

func (err *ErrDuration) Error() string {
	return f("animation.%v: %q: %v", err.Field, err.Value, err.Err)
}

func (err *ErrDuration) Unwrap() error {
	return err.Err
}
