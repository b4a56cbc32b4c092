package cycle

import (
	"errors"

	"github.com/ezrec/lmcview/transfer"
	"github.com/ezrec/lmcview/translate"
)

var f = translate.From

var (
	ErrNotAccumulator = errors.New(f("after-input must write ACC"))
)

// ErrContract is an engine reply that breaks the client protocol.
// The processor panics with it.
type ErrContract struct {
	Transfer transfer.Transfer
	Err      error
}

func (err *ErrContract) Error() string {
	return f("engine protocol violated by %v: %v", err.Transfer, err.Err)
}

func (err *ErrContract) Unwrap() error {
	return err.Err
}
