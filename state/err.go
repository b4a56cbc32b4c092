package state

import (
	"github.com/ezrec/lmcview/translate"
)

var f = translate.From

// ErrRegisterUnknown is a register code outside the fixed register set.
type ErrRegisterUnknown string

func (err ErrRegisterUnknown) Error() string {
	return f("register %q unknown", string(err))
}

// ErrAddress is a memory address that is not in [0, 99].
type ErrAddress string

func (err ErrAddress) Error() string {
	return f("memory address %q invalid", string(err))
}

// ErrWidth is a value that violates the fixed format of its location.
// The mirror panics with it: the engine and client disagree on the protocol.
type ErrWidth struct {
	Location Location
	Value    string
}

func (err ErrWidth) Error() string {
	return f("%v: value %q must be %d digits", err.Location, err.Value, err.Location.Width())
}

// ErrCarry is a carry flag value other than "0" or "1".
type ErrCarry string

func (err ErrCarry) Error() string {
	return f("CARRY: value %q must be 0 or 1", string(err))
}

// ErrLocation is a location that names neither a cell nor a register.
type ErrLocation Location

func (err ErrLocation) Error() string {
	return f("location %v invalid", Location(err))
}
