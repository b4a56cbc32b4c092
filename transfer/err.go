package transfer

import (
	"github.com/ezrec/lmcview/translate"
)

var f = translate.From

// ErrEndpointMissing is a transfer with no start (or end) location.
type ErrEndpointMissing string

func (err ErrEndpointMissing) Error() string {
	return f("transfer has no %v location", string(err))
}

// ErrEndpointAmbiguous is a transfer naming both a memory cell and a
// register for the same end.
type ErrEndpointAmbiguous string

func (err ErrEndpointAmbiguous) Error() string {
	return f("transfer has both memory and register %v locations", string(err))
}
