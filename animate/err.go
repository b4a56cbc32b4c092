package animate

import (
	"github.com/ezrec/lmcview/state"
	"github.com/ezrec/lmcview/translate"
)

var f = translate.From

// ErrAnchorMissing is a location with no rendered anchor.
type ErrAnchorMissing state.Location

func (err ErrAnchorMissing) Error() string {
	return f("%v has no anchor", state.Location(err))
}
