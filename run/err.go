package run

import (
	"errors"

	"github.com/ezrec/lmcview/translate"
)

var f = translate.From

var (
	ErrBusy     = errors.New(f("Execution already in progress."))
	ErrEmptyRun = errors.New(f("run returned no cycles"))
)
