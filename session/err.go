package session

import (
	"errors"

	"github.com/ezrec/lmcview/translate"
)

var f = translate.From

var (
	ErrNoCode    = errors.New(f("URL does not carry a program"))
	ErrCancelled = errors.New(f("cancelled"))
)
