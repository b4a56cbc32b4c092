package tui

import (
	"github.com/ezrec/lmcview/translate"
)

var f = translate.From
