package tui

import (
	"image"

	"github.com/gdamore/tcell/v2"

	"github.com/ezrec/lmcview/animate"
	"github.com/ezrec/lmcview/state"
)

// Screen layout, in cells.
const (
	REG_LABEL_X = 1
	REG_VALUE_X = 7
	REG_Y       = 2
	REG_STEP    = 2
	MEM_X       = 18
	MEM_Y       = 1
	CELL_WIDTH  = 5
	PANE_Y      = 14
	LISTING_X   = 44
)

// Anchor is the screen cell where a value starts.
type Anchor image.Point

func (a Anchor) Origin() image.Point {
	return image.Point(a)
}

// Locate places memory cells in a 10x10 grid right of the register column.
func Locate(loc state.Location) animate.Anchor {
	if !loc.Valid() {
		return nil
	}

	switch loc.Kind {
	case state.LOC_REGISTER:
		return Anchor{X: REG_VALUE_X, Y: REG_Y + int(loc.Register)*REG_STEP}
	case state.LOC_MEMORY:
		return Anchor{
			X: MEM_X + 3 + (loc.Address%10)*CELL_WIDTH,
			Y: MEM_Y + 1 + loc.Address/10,
		}
	}

	return nil
}

// drawText writes text from (x, y), clipped to the screen.
func drawText(screen tcell.Screen, x int, y int, style tcell.Style, text string) {
	w, h := screen.Size()
	if y < 0 || y >= h {
		return
	}
	for n, r := range []rune(text) {
		if x+n >= 0 && x+n < w {
			screen.SetContent(x+n, y, r, nil, style)
		}
	}
}
