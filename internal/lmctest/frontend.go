package lmctest

import (
	"context"
	"errors"
	"image"
	"sync"

	"github.com/ezrec/lmcview/animate"
	"github.com/ezrec/lmcview/state"
)

// ErrNoInput is a prompt with no queued answer left.
var ErrNoInput = errors.New(f("no input queued"))

// Frontend records alerts and answers prompts from a queue.
type Frontend struct {
	mu      sync.Mutex
	Inputs  []string // Answers still to give, in order.
	Answers []bool   // Confirmations still to give, in order.
	Alerts  []string
	Prompts []string // Prompt and confirmation messages.
}

func (fe *Frontend) Alert(ctx context.Context, msg string) error {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	fe.Alerts = append(fe.Alerts, msg)
	return nil
}

func (fe *Frontend) Prompt(ctx context.Context, msg string) (text string, err error) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	fe.Prompts = append(fe.Prompts, msg)
	if len(fe.Inputs) == 0 {
		err = ErrNoInput
		return
	}
	text = fe.Inputs[0]
	fe.Inputs = fe.Inputs[1:]
	return
}

func (fe *Frontend) Confirm(ctx context.Context, msg string) (ok bool, err error) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	fe.Prompts = append(fe.Prompts, msg)
	if len(fe.Answers) == 0 {
		err = ErrNoInput
		return
	}
	ok = fe.Answers[0]
	fe.Answers = fe.Answers[1:]
	return
}

// Locate lays registers out in a column and memory in a 10x10 grid to its
// right.
func Locate(loc state.Location) animate.Anchor {
	switch loc.Kind {
	case state.LOC_REGISTER:
		return animate.Point(image.Pt(0, int(loc.Register)*2))
	case state.LOC_MEMORY:
		return animate.Point(image.Pt(10+(loc.Address%10)*4, loc.Address/10))
	}
	return nil
}
