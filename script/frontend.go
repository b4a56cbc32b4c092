package script

import (
	"context"
	"sync"

	"github.com/ezrec/lmcview/console"
)

// Frontend collects notifications and answers prompts from queued input.
// With a Console set, notifications are echoed to it and an empty queue
// falls back to asking on it.
type Frontend struct {
	Console *console.Console

	mu     sync.Mutex
	inputs []string
	alerts []string
}

// Queue adds answers for later prompts.
func (fe *Frontend) Queue(inputs ...string) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	fe.inputs = append(fe.inputs, inputs...)
}

// Alerts are every notification shown so far.
func (fe *Frontend) Alerts() []string {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return append([]string(nil), fe.alerts...)
}

func (fe *Frontend) Alert(ctx context.Context, msg string) (err error) {
	fe.mu.Lock()
	fe.alerts = append(fe.alerts, msg)
	fe.mu.Unlock()

	if fe.Console != nil {
		err = fe.Console.Alert(ctx, msg)
	}
	return
}

func (fe *Frontend) Prompt(ctx context.Context, msg string) (text string, err error) {
	fe.mu.Lock()
	if len(fe.inputs) > 0 {
		text = fe.inputs[0]
		fe.inputs = fe.inputs[1:]
		fe.mu.Unlock()
		if fe.Console != nil {
			err = fe.Console.Alert(ctx, msg+" "+text)
		}
		return
	}
	fe.mu.Unlock()

	if fe.Console == nil {
		err = ErrNoInput
		return
	}
	return fe.Console.Prompt(ctx, msg)
}

// Confirm always agrees: a script has asked for the action.
func (fe *Frontend) Confirm(ctx context.Context, msg string) (ok bool, err error) {
	ok = true
	return
}
