// Package cycle applies one engine cycle to the mirror: each transfer is
// animated and then written, after which output, halt, and input requests
// are dispatched to the front-end.
package cycle

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"github.com/ezrec/lmcview/animate"
	"github.com/ezrec/lmcview/state"
	"github.com/ezrec/lmcview/transfer"
)

// Animator plays one transfer and returns once its effect has completed.
type Animator interface {
	Animate(ctx context.Context, t transfer.Transfer, locate animate.Locator) error
}

// Frontend shows notifications and asks the user for input. Both calls
// block until the user has answered.
type Frontend interface {
	Alert(ctx context.Context, msg string) error
	Prompt(ctx context.Context, msg string) (text string, err error)
}

// InputEngine completes an INP cycle.
type InputEngine interface {
	AfterInput(ctx context.Context, snap state.Snapshot, input string) (transfer.Transfer, error)
}

var inputPattern = regexp.MustCompile(`^\d{1,3}$`)

// Processor applies cycles to a mirror.
type Processor struct {
	Mirror   *state.Mirror
	Animator Animator       // Nil applies transfers without effects.
	Locate   animate.Locator
	Frontend Frontend
	Engine   InputEngine
	Logger   *slog.Logger // Nil means slog.Default().
}

func (p *Processor) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

// ApplyCycle animates and applies every transfer of c in order, then
// handles its output, HLT, and INP flags.
func (p *Processor) ApplyCycle(ctx context.Context, c transfer.Cycle) (err error) {
	for _, t := range c.Transfers {
		err = p.Apply(ctx, t)
		if err != nil {
			return
		}
	}

	if c.Output != "" {
		err = p.Frontend.Alert(ctx, f("Output: %v", c.Output))
		if err != nil {
			return
		}
	}

	switch {
	case c.ReachedHLT:
		err = p.Frontend.Alert(ctx, f("Program reached HLT. Execution completed."))
	case c.ReachedINP:
		err = p.input(ctx)
	}

	return
}

// Apply animates t, then writes its value at the destination.
// A transfer without a destination is skipped.
func (p *Processor) Apply(ctx context.Context, t transfer.Transfer) (err error) {
	to, err := t.Destination()
	if err != nil {
		p.logger().WarnContext(ctx, "transfer skipped", "transfer", t, "error", err)
		return nil
	}

	_, serr := t.Source()
	switch {
	case serr != nil:
		var missing transfer.ErrEndpointMissing
		if !errors.As(serr, &missing) {
			p.logger().WarnContext(ctx, "transfer not animated", "transfer", t, "error", serr)
		}
	case p.Animator != nil:
		err = p.Animator.Animate(ctx, t, p.Locate)
		var anchor animate.ErrAnchorMissing
		if errors.As(err, &anchor) {
			p.logger().WarnContext(ctx, "transfer not animated", "transfer", t, "error", err)
			err = nil
		}
		if err != nil {
			return
		}
	}

	p.Mirror.Write(to, t.Value)
	p.logger().DebugContext(ctx, "transfer applied", "to", to, "value", t.Value)
	return
}

// input prompts until the user enters 0-999, then writes the engine's
// after-input transfer to ACC.
func (p *Processor) input(ctx context.Context) (err error) {
	msg := f("INP reached. Please enter your input (a number 0-999) here:")

	var text string
	for {
		text, err = p.Frontend.Prompt(ctx, msg)
		if err != nil {
			return
		}
		if inputPattern.MatchString(text) {
			break
		}
		msg = f("Invalid input. Please enter a number 0-999:")
	}

	input := strings.Repeat("0", state.MEMORY_WIDTH-len(text)) + text

	t, err := p.Engine.AfterInput(ctx, p.Mirror.ReadAll(), input)
	if err != nil {
		p.logger().ErrorContext(ctx, "after-input", "error", err)
		_ = p.Frontend.Alert(ctx, f("Bad response from server: %v", err))
		return
	}

	to, derr := t.Destination()
	acc := state.AtRegister(state.REG_ACC)
	if derr != nil || to != acc {
		panic(&ErrContract{Transfer: t, Err: ErrNotAccumulator})
	}

	p.Mirror.Write(acc, t.Value)
	p.logger().DebugContext(ctx, "input applied", "value", t.Value)
	return
}
