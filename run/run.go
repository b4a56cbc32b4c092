// Package run drives the engine one cycle at a time, or for whole runs
// that continue across input requests until the program halts.
package run

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/ezrec/lmcview/state"
	"github.com/ezrec/lmcview/transfer"
)

// Engine executes cycles from a snapshot.
type Engine interface {
	Step(ctx context.Context, snap state.Snapshot) (transfer.Cycle, error)
	Run(ctx context.Context, snap state.Snapshot) ([]transfer.Cycle, error)
}

// Processor applies one cycle to the displayed state.
type Processor interface {
	ApplyCycle(ctx context.Context, c transfer.Cycle) error
}

// Alerter shows a blocking notification.
type Alerter interface {
	Alert(ctx context.Context, msg string) error
}

// Controller runs programs held in a mirror.
type Controller struct {
	Mirror    *state.Mirror
	Engine    Engine
	Processor Processor
	Alerter   Alerter
	Logger    *slog.Logger // Nil means slog.Default().

	busy atomic.Bool
}

func (c *Controller) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// Busy reports whether a step or run is in progress.
func (c *Controller) Busy() bool {
	return c.busy.Load()
}

func (c *Controller) acquire() (err error) {
	if !c.busy.CompareAndSwap(false, true) {
		err = ErrBusy
	}
	return
}

func (c *Controller) release() {
	c.busy.Store(false)
}

// failed reports an engine failure to the user.
func (c *Controller) failed(ctx context.Context, err error) error {
	c.logger().ErrorContext(ctx, "engine", "error", err)
	_ = c.Alerter.Alert(ctx, f("Bad response from server: %v", err))
	return err
}

// Step executes and applies a single cycle.
func (c *Controller) Step(ctx context.Context) (err error) {
	err = c.acquire()
	if err != nil {
		return
	}
	defer c.release()

	cycle, err := c.Engine.Step(ctx, c.Mirror.ReadAll())
	if err != nil {
		return c.failed(ctx, err)
	}

	return c.Processor.ApplyCycle(ctx, cycle)
}

// Run executes until the program halts or the engine ends a run without
// waiting for input. A run that ends on INP is continued from the updated
// mirror once the input has been applied.
func (c *Controller) Run(ctx context.Context) (err error) {
	err = c.acquire()
	if err != nil {
		return
	}
	defer c.release()

	for runs := 1; ; runs++ {
		var cycles []transfer.Cycle
		cycles, err = c.Engine.Run(ctx, c.Mirror.ReadAll())
		if err == nil && len(cycles) == 0 {
			err = ErrEmptyRun
		}
		if err != nil {
			return c.failed(ctx, err)
		}
		c.logger().DebugContext(ctx, "run", "n", runs, "cycles", len(cycles))

		for _, cycle := range cycles {
			err = c.Processor.ApplyCycle(ctx, cycle)
			if err != nil {
				return
			}
		}

		last := cycles[len(cycles)-1]
		if last.ReachedHLT || !last.ReachedINP {
			return
		}
	}
}
