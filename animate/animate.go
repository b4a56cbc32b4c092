// Package animate replays a single transfer as a visual effect on a
// Surface and suspends until the effect completes.
//
// The sequencer carries no state between calls. Ordering of successive
// transfers is the caller's job: it must wait for Animate to return before
// animating the next transfer.
package animate

import (
	"context"
	"image"
	"log/slog"
	"math"
	"time"

	"github.com/ezrec/lmcview/state"
	"github.com/ezrec/lmcview/transfer"
)

const (
	DEFAULT_SPEED   = 24.0                   // Cells per second.
	DEFAULT_MINIMUM = 250 * time.Millisecond // Shortest translation.
	DEFAULT_PULSE   = 600 * time.Millisecond // In-place pulse length.
	DEFAULT_SETTLE  = 300 * time.Millisecond // Pacing when disabled.
	DEFAULT_GRACE   = 1 * time.Second        // Landed marker lifetime.
)

// Anchor is the rendered position of a memory cell or register.
type Anchor interface {
	Origin() image.Point
}

// Locator maps a location to its anchor, or nil if it is not rendered.
type Locator func(loc state.Location) Anchor

// Marker is a transient visual token carrying a value between anchors.
type Marker interface {
	// Position is where the marker is currently laid out.
	Position() image.Point
	// Reparent lays the marker out at another anchor, without any effect.
	Reparent(to Anchor)
	// Translate moves the marker by delta over duration. The channel is
	// closed when the effect completes.
	Translate(delta image.Point, duration time.Duration) <-chan struct{}
	// Settle clears any transient translation state.
	Settle()
	// Remove destroys the marker.
	Remove()
}

// Surface creates markers and in-place effects.
type Surface interface {
	NewMarker(text string, at Anchor) Marker
	// Pulse highlights an anchor in place; the channel is closed when done.
	Pulse(at Anchor, duration time.Duration) <-chan struct{}
}

// Preference reports whether animations are enabled.
type Preference interface {
	Enabled() bool
}

// Always is a fixed preference.
type Always bool

func (a Always) Enabled() bool {
	return bool(a)
}

// Sequencer animates transfers on a surface.
type Sequencer struct {
	Surface    Surface
	Preference Preference // Nil means enabled.
	Logger     *slog.Logger

	Speed   float64       // Marker speed, in cells per second.
	Minimum time.Duration // Shortest translation.
	Pulse   time.Duration // Length of an in-place pulse.
	Settle  time.Duration // Delay taken instead of an effect when disabled.
	Grace   time.Duration // Delay before a landed marker is destroyed.
}

// NewSequencer creates a sequencer with the default timings.
func NewSequencer(surface Surface, pref Preference) *Sequencer {
	return &Sequencer{
		Surface:    surface,
		Preference: pref,
		Speed:      DEFAULT_SPEED,
		Minimum:    DEFAULT_MINIMUM,
		Pulse:      DEFAULT_PULSE,
		Settle:     DEFAULT_SETTLE,
		Grace:      DEFAULT_GRACE,
	}
}

func (seq *Sequencer) logger() *slog.Logger {
	if seq.Logger == nil {
		return slog.Default()
	}
	return seq.Logger
}

// Enabled reports the current animation preference.
func (seq *Sequencer) Enabled() bool {
	return seq.Preference == nil || seq.Preference.Enabled()
}

// Duration is the translation time for a displacement, proportional to
// its length so markers move at a constant apparent speed.
func (seq *Sequencer) Duration(delta image.Point) (d time.Duration) {
	if seq.Speed > 0 {
		dist := math.Hypot(float64(delta.X), float64(delta.Y))
		d = time.Duration(dist / seq.Speed * float64(time.Second))
	}
	if d < seq.Minimum {
		d = seq.Minimum
	}
	return
}

// Animate plays the effect for t and returns once it has completed.
// The context only unblocks a shutdown; effects are not cancelled.
func (seq *Sequencer) Animate(ctx context.Context, t transfer.Transfer, locate Locator) (err error) {
	from, err := t.Source()
	if err != nil {
		return
	}
	to, err := t.Destination()
	if err != nil {
		return
	}

	src := locate(from)
	if src == nil {
		err = ErrAnchorMissing(from)
		return
	}
	dst := locate(to)
	if dst == nil {
		err = ErrAnchorMissing(to)
		return
	}

	if !seq.Enabled() {
		timer := time.NewTimer(seq.Settle)
		defer timer.Stop()
		return wait(ctx, timer.C)
	}

	if from == to {
		seq.logger().Debug("pulse", "at", from, "value", t.Value)
		return wait(ctx, seq.Surface.Pulse(src, seq.Pulse))
	}

	marker := seq.Surface.NewMarker(t.Value, src)

	// Lay the marker out at the destination to measure the displacement,
	// then put it back before it is drawn.
	start := marker.Position()
	marker.Reparent(dst)
	end := marker.Position()
	marker.Reparent(src)

	delta := end.Sub(start)
	duration := seq.Duration(delta)
	seq.logger().Debug("translate", "from", from, "to", to, "value", t.Value, "duration", duration)

	err = wait(ctx, marker.Translate(delta, duration))

	marker.Reparent(dst)
	marker.Settle()
	time.AfterFunc(seq.Grace, marker.Remove)

	return
}

func wait[T any](ctx context.Context, done <-chan T) error {
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
