package animate

import (
	"image"
	"sync"
	"time"
)

// Point is a fixed anchor.
type Point image.Point

func (p Point) Origin() image.Point {
	return image.Point(p)
}

// Instant is a surface without a display. Every effect completes at once,
// and the markers still alive are counted.
type Instant struct {
	mu    sync.Mutex
	alive int
}

var _ Surface = (*Instant)(nil)

func closed() <-chan struct{} {
	done := make(chan struct{})
	close(done)
	return done
}

// Alive is the number of markers not yet removed.
func (in *Instant) Alive() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.alive
}

func (in *Instant) NewMarker(text string, at Anchor) Marker {
	in.mu.Lock()
	in.alive++
	in.mu.Unlock()
	return &instantMarker{surface: in, parent: at}
}

func (in *Instant) Pulse(at Anchor, duration time.Duration) <-chan struct{} {
	return closed()
}

type instantMarker struct {
	surface *Instant
	parent  Anchor
	removed bool
}

func (im *instantMarker) Position() image.Point {
	return im.parent.Origin()
}

func (im *instantMarker) Reparent(to Anchor) {
	im.parent = to
}

func (im *instantMarker) Translate(delta image.Point, duration time.Duration) <-chan struct{} {
	return closed()
}

func (im *instantMarker) Settle() {
}

func (im *instantMarker) Remove() {
	im.surface.mu.Lock()
	defer im.surface.mu.Unlock()
	if !im.removed {
		im.removed = true
		im.surface.alive--
	}
}
