package tui

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/ezrec/lmcview/animate"
)

// DEFAULT_TICK is the animation frame interval.
const DEFAULT_TICK = 30 * time.Millisecond

// PULSE_WIDTH is the number of cells a pulse highlights.
const PULSE_WIDTH = 3

var (
	markerStyle = tcell.StyleDefault.Reverse(true).Bold(true)
)

// Surface draws markers and pulses over the machine view. Its clock runs
// in Run; effects only progress while Run is active.
type Surface struct {
	Screen tcell.Screen
	Tick   time.Duration

	mu      sync.Mutex
	markers map[*marker]struct{}
	moves   map[*marker]*move
	pulses  []*pulse
}

var _ animate.Surface = (*Surface)(nil)

type move struct {
	delta    image.Point
	start    time.Time
	duration time.Duration
	done     chan struct{}
}

type pulse struct {
	at    animate.Anchor
	until time.Time
	done  chan struct{}
}

// NewSurface creates a surface drawing on screen.
func NewSurface(screen tcell.Screen) *Surface {
	return &Surface{
		Screen:  screen,
		Tick:    DEFAULT_TICK,
		markers: map[*marker]struct{}{},
		moves:   map[*marker]*move{},
	}
}

// Run advances effects every tick until ctx is done, then completes every
// pending effect.
func (s *Surface) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.advance(time.Now(), true)
			return
		case now := <-ticker.C:
			if s.advance(now, false) {
				_ = s.Screen.PostEvent(tcell.NewEventInterrupt(nil))
			}
		}
	}
}

// advance moves effects to their position at now, and reports whether
// anything is animating.
func (s *Surface) advance(now time.Time, finish bool) (active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for m, mv := range s.moves {
		active = true
		progress := 1.0
		if mv.duration > 0 && !finish {
			progress = float64(now.Sub(mv.start)) / float64(mv.duration)
		}
		if progress >= 1 {
			m.offset = mv.delta
			close(mv.done)
			delete(s.moves, m)
			continue
		}
		m.offset = image.Pt(
			int(float64(mv.delta.X)*progress),
			int(float64(mv.delta.Y)*progress),
		)
	}

	pulses := s.pulses[:0]
	for _, p := range s.pulses {
		active = true
		if finish || !now.Before(p.until) {
			close(p.done)
			continue
		}
		pulses = append(pulses, p)
	}
	s.pulses = pulses

	return
}

// Markers is the number of live markers.
func (s *Surface) Markers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.markers)
}

func (s *Surface) NewMarker(text string, at animate.Anchor) animate.Marker {
	m := &marker{surface: s, text: text, parent: at}

	s.mu.Lock()
	s.markers[m] = struct{}{}
	s.mu.Unlock()

	return m
}

func (s *Surface) Pulse(at animate.Anchor, duration time.Duration) <-chan struct{} {
	p := &pulse{
		at:    at,
		until: time.Now().Add(duration),
		done:  make(chan struct{}),
	}

	s.mu.Lock()
	s.pulses = append(s.pulses, p)
	s.mu.Unlock()

	return p.done
}

// Draw renders the effects over what is already on the screen.
func (s *Surface) Draw(screen tcell.Screen) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.pulses {
		at := p.at.Origin()
		for x := at.X; x < at.X+PULSE_WIDTH; x++ {
			r, comb, style, _ := screen.GetContent(x, at.Y)
			screen.SetContent(x, at.Y, r, comb, style.Reverse(true))
		}
	}

	for m := range s.markers {
		at := m.parent.Origin().Add(m.offset)
		drawText(screen, at.X, at.Y, markerStyle, m.text)
	}
}

type marker struct {
	surface *Surface
	text    string
	parent  animate.Anchor
	offset  image.Point
}

func (m *marker) Position() image.Point {
	m.surface.mu.Lock()
	defer m.surface.mu.Unlock()
	return m.parent.Origin().Add(m.offset)
}

func (m *marker) Reparent(to animate.Anchor) {
	m.surface.mu.Lock()
	defer m.surface.mu.Unlock()
	m.parent = to
}

func (m *marker) Translate(delta image.Point, duration time.Duration) <-chan struct{} {
	mv := &move{
		delta:    delta,
		start:    time.Now(),
		duration: duration,
		done:     make(chan struct{}),
	}

	m.surface.mu.Lock()
	defer m.surface.mu.Unlock()
	if old, ok := m.surface.moves[m]; ok {
		close(old.done)
	}
	m.surface.moves[m] = mv
	return mv.done
}

func (m *marker) Settle() {
	m.surface.mu.Lock()
	defer m.surface.mu.Unlock()
	m.offset = image.Point{}
}

func (m *marker) Remove() {
	m.surface.mu.Lock()
	defer m.surface.mu.Unlock()
	if mv, ok := m.surface.moves[m]; ok {
		close(mv.done)
		delete(m.surface.moves, m)
	}
	delete(m.surface.markers, m)
	_ = m.surface.Screen.PostEvent(tcell.NewEventInterrupt(nil))
}
