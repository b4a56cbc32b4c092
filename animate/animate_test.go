package animate

import (
	"context"
	"fmt"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/lmcview/state"
	"github.com/ezrec/lmcview/transfer"
)

// recorder is a surface that logs every effect it is asked for.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (rc *recorder) log(format string, args ...any) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.events = append(rc.events, fmt.Sprintf(format, args...))
}

func (rc *recorder) Events() []string {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return append([]string(nil), rc.events...)
}

func (rc *recorder) NewMarker(text string, at Anchor) Marker {
	rc.log("marker %v at %v", text, at.Origin())
	return &recordMarker{rc: rc, parent: at}
}

func (rc *recorder) Pulse(at Anchor, duration time.Duration) <-chan struct{} {
	rc.log("pulse %v", at.Origin())
	return closed()
}

type recordMarker struct {
	rc     *recorder
	parent Anchor
}

func (rm *recordMarker) Position() image.Point {
	return rm.parent.Origin()
}

func (rm *recordMarker) Reparent(to Anchor) {
	rm.rc.log("reparent %v", to.Origin())
	rm.parent = to
}

func (rm *recordMarker) Translate(delta image.Point, duration time.Duration) <-chan struct{} {
	rm.rc.log("translate %v %v", delta, duration)
	return closed()
}

func (rm *recordMarker) Settle() {
	rm.rc.log("settle")
}

func (rm *recordMarker) Remove() {
	rm.rc.log("remove")
}

var layout = map[state.Location]Anchor{
	state.AtRegister(state.REG_PC):  Point{X: 2, Y: 2},
	state.AtRegister(state.REG_MAR): Point{X: 2, Y: 8},
	state.AtRegister(state.REG_ACC): Point{X: 14, Y: 2},
	state.AtMemory(5):               Point{X: 50, Y: 2},
}

func locate(loc state.Location) Anchor {
	anchor, ok := layout[loc]
	if !ok {
		return nil
	}
	return anchor
}

func fastSequencer(surface Surface, pref Preference) *Sequencer {
	seq := NewSequencer(surface, pref)
	seq.Speed = 1000
	seq.Minimum = time.Millisecond
	seq.Settle = 20 * time.Millisecond
	seq.Grace = 0
	return seq
}

func TestSequencer_Translate(t *testing.T) {
	assert := assert.New(t)

	rc := &recorder{}
	seq := fastSequencer(rc, Always(true))

	tr := transfer.Transfer{StartReg: "PC", EndReg: "MAR", Value: "00"}
	err := seq.Animate(context.Background(), tr, locate)
	assert.NoError(err)

	assert.Eventually(func() bool {
		return len(rc.Events()) == 7
	}, time.Second, time.Millisecond)

	assert.Equal([]string{
		"marker 00 at (2,2)",
		"reparent (2,8)",
		"reparent (2,2)",
		"translate (0,6) 6ms",
		"reparent (2,8)",
		"settle",
		"remove",
	}, rc.Events())
}

func TestSequencer_SameLocationPulses(t *testing.T) {
	assert := assert.New(t)

	rc := &recorder{}
	seq := fastSequencer(rc, Always(true))

	tr := transfer.Transfer{StartReg: "PC", EndReg: "PC", Value: "01"}
	assert.NoError(seq.Animate(context.Background(), tr, locate))

	assert.Equal([]string{"pulse (2,2)"}, rc.Events())
}

func TestSequencer_Disabled(t *testing.T) {
	assert := assert.New(t)

	rc := &recorder{}
	seq := fastSequencer(rc, Always(false))

	tr := transfer.Transfer{StartReg: "MAR", EndMem: "05", Value: "042"}

	start := time.Now()
	assert.NoError(seq.Animate(context.Background(), tr, locate))
	elapsed := time.Since(start)

	assert.Empty(rc.Events())
	assert.GreaterOrEqual(elapsed, seq.Settle)
}

func TestSequencer_MissingAnchor(t *testing.T) {
	assert := assert.New(t)

	rc := &recorder{}
	seq := fastSequencer(rc, nil)

	tr := transfer.Transfer{StartMem: "77", EndReg: "MDR", Value: "123"}
	err := seq.Animate(context.Background(), tr, locate)
	assert.Equal(ErrAnchorMissing(state.AtMemory(77)), err)

	tr = transfer.Transfer{EndReg: "ACC", Value: "123"}
	err = seq.Animate(context.Background(), tr, locate)
	assert.Equal(transfer.ErrEndpointMissing("start"), err)

	assert.Empty(rc.Events())
}

func TestSequencer_Duration(t *testing.T) {
	assert := assert.New(t)

	seq := NewSequencer(nil, nil)
	seq.Speed = 10
	seq.Minimum = 100 * time.Millisecond

	assert.Equal(500*time.Millisecond, seq.Duration(image.Pt(3, 4)))
	assert.Equal(100*time.Millisecond, seq.Duration(image.Pt(0, 0)))
	assert.Equal(2*time.Second, seq.Duration(image.Pt(-20, 0)))
}

func TestSequencer_Shutdown(t *testing.T) {
	assert := assert.New(t)

	seq := NewSequencer(&Instant{}, Always(false))
	seq.Settle = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := transfer.Transfer{StartReg: "PC", EndReg: "MAR", Value: "00"}
	assert.ErrorIs(seq.Animate(ctx, tr, locate), context.Canceled)
}

func TestInstant(t *testing.T) {
	assert := assert.New(t)

	in := &Instant{}
	seq := fastSequencer(in, Always(true))

	tr := transfer.Transfer{StartReg: "ACC", EndMem: "05", Value: "042"}
	assert.NoError(seq.Animate(context.Background(), tr, locate))

	assert.Eventually(func() bool {
		return in.Alive() == 0
	}, time.Second, time.Millisecond)
}
