// Package tui is the terminal front-end: the machine view, animated
// transfers, modal notifications, and key bindings for the session and
// execution actions.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/ezrec/lmcview/run"
	"github.com/ezrec/lmcview/session"
	"github.com/ezrec/lmcview/state"
)

// Toggle is a writable animation preference.
type Toggle interface {
	Enabled() bool
	SetEnabled(enabled bool) error
}

type modalKind int

const (
	MODAL_ALERT modalKind = iota
	MODAL_PROMPT
	MODAL_CONFIRM
)

type modal struct {
	kind  modalKind
	msg   string
	input []rune
	reply chan modalReply
}

type modalReply struct {
	text string
	ok   bool
}

// action is work for the worker goroutine.
type action func(ctx context.Context) error

// quit is the interrupt payload that ends the event loop.
type quit struct{}

var (
	titleStyle = tcell.StyleDefault.Bold(true)
	dimStyle   = tcell.StyleDefault.Dim(true)
	modalStyle = tcell.StyleDefault.Reverse(true)
)

// App is the terminal program. Session and Controller are only used from
// the worker goroutine; the event loop reads what it draws from the
// mirror and from a copy of the session kept under mu.
type App struct {
	Screen     tcell.Screen
	Surface    *Surface
	Mirror     *state.Mirror
	Session    *session.Session
	Controller *run.Controller
	Prefs      Toggle       // Nil disables the toggle key.
	ShareBase  string       // Page that share links point at.
	Logger     *slog.Logger // Nil means slog.Default().

	mu      sync.Mutex
	status  string
	source  []string
	listing []string
	modal   *modal

	busy    atomic.Bool
	actions chan action
}

// NewApp creates an app drawing on screen.
func NewApp(screen tcell.Screen) *App {
	return &App{
		Screen:  screen,
		Surface: NewSurface(screen),
		actions: make(chan action, 1),
	}
}

func (app *App) logger() *slog.Logger {
	if app.Logger == nil {
		return slog.Default()
	}
	return app.Logger
}

func (app *App) redraw() {
	_ = app.Screen.PostEvent(tcell.NewEventInterrupt(nil))
}

// SetStatus shows line at the bottom of the screen.
func (app *App) SetStatus(line string) {
	app.mu.Lock()
	app.status = line
	app.mu.Unlock()
	app.redraw()
}

// Status is the current status line.
func (app *App) Status() string {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.status
}

// refresh copies the session's text for drawing.
func (app *App) refresh() {
	var source []string
	if app.Session.Source != "" {
		source = strings.Split(strings.TrimRight(app.Session.Source, "\n"), "\n")
	}
	listing := append([]string(nil), app.Session.ObjectCode...)

	app.mu.Lock()
	app.source = source
	app.listing = listing
	app.mu.Unlock()
	app.redraw()
}

// Run is the event loop. It returns when the user quits or ctx is done.
// The screen must already be initialized.
func (app *App) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app.Mirror.Changed = func(loc state.Location, value string) {
		app.redraw()
	}

	go app.Surface.Run(ctx)
	go app.work(ctx)

	exited := make(chan struct{})
	defer close(exited)
	stop := context.AfterFunc(ctx, func() {
		for app.Screen.PostEvent(tcell.NewEventInterrupt(quit{})) != nil {
			select {
			case <-exited:
				return
			case <-time.After(DEFAULT_TICK):
			}
		}
	})
	defer stop()

	app.refresh()

	for {
		app.draw()
		app.Screen.Show()

		switch ev := app.Screen.PollEvent().(type) {
		case nil:
			return
		case *tcell.EventResize:
			app.Screen.Sync()
		case *tcell.EventInterrupt:
			if _, ok := ev.Data().(quit); ok {
				return
			}
		case *tcell.EventKey:
			if app.key(ev) {
				return
			}
		}
	}
}

// work runs actions one at a time.
func (app *App) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case act := <-app.actions:
			err := app.perform(ctx, act)
			if err != nil {
				app.logger().InfoContext(ctx, "action failed", "error", err)
			}
			app.refresh()
			app.busy.Store(false)
		}
	}
}

// perform runs act. A panic restores the terminal before it propagates.
func (app *App) perform(ctx context.Context, act action) (err error) {
	defer func() {
		if r := recover(); r != nil {
			app.Screen.Fini()
			panic(r)
		}
	}()

	return act(ctx)
}

// dispatch queues act unless another action is in progress.
func (app *App) dispatch(name string, act action) {
	if !app.busy.CompareAndSwap(false, true) {
		app.SetStatus(f("Busy: %v ignored", name))
		return
	}
	app.SetStatus(name)
	app.actions <- act
}

// key handles a key press, and reports whether to quit.
func (app *App) key(ev *tcell.EventKey) bool {
	app.mu.Lock()
	m := app.modal
	app.mu.Unlock()

	if m != nil {
		app.modalKey(m, ev)
		return false
	}

	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyEscape:
		return true
	case tcell.KeyRune:
	default:
		return false
	}

	switch ev.Rune() {
	case 'q':
		return true
	case 'a':
		app.dispatch(f("Assemble"), func(ctx context.Context) error {
			return app.Session.Assemble(ctx)
		})
	case 'c':
		app.dispatch(f("Check"), func(ctx context.Context) error {
			return app.Session.Check(ctx)
		})
	case 's':
		app.dispatch(f("Step"), func(ctx context.Context) error {
			return app.Controller.Step(ctx)
		})
	case 'r':
		app.dispatch(f("Run"), func(ctx context.Context) error {
			return app.Controller.Run(ctx)
		})
	case 'x':
		app.dispatch(f("Example"), func(ctx context.Context) error {
			return app.Session.LoadExample(ctx)
		})
	case 'n':
		app.dispatch(f("Clear"), func(ctx context.Context) error {
			app.Session.Clear()
			return nil
		})
	case 'w':
		app.dispatch(f("Share"), app.share)
	case 't':
		app.toggle()
	}

	return false
}

func (app *App) share(ctx context.Context) (err error) {
	link, err := app.Session.ShareURL(app.ShareBase)
	if err != nil {
		return
	}
	return app.Alert(ctx, f("Go to this URL again to automatically load your code into the editor.")+"\n"+link)
}

func (app *App) toggle() {
	if app.Prefs == nil {
		return
	}

	enabled := !app.Prefs.Enabled()
	err := app.Prefs.SetEnabled(enabled)
	switch {
	case err != nil:
		app.logger().Warn("preferences", "error", err)
	case enabled:
		app.SetStatus(f("Animations on"))
	default:
		app.SetStatus(f("Animations off"))
	}
}

func (app *App) modalKey(m *modal, ev *tcell.EventKey) {
	var reply *modalReply

	switch m.kind {
	case MODAL_ALERT:
		switch ev.Key() {
		case tcell.KeyEnter, tcell.KeyEscape:
			reply = &modalReply{ok: true}
		}
	case MODAL_PROMPT:
		switch ev.Key() {
		case tcell.KeyEnter:
			reply = &modalReply{text: string(m.input), ok: true}
		case tcell.KeyEscape:
			reply = &modalReply{ok: true}
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			app.mu.Lock()
			if len(m.input) > 0 {
				m.input = m.input[:len(m.input)-1]
			}
			app.mu.Unlock()
		case tcell.KeyRune:
			app.mu.Lock()
			m.input = append(m.input, ev.Rune())
			app.mu.Unlock()
		}
	case MODAL_CONFIRM:
		switch {
		case ev.Key() == tcell.KeyRune && (ev.Rune() == 'y' || ev.Rune() == 'Y'):
			reply = &modalReply{ok: true}
		case ev.Key() == tcell.KeyRune && (ev.Rune() == 'n' || ev.Rune() == 'N'),
			ev.Key() == tcell.KeyEnter, ev.Key() == tcell.KeyEscape:
			reply = &modalReply{}
		}
	}

	if reply != nil {
		app.mu.Lock()
		app.modal = nil
		app.mu.Unlock()
		m.reply <- *reply
	}
}

// ask shows a modal and waits for the user to close it.
func (app *App) ask(ctx context.Context, kind modalKind, msg string) (reply modalReply, err error) {
	m := &modal{
		kind:  kind,
		msg:   msg,
		reply: make(chan modalReply, 1),
	}

	app.mu.Lock()
	app.modal = m
	app.mu.Unlock()
	app.redraw()

	select {
	case reply = <-m.reply:
	case <-ctx.Done():
		err = ctx.Err()
		app.mu.Lock()
		if app.modal == m {
			app.modal = nil
		}
		app.mu.Unlock()
	}
	return
}

// Waiting reports whether a modal is open.
func (app *App) Waiting() bool {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.modal != nil
}

// Alert shows msg until the user presses Enter.
func (app *App) Alert(ctx context.Context, msg string) (err error) {
	_, err = app.ask(ctx, MODAL_ALERT, msg)
	return
}

// Prompt reads a line. Escape answers with an empty line; only ctx ends
// the wait without an answer.
func (app *App) Prompt(ctx context.Context, msg string) (text string, err error) {
	reply, err := app.ask(ctx, MODAL_PROMPT, msg)
	text = reply.text
	return
}

// Confirm asks a yes/no question.
func (app *App) Confirm(ctx context.Context, msg string) (ok bool, err error) {
	reply, err := app.ask(ctx, MODAL_CONFIRM, msg)
	ok = reply.ok
	return
}

func (app *App) draw() {
	screen := app.Screen
	screen.Clear()
	w, h := screen.Size()

	drawText(screen, REG_LABEL_X, 0, titleStyle, f("Little Man Computer"))

	for r := range state.Registers() {
		drawText(screen, REG_LABEL_X, REG_Y+int(r)*REG_STEP, dimStyle, r.String())
	}
	for col := range 10 {
		drawText(screen, MEM_X+3+col*CELL_WIDTH, MEM_Y, dimStyle, fmt.Sprintf("%3d", col))
	}
	for row := range 10 {
		drawText(screen, MEM_X, MEM_Y+1+row, dimStyle, state.FormatAddress(row*10))
	}
	for loc, value := range app.Mirror.All() {
		at := Locate(loc).Origin()
		drawText(screen, at.X, at.Y, tcell.StyleDefault, value)
	}

	app.mu.Lock()
	source := app.source
	listing := app.listing
	status := app.status
	m := app.modal
	var input string
	if m != nil {
		input = string(m.input)
	}
	app.mu.Unlock()

	drawText(screen, REG_LABEL_X, PANE_Y, titleStyle, f("Program"))
	drawText(screen, LISTING_X, PANE_Y, titleStyle, f("Object code"))
	for n := 0; PANE_Y+1+n < h-2; n++ {
		if n < len(source) {
			drawText(screen, REG_LABEL_X, PANE_Y+1+n, tcell.StyleDefault, source[n])
		}
		if n < len(listing) {
			drawText(screen, LISTING_X, PANE_Y+1+n, tcell.StyleDefault, listing[n])
		}
	}

	app.Surface.Draw(screen)

	drawText(screen, 0, h-2, dimStyle, f("a assemble  c check  s step  r run  t animations  w share  x example  n clear  q quit"))
	drawText(screen, 0, h-1, tcell.StyleDefault, status)

	if m != nil {
		app.drawModal(w, h, m, input)
	}
}

func (app *App) drawModal(w int, h int, m *modal, input string) {
	lines := strings.Split(m.msg, "\n")
	switch m.kind {
	case MODAL_ALERT:
		lines = append(lines, "", f("[Enter]"))
	case MODAL_PROMPT:
		lines = append(lines, "> "+input+"_")
	case MODAL_CONFIRM:
		lines = append(lines, "", f("[y/N]"))
	}

	width := 0
	for _, line := range lines {
		width = max(width, len([]rune(line)))
	}
	width = min(width+4, w)
	x := (w - width) / 2
	y := max((h-len(lines)-2)/2, 0)

	blank := strings.Repeat(" ", width)
	drawText(app.Screen, x, y, modalStyle, blank)
	for n, line := range lines {
		drawText(app.Screen, x, y+1+n, modalStyle, blank)
		drawText(app.Screen, x+2, y+1+n, modalStyle, line)
	}
	drawText(app.Screen, x, y+1+len(lines), modalStyle, blank)
}
