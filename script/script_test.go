package script

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.starlark.net/starlark"

	"github.com/ezrec/lmcview/animate"
	"github.com/ezrec/lmcview/console"
	"github.com/ezrec/lmcview/cycle"
	"github.com/ezrec/lmcview/engine"
	"github.com/ezrec/lmcview/internal/lmctest"
	"github.com/ezrec/lmcview/run"
	"github.com/ezrec/lmcview/session"
	"github.com/ezrec/lmcview/state"
)

type toggle struct {
	enabled bool
}

func (tg *toggle) Enabled() bool {
	return tg.enabled
}

func (tg *toggle) SetEnabled(enabled bool) error {
	tg.enabled = enabled
	return nil
}

func newScript(t *testing.T) *Script {
	ts := httptest.NewServer(lmctest.NewServer().Handler())
	t.Cleanup(ts.Close)

	client := engine.NewClient(ts.URL)
	mirror := state.NewMirror()
	frontend := &Frontend{}
	tg := &toggle{enabled: true}
	seq := animate.NewSequencer(&animate.Instant{}, tg)
	seq.Settle = 0

	return &Script{
		Session: &session.Session{
			Mirror:    mirror,
			Assembler: client,
			Frontend:  frontend,
		},
		Controller: &run.Controller{
			Mirror: mirror,
			Engine: client,
			Processor: &cycle.Processor{
				Mirror:   mirror,
				Animator: seq,
				Locate:   lmctest.Locate,
				Frontend: frontend,
				Engine:   client,
			},
			Alerter: frontend,
		},
		Mirror:   mirror,
		Frontend: frontend,
		Toggle:   tg,
	}
}

func TestExec_Scenario(t *testing.T) {
	assert := assert.New(t)
	sc := newScript(t)

	globals, err := sc.Exec(context.Background(), "scenario.star", `
source("INP\nOUT\nHLT")
valid = check()
words = assemble()
input(7)
for _ in range(3):
    step()
acc = reg("ACC")
pc = reg("PC")
first = mem(0)
shown = alerts()
`)
	require.NoError(t, err)

	assert.Equal(starlark.True, globals["valid"])
	assert.Equal(`["00 INP", "01 OUT", "02 HLT"]`, globals["words"].String())
	assert.Equal(starlark.String("007"), globals["acc"])
	assert.Equal(starlark.String("03"), globals["pc"])
	assert.Equal(starlark.String("901"), globals["first"])
	assert.Equal(`["Code was valid :)", "Output: 007", "Program reached HLT. Execution completed."]`, globals["shown"].String())
}

func TestExec_Run(t *testing.T) {
	assert := assert.New(t)
	sc := newScript(t)

	globals, err := sc.Exec(context.Background(), "run.star", `
example()
assemble()
animations(False)
input("6", 7)
run()
product = mem(18)
enabled = animations()
`)
	require.NoError(t, err)

	assert.Equal(starlark.String("042"), globals["product"])
	assert.Equal(starlark.False, globals["enabled"])
	assert.Equal([]string{"Output: 042", "Program reached HLT. Execution completed."}, sc.Frontend.Alerts())
}

func TestExec_Invalid(t *testing.T) {
	assert := assert.New(t)
	sc := newScript(t)

	globals, err := sc.Exec(context.Background(), "invalid.star", `
source("LDA nowhere")
valid = check()
`)
	require.NoError(t, err)
	assert.Equal(starlark.False, globals["valid"])

	_, err = sc.Exec(context.Background(), "assemble.star", `assemble()`)
	assert.Error(err)

	_, err = sc.Exec(context.Background(), "reg.star", `reg("XYZ")`)
	assert.ErrorContains(err, `register "XYZ" unknown`)

	_, err = sc.Exec(context.Background(), "mem.star", `mem(100)`)
	assert.Error(err)

	_, err = sc.Exec(context.Background(), "input.star", `input(1.5)`)
	assert.Error(err)
}

func TestExec_NoInput(t *testing.T) {
	sc := newScript(t)

	_, err := sc.Exec(context.Background(), "noinput.star", `
source("INP\nHLT")
assemble()
step()
`)
	assert.ErrorContains(t, err, ErrNoInput.Error())
}

func TestExec_ConsoleFallback(t *testing.T) {
	assert := assert.New(t)
	sc := newScript(t)

	var out bytes.Buffer
	sc.Frontend.Console = &console.Console{
		Input:  strings.NewReader("5\n"),
		Output: &out,
	}

	_, err := sc.Exec(context.Background(), "console.star", `
source("INP\nOUT\nHLT")
assemble()
run()
print("done", reg("ACC"))
`)
	require.NoError(t, err)

	assert.Contains(out.String(), "INP reached. Please enter your input (a number 0-999) here: ")
	assert.Contains(out.String(), "Output: 005\n")
	assert.True(strings.HasSuffix(out.String(), "done 005\n"))
}

func TestExec_Cancelled(t *testing.T) {
	sc := newScript(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sc.Exec(ctx, "loop.star", `
while True:
    pass
`)
	assert.Error(t, err)
}
