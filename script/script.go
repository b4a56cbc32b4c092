// Package script drives a session from Starlark programs.
//
// Builtins:
//
//	source(text)     set the program; source() returns it
//	example()        load the example program
//	check()          True if the program is valid
//	assemble()       assemble and load; returns the object code
//	step()           execute one cycle
//	run()            execute until HLT
//	input(v...)      queue answers for INP
//	reg(name)        register value
//	mem(addr)        memory cell value
//	animations(on)   set the animation preference; returns it
//	alerts()         every notification shown so far
package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/lmcview/engine"
	"github.com/ezrec/lmcview/run"
	"github.com/ezrec/lmcview/session"
	"github.com/ezrec/lmcview/state"
)

// Toggle is a writable animation preference.
type Toggle interface {
	Enabled() bool
	SetEnabled(enabled bool) error
}

// Script runs Starlark programs against a session.
type Script struct {
	Session    *session.Session
	Controller *run.Controller
	Mirror     *state.Mirror
	Frontend   *Frontend
	Toggle     Toggle       // Nil makes animations() read-only.
	Logger     *slog.Logger // Nil means slog.Default().

	ctx context.Context
}

func (sc *Script) logger() *slog.Logger {
	if sc.Logger == nil {
		return slog.Default()
	}
	return sc.Logger
}

type builtinFunc func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error)

// Predeclared are the builtins bound to sc.
func (sc *Script) Predeclared() starlark.StringDict {
	builtins := map[string]builtinFunc{
		"source":     sc.source,
		"example":    sc.example,
		"check":      sc.check,
		"assemble":   sc.assemble,
		"step":       sc.step,
		"run":        sc.run,
		"input":      sc.input,
		"reg":        sc.reg,
		"mem":        sc.mem,
		"animations": sc.animations,
		"alerts":     sc.alerts,
	}

	dict := starlark.StringDict{}
	for name, fn := range builtins {
		dict[name] = starlark.NewBuiltin(name, fn)
	}
	return dict
}

// Exec runs the program src, read from filename when src is nil.
// Cancelling ctx stops the program at its next step.
func (sc *Script) Exec(ctx context.Context, filename string, src any) (globals starlark.StringDict, err error) {
	sc.ctx = ctx
	defer func() { sc.ctx = nil }()

	thread := &starlark.Thread{
		Name: filename,
		Print: func(thread *starlark.Thread, msg string) {
			if sc.Frontend != nil && sc.Frontend.Console != nil {
				_ = sc.Frontend.Console.Alert(ctx, msg)
			} else {
				sc.logger().Info(msg, "script", thread.Name)
			}
		},
	}

	stop := context.AfterFunc(ctx, func() {
		thread.Cancel(ctx.Err().Error())
	})
	defer stop()

	opts := syntax.FileOptions{
		TopLevelControl: true,
		While:           true,
		GlobalReassign:  true,
	}
	globals, err = starlark.ExecFileOptions(&opts, thread, filename, src, sc.Predeclared())

	var eval *starlark.EvalError
	if errors.As(err, &eval) {
		sc.logger().Debug("script failed", "backtrace", eval.Backtrace())
	}
	return
}

func (sc *Script) source(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var text starlark.Value = starlark.None
	err := starlark.UnpackArgs(b.Name(), args, kwargs, "text?", &text)
	if err != nil {
		return nil, err
	}

	if text == starlark.None {
		return starlark.String(sc.Session.Source), nil
	}

	str, ok := starlark.AsString(text)
	if !ok {
		return nil, &ErrValue{Builtin: b.Name(), Value: text.String()}
	}
	sc.Session.Source = str
	return starlark.None, nil
}

func (sc *Script) example(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	err := starlark.UnpackArgs(b.Name(), args, kwargs)
	if err == nil {
		err = sc.Session.LoadExample(sc.ctx)
	}
	if err != nil {
		return nil, err
	}
	return starlark.None, nil
}

func (sc *Script) check(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	err := starlark.UnpackArgs(b.Name(), args, kwargs)
	if err != nil {
		return nil, err
	}

	err = sc.Session.Check(sc.ctx)
	var cerr *engine.CompileError
	if errors.As(err, &cerr) {
		return starlark.False, nil
	}
	if err != nil {
		return nil, err
	}
	return starlark.True, nil
}

func (sc *Script) assemble(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	err := starlark.UnpackArgs(b.Name(), args, kwargs)
	if err == nil {
		err = sc.Session.Assemble(sc.ctx)
	}
	if err != nil {
		return nil, err
	}

	words := make([]starlark.Value, len(sc.Session.ObjectCode))
	for n, word := range sc.Session.ObjectCode {
		words[n] = starlark.String(word)
	}
	return starlark.NewList(words), nil
}

func (sc *Script) step(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	err := starlark.UnpackArgs(b.Name(), args, kwargs)
	if err == nil {
		err = sc.Controller.Step(sc.ctx)
	}
	if err != nil {
		return nil, err
	}
	return starlark.None, nil
}

func (sc *Script) run(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	err := starlark.UnpackArgs(b.Name(), args, kwargs)
	if err == nil {
		err = sc.Controller.Run(sc.ctx)
	}
	if err != nil {
		return nil, err
	}
	return starlark.None, nil
}

func (sc *Script) input(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if len(kwargs) > 0 {
		return nil, fmt.Errorf("%v: unexpected keyword arguments", b.Name())
	}

	inputs := make([]string, len(args))
	for n, arg := range args {
		switch v := arg.(type) {
		case starlark.String:
			inputs[n] = string(v)
		case starlark.Int:
			inputs[n] = v.String()
		default:
			return nil, &ErrValue{Builtin: b.Name(), Value: arg.String()}
		}
	}

	sc.Frontend.Queue(inputs...)
	return starlark.None, nil
}

func (sc *Script) reg(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name)
	if err != nil {
		return nil, err
	}

	r, err := state.ParseRegister(name)
	if err != nil {
		return nil, err
	}
	return starlark.String(sc.Mirror.Register(r)), nil
}

func (sc *Script) mem(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var addr int
	err := starlark.UnpackArgs(b.Name(), args, kwargs, "addr", &addr)
	if err != nil {
		return nil, err
	}

	if !state.AtMemory(addr).Valid() {
		return nil, state.ErrAddress(fmt.Sprint(addr))
	}
	return starlark.String(sc.Mirror.Memory(addr)), nil
}

func (sc *Script) animations(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var on starlark.Value = starlark.None
	err := starlark.UnpackArgs(b.Name(), args, kwargs, "on?", &on)
	if err != nil {
		return nil, err
	}

	if sc.Toggle == nil {
		if on != starlark.None {
			return nil, &ErrValue{Builtin: b.Name(), Value: on.String()}
		}
		return starlark.True, nil
	}

	if on != starlark.None {
		err = sc.Toggle.SetEnabled(bool(on.Truth()))
		if err != nil {
			return nil, err
		}
	}
	return starlark.Bool(sc.Toggle.Enabled()), nil
}

func (sc *Script) alerts(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	err := starlark.UnpackArgs(b.Name(), args, kwargs)
	if err != nil {
		return nil, err
	}

	alerts := sc.Frontend.Alerts()
	values := make([]starlark.Value, len(alerts))
	for n, msg := range alerts {
		values[n] = starlark.String(msg)
	}
	return starlark.NewList(values), nil
}
