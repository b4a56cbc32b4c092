// Package session holds the program being edited and the actions on it
// that are not execution: checking, assembling, clearing, sharing, and
// loading the example program.
package session

import (
	"context"
	_ "embed"
	"errors"
	"log/slog"
	"net/url"
	"strings"

	"github.com/ezrec/lmcview/engine"
	"github.com/ezrec/lmcview/state"
)

// QUERY_CODE is the share URL query key holding the program source.
const QUERY_CODE = "code"

//go:embed example.lmc
var example string

// Example is the bundled example program.
func Example() string {
	return example
}

// Assembler validates and assembles source.
type Assembler interface {
	Check(ctx context.Context, source string) error
	Compile(ctx context.Context, source string) (engine.Compiled, error)
}

// Frontend shows notifications and asks for confirmation.
type Frontend interface {
	Alert(ctx context.Context, msg string) error
	Confirm(ctx context.Context, msg string) (ok bool, err error)
}

// Session is one program and the machine it is loaded into.
type Session struct {
	Source     string
	ObjectCode []string // Listing from the last successful assemble.

	Mirror    *state.Mirror
	Assembler Assembler
	Frontend  Frontend
	Logger    *slog.Logger // Nil means slog.Default().
}

func (s *Session) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// report shows a failed check or assemble to the user.
func (s *Session) report(ctx context.Context, err error) error {
	var cerr *engine.CompileError
	if errors.As(err, &cerr) {
		s.logger().InfoContext(ctx, "invalid program", "reason", cerr.Reason, "line", int(cerr.Line))
		_ = s.Frontend.Alert(ctx, cerr.Error())
	} else {
		s.logger().ErrorContext(ctx, "engine", "error", err)
		_ = s.Frontend.Alert(ctx, f("Bad response from server: %v", err))
	}
	return err
}

// Check validates the program and tells the user the result.
func (s *Session) Check(ctx context.Context) (err error) {
	err = s.Assembler.Check(ctx, s.Source)
	if err != nil {
		return s.report(ctx, err)
	}
	return s.Frontend.Alert(ctx, f("Code was valid :)"))
}

// Assemble compiles the program and loads it into the mirror.
func (s *Session) Assemble(ctx context.Context) (err error) {
	compiled, err := s.Assembler.Compile(ctx, s.Source)
	if err != nil {
		return s.report(ctx, err)
	}

	s.ObjectCode = compiled.ObjectCode
	s.Mirror.Load(compiled.State)
	s.logger().DebugContext(ctx, "assembled", "words", len(compiled.ObjectCode))
	return
}

// Listing is the object code, one word per line.
func (s *Session) Listing() string {
	return strings.Join(s.ObjectCode, "\n")
}

// Clear empties the program.
func (s *Session) Clear() {
	s.Source = ""
}

// ShareURL encodes the program into base as a query parameter.
func (s *Session) ShareURL(base string) (link string, err error) {
	u, err := url.Parse(base)
	if err != nil {
		return
	}

	query := u.Query()
	query.Set(QUERY_CODE, s.Source)
	u.RawQuery = query.Encode()

	link = u.String()
	return
}

// FromURL decodes a program encoded by ShareURL.
func FromURL(link string) (source string, err error) {
	u, err := url.Parse(link)
	if err != nil {
		return
	}

	query := u.Query()
	if !query.Has(QUERY_CODE) {
		err = ErrNoCode
		return
	}

	source = query.Get(QUERY_CODE)
	return
}

// Open replaces the program with the one encoded in link.
func (s *Session) Open(link string) (err error) {
	source, err := FromURL(link)
	if err != nil {
		return
	}
	s.Source = source
	return
}

// LoadExample replaces the program with the example, asking first if
// there is a program to lose.
func (s *Session) LoadExample(ctx context.Context) (err error) {
	if s.Source != "" {
		var ok bool
		ok, err = s.Frontend.Confirm(ctx, f("Caution: loading example program will overwrite contents of editor. Continue?"))
		if err != nil {
			return
		}
		if !ok {
			err = ErrCancelled
			return
		}
	}

	s.Source = example
	return
}
