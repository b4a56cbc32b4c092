package engine

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/ezrec/lmcview/translate"
)

var f = translate.From

// UNKNOWN_LINE is the engine's sentinel for a compile error without a line.
const UNKNOWN_LINE = "unknown"

// ErrStatus is a non-success response from the engine.
type ErrStatus struct {
	Endpoint string
	Code     int
	Body     string
}

func (err *ErrStatus) Error() string {
	if err.Body == "" {
		return f("%v: bad response from server (%d)", err.Endpoint, err.Code)
	}
	return f("%v: bad response from server (%d): %v", err.Endpoint, err.Code, err.Body)
}

// Line is a source line number; zero means unknown.
type Line int

// UnmarshalJSON accepts a number, a numeric string, or UNKNOWN_LINE.
func (ln *Line) UnmarshalJSON(data []byte) (err error) {
	*ln = 0

	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return
	}

	var text string
	if len(data) > 0 && data[0] == '"' {
		err = json.Unmarshal(data, &text)
		if err != nil || text == UNKNOWN_LINE || text == "" {
			return
		}
	} else {
		text = string(data)
	}

	n, err := strconv.Atoi(text)
	if err != nil {
		err = ErrLine(text)
		return
	}

	*ln = Line(n)
	return
}

// Known reports whether the engine supplied a line number.
func (ln Line) Known() bool {
	return ln > 0
}

// ErrLine is a line number the engine sent that is not a number.
type ErrLine string

func (err ErrLine) Error() string {
	return f("line number %q invalid", string(err))
}

// CompileError is an assembly validation failure.
type CompileError struct {
	Reason string
	Line   Line
}

func (err *CompileError) Error() string {
	if !err.Line.Known() {
		return f("Code was not valid:\n%v", err.Reason)
	}
	return f("Code was not valid:\n%v\nError occurred on line %v of assembly.", err.Reason, int(err.Line))
}
