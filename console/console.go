// Package console shows notifications and reads answers on a plain
// line-oriented stream pair.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ezrec/lmcview/translate"
)

var f = translate.From

// Console reads answers from Input and writes messages to Output.
type Console struct {
	Input  io.Reader
	Output io.Writer

	reader *bufio.Reader
}

// Alert writes msg on its own lines.
func (con *Console) Alert(ctx context.Context, msg string) (err error) {
	_, err = fmt.Fprintln(con.Output, msg)
	return
}

// Prompt writes msg and reads one line. The line ending is removed.
func (con *Console) Prompt(ctx context.Context, msg string) (text string, err error) {
	_, err = fmt.Fprintf(con.Output, "%v ", msg)
	if err != nil {
		return
	}
	return con.readLine(ctx)
}

// Confirm asks a yes/no question; only an answer starting with y or Y is
// a yes.
func (con *Console) Confirm(ctx context.Context, msg string) (ok bool, err error) {
	_, err = fmt.Fprintf(con.Output, "%v %v ", msg, f("[y/N]"))
	if err != nil {
		return
	}

	text, err := con.readLine(ctx)
	if err != nil {
		return
	}

	ok = strings.HasPrefix(strings.ToLower(strings.TrimSpace(text)), "y")
	return
}

func (con *Console) readLine(ctx context.Context) (text string, err error) {
	err = ctx.Err()
	if err != nil {
		return
	}

	if con.reader == nil {
		con.reader = bufio.NewReader(con.Input)
	}

	text, err = con.reader.ReadString('\n')
	if err == io.EOF && text != "" {
		err = nil
	}
	text = strings.TrimRight(text, "\r\n")
	return
}
