// Package logs builds the program's slog loggers.
package logs

import (
	"context"
	"io"
	"log/slog"

	slogmulti "github.com/samber/slog-multi"
)

// Level is the level of the text handler built by New.
var Level = new(slog.LevelVar)

// New logs as text to w, and also to every extra handler.
func New(w io.Writer, extra ...slog.Handler) *slog.Logger {
	handlers := []slog.Handler{
		slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: Level,
		}),
	}
	handlers = append(handlers, extra...)

	return slog.New(slogmulti.Fanout(handlers...))
}

// Status passes a one-line summary of each record at min or above to show.
func Status(min slog.Level, show func(line string)) slog.Handler {
	return slogmulti.NewHandleInlineHandler(func(ctx context.Context, groups []string, attrs []slog.Attr, record slog.Record) error {
		if record.Level < min {
			return nil
		}

		line := record.Message
		record.Attrs(func(attr slog.Attr) bool {
			if attr.Key == "error" {
				line += ": " + attr.Value.String()
				return false
			}
			return true
		})

		show(line)
		return nil
	})
}
