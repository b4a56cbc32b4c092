// Package translate localizes user-visible notifications and prompts.
package translate

import (
	"log/slog"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer *message.Printer

func init() {
	locales, err := locale.GetLocales()
	if err != nil {
		slog.Debug("lmcview: locale", "error", err)
	}

	if len(locales) == 0 {
		locales = []string{"en-US"}
	}

	printer = message.NewPrinter(message.MatchLanguage(locales...))
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}

// Use replaces the printer with one for a fixed language tag.
func Use(tag language.Tag) {
	printer = message.NewPrinter(tag)
}
