// Package translate formats user-visible messages through a locale-matched
// message printer.
package translate

import (
	"log"
	"os"
	"strings"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/message"
)

// LOCALE_ENV, when set, replaces the system locale list (comma separated).
const LOCALE_ENV = "DRF_LANG"

var printer *message.Printer

func init() {
	SetLocales(systemLocales()...)
}

func systemLocales() (locales []string) {
	if lang := os.Getenv(LOCALE_ENV); len(lang) != 0 {
		return strings.Split(lang, ",")
	}

	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("drf: locale: %v", err)
	}

	return
}

// SetLocales selects the printer for the best match of the given locales.
// With no locales, en-US is used.
func SetLocales(locales ...string) {
	if len(locales) == 0 {
		locales = []string{"en-US"}
	}

	printer = message.NewPrinter(message.MatchLanguage(locales...))
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}
