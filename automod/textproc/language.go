package textproc

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/abadojack/whatlanggo"
)

const (
	// returned for text too short (or too ambiguous) to identify
	LangUnknown = "unknown"
	// returned for an identified language outside the supported set
	LangOther = "other"
)

var DefaultLanguages = []string{"en", "fr", "es", "de"}

// Below this many characters, detection is not attempted.
const minDetectLength = 3

// Returns an ISO 639-1 tag for one of the supported languages, LangOther, or LangUnknown.
func DetectLanguage(text string, supported []string) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < minDetectLength {
		return LangUnknown
	}
	info := whatlanggo.Detect(text)
	if info.Lang < 0 {
		return LangUnknown
	}
	code := info.Lang.Iso6391()
	if code == "" {
		return LangOther
	}
	if slices.Contains(supported, code) {
		return code
	}
	return LangOther
}
