package textproc

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	urlPattern     = regexp.MustCompile(`(?i)(?:https?://|www\.)\S+`)
	mentionPattern = regexp.MustCompile(`<@!?\d+>|<@&\d+>|<#\d+>`)
	emojiPattern   = regexp.MustCompile(`<a?:\w+:\d+>`)
	// quote marks and colons survive so that citation exceptions can still match the cleaned text
	nonTextChars = regexp.MustCompile(`[^\pL\pN\s'’\-.,!?:"“”«»]+`)
	spaceRun     = regexp.MustCompile(`\s+`)
)

// Strips chat markup (links, user/role/channel mentions, custom emoji) and symbol noise from a raw message, then collapses whitespace.
//
// Compatibility forms are folded (NFKC), so full-width or stylized letters come out as their plain equivalents. Case and accents are preserved: the classifier is case and accent sensitive, and whitelist matching folds case itself.
func CleanText(raw string) string {
	text := norm.NFKC.String(raw)
	text = urlPattern.ReplaceAllString(text, " ")
	text = mentionPattern.ReplaceAllString(text, " ")
	text = emojiPattern.ReplaceAllString(text, " ")
	text = nonTextChars.ReplaceAllString(text, " ")
	text = spaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Lower-cased, accent-stripped form of text, for matching against operator-supplied phrases.
func FoldText(text string) string {
	// transformer chains are stateful, so one is built per call
	normFunc := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	lower := strings.ToLower(text)
	folded, _, err := transform.String(normFunc, lower)
	if err != nil {
		slog.Warn("unicode normalization error", "err", err)
		return lower
	}
	return folded
}
