package engine

import (
	"regexp"
	"strings"

	"github.com/cogitia/cogitia/automod/policy"
	"github.com/cogitia/cogitia/automod/textproc"
)

// Reported speech and citations. Someone quoting abuse they received is not being abusive.
var contextPatterns = []*regexp.Regexp{
	// English: "he told me...", "John called me...", "my brother wrote to me..."
	regexp.MustCompile(`(?i)\b[\pL'’]+(?:\s+[\pL'’]+)?\s+(told|called|said to|wrote to)\s+me\b`),
	regexp.MustCompile(`(?i)\b[\pL'’]+(?:\s+[\pL'’]+)?\s+(said|wrote|replied)\s*:`),
	// French: "il m'a dit...", "Marie m'a traité de...", "mes collègues m'ont appelé..."
	regexp.MustCompile(`(?i)\S+\s+m['’](a|ont)\s+(dit|traité|traitée|traités|appelé|appelée|appelés|écrit)`),
	// explicit citation markers
	regexp.MustCompile(`(?i)\b(quote|citation|cité|cite)\s*:`),
	// quoted text
	regexp.MustCompile(`"[^"]+"|“[^”]+”|«[^»]+»`),
}

// Whether the text is reported speech or a citation.
func IsContextException(text string) bool {
	for _, re := range contextPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// Decides whether a message is exempt from moderation: whitelisted phrase, protected author role, or a context exception. Checked in that order.
//
// Phrase matching ignores case and accents.
func ShouldSkip(cleanText string, author Author, p *policy.GuildPolicy) (bool, Reason) {
	if len(p.WhitelistPhrases) > 0 {
		folded := textproc.FoldText(cleanText)
		for _, phrase := range p.WhitelistPhrases {
			// phrases are cleaned like the message, so links and symbols in them can't prevent a match
			phrase = textproc.FoldText(textproc.CleanText(phrase))
			if phrase == "" {
				continue
			}
			if strings.Contains(folded, phrase) {
				return true, ReasonWhitelisted
			}
		}
	}
	if p.HasProtectedRole(author.Roles) {
		return true, ReasonProtectedRole
	}
	if IsContextException(cleanText) {
		return true, ReasonContextException
	}
	return false, ""
}
