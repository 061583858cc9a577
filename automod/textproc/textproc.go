// Message text preparation: markup stripping, unicode folding, and language identification.
package textproc

// Default text normalizer, cleaning a message and tagging it with a language.
type Normalizer struct {
	// ISO 639-1 tags reported as themselves; anything else detected is "other"
	Languages []string
}

func NewNormalizer() *Normalizer {
	return &Normalizer{
		Languages: DefaultLanguages,
	}
}

// Returns the cleaned text and a language tag for it. Detection runs on the cleaned text, so links and mentions don't skew it.
func (n *Normalizer) Normalize(raw string) (string, string) {
	clean := CleanText(raw)
	langs := n.Languages
	if len(langs) == 0 {
		langs = DefaultLanguages
	}
	return clean, DetectLanguage(clean, langs)
}
