package feed

import (
	"regexp"
	"strings"
)

const DefaultMaxSentences = 3

var (
	// tagPattern removes markup heuristically. It is not an HTML parser:
	// nested, multi-line or malformed tags can leave fragments behind.
	tagPattern    = regexp.MustCompile(`<.*?>`)
	sentenceBreak = regexp.MustCompile(`[.!?]\s+`)
)

// Summarize strips markup from raw and returns its first maxSentences
// sentences joined by single spaces. When no sentence survives, raw is
// returned untouched.
func Summarize(raw string, maxSentences int) string {
	sentences := splitSentences(tagPattern.ReplaceAllString(raw, ""))
	if len(sentences) == 0 {
		return raw
	}

	if maxSentences < 0 {
		maxSentences = 0
	}
	if len(sentences) > maxSentences {
		sentences = sentences[:maxSentences]
	}

	return strings.Join(sentences, " ")
}

func splitSentences(text string) []string {
	text = strings.TrimSpace(text)

	var parts []string
	start := 0
	for _, loc := range sentenceBreak.FindAllStringIndex(text, -1) {
		// keep the terminal punctuation, drop the whitespace after it
		parts = append(parts, text[start:loc[0]+1])
		start = loc[1]
	}
	parts = append(parts, text[start:])

	sentences := make([]string, 0, len(parts))
	for _, part := range parts {
		sentence := strings.TrimSpace(strings.ReplaceAll(part, "\n", " "))
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
	}

	return sentences
}
