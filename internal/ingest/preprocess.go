// Package ingest converts raw financial product documents into retrievable,
// metadata-tagged chunks.
package ingest

import (
	"regexp"
	"strings"
)

// Preprocessor strips markup noise and repeated boilerplate from raw document
// text. The first few lines are preserved unconditionally because document
// titles often appear there and carry retrieval-relevant context.
type Preprocessor struct {
	preserveHead int
}

// NewPreprocessor creates a preprocessor that keeps the first preserveHead
// lines untouched.
func NewPreprocessor(preserveHead int) *Preprocessor {
	if preserveHead <= 0 {
		preserveHead = 5
	}
	return &Preprocessor{preserveHead: preserveHead}
}

var (
	markupTagRe  = regexp.MustCompile(`<[^>]+>`)
	pageNumRe    = regexp.MustCompile(`(?i)^\s*(?:page\s*)?\d{1,4}\s*(?:of\s*\d{1,4})?\s*$`)
	bareURLRe    = regexp.MustCompile(`^\s*(?:https?://|www\.)\S+\s*$`)
	footerRe     = regexp.MustCompile(`(?i)^\s*(?:toll[- ]?free|call us|helpline)[:\s].*$|^\s*(?:\+91[-\s]?)?\d{4}[-\s]?\d{3}[-\s]?\d{4}\s*$|^\s*\S+\.(?:com|in|co\.in)\s*$`)
	multiBlankRe = regexp.MustCompile(`\n{3,}`)
)

// Clean removes markup tags and line-level boilerplate. Absent patterns leave
// the text unchanged.
func (p *Preprocessor) Clean(text string) string {
	text = markupTagRe.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))

	for i, line := range lines {
		if i < p.preserveHead {
			out = append(out, line)
			continue
		}
		if pageNumRe.MatchString(line) || bareURLRe.MatchString(line) || footerRe.MatchString(line) {
			continue
		}
		out = append(out, line)
	}

	cleaned := strings.Join(out, "\n")
	cleaned = multiBlankRe.ReplaceAllString(cleaned, "\n\n")
	return cleaned
}
