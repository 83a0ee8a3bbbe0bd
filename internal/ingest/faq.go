package ingest

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// QAPair is one extracted question/answer pair.
type QAPair struct {
	Question string
	Answer   string
}

// minAnswerLength discards answers likely to be false-positive question
// matches.
const minAnswerLength = 20

// answerSentenceFallback bounds the answer when no next question follows.
const answerSentenceFallback = 3

var faqMarkers = []string{
	"faq", "frequently asked questions", "common questions",
	"अक्सर पूछे जाने वाले प्रश्न", "सामान्य प्रश्न", "प्रश्नोत्तर",
}

var questionPatterns = []*regexp.Regexp{
	// "Q1." / "Q:" / "प्रश्न 2:"
	regexp.MustCompile(`(?m)^\s*(?:Q|प्रश्न)\s*\d*\s*[.:)\-]\s*(.+)$`),
	// "3. ... ?"
	regexp.MustCompile(`(?m)^\s*\d+\s*[.)]\s*(.+\?)\s*$`),
	// bare sentence ending in a question mark
	regexp.MustCompile(`(?m)^\s*([^\n?]{10,}\?)\s*$`),
}

// IsFAQSection reports whether the text carries a bilingual FAQ marker.
func IsFAQSection(text string) bool {
	lower := strings.ToLower(text)
	for _, m := range faqMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// ExtractQA detects question/answer pairs. The answer for a question runs up
// to the next detected question, or the next few sentences when none follows.
// Pairs whose answers fall below the minimum length are discarded.
func ExtractQA(text string) []QAPair {
	type qmatch struct {
		start, end int
		question   string
	}

	var matches []qmatch
	taken := make(map[int]bool)
	for _, re := range questionPatterns {
		for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
			if taken[loc[0]] {
				continue
			}
			taken[loc[0]] = true
			matches = append(matches, qmatch{
				start:    loc[0],
				end:      loc[1],
				question: strings.TrimSpace(text[loc[2]:loc[3]]),
			})
		}
	}
	if len(matches) == 0 {
		return nil
	}

	// Original document order regardless of which pattern hit.
	for i := 1; i < len(matches); i++ {
		for j := i; j > 0 && matches[j].start < matches[j-1].start; j-- {
			matches[j], matches[j-1] = matches[j-1], matches[j]
		}
	}

	var pairs []QAPair
	for i, m := range matches {
		var answer string
		if i+1 < len(matches) {
			answer = text[m.end:matches[i+1].start]
		} else {
			answer = firstSentences(text[m.end:], answerSentenceFallback)
		}
		answer = strings.TrimSpace(answer)
		if utf8.RuneCountInString(answer) < minAnswerLength {
			continue
		}
		pairs = append(pairs, QAPair{Question: m.question, Answer: answer})
	}
	return pairs
}

// GroupQAPairs groups pairs into chunks bounded by maxSize, in original
// order, never splitting a pair across chunks.
func GroupQAPairs(pairs []QAPair, maxSize int) []string {
	if len(pairs) == 0 {
		return nil
	}
	if maxSize <= 0 {
		maxSize = 1200
	}

	var chunks []string
	var cur strings.Builder

	flush := func() {
		if cur.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(cur.String()))
			cur.Reset()
		}
	}

	for _, p := range pairs {
		block := "Q: " + p.Question + "\nA: " + p.Answer
		if cur.Len() > 0 && cur.Len()+len(block)+2 > maxSize {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteString("\n\n")
		}
		cur.WriteString(block)
	}
	flush()
	return chunks
}

var sentenceEndRe = regexp.MustCompile(`[.!?।]\s`)

// firstSentences returns up to n sentences from the start of text.
func firstSentences(text string, n int) string {
	text = strings.TrimSpace(text)
	ends := sentenceEndRe.FindAllStringIndex(text, n)
	if len(ends) < n {
		return text
	}
	return text[:ends[n-1][1]]
}
