package ingest

import (
	"regexp"
	"strings"
)

// maxKeywords bounds the keyword set attached to a chunk.
const maxKeywords = 10

var (
	percentRe = regexp.MustCompile(`\d+(?:\.\d+)?\s*%`)
	amountRe  = regexp.MustCompile(`(?:₹|rs\.?\s?|inr\s?)\s*[\d,]+(?:\.\d+)?(?:\s*(?:lakh|lakhs|crore|crores|लाख|करोड़))?`)
	tenureRe  = regexp.MustCompile(`\d+\s*(?:years?|months?|days?|वर्ष|साल|महीने|दिन)`)
)

var domainTerms = []string{
	"interest", "emi", "tenure", "collateral", "subsidy", "eligibility",
	"margin", "processing fee", "prepayment", "foreclosure", "moratorium",
	"guarantor", "co-applicant", "cibil", "maturity", "premature withdrawal",
	"tax benefit", "section 80c", "nomination",
	"ब्याज", "पात्रता", "गारंटी", "परिपक्वता", "कर लाभ",
}

// ExtractKeywords pulls salient terms out of chunk text: numeric values
// (rates, amounts, tenures) first, then known domain terms. Order is stable
// and duplicates are dropped, so re-ingestion yields identical keyword sets.
func ExtractKeywords(text string) []string {
	lower := strings.ToLower(text)

	var keywords []string
	seen := make(map[string]struct{})

	add := func(kw string) {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			return
		}
		if _, ok := seen[kw]; ok {
			return
		}
		seen[kw] = struct{}{}
		keywords = append(keywords, kw)
	}

	for _, m := range percentRe.FindAllString(lower, -1) {
		add(spaceRe.ReplaceAllString(m, ""))
	}
	for _, m := range amountRe.FindAllString(lower, -1) {
		add(spaceRe.ReplaceAllString(m, " "))
	}
	for _, m := range tenureRe.FindAllString(lower, -1) {
		add(spaceRe.ReplaceAllString(m, " "))
	}

	for _, term := range domainTerms {
		if len(keywords) >= maxKeywords {
			break
		}
		if strings.Contains(lower, term) {
			add(term)
		}
	}

	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}
	return keywords
}
