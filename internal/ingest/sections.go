package ingest

import (
	"regexp"
	"sort"
	"strings"
)

// Section is one logical partition of a document.
type Section struct {
	Label string
	Text  string
	Start int
}

// Canonical section labels.
const (
	SectionGeneral       = "General"
	SectionEligibility   = "Eligibility"
	SectionInterestRates = "Interest_Rates"
	SectionDocuments     = "Documents"
	SectionFeatures      = "Features"
	SectionBenefits      = "Benefits"
	SectionApplication   = "Application_Process"
	SectionCharges       = "Charges"
	SectionRepayment     = "Repayment"
	SectionFAQ           = "FAQ"
	SectionTypes         = "Types"
)

// sectionPattern couples a canonical label with its bilingual header regex.
// Headers are lines of their own, optionally numbered, optionally ending in a
// colon.
type sectionPattern struct {
	label string
	re    *regexp.Regexp
}

func headerRe(alternatives string) *regexp.Regexp {
	return regexp.MustCompile(`(?im)^\s*(?:\d+\s*[.)]\s*)?(?:` + alternatives + `)\s*[::]?\s*$`)
}

var sectionPatterns = []sectionPattern{
	{SectionEligibility, headerRe(`eligibility(?:\s+criteria)?|who can apply|पात्रता(?:\s+मानदंड)?`)},
	{SectionInterestRates, headerRe(`interest\s+rates?|rate\s+of\s+interest|ब्याज\s+दर(?:ें)?`)},
	{SectionDocuments, headerRe(`documents?(?:\s+required)?|documentation|आवश्यक\s+दस्तावेज़?|दस्तावेज़?`)},
	{SectionFeatures, headerRe(`(?:key\s+)?features?|highlights?|(?:मुख्य\s+)?विशेषताएं|विशेषताएँ`)},
	{SectionBenefits, headerRe(`benefits?|advantages?|लाभ`)},
	{SectionApplication, headerRe(`how\s+to\s+apply|application\s+process|आवेदन\s+(?:कैसे\s+करें|प्रक्रिया)`)},
	{SectionCharges, headerRe(`fees?\s+(?:and|&)\s+charges|charges|processing\s+fees?|शुल्क(?:\s+एवं\s+प्रभार)?`)},
	{SectionRepayment, headerRe(`repayment(?:\s+terms)?|पुनर्भुगतान`)},
	{SectionFAQ, headerRe(`faqs?|frequently\s+asked\s+questions?|अक्सर\s+पूछे\s+जाने\s+वाले\s+प्रश्न|सामान्य\s+प्रश्न`)},
	{SectionTypes, headerRe(`types?(?:\s+of\s+[\w\s]+)?|variants?|schemes?\s+offered|प्रकार`)},
}

// Numbered sub-category introduction, e.g. "1. Shishu:", which yields a
// compound "Types - <sub-category>" label.
var subIntroRe = regexp.MustCompile(`(?m)^\s*\d+\s*[.)]\s*([\p{L}][\p{L}\p{M}\s\-]{2,40}?)\s*[::]`)

// SplitSections partitions document text into logical sections using the
// bilingual header patterns. Each section's text spans from its header to the
// next header or document end. A document with no headers is one General
// section.
func SplitSections(text string) []Section {
	type marker struct {
		start, end int
		label      string
	}

	var markers []marker
	claimed := make(map[int]bool)

	for _, sp := range sectionPatterns {
		for _, loc := range sp.re.FindAllStringIndex(text, -1) {
			if claimed[loc[0]] {
				continue
			}
			claimed[loc[0]] = true
			markers = append(markers, marker{start: loc[0], end: loc[1], label: sp.label})
		}
	}

	for _, loc := range subIntroRe.FindAllStringSubmatchIndex(text, -1) {
		if claimed[loc[0]] {
			continue
		}
		name := strings.TrimSpace(text[loc[2]:loc[3]])
		if name == "" {
			continue
		}
		claimed[loc[0]] = true
		markers = append(markers, marker{
			start: loc[0],
			end:   loc[0], // keep the introduction line inside the section text
			label: SectionTypes + " - " + name,
		})
	}

	if len(markers) == 0 {
		return []Section{{Label: SectionGeneral, Text: text}}
	}

	sort.Slice(markers, func(i, j int) bool { return markers[i].start < markers[j].start })

	var sections []Section

	// Text before the first header keeps document-level context.
	if lead := strings.TrimSpace(text[:markers[0].start]); lead != "" {
		sections = append(sections, Section{Label: SectionGeneral, Text: lead})
	}

	for i, m := range markers {
		end := len(text)
		if i+1 < len(markers) {
			end = markers[i+1].start
		}
		body := strings.TrimSpace(text[m.end:end])
		if body == "" {
			continue
		}
		sections = append(sections, Section{Label: m.label, Text: body, Start: m.start})
	}

	if len(sections) == 0 {
		return []Section{{Label: SectionGeneral, Text: text}}
	}
	return sections
}
