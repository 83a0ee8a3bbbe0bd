package ingest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsFAQSection(t *testing.T) {
	assert.True(t, IsFAQSection("Frequently Asked Questions\nQ1. What is the rate?"))
	assert.True(t, IsFAQSection("अक्सर पूछे जाने वाले प्रश्न"))
	assert.False(t, IsFAQSection("Eligibility criteria for home loans."))
}

func TestExtractQA_LabeledQuestions(t *testing.T) {
	text := strings.Join([]string{
		"Q1. What is the maximum loan amount?",
		"The maximum loan amount is ₹ 10 lakh under the Tarun scheme.",
		"Q2. Is collateral required?",
		"No collateral is required for loans under this scheme.",
	}, "\n")

	pairs := ExtractQA(text)
	require.Len(t, pairs, 2)
	assert.Equal(t, "What is the maximum loan amount?", pairs[0].Question)
	assert.Contains(t, pairs[0].Answer, "₹ 10 lakh")
	assert.Equal(t, "Is collateral required?", pairs[1].Question)
	assert.Contains(t, pairs[1].Answer, "No collateral")
}

func TestExtractQA_NumberedAndBareQuestions(t *testing.T) {
	text := strings.Join([]string{
		"1. Can I prepay my home loan?",
		"Yes, prepayment is allowed without any penalty on floating rates.",
		"What documents are needed for a home loan?",
		"You need identity proof, address proof, and income statements.",
	}, "\n")

	pairs := ExtractQA(text)
	require.Len(t, pairs, 2)
	assert.Equal(t, "Can I prepay my home loan?", pairs[0].Question)
	assert.Equal(t, "What documents are needed for a home loan?", pairs[1].Question)
}

func TestExtractQA_HindiQuestions(t *testing.T) {
	text := strings.Join([]string{
		"प्रश्न 1: अधिकतम ऋण राशि क्या है?",
		"तरुण योजना के तहत अधिकतम ऋण राशि 10 लाख रुपये है।",
	}, "\n")

	pairs := ExtractQA(text)
	require.Len(t, pairs, 1)
	assert.Equal(t, "अधिकतम ऋण राशि क्या है?", pairs[0].Question)
	assert.Contains(t, pairs[0].Answer, "10 लाख")
}

func TestExtractQA_DocumentOrderPreserved(t *testing.T) {
	text := strings.Join([]string{
		"Is there a processing fee?",
		"Yes, a processing fee of 0.5% applies to all sanctioned amounts.",
		"Q2. What is the tenure?",
		"The maximum tenure is 30 years for salaried applicants.",
	}, "\n")

	pairs := ExtractQA(text)
	require.Len(t, pairs, 2)
	assert.Equal(t, "Is there a processing fee?", pairs[0].Question)
	assert.Equal(t, "What is the tenure?", pairs[1].Question)
}

func TestExtractQA_ShortAnswersDiscarded(t *testing.T) {
	text := "Q1. Is collateral required?\nNo.\n"
	assert.Empty(t, ExtractQA(text))
}

func TestExtractQA_NoQuestions(t *testing.T) {
	assert.Nil(t, ExtractQA("Plain prose about interest rates and tenure."))
}

func TestGroupQAPairs_NeverSplitsAPair(t *testing.T) {
	var pairs []QAPair
	for i := 0; i < 10; i++ {
		pairs = append(pairs, QAPair{
			Question: fmt.Sprintf("Question number %d about the scheme?", i),
			Answer:   strings.Repeat("Detailed answer sentence. ", 8),
		})
	}

	chunks := GroupQAPairs(pairs, 600)
	require.NotEmpty(t, chunks)
	assert.Greater(t, len(chunks), 1)

	for _, chunk := range chunks {
		// Every chunk holds complete Q/A blocks only.
		assert.Equal(t, strings.Count(chunk, "Q: "), strings.Count(chunk, "A: "))
	}

	// Original order across chunk boundaries.
	joined := strings.Join(chunks, "\n\n")
	last := -1
	for i := 0; i < 10; i++ {
		pos := strings.Index(joined, fmt.Sprintf("Question number %d", i))
		require.GreaterOrEqual(t, pos, 0)
		assert.Greater(t, pos, last)
		last = pos
	}
}

func TestGroupQAPairs_OversizedPairGetsOwnChunk(t *testing.T) {
	pairs := []QAPair{
		{Question: "Short question?", Answer: strings.Repeat("long answer ", 100)},
		{Question: "Another question?", Answer: "A reasonably sized answer follows here."},
	}

	chunks := GroupQAPairs(pairs, 200)
	require.Len(t, chunks, 2)
	assert.Contains(t, chunks[0], "Short question?")
	assert.Contains(t, chunks[1], "Another question?")
}

func TestGroupQAPairs_Empty(t *testing.T) {
	assert.Nil(t, GroupQAPairs(nil, 1200))
}
