package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/finvault-ai/semindex/internal/storage"
)

func TestNormalize_EnglishAliases(t *testing.T) {
	n := NewNormalizer()
	tests := []struct {
		label string
		want  storage.Category
	}{
		{"Home Loan", storage.CategoryHomeLoan},
		{"housing loan", storage.CategoryHomeLoan},
		{"Vehicle Loan", storage.CategoryCarLoan},
		{"Kisan Credit Card", storage.CategoryAgriLoan},
		{"Public Provident Fund", storage.CategoryPPF},
		{"Sukanya Samriddhi Yojana", storage.CategorySSY},
	}
	for _, tt := range tests {
		cat, sub := n.Normalize(tt.label, storage.DomainLoan, "")
		assert.Equal(t, tt.want, cat, "label %q", tt.label)
		assert.Equal(t, storage.SubCategoryNone, sub)
	}
}

func TestNormalize_HindiAliases(t *testing.T) {
	n := NewNormalizer()
	cat, _ := n.Normalize("गृह ऋण", storage.DomainLoan, "")
	assert.Equal(t, storage.CategoryHomeLoan, cat)

	cat, _ = n.Normalize("सावधि जमा", storage.DomainInvestment, "")
	assert.Equal(t, storage.CategoryFixedDeposit, cat)
}

func TestNormalize_LongestAliasWins(t *testing.T) {
	n := NewNormalizer()
	// "mudra loan" must not resolve to the generic business loan even though
	// the surrounding text mentions loans generally.
	cat, _ := n.Normalize("pradhan mantri mudra yojana business loan", storage.DomainLoan, "")
	assert.Equal(t, storage.CategoryMudraLoan, cat)
}

func TestNormalize_SubCategoryTableWinsOverPrimary(t *testing.T) {
	n := NewNormalizer()
	cat, sub := n.Normalize("Shishu", storage.DomainLoan, "")
	assert.Equal(t, storage.CategoryMudraLoan, cat)
	assert.Equal(t, storage.SubMudraShishu, sub)

	// Context-driven refinement: a generic label inside a tax-saver FD section.
	cat, sub = n.Normalize("Scheme Details", storage.DomainInvestment, "The tax saver FD locks funds for 5 years.")
	assert.Equal(t, storage.CategoryFixedDeposit, cat)
	assert.Equal(t, storage.SubFDTaxSaver, sub)
}

func TestNormalize_ShortAliasesOnlyMatchWholeWords(t *testing.T) {
	n := NewNormalizer()
	// "standard" contains "rd" but is not a recurring deposit.
	cat, _ := n.Normalize("standard terms", storage.DomainInvestment, "")
	assert.Equal(t, storage.CategoryUnknownScheme, cat)

	cat, _ = n.Normalize("rd scheme", storage.DomainInvestment, "")
	assert.Equal(t, storage.CategoryRecurringDep, cat)
}

func TestNormalize_UnknownFallbackIsDomainQualified(t *testing.T) {
	n := NewNormalizer()
	cat, sub := n.Normalize("mystery product", storage.DomainLoan, "")
	assert.Equal(t, storage.CategoryUnknownLoan, cat)
	assert.Equal(t, storage.SubCategoryNone, sub)

	cat, _ = n.Normalize("mystery product", storage.DomainInvestment, "")
	assert.Equal(t, storage.CategoryUnknownScheme, cat)
}

func TestNormalizeFilename(t *testing.T) {
	n := NewNormalizer()
	tests := []struct {
		name string
		want storage.Category
	}{
		{"home_loan_details.txt", storage.CategoryHomeLoan},
		{"docs/gold-loan-brochure.md", storage.CategoryGoldLoan},
		{"ppf_scheme_details_v2.txt", storage.CategoryPPF},
		{"random_notes.txt", storage.CategoryUnknownLoan},
	}
	for _, tt := range tests {
		cat, _ := n.NormalizeFilename(tt.name, storage.DomainLoan)
		assert.Equal(t, tt.want, cat, "filename %q", tt.name)
	}
}

func TestNormalize_OutputIsAlwaysCanonical(t *testing.T) {
	n := NewNormalizer()
	inputs := []string{
		"Home Loan", "random junk", "शिशु", "tax saving fd", "", "NSC", "kvp certificate",
	}
	for _, in := range inputs {
		cat, sub := n.Normalize(in, storage.DomainLoan, "")
		assert.True(t, cat.Valid(), "category for %q: %s", in, cat)
		assert.True(t, sub.Valid(), "sub-category for %q: %s", in, sub)
	}
}

func TestSubCategoryKeywords(t *testing.T) {
	n := NewNormalizer()
	kw := n.SubCategoryKeywords(storage.CategoryMudraLoan)
	assert.Equal(t, storage.SubMudraShishu, kw["shishu"])
	assert.Equal(t, storage.SubMudraKishor, kw["kishor"])
	assert.Equal(t, storage.SubMudraTarun, kw["tarun"])
	assert.NotContains(t, kw, "flexi rd")

	assert.Empty(t, n.SubCategoryKeywords(storage.CategoryGoldLoan))
}
