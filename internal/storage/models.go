// Package storage defines the persisted data model for indexed chunks and the
// per-collection SQLite store.
package storage

import (
	"fmt"
	"strings"
)

// Domain is the coarse document domain a collection belongs to.
type Domain string

const (
	DomainLoan       Domain = "loan"
	DomainInvestment Domain = "investment"
)

// Language is a detected document language tag.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageHindi   Language = "hi"
)

// Category is a canonical product category. Chunks only ever carry values from
// this closed set; raw source strings are normalized before construction.
type Category string

const (
	CategoryHomeLoan       Category = "HOME_LOAN"
	CategoryPersonalLoan   Category = "PERSONAL_LOAN"
	CategoryCarLoan        Category = "CAR_LOAN"
	CategoryTwoWheelerLoan Category = "TWO_WHEELER_LOAN"
	CategoryEducationLoan  Category = "EDUCATION_LOAN"
	CategoryGoldLoan       Category = "GOLD_LOAN"
	CategoryBusinessLoan   Category = "BUSINESS_LOAN"
	CategoryMudraLoan      Category = "BUSINESS_LOAN_MUDRA"
	CategoryAgriLoan       Category = "AGRI_LOAN"
	CategoryPPF            Category = "PPF"
	CategoryFixedDeposit   Category = "FD"
	CategoryRecurringDep   Category = "RD"
	CategorySSY            Category = "SSY"
	CategoryNSC            Category = "NSC"
	CategorySCSS           Category = "SCSS"
	CategoryKVP            Category = "KVP"
	CategoryUnknownLoan    Category = "UNKNOWN_LOAN"
	CategoryUnknownScheme  Category = "UNKNOWN_SCHEME"
)

var validCategories = map[Category]struct{}{
	CategoryHomeLoan: {}, CategoryPersonalLoan: {}, CategoryCarLoan: {},
	CategoryTwoWheelerLoan: {}, CategoryEducationLoan: {}, CategoryGoldLoan: {},
	CategoryBusinessLoan: {}, CategoryMudraLoan: {}, CategoryAgriLoan: {},
	CategoryPPF: {}, CategoryFixedDeposit: {}, CategoryRecurringDep: {},
	CategorySSY: {}, CategoryNSC: {}, CategorySCSS: {}, CategoryKVP: {},
	CategoryUnknownLoan: {}, CategoryUnknownScheme: {},
}

// Valid reports whether the category is part of the closed enumeration.
func (c Category) Valid() bool {
	_, ok := validCategories[c]
	return ok
}

// IsUnknown reports whether the category is a domain-qualified unknown marker.
func (c Category) IsUnknown() bool {
	return c == CategoryUnknownLoan || c == CategoryUnknownScheme
}

// UnknownFor returns the domain-qualified unknown category.
func UnknownFor(d Domain) Category {
	if d == DomainInvestment {
		return CategoryUnknownScheme
	}
	return CategoryUnknownLoan
}

// SubCategory is a finer product variant within a base category.
type SubCategory string

const (
	SubCategoryNone         SubCategory = ""
	SubMudraShishu          SubCategory = "MUDRA_SHISHU"
	SubMudraKishor          SubCategory = "MUDRA_KISHOR"
	SubMudraTarun           SubCategory = "MUDRA_TARUN"
	SubFDTaxSaver           SubCategory = "FD_TAX_SAVER"
	SubFDSeniorCitizen      SubCategory = "FD_SENIOR_CITIZEN"
	SubRDFlexi              SubCategory = "RD_FLEXI"
	SubHomeLoanTopUp        SubCategory = "HOME_LOAN_TOP_UP"
	SubHomeLoanBalanceXfer  SubCategory = "HOME_LOAN_BALANCE_TRANSFER"
)

var validSubCategories = map[SubCategory]struct{}{
	SubCategoryNone: {}, SubMudraShishu: {}, SubMudraKishor: {}, SubMudraTarun: {},
	SubFDTaxSaver: {}, SubFDSeniorCitizen: {}, SubRDFlexi: {},
	SubHomeLoanTopUp: {}, SubHomeLoanBalanceXfer: {},
}

// Valid reports whether the sub-category is part of the closed enumeration.
func (s SubCategory) Valid() bool {
	_, ok := validSubCategories[s]
	return ok
}

// Document is a raw source document handed to the ingestion pipeline.
// Immutable once loaded.
type Document struct {
	Source string
	Domain Domain
	Text   string
}

// Chunk is the atomic retrievable unit produced from a document.
type Chunk struct {
	ID            string      `json:"id"`
	Content       string      `json:"content"`
	Category      Category    `json:"category"`
	SubCategory   SubCategory `json:"sub_category,omitempty"`
	Language      Language    `json:"language"`
	Section       string      `json:"section"`
	ContextHeader string      `json:"context_header"`
	Keywords      []string    `json:"keywords,omitempty"`
	IsTable       bool        `json:"is_table"`
	IsFAQ         bool        `json:"is_faq"`
	// FullTable marks a comparison-table chunk that carries the entire table
	// because exact column slicing failed; precision is degraded but the
	// sub-category remains independently retrievable.
	FullTable bool `json:"full_table,omitempty"`
}

// NewChunk constructs a chunk, rejecting category values outside the closed
// enumeration. The ID is deterministic across re-ingestion runs.
func NewChunk(content string, category Category, sub SubCategory, lang Language, section string, seq int) (*Chunk, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("category %q is not in the canonical enumeration", category)
	}
	if !sub.Valid() {
		return nil, fmt.Errorf("sub-category %q is not in the canonical enumeration", sub)
	}
	if lang != LanguageEnglish && lang != LanguageHindi {
		return nil, fmt.Errorf("unsupported language tag %q", lang)
	}

	c := &Chunk{
		ID:          BuildChunkID(category, lang, section, seq),
		Content:     content,
		Category:    category,
		SubCategory: sub,
		Language:    lang,
		Section:     section,
	}
	c.ContextHeader = buildContextHeader(category, sub, section)
	return c, nil
}

// BuildChunkID builds the deterministic chunk identifier
// {category}_{language}_{section}_{sequence}.
func BuildChunkID(category Category, lang Language, section string, seq int) string {
	return fmt.Sprintf("%s_%s_%s_%d",
		strings.ToLower(string(category)),
		lang,
		strings.ToLower(strings.ReplaceAll(section, " ", "_")),
		seq)
}

// buildContextHeader builds the human-readable composite label prefixed to
// chunk content when formatting retrieval results.
func buildContextHeader(category Category, sub SubCategory, section string) string {
	header := humanize(string(category)) + " - " + strings.ReplaceAll(section, "_", " ")
	if sub != SubCategoryNone {
		header += " (" + humanize(string(sub)) + ")"
	}
	return header
}

// humanize converts an enum value like HOME_LOAN to "Home Loan".
func humanize(v string) string {
	words := strings.Split(strings.ToLower(v), "_")
	for i, w := range words {
		if isInitialism(w) {
			words[i] = strings.ToUpper(w)
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func isInitialism(w string) bool {
	switch w {
	case "ppf", "fd", "rd", "ssy", "nsc", "scss", "kvp", "faq":
		return true
	}
	return false
}
