package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finvault-ai/semindex/internal/storage"
)

func mudraComparisonTable() *Table {
	return &Table{
		Header: []string{"Feature", "Shishu", "Kishor", "Tarun"},
		Rows: [][]string{
			{"Loan Amount", "Up to 50000", "50001 to 5 lakh", "5 to 10 lakh"},
			{"Interest Rate", "8.5%", "9.0%", "9.5%"},
		},
	}
}

func TestSplitTable_UnambiguousColumnsProjectPerSubCategory(t *testing.T) {
	norm := NewNormalizer()
	pieces := SplitTable(mudraComparisonTable(), storage.CategoryMudraLoan, norm)

	require.Len(t, pieces, 3)

	bySub := map[storage.SubCategory]TablePiece{}
	for _, p := range pieces {
		assert.Equal(t, storage.CategoryMudraLoan, p.Category)
		assert.False(t, p.FullTable)
		bySub[p.SubCategory] = p
	}
	require.Contains(t, bySub, storage.SubMudraShishu)
	require.Contains(t, bySub, storage.SubMudraKishor)
	require.Contains(t, bySub, storage.SubMudraTarun)

	shishu := bySub[storage.SubMudraShishu]
	assert.Equal(t, []string{"Feature", "Shishu"}, shishu.Table.Header)
	require.Len(t, shishu.Table.Rows, 2)
	assert.Equal(t, []string{"Loan Amount", "Up to 50000"}, shishu.Table.Rows[0])
	assert.Equal(t, []string{"Interest Rate", "8.5%"}, shishu.Table.Rows[1])

	// A sub-category's own values never leak into a sibling's projection.
	kishor := bySub[storage.SubMudraKishor]
	assert.Equal(t, []string{"Loan Amount", "50001 to 5 lakh"}, kishor.Table.Rows[0])
	assert.NotContains(t, kishor.Table.Render(), "Up to 50000")
}

func TestSplitTable_AmbiguousHeaderFallsBackToFullTable(t *testing.T) {
	norm := NewNormalizer()
	table := &Table{
		// One cell names two variants; column slicing is unreliable.
		Header: []string{"Feature", "Shishu / Kishor", "Tarun"},
		Rows: [][]string{
			{"Loan Amount", "Up to 5 lakh", "5 to 10 lakh"},
		},
	}

	pieces := SplitTable(table, storage.CategoryMudraLoan, norm)
	require.Len(t, pieces, 3)
	for _, p := range pieces {
		assert.True(t, p.FullTable)
		assert.Equal(t, table, p.Table)
	}
}

func TestSplitTable_SubCategoriesOnlyInBodyFallsBackToFullTable(t *testing.T) {
	norm := NewNormalizer()
	table := &Table{
		Header: []string{"Scheme", "Loan Amount"},
		Rows: [][]string{
			{"Shishu", "Up to 50000"},
			{"Kishor", "50001 to 5 lakh"},
		},
	}

	pieces := SplitTable(table, storage.CategoryMudraLoan, norm)
	require.Len(t, pieces, 2)
	for _, p := range pieces {
		assert.True(t, p.FullTable)
	}
	subs := []storage.SubCategory{pieces[0].SubCategory, pieces[1].SubCategory}
	assert.Contains(t, subs, storage.SubMudraShishu)
	assert.Contains(t, subs, storage.SubMudraKishor)
}

func TestSplitTable_NoSubCategoriesYieldsSinglePiece(t *testing.T) {
	norm := NewNormalizer()
	table := &Table{
		Header: []string{"Feature", "Value"},
		Rows:   [][]string{{"Margin", "25%"}},
	}

	pieces := SplitTable(table, storage.CategoryGoldLoan, norm)
	require.Len(t, pieces, 1)
	assert.Equal(t, storage.CategoryGoldLoan, pieces[0].Category)
	assert.Equal(t, storage.SubCategoryNone, pieces[0].SubCategory)
	assert.False(t, pieces[0].FullTable)
}

func TestSplitTable_NilTable(t *testing.T) {
	assert.Nil(t, SplitTable(nil, storage.CategoryHomeLoan, NewNormalizer()))
}
