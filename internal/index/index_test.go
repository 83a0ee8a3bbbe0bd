package index

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finvault-ai/semindex/internal/embedding"
	"github.com/finvault-ai/semindex/internal/observability"
	"github.com/finvault-ai/semindex/internal/storage"
)

func openTestIndex(t *testing.T, path string) *Index {
	t.Helper()
	idx, err := Open(context.Background(), path, embedding.NewLocalEmbedder(64), observability.Nop(), Options{})
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func mustChunk(t *testing.T, content string, cat storage.Category, section string, seq int) storage.Chunk {
	t.Helper()
	c, err := storage.NewChunk(content, cat, storage.SubCategoryNone, storage.LanguageEnglish, section, seq)
	require.NoError(t, err)
	return *c
}

func seedChunks(t *testing.T) []storage.Chunk {
	t.Helper()
	return []storage.Chunk{
		mustChunk(t, "Home loan interest rates start at 8.5% per annum for salaried applicants.",
			storage.CategoryHomeLoan, "Interest_Rates", 0),
		mustChunk(t, "Home loan applicants must be aged between 21 and 65 years.",
			storage.CategoryHomeLoan, "Eligibility", 0),
		mustChunk(t, "Gold loans are sanctioned against pledged ornaments with a 25% margin.",
			storage.CategoryGoldLoan, "General", 0),
	}
}

func TestIndex_IndexAndSearch(t *testing.T) {
	idx := openTestIndex(t, filepath.Join(t.TempDir(), "loan_en.db"))
	ctx := context.Background()

	n, err := idx.IndexChunks(ctx, seedChunks(t))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	results, err := idx.Search(ctx, "home loan interest rates", 2, Filter{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "home_loan_en_interest_rates_0", results[0].Chunk.ID)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
}

func TestIndex_SearchWithCategoryFilter(t *testing.T) {
	idx := openTestIndex(t, filepath.Join(t.TempDir(), "loan_en.db"))
	ctx := context.Background()

	_, err := idx.IndexChunks(ctx, seedChunks(t))
	require.NoError(t, err)

	results, err := idx.Search(ctx, "loan interest", 10, Filter{Category: storage.CategoryGoldLoan})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, storage.CategoryGoldLoan, results[0].Chunk.Category)
}

func TestIndex_SearchWithSectionFilter(t *testing.T) {
	idx := openTestIndex(t, filepath.Join(t.TempDir(), "loan_en.db"))
	ctx := context.Background()

	_, err := idx.IndexChunks(ctx, seedChunks(t))
	require.NoError(t, err)

	results, err := idx.Search(ctx, "home loan", 10, Filter{Section: "Eligibility"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Eligibility", results[0].Chunk.Section)
}

func TestIndex_ReindexIsIdempotent(t *testing.T) {
	idx := openTestIndex(t, filepath.Join(t.TempDir(), "loan_en.db"))
	ctx := context.Background()

	chunks := seedChunks(t)
	_, err := idx.IndexChunks(ctx, chunks)
	require.NoError(t, err)
	_, err = idx.IndexChunks(ctx, chunks)
	require.NoError(t, err)

	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	results, err := idx.Search(ctx, "home loan", 10, Filter{})
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestIndex_ReopenLoadsPersistedChunks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loan_en.db")
	ctx := context.Background()

	idx := openTestIndex(t, path)
	_, err := idx.IndexChunks(ctx, seedChunks(t))
	require.NoError(t, err)
	require.NoError(t, idx.Close())

	reopened := openTestIndex(t, path)
	results, err := reopened.Search(ctx, "gold loan margin", 1, Filter{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "gold_loan_en_general_0", results[0].Chunk.ID)
}

func TestIndex_SearchEmptyIndex(t *testing.T) {
	idx := openTestIndex(t, filepath.Join(t.TempDir(), "loan_en.db"))

	results, err := idx.Search(context.Background(), "anything", 5, Filter{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestIndex_SearchZeroK(t *testing.T) {
	idx := openTestIndex(t, filepath.Join(t.TempDir(), "loan_en.db"))

	results, err := idx.Search(context.Background(), "anything", 0, Filter{})
	require.NoError(t, err)
	assert.Nil(t, results)
}

func TestIndex_IndexNoChunks(t *testing.T) {
	idx := openTestIndex(t, filepath.Join(t.TempDir(), "loan_en.db"))

	n, err := idx.IndexChunks(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestFilter_Matches(t *testing.T) {
	isTable := true
	chunk := mustChunk(t, "| Feature | Shishu |", storage.CategoryMudraLoan, "Types", 0)
	chunk.IsTable = true

	assert.True(t, Filter{}.Matches(&chunk))
	assert.True(t, Filter{Category: storage.CategoryMudraLoan, IsTable: &isTable}.Matches(&chunk))
	assert.False(t, Filter{Category: storage.CategoryHomeLoan}.Matches(&chunk))
	assert.False(t, Filter{Section: "FAQ"}.Matches(&chunk))

	isFAQ := true
	assert.False(t, Filter{IsFAQ: &isFAQ}.Matches(&chunk))
}
