// Package index provides the embedding-backed, metadata-filtered similarity
// index. One Index owns one (domain, language) collection.
package index

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/finvault-ai/semindex/internal/embedding"
	"github.com/finvault-ai/semindex/internal/observability"
	"github.com/finvault-ai/semindex/internal/storage"
)

// Filter narrows a search to chunks whose metadata matches exactly.
type Filter struct {
	Category    storage.Category
	SubCategory storage.SubCategory
	Section     string
	Language    storage.Language
	IsTable     *bool
	IsFAQ       *bool
}

// IsZero reports whether the filter matches everything.
func (f Filter) IsZero() bool {
	return f.Category == "" && f.SubCategory == "" && f.Section == "" &&
		f.Language == "" && f.IsTable == nil && f.IsFAQ == nil
}

// Matches applies the exact-match semantics.
func (f Filter) Matches(c *storage.Chunk) bool {
	if f.Category != "" && c.Category != f.Category {
		return false
	}
	if f.SubCategory != "" && c.SubCategory != f.SubCategory {
		return false
	}
	if f.Section != "" && c.Section != f.Section {
		return false
	}
	if f.Language != "" && c.Language != f.Language {
		return false
	}
	if f.IsTable != nil && c.IsTable != *f.IsTable {
		return false
	}
	if f.IsFAQ != nil && c.IsFAQ != *f.IsFAQ {
		return false
	}
	return true
}

// Result is one similarity search hit.
type Result struct {
	Chunk storage.Chunk
	Score float32
}

// Options configure index behavior.
type Options struct {
	EmbedBatchSize      int
	MaxConcurrentEmbeds int
}

// Index embeds chunk text and persists/searches it. Safe for concurrent
// read-only search; indexing serializes writes.
type Index struct {
	mu       sync.RWMutex
	store    *storage.Store
	embedder embedding.Embedder
	logger   *observability.Logger
	opts     Options

	chunks  []storage.Chunk
	vectors [][]float32
	byID    map[string]int
}

// Open loads the collection at path if it already exists, or creates it.
// Initialization failure is a hard error; ingestion and startup must not
// silently proceed without an index.
func Open(ctx context.Context, path string, embedder embedding.Embedder, logger *observability.Logger, opts Options) (*Index, error) {
	if opts.EmbedBatchSize <= 0 {
		opts.EmbedBatchSize = 64
	}
	if opts.MaxConcurrentEmbeds <= 0 {
		opts.MaxConcurrentEmbeds = 4
	}

	store, err := storage.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open collection %s: %w", path, err)
	}

	chunks, vectors, err := store.LoadAll(ctx)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("load collection %s: %w", path, err)
	}

	idx := &Index{
		store:    store,
		embedder: embedder,
		logger:   logger,
		opts:     opts,
		chunks:   chunks,
		vectors:  vectors,
		byID:     make(map[string]int, len(chunks)),
	}
	for i, c := range idx.chunks {
		idx.byID[c.ID] = i
	}

	logger.Debug().
		Str("path", path).
		Int("chunks", len(chunks)).
		Msg("Opened collection")

	return idx, nil
}

// IndexChunks embeds and persists chunks, then makes them searchable.
// Deterministic IDs make repeat calls an idempotent upsert. Embedding runs on
// a bounded worker pool; persistence happens once, serialized.
func (x *Index) IndexChunks(ctx context.Context, chunks []storage.Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	vectors, err := x.embedAll(ctx, chunks)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}

	if err := x.store.UpsertChunks(ctx, chunks, vectors); err != nil {
		return 0, fmt.Errorf("persist chunks: %w", err)
	}

	x.mu.Lock()
	for i, c := range chunks {
		if pos, ok := x.byID[c.ID]; ok {
			x.chunks[pos] = c
			x.vectors[pos] = vectors[i]
			continue
		}
		x.byID[c.ID] = len(x.chunks)
		x.chunks = append(x.chunks, c)
		x.vectors = append(x.vectors, vectors[i])
	}
	x.mu.Unlock()

	x.logger.Info().
		Int("chunks", len(chunks)).
		Msg("Indexed chunks")

	return len(chunks), nil
}

// embedAll embeds chunk text in parallel batches.
func (x *Index) embedAll(ctx context.Context, chunks []storage.Chunk) ([][]float32, error) {
	vectors := make([][]float32, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(x.opts.MaxConcurrentEmbeds)

	for start := 0; start < len(chunks); start += x.opts.EmbedBatchSize {
		start := start
		end := start + x.opts.EmbedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		g.Go(func() error {
			texts := make([]string, end-start)
			for i := start; i < end; i++ {
				texts[i-start] = chunks[i].Content
			}
			batch, err := x.embedder.Embed(gctx, texts)
			if err != nil {
				return fmt.Errorf("batch %d-%d: %w", start, end, err)
			}
			for i, v := range batch {
				vectors[start+i] = l2Normalize(v)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// Search returns up to k chunks ranked by cosine similarity, narrowed to the
// exact-match filter.
func (x *Index) Search(ctx context.Context, query string, k int, filter Filter) ([]Result, error) {
	if k <= 0 {
		return nil, nil
	}

	qv, err := x.embedder.EmbedSingle(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	qv = l2Normalize(qv)

	x.mu.RLock()
	defer x.mu.RUnlock()

	type scored struct {
		idx   int
		score float32
	}
	var candidates []scored

	for i := range x.chunks {
		if !filter.Matches(&x.chunks[i]) {
			continue
		}
		if len(x.vectors[i]) != len(qv) {
			continue
		}
		candidates = append(candidates, scored{idx: i, score: dot(qv, x.vectors[i])})
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	if k > len(candidates) {
		k = len(candidates)
	}
	results := make([]Result, k)
	for i := 0; i < k; i++ {
		results[i] = Result{
			Chunk: x.chunks[candidates[i].idx],
			Score: candidates[i].score,
		}
	}
	return results, nil
}

// Count returns the number of indexed chunks.
func (x *Index) Count(ctx context.Context) (int64, error) {
	return x.store.Count(ctx)
}

// Path returns the collection's storage location.
func (x *Index) Path() string { return x.store.Path() }

// Close releases the underlying store.
func (x *Index) Close() error {
	return x.store.Close()
}

// dot computes the inner product of two equal-length unit vectors.
func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func l2Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 || sum == 1 {
		return v
	}
	norm := float32(1 / math.Sqrt(sum))
	out := make([]float32, len(v))
	for i := range v {
		out[i] = v[i] * norm
	}
	return out
}
