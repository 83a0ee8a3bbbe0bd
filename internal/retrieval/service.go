package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/finvault-ai/semindex/internal/index"
	"github.com/finvault-ai/semindex/internal/observability"
)

// Searcher is the slice of the vector index the service depends on.
type Searcher interface {
	Search(ctx context.Context, query string, k int, filter index.Filter) ([]index.Result, error)
}

// Service is the retrieval façade: cache lookup, vector search, context
// formatting, cache population.
type Service struct {
	searcher Searcher
	cache    ContextStore
	logger   *observability.Logger
	timeout  time.Duration
}

// NewService creates a retrieval service. A zero timeout defaults to 10s; the
// timeout bounds a slow search, which is then reported as an empty result
// rather than an error.
func NewService(searcher Searcher, cache ContextStore, logger *observability.Logger, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{
		searcher: searcher,
		cache:    cache,
		logger:   logger,
		timeout:  timeout,
	}
}

// GetContext returns a formatted context string for the query. Search
// failures degrade to an empty string; they never raise into the caller's
// response path. Empty results are not cached, so a later index update is
// immediately visible.
func (s *Service) GetContext(ctx context.Context, query string, k int, filter index.Filter) string {
	key := CacheKey(query, k, filter)

	if cached, ok := s.cache.Get(ctx, key); ok {
		s.logger.Debug().Str("key", key).Msg("Context cache hit")
		return cached
	}

	searchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	results, err := s.searcher.Search(searchCtx, query, k, filter)
	if err != nil {
		s.logger.Warn().Err(err).Str("query", query).Msg("Vector search failed, returning empty context")
		return ""
	}
	if len(results) == 0 {
		return ""
	}

	formatted := FormatContext(results)
	s.cache.Put(ctx, key, formatted)
	return formatted
}

// FormatContext renders search results as a consumer-facing context string:
// each chunk is prefixed with its numbered context header, blocks are joined
// by blank lines.
func FormatContext(results []index.Result) string {
	blocks := make([]string, len(results))
	for i, r := range results {
		blocks[i] = fmt.Sprintf("[Source %d: %s]\n%s", i+1, r.Chunk.ContextHeader, r.Chunk.Content)
	}
	return strings.Join(blocks, "\n\n")
}
