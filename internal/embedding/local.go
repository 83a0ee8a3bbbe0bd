package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

// LocalEmbedder produces deterministic embeddings from hashed token features.
// No network dependency: the same text always yields the same unit vector, so
// re-ingestion and tests are reproducible. Retrieval quality is below a
// learned model but token overlap still ranks related text together.
type LocalEmbedder struct {
	dimension int
}

// NewLocalEmbedder creates a local embedder with the given dimension.
func NewLocalEmbedder(dimension int) *LocalEmbedder {
	if dimension <= 0 {
		dimension = 256
	}
	return &LocalEmbedder{dimension: dimension}
}

var tokenRe = regexp.MustCompile(`[\p{L}\p{N}]+`)

// Embed generates embeddings for the given texts.
func (e *LocalEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		out[i] = e.embedOne(text)
	}
	return out, nil
}

// EmbedSingle generates an embedding for a single text.
func (e *LocalEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return e.embedOne(text), nil
}

func (e *LocalEmbedder) embedOne(text string) []float32 {
	v := make([]float32, e.dimension)
	tokens := tokenRe.FindAllString(strings.ToLower(text), -1)

	for _, tok := range tokens {
		h := fnv.New32a()
		h.Write([]byte(tok))
		bucket := int(h.Sum32()) % e.dimension
		if bucket < 0 {
			bucket += e.dimension
		}
		// Sign bit from a second hash reduces bucket collisions canceling out.
		h2 := fnv.New32()
		h2.Write([]byte(tok))
		if h2.Sum32()%2 == 0 {
			v[bucket]++
		} else {
			v[bucket]--
		}

		// Character bigrams give partial credit to inflected forms.
		for i := 0; i+2 <= len(tok); i++ {
			hb := fnv.New32a()
			hb.Write([]byte("bi:" + tok[i:i+2]))
			b := int(hb.Sum32()) % e.dimension
			if b < 0 {
				b += e.dimension
			}
			v[b] += 0.25
		}
	}

	return l2Normalize(v)
}

// Model returns the local model identifier.
func (e *LocalEmbedder) Model() string { return "local-hash-v1" }

// Dimension returns the embedding dimension.
func (e *LocalEmbedder) Dimension() int { return e.dimension }

func l2Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v
}

var _ Embedder = (*LocalEmbedder)(nil)
