package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalEmbedder_Deterministic(t *testing.T) {
	e := NewLocalEmbedder(128)
	ctx := context.Background()

	a, err := e.EmbedSingle(ctx, "home loan interest rate")
	require.NoError(t, err)
	b, err := e.EmbedSingle(ctx, "home loan interest rate")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 128)
}

func TestLocalEmbedder_UnitNorm(t *testing.T) {
	e := NewLocalEmbedder(64)
	v, err := e.EmbedSingle(context.Background(), "fixed deposit maturity amount")
	require.NoError(t, err)

	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5)
}

func TestLocalEmbedder_SimilarTextScoresHigher(t *testing.T) {
	e := NewLocalEmbedder(256)
	ctx := context.Background()

	query, err := e.EmbedSingle(ctx, "home loan interest rate")
	require.NoError(t, err)
	near, err := e.EmbedSingle(ctx, "interest rate for a home loan")
	require.NoError(t, err)
	far, err := e.EmbedSingle(ctx, "sukanya samriddhi girl child deposit scheme")
	require.NoError(t, err)

	assert.Greater(t, cosine(query, near), cosine(query, far))
}

func TestLocalEmbedder_BatchMatchesSingle(t *testing.T) {
	e := NewLocalEmbedder(64)
	ctx := context.Background()

	batch, err := e.Embed(ctx, []string{"gold loan margin", "ppf tax benefit"})
	require.NoError(t, err)
	require.Len(t, batch, 2)

	single, err := e.EmbedSingle(ctx, "ppf tax benefit")
	require.NoError(t, err)
	assert.Equal(t, single, batch[1])
}

func TestLocalEmbedder_DefaultDimension(t *testing.T) {
	e := NewLocalEmbedder(0)
	assert.Equal(t, 256, e.Dimension())
	assert.Equal(t, "local-hash-v1", e.Model())
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
