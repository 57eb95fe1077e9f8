// Package embed defines the Embedder collaborator and two
// implementations: an OpenAI-compatible HTTP client (grounded on the
// teacher's internal/llm retry/backoff shape) and a deterministic local
// vocabulary-hash fallback used when no API key is configured.
package embed

import (
	"context"
	"math"
)

// Embedder is the external collaborator C6 calls to turn text into a
// vector. The vector length d is deterministic for the lifetime of the
// process.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dim() int
}

func l2Normalize(v []float32) {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	if sumSq == 0 {
		return
	}
	norm := math.Sqrt(sumSq)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
}
