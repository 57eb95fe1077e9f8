package embed

import (
	"context"
	"hash/fnv"
	"strings"
)

const localDim = 256

// LocalEmbedder is a deterministic, network-free embedder used when no
// HTTPEmbedder API key is configured. It hashes each token into a fixed
// dimension and accumulates term weight, the same vocabulary-hash shape
// the OpenAI-less local fallback in the pack's embeddings package uses.
type LocalEmbedder struct{}

func NewLocalEmbedder() *LocalEmbedder { return &LocalEmbedder{} }

func (e *LocalEmbedder) Dim() int { return localDim }

func (e *LocalEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = embedOne(t)
	}
	return out, nil
}

func embedOne(text string) []float32 {
	v := make([]float32, localDim)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		idx := h.Sum32() % uint32(localDim)
		v[idx] += 1
	}
	l2Normalize(v)
	return v
}
