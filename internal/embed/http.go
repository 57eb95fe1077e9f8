package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	envAPIKey  = "EMBEDDING_API_KEY"
	envModel   = "EMBEDDING_MODEL"
	envBaseURL = "EMBEDDING_BASE_URL"

	defaultModel   = "text-embedding-3-small"
	defaultBaseURL = "https://api.openai.com/v1/embeddings"
	timeoutSecs    = 30

	maxRetries     = 3
	retryBaseDelay = 500 * time.Millisecond
)

// HTTPEmbedder calls an OpenAI-compatible /embeddings endpoint.
type HTTPEmbedder struct {
	apiKey  string
	model   string
	baseURL string
	dim     int
	http    *http.Client
	logger  zerolog.Logger
}

// NewHTTPEmbedderFromEnv builds an HTTPEmbedder from EMBEDDING_API_KEY /
// EMBEDDING_MODEL / EMBEDDING_BASE_URL env vars, the way the teacher's
// NewAnthropicFromEnv reads ANTHROPIC_API_KEY.
func NewHTTPEmbedderFromEnv(logger zerolog.Logger) (*HTTPEmbedder, error) {
	key := strings.TrimSpace(os.Getenv(envAPIKey))
	if key == "" {
		return nil, fmt.Errorf("missing %s", envAPIKey)
	}
	model := strings.TrimSpace(os.Getenv(envModel))
	if model == "" {
		model = defaultModel
	}
	baseURL := strings.TrimSpace(os.Getenv(envBaseURL))
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &HTTPEmbedder{
		apiKey:  key,
		model:   model,
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeoutSecs * time.Second},
		logger:  logger,
	}, nil
}

func (e *HTTPEmbedder) Dim() int { return e.dim }

func (e *HTTPEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay * time.Duration(1<<uint(attempt-1))
			e.logger.Info().Int("attempt", attempt).Dur("delay", delay).Msg("retrying embedding API call")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		payload := embedRequest{Model: e.model, Input: texts}
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal embed payload: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("create embed request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+e.apiKey)

		resp, err := e.http.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("embed http request: %w", err)
			if attempt < maxRetries {
				continue
			}
			return nil, lastErr
		}

		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read embed response: %w", err)
			if attempt < maxRetries {
				continue
			}
			return nil, lastErr
		}

		if resp.StatusCode >= 400 {
			lastErr = fmt.Errorf("embedding api %d: %s", resp.StatusCode, string(data))
			if (resp.StatusCode == 429 || resp.StatusCode >= 500) && attempt < maxRetries {
				continue
			}
			return nil, lastErr
		}

		var out embedResponse
		if err := json.Unmarshal(data, &out); err != nil {
			lastErr = fmt.Errorf("parse embed response: %w", err)
			if attempt < maxRetries {
				continue
			}
			return nil, lastErr
		}

		vectors := make([][]float32, len(out.Data))
		for _, d := range out.Data {
			if d.Index < 0 || d.Index >= len(vectors) {
				continue
			}
			v := make([]float32, len(d.Embedding))
			for i, f := range d.Embedding {
				v[i] = float32(f)
			}
			l2Normalize(v)
			vectors[d.Index] = v
		}
		if len(vectors) > 0 && e.dim == 0 {
			e.dim = len(vectors[0])
		}
		return vectors, nil
	}
	return nil, fmt.Errorf("embed max retries exceeded: %w", lastErr)
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}
