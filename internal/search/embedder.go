package search

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Embedder maps free text to a fixed-dimension dense vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	Dim() int
}

// ModelEmbedder wraps a pretrained sentence-embedding model served over the
// OpenAI-compatible embeddings API (a local TEI or Ollama instance serving
// all-MiniLM-L6-v2 in the default deployment). The client is constructed once
// at startup and shared across requests; the model itself lives in the serving
// process and is never reloaded here.
type ModelEmbedder struct {
	client     *openai.Client
	model      string
	dim        int
	normalizer *Normalizer
}

func NewModelEmbedder(baseURL, apiKey, model string, dim int, normalizer *Normalizer) *ModelEmbedder {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &ModelEmbedder{
		client:     openai.NewClientWithConfig(cfg),
		model:      model,
		dim:        dim,
		normalizer: normalizer,
	}
}

func (e *ModelEmbedder) Dim() int {
	return e.dim
}

// Embed normalizes text and returns its embedding. Text that normalizes to the
// empty string still embeds (the model's empty-string vector); callers that
// want "no vector" semantics decide that before calling.
func (e *ModelEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	normalized := e.normalizer.Normalize(text)

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{normalized},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding response contained no data")
	}
	raw := resp.Data[0].Embedding
	if len(raw) != e.dim {
		return nil, fmt.Errorf("embedding model returned %d dimensions, want %d", len(raw), e.dim)
	}

	vector := make([]float64, len(raw))
	for i, v := range raw {
		vector[i] = float64(v)
	}
	return vector, nil
}

// Warmup embeds a short probe string so the first user request does not pay
// for model load on the serving side, and so a misconfigured endpoint fails
// at startup instead of mid-request.
func (e *ModelEmbedder) Warmup(ctx context.Context) error {
	_, err := e.Embed(ctx, "warmup")
	return err
}
