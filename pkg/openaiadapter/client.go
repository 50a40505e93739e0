package openaiadapter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// NewAPIClient creates the generic OpenAI API client. An empty baseURL keeps
// the SDK default endpoint.
func NewAPIClient(apiKey, baseURL string) openaisdk.Client {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimSuffix(baseURL, "/")+"/"))
	}
	return openaisdk.NewClient(opts...)
}

// ErrNoInput is returned by Embed when called without any text.
var ErrNoInput = errors.New("no input to embed")

// Embedder turns text into vectors with the configured embedding deployment.
type Embedder struct {
	client openaisdk.Client
	model  string
}

// NewEmbedder binds an API client to an embedding deployment name.
func NewEmbedder(client openaisdk.Client, model string) *Embedder {
	return &Embedder{client: client, model: model}
}

// Model returns the embedding deployment name.
func (e *Embedder) Model() string {
	return e.model
}

// Embed returns one vector per input, in input order.
func (e *Embedder) Embed(ctx context.Context, inputs []string) ([][]float64, error) {
	if len(inputs) == 0 {
		return nil, ErrNoInput
	}

	resp, err := e.client.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Model: openaisdk.EmbeddingModel(e.model),
		Input: openaisdk.EmbeddingNewParamsInputUnion{OfArrayOfStrings: inputs},
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) != len(inputs) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(inputs), len(resp.Data))
	}

	vectors := make([][]float64, len(inputs))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(vectors) {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}
