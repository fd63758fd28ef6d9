package processing

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// DefaultEmbeddingDim is the dimension of nomic-embed-text vectors.
const DefaultEmbeddingDim = 768

const (
	DefaultEmbeddingURL   = "http://localhost:11434"
	DefaultEmbeddingModel = "nomic-embed-text"
)

// Embedder turns text into fixed-size vectors.
type Embedder interface {
	EmbedChunks(ctx context.Context, chunks []string) ([][]float32, error)
	QueryEmbedding(ctx context.Context, query string) ([]float32, error)
}

// request struct for Ollama API
type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// response struct from Ollama API
type ollamaResponse struct {
	Embedding []float32 `json:"embedding"`
}

// OllamaEmbedder calls a local Ollama server's embeddings endpoint.
type OllamaEmbedder struct {
	BaseURL    string
	Model      string
	Dim        int
	HTTPClient *http.Client
}

var _ Embedder = (*OllamaEmbedder)(nil)

func NewOllamaEmbedder(baseURL, model string, dim int) *OllamaEmbedder {
	if baseURL == "" {
		baseURL = DefaultEmbeddingURL
	}
	if model == "" {
		model = DefaultEmbeddingModel
	}
	if dim <= 0 {
		dim = DefaultEmbeddingDim
	}
	return &OllamaEmbedder{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Model:      model,
		Dim:        dim,
		HTTPClient: http.DefaultClient,
	}
}

// EmbedChunks produces embeddings for each chunk by calling Ollama.
func (e *OllamaEmbedder) EmbedChunks(ctx context.Context, chunks []string) ([][]float32, error) {
	if len(chunks) == 0 {
		return nil, errors.New("no chunks")
	}

	out := make([][]float32, len(chunks))
	for i, chunk := range chunks {
		emb, err := e.embed(ctx, chunk)
		if err != nil {
			return nil, errors.Wrapf(err, "failed embedding chunk %d", i)
		}
		out[i] = emb
	}
	return out, nil
}

// QueryEmbedding produces an embedding for a query string.
func (e *OllamaEmbedder) QueryEmbedding(ctx context.Context, query string) ([]float32, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("empty query")
	}
	return e.embed(ctx, query)
}

func (e *OllamaEmbedder) embed(ctx context.Context, text string) ([]float32, error) {
	data, err := json.Marshal(ollamaRequest{Model: e.Model, Prompt: text})
	if err != nil {
		return nil, errors.Wrap(err, "marshal embedding request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.BaseURL+"/api/embeddings", bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "create embedding request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, errors.Errorf("ollama error: %s", string(body))
	}

	var oResp ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&oResp); err != nil {
		return nil, errors.Wrap(err, "failed decode response")
	}
	if len(oResp.Embedding) != e.Dim {
		return nil, errors.Errorf("expected embedding dim %d, got %d", e.Dim, len(oResp.Embedding))
	}
	return oResp.Embedding, nil
}
