package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

const (
	DefaultOllamaURL   = "http://localhost:11434"
	DefaultOllamaModel = "llama3"
)

// request body for Ollama
type ollamaRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Options map[string]any `json:"options,omitempty"`
}

// Ollama streaming response chunks look like { "response": "...", "done": false }
// We only care about "response".
type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// OllamaClient is a Gateway backed by a local Ollama server. It needs no credential.
type OllamaClient struct {
	BaseURL     string
	Model       string
	Temperature float64
	HTTPClient  *http.Client
}

func NewOllamaClient(baseURL, model string) *OllamaClient {
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	return &OllamaClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Model:      model,
		HTTPClient: http.DefaultClient,
	}
}

func (o *OllamaClient) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody, err := json.Marshal(ollamaRequest{
		Model:   o.Model,
		Prompt:  prompt,
		Options: map[string]any{"temperature": o.Temperature},
	})
	if err != nil {
		return "", NewFailure(0, errors.Wrap(err, "marshal ollama request"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BaseURL+"/api/generate", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", NewFailure(0, errors.Wrap(err, "creating ollama request"))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.HTTPClient.Do(req)
	if err != nil {
		return "", NewFailure(0, errors.Wrap(err, "calling ollama"))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", NewFailure(resp.StatusCode, errors.Errorf("ollama error: %s", strings.TrimSpace(string(body))))
	}

	// Read streaming response
	var out strings.Builder
	decoder := json.NewDecoder(resp.Body)
	for {
		var chunk ollamaResponse
		if err := decoder.Decode(&chunk); err == io.EOF {
			break
		} else if err != nil {
			return "", NewFailure(0, errors.Wrap(err, "decoding ollama response"))
		}
		if chunk.Error != "" {
			return "", NewFailure(0, errors.New(chunk.Error))
		}
		out.WriteString(chunk.Response)
		if chunk.Done {
			break
		}
	}
	return out.String(), nil
}
