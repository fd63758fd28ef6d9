package llm

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

// Gateway completes a prompt. Implementations return *Failure on error.
type Gateway interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Transcriber turns an audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// Settings selects and configures a provider.
type Settings struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	AudioModel  string
	Temperature float64
}

var ErrUnknownProvider = errors.New("unknown llm provider")

// New constructs the Gateway described by s. Credentials are expected to
// have been validated by the caller.
func New(s Settings) (Gateway, error) {
	switch strings.ToLower(s.Provider) {
	case "", "groq":
		return NewGroqClient(s.APIKey, s.Model,
			WithTemperature(float32(s.Temperature)), WithAudioModel(s.AudioModel)), nil
	case "openai":
		return NewOpenAIClient(s.APIKey, s.BaseURL, s.Model,
			WithTemperature(float32(s.Temperature)), WithAudioModel(s.AudioModel)), nil
	case "ollama":
		c := NewOllamaClient(s.BaseURL, s.Model)
		c.Temperature = s.Temperature
		return c, nil
	default:
		return nil, errors.Wrapf(ErrUnknownProvider, "%q", s.Provider)
	}
}

// GatewayFunc adapts a plain function to Gateway.
type GatewayFunc func(ctx context.Context, prompt string) (string, error)

func (f GatewayFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
