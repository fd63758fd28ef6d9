package llm

import (
	"context"
	"math"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	go_openai "github.com/sashabaranov/go-openai"
)

const (
	GroqBaseURL       = "https://api.groq.com/openai/v1"
	DefaultGroqModel  = "llama-3.1-8b-instant"
	DefaultAudioModel = "whisper-large-v3"
)

// OpenAIClient talks to any OpenAI-compatible chat endpoint (Groq, OpenAI, ...).
type OpenAIClient struct {
	client      *go_openai.Client
	model       string
	audioModel  string
	temperature float32
}

type OpenAIOption func(*OpenAIClient)

func WithTemperature(t float32) OpenAIOption {
	return func(c *OpenAIClient) { c.temperature = t }
}

func WithAudioModel(model string) OpenAIOption {
	return func(c *OpenAIClient) {
		if model != "" {
			c.audioModel = model
		}
	}
}

// NewOpenAIClient builds a client against baseURL. An empty baseURL uses the
// library default (api.openai.com).
func NewOpenAIClient(apiKey, baseURL, model string, opts ...OpenAIOption) *OpenAIClient {
	cfg := go_openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	c := &OpenAIClient{
		client:     go_openai.NewClientWithConfig(cfg),
		model:      model,
		audioModel: DefaultAudioModel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewGroqClient is NewOpenAIClient pointed at Groq's OpenAI-compatible API.
func NewGroqClient(apiKey, model string, opts ...OpenAIOption) *OpenAIClient {
	if model == "" {
		model = DefaultGroqModel
	}
	return NewOpenAIClient(apiKey, GroqBaseURL, model, opts...)
}

func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	// Temperature is omitempty in the request struct, so an exact 0 would be
	// dropped and the provider default (1) used instead.
	temperature := c.temperature
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}
	req := go_openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: temperature,
		Messages: []go_openai.ChatCompletionMessage{
			{Role: go_openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	log.Debug().Str("model", c.model).Int("prompt_len", len(prompt)).Msg("chat completion")
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", failureFromOpenAI(err)
	}
	if len(resp.Choices) == 0 {
		return "", NewFailure(0, errors.New("no choices in completion response"))
	}
	return resp.Choices[0].Message.Content, nil
}

// Transcribe sends an audio file to the provider's whisper endpoint.
func (c *OpenAIClient) Transcribe(ctx context.Context, path string) (string, error) {
	resp, err := c.client.CreateTranscription(ctx, go_openai.AudioRequest{
		Model:    c.audioModel,
		FilePath: path,
		Language: "en",
		Format:   go_openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", failureFromOpenAI(err)
	}
	return resp.Text, nil
}

func failureFromOpenAI(err error) *Failure {
	status := 0
	var apiErr *go_openai.APIError
	var reqErr *go_openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	return NewFailure(status, err)
}
