package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	openaigo "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/fundup7/bharatqa-backend/internal/domain/port"
)

// Backend is one model tier reached through the OpenAI-compatible chat
// completions API. The backend priority list is a list of model identifiers
// sharing a single client.
type Backend struct {
	model  string
	client openaigo.Client
}

type ClientConfig struct {
	APIKey  string
	BaseURL string
}

// NewBackends builds one Backend per model identifier, in priority order.
func NewBackends(cfg ClientConfig, models []string) []port.InferenceBackend {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openaigo.NewClient(opts...)

	backends := make([]port.InferenceBackend, 0, len(models))
	for _, m := range models {
		backends = append(backends, &Backend{model: m, client: client})
	}
	return backends
}

func (b *Backend) Name() string { return b.model }

// Complete sends the prompt, attaching frames as base64 data-URI image parts
// for the multimodal variant. A model that does not support image input will
// error here, which the orchestrator treats as a soft failure.
func (b *Backend) Complete(ctx context.Context, req port.InferenceRequest) (string, error) {
	var message openaigo.ChatCompletionMessageParamUnion
	if len(req.ImagePaths) == 0 {
		message = openaigo.UserMessage(req.Prompt)
	} else {
		parts := []openaigo.ChatCompletionContentPartUnionParam{
			openaigo.TextContentPart(req.Prompt),
		}
		for _, path := range req.ImagePaths {
			uri, err := encodeImageDataURI(path)
			if err != nil {
				return "", err
			}
			parts = append(parts, openaigo.ImageContentPart(
				openaigo.ChatCompletionContentPartImageImageURLParam{URL: uri},
			))
		}
		message = openaigo.UserMessage(parts)
	}

	resp, err := b.client.Chat.Completions.New(ctx, openaigo.ChatCompletionNewParams{
		Messages:    []openaigo.ChatCompletionMessageParamUnion{message},
		Model:       b.model,
		Temperature: openaigo.Float(0.3),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func encodeImageDataURI(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read frame %s: %w", path, err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data), nil
}
