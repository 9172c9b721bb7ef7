package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAI completes requests with the OpenAI chat completions API.
type OpenAI struct {
	api *openai.Client
}

// NewOpenAI creates an OpenAI completer. SDK-level retries are disabled so
// the caller's cascade decides what happens after a failure.
func NewOpenAI(apiKey, baseURL string) *OpenAI {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)
	return &OpenAI{api: &client}
}

func (o *OpenAI) Name() string { return ProviderOpenAI }

func (o *OpenAI) Complete(ctx context.Context, req Request) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.Prompt),
		},
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	completion, err := o.api.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", wrapStatus(o.Name(), apiErr.StatusCode, err)
		}
		return "", fmt.Errorf("openai API call: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no choices in openai response")
	}
	text := completion.Choices[0].Message.Content
	if text == "" {
		return "", fmt.Errorf("no text content in openai response")
	}
	return text, nil
}
