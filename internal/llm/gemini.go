package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Gemini completes requests with Google's Gemini API.
type Gemini struct {
	client *genai.Client
}

// NewGemini creates a Gemini completer. The returned value holds a network
// client and should be closed when no longer needed.
func NewGemini(ctx context.Context, apiKey, baseURL string) (*Gemini, error) {
	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithEndpoint(baseURL))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{client: client}, nil
}

func (g *Gemini) Name() string { return ProviderGemini }

// Close releases the underlying client.
func (g *Gemini) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func (g *Gemini) Complete(ctx context.Context, req Request) (string, error) {
	model := g.client.GenerativeModel(req.Model)
	model.SetTemperature(float32(req.Temperature))
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", geminiError(err)
	}
	return geminiText(resp)
}

// geminiError attaches a sentinel to a Gemini failure. The client reports
// gRPC status codes, or googleapi errors on the REST path.
func geminiError(err error) error {
	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.ResourceExhausted:
			return wrapStatus(ProviderGemini, http.StatusTooManyRequests, err)
		case codes.NotFound:
			return wrapStatus(ProviderGemini, http.StatusNotFound, err)
		}
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return wrapStatus(ProviderGemini, apiErr.Code, err)
	}
	return fmt.Errorf("%s API call: %w", ProviderGemini, err)
}

// geminiText joins the text parts of the first candidate.
func geminiText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no candidates in gemini response")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text content in gemini response")
	}
	return sb.String(), nil
}
