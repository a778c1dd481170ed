package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GeminiProvider implements the Provider interface for Google's Gemini API.
type GeminiProvider struct {
	modelName string
	client    *genai.Client
	logger    Logger
}

// NewGeminiProvider creates a Gemini provider using the official client.
func NewGeminiProvider(ctx context.Context, apiKey, modelName string, logger Logger) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, errors.New("a valid Gemini API key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}
	if logger == nil {
		logger = &DefaultLogger{}
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		modelName: modelName,
		client:    client,
		logger:    logger,
	}, nil
}

// Name returns the provider name.
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// GenerateText implements the Provider interface.
func (p *GeminiProvider) GenerateText(ctx context.Context, prompt string) (string, error) {
	model := p.client.GenerativeModel(p.modelName)
	model.SetTemperature(0.7)
	model.SetTopP(0.95)
	model.SetMaxOutputTokens(2048)

	p.logger.Debug("Sending prompt to Gemini", "model", p.modelName, "prompt_len", len(prompt))

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", wrapGeminiError(err)
	}

	if len(resp.Candidates) == 0 {
		return "", &APIError{Message: "no content generated"}
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "", &APIError{Message: fmt.Sprintf("content blocked: %s", resp.PromptFeedback.BlockReason)}
	}

	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			text += string(textPart)
		}
	}

	p.logger.Debug("Received response from Gemini", "response_len", len(text))
	return text, nil
}

// Close closes the Gemini client.
func (p *GeminiProvider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

// wrapGeminiError converts client errors into APIError, preserving the HTTP
// status so the retry policy can recognize overload responses.
func wrapGeminiError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &APIError{StatusCode: gerr.Code, Message: gerr.Message}
	}
	return &APIError{Message: err.Error()}
}
