package inferring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// OpenAI implements the Provider interface using the OpenAI chat completions API
type OpenAI struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewOpenAI creates a new OpenAI Provider instance
func NewOpenAI(apiKey string, modelName string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: openai api key is required", ErrNotConfigured)
	}
	if modelName == "" {
		modelName = "gpt-4o-mini"
	}

	return &OpenAI{
		apiKey:  apiKey,
		model:   modelName,
		baseURL: "https://api.openai.com/v1",
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// NewOpenAIWithBaseURL creates an OpenAI Provider against a custom endpoint,
// used for tests and API-compatible gateways
func NewOpenAIWithBaseURL(apiKey, modelName, baseURL string) (*OpenAI, error) {
	o, err := NewOpenAI(apiKey, modelName)
	if err != nil {
		return nil, err
	}
	if baseURL != "" {
		o.baseURL = strings.TrimSuffix(baseURL, "/")
	}
	return o, nil
}

// openaiChatRequest represents the request body for the chat completions API
type openaiChatRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// openaiChatResponse represents the response from the chat completions API
type openaiChatResponse struct {
	Choices []struct {
		Message openaiMessage `json:"message"`
	} `json:"choices"`
}

// AnalyzeCode asks the model to guess product details for a code
func (o *OpenAI) AnalyzeCode(code string) (*ProductGuess, error) {
	if o.apiKey == "" {
		return nil, fmt.Errorf("%w: openai api key is required", ErrNotConfigured)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	reqBody := openaiChatRequest{
		Model: o.model,
		Messages: []openaiMessage{
			{
				Role:    "user",
				Content: fmt.Sprintf(productAnalysisPrompt, code),
			},
		},
		Temperature: 0.7,
		MaxTokens:   200,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", o.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: calling openai api: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: openai api error (status %d): %s", ErrUnavailable, resp.StatusCode, string(body))
	}

	var chatResp openaiChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		slog.Warn("Undecodable openai response, using fallback guess", "error", err)
		return FallbackGuess(time.Now()), nil
	}

	if len(chatResp.Choices) == 0 || strings.TrimSpace(chatResp.Choices[0].Message.Content) == "" {
		slog.Warn("Empty openai response, using fallback guess", "code", code)
		return FallbackGuess(time.Now()), nil
	}

	guess, err := parseProductJSON(chatResp.Choices[0].Message.Content)
	if err != nil {
		slog.Warn("Unparseable openai response, using fallback guess", "code", code, "error", err)
		return FallbackGuess(time.Now()), nil
	}

	return guess, nil
}

// Close closes the OpenAI provider (no-op for HTTP client)
func (o *OpenAI) Close() error {
	return nil
}
