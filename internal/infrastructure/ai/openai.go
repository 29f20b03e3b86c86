// Package ai wraps the OpenAI chat completions API for the writing
// assistant. Output is advisory copy for the team, never executed or
// rendered unescaped.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	openAIBaseURL       = "https://api.openai.com/v1"
	chatCompletionsPath = "/chat/completions"
	defaultModel        = "gpt-4o-mini"
)

// ErrAssistantDisabled is returned when the assistant is not configured
var ErrAssistantDisabled = errors.New("ai: assistant is disabled")

// OpenAIConfig holds chat completion settings
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Validate checks the config allows completion calls
func (c *OpenAIConfig) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("ai: API key is required")
	}
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.BaseURL == "" {
		c.BaseURL = openAIBaseURL
	}
	return nil
}

// OpenAIClient calls the chat completions endpoint
type OpenAIClient struct {
	config     *OpenAIConfig
	httpClient *http.Client
}

// NewOpenAIClient creates a new OpenAIClient
func NewOpenAIClient(config *OpenAIConfig) (*OpenAIClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &OpenAIClient{
		config: config,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete sends a system prompt and a user prompt and returns the
// assistant's reply.
func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if userPrompt == "" {
		return "", fmt.Errorf("ai: prompt is required")
	}

	messages := make([]chatMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: userPrompt})

	body := chatCompletionRequest{
		Model:       c.config.Model,
		Messages:    messages,
		Temperature: 0.7,
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("ai: failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.BaseURL+chatCompletionsPath, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("ai: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ai: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ai: failed to read response: %w", err)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return "", fmt.Errorf("ai: failed to parse response: %w", err)
	}
	if completion.Error != nil {
		return "", fmt.Errorf("ai: API error %s: %s", completion.Error.Type, completion.Error.Message)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("ai: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("ai: response carried no choices")
	}
	return completion.Choices[0].Message.Content, nil
}
