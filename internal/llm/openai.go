package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	openAIDefaultURL   = "https://api.openai.com/v1"
	openAIDefaultModel = "gpt-4o-mini"
)

type openAIClient struct {
	httpClient
}

func newOpenAIClient(base httpClient) *openAIClient {
	if base.model == "" {
		base.model = openAIDefaultModel
	}
	if base.baseURL == "" {
		base.baseURL = openAIDefaultURL
	}
	return &openAIClient{httpClient: base}
}

func (c *openAIClient) Provider() string {
	return "openai"
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float64         `json:"temperature,omitempty"`
}

type openAIResponse struct {
	Choices []struct {
		Message      openAIMessage `json:"message"`
		FinishReason string        `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

type openAIError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *openAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	body, err := json.Marshal(openAIRequest{
		Model:       c.model,
		Messages:    []openAIMessage{{Role: "user", Content: prompt}},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", unavailable("marshal request: %v", err)
	}

	url := strings.TrimRight(c.baseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", unavailable("create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", unavailable("request failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", unavailable("read response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr openAIError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", unavailable("openai error (%s): %s", apiErr.Error.Type, apiErr.Error.Message)
		}
		return "", unavailable("openai returned status %d", resp.StatusCode)
	}

	var apiResp openAIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", unavailable("parse response: %v", err)
	}
	if len(apiResp.Choices) == 0 || strings.TrimSpace(apiResp.Choices[0].Message.Content) == "" {
		return "", unavailable("openai returned no content")
	}

	log.Debug().
		Str("provider", "openai").
		Str("model", c.model).
		Int("input_tokens", apiResp.Usage.PromptTokens).
		Int("output_tokens", apiResp.Usage.CompletionTokens).
		Dur("latency", time.Since(start)).
		Msg("completion received")

	return apiResp.Choices[0].Message.Content, nil
}
