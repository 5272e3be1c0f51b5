// internal/providers/genai/client.go
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	stderrors "shopping-agent/internal/common/errors"
	"shopping-agent/internal/common/logger"
	"shopping-agent/internal/common/metrics"
)

const ProviderName = "genai"

// Client is the language-model provider adapter for a chat-completions
// compatible endpoint (Together / OpenRouter shape).
type Client struct {
	config *Config
	client *http.Client
	logger logger.Logger
}

func NewClient(config *Config, log logger.Logger) *Client {
	return &Client{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		logger: log.WithFields(map[string]interface{}{"provider": ProviderName}),
	}
}

// GenerateText sends one prompt and returns the model's text. There is no
// retry: a failure triggers the caller's deterministic fallback instead,
// keeping chat latency bounded.
func (c *Client) GenerateText(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", stderrors.NewValidationError("prompt must be non-empty")
	}
	if c.config.APIKey == "" {
		return "", stderrors.NewProviderUnavailableError(ProviderName, fmt.Errorf("api key not configured"))
	}

	requestBody := map[string]interface{}{
		"model": c.config.Model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"max_tokens":  maxTokens,
		"temperature": c.config.Temperature,
	}

	body, _ := json.Marshal(requestBody)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.BaseURL+"/v1/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return "", stderrors.NewProviderUnavailableError(ProviderName, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	start := time.Now()
	resp, err := c.client.Do(req)
	metrics.ProviderCallDuration.WithLabelValues(ProviderName).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProviderCallsTotal.WithLabelValues(ProviderName, "error").Inc()
		if ctx.Err() == context.DeadlineExceeded ||
			strings.Contains(err.Error(), "timeout") ||
			strings.Contains(err.Error(), "deadline") ||
			strings.Contains(err.Error(), "Client.Timeout") {
			return "", stderrors.NewLLMTimeoutError()
		}
		return "", stderrors.NewProviderUnavailableError(ProviderName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ProviderCallsTotal.WithLabelValues(ProviderName, strconv.Itoa(resp.StatusCode)).Inc()
		return "", stderrors.NewProviderUnavailableError(ProviderName, fmt.Errorf("completion API returned %d", resp.StatusCode))
	}

	var apiResponse struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		metrics.ProviderCallsTotal.WithLabelValues(ProviderName, "decode_error").Inc()
		return "", stderrors.NewProviderUnavailableError(ProviderName, err)
	}
	metrics.ProviderCallsTotal.WithLabelValues(ProviderName, "ok").Inc()

	if len(apiResponse.Choices) == 0 {
		return "", stderrors.NewProviderUnavailableError(ProviderName, fmt.Errorf("empty choices in completion response"))
	}

	text := strings.TrimSpace(apiResponse.Choices[0].Message.Content)
	if text == "" {
		return "", stderrors.NewProviderUnavailableError(ProviderName, fmt.Errorf("empty completion text"))
	}

	return text, nil
}
