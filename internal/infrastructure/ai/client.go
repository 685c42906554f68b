// Package ai talks to an OpenAI-compatible chat-completion endpoint.
package ai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"

	"library-backend/internal/config"
	"library-backend/internal/metrics"
	"library-backend/internal/shared/errs"
)

const (
	// SystemPrompt frames every recommendation request.
	SystemPrompt = "You are a helpful book recommendation assistant. " +
		"Always respond with valid JSON containing exactly 3 book recommendations."

	maxTokens     = 1500
	temperature   = 0.7
	maxErrorBody  = 512
	breakerName   = "openai-chat"
	completionsEP = "/chat/completions"
)

// ErrNotConfigured is returned when no API key is available.
var ErrNotConfigured = errs.New(errs.ErrConfiguration, "OPENAI_API_KEY is required for AI recommendations")

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// Client sends prompts to the chat-completion API behind a circuit breaker.
type Client struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
	cb         *gobreaker.CircuitBreaker[[]byte]
}

// NewClient builds a client from cfg. A missing key is not an error here;
// Complete reports it when the feature is actually used.
func NewClient(cfg config.AIConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// A caller that went away says nothing about the provider's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		cb:         cb,
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Complete sends prompt and returns the assistant message content, which
// must itself be a JSON document.
func (c *Client) Complete(ctx context.Context, prompt string) ([]byte, error) {
	if !c.Configured() {
		log.Error().Msg("Missing OPENAI_API_KEY environment variable")
		return nil, ErrNotConfigured
	}

	start := time.Now()
	content, err := c.cb.Execute(func() ([]byte, error) {
		return c.complete(ctx, prompt)
	})

	switch {
	case err == nil:
		metrics.RecordAIRequest("success", time.Since(start))
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()
		return content, nil
	case errors.Is(err, context.Canceled):
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "canceled").Inc()
		return nil, errs.Recommendation("ai completion", err)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
		return nil, errs.Recommendation("ai completion", err)
	default:
		metrics.RecordAIRequest("error", time.Since(start))
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
		return nil, errs.Recommendation("ai completion", err)
	}
}

func (c *Client) complete(ctx context.Context, prompt string) ([]byte, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+completionsEP, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var envelope chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(envelope.Choices) == 0 {
		return nil, errors.New("response has no choices")
	}

	content := stripCodeFence(envelope.Choices[0].Message.Content)
	if !json.Valid([]byte(content)) {
		log.Error().Str("content", truncate(content, maxErrorBody)).Msg("Invalid JSON from AI")
		return nil, errors.New("invalid JSON response from AI")
	}
	return []byte(content), nil
}

// stripCodeFence removes a surrounding ```json fence that chat models like to add.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
