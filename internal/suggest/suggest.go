// Package suggest asks an OpenAI-compatible chat endpoint for a daily plan.
package suggest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ashureev/crushcourt/internal/config"
	"github.com/ashureev/crushcourt/internal/domain"
)

// ErrNotConfigured is returned when no AI endpoint is configured.
var ErrNotConfigured = errors.New("ai suggestions not configured")

const systemPrompt = "You are a planning assistant for a couple. From the input, produce: " +
	"1) today's priority tasks (at most 5); " +
	"2) two health reminder suggestions; " +
	"3) two suggestions for matches or dates; " +
	"4) the smallest actionable next step."

const requestTimeout = 30 * time.Second

// Client generates suggestions. A nil *Client is valid and reports
// ErrNotConfigured.
type Client struct {
	api      *openai.Client
	model    string
	provider string
	log      *slog.Logger
}

// New returns a client for cfg, or nil when cfg is incomplete.
func New(logger *slog.Logger, cfg config.AIConfig) *Client {
	if !cfg.Enabled() {
		return nil
	}
	oc := openai.DefaultConfig(strings.TrimSpace(cfg.APIKey))
	oc.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")

	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	logger.Info("ai suggestions enabled", "provider", provider, "model", cfg.Model)
	return &Client{
		api:      openai.NewClientWithConfig(oc),
		model:    strings.TrimSpace(cfg.Model),
		provider: provider,
		log:      logger.With("component", "suggest"),
	}
}

// Input is the user's free-form description of their day.
type Input struct {
	Text string `json:"input" validate:"nonblank,max=4000"`
}

// Suggest returns the model's plan for input.
func (c *Client) Suggest(ctx context.Context, input string) (string, error) {
	if c == nil {
		return "", ErrNotConfigured
	}
	if strings.TrimSpace(input) == "" {
		return "", domain.NewValidationError("input", "required")
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: input},
		},
		Temperature: 0.7,
	})
	if err != nil {
		c.log.ErrorContext(ctx, "chat completion failed", "provider", c.provider, "error", err)
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: no choices returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
