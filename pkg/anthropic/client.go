// Package anthropic wraps the Anthropic API behind the single
// text-generation operation the content engine needs.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client defines the generation operation used by the analyzers and the
// variant generator.
type Client interface {
	// GenerateText sends prompt to the model and returns the text of the
	// response. contentCategory steers the system prompt ("blog",
	// "social", "newsletter", or an analysis category).
	GenerateText(ctx context.Context, prompt, contentCategory string) (string, error)
}

const systemPromptTemplate = `You are a marketing content specialist working on %s content. Follow the instructions exactly. When asked for JSON, respond with a single valid JSON object and nothing else.`

// ClientOption configures the client.
type ClientOption func(*sdkClient)

// WithModel overrides the default model.
func WithModel(model string) ClientOption {
	return func(c *sdkClient) {
		if model != "" {
			c.model = model
		}
	}
}

// WithMaxTokens overrides the default response token budget.
func WithMaxTokens(n int64) ClientOption {
	return func(c *sdkClient) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithRateLimit overrides the default request throttle (2 req/s).
func WithRateLimit(rps float64) ClientOption {
	return func(c *sdkClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			c.limiter = nil
		}
	}
}

// sdkClient implements Client on top of the official SDK.
type sdkClient struct {
	client    sdk.Client
	model     string
	maxTokens int64
	limiter   *rate.Limiter
}

// NewClient creates a generation client. Calls are throttled to 2 req/s
// by default.
func NewClient(apiKey string, opts ...ClientOption) Client {
	c := &sdkClient{
		client:    sdk.NewClient(option.WithAPIKey(apiKey)),
		model:     "claude-haiku-4-5-20251001",
		maxTokens: 1024,
		limiter:   rate.NewLimiter(2, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *sdkClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *sdkClient) GenerateText(ctx context.Context, prompt, contentCategory string) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", eris.Wrap(err, "anthropic: rate limit")
	}

	if contentCategory == "" {
		contentCategory = "general"
	}

	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: c.maxTokens,
		System: []sdk.TextBlockParam{
			{Text: fmt.Sprintf(systemPromptTemplate, contentCategory)},
		},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", eris.Wrap(err, "anthropic: create message")
	}

	return messageText(msg), nil
}

// messageText concatenates the text blocks of a response.
func messageText(msg *sdk.Message) string {
	if msg == nil {
		return ""
	}
	var parts []string
	for _, block := range msg.Content {
		if block.Type == "text" && block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n")
}
