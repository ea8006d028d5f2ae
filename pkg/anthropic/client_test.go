package anthropic

import (
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
)

func TestOptions(t *testing.T) {
	c := NewClient("key",
		WithModel("claude-sonnet-4-5-20250929"),
		WithMaxTokens(2048),
		WithRateLimit(5),
	).(*sdkClient)

	assert.Equal(t, "claude-sonnet-4-5-20250929", c.model)
	assert.Equal(t, int64(2048), c.maxTokens)
	assert.NotNil(t, c.limiter)
	assert.Equal(t, float64(5), float64(c.limiter.Limit()))
}

func TestWithRateLimit_Disable(t *testing.T) {
	c := NewClient("key", WithRateLimit(0)).(*sdkClient)
	assert.Nil(t, c.limiter)
}

func TestMessageText(t *testing.T) {
	assert.Equal(t, "", messageText(nil))

	msg := &sdk.Message{
		Content: []sdk.ContentBlockUnion{
			{Type: "text", Text: "first"},
			{Type: "tool_use"},
			{Type: "text", Text: "second"},
		},
	}
	assert.Equal(t, "first\nsecond", messageText(msg))
}
