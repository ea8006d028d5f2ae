package analyzer

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// mockGenerator implements anthropic.Client for testing.
type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) GenerateText(ctx context.Context, prompt, contentCategory string) (string, error) {
	args := m.Called(ctx, prompt, contentCategory)
	return args.String(0), args.Error(1)
}
