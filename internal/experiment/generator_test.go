package experiment

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/content-optimizer/internal/model"
)

type mockTextService struct {
	mock.Mock
}

func (m *mockTextService) GenerateText(ctx context.Context, prompt, contentCategory string) (string, error) {
	args := m.Called(ctx, prompt, contentCategory)
	return args.String(0), args.Error(1)
}

func TestGenerateVariants_ControlFirst(t *testing.T) {
	ai := &mockTextService{}
	ai.On("GenerateText", mock.Anything, mock.Anything, "title").
		Return("A Better Headline", nil).Times(3)

	gen := NewGenerator(ai)
	variants, err := gen.GenerateVariants(context.Background(), "Original Headline", model.TestTypeTitle, 3)
	require.NoError(t, err)
	require.Len(t, variants, 4)

	assert.Equal(t, model.ControlVariantID, variants[0].ID)
	assert.Equal(t, "Original Headline", variants[0].Content)
	assert.Equal(t, "variant_1", variants[1].ID)
	assert.Equal(t, "variant_2", variants[2].ID)
	assert.Equal(t, "variant_3", variants[3].ID)
	for _, v := range variants {
		assert.Equal(t, model.TestTypeTitle, v.Type)
	}
	ai.AssertExpectations(t)
}

func TestGenerateVariants_FailFast(t *testing.T) {
	ai := &mockTextService{}
	ai.On("GenerateText", mock.Anything, mock.Anything, "cta").
		Return("Try It Free", nil).Once()
	ai.On("GenerateText", mock.Anything, mock.Anything, "cta").
		Return("", eris.New("service unavailable")).Once()

	gen := NewGenerator(ai)
	variants, err := gen.GenerateVariants(context.Background(), "Sign up today", model.TestTypeCTA, 3)
	require.Error(t, err)
	assert.Nil(t, variants)
	assert.Contains(t, err.Error(), "variant 2")
	ai.AssertExpectations(t)
}

func TestGenerateVariants_UnknownTestType(t *testing.T) {
	gen := NewGenerator(&mockTextService{})

	_, err := gen.GenerateVariants(context.Background(), "content", model.TestType("banner"), 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown test type")
}

func TestVariantPrompt_AlternatesAxis(t *testing.T) {
	odd := variantPrompt("Rewrite this.", "content", 1)
	even := variantPrompt("Rewrite this.", "content", 2)

	assert.Contains(t, odd, "compelling")
	assert.Contains(t, even, "specific")
	assert.NotEqual(t, odd, even)
}

func TestGenerateVariants_TrimsResponse(t *testing.T) {
	ai := &mockTextService{}
	ai.On("GenerateText", mock.Anything, mock.Anything, "description").
		Return("\n  A concise description.  \n", nil).Times(2)

	gen := NewGenerator(ai)
	variants, err := gen.GenerateVariants(context.Background(), "Old description", model.TestTypeDescription, 2)
	require.NoError(t, err)
	assert.Equal(t, "A concise description.", variants[1].Content)
}
