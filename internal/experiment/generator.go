package experiment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/content-optimizer/internal/model"
	"github.com/sells-group/content-optimizer/pkg/anthropic"
)

// Generator produces test variants of a piece of content. The original
// content always becomes the control variant; generated variants follow
// it in order.
type Generator struct {
	ai anthropic.Client
}

func NewGenerator(ai anthropic.Client) *Generator {
	return &Generator{ai: ai}
}

var variantInstructions = map[model.TestType]string{
	model.TestTypeTitle:       "Rewrite the following title. Keep it under 60 characters and preserve the core topic.",
	model.TestTypeDescription: "Rewrite the following description. Keep it between 120 and 160 characters.",
	model.TestTypeCTA:         "Rewrite the following call to action. Keep it short and action-oriented.",
	model.TestTypeFullContent: "Rewrite the following content. Preserve its meaning, structure, and approximate length.",
}

// GenerateVariants returns count+1 variants: the control plus count
// rewrites. Any generation failure aborts the whole batch.
func (g *Generator) GenerateVariants(ctx context.Context, content string, testType model.TestType, count int) ([]model.Variant, error) {
	instruction, ok := variantInstructions[testType]
	if !ok {
		return nil, eris.Errorf("generator: unknown test type %q", testType)
	}

	now := time.Now().UTC()
	variants := make([]model.Variant, 0, count+1)
	variants = append(variants, model.Variant{
		ID:        model.ControlVariantID,
		Name:      "Control",
		Content:   content,
		Type:      testType,
		CreatedAt: now,
	})

	for i := 1; i <= count; i++ {
		prompt := variantPrompt(instruction, content, i)
		text, err := g.ai.GenerateText(ctx, prompt, string(testType))
		if err != nil {
			return nil, eris.Wrapf(err, "generator: variant %d", i)
		}
		variants = append(variants, model.Variant{
			ID:        fmt.Sprintf("variant_%d", i),
			Name:      fmt.Sprintf("Variant %d", i),
			Content:   strings.TrimSpace(text),
			Type:      testType,
			CreatedAt: now,
		})
	}
	return variants, nil
}

// variantPrompt alternates the rewrite axis so successive variants
// explore different directions instead of converging.
func variantPrompt(instruction, content string, n int) string {
	axis := "Make this version more specific and concrete."
	if n%2 == 1 {
		axis = "Make this version more compelling and emotionally engaging."
	}
	return fmt.Sprintf("%s %s Respond with only the rewritten text, no preamble.\n\n%s",
		instruction, axis, content)
}
