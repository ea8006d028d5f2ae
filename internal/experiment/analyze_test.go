package experiment

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/content-optimizer/internal/model"
)

func resultsExperiment(results ...model.VariantResult) *model.Experiment {
	variants := []model.Variant{
		{ID: model.ControlVariantID, Name: "Control"},
		{ID: "variant_1", Name: "Variant 1"},
	}
	return &model.Experiment{
		ID:       "exp-1",
		Status:   model.StatusRunning,
		Variants: variants,
		Results:  results,
	}
}

func resultFor(variantID string, impressions, clicks, conversions int) model.VariantResult {
	r := model.VariantResult{
		VariantID:   variantID,
		Impressions: impressions,
		Clicks:      clicks,
		Conversions: conversions,
	}
	if impressions > 0 {
		r.CTR = float64(clicks) / float64(impressions) * 100
		r.ConversionRate = float64(conversions) / float64(impressions) * 100
	}
	r.EngagementScore = r.CTR*0.3 + r.ConversionRate*0.7
	return r
}

func TestAnalyzeResults_InsufficientData(t *testing.T) {
	verdict := AnalyzeResults(resultsExperiment(resultFor(model.ControlVariantID, 500, 25, 5)))

	assert.Nil(t, verdict.Winner)
	assert.Zero(t, verdict.Confidence)
	require.Len(t, verdict.Insights, 1)
	assert.Contains(t, verdict.Insights[0], "Insufficient data")
	require.Len(t, verdict.Recommendations, 1)
	assert.Contains(t, verdict.Recommendations[0], "Continue running")
}

func TestAnalyzeResults_SmallSampleNoConfidence(t *testing.T) {
	verdict := AnalyzeResults(resultsExperiment(
		resultFor(model.ControlVariantID, 99, 2, 0),
		resultFor("variant_1", 99, 20, 5),
	))

	assert.Zero(t, verdict.Confidence)
	assert.Nil(t, verdict.Winner)
}

func TestAnalyzeResults_ClearWinner(t *testing.T) {
	verdict := AnalyzeResults(resultsExperiment(
		resultFor(model.ControlVariantID, 5000, 50, 5),
		resultFor("variant_1", 5000, 500, 100),
	))

	require.NotNil(t, verdict.Winner)
	assert.Equal(t, "variant_1", *verdict.Winner)
	assert.GreaterOrEqual(t, verdict.Confidence, 95.0)
	assert.LessOrEqual(t, verdict.Confidence, 100.0)

	joined := strings.Join(verdict.Recommendations, " ")
	assert.Contains(t, joined, "Implement the winning variant")
	assert.Contains(t, joined, "Apply learnings")
}

func TestAnalyzeResults_WinnerGating(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		impA := 100 + rng.Intn(5000)
		impB := 100 + rng.Intn(5000)
		a := resultFor(model.ControlVariantID, impA, rng.Intn(impA/2+1), rng.Intn(impA/10+1))
		b := resultFor("variant_1", impB, rng.Intn(impB/2+1), rng.Intn(impB/10+1))

		verdict := AnalyzeResults(resultsExperiment(a, b))
		if verdict.Confidence < 95 {
			assert.Nil(t, verdict.Winner,
				"winner must not be set at confidence %.2f", verdict.Confidence)
		} else {
			assert.NotNil(t, verdict.Winner)
		}
	}
}

func TestAnalyzeResults_ConfidenceClamped(t *testing.T) {
	// A tiny average CTR magnifies the relative difference; the sample
	// bonus would push the raw score past 100 without the clamp.
	verdict := AnalyzeResults(resultsExperiment(
		resultFor(model.ControlVariantID, 10000, 1, 0),
		resultFor("variant_1", 10000, 1000, 200),
	))

	assert.LessOrEqual(t, verdict.Confidence, 100.0)
	assert.GreaterOrEqual(t, verdict.Confidence, 0.0)
}

func TestAnalyzeResults_RecommendationLadder(t *testing.T) {
	t.Run("low confidence keeps testing", func(t *testing.T) {
		verdict := AnalyzeResults(resultsExperiment(
			resultFor(model.ControlVariantID, 200, 10, 2),
			resultFor("variant_1", 200, 11, 2),
		))
		joined := strings.Join(verdict.Recommendations, " ")
		assert.Contains(t, joined, "Keep the experiment running")
		assert.Contains(t, joined, "Gather more data")
		assert.Contains(t, joined, "Test additional variants")
	})

	t.Run("large sample drops the data recommendation", func(t *testing.T) {
		verdict := AnalyzeResults(resultsExperiment(
			resultFor(model.ControlVariantID, 5000, 250, 50),
			resultFor("variant_1", 5000, 260, 52),
		))
		joined := strings.Join(verdict.Recommendations, " ")
		assert.NotContains(t, joined, "Gather more data")
	})
}

func TestAnalyzeResults_Insights(t *testing.T) {
	verdict := AnalyzeResults(resultsExperiment(
		resultFor(model.ControlVariantID, 1000, 30, 5),
		resultFor("variant_1", 1000, 60, 12),
	))

	joined := strings.Join(verdict.Insights, " ")
	assert.Contains(t, joined, "variant_1")
	assert.Contains(t, joined, "click-through")
	assert.Contains(t, joined, "converts")
	assert.Contains(t, joined, "2000 impressions")
}

func TestAnalyzeResults_DoesNotMutateExperiment(t *testing.T) {
	exp := resultsExperiment(
		resultFor("variant_1", 1000, 60, 12),
		resultFor(model.ControlVariantID, 1000, 30, 5),
	)
	first := exp.Results[0].VariantID

	AnalyzeResults(exp)

	assert.Equal(t, first, exp.Results[0].VariantID)
	assert.Equal(t, model.StatusRunning, exp.Status)
	assert.Nil(t, exp.WinnerVariantID)
}
