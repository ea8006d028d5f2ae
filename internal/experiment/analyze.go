package experiment

import (
	"fmt"
	"math"
	"sort"

	"github.com/sells-group/content-optimizer/internal/model"
)

const (
	// Below this sample size per candidate the comparison carries no
	// confidence at all.
	minSampleImpressions = 100

	// Winning variants are only called when the heuristic confidence
	// reaches this threshold.
	winnerConfidenceThreshold = 95
)

// AnalyzeResults compares recorded variant results and advises on a
// winner. It never mutates the experiment; callers decide whether to
// act on the verdict.
func AnalyzeResults(exp *model.Experiment) *model.Verdict {
	if len(exp.Results) < 2 {
		return &model.Verdict{
			Confidence:      0,
			Insights:        []string{"Insufficient data to determine a winner. At least 2 variants need recorded results."},
			Recommendations: []string{"Continue running the experiment to gather more data."},
		}
	}

	ranked := make([]model.VariantResult, len(exp.Results))
	copy(ranked, exp.Results)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].EngagementScore > ranked[j].EngagementScore
	})
	top, runnerUp := ranked[0], ranked[1]

	confidence := confidenceScore(top, runnerUp)

	verdict := &model.Verdict{
		Confidence:      confidence,
		Insights:        buildInsights(top, runnerUp, exp.Results),
		Recommendations: buildRecommendations(confidence, exp.Results, len(exp.Variants)),
	}
	if confidence >= winnerConfidenceThreshold {
		winner := top.VariantID
		verdict.Winner = &winner
	}
	return verdict
}

// confidenceScore is a heuristic, not a statistical test: relative CTR
// separation capped at 95, plus a sample-size bonus capped at 20,
// clamped to [0,100].
func confidenceScore(top, runnerUp model.VariantResult) float64 {
	if top.Impressions < minSampleImpressions || runnerUp.Impressions < minSampleImpressions {
		return 0
	}

	avgCTR := (top.CTR + runnerUp.CTR) / 2
	var base float64
	if avgCTR > 0 {
		base = math.Min(95, math.Abs(top.CTR-runnerUp.CTR)/avgCTR*100)
	}

	minImpressions := math.Min(float64(top.Impressions), float64(runnerUp.Impressions))
	bonus := math.Min(20, minImpressions/1000*20)

	confidence := base + bonus
	if confidence > 100 {
		confidence = 100
	}
	if confidence < 0 {
		confidence = 0
	}
	return confidence
}

func buildInsights(top, runnerUp model.VariantResult, results []model.VariantResult) []string {
	var insights []string

	if runnerUp.EngagementScore > 0 {
		improvement := (top.EngagementScore - runnerUp.EngagementScore) / runnerUp.EngagementScore * 100
		insights = append(insights, fmt.Sprintf(
			"Variant %s outperforms the runner-up by %.1f%% on engagement.",
			top.VariantID, improvement))
	}
	if top.CTR > runnerUp.CTR {
		insights = append(insights, fmt.Sprintf(
			"Variant %s has a %.2f percentage point higher click-through rate.",
			top.VariantID, top.CTR-runnerUp.CTR))
	}
	if top.ConversionRate > runnerUp.ConversionRate {
		insights = append(insights, fmt.Sprintf(
			"Variant %s converts %.2f percentage points better.",
			top.VariantID, top.ConversionRate-runnerUp.ConversionRate))
	}

	var totalImpressions int
	for _, r := range results {
		totalImpressions += r.Impressions
	}
	insights = append(insights, fmt.Sprintf(
		"Experiment has accumulated %d impressions across %d variants.",
		totalImpressions, len(results)))

	return insights
}

func buildRecommendations(confidence float64, results []model.VariantResult, variantCount int) []string {
	var recs []string

	switch {
	case confidence >= winnerConfidenceThreshold:
		recs = append(recs, "Implement the winning variant across your content.")
	case confidence >= 80:
		recs = append(recs, "Consider implementing the leading variant, but monitor performance closely.")
	default:
		recs = append(recs, "Keep the experiment running until a clearer winner emerges.")
	}

	var totalImpressions int
	for _, r := range results {
		totalImpressions += r.Impressions
	}
	if totalImpressions < 1000 {
		recs = append(recs, "Gather more data before drawing conclusions.")
	}
	if variantCount == 2 {
		recs = append(recs, "Test additional variants to explore more of the messaging space.")
	}
	recs = append(recs, "Apply learnings from this experiment to future content.")

	return recs
}
