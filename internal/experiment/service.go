package experiment

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/content-optimizer/internal/model"
)

// Service coordinates variant generation, persistence, and result
// bookkeeping for experiments.
type Service struct {
	store Store
	gen   *Generator
}

func NewService(store Store, gen *Generator) *Service {
	return &Service{store: store, gen: gen}
}

// CreateRequest describes a new experiment.
type CreateRequest struct {
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Content      string            `json:"content"`
	ContentType  model.ContentType `json:"content_type"`
	Platform     string            `json:"platform"`
	TestType     model.TestType    `json:"test_type"`
	VariantCount int               `json:"variant_count"`
}

const (
	minVariantCount = 2
	maxVariantCount = 10
)

// Validate reports every problem with the request at once.
func (r CreateRequest) Validate() error {
	var problems []string

	if strings.TrimSpace(r.Name) == "" {
		problems = append(problems, "name is required")
	} else if len(strings.TrimSpace(r.Name)) < 3 {
		problems = append(problems, "name must be at least 3 characters")
	}
	if strings.TrimSpace(r.Description) == "" {
		problems = append(problems, "description is required")
	}
	if strings.TrimSpace(r.Content) == "" {
		problems = append(problems, "content is required")
	}
	if !model.ValidContentType(r.ContentType) {
		problems = append(problems, "content_type must be one of: blog, social, newsletter")
	}
	if !model.ValidTestType(r.TestType) {
		problems = append(problems, "test_type must be one of: title, description, cta, full_content")
	}
	if r.VariantCount < minVariantCount || r.VariantCount > maxVariantCount {
		problems = append(problems, "variant_count must be between 2 and 10")
	}

	if len(problems) > 0 {
		return eris.New("invalid experiment: " + strings.Join(problems, "; "))
	}
	return nil
}

// Create generates variants for the request and persists a new draft
// experiment. Generation failures abort the create; nothing is stored.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*model.Experiment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	variants, err := s.gen.GenerateVariants(ctx, req.Content, req.TestType, req.VariantCount)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	exp := &model.Experiment{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		ContentType: req.ContentType,
		Platform:    req.Platform,
		TestType:    req.TestType,
		Status:      model.StatusDraft,
		Variants:    variants,
		Results:     []model.VariantResult{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, exp); err != nil {
		return nil, err
	}

	zap.L().Info("experiment created",
		zap.String("id", exp.ID),
		zap.String("name", exp.Name),
		zap.Int("variants", len(exp.Variants)))
	return exp, nil
}

// ResultInput carries raw counters for one variant.
type ResultInput struct {
	VariantID   string `json:"variant_id"`
	Impressions int    `json:"impressions"`
	Clicks      int    `json:"clicks"`
	Conversions int    `json:"conversions"`
}

// RecordResult upserts performance counters for a variant, deriving the
// rate metrics from the raw counts.
func (s *Service) RecordResult(ctx context.Context, experimentID string, in ResultInput) (*model.Experiment, error) {
	if in.Impressions < 0 || in.Clicks < 0 || in.Conversions < 0 {
		return nil, eris.New("result counters must be non-negative")
	}

	exp, err := s.store.Get(ctx, experimentID)
	if err != nil {
		return nil, err
	}
	if exp == nil {
		return nil, notFound(experimentID)
	}
	if exp.VariantByID(in.VariantID) == nil {
		return nil, eris.Errorf("variant not found: %s", in.VariantID)
	}

	result := deriveResult(in)
	results := upsertResult(exp.Results, result)

	return s.store.Update(ctx, experimentID, Update{Results: results})
}

func deriveResult(in ResultInput) model.VariantResult {
	r := model.VariantResult{
		VariantID:   in.VariantID,
		Impressions: in.Impressions,
		Clicks:      in.Clicks,
		Conversions: in.Conversions,
	}
	if in.Impressions > 0 {
		r.CTR = float64(in.Clicks) / float64(in.Impressions) * 100
		r.ConversionRate = float64(in.Conversions) / float64(in.Impressions) * 100
	}
	r.EngagementScore = r.CTR*0.3 + r.ConversionRate*0.7
	return r
}

func upsertResult(results []model.VariantResult, result model.VariantResult) []model.VariantResult {
	for i := range results {
		if results[i].VariantID == result.VariantID {
			results[i] = result
			return results
		}
	}
	return append(results, result)
}

// stampSignificance records the measured confidence on the
// highest-engagement result. Returns nil when there is nothing to stamp
// so the update leaves results untouched.
func stampSignificance(results []model.VariantResult, confidence float64) []model.VariantResult {
	if len(results) < 2 || confidence == 0 {
		return nil
	}
	stamped := make([]model.VariantResult, len(results))
	copy(stamped, results)
	top := 0
	for i := range stamped {
		if stamped[i].EngagementScore > stamped[top].EngagementScore {
			top = i
		}
	}
	stamped[top].StatisticalSignificance = confidence
	return stamped
}

// Complete analyzes a running experiment and marks it completed. A
// winner is recorded only when the analysis reaches the significance
// threshold.
func (s *Service) Complete(ctx context.Context, experimentID string) (*model.Experiment, *model.Verdict, error) {
	exp, err := s.store.Get(ctx, experimentID)
	if err != nil {
		return nil, nil, err
	}
	if exp == nil {
		return nil, nil, notFound(experimentID)
	}
	if exp.Status != model.StatusRunning {
		return nil, nil, eris.Errorf("experiment %s is %s, only running experiments can be completed",
			experimentID, exp.Status)
	}

	verdict := AnalyzeResults(exp)

	status := model.StatusCompleted
	now := time.Now().UTC()
	upd := Update{
		Status:          &status,
		EndDate:         &now,
		ConfidenceLevel: &verdict.Confidence,
		Results:         stampSignificance(exp.Results, verdict.Confidence),
	}
	if verdict.Winner != nil {
		upd.WinnerVariantID = verdict.Winner
	}

	updated, err := s.store.Update(ctx, experimentID, upd)
	if err != nil {
		return nil, nil, err
	}

	zap.L().Info("experiment completed",
		zap.String("id", experimentID),
		zap.Float64("confidence", verdict.Confidence),
		zap.Bool("winner_found", verdict.Winner != nil))
	return updated, verdict, nil
}
