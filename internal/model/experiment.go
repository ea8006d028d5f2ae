package model

import "time"

// ExperimentStatus represents the lifecycle state of an experiment.
type ExperimentStatus string

const (
	StatusDraft     ExperimentStatus = "draft"
	StatusRunning   ExperimentStatus = "running"
	StatusCompleted ExperimentStatus = "completed"
	StatusPaused    ExperimentStatus = "paused"
)

// CanTransitionTo reports whether moving from s to next is a legal
// lifecycle transition. Completed is terminal.
func (s ExperimentStatus) CanTransitionTo(next ExperimentStatus) bool {
	switch s {
	case StatusDraft:
		return next == StatusRunning
	case StatusRunning:
		return next == StatusCompleted || next == StatusPaused
	case StatusPaused:
		return next == StatusRunning
	default:
		return false
	}
}

// ContentType identifies the kind of content under test.
type ContentType string

const (
	ContentTypeBlog       ContentType = "blog"
	ContentTypeSocial     ContentType = "social"
	ContentTypeNewsletter ContentType = "newsletter"
)

// ValidContentType reports whether ct is a known content type.
func ValidContentType(ct ContentType) bool {
	switch ct {
	case ContentTypeBlog, ContentTypeSocial, ContentTypeNewsletter:
		return true
	}
	return false
}

// TestType identifies which element of the content is being varied.
type TestType string

const (
	TestTypeTitle       TestType = "title"
	TestTypeDescription TestType = "description"
	TestTypeCTA         TestType = "cta"
	TestTypeFullContent TestType = "full_content"
)

// ValidTestType reports whether tt is a known test type.
func ValidTestType(tt TestType) bool {
	switch tt {
	case TestTypeTitle, TestTypeDescription, TestTypeCTA, TestTypeFullContent:
		return true
	}
	return false
}

// ControlVariantID is the reserved id for the unmodified original content.
const ControlVariantID = "control"

// Variant is one candidate rendering of a piece of content. Immutable
// once created.
type Variant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	Type      TestType  `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// VariantResult holds accumulated traffic counters and derived rates for
// one variant. Updated as impressions arrive; owned by its Experiment.
type VariantResult struct {
	VariantID               string  `json:"variant_id"`
	Impressions             int     `json:"impressions"`
	Clicks                  int     `json:"clicks"`
	Conversions             int     `json:"conversions"`
	CTR                     float64 `json:"ctr"`
	ConversionRate          float64 `json:"conversion_rate"`
	EngagementScore         float64 `json:"engagement_score"`
	StatisticalSignificance float64 `json:"statistical_significance"`
}

// Experiment is an A/B test over content variants. The first variant is
// always the control.
type Experiment struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	ContentType     ContentType      `json:"content_type"`
	Platform        string           `json:"platform,omitempty"`
	TestType        TestType         `json:"test_type"`
	Status          ExperimentStatus `json:"status"`
	Variants        []Variant        `json:"variants"`
	Results         []VariantResult  `json:"results"`
	WinnerVariantID *string          `json:"winner_variant_id,omitempty"`
	ConfidenceLevel float64          `json:"confidence_level"`
	StartDate       *time.Time       `json:"start_date,omitempty"`
	EndDate         *time.Time       `json:"end_date,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// VariantByID returns the variant with the given id, or nil.
func (e *Experiment) VariantByID(id string) *Variant {
	for i := range e.Variants {
		if e.Variants[i].ID == id {
			return &e.Variants[i]
		}
	}
	return nil
}

// Verdict is the advisory outcome of analyzing an experiment's results.
// Winner is non-nil only when Confidence is at least 95; setting the
// experiment's own WinnerVariantID is the caller's decision.
type Verdict struct {
	Winner          *string  `json:"winner"`
	Confidence      float64  `json:"confidence"`
	Insights        []string `json:"insights"`
	Recommendations []string `json:"recommendations"`
}
