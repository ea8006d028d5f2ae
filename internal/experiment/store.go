// Package experiment manages A/B test experiments: variant generation,
// persistence, and result analysis.
package experiment

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/content-optimizer/internal/model"
)

// Filter specifies criteria for listing experiments. Zero-valued fields
// match everything.
type Filter struct {
	Status      model.ExperimentStatus `json:"status,omitempty"`
	ContentType model.ContentType      `json:"content_type,omitempty"`
	Platform    string                 `json:"platform,omitempty"`
}

// Update is a partial experiment update. Nil fields are left unchanged.
type Update struct {
	Name            *string
	Description     *string
	Platform        *string
	Status          *model.ExperimentStatus
	Results         []model.VariantResult
	WinnerVariantID *string
	ConfidenceLevel *float64
	StartDate       *time.Time
	EndDate         *time.Time
}

// Store defines the persistence interface for experiments.
type Store interface {
	Create(ctx context.Context, exp *model.Experiment) error
	// Get returns (nil, nil) when no experiment has the given id.
	Get(ctx context.Context, id string) (*model.Experiment, error)
	// List returns matching experiments, newest first.
	List(ctx context.Context, filter Filter) ([]model.Experiment, error)
	Update(ctx context.Context, id string, upd Update) (*model.Experiment, error)
	Delete(ctx context.Context, id string) error

	Migrate(ctx context.Context) error
	Close() error
}

// applyUpdate merges upd into exp, enforcing the status lifecycle and
// stamping UpdatedAt. Shared by the store backends so both enforce the
// same transitions.
func applyUpdate(exp *model.Experiment, upd Update, now time.Time) error {
	if upd.Status != nil && *upd.Status != exp.Status {
		if !exp.Status.CanTransitionTo(*upd.Status) {
			return eris.Errorf("experiment: illegal status transition %s -> %s", exp.Status, *upd.Status)
		}
		exp.Status = *upd.Status
		if exp.Status == model.StatusRunning && exp.StartDate == nil {
			start := now
			exp.StartDate = &start
		}
	}
	if upd.Name != nil {
		exp.Name = *upd.Name
	}
	if upd.Description != nil {
		exp.Description = *upd.Description
	}
	if upd.Platform != nil {
		exp.Platform = *upd.Platform
	}
	if upd.Results != nil {
		exp.Results = upd.Results
	}
	if upd.WinnerVariantID != nil {
		exp.WinnerVariantID = upd.WinnerVariantID
	}
	if upd.ConfidenceLevel != nil {
		exp.ConfidenceLevel = *upd.ConfidenceLevel
	}
	if upd.StartDate != nil {
		exp.StartDate = upd.StartDate
	}
	if upd.EndDate != nil {
		exp.EndDate = upd.EndDate
	}
	exp.UpdatedAt = now
	return nil
}

func notFound(id string) error {
	return eris.Errorf("experiment not found: %s", id)
}
