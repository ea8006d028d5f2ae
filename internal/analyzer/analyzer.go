// Package analyzer produces SEO, readability, and brand-voice reports
// for a piece of marketing content. The SEO and brand-voice analyzers
// each make one generation call and degrade to deterministic local
// fallbacks when the service fails or returns malformed output; the
// readability analyzer is fully local.
package analyzer

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/sells-group/content-optimizer/internal/model"
	"github.com/sells-group/content-optimizer/pkg/anthropic"
)

// Analyzer runs content analyses against an injected generation client
// and brand lexicon. Safe for concurrent use.
type Analyzer struct {
	ai    anthropic.Client
	brand BrandConfig
}

// New creates an Analyzer.
func New(ai anthropic.Client, brand BrandConfig) *Analyzer {
	return &Analyzer{ai: ai, brand: brand}
}

// AnalyzeAll runs the three analyses concurrently and bundles the
// reports. The readability report never fails; a context cancellation in
// either generation-backed analysis aborts the whole call.
func (a *Analyzer) AnalyzeAll(ctx context.Context, in model.ContentInput) (*model.ContentReport, error) {
	var report model.ContentReport

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		seo, err := a.AnalyzeSEO(ctx, in)
		report.SEO = seo
		return err
	})
	g.Go(func() error {
		report.Readability = AnalyzeReadability(in.Content)
		return nil
	})
	g.Go(func() error {
		voice, err := a.AnalyzeBrandVoice(ctx, in.Content)
		report.BrandVoice = voice
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &report, nil
}
