package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/content-optimizer/internal/analyzer"
	"github.com/sells-group/content-optimizer/internal/experiment"
	"github.com/sells-group/content-optimizer/pkg/anthropic"
)

func initStore(ctx context.Context) (experiment.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "content-optimizer.db"
		}
		return experiment.NewSQLite(dsn)
	case "postgres":
		return experiment.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initAI() (anthropic.Client, error) {
	if cfg.Anthropic.Key == "" {
		return nil, eris.New("anthropic API key is required (OPTIMIZER_ANTHROPIC_KEY)")
	}
	return anthropic.NewClient(cfg.Anthropic.Key,
		anthropic.WithModel(cfg.Anthropic.Model),
		anthropic.WithMaxTokens(cfg.Anthropic.MaxTokens),
		anthropic.WithRateLimit(cfg.Anthropic.RateLimit),
	), nil
}

func initAnalyzer() (*analyzer.Analyzer, error) {
	ai, err := initAI()
	if err != nil {
		return nil, err
	}

	brand := analyzer.DefaultBrandConfig()
	if cfg.Analyzer.BrandFile != "" {
		brand, err = analyzer.LoadBrandConfig(cfg.Analyzer.BrandFile)
		if err != nil {
			return nil, err
		}
	}

	return analyzer.New(ai, brand), nil
}

func initExperimentService(ctx context.Context) (*experiment.Service, experiment.Store, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, nil, eris.Wrap(err, "migrate store")
	}

	ai, err := initAI()
	if err != nil {
		_ = st.Close()
		return nil, nil, err
	}

	return experiment.NewService(st, experiment.NewGenerator(ai)), st, nil
}
