package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/funnel-cli/internal/scoring"
	"github.com/sells-group/funnel-cli/internal/store"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "funnel.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &cfg.Store.Pool)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initEngine() (*scoring.Engine, error) {
	scoringCfg, err := scoring.Load(cfg.Scoring.ConfigPath)
	if err != nil {
		return nil, err
	}
	return scoring.NewEngine(scoringCfg), nil
}
