package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/r2ready/internal/catalog"
	"github.com/sells-group/r2ready/internal/engine"
	"github.com/sells-group/r2ready/internal/scoring"
	"github.com/sells-group/r2ready/internal/store"
	"github.com/sells-group/r2ready/pkg/notion"
)

// env bundles the wired dependencies a command needs: the store, the
// validated catalog snapshot, and an orchestrator over both.
type env struct {
	Store    store.Store
	Snapshot *catalog.Snapshot
	Resolver *catalog.Resolver
	Orch     *engine.Orchestrator
}

func (e *env) Close() {
	_ = e.Store.Close()
}

// Strategy resolves the scoring strategy from config.
func (e *env) Strategy() (scoring.Strategy, error) {
	return scoring.StrategyByName(cfg.Engine.Strategy)
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		path := cfg.Store.Path
		if path == "" {
			path = "r2ready.db"
		}
		return store.NewSQLite(path)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// loadSnapshot loads and validates the catalog. With source "notion" the
// question catalog comes from the Notion database while flags, rules, and
// scoring configs stay file-authored; the merged snapshot is re-validated
// as a whole.
func loadSnapshot(ctx context.Context) (*catalog.Snapshot, *catalog.Resolver, error) {
	snap, resolver, err := catalog.Load(cfg.Catalog.Dir)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Catalog.Source == "notion" {
		if cfg.Notion.Token == "" {
			return nil, nil, eris.New("notion token is required (R2READY_NOTION_TOKEN)")
		}
		client := notion.NewClient(cfg.Notion.Token)
		questions, err := catalog.LoadQuestionsFromNotion(ctx, client, cfg.Notion.QuestionDB)
		if err != nil {
			return nil, nil, err
		}
		snap.Questions = questions
		if err := catalog.Validate(snap); err != nil {
			return nil, nil, err
		}
	}

	return snap, resolver, nil
}

func initEnv(ctx context.Context) (*env, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}

	snap, resolver, err := loadSnapshot(ctx)
	if err != nil {
		st.Close()
		return nil, err
	}

	orch := engine.New(st, func() (*catalog.Snapshot, error) { return snap, nil })

	return &env{Store: st, Snapshot: snap, Resolver: resolver, Orch: orch}, nil
}
