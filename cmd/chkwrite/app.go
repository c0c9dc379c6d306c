package main

import (
	"fmt"

	"github.com/cgast/chkwrite/internal/config"
	"github.com/cgast/chkwrite/internal/session"
	"github.com/cgast/chkwrite/pkg/events"
	"github.com/cgast/chkwrite/pkg/lesson"
	"github.com/cgast/chkwrite/pkg/scenario"
	"github.com/cgast/chkwrite/pkg/verify"
)

// app is the shared core every command builds on.
type app struct {
	catalog *scenario.Catalog
	bus     *events.MemoryBus
	engine  *lesson.Engine
}

func newApp(g *globals) (*app, error) {
	catalog, err := scenario.LoadCatalog(g.cfg.Catalog.Path, g.cfg.Catalog.Vars)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	bus := events.NewMemoryBus(g.cfg.History.MaxEntries)
	evaluator := verify.NewEvaluator(
		verify.WithFailFast(g.cfg.Evaluate.FailFast),
		verify.WithLogger(g.logger),
	)
	engine := lesson.NewEngine(catalog,
		lesson.WithEvaluator(evaluator),
		lesson.WithPublisher(bus),
		lesson.WithLogger(g.logger),
	)
	return &app{catalog: catalog, bus: bus, engine: engine}, nil
}

// openStore opens the configured session store.
func openStore(cfg config.Config) (session.Store, error) {
	switch cfg.Store.Backend {
	case config.BackendBolt:
		store, err := session.NewBoltStore(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("open session store: %w", err)
		}
		return store, nil
	default:
		return session.NewMemoryStore(), nil
	}
}
