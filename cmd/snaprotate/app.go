package main

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/raoulx24/snaprotate/internal/config"
	"github.com/raoulx24/snaprotate/internal/engine"
	"github.com/raoulx24/snaprotate/internal/fs"
	"github.com/raoulx24/snaprotate/internal/logging"
	"github.com/raoulx24/snaprotate/internal/metrics"
	"github.com/raoulx24/snaprotate/internal/prune"
	"github.com/raoulx24/snaprotate/internal/snapshot"
)

// app holds the components every command builds from the configuration.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	closeFn func() error

	fs      fs.FS
	repo    *snapshot.Repository
	pruner  *prune.Pruner
	creator *snapshot.Creator
	engine  *engine.Engine
	metrics *metrics.Metrics
}

// newApp loads the configuration and wires the components. reg may be nil
// when no metrics are exported.
func newApp(reg prometheus.Registerer, dryRun bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	log, closeFn, err := logging.New(cfg.Logging.Logging())
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	rules, err := cfg.Rules()
	if err != nil {
		_ = closeFn()
		return nil, err
	}

	a := &app{cfg: cfg, log: log, closeFn: closeFn, fs: fs.New()}
	if reg != nil {
		a.metrics = metrics.New(reg)
	}
	a.repo = snapshot.NewRepository(cfg.Store.Root, log.With("component", "repository"))
	a.pruner = prune.New(cfg.Store.Root, a.fs, log.With("component", "pruner"))
	a.creator = snapshot.NewCreator(cfg.Store.Root, a.fs, log.With("component", "creator"),
		snapshot.WithExclude(cfg.Sync.Exclude))
	a.engine = engine.New(rules, a.repo, a.pruner, log.With("component", "engine"),
		engine.WithMetrics(a.metrics),
		engine.WithDryRun(cfg.Retention.DryRun || dryRun),
	)
	return a, nil
}

func (a *app) Close() {
	if err := a.closeFn(); err != nil {
		a.log.Warn("closing log output", "error", err)
	}
}

// sources returns args, or every source in the store when all is set.
func (a *app) sources(args []string, all bool) ([]string, error) {
	switch {
	case all && len(args) > 0:
		return nil, fmt.Errorf("--all cannot be combined with source names")
	case all:
		return a.repo.ListSources()
	case len(args) == 0:
		return nil, fmt.Errorf("name at least one source or pass --all")
	}
	return args, nil
}
