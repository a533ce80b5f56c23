package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/raoulx24/snaprotate/internal/config"
	"github.com/raoulx24/snaprotate/internal/engine"
	"github.com/raoulx24/snaprotate/internal/mailbox"
	"github.com/raoulx24/snaprotate/internal/priority"
	"github.com/raoulx24/snaprotate/internal/watcher"
	"github.com/raoulx24/snaprotate/internal/worker"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the snapshot daemon",
	Long: `Watch the sync directories, snapshot every finished sync, apply the
retention schedule after each snapshot and on the configured cron schedule.
SIGINT and SIGTERM stop the daemon; SIGHUP reloads the configuration when
configReload.enabled is set.`,
	Args: cobra.NoArgs,
	RunE: serveHandler,
}

func serveHandler(cmd *cobra.Command, args []string) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a, err := newApp(reg, false)
	if err != nil {
		return err
	}
	defer a.Close()
	log := a.log

	log.Info("starting snaprotate",
		"version", Version,
		"git_commit", GitCommit,
		"config", configPath,
		"store", a.cfg.Store.Root,
		"sync", a.cfg.Sync.Root,
		"dry_run", a.cfg.Retention.DryRun,
	)

	if err := priority.Lower(a.cfg.Process.Nice, a.cfg.Process.IdleIO); err != nil {
		log.Warn("lowering priority", "error", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	mb := mailbox.New[string, worker.Job]()
	w := worker.New(a.creator, a.engine, mb, a.metrics, log.With("component", "worker"))
	watch := watcher.New(a.cfg.Sync, a.fs, log.With("component", "watcher"), mb)
	sched := engine.NewScheduler(a.engine, log.With("component", "scheduler"))

	if err := sched.Start(ctx, a.cfg.Retention.Cron); err != nil {
		return err
	}
	defer sched.Stop()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		w.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		if err := watch.Start(ctx); err != nil {
			log.Error("watcher failed", "error", err)
			cancel()
		}
	}()

	if a.cfg.Metrics.Listen != "" {
		srv := metricsServer(a.cfg.Metrics, reg)
		go func() {
			log.Info("serving metrics", "listen", srv.Addr, "path", a.cfg.Metrics.Path)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down")
			wg.Wait()
			log.Info("exit complete")
			return nil

		case <-hup:
			if !a.cfg.ConfigReload.Enabled {
				log.Info("SIGHUP ignored, configReload disabled")
				continue
			}
			reload(ctx, a, watch, sched)
		}
	}
}

// reload applies a changed schedule, dry-run flag, cron expression and
// sync settings. Store root, logging and metrics need a restart.
func reload(ctx context.Context, a *app, watch *watcher.Watcher, sched *engine.Scheduler) {
	cfg, err := config.Load(configPath)
	if err != nil {
		a.log.Error("config reload failed", "error", err)
		return
	}
	rules, err := cfg.Rules()
	if err != nil {
		a.log.Error("config reload failed", "error", err)
		return
	}
	if cfg.Store.Root != a.cfg.Store.Root {
		a.log.Warn("store.root changed, restart to apply", "old", a.cfg.Store.Root, "new", cfg.Store.Root)
	}

	a.engine.UpdateSchedule(rules, cfg.Retention.DryRun)
	watch.UpdateConfig(cfg.Sync)
	if err := sched.Reschedule(ctx, cfg.Retention.Cron); err != nil {
		a.log.Error("retention cron not updated", "error", err)
	}
	if err := priority.Lower(cfg.Process.Nice, cfg.Process.IdleIO); err != nil {
		a.log.Warn("lowering priority", "error", err)
	}

	a.cfg.Sync = cfg.Sync
	a.cfg.Retention = cfg.Retention
	a.cfg.Process = cfg.Process
	a.cfg.ConfigReload = cfg.ConfigReload
	a.log.Info("config reloaded")
}

func metricsServer(cfg config.MetricsConfig, reg *prometheus.Registry) *http.Server {
	path := cfg.Path
	if path == "" {
		path = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	return &http.Server{
		Addr:              cfg.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
