package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dealhawk/dealhawk/internal/auth"
	"github.com/dealhawk/dealhawk/internal/config"
	"github.com/dealhawk/dealhawk/internal/feed"
	"github.com/dealhawk/dealhawk/internal/health"
	"github.com/dealhawk/dealhawk/internal/metrics"
	"github.com/dealhawk/dealhawk/internal/monitor"
	"github.com/dealhawk/dealhawk/internal/notify"
	"github.com/dealhawk/dealhawk/internal/scraper"
	"github.com/dealhawk/dealhawk/internal/store"
	"github.com/dealhawk/dealhawk/internal/version"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the monitor",
		Long: `Start the monitoring loop along with the health/status HTTP server.

The monitor logs into the buying-group site, scrapes the deal dashboard
on a fixed interval, diffs each snapshot against the deal store,
optionally commits to new deals, and delivers notifications until
interrupted.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMonitor(cmd, rootOpts)
		},
	}
}

func runMonitor(cmd *cobra.Command, opts *RootOptions) error {
	logger := setupLogging(opts.Verbose)

	logger.Info("starting dealhawk",
		"version", version.Version,
		"commit", version.Commit,
		"config", opts.ConfigPath,
	)

	cfg, err := config.LoadAndValidate(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	creds, err := auth.LoadCredentials(cfg.Site.Username, cfg.Site.Password)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid site credentials", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	st, err := store.New(ctx, cfg.Store)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open deal store", err)
	}
	defer st.Close()
	logger.Info("deal store ready", "backend", cfg.Store.Backend)

	site := scraper.NewClient(cfg.Site.BaseURL, creds,
		scraper.WithTimeout(cfg.Site.Timeout),
		scraper.WithRetries(cfg.Site.MaxRetries, cfg.Site.RetryBackoff),
		scraper.WithUserAgent(cfg.Site.UserAgent),
		scraper.WithRateLimit(cfg.Site.RequestsPerSecond),
		scraper.WithLogger(logger),
	)

	reg := prometheus.NewRegistry()
	mx := metrics.New(reg)

	hub := feed.NewHub(feed.DefaultConfig(), logger)
	defer hub.Close()

	sinks := notify.Fanout{
		notify.NewDiscord(cfg.Notify.WebhookURL,
			notify.WithUsername(cfg.Notify.Username),
			notify.WithTimeout(cfg.Notify.Timeout),
			notify.WithLogger(logger),
		),
		feed.NewEvents(hub),
	}

	mon := monitor.New(monitor.Config{
		Interval:           cfg.Cycle.Interval,
		AutoCommit:         cfg.Cycle.AutoCommit,
		AutoCommitQuantity: cfg.Cycle.AutoCommitQuantity,
	}, site, st, sinks, logger)
	mon.SetCommitFunc(site.SubmitCommit)
	mon.SetMetrics(mx)

	healthSrv := health.NewServer(health.Config{
		Port:        cfg.Health.Port,
		MetricsPath: cfg.Health.MetricsPath,
	}, mon, st, logger)
	healthSrv.SetFeedHandler(hub)
	healthSrv.SetGatherer(reg)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(healthSrv.ListenAndServe)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return healthSrv.Shutdown(shutdownCtx)
	})

	if err := mon.Start(ctx); err != nil {
		cancel()
		_ = g.Wait()
		return WrapExitError(ExitCommandError, "failed to start monitor", err)
	}

	logger.Info("dealhawk running",
		"instance_id", cfg.Instance.ID,
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Health.Port),
	)

	// Blocks until a shutdown signal lands or the health server fails.
	<-gctx.Done()

	logger.Info("shutting down...")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if err := mon.Stop(stopCtx); err != nil {
		logger.Error("monitor stop failed", "error", err)
	}

	if err := g.Wait(); err != nil {
		return WrapExitError(ExitFailure, "health server error", err)
	}

	logger.Info("dealhawk stopped")
	return nil
}
