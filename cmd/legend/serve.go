package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/okian/legend/internal/adapters/http/api"
	"github.com/okian/legend/internal/adapters/http/swagger"
	service "github.com/okian/legend/internal/app"
	"github.com/okian/legend/internal/config"
	"github.com/okian/legend/pkg/logger"
	"github.com/okian/legend/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 10 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	systemMetricsInterval  = 10 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP game server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := setup(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Addr = addr
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Listen address (overrides LEGEND_ADDR)")
}

func serviceOptions(cfg *config.Config) []service.Option {
	opts := []service.Option{
		service.WithLogger(logger.Named("service")),
		service.WithRosterSource(cfg.RosterSource),
		service.WithRosterCacheTTL(cfg.RosterCacheTTL()),
		service.WithExplicitListThreshold(cfg.ExplicitListThreshold),
		service.WithSessionTTL(cfg.SessionTTL()),
		service.WithQueueSize(cfg.OutcomeQueueSize),
		service.WithWorkerCount(cfg.OutcomeWorkers),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithMaxTopLimit(cfg.MaxTopLimit),
	}
	if cfg.SessionStore == config.StoreRedis {
		opts = append(opts, service.WithRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisPrefix))
	}
	return opts
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	svc := service.New(serviceOptions(cfg)...)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := svc.Stop(stopCtx); err != nil {
			log.Error(stopCtx, "service stop failed", logger.Error(err))
		}
	}()

	router := api.NewServer(svc,
		api.WithLogger(logger.Named("api")),
		api.WithCORS(cfg.AllowedOrigins()...),
		api.WithRateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow()),
	).Router()
	swagger.Register(ctx, router)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(gctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		metrics.RunSystemCollector(gctx, systemMetricsInterval)
		return nil
	})
	g.Go(func() error {
		updateServiceMetrics(gctx, svc)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(context.Background(), "shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	log.Info(context.Background(), "server stopped")
	return err
}

// updateServiceMetrics refreshes gauges derived from service stats and
// prunes expired sessions as a side effect of counting them.
func updateServiceMetrics(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := svc.GetStats(ctx)
			metrics.UpdateActiveSessions(stats.ActiveSessions)
			metrics.UpdateQueueSize(stats.QueueLength)
			metrics.UpdateWorkerCount(stats.Workers)
		}
	}
}
