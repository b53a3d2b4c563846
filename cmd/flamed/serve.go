package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"flamed/internal/config"
	"flamed/internal/httpapi"
	"flamed/internal/manager"
	"flamed/internal/registry"
)

func newServeCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve the text generation HTTP API",
		Example: "  flamed serve --models-dir ./models --addr :8080",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, opts)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.cfg.Addr, "addr", envStr("FLAMED_ADDR", ""), "HTTP listen address (default :8080)")
	f.IntVar(&opts.cfg.MaxConcurrentRequests, "max-concurrent-requests", envInt("FLAMED_MAX_CONCURRENT_REQUESTS", 0), "Concurrent generations per model (default 4)")
	f.IntVar(&opts.cfg.MaxQueueDepth, "max-queue-depth", 0, "Queued requests per model before 429 (default 32)")
	f.IntVar(&opts.cfg.MaxWaitSeconds, "max-wait-seconds", 0, "Longest a request waits for a slot (default 30)")
	f.Int64Var(&opts.cfg.MaxBodyBytes, "max-body-bytes", 0, "Maximum request body size (default 1MiB)")
	f.IntVar(&opts.cfg.RequestTimeoutSeconds, "request-timeout-seconds", 0, "Per-request generation deadline (0 disables)")
	f.BoolVar(&opts.cfg.CORSEnabled, "cors", false, "Enable CORS")
	f.StringVar(&opts.corsCSV, "cors-origins", "", "Comma separated allowed CORS origins")
	return cmd
}

// newManager loads the registry and builds the manager shared by serve and generate.
func newManager(cfg config.Config, log zerolog.Logger) (*manager.Manager, error) {
	reg, err := registry.LoadDir(cfg.ModelsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load models: %w", err)
	}
	if len(reg) == 0 {
		return nil, fmt.Errorf("no model descriptors in %s", cfg.ModelsDir)
	}
	def := cfg.DefaultModel
	if def == "" {
		def = reg[0].ID
	}
	return manager.NewWithConfig(manager.ManagerConfig{
		Registry:      reg,
		DefaultModel:  def,
		MaxQueueDepth: cfg.MaxQueueDepth,
		MaxConcurrent: cfg.MaxConcurrentRequests,
		MaxWait:       time.Duration(cfg.MaxWaitSeconds) * time.Second,
		Limits:        limitsOf(cfg),
		Version:       version,
		Logger:        &log,
	}), nil
}

func serve(parent context.Context, cfg config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	log := newLogger(cfg.LogLevel)
	mgr, err := newManager(cfg, log)
	if err != nil {
		return err
	}

	httpapi.SetLogger(log)
	if os.Getenv("FLAMED_LOG_LEVEL") == "" && cfg.LogLevel != "" {
		httpapi.SetDefaultLogLevel(cfg.LogLevel)
	}
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetRequestTimeoutSeconds(int64(cfg.RequestTimeoutSeconds))
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSAllowedOrigins, cfg.CORSAllowedMethods, cfg.CORSAllowedHeaders)

	// Graceful shutdown (Ctrl+C / SIGTERM); in-flight generations are canceled too.
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	httpapi.SetBaseContext(ctx)

	if err := mgr.Preload(""); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewMux(mgr),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("models_dir", cfg.ModelsDir).Str("default_model", mgr.DefaultModel()).Msg("flamed listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
	}
	_ = mgr.Close()
	log.Info().Msg("flamed stopped")
	return nil
}
