package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"finitefield.org/hanko-blog/internal/config"
	"finitefield.org/hanko-blog/internal/loader"
	"finitefield.org/hanko-blog/internal/observability"
	"finitefield.org/hanko-blog/internal/render"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 10 * time.Second

func rootCommand() *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:           "hanko-blog",
		Short:         "Travel blog web front end",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), envFile)
		},
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with local overrides")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), envFile)
		},
	}

	rootCmd.AddCommand(serveCmd, fetchCommand(&envFile), versionCommand())
	return rootCmd
}

func fetchCommand(envFile *string) *cobra.Command {
	var postID string

	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Load the landing page posts once and print them",
		Long:  "Load the landing page posts, or a single post with --post, through the same loaders the server uses and print them as text.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.WithEnvFile(*envFile))
			if err != nil {
				return err
			}
			// Keep stdout for the rendered posts.
			logger, err := observability.NewLogger("stderr")
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			source := newSource(cfg, nil)
			out := render.TextRenderer{W: cmd.OutOrStdout()}
			if cmd.Flags().Changed("post") {
				return loader.NewDetail(source, loader.WithLogger(logger)).Load(cmd.Context(), postID, out)
			}
			return loader.NewListing(source, loader.WithLogger(logger)).Load(cmd.Context(), out)
		},
	}
	fetchCmd.Flags().StringVar(&postID, "post", loader.DefaultPostID, "fetch a single post by id")
	return fetchCmd
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			goVersion := "unknown"
			if info, ok := debug.ReadBuildInfo(); ok {
				goVersion = info.GoVersion
			}
			fmt.Fprintf(cmd.OutOrStdout(), "hanko-blog %s (%s)\n", version, goVersion)
		},
	}
}

func runServe(ctx context.Context, envFile string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(config.WithEnvFile(envFile))
	if err != nil {
		return err
	}
	logger, err := observability.NewLogger()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a, err := newApp(cfg, logger, registry)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           a.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("web listening",
			zap.String("addr", srv.Addr),
			zap.Bool("dev_mode", cfg.Server.DevMode),
			zap.String("upstream", cfg.Upstream.BaseURL),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
