package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jonathan/keyword-ranker/internal/config"
	"github.com/jonathan/keyword-ranker/internal/llm"
	"github.com/jonathan/keyword-ranker/internal/server"
	"github.com/jonathan/keyword-ranker/internal/server/middleware"
	"github.com/jonathan/keyword-ranker/internal/server/ratelimit"
)

var (
	servePort   int
	serveConfig string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server exposing POST /llm/rank, POST /analyze, GET /health and GET /metrics.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT and the config file)")
	serveCmd.Flags().StringVarP(&serveConfig, "config", "c", "", "Path to an optional YAML config file")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, errs := config.Load(serveConfig)
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
		if errs := cfg.Validate(); len(errs) > 0 {
			return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
		}
	}

	logger := middleware.NewLogger(cfg.Env)
	slog.SetDefault(logger)

	srvCfg, err := buildServerConfig(cfg, logger)
	if err != nil {
		return err
	}

	attrs := make([]any, 0, 2*len(cfg.LogSummary()))
	for k, v := range cfg.LogSummary() {
		attrs = append(attrs, slog.String(k, v))
	}
	logger.Info("configuration loaded", attrs...)

	srv, err := server.New(srvCfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

// buildServerConfig translates service configuration into server wiring.
func buildServerConfig(cfg *config.Config, logger *slog.Logger) (server.Config, error) {
	ranker, err := llm.NewRanker(llm.ConfigFor(cfg.RankerURL, cfg.RankerTimeout))
	if err != nil {
		return server.Config{}, fmt.Errorf("failed to create ranker: %w", err)
	}

	return server.Config{
		Port:        cfg.Port,
		DefaultTopK: cfg.DefaultTopK,
		Ranker:      ranker,
		RateLimit: ratelimit.NewConfig(
			cfg.RateLimitEnabled,
			cfg.RateLimitDefaultLimit,
			cfg.RateLimitDefaultWindow,
			cfg.RateLimitWhitelist,
			cfg.RateLimitBlacklist,
		),
		Logger: logger,
	}, nil
}
