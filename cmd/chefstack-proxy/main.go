// Package main is the entry point for the chefstack-proxy binary.
// It serves the AI request proxy that sits between the ChefStack web client
// and the generative-AI upstream.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/chefstack/ai-proxy/pkg/auth"
	"github.com/chefstack/ai-proxy/pkg/config"
	"github.com/chefstack/ai-proxy/pkg/logging"
	"github.com/chefstack/ai-proxy/pkg/proxy"
	"github.com/chefstack/ai-proxy/pkg/telemetry"
)

const (
	defaultLogLevel = "info"
	serviceName     = "chefstack-proxy"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd creates the root command for chefstack-proxy.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "chefstack-proxy",
		Short: "AI request proxy for ChefStack",
		Long: `A validating proxy between the ChefStack web client and the generative-AI API.

The proxy authenticates bearer tokens, enforces the feature allowlist and
request-size ceilings, forwards validated payloads upstream with a bounded
timeout, and keeps the upstream API key server-side.

Example:
  GEMINI_API_KEY=... CHEFSTACK_JWT_SECRET=... chefstack-proxy --listen :8080`,
		RunE: runProxy,
	}

	rootCmd.Flags().StringP("config", "c", "", "Path to configuration file (YAML)")
	rootCmd.Flags().StringP("listen", "l", "", "Address to listen on (overrides config)")
	rootCmd.Flags().String("log-level", defaultLogLevel, "Log level (debug, info, warn, error)")
	rootCmd.Flags().Bool("pretty", false, "Enable pretty console logging")

	return rootCmd
}

func runProxy(cmd *cobra.Command, _ []string) error {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	listenAddr, err := cmd.Flags().GetString("listen")
	if err != nil {
		return fmt.Errorf("failed to get listen flag: %w", err)
	}
	logLevel, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return fmt.Errorf("failed to get log-level flag: %w", err)
	}
	pretty, err := cmd.Flags().GetBool("pretty")
	if err != nil {
		return fmt.Errorf("failed to get pretty flag: %w", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel == defaultLogLevel && cfg.Logging.Level != "" {
		logLevel = cfg.Logging.Level
	}
	if listenAddr != "" {
		cfg.Server.ListenAddress = listenAddr
	}

	logger := logging.NewLogger(logging.Config{Level: logLevel, Pretty: pretty})
	slog.SetDefault(logger)

	logger.Info("Starting chefstack-proxy", "listen", cfg.Server.ListenAddress)

	if len(cfg.CORS.AllowedOrigins) == 0 {
		logger.Warn("No CORS origin allowlist configured, falling back to wildcard origin; set ALLOWED_ORIGINS in production")
	}
	if cfg.Upstream.APIKey == "" {
		logger.Warn("GEMINI_API_KEY is not set; upstream calls will fail with a generic server error")
	}

	var provider config.RuntimeProvider
	if configPath != "" {
		fileProvider, err := config.NewFileProvider(configPath, logger)
		if err != nil {
			return fmt.Errorf("failed to watch config file: %w", err)
		}
		defer func() {
			if err := fileProvider.Close(); err != nil {
				logger.Error("Failed to close config provider", "error", err)
			}
		}()
		provider = fileProvider
	} else {
		provider = config.NewStaticProvider(cfg)
	}

	verifier, err := auth.NewVerifier(cfg.Auth)
	if err != nil {
		return err
	}

	ctx := context.Background()
	shutdownTelemetry, err := telemetry.SetupProvider(ctx, telemetry.Config{
		ServiceName: serviceName,
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Insecure:    cfg.Telemetry.Insecure,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			logger.Error("Telemetry shutdown error", "error", err)
		}
	}()

	metrics := proxy.NewMetrics()
	handler := proxy.NewHandler(proxy.HandlerConfig{
		Verifier:  verifier,
		Runtime:   provider,
		Forwarder: proxy.NewForwarder(cfg.Upstream, logger),
		Limits:    cfg.Limits,
		Logger:    logger,
		Metrics:   metrics,
	})

	server, err := startServer(cfg.Server, handler, metrics, logger)
	if err != nil {
		return err
	}

	waitForShutdown(server, logger)
	return nil
}

func newMux(handler *proxy.Handler, metrics *proxy.Metrics) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/v1/generate", otelhttp.NewHandler(http.HandlerFunc(handler.HandleGenerate), "chefstack.generate"))
	mux.Handle("/v1/images", otelhttp.NewHandler(http.HandlerFunc(handler.HandleImages), "chefstack.images"))
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func startServer(cfg config.ServerConfig, handler *proxy.Handler, metrics *proxy.Metrics, logger *slog.Logger) (*http.Server, error) {
	server := &http.Server{
		Handler:      newMux(handler, metrics),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	listener, err := net.Listen("tcp", cfg.ListenAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to bind listener on %s: %w", cfg.ListenAddress, err)
	}

	// Log the actual resolved address (useful when the address is :0)
	logger.Info("Server listening", "addr", listener.Addr().String())

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	return server, nil
}

func waitForShutdown(server *http.Server, logger *slog.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	sig := <-sigCh

	logger.Info("Shutting down", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
}
