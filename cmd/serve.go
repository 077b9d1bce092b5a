package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"library-web/internal/api"
	"library-web/internal/config"
	"library-web/internal/logger"
	"library-web/internal/router"
	"library-web/internal/session"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	Long: `Run the web server. Usage:

	library-web serve --port 8080 --api http://localhost:8081
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		if port, _ := cmd.Flags().GetString("port"); port != "" {
			cfg.Port = port
		}
		if base := apiOverride(cmd); base != "" {
			cfg.APIBaseURL = base
		}
		return serve(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("port", "", "listen port (overrides PORT)")
}

func serve(parent context.Context, cfg config.Config) error {
	log := logger.InitLogger(cfg.LogLevel, cfg.LogFormat)
	log.Info().Str("api", cfg.APIBaseURL).Msg("Starting library web client")

	transport := api.NewTransport()
	registry := session.NewRegistry(session.RegistryConfig{
		APIBaseURL: cfg.APIBaseURL,
		Transport:  transport,
		IdleTTL:    cfg.SessionIdleTTL,
		Logger:     log,
	})
	probe, err := api.New(cfg.APIBaseURL, transport, log)
	if err != nil {
		return err
	}

	r, err := router.SetupRouter(cfg, registry, probe, log)
	if err != nil {
		return fmt.Errorf("setup router: %w", err)
	}

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go registry.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("Server listening on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("Server error")
			return err
		}
		return nil
	case <-ctx.Done():
	}
	log.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
		return err
	}

	log.Info().Msg("Server stopped")
	return nil
}
