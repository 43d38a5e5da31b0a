package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"bluemedix-workflow/internal/common/config"
	"bluemedix-workflow/internal/common/logger"
	"bluemedix-workflow/internal/stub"
)

var stubAddr string

// workflow-runner stub-server serves the in-memory backend.
var stubServerCmd = &cobra.Command{
	Use:   "stub-server",
	Short: "Serve an in-memory BlueMedix backend for local runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("config load failed: %w", err)
		}
		log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)

		srv := &http.Server{
			Addr:              stubAddr,
			Handler:           stubMux(cfg, log),
			ReadHeaderTimeout: 5 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info("Stub backend listening", map[string]interface{}{"addr": stubAddr})
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		select {
		case err := <-errCh:
			return err
		case <-sigCh:
		}

		log.Info("Shutdown signal received, stopping stub backend", nil)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	},
}

func init() {
	stubServerCmd.Flags().StringVar(&stubAddr, "addr", ":5000", "listen address")
}

func stubMux(cfg *config.Config, log logger.Logger) http.Handler {
	backend := stub.New(stub.Options{
		AdminEmail:    cfg.API.AdminEmail,
		AdminPassword: cfg.API.AdminPassword,
	}, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", backend.Handler())
	return mux
}
