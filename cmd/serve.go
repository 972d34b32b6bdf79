package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leads-cli/internal/api"
	"github.com/sells-group/leads-cli/internal/config"
	"github.com/sells-group/leads-cli/internal/metrics"
)

var servePort int

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve leads and the override API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort > 0 {
			cfg.Server.Port = servePort
		}
		env, err := initLeads(ctx, config.ModeServe, openServerStore)
		if err != nil {
			return err
		}
		defer env.Close()

		metrics.Init(nil)
		crit := criteriaFromFlags("", "", 0, 0, 0)
		handler := api.New(env.Resolver, env.Store,
			api.WithCriteria(crit),
			api.WithCORSOrigins(cfg.Server.CORSOrigins),
			api.WithMetrics(promhttp.Handler()),
			api.WithBreakers(env.Breakers),
		).Handler()

		// Warm the session so the first /leads request does not wait.
		go func() {
			if _, err := env.Resolver.Load(ctx, crit); err != nil {
				zap.L().Warn("initial resolve failed", zap.Error(err))
			}
		}()

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
