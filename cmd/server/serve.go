package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"plantmap/internal/api"
	"plantmap/internal/dashboard"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		svc := dashboard.NewService(cfg)
		e := api.NewServer(svc)

		// Warm the dataset in the background; the server is live immediately
		// and early requests wait on the same load.
		go func() {
			zap.L().Info("serve: loading dataset in background")
			t0 := time.Now()
			cs, err := svc.Dataset(ctx)
			if err != nil {
				zap.L().Error("serve: background load failed", zap.Error(err))
				return
			}
			zap.L().Info("serve: dataset ready",
				zap.Int("units", cs.Len()),
				zap.Duration("elapsed", time.Since(t0)),
			)
		}()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = e.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := e.Start(fmt.Sprintf(":%d", port)); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
