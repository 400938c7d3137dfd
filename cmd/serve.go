package cmd

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/example/wordquiz/internal/api"
	"github.com/example/wordquiz/internal/auth"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, db, err := setup(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		if cfg.AuthSecret == "" {
			return errors.New("AUTH_HMAC_SECRET must be set")
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.HTTPAddr = addr
		}

		srv := api.NewServer(db, newQuizService(db, cfg, logger), auth.NewService(cfg.AuthSecret), logger)
		httpServer := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           srv.Router(cfg.CORSAllowedOrigins),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx := cmd.Context()
		errCh := make(chan error, 1)
		go func() {
			logger.Info("http api listening", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return errors.Wrap(err, "http server failed")
		case <-ctx.Done():
		}

		logger.Info("shutting down http api")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides HTTP_ADDR)")
}
