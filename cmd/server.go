package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/delbyte/solana-news-analysis/api"
	"github.com/delbyte/solana-news-analysis/scheduler"
	"github.com/spf13/cobra"
)

var warmOnStart bool

var serverCMD = &cobra.Command{
	Use:   "server",
	Short: "Start the API server",
	Long: `Start the HTTP API server. POST /analyze returns the analysis for a date
range, serving it from the store when the same range was analyzed before.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if cfg.Warm.Cron != "" || warmOnStart {
			sched := scheduler.New(ctx, a.service, cfg.Warm.LookbackDays, logger)
			if cfg.Warm.Cron != "" {
				if err := sched.Register(cfg.Warm.Cron); err != nil {
					return err
				}
				sched.Start()
				defer sched.Stop()
			}
			if warmOnStart {
				go func() {
					if _, err := sched.RunNow(); err != nil {
						logger.WithError(err).Warn("Initial warm analysis failed")
					}
				}()
			}
		}

		srv := &http.Server{
			Addr:              cfg.Server.Addr(),
			Handler:           api.SetupRoutes(api.NewHandler(a.service, a.store, logger), logger),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Infof("Starting server on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serverCMD.Flags().BoolVar(&warmOnStart, "warm-on-start", false, "analyze the trailing lookback window once at startup")
}
