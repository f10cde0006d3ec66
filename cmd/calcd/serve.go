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

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"calculator-widget/internal/calculator"
	"calculator-widget/internal/config"
	"calculator-widget/internal/observability"
	"calculator-widget/internal/server"
	"calculator-widget/internal/storage"
)

func newServeCommand(_ *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Logger
	if err := observability.InitLogger(cfg.LogLevel); err != nil {
		return err
	}
	defer observability.SyncLogger()

	// Tracing, metrics, logs
	shutdown, err := initTelemetry(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdown(context.Background())

	// History
	store, err := storage.Open(cfg.StoreKind, cfg.StorePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	calc, err := newCalculator(ctx, cfg, store)
	if err != nil {
		return err
	}

	// Router
	router := server.NewRouter(calculator.NewHandler(calc))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		observability.Logger.Info("server started",
			zap.String("addr", cfg.Addr),
			zap.String("store", cfg.StoreKind),
			zap.Int("history_capacity", cfg.HistoryCapacity),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	return waitForShutdown(srv, errCh)
}

func newCalculator(ctx context.Context, cfg config.Config, store calculator.Store) (*calculator.Calculator, error) {
	locale, err := calculator.NewLocale(cfg.Locale)
	if err != nil {
		return nil, err
	}

	history := calculator.NewHistory(store, cfg.HistoryCapacity)
	if err := history.Load(ctx); err != nil {
		// A corrupt snapshot should not keep the widget down.
		observability.Logger.Warn("starting with empty history", zap.Error(err))
	}

	return calculator.New(history,
		calculator.WithLocale(locale),
		calculator.WithLogger(observability.Logger),
	), nil
}

func waitForShutdown(srv *http.Server, errCh <-chan error) error {

	stop := make(chan os.Signal, 1)

	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
	case err := <-errCh:
		return err
	}

	observability.Logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return srv.Shutdown(ctx)
}
