package app

import (
	"climate-api/internal/config"
	db "climate-api/internal/db"
	httpapi "climate-api/internal/httpapi"
	climate "climate-api/internal/modules/climate"
	"climate-api/internal/modules/climate/controller"
	"climate-api/internal/modules/climate/repository"
	"climate-api/internal/modules/climate/types"
	climateviews "climate-api/internal/modules/climate/views"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

func Run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	logger.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"sqlitePath", cfg.Path,
		"dsnOverride", cfg.DSN != "",
		"maxOpenConns", cfg.MaxOpenConns,
		"maxIdleConns", cfg.MaxIdleConns,
		"connMaxLifetime", cfg.ConnMaxLifetime,
		"windowStart", cfg.WindowStart,
		"windowEnd", cfg.WindowEnd,
		"windowTrailingDays", cfg.WindowTrailingDays,
		"corsAllowedOrigins", cfg.CORSAllowedOrigins,
	)
	dbConn, err := db.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := db.Close(dbConn)
		if closeErr != nil {
			logger.Error("db close", "error", closeErr)
		}
	}()
	logger.Info("database connection successful")

	verifyCtx, verifyCancel := context.WithTimeout(ctx, 5*time.Second)
	err = repository.VerifySchema(verifyCtx, dbConn)
	verifyCancel()
	if err != nil {
		return err
	}

	if err := climateviews.LoadTemplates(); err != nil {
		return err
	}
	mux := httpapi.NewMux(dbConn)
	climate.RegisterFeature(mux, dbConn, controller.Options{
		Window:       types.DateRange{Start: cfg.WindowStart, End: cfg.WindowEnd},
		TrailingDays: cfg.WindowTrailingDays,
	})

	srv := httpapi.NewServer(cfg, logger, mux)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}
