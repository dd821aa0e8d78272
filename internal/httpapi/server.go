package httpapi

import (
	"climate-api/internal/config"
	"log/slog"
	"net/http"
	"time"
)

func NewHandler(cfg config.Config, logger *slog.Logger, mux *http.ServeMux) http.Handler {
	return requestLogger(logger, withCORS(cfg.CORSAllowedOrigins, mux))
}

func NewServer(cfg config.Config, logger *slog.Logger, mux *http.ServeMux) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewHandler(cfg, logger, mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
