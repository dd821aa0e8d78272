package controller

import (
	"climate-api/internal/logging"
	"climate-api/internal/modules/climate/repository"
	"climate-api/internal/modules/climate/types"
	"climate-api/internal/utils"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const apiPrefix = "/api/v1.0"

// parseDate accepts only a real calendar date in YYYY-MM-DD form.
func parseDate(name, s string) (string, error) {
	t, err := time.Parse(types.DateLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid '%s' %q (expected YYYY-MM-DD)", name, s)
	}
	return t.Format(types.DateLayout), nil
}

// trailingWindow returns [latest-days, latest]; days=365 on 2017-08-23 starts at 2016-08-23.
func trailingWindow(latest string, days int) (types.DateRange, error) {
	end, err := time.Parse(types.DateLayout, latest)
	if err != nil {
		return types.DateRange{}, fmt.Errorf("latest measurement date %q: %w", latest, err)
	}
	return types.DateRange{
		Start: end.AddDate(0, 0, -days).Format(types.DateLayout),
		End:   latest,
	}, nil
}

func (c *climateControllerImpl) observationWindow(r *http.Request) (types.DateRange, error) {
	if c.opts.TrailingDays <= 0 {
		return c.opts.Window, nil
	}
	latest, err := c.repository.LatestDate(r.Context())
	if err != nil {
		return types.DateRange{}, err
	}
	if latest == "" {
		return c.opts.Window, nil
	}
	return trailingWindow(latest, c.opts.TrailingDays)
}

// writeQueryError maps repository failures to 503 (database unavailable) or 500.
func writeQueryError(w http.ResponseWriter, r *http.Request, what string, err error) {
	logger := logging.FromContext(r.Context())
	if errors.Is(err, repository.ErrUnavailable) {
		logger.Error(what+": database unavailable", "error", err)
		utils.WriteError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	logger.Error(what+" failed", "error", err)
	utils.WriteError(w, http.StatusInternalServerError, "failed to load "+what)
}
