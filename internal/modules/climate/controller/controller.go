package controller

import (
	"climate-api/internal/modules/climate/repository"
	"climate-api/internal/modules/climate/types"
	"net/http"
)

type ClimateController interface {
	RegisterRoutes(mux *http.ServeMux)
}

// Options configures the observation window used by /precipitation and /tobs.
type Options struct {
	Window types.DateRange
	// TrailingDays > 0 replaces Window with [newest-N days, newest], both inclusive.
	TrailingDays int
}

type climateControllerImpl struct {
	repository repository.ClimateRepository
	opts       Options
}

func NewClimateController(repository repository.ClimateRepository, opts Options) ClimateController {
	return &climateControllerImpl{repository: repository, opts: opts}
}

func (c *climateControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /", c.handleIndex)
	mux.HandleFunc("GET "+apiPrefix+"/precipitation", c.handlePrecipitation)
	mux.HandleFunc("GET "+apiPrefix+"/stations", c.handleStations)
	mux.HandleFunc("GET "+apiPrefix+"/tobs", c.handleTobs)
	mux.HandleFunc("GET "+apiPrefix+"/{start}", c.handleTemperatureSince)
	mux.HandleFunc("GET "+apiPrefix+"/{start}/{end}", c.handleTemperatureRange)
}
