package controller

import (
	"climate-api/internal/logging"
	"climate-api/internal/modules/climate/types"
	"climate-api/internal/modules/climate/views"
	"climate-api/internal/utils"
	"io"
	"net/http"
)

func (c *climateControllerImpl) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	window, err := c.observationWindow(r)
	if err != nil {
		logging.FromContext(r.Context()).Warn("index: falling back to configured window", "error", err)
		window = c.opts.Window
	}
	data := &views.IndexData{
		WindowStart: window.Start,
		WindowEnd:   window.End,
		Routes: []views.RouteLink{
			{Path: apiPrefix + "/precipitation", Description: "precipitation by date in the observation window"},
			{Path: apiPrefix + "/stations", Description: "station ids"},
			{Path: apiPrefix + "/tobs", Description: "temperature observations in the observation window"},
			{Path: apiPrefix + "/" + window.Start, Description: "min, avg, max temperature from a start date"},
			{Path: apiPrefix + "/" + window.Start + "/" + window.End, Description: "min, avg, max temperature between two dates"},
		},
	}
	err = utils.WriteHTML(w, http.StatusOK, func(out io.Writer) error {
		return views.RenderIndex(out, data)
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("index template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
	}
}

func (c *climateControllerImpl) handlePrecipitation(w http.ResponseWriter, r *http.Request) {
	window, err := c.observationWindow(r)
	if err != nil {
		writeQueryError(w, r, "observation window", err)
		return
	}
	readings, err := c.repository.Precipitation(r.Context(), window)
	if err != nil {
		writeQueryError(w, r, "precipitation", err)
		return
	}
	// Several stations report the same day; the last row in table order wins.
	out := make(map[string]float64, len(readings))
	for _, rd := range readings {
		out[rd.Date] = rd.Prcp
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

func (c *climateControllerImpl) handleStations(w http.ResponseWriter, r *http.Request) {
	ids, err := c.repository.StationIDs(r.Context())
	if err != nil {
		writeQueryError(w, r, "stations", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	utils.WriteJSON(w, http.StatusOK, ids)
}

func (c *climateControllerImpl) handleTobs(w http.ResponseWriter, r *http.Request) {
	window, err := c.observationWindow(r)
	if err != nil {
		writeQueryError(w, r, "observation window", err)
		return
	}
	values, err := c.repository.TemperatureObservations(r.Context(), window)
	if err != nil {
		writeQueryError(w, r, "temperature observations", err)
		return
	}
	if values == nil {
		values = []float64{}
	}
	utils.WriteJSON(w, http.StatusOK, values)
}

func (c *climateControllerImpl) handleTemperatureSince(w http.ResponseWriter, r *http.Request) {
	start, err := parseDate("start", r.PathValue("start"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	c.writeTemperatureStats(w, r, types.DateRange{Start: start})
}

func (c *climateControllerImpl) handleTemperatureRange(w http.ResponseWriter, r *http.Request) {
	start, err := parseDate("start", r.PathValue("start"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	end, err := parseDate("end", r.PathValue("end"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	// start > end is not an error; the range is simply empty.
	c.writeTemperatureStats(w, r, types.DateRange{Start: start, End: end})
}

func (c *climateControllerImpl) writeTemperatureStats(w http.ResponseWriter, r *http.Request, dr types.DateRange) {
	stats, err := c.repository.TemperatureStats(r.Context(), dr)
	if err != nil {
		writeQueryError(w, r, "temperature stats", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, stats)
}
