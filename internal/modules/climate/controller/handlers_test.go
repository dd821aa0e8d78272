package controller

import (
	"climate-api/internal/modules/climate/repository"
	"climate-api/internal/modules/climate/types"
	"climate-api/internal/modules/climate/views"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
)

type mockRepo struct {
	precipitation    []types.PrecipitationReading
	precipitationErr error
	stationIDs       []string
	stationIDsErr    error
	tobs             []float64
	tobsErr          error
	stats            types.TemperatureStats
	statsErr         error
	latest           string
	latestErr        error

	gotWindow types.DateRange
	gotRange  types.DateRange
	calls     int
}

func (m *mockRepo) Precipitation(_ context.Context, window types.DateRange) ([]types.PrecipitationReading, error) {
	m.calls++
	m.gotWindow = window
	return m.precipitation, m.precipitationErr
}

func (m *mockRepo) StationIDs(_ context.Context) ([]string, error) {
	m.calls++
	return m.stationIDs, m.stationIDsErr
}

func (m *mockRepo) TemperatureObservations(_ context.Context, window types.DateRange) ([]float64, error) {
	m.calls++
	m.gotWindow = window
	return m.tobs, m.tobsErr
}

func (m *mockRepo) TemperatureStats(_ context.Context, r types.DateRange) (types.TemperatureStats, error) {
	m.calls++
	m.gotRange = r
	return m.stats, m.statsErr
}

func (m *mockRepo) LatestDate(_ context.Context) (string, error) {
	return m.latest, m.latestErr
}

var defaultOpts = Options{Window: types.DateRange{Start: "2016-08-23", End: "2017-08-23"}}

func f(v float64) *float64 { return &v }

// serve routes req through a mux with the controller's routes registered.
func serve(t *testing.T, repo *mockRepo, opts Options, path string) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	NewClimateController(repo, opts).RegisterRoutes(mux)
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	return out
}

func Test_handleIndex(t *testing.T) {
	t.Run("returns 404 when path is not /", func(t *testing.T) {
		rec := serve(t, &mockRepo{}, defaultOpts, "/api/v2/precipitation")

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d; want %d", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("lists routes with window example links", func(t *testing.T) {
		if err := views.LoadTemplates(); err != nil {
			t.Fatalf("LoadTemplates: %v", err)
		}
		rec := serve(t, &mockRepo{}, defaultOpts, "/")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
			t.Errorf("Content-Type = %q; want text/html", ct)
		}
		body := rec.Body.String()
		for _, want := range []string{
			"/api/v1.0/precipitation",
			"/api/v1.0/stations",
			"/api/v1.0/tobs",
			`href="/api/v1.0/2016-08-23"`,
			`href="/api/v1.0/2016-08-23/2017-08-23"`,
		} {
			if !strings.Contains(body, want) {
				t.Errorf("body missing %q", want)
			}
		}
	})

	t.Run("shows the trailing window when enabled", func(t *testing.T) {
		if err := views.LoadTemplates(); err != nil {
			t.Fatalf("LoadTemplates: %v", err)
		}
		opts := Options{Window: defaultOpts.Window, TrailingDays: 7}
		rec := serve(t, &mockRepo{latest: "2017-08-23"}, opts, "/")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		body := rec.Body.String()
		for _, want := range []string{
			"2017-08-16 to 2017-08-23",
			`href="/api/v1.0/2017-08-16"`,
			`href="/api/v1.0/2017-08-16/2017-08-23"`,
		} {
			if !strings.Contains(body, want) {
				t.Errorf("body missing %q", want)
			}
		}
		if strings.Contains(body, "2016-08-23") {
			t.Errorf("body still shows the configured window:\n%s", body)
		}
	})

	t.Run("falls back to the configured window when the latest date fails", func(t *testing.T) {
		if err := views.LoadTemplates(); err != nil {
			t.Fatalf("LoadTemplates: %v", err)
		}
		opts := Options{Window: defaultOpts.Window, TrailingDays: 7}
		rec := serve(t, &mockRepo{latestErr: errors.New("boom")}, opts, "/")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		if body := rec.Body.String(); !strings.Contains(body, "2016-08-23 to 2017-08-23") {
			t.Errorf("body missing configured window:\n%s", body)
		}
	})
}

func Test_handlePrecipitation(t *testing.T) {
	t.Run("maps date to prcp within the window", func(t *testing.T) {
		repo := &mockRepo{precipitation: []types.PrecipitationReading{
			{Date: "2016-08-23", Prcp: 0.0},
			{Date: "2016-08-24", Prcp: 0.08},
			{Date: "2016-08-24", Prcp: 2.15},
		}}
		rec := serve(t, repo, defaultOpts, "/api/v1.0/precipitation")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		got := decode[map[string]float64](t, rec)
		want := map[string]float64{"2016-08-23": 0, "2016-08-24": 2.15}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("body = %v; want %v", got, want)
		}
		if repo.gotWindow != defaultOpts.Window {
			t.Errorf("window = %+v; want %+v", repo.gotWindow, defaultOpts.Window)
		}
	})

	t.Run("empty result is an empty object", func(t *testing.T) {
		rec := serve(t, &mockRepo{}, defaultOpts, "/api/v1.0/precipitation")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		if got := strings.TrimSpace(rec.Body.String()); got != "{}" {
			t.Errorf("body = %q; want {}", got)
		}
	})

	t.Run("trailing window ends at latest date", func(t *testing.T) {
		repo := &mockRepo{latest: "2017-08-23"}
		opts := Options{Window: defaultOpts.Window, TrailingDays: 7}
		rec := serve(t, repo, opts, "/api/v1.0/precipitation")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		want := types.DateRange{Start: "2017-08-16", End: "2017-08-23"}
		if repo.gotWindow != want {
			t.Errorf("window = %+v; want %+v", repo.gotWindow, want)
		}
	})

	t.Run("latest date failure is reported", func(t *testing.T) {
		repo := &mockRepo{latestErr: fmt.Errorf("latest date: %w", repository.ErrUnavailable)}
		opts := Options{Window: defaultOpts.Window, TrailingDays: 7}
		rec := serve(t, repo, opts, "/api/v1.0/precipitation")

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d; want %d", rec.Code, http.StatusServiceUnavailable)
		}
		if repo.calls != 0 {
			t.Errorf("precipitation queried %d times after window failure", repo.calls)
		}
	})
}

func Test_handleStations(t *testing.T) {
	t.Run("returns station ids", func(t *testing.T) {
		ids := []string{"USC00511918", "USC00513117", "USC00519397"}
		rec := serve(t, &mockRepo{stationIDs: ids}, defaultOpts, "/api/v1.0/stations")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
			t.Errorf("Content-Type = %q; want application/json", ct)
		}
		if got := decode[[]string](t, rec); !reflect.DeepEqual(got, ids) {
			t.Errorf("body = %v; want %v", got, ids)
		}
	})

	t.Run("no stations is an empty array", func(t *testing.T) {
		rec := serve(t, &mockRepo{}, defaultOpts, "/api/v1.0/stations")

		if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
			t.Errorf("body = %q; want []", got)
		}
	})
}

func Test_handleTobs(t *testing.T) {
	t.Run("one value per row", func(t *testing.T) {
		tobs := []float64{77, 80, 80, 76}
		rec := serve(t, &mockRepo{tobs: tobs}, defaultOpts, "/api/v1.0/tobs")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		if got := decode[[]float64](t, rec); !reflect.DeepEqual(got, tobs) {
			t.Errorf("body = %v; want %v", got, tobs)
		}
	})

	t.Run("empty result is an empty array", func(t *testing.T) {
		rec := serve(t, &mockRepo{}, defaultOpts, "/api/v1.0/tobs")

		if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
			t.Errorf("body = %q; want []", got)
		}
	})
}

func Test_handleTemperatureStats(t *testing.T) {
	stats := types.TemperatureStats{Min: f(60), Avg: f(70), Max: f(80)}

	tests := []struct {
		name      string
		path      string
		wantRange types.DateRange
	}{
		{
			name:      "start only",
			path:      "/api/v1.0/2017-01-01",
			wantRange: types.DateRange{Start: "2017-01-01"},
		},
		{
			name:      "start and end",
			path:      "/api/v1.0/2017-01-01/2017-01-03",
			wantRange: types.DateRange{Start: "2017-01-01", End: "2017-01-03"},
		},
		{
			name:      "reversed range is passed through",
			path:      "/api/v1.0/2017-01-03/2017-01-01",
			wantRange: types.DateRange{Start: "2017-01-03", End: "2017-01-01"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepo{stats: stats}
			rec := serve(t, repo, defaultOpts, tt.path)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
			}
			if repo.gotRange != tt.wantRange {
				t.Errorf("range = %+v; want %+v", repo.gotRange, tt.wantRange)
			}
			got := decode[[]float64](t, rec)
			if !reflect.DeepEqual(got, []float64{60, 70, 80}) {
				t.Errorf("body = %v; want [60 70 80]", got)
			}
		})
	}

	t.Run("no matching rows yields nulls", func(t *testing.T) {
		rec := serve(t, &mockRepo{}, defaultOpts, "/api/v1.0/2030-01-01")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		if got := strings.TrimSpace(rec.Body.String()); got != "[null,null,null]" {
			t.Errorf("body = %q; want [null,null,null]", got)
		}
	})
}

func Test_handleTemperatureStats_invalidDates(t *testing.T) {
	paths := []string{
		"/api/v1.0/2017.08-23",
		"/api/v1.0/2017-02-30",
		"/api/v1.0/17-1-1",
		"/api/v1.0/yesterday",
		"/api/v1.0/2017-01-01/2017.08-23",
		"/api/v1.0/not-a-date/2017-01-01",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			repo := &mockRepo{}
			rec := serve(t, repo, defaultOpts, path)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d; want %d", rec.Code, http.StatusBadRequest)
			}
			body := decode[map[string]any](t, rec)
			if _, ok := body["error"]; !ok {
				t.Errorf("expected error field, got %v", body)
			}
			if _, ok := body["message"]; !ok {
				t.Errorf("expected message field, got %v", body)
			}
			if repo.calls != 0 {
				t.Errorf("repository called %d times for invalid date", repo.calls)
			}
		})
	}
}

func Test_queryErrors(t *testing.T) {
	unavailable := fmt.Errorf("stations: %w: disk I/O error", repository.ErrUnavailable)
	generic := errors.New("no such column: tobs")

	tests := []struct {
		name string
		repo *mockRepo
		path string
		want int
	}{
		{name: "precipitation unavailable", repo: &mockRepo{precipitationErr: unavailable}, path: "/api/v1.0/precipitation", want: http.StatusServiceUnavailable},
		{name: "precipitation failure", repo: &mockRepo{precipitationErr: generic}, path: "/api/v1.0/precipitation", want: http.StatusInternalServerError},
		{name: "stations unavailable", repo: &mockRepo{stationIDsErr: unavailable}, path: "/api/v1.0/stations", want: http.StatusServiceUnavailable},
		{name: "stations failure", repo: &mockRepo{stationIDsErr: generic}, path: "/api/v1.0/stations", want: http.StatusInternalServerError},
		{name: "tobs unavailable", repo: &mockRepo{tobsErr: unavailable}, path: "/api/v1.0/tobs", want: http.StatusServiceUnavailable},
		{name: "stats failure", repo: &mockRepo{statsErr: generic}, path: "/api/v1.0/2017-01-01/2017-01-03", want: http.StatusInternalServerError},
		{name: "stats unavailable", repo: &mockRepo{statsErr: unavailable}, path: "/api/v1.0/2017-01-01", want: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, tt.repo, defaultOpts, tt.path)

			if rec.Code != tt.want {
				t.Fatalf("status = %d; want %d", rec.Code, tt.want)
			}
			body := decode[map[string]any](t, rec)
			if body["error"] != http.StatusText(tt.want) {
				t.Errorf("error = %v; want %q", body["error"], http.StatusText(tt.want))
			}
		})
	}
}

func Test_routing(t *testing.T) {
	t.Run("literal routes win over the date wildcard", func(t *testing.T) {
		repo := &mockRepo{stationIDs: []string{"USC00519397"}}
		rec := serve(t, repo, defaultOpts, "/api/v1.0/stations")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		if repo.gotRange != (types.DateRange{}) {
			t.Errorf("stats handler ran for /stations: %+v", repo.gotRange)
		}
	})

	t.Run("wrong method", func(t *testing.T) {
		mux := http.NewServeMux()
		NewClimateController(&mockRepo{}, defaultOpts).RegisterRoutes(mux)
		req := httptest.NewRequest(http.MethodPost, "/api/v1.0/tobs", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d; want %d", rec.Code, http.StatusMethodNotAllowed)
		}
	})
}
