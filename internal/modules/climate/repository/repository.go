package repository

import (
	"climate-api/internal/modules/climate/types"
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	sqlite3 "github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// ErrUnavailable marks failures caused by the database itself (missing,
// unreadable or corrupt file, dead connection) rather than by the query.
var ErrUnavailable = errors.New("climate database unavailable")

type ClimateRepository interface {
	// Precipitation returns non-null prcp readings inside window, ordered by date then row id.
	Precipitation(ctx context.Context, window types.DateRange) ([]types.PrecipitationReading, error)
	// StationIDs returns the distinct station ids that have measurements.
	StationIDs(ctx context.Context) ([]string, error)
	// TemperatureObservations returns one tobs value per measurement inside window.
	TemperatureObservations(ctx context.Context, window types.DateRange) ([]float64, error)
	// TemperatureStats aggregates tobs over r; r.End == "" means no upper bound.
	TemperatureStats(ctx context.Context, r types.DateRange) (types.TemperatureStats, error)
	// LatestDate returns the newest measurement date, or "" for an empty table.
	LatestDate(ctx context.Context) (string, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) ClimateRepository {
	return &repositoryImpl{db: db}
}

// withConn runs fn on one connection taken from the pool and returns it
// to the pool on every exit path.
func (r *repositoryImpl) withConn(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	err := r.db.WithContext(ctx).Connection(fn)
	if err != nil {
		return classify(op, err)
	}
	return nil
}

func (r *repositoryImpl) Precipitation(ctx context.Context, window types.DateRange) ([]types.PrecipitationReading, error) {
	var out []types.PrecipitationReading
	err := r.withConn(ctx, "precipitation", func(tx *gorm.DB) error {
		return tx.Model(&types.Measurement{}).
			Select("date, prcp").
			Where("date >= ? AND date <= ?", window.Start, window.End).
			Where("prcp IS NOT NULL").
			Order("date").
			Order("id").
			Scan(&out).Error
	})
	return out, err
}

func (r *repositoryImpl) StationIDs(ctx context.Context) ([]string, error) {
	var out []string
	err := r.withConn(ctx, "station ids", func(tx *gorm.DB) error {
		return tx.Model(&types.Measurement{}).
			Group("station").
			Order("station").
			Pluck("station", &out).Error
	})
	return out, err
}

func (r *repositoryImpl) TemperatureObservations(ctx context.Context, window types.DateRange) ([]float64, error) {
	var out []float64
	err := r.withConn(ctx, "temperature observations", func(tx *gorm.DB) error {
		return tx.Model(&types.Measurement{}).
			Where("date >= ? AND date <= ?", window.Start, window.End).
			Order("date").
			Order("id").
			Pluck("tobs", &out).Error
	})
	return out, err
}

func (r *repositoryImpl) TemperatureStats(ctx context.Context, dr types.DateRange) (types.TemperatureStats, error) {
	var out types.TemperatureStats
	err := r.withConn(ctx, "temperature stats", func(tx *gorm.DB) error {
		q := tx.Model(&types.Measurement{}).
			Select("MIN(tobs) AS min, AVG(tobs) AS avg, MAX(tobs) AS max").
			Where("date >= ?", dr.Start)
		if dr.End != "" {
			q = q.Where("date <= ?", dr.End)
		}
		return q.Scan(&out).Error
	})
	return out, err
}

func (r *repositoryImpl) LatestDate(ctx context.Context) (string, error) {
	var latest string
	err := r.withConn(ctx, "latest date", func(tx *gorm.DB) error {
		return tx.Model(&types.Measurement{}).
			Select("COALESCE(MAX(date), '')").
			Scan(&latest).Error
	})
	return latest, err
}

func classify(op string, err error) error {
	if isUnavailable(err) {
		return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUnavailable(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrCantOpen, sqlite3.ErrCorrupt, sqlite3.ErrNotADB,
			sqlite3.ErrIoErr, sqlite3.ErrPerm, sqlite3.ErrAuth:
			return true
		}
		return false
	}
	return errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone)
}
