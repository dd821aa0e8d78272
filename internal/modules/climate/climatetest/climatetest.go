// Package climatetest builds throwaway SQLite climate databases for tests.
package climatetest

import (
	"climate-api/internal/modules/climate/types"
	"fmt"
	"github.com/brianvoe/gofakeit/v7"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"path/filepath"
	"testing"
	"time"
)

// NewDB creates a writable database file under t.TempDir() with the
// measurement and station tables, and returns it with the file path.
func NewDB(t testing.TB) (*gorm.DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hawaii.sqlite")
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	if err := gdb.AutoMigrate(&types.Station{}, &types.Measurement{}); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb, path
}

func Insert[T any](t testing.TB, gdb *gorm.DB, rows ...T) {
	t.Helper()
	if len(rows) == 0 {
		return
	}
	if err := gdb.Create(&rows).Error; err != nil {
		t.Fatalf("insert %T: %v", rows, err)
	}
}

func Prcp(v float64) *float64 {
	return &v
}

// FakeStations returns n stations with distinct USC-style ids.
func FakeStations(faker *gofakeit.Faker, n int) []types.Station {
	out := make([]types.Station, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, types.Station{
			Station:   fmt.Sprintf("USC00%06d", 510000+i*137),
			Name:      faker.City() + ", HI US",
			Latitude:  faker.Float64Range(18.9, 22.2),
			Longitude: faker.Float64Range(-160.2, -154.8),
			Elevation: faker.Float64Range(0, 300),
		})
	}
	return out
}

// FakeMeasurements returns one measurement per station per day for days
// days starting at from. Roughly one prcp in five is NULL.
func FakeMeasurements(faker *gofakeit.Faker, stations []types.Station, from string, days int) []types.Measurement {
	start, err := time.Parse(types.DateLayout, from)
	if err != nil {
		panic(fmt.Sprintf("climatetest: bad date %q: %v", from, err))
	}
	out := make([]types.Measurement, 0, len(stations)*days)
	for d := 0; d < days; d++ {
		date := start.AddDate(0, 0, d).Format(types.DateLayout)
		for _, s := range stations {
			m := types.Measurement{
				Station: s.Station,
				Date:    date,
				Tobs:    float64(faker.IntRange(56, 87)),
			}
			if faker.IntRange(1, 5) != 1 {
				m.Prcp = Prcp(float64(faker.IntRange(0, 250)) / 100)
			}
			out = append(out, m)
		}
	}
	return out
}
