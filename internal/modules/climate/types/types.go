package types

import "encoding/json"

// DateLayout is the storage format of measurement dates. Dates in this
// layout sort lexicographically, so range filters compare strings.
const DateLayout = "2006-01-02"

// Measurement is one daily reading at one station.
type Measurement struct {
	ID      int      `gorm:"column:id;primaryKey" json:"id"`
	Station string   `gorm:"column:station;index" json:"station"`
	Date    string   `gorm:"column:date;index" json:"date"`
	Prcp    *float64 `gorm:"column:prcp" json:"prcp"`
	Tobs    float64  `gorm:"column:tobs" json:"tobs"`
}

func (Measurement) TableName() string {
	return "measurement"
}

type Station struct {
	ID        int     `gorm:"column:id;primaryKey" json:"id"`
	Station   string  `gorm:"column:station;uniqueIndex" json:"station"`
	Name      string  `gorm:"column:name" json:"name"`
	Latitude  float64 `gorm:"column:latitude" json:"latitude"`
	Longitude float64 `gorm:"column:longitude" json:"longitude"`
	Elevation float64 `gorm:"column:elevation" json:"elevation"`
}

func (Station) TableName() string {
	return "station"
}

// DateRange is an inclusive range of YYYY-MM-DD dates. An empty End is open-ended.
type DateRange struct {
	Start string
	End   string
}

type PrecipitationReading struct {
	Date string  `gorm:"column:date"`
	Prcp float64 `gorm:"column:prcp"`
}

// TemperatureStats holds the tobs aggregates of a date range. All three are
// nil when no row matched.
type TemperatureStats struct {
	Min *float64 `gorm:"column:min"`
	Avg *float64 `gorm:"column:avg"`
	Max *float64 `gorm:"column:max"`
}

// MarshalJSON encodes the stats as [min, avg, max].
func (s TemperatureStats) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]*float64{s.Min, s.Avg, s.Max})
}
