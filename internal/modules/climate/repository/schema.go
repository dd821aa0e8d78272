package repository

import (
	"climate-api/internal/modules/climate/types"
	"context"
	"fmt"
	"gorm.io/gorm"
)

// requiredColumns lists the columns each query depends on, per entity.
var requiredColumns = []struct {
	model   any
	table   string
	columns []string
}{
	{model: &types.Measurement{}, table: "measurement", columns: []string{"id", "station", "date", "prcp", "tobs"}},
	{model: &types.Station{}, table: "station", columns: []string{"id", "station", "name", "latitude", "longitude", "elevation"}},
}

// VerifySchema checks that the database has the tables and columns the
// repository reads. It never alters the schema.
func VerifySchema(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Connection(func(tx *gorm.DB) error {
		m := tx.Migrator()
		for _, rc := range requiredColumns {
			if !m.HasTable(rc.model) {
				return fmt.Errorf("verify schema: missing table %q", rc.table)
			}
			for _, col := range rc.columns {
				if !m.HasColumn(rc.model, col) {
					return fmt.Errorf("verify schema: table %q has no column %q", rc.table, col)
				}
			}
		}
		return nil
	})
}
