package climate

import (
	"climate-api/internal/modules/climate/controller"
	"climate-api/internal/modules/climate/repository"
	"gorm.io/gorm"
	"net/http"
)

func RegisterFeature(mux *http.ServeMux, db *gorm.DB, opts controller.Options) {
	climateRepository := repository.NewRepository(db)
	climateController := controller.NewClimateController(climateRepository, opts)
	climateController.RegisterRoutes(mux)
}
