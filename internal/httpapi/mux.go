package httpapi

import (
	"gorm.io/gorm"
	"net/http"
)

func NewMux(db *gorm.DB) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, db)
	return mux
}
