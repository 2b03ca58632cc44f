package librarylog

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers activity log routes.
func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	h := &handler{
		logService: NewService(db),
	}

	e.GET("/library-log", h.list)
}
