package dashboard

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	h := &handler{
		dashboardService: NewService(db),
	}

	e.GET("/dashboard", h.stats)
}
