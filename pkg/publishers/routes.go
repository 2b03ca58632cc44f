package publishers

import (
	"github.com/labstack/echo/v4"
	"github.com/shelfdesk/shelfdesk/pkg/auth"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB, authMiddleware *auth.Middleware) {
	h := &handler{
		publisherService: NewService(db),
	}

	e.GET("/publishers", h.list)
	e.GET("/publishers/:id", h.retrieve)
	e.POST("/publishers", h.create, authMiddleware.Authenticate)
	e.PUT("/publishers/:id", h.update, authMiddleware.Authenticate)
	e.DELETE("/publishers/:id", h.deletePublisher, authMiddleware.Authenticate)
}
