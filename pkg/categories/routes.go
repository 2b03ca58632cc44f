package categories

import (
	"github.com/labstack/echo/v4"
	"github.com/shelfdesk/shelfdesk/pkg/auth"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB, authMiddleware *auth.Middleware) {
	h := &handler{
		categoryService: NewService(db),
	}

	e.GET("/categories", h.list)
	e.GET("/categories/:id", h.retrieve)
	e.POST("/categories", h.create, authMiddleware.Authenticate)
	e.PUT("/categories/:id", h.update, authMiddleware.Authenticate)
	e.DELETE("/categories/:id", h.deleteCategory, authMiddleware.Authenticate)
}
