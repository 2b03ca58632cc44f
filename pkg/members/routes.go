package members

import (
	"github.com/labstack/echo/v4"
	"github.com/shelfdesk/shelfdesk/pkg/auth"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB, authMiddleware *auth.Middleware) {
	h := &handler{
		memberService: NewService(db),
	}

	e.GET("/members", h.list)
	e.GET("/members/:id", h.retrieve)
	e.POST("/members", h.create, authMiddleware.Authenticate)
	e.PUT("/members/:id", h.update, authMiddleware.Authenticate)
	e.DELETE("/members/:id", h.deleteMember, authMiddleware.Authenticate)
}
