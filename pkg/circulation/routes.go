package circulation

import (
	"github.com/labstack/echo/v4"
	"github.com/shelfdesk/shelfdesk/pkg/auth"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers the issue/return routes. Both mutate book state
// and require authentication; the history listing is public.
func RegisterRoutes(e *echo.Echo, db *bun.DB, authMiddleware *auth.Middleware) {
	h := &handler{
		circulationService: NewService(db),
	}

	e.POST("/issue-book", h.issue, authMiddleware.Authenticate)
	e.POST("/return-book", h.returnBook, authMiddleware.Authenticate)
	e.GET("/issue-history", h.listHistory)
}
