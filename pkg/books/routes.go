package books

import (
	"github.com/labstack/echo/v4"
	"github.com/shelfdesk/shelfdesk/pkg/auth"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers book routes. Reads are public; writes require
// authentication.
func RegisterRoutes(e *echo.Echo, db *bun.DB, authMiddleware *auth.Middleware) {
	h := &handler{
		bookService: NewService(db),
	}

	e.GET("/books", h.list)
	e.GET("/books/:id", h.retrieve)
	e.POST("/books", h.create, authMiddleware.Authenticate)
	e.PUT("/books/:id", h.update, authMiddleware.Authenticate)
	e.DELETE("/books/:id", h.deleteBook, authMiddleware.Authenticate)
	e.POST("/books/bulk-delete", h.bulkDelete, authMiddleware.Authenticate)
}
