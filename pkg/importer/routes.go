package importer

import (
	"github.com/labstack/echo/v4"
	"github.com/shelfdesk/shelfdesk/pkg/auth"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB, authMiddleware *auth.Middleware) {
	h := &handler{
		importService: NewService(db),
	}

	e.POST("/books/import-csv", h.importCSV, authMiddleware.Authenticate)
	e.GET("/books/export-csv", h.exportCSV)
	e.GET("/books/csv-template", h.template)
	e.GET("/books/csv-template-info", h.templateInfo)
}
