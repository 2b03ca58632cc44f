package auth

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers auth routes and returns the auth service so that
// the server can build middleware from it.
func RegisterRoutes(e *echo.Echo, db *bun.DB, jwtSecret string) *Service {
	authService := NewService(db, jwtSecret)
	authMiddleware := NewMiddleware(authService)

	h := &handler{
		authService: authService,
	}

	group := e.Group("/auth")
	group.POST("/register", h.register)
	group.POST("/login", h.login)
	group.GET("/me", h.me, authMiddleware.Authenticate)

	return authService
}
