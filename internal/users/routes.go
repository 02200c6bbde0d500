package users

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jortega/userboard/internal/middleware"
)

// RegisterRoutes sets up all user routes on the given Echo instance.
// identify is the Identify middleware, applied to the protected routes.
//
// POST /login and /register are rate-limited to slow brute-force and
// credential stuffing: 10 attempts per IP per minute for login, 5 for
// register.
func RegisterRoutes(e *echo.Echo, h *Handler, identify echo.MiddlewareFunc) {
	// Public routes -- no session required.
	e.GET("/register", h.RegisterForm)
	e.POST("/register", h.Register, middleware.RateLimit(5, time.Minute))
	e.GET("/login", h.LoginForm)
	e.POST("/login", h.Login, middleware.RateLimit(10, time.Minute))
	e.GET("/logout", h.Logout)

	// Protected routes -- identity is resolved before the handler runs.
	e.GET("/", h.Index, identify)
	e.GET("/edit/:id", h.EditForm, identify)
	e.POST("/edit/:id", h.Edit, identify)
	e.PUT("/edit/:id", h.Edit, identify)
	e.POST("/delete/:id", h.Delete, identify)
}
