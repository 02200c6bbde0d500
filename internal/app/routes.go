package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"

	"github.com/jortega/userboard/internal/middleware"
	"github.com/jortega/userboard/internal/templates/layouts"
	"github.com/jortega/userboard/internal/token"
	"github.com/jortega/userboard/internal/uploads"
	"github.com/jortega/userboard/internal/users"
)

// RegisterRoutes builds the service graph and sets up all application
// routes. This is the single place where everything is aggregated.
func (a *App) RegisterRoutes() {
	e := a.Echo

	// --- Service graph ---

	tokens := token.NewService(a.Config.Auth.SecretKey, a.Config.Auth.TokenTTL)

	imageStore, err := uploads.NewStore(a.Config.Upload.Path, a.Config.Upload.MaxSize)
	if err != nil {
		slog.Error("failed to initialize upload store", slog.Any("error", err))
		os.Exit(1)
	}

	repo := users.NewCachingRepository(users.NewRepository(a.DB), a.Redis)
	svc := users.NewService(repo, imageStore, tokens)
	handler := users.NewHandler(svc, tokens, a.Config.Auth.CookieTTL)

	// Copy request data into the Go context so Templ components can read it.
	middleware.LayoutInjector = func(c echo.Context, ctx context.Context) context.Context {
		ctx = layouts.SetCSRFToken(ctx, middleware.GetCSRFToken(c))
		if u := users.CurrentUser(c); u != nil {
			ctx = layouts.SetAuthenticated(ctx, true)
			ctx = layouts.SetUserName(ctx, u.DisplayName)
			ctx = layouts.SetUserImage(ctx, u.ProfileImagePath)
		}
		return ctx
	}

	// --- User Routes ---

	users.RegisterRoutes(e, handler, users.Identify(tokens, svc))

	// --- Health Check ---

	// Reports whether both backing stores answer; used by container health
	// monitoring.
	e.GET("/healthz", func(c echo.Context) error {
		ctx := c.Request().Context()
		if err := a.DB.PingContext(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "db unavailable"})
		}
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "redis unavailable"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}
