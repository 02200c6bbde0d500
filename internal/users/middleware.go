package users

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jortega/userboard/internal/token"
)

// contextKeyUser stores the resolved user record in the Echo context.
const contextKeyUser = "current_user"

// Identify returns middleware for protected routes. It resolves the
// request's identity from the session cookie:
//
//  1. No cookie at all -> redirect straight to the login page.
//  2. Cookie present but the token fails verification (bad signature or
//     expired -- treated identically) -> clear the stale cookie and continue
//     with an unresolved identity. Handlers guard on CurrentUser themselves.
//  3. Token valid but the user no longer exists (deleted after issuance)
//     -> continue unresolved.
//  4. Otherwise attach the user record to the context and continue.
//
// The permissive fallback in steps 2-3 mirrors the legacy system's behavior:
// tampered and expired tokens produce the same unresolved outcome.
func Identify(tokens *token.Service, svc Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(sessionCookieName)
			if err != nil || cookie.Value == "" {
				return c.Redirect(http.StatusSeeOther, "/login")
			}

			userID, err := tokens.Verify(cookie.Value)
			if err != nil {
				clearSessionCookie(c)
				return next(c)
			}

			user, err := svc.Get(c.Request().Context(), userID)
			if err != nil {
				return next(c)
			}

			c.Set(contextKeyUser, user)
			return next(c)
		}
	}
}

// CurrentUser retrieves the resolved user from the Echo context.
// Returns nil when the request's identity is unresolved.
func CurrentUser(c echo.Context) *User {
	user, ok := c.Get(contextKeyUser).(*User)
	if !ok {
		return nil
	}
	return user
}
