// Package layouts provides the shared page layout and typed context helpers
// for passing request data from handlers/middleware to Templ components.
// Only simple types are stored, so this package never imports domain types.
//
// Data flow: Handler/Middleware -> Echo Context -> LayoutInjector -> Go Context -> Templ
package layouts

import "context"

// ctxKey is a private type for context keys to prevent collisions.
type ctxKey string

const (
	keyIsAuthenticated ctxKey = "layout_is_authenticated"
	keyUserName        ctxKey = "layout_user_name"
	keyUserImage       ctxKey = "layout_user_image"
	keyCSRFToken       ctxKey = "layout_csrf_token"
)

// --- Setters (called by the layout injector in app/routes.go) ---

// SetAuthenticated marks whether the current request has a resolved identity.
func SetAuthenticated(ctx context.Context, authed bool) context.Context {
	return context.WithValue(ctx, keyIsAuthenticated, authed)
}

// SetUserName stores the signed-in user's display name in context.
func SetUserName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, keyUserName, name)
}

// SetUserImage stores the signed-in user's profile image path in context.
func SetUserImage(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, keyUserImage, path)
}

// SetCSRFToken stores the CSRF token for forms.
func SetCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, keyCSRFToken, token)
}

// --- Getters (called by Templ components) ---

// IsAuthenticated returns true if the current request has a resolved identity.
func IsAuthenticated(ctx context.Context) bool {
	authed, ok := ctx.Value(keyIsAuthenticated).(bool)
	return ok && authed
}

// UserName returns the signed-in user's display name, or "".
func UserName(ctx context.Context) string {
	name, _ := ctx.Value(keyUserName).(string)
	return name
}

// UserImage returns the signed-in user's profile image path, or "".
func UserImage(ctx context.Context) string {
	path, _ := ctx.Value(keyUserImage).(string)
	return path
}

// CSRFToken returns the CSRF token for the current request, or "".
func CSRFToken(ctx context.Context) string {
	token, _ := ctx.Value(keyCSRFToken).(string)
	return token
}
