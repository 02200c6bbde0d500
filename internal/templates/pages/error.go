// Package pages holds the Templ components shared across the application.
// Feature-specific pages live next to their handlers.
package pages

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/a-h/templ"

	"github.com/jortega/userboard/internal/templates/layouts"
)

// ErrorPage renders a full error page for the given HTTP status code and
// client-safe message. Used by the central Echo error handler.
func ErrorPage(code int, message string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<section class="error-page"><h1>%d %s</h1><p>%s</p><p><a href="/">Back to home</a></p></section>`,
			code,
			templ.EscapeString(http.StatusText(code)),
			templ.EscapeString(message),
		)
		return err
	})

	return layouts.Base(http.StatusText(code), body)
}
