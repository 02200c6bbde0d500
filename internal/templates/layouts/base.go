package layouts

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// Base wraps a page body in the shared HTML skeleton: head, top navigation,
// and footer. The navigation adapts to the request identity stored in the
// context by the layout injector.
func Base(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
				`<meta name="viewport" content="width=device-width, initial-scale=1">`+
				`<title>%s · userboard</title>`+
				`<link rel="stylesheet" href="/static/style.css">`+
				`</head><body><nav class="topnav"><a class="brand" href="/">userboard</a><div class="nav-links">`,
			templ.EscapeString(title),
		); err != nil {
			return err
		}

		if IsAuthenticated(ctx) {
			if img := UserImage(ctx); img != "" {
				if _, err := fmt.Fprintf(w, `<img class="nav-avatar" src="%s" alt="">`,
					templ.EscapeString(img)); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(w,
				`<span class="nav-user">%s</span><a href="/logout">Log out</a>`,
				templ.EscapeString(UserName(ctx)),
			); err != nil {
				return err
			}
		} else {
			if _, err := io.WriteString(w,
				`<a href="/login">Log in</a><a href="/register">Register</a>`,
			); err != nil {
				return err
			}
		}

		if _, err := io.WriteString(w, `</div></nav><main class="container">`); err != nil {
			return err
		}

		if err := body.Render(ctx, w); err != nil {
			return err
		}

		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}

// CSRFField renders the hidden form input carrying the CSRF token.
func CSRFField() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<input type="hidden" name="csrf_token" value="%s">`,
			templ.EscapeString(CSRFToken(ctx)),
		)
		return err
	})
}
