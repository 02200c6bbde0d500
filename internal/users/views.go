package users

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/jortega/userboard/internal/templates/layouts"
)

// IndexPage renders the listing of all registered users plus the signed-in
// user's header card. Password hashes never reach this layer; the listing
// query does not select them.
func IndexPage(list []User, current *User) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<section class="welcome"><h1>Welcome, %s</h1></section><section class="user-list"><table><thead><tr><th></th><th>Username</th><th>Name</th><th>E-mail</th><th></th></tr></thead><tbody>`,
			templ.EscapeString(current.DisplayName),
		); err != nil {
			return err
		}

		for _, u := range list {
			avatar := ""
			if u.ProfileImagePath != "" {
				avatar = fmt.Sprintf(`<img class="avatar" src="%s" alt="">`,
					templ.EscapeString(u.ProfileImagePath))
			}
			if _, err := fmt.Fprintf(w,
				`<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td>`+
					`<td><a href="/edit/%d">Edit</a>`+
					`<form class="inline" method="post" action="/delete/%d">`,
				avatar,
				templ.EscapeString(u.Username),
				templ.EscapeString(u.DisplayName),
				templ.EscapeString(u.Email),
				u.ID,
				u.ID,
			); err != nil {
				return err
			}
			if err := layouts.CSRFField().Render(ctx, w); err != nil {
				return err
			}
			if _, err := io.WriteString(w,
				`<button type="submit">Delete</button></form></td></tr>`,
			); err != nil {
				return err
			}
		}

		_, err := io.WriteString(w, `</tbody></table></section>`)
		return err
	})

	return layouts.Base("Users", body)
}

// RegisterPage renders the registration form. On validation failure it is
// re-rendered with every field message and the submitted values pre-filled.
// conflictMsg carries the separate store-level uniqueness failure.
func RegisterPage(form RegisterForm, fieldErrs []FieldError, conflictMsg string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<section class="auth-form"><h1>Create an account</h1>`); err != nil {
			return err
		}

		if conflictMsg != "" {
			if _, err := fmt.Fprintf(w, `<p class="flash flash-error">%s</p>`,
				templ.EscapeString(conflictMsg)); err != nil {
				return err
			}
		}
		if len(fieldErrs) > 0 {
			if _, err := io.WriteString(w, `<ul class="field-errors">`); err != nil {
				return err
			}
			for _, fe := range fieldErrs {
				if _, err := fmt.Fprintf(w, `<li data-field="%s">%s</li>`,
					templ.EscapeString(fe.Field),
					templ.EscapeString(fe.Message),
				); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, `</ul>`); err != nil {
				return err
			}
		}

		if _, err := fmt.Fprintf(w,
			`<form method="post" action="/register" enctype="multipart/form-data">`+
				`<label>Username<input type="text" name="user" value="%s"></label>`+
				`<label>Full name<input type="text" name="name" value="%s"></label>`+
				`<label>E-mail<input type="email" name="email" value="%s"></label>`+
				`<label>Password<input type="password" name="pass"></label>`+
				`<label>Profile image<input type="file" name="profileImage" accept="image/*"></label>`,
			templ.EscapeString(form.Username),
			templ.EscapeString(form.DisplayName),
			templ.EscapeString(form.Email),
		); err != nil {
			return err
		}
		if err := layouts.CSRFField().Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `<button type="submit">Register</button></form></section>`)
		return err
	})

	return layouts.Base("Register", body)
}

// LoginPage renders the login form, optionally with a warning or a success
// flash. The warning text is identical for every credential failure.
func LoginPage(username, warning, success string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<section class="auth-form"><h1>Sign in</h1>`); err != nil {
			return err
		}

		if warning != "" {
			if _, err := fmt.Fprintf(w, `<p class="flash flash-error">%s</p>`,
				templ.EscapeString(warning)); err != nil {
				return err
			}
		}
		if success != "" {
			if _, err := fmt.Fprintf(w, `<p class="flash flash-success">%s</p><p><a href="/">Go to the user list</a></p>`,
				templ.EscapeString(success)); err != nil {
				return err
			}
		}

		if _, err := fmt.Fprintf(w,
			`<form method="post" action="/login">`+
				`<label>Username<input type="text" name="user" value="%s"></label>`+
				`<label>Password<input type="password" name="pass"></label>`,
			templ.EscapeString(username),
		); err != nil {
			return err
		}
		if err := layouts.CSRFField().Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `<button type="submit">Sign in</button></form></section>`)
		return err
	})

	return layouts.Base("Sign in", body)
}

// EditPage renders the edit form pre-filled with the target user's current
// values. Fields left empty on submit keep their stored values.
func EditPage(user *User) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<section class="auth-form"><h1>Edit %s</h1>`,
			templ.EscapeString(user.Username),
		); err != nil {
			return err
		}

		if user.ProfileImagePath != "" {
			if _, err := fmt.Fprintf(w, `<img class="avatar-large" src="%s" alt="">`,
				templ.EscapeString(user.ProfileImagePath)); err != nil {
				return err
			}
		}

		if _, err := fmt.Fprintf(w,
			`<form method="post" action="/edit/%d" enctype="multipart/form-data">`+
				`<label>Full name<input type="text" name="name" value="%s"></label>`+
				`<label>E-mail<input type="email" name="email" value="%s"></label>`+
				`<label>Replace profile image<input type="file" name="profileImage" accept="image/*"></label>`,
			user.ID,
			templ.EscapeString(user.DisplayName),
			templ.EscapeString(user.Email),
		); err != nil {
			return err
		}
		if err := layouts.CSRFField().Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `<button type="submit">Save</button></form></section>`)
		return err
	})

	return layouts.Base("Edit user", body)
}
