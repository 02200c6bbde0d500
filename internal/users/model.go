// Package users implements registration, login, listing, editing, and
// deletion of user accounts for userboard. It owns the User entity, its
// MariaDB repository, the registration validation pipeline, and the
// request-identity middleware.
package users

import (
	"mime/multipart"
)

// User represents a registered account. This is the domain model used
// throughout the application; database scanning uses it directly.
type User struct {
	ID               int64  `json:"id"`
	Username         string `json:"username"`
	DisplayName      string `json:"display_name"`
	Email            string `json:"email"`
	PasswordHash     string `json:"-"` // Never expose in any output surface.
	ProfileImagePath string `json:"profile_image_path,omitempty"`
}

// RegisterForm holds the raw registration form submission. It is validated
// as a whole before anything is persisted, and echoed back to the form on
// failure so the user doesn't retype everything.
type RegisterForm struct {
	Username    string `form:"user"`
	DisplayName string `form:"name"`
	Email       string `form:"email"`
	Password    string `form:"pass"`

	// Image is the uploaded profile picture. Bound separately from the
	// multipart body by the handler.
	Image *multipart.FileHeader `form:"-"`
}

// FieldError is a single validation failure tied to a form field. The full
// set is collected before returning so the form can be annotated at once.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RegisterInput is the validated input for creating a new user.
type RegisterInput struct {
	Username    string
	DisplayName string
	Email       string
	Password    string
	Image       *multipart.FileHeader
}

// EditInput is a partial update. Empty fields mean "keep the current value";
// nothing is ever overwritten with an empty string. A nil Image leaves the
// existing profile image untouched.
type EditInput struct {
	DisplayName string
	Email       string
	Image       *multipart.FileHeader
}
