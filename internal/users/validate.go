package users

import (
	"mime"
	"net/mail"
	"strings"
)

// allowedImageSubtypes are the accepted media subtypes for profile images,
// compared case-insensitively against the declared Content-Type.
var allowedImageSubtypes = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
}

// ValidateRegistration runs the whole registration pipeline and returns
// every failure, not just the first, so the form can be re-rendered with
// all messages alongside the submitted values. An empty slice means the
// form is acceptable.
//
// The numeric-only password rule mirrors the legacy system's policy and is
// kept for behavioral fidelity.
func ValidateRegistration(form RegisterForm) []FieldError {
	var errs []FieldError

	if len(strings.TrimSpace(form.DisplayName)) < 5 {
		errs = append(errs, FieldError{
			Field:   "name",
			Message: "Enter a full first and last name (at least 5 characters)",
		})
	}

	if !isValidEmail(form.Email) {
		errs = append(errs, FieldError{
			Field:   "email",
			Message: "Enter a valid e-mail address",
		})
	}

	if !isNumeric(form.Password) {
		errs = append(errs, FieldError{
			Field:   "pass",
			Message: "Enter a numeric password",
		})
	}

	if form.Image == nil {
		errs = append(errs, FieldError{
			Field:   "profileImage",
			Message: "No image was uploaded",
		})
	} else if !isAllowedImageType(form.Image.Header.Get("Content-Type")) {
		errs = append(errs, FieldError{
			Field:   "profileImage",
			Message: "Upload a valid image format (jpg, jpeg, png, gif)",
		})
	}

	return errs
}

// isValidEmail reports whether s is a syntactically valid bare address.
// Deliverability and store-side uniqueness are not checked here.
func isValidEmail(s string) bool {
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	// Reject "Name <addr>" forms; the field must be the address itself.
	return addr.Address == s
}

// isNumeric reports whether s is non-empty and composed entirely of digits.
func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// isAllowedImageType checks the declared media type's subtype against the
// accepted image formats. The stored bytes are not inspected; the image
// store is an opaque byte sink.
func isAllowedImageType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	parts := strings.SplitN(mediaType, "/", 2)
	if len(parts) != 2 {
		return false
	}
	return allowedImageSubtypes[strings.ToLower(parts[1])]
}
