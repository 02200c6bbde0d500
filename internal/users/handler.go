package users

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jortega/userboard/internal/apperror"
	"github.com/jortega/userboard/internal/middleware"
	"github.com/jortega/userboard/internal/token"
)

// sessionCookieName is the HTTP cookie carrying the signed session token.
// The name is kept from the legacy system.
const sessionCookieName = "jwt"

// loginMissingFieldsMessage is shown when either credential field is empty.
// A single generic warning; no store lookup happens in that case.
const loginMissingFieldsMessage = "Enter a username and password"

// Handler handles the HTTP surface for user accounts. Handlers are thin:
// they bind the request, call the service, and render the response. No
// business logic lives here.
type Handler struct {
	svc       Service
	tokens    *token.Service
	cookieTTL time.Duration
}

// NewHandler creates a user handler. cookieTTL is the session cookie
// lifetime, which deliberately exceeds the token's validity window; an
// expired token inside a live cookie resolves to an anonymous request.
func NewHandler(svc Service, tokens *token.Service, cookieTTL time.Duration) *Handler {
	return &Handler{svc: svc, tokens: tokens, cookieTTL: cookieTTL}
}

// Index renders the user listing (GET /). Protected route: the Identify
// middleware ran first, so an unresolved identity redirects to login.
func (h *Handler) Index(c echo.Context) error {
	current := CurrentUser(c)
	if current == nil {
		return c.Redirect(http.StatusSeeOther, "/login")
	}

	list, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}

	return middleware.Render(c, http.StatusOK, IndexPage(list, current))
}

// RegisterForm renders the empty registration form (GET /register).
func (h *Handler) RegisterForm(c echo.Context) error {
	// A visitor who is already signed in has nothing to register.
	if h.resolve(c) != nil {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return middleware.Render(c, http.StatusOK, RegisterPage(RegisterForm{}, nil, ""))
}

// Register processes the registration form (POST /register). All validation
// failures are collected and re-rendered together with the submitted values
// before anything touches the store.
func (h *Handler) Register(c echo.Context) error {
	var form RegisterForm
	if err := c.Bind(&form); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	// The file part is bound separately; a missing file is a validation
	// failure, not a bind error.
	if fh, err := c.FormFile("profileImage"); err == nil {
		form.Image = fh
	}

	if fieldErrs := ValidateRegistration(form); len(fieldErrs) > 0 {
		return middleware.Render(c, http.StatusOK, RegisterPage(form, fieldErrs, ""))
	}

	input := RegisterInput{
		Username:    form.Username,
		DisplayName: form.DisplayName,
		Email:       form.Email,
		Password:    form.Password,
		Image:       form.Image,
	}

	if _, err := h.svc.Register(c.Request().Context(), input); err != nil {
		// The unique-email conflict is its own failure mode, shown on the
		// form but never mixed into the field validation list.
		if apperror.IsCode(err, http.StatusConflict) {
			return middleware.Render(c, http.StatusOK, RegisterPage(form, nil, apperror.SafeMessage(err)))
		}
		return err
	}

	return c.Redirect(http.StatusSeeOther, "/")
}

// LoginForm renders the login page (GET /login).
func (h *Handler) LoginForm(c echo.Context) error {
	if h.resolve(c) != nil {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return middleware.Render(c, http.StatusOK, LoginPage("", "", ""))
}

// Login processes the login form (POST /login). Credential failures of any
// kind render one generic message so accounts can't be enumerated.
func (h *Handler) Login(c echo.Context) error {
	username := c.FormValue("user")
	password := c.FormValue("pass")

	// Either field missing: one generic warning, no store lookup.
	if username == "" || password == "" {
		return middleware.Render(c, http.StatusOK, LoginPage(username, loginMissingFieldsMessage, ""))
	}

	tok, _, err := h.svc.Login(c.Request().Context(), username, password)
	if err != nil {
		if apperror.IsCode(err, http.StatusUnauthorized) {
			return middleware.Render(c, http.StatusOK, LoginPage(username, apperror.SafeMessage(err), ""))
		}
		return err
	}

	h.setSessionCookie(c, tok)

	return middleware.Render(c, http.StatusOK, LoginPage("", "", "Signed in successfully"))
}

// Logout clears the session cookie and redirects home (GET /logout).
func (h *Handler) Logout(c echo.Context) error {
	clearSessionCookie(c)
	return c.Redirect(http.StatusSeeOther, "/")
}

// EditForm renders the pre-filled edit form (GET /edit/:id).
func (h *Handler) EditForm(c echo.Context) error {
	if CurrentUser(c) == nil {
		return c.Redirect(http.StatusSeeOther, "/login")
	}

	id, err := parseID(c)
	if err != nil {
		return err
	}

	user, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return middleware.Render(c, http.StatusOK, EditPage(user))
}

// Edit applies a partial update (POST or PUT /edit/:id). Omitted fields
// keep their stored values; a new image replaces the old path.
func (h *Handler) Edit(c echo.Context) error {
	if CurrentUser(c) == nil {
		return c.Redirect(http.StatusSeeOther, "/login")
	}

	id, err := parseID(c)
	if err != nil {
		return err
	}

	input := EditInput{
		DisplayName: c.FormValue("name"),
		Email:       c.FormValue("email"),
	}
	if fh, err := c.FormFile("profileImage"); err == nil {
		input.Image = fh
	}

	if _, err := h.svc.Edit(c.Request().Context(), id, input); err != nil {
		return err
	}

	return c.Redirect(http.StatusSeeOther, "/")
}

// Delete removes a user (POST /delete/:id).
func (h *Handler) Delete(c echo.Context) error {
	if CurrentUser(c) == nil {
		return c.Redirect(http.StatusSeeOther, "/login")
	}

	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}

	return c.Redirect(http.StatusSeeOther, "/")
}

// resolve returns the user for the request's session cookie, or nil when
// there is no cookie, the token fails verification, or the user is gone.
// Used by the public form pages to bounce already-authenticated visitors.
func (h *Handler) resolve(c echo.Context) *User {
	cookie, err := c.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	userID, err := h.tokens.Verify(cookie.Value)
	if err != nil {
		return nil
	}

	user, err := h.svc.Get(c.Request().Context(), userID)
	if err != nil {
		return nil
	}

	return user
}

// parseID reads the :id route parameter. A non-numeric ID can't name any
// user, so it is reported the same way as an absent one.
func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apperror.NewNotFound("user not found")
	}
	return id, nil
}

// --- Cookie helpers ---

// setSessionCookie sets the session cookie on the response. The cookie is
// HttpOnly (JS can't read it), Secure behind TLS, and SameSite=Lax.
func (h *Handler) setSessionCookie(c echo.Context, tok string) {
	req := c.Request()
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    tok,
		Path:     "/",
		HttpOnly: true,
		Secure:   req.TLS != nil || req.Header.Get("X-Forwarded-Proto") == "https",
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(h.cookieTTL),
	})
}

// clearSessionCookie removes the session cookie by setting MaxAge to -1.
func clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
