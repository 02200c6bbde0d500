package users

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jortega/userboard/internal/apperror"
	"github.com/jortega/userboard/internal/token"
)

func newTestHandler(repo *mockRepo, images *mockImageStore) (*Handler, *token.Service) {
	tokens := token.NewService("test-secret", time.Hour)
	svc := NewService(repo, images, tokens)
	return NewHandler(svc, tokens, 90*24*time.Hour), tokens
}

// postForm builds an Echo context for a urlencoded form submission.
func postForm(path string, form url.Values) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// sessionCookieFrom returns the session cookie from the recorded response,
// or nil when none was set.
func sessionCookieFrom(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			return c
		}
	}
	return nil
}

// --- Login ---

func TestLoginMissingFieldsSkipsLookup(t *testing.T) {
	lookups := 0
	repo := &mockRepo{
		findByUsernameFn: func(ctx context.Context, username string) (*User, error) {
			lookups++
			return nil, apperror.NewNotFound("user not found")
		},
	}
	h, _ := newTestHandler(repo, &mockImageStore{})

	c, rec := postForm("/login", url.Values{"user": {"jdoe"}})
	if err := h.Login(c); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if lookups != 0 {
		t.Errorf("store queried %d times for an incomplete form", lookups)
	}
	if !strings.Contains(rec.Body.String(), loginMissingFieldsMessage) {
		t.Error("missing-fields warning not rendered")
	}
	if sessionCookieFrom(rec) != nil {
		t.Error("session cookie set without credentials")
	}
}

func TestLoginBadCredentialsRendersGenericMessage(t *testing.T) {
	hash, err := hashPassword("123456")
	if err != nil {
		t.Fatalf("hashPassword returned error: %v", err)
	}
	repo := &mockRepo{
		findByUsernameFn: func(ctx context.Context, username string) (*User, error) {
			if username == "known" {
				return &User{ID: 1, Username: "known", PasswordHash: hash}, nil
			}
			return nil, apperror.NewNotFound("user not found")
		},
	}
	h, _ := newTestHandler(repo, &mockImageStore{})

	render := func(form url.Values) string {
		c, rec := postForm("/login", form)
		if err := h.Login(c); err != nil {
			t.Fatalf("Login returned error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if sessionCookieFrom(rec) != nil {
			t.Error("session cookie set on failed login")
		}
		return rec.Body.String()
	}

	unknown := render(url.Values{"user": {"nobody"}, "pass": {"123456"}})
	wrongPass := render(url.Values{"user": {"known"}, "pass": {"654321"}})

	if !strings.Contains(unknown, loginFailedMessage) {
		t.Error("generic failure message not rendered for an unknown user")
	}
	if !strings.Contains(wrongPass, loginFailedMessage) {
		t.Error("generic failure message not rendered for a wrong password")
	}
}

func TestLoginSuccessSetsVerifiableCookie(t *testing.T) {
	hash, err := hashPassword("123456")
	if err != nil {
		t.Fatalf("hashPassword returned error: %v", err)
	}
	repo := &mockRepo{
		findByUsernameFn: func(ctx context.Context, username string) (*User, error) {
			return &User{ID: 42, Username: "jdoe", PasswordHash: hash}, nil
		},
	}
	h, tokens := newTestHandler(repo, &mockImageStore{})

	c, rec := postForm("/login", url.Values{"user": {"jdoe"}, "pass": {"123456"}})
	if err := h.Login(c); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	cookie := sessionCookieFrom(rec)
	if cookie == nil {
		t.Fatal("no session cookie on successful login")
	}
	if !cookie.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}
	userID, err := tokens.Verify(cookie.Value)
	if err != nil {
		t.Fatalf("session cookie token does not verify: %v", err)
	}
	if userID != 42 {
		t.Errorf("token carries user ID %d, want 42", userID)
	}
	if !strings.Contains(rec.Body.String(), "Signed in successfully") {
		t.Error("success flash not rendered")
	}
}

// --- Logout ---

func TestLogoutClearsCookie(t *testing.T) {
	h, _ := newTestHandler(&mockRepo{}, &mockImageStore{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "whatever"})
	rec := httptest.NewRecorder()

	if err := h.Logout(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}

	cookie := sessionCookieFrom(rec)
	if cookie == nil || cookie.MaxAge >= 0 {
		t.Error("session cookie was not cleared")
	}
	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected %d, got %d", http.StatusSeeOther, rec.Code)
	}
}

// --- Register ---

func TestRegisterValidationFailureEchoesValues(t *testing.T) {
	repo := &mockRepo{}
	h, _ := newTestHandler(repo, &mockImageStore{})

	// Short name, bad password, no image; the email is fine and must come
	// back pre-filled.
	c, rec := postForm("/register", url.Values{
		"user":  {"jdoe"},
		"name":  {"Jo"},
		"email": {"jdoe@example.com"},
		"pass":  {"letters"},
	})
	if err := h.Register(c); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if repo.createCalls != 0 {
		t.Errorf("store observed %d writes for an invalid form", repo.createCalls)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "jdoe@example.com") {
		t.Error("submitted email not echoed back into the form")
	}
	if !strings.Contains(body, "No image was uploaded") {
		t.Error("missing-image failure not rendered")
	}
}

func TestRegisterSuccessRedirectsHome(t *testing.T) {
	var created *User
	repo := &mockRepo{
		createFn: func(ctx context.Context, user *User) error {
			created = user
			user.ID = 9
			return nil
		},
	}
	images := &mockImageStore{}
	h, _ := newTestHandler(repo, images)

	body, contentType := multipartRegistration(t, map[string]string{
		"user":  "jdoe",
		"name":  "John Doe",
		"email": "jdoe@example.com",
		"pass":  "123456",
	}, "avatar.png", "image/png")

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/register", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()

	if err := h.Register(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected %d, got %d (body: %s)", http.StatusSeeOther, rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/" {
		t.Errorf("expected redirect to /, got %q", loc)
	}
	if created == nil {
		t.Fatal("no user was created")
	}
	if images.saveCalls != 1 {
		t.Errorf("image store saw %d saves, want 1", images.saveCalls)
	}
}

func TestRegisterConflictRendersFormAgain(t *testing.T) {
	repo := &mockRepo{
		createFn: func(ctx context.Context, user *User) error {
			return apperror.NewConflict("an account with this e-mail already exists")
		},
	}
	h, _ := newTestHandler(repo, &mockImageStore{})

	body, contentType := multipartRegistration(t, map[string]string{
		"user":  "jdoe",
		"name":  "John Doe",
		"email": "taken@example.com",
		"pass":  "123456",
	}, "avatar.png", "image/png")

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/register", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()

	if err := h.Register(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected form re-render, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "already exists") {
		t.Error("conflict message not rendered")
	}
}

// multipartRegistration builds a multipart registration body with the given
// fields and a one-pixel file part declared with the given content type.
func multipartRegistration(t *testing.T, fields map[string]string, filename, contentType string) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			t.Fatalf("write field %q: %v", name, err)
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="profileImage"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("create file part: %v", err)
	}
	if _, err := part.Write([]byte{0x89, 'P', 'N', 'G'}); err != nil {
		t.Fatalf("write file part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	return &buf, mw.FormDataContentType()
}

// --- Protected pages ---

func TestIndexUnresolvedRedirects(t *testing.T) {
	h, _ := newTestHandler(&mockRepo{}, &mockImageStore{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	if err := h.Index(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Index returned error: %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/login" {
		t.Errorf("expected redirect to /login, got %q", loc)
	}
}

func TestIndexListsUsers(t *testing.T) {
	repo := &mockRepo{
		listFn: func(ctx context.Context) ([]User, error) {
			return []User{
				{ID: 1, Username: "jdoe", DisplayName: "John Doe", Email: "jdoe@example.com"},
				{ID: 2, Username: "asmith", DisplayName: "Alice Smith", Email: "asmith@example.com"},
			}, nil
		},
	}
	h, _ := newTestHandler(repo, &mockImageStore{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(contextKeyUser, &User{ID: 1, Username: "jdoe", DisplayName: "John Doe"})

	if err := h.Index(c); err != nil {
		t.Fatalf("Index returned error: %v", err)
	}

	body := rec.Body.String()
	for _, want := range []string{"jdoe", "asmith", "alice smith"} {
		if !strings.Contains(strings.ToLower(body), want) {
			t.Errorf("listing missing %q", want)
		}
	}
}

func TestDeleteNonNumericID(t *testing.T) {
	h, _ := newTestHandler(&mockRepo{}, &mockImageStore{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/delete/abc", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("abc")
	c.Set(contextKeyUser, &User{ID: 1})

	err := h.Delete(c)
	assertAppError(t, err, http.StatusNotFound)
}

func TestEditMergesSubmittedFields(t *testing.T) {
	stored := &User{
		ID:          5,
		Username:    "jdoe",
		DisplayName: "John Doe",
		Email:       "jdoe@example.com",
	}
	var updated *User
	repo := &mockRepo{
		findByIDFn: func(ctx context.Context, id int64) (*User, error) {
			copy := *stored
			return &copy, nil
		},
		updateFn: func(ctx context.Context, user *User) error {
			updated = user
			return nil
		},
	}
	h, _ := newTestHandler(repo, &mockImageStore{})

	c, rec := postForm("/edit/5", url.Values{"email": {"new@example.com"}})
	c.SetParamNames("id")
	c.SetParamValues("5")
	c.Set(contextKeyUser, &User{ID: 1})

	if err := h.Edit(c); err != nil {
		t.Fatalf("Edit returned error: %v", err)
	}

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if updated == nil {
		t.Fatal("repository Update was never called")
	}
	if updated.Email != "new@example.com" {
		t.Errorf("email not updated: %q", updated.Email)
	}
	if updated.DisplayName != "John Doe" {
		t.Errorf("display name overwritten: %q", updated.DisplayName)
	}
}
