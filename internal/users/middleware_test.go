package users

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jortega/userboard/internal/apperror"
	"github.com/jortega/userboard/internal/token"
)

// identifyRequest runs the Identify middleware over a no-op handler and
// reports the resolved user (if any) alongside the recorded response.
func identifyRequest(t *testing.T, tokens *token.Service, svc Service, cookie *http.Cookie) (*User, bool, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var resolved *User
	handlerRan := false
	handler := func(c echo.Context) error {
		handlerRan = true
		resolved = CurrentUser(c)
		return c.NoContent(http.StatusOK)
	}

	if err := Identify(tokens, svc)(handler)(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	return resolved, handlerRan, rec
}

func TestIdentifyNoCookieRedirects(t *testing.T) {
	tokens := token.NewService("test-secret", time.Hour)
	svc := newTestService(&mockRepo{}, &mockImageStore{})

	_, handlerRan, rec := identifyRequest(t, tokens, svc, nil)

	if handlerRan {
		t.Error("handler ran for a request with no session cookie")
	}
	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/login" {
		t.Errorf("expected redirect to /login, got %q", loc)
	}
}

func TestIdentifyResolvesUser(t *testing.T) {
	tokens := token.NewService("test-secret", time.Hour)
	repo := &mockRepo{
		findByIDFn: func(ctx context.Context, id int64) (*User, error) {
			return &User{ID: id, Username: "jdoe"}, nil
		},
	}
	svc := NewService(repo, &mockImageStore{}, tokens)

	tok, err := tokens.Issue(42)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	resolved, handlerRan, _ := identifyRequest(t, tokens, svc,
		&http.Cookie{Name: sessionCookieName, Value: tok})

	if !handlerRan {
		t.Fatal("handler did not run")
	}
	if resolved == nil {
		t.Fatal("identity not resolved for a valid token")
	}
	if resolved.ID != 42 {
		t.Errorf("resolved user ID %d, want 42", resolved.ID)
	}
}

// Tampered and expired tokens must behave identically: the stale cookie is
// cleared and the request continues anonymously, letting the handler decide.
func TestIdentifyBadTokensContinueUnresolved(t *testing.T) {
	tokens := token.NewService("test-secret", time.Hour)
	svc := newTestService(&mockRepo{}, &mockImageStore{})

	valid, err := tokens.Issue(42)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	expiredTokens := token.NewService("test-secret", -time.Hour)
	expired, err := expiredTokens.Issue(42)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	tampered := valid[:len(valid)-1] + "A"
	if tampered == valid {
		tampered = valid[:len(valid)-1] + "B"
	}

	cases := []struct {
		name  string
		value string
	}{
		{"tampered signature", tampered},
		{"expired", expired},
		{"garbage", "definitely.not.ajwt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resolved, handlerRan, rec := identifyRequest(t, tokens, svc,
				&http.Cookie{Name: sessionCookieName, Value: tc.value})

			if !handlerRan {
				t.Fatal("handler did not run; bad tokens must not block the request")
			}
			if resolved != nil {
				t.Errorf("identity resolved to %v from an invalid token", resolved)
			}

			cleared := false
			for _, sc := range rec.Result().Cookies() {
				if sc.Name == sessionCookieName && sc.MaxAge < 0 {
					cleared = true
				}
			}
			if !cleared {
				t.Error("stale session cookie was not cleared")
			}
		})
	}
}

func TestIdentifyDeletedUserContinuesUnresolved(t *testing.T) {
	tokens := token.NewService("test-secret", time.Hour)
	repo := &mockRepo{
		findByIDFn: func(ctx context.Context, id int64) (*User, error) {
			return nil, apperror.NewNotFound("user not found")
		},
	}
	svc := NewService(repo, &mockImageStore{}, tokens)

	tok, err := tokens.Issue(42)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	resolved, handlerRan, _ := identifyRequest(t, tokens, svc,
		&http.Cookie{Name: sessionCookieName, Value: tok})

	if !handlerRan {
		t.Fatal("handler did not run")
	}
	if resolved != nil {
		t.Errorf("identity resolved to %v for a deleted account", resolved)
	}
}
