package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/jortega/userboard/internal/apperror"
	"github.com/jortega/userboard/internal/token"
)

// passwordHashCost is the bcrypt work factor. Fixed at 8 to stay compatible
// with hashes migrated from the legacy system.
const passwordHashCost = 8

// loginFailedMessage is the single message for every credential failure.
// Whether the username was unknown or the password wrong is never revealed,
// so accounts can't be enumerated through the login form.
const loginFailedMessage = "Incorrect username or password"

// ImageStore persists an uploaded profile image and returns the stable
// public path it will be served from. Satisfied by uploads.Store.
type ImageStore interface {
	Save(fh *multipart.FileHeader) (string, error)
}

// Service defines the business logic contract for user accounts.
// Handlers call these methods -- they never touch the repository directly.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*User, error)
	Login(ctx context.Context, username, password string) (string, *User, error)
	Get(ctx context.Context, id int64) (*User, error)
	List(ctx context.Context) ([]User, error)
	Edit(ctx context.Context, id int64, input EditInput) (*User, error)
	Delete(ctx context.Context, id int64) error
}

// service implements Service with bcrypt hashing and signed session tokens.
type service struct {
	repo   Repository
	images ImageStore
	tokens *token.Service
}

// NewService creates a user service with the given dependencies.
func NewService(repo Repository, images ImageStore, tokens *token.Service) Service {
	return &service{
		repo:   repo,
		images: images,
		tokens: tokens,
	}
}

// Register creates a new account from already-validated input: hash the
// password, store the profile image, create the record. A unique-email
// violation from the store passes through as a 409 Conflict.
func (s *service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("hashing password: %w", err))
	}

	var imagePath string
	if input.Image != nil {
		imagePath, err = s.images.Save(input.Image)
		if err != nil {
			if isAppError(err) {
				return nil, err
			}
			return nil, apperror.NewInternal(fmt.Errorf("storing profile image: %w", err))
		}
	}

	user := &User{
		Username:         input.Username,
		DisplayName:      input.DisplayName,
		Email:            input.Email,
		PasswordHash:     hash,
		ProfileImagePath: imagePath,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if isAppError(err) {
			return nil, err
		}
		return nil, apperror.NewInternal(fmt.Errorf("creating user: %w", err))
	}

	slog.Info("user registered",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Login authenticates by username and password. On success it issues a
// signed session token for the cookie. Both "no such user" and "wrong
// password" produce the identical generic failure.
func (s *service) Login(ctx context.Context, username, password string) (string, *User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if apperror.IsCode(err, http.StatusNotFound) {
			return "", nil, apperror.NewUnauthorized(loginFailedMessage)
		}
		return "", nil, apperror.NewInternal(fmt.Errorf("finding user: %w", err))
	}

	if !verifyPassword(password, user.PasswordHash) {
		return "", nil, apperror.NewUnauthorized(loginFailedMessage)
	}

	tok, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, apperror.NewInternal(fmt.Errorf("issuing session token: %w", err))
	}

	slog.Info("user logged in",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return tok, user, nil
}

// Get retrieves a user by ID. Returns apperror.NotFound when absent.
func (s *service) Get(ctx context.Context, id int64) (*User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isAppError(err) {
			return nil, err
		}
		return nil, apperror.NewInternal(fmt.Errorf("finding user: %w", err))
	}
	return user, nil
}

// List returns all registered users for the index page.
func (s *service) List(ctx context.Context) ([]User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing users: %w", err))
	}
	return users, nil
}

// Edit applies a partial update: only fields supplied in the input
// overwrite existing values, omitted fields keep their prior value.
// The target must exist or the operation fails with NotFound.
func (s *service) Edit(ctx context.Context, id int64, input EditInput) (*User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.DisplayName != "" {
		user.DisplayName = input.DisplayName
	}
	if input.Email != "" {
		user.Email = input.Email
	}
	if input.Image != nil {
		imagePath, err := s.images.Save(input.Image)
		if err != nil {
			if isAppError(err) {
				return nil, err
			}
			return nil, apperror.NewInternal(fmt.Errorf("storing profile image: %w", err))
		}
		user.ProfileImagePath = imagePath
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if isAppError(err) {
			return nil, err
		}
		return nil, apperror.NewInternal(fmt.Errorf("updating user: %w", err))
	}

	slog.Info("user updated", slog.Int64("user_id", user.ID))

	return user, nil
}

// Delete removes a user unconditionally. Returns NotFound if the ID is absent.
func (s *service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if isAppError(err) {
			return err
		}
		return apperror.NewInternal(fmt.Errorf("deleting user: %w", err))
	}

	slog.Info("user deleted", slog.Int64("user_id", id))

	return nil
}

// --- Password Hashing (bcrypt) ---

// hashPassword creates a salted bcrypt hash of the given password.
// An empty password here is a programmer error -- the validation pipeline
// guarantees a non-empty value before the service is ever called.
func hashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("refusing to hash empty password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// verifyPassword checks a plaintext password against a stored bcrypt hash.
// A malformed stored hash simply fails verification rather than erroring.
func verifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// isAppError reports whether err is already a domain error safe to surface.
func isAppError(err error) bool {
	var appErr *apperror.AppError
	return errors.As(err, &appErr)
}
