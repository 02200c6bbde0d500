package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/jortega/userboard/internal/apperror"
)

// mysqlErrDuplicateEntry is the MySQL/MariaDB error number for a unique
// constraint violation. The users table has a unique index on email.
const mysqlErrDuplicateEntry = 1062

// Repository defines the data access contract for user records.
// All SQL lives in the concrete implementation -- no SQL leaks out.
type Repository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id int64) error
}

// mysqlRepository implements Repository with hand-written MariaDB queries.
type mysqlRepository struct {
	db *sql.DB
}

// NewRepository creates a user repository backed by the given DB pool.
func NewRepository(db *sql.DB) Repository {
	return &mysqlRepository{db: db}
}

// Create inserts a new user row and fills in the store-assigned ID.
// A unique-email violation surfaces as a 409 Conflict, distinguishable
// from both validation failures and unexpected store errors.
func (r *mysqlRepository) Create(ctx context.Context, user *User) error {
	query := `INSERT INTO users (username, display_name, email, password_hash, profile_image)
	          VALUES (?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		user.Username,
		user.DisplayName,
		user.Email,
		user.PasswordHash,
		user.ProfileImagePath,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return apperror.NewConflict("an account with this e-mail already exists")
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading inserted user id: %w", err)
	}
	user.ID = id

	return nil
}

// FindByID retrieves a user by primary key.
// Returns apperror.NotFound if no user exists with this ID.
func (r *mysqlRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	query := `SELECT id, username, display_name, email, password_hash, profile_image
	          FROM users WHERE id = ?`

	user := &User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.DisplayName,
		&user.Email,
		&user.PasswordHash,
		&user.ProfileImagePath,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by id: %w", err)
	}

	return user, nil
}

// FindByUsername retrieves a user by their login name. Usernames are not
// unique-enforced; the first matching row wins, same as the legacy system.
// Returns apperror.NotFound if no user exists with this username.
func (r *mysqlRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	query := `SELECT id, username, display_name, email, password_hash, profile_image
	          FROM users WHERE username = ? LIMIT 1`

	user := &User{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.DisplayName,
		&user.Email,
		&user.PasswordHash,
		&user.ProfileImagePath,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by username: %w", err)
	}

	return user, nil
}

// List returns all users ordered by ID. The password hash is deliberately
// excluded from the query -- listing views never need credential data.
func (r *mysqlRepository) List(ctx context.Context) ([]User, error) {
	query := `SELECT id, username, display_name, email, profile_image
	          FROM users ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(
			&u.ID, &u.Username, &u.DisplayName, &u.Email, &u.ProfileImagePath,
		); err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

// Update overwrites the mutable fields of a user row. Existence is checked
// by the caller via FindByID; RowsAffected can legitimately be zero here
// when the submitted values equal the stored ones.
func (r *mysqlRepository) Update(ctx context.Context, user *User) error {
	query := `UPDATE users SET display_name = ?, email = ?, profile_image = ? WHERE id = ?`

	_, err := r.db.ExecContext(ctx, query,
		user.DisplayName,
		user.Email,
		user.ProfileImagePath,
		user.ID,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return apperror.NewConflict("an account with this e-mail already exists")
		}
		return fmt.Errorf("updating user: %w", err)
	}

	return nil
}

// Delete removes a user row. Returns apperror.NotFound if the ID is absent.
func (r *mysqlRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	n, _ := result.RowsAffected()
	if n == 0 {
		return apperror.NewNotFound("user not found")
	}

	return nil
}

// isDuplicateEntry reports whether err is a MySQL unique constraint violation.
func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrDuplicateEntry
}
