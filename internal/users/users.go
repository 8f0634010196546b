// Package users stores the accounts that can sign in to the admin area.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/codr1/clubconnect/internal/db"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 50
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrInvalidUsername = errors.New("invalid username")
)

type User struct {
	ID           int64
	Username     string
	PasswordHash string
	IsTrainer    bool
	Active       bool
	CreatedAt    time.Time
}

type Store struct {
	q db.DBTX
}

func NewStore(q db.DBTX) *Store {
	return &Store{q: q}
}

// NormalizeUsername trims and lowercases username and checks its length.
func NormalizeUsername(username string) (string, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	n := utf8.RuneCountInString(username)
	if n < minUsernameLength || n > maxUsernameLength {
		return "", fmt.Errorf("%w: must be %d to %d characters", ErrInvalidUsername, minUsernameLength, maxUsernameLength)
	}
	return username, nil
}

// Create stores a new account. passwordHash must already be hashed.
func (s *Store) Create(ctx context.Context, username, passwordHash string, isTrainer bool) (User, error) {
	username, err := NormalizeUsername(username)
	if err != nil {
		return User{}, err
	}
	if passwordHash == "" {
		return User{}, errors.New("password hash is required")
	}

	result, err := s.q.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, is_trainer, active, created_at)
		VALUES (?, ?, ?, 1, ?)`,
		username,
		passwordHash,
		isTrainer,
		time.Now().UTC(),
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return User{}, fmt.Errorf("%w: %s", ErrUsernameTaken, username)
		}
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return User{}, fmt.Errorf("user id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByUsername returns the active account with the given username.
func (s *Store) GetByUsername(ctx context.Context, username string) (User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	row := s.q.QueryRowContext(ctx,
		`SELECT id, username, password_hash, is_trainer, active, created_at
		FROM users
		WHERE username = ? AND active = 1`,
		username,
	)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("get user by username: %w", err)
	}
	return user, nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (User, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT id, username, password_hash, is_trainer, active, created_at
		FROM users
		WHERE id = ?`,
		id,
	)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// SetActive enables or disables an account. Disabled accounts cannot sign in.
func (s *Store) SetActive(ctx context.Context, id int64, active bool) error {
	result, err := s.q.ExecContext(ctx, `UPDATE users SET active = ? WHERE id = ?`, active, id)
	if err != nil {
		return fmt.Errorf("set user active: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.IsTrainer, &user.Active, &user.CreatedAt)
	return user, err
}
