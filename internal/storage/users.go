package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/centavo-dev/centavo/internal/common"
	"github.com/centavo-dev/centavo/internal/model"
)

// CreateUser persists a new user.
func (s *SQLiteStorage) CreateUser(ctx context.Context, user *model.User) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("%w: user", ErrNilParameter)
	}
	if err := validateString(user.Email, "email"); err != nil {
		return err
	}

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO users (name, email, is_admin, created_at)
		VALUES (?, ?, ?, ?)`

	result, err := s.db.ExecContext(ctx, query, user.Name, user.Email, user.IsAdmin, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get user id: %w", err)
	}
	user.ID = id
	return nil
}

// GetUserByID returns a user or common.ErrNotFound.
func (s *SQLiteStorage) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, name, email, is_admin, created_at
		FROM users
		WHERE id = ?`

	var user model.User
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Name, &user.Email, &user.IsAdmin, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %d", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

// DefaultUser resolves the admin user that owns statement imports when
// no explicit uploader is supplied. Fails with common.ErrNoDefaultUser
// when none is configured.
func (s *SQLiteStorage) DefaultUser(ctx context.Context) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, name, email, is_admin, created_at
		FROM users
		WHERE is_admin = 1
		ORDER BY id
		LIMIT 1`

	var user model.User
	err := s.db.QueryRowContext(ctx, query).Scan(
		&user.ID, &user.Name, &user.Email, &user.IsAdmin, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNoDefaultUser
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query default user: %w", err)
	}
	return &user, nil
}
