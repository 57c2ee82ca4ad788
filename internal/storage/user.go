package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cuongbtq/warden-data/internal/domain"
)

// GetActiveUserByToken resolves an API token to its active owner
func (s *Storage) GetActiveUserByToken(ctx context.Context, token string) (*domain.User, error) {
	query := s.db.Rebind(`
		SELECT id, username, token, is_active
		FROM users
		WHERE token = ? AND is_active = ?
	`)

	var user domain.User
	if err := s.db.GetContext(ctx, &user, query, token, true); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to get user by token: %w", err)
	}

	return &user, nil
}

// CreateUser inserts a user. Account management lives outside this service;
// this exists for bootstrap and tests.
func (s *Storage) CreateUser(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, username, token, is_active)
		VALUES (:id, :username, :token, :is_active)
	`
	if _, err := s.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}
