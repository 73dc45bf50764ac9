package store

import (
	"context"
	"fmt"

	"github.com/nhle/projecthub/internal/model"
)

// ReplaceUsers swaps the cached user roster for the given one.
func (s *SQLiteStore) ReplaceUsers(ctx context.Context, users []model.User) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM users"); err != nil {
		return fmt.Errorf("clearing user cache: %w", err)
	}

	const query = `
		INSERT INTO users (id, name, email, created_at)
		VALUES (?, ?, ?, ?)`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing user insert: %w", err)
	}
	defer stmt.Close()

	for _, u := range users {
		_, err := stmt.ExecContext(ctx, u.ID, u.Name, u.Email, u.CreatedAt)
		if err != nil {
			return fmt.Errorf("caching user %s: %w", u.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing user cache: %w", err)
	}
	return nil
}

// GetUsers returns all cached users sorted by name.
func (s *SQLiteStore) GetUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := s.db.SelectContext(ctx, &users,
		"SELECT * FROM users ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("reading user cache: %w", err)
	}
	return users, nil
}
