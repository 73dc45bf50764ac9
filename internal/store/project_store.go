package store

import (
	"context"
	"fmt"

	"github.com/nhle/projecthub/internal/model"
)

// ReplaceProjects swaps the cached project collection for the given one.
func (s *SQLiteStore) ReplaceProjects(ctx context.Context, projects []model.Project) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM projects"); err != nil {
		return fmt.Errorf("clearing project cache: %w", err)
	}

	const query = `
		INSERT INTO projects (id, name, description, owner, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing project insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range projects {
		_, err := stmt.ExecContext(ctx,
			p.ID, p.Name, p.Description, p.Owner, p.CreatedAt, p.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("caching project %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing project cache: %w", err)
	}
	return nil
}

// GetProjects returns all cached projects, newest first.
func (s *SQLiteStore) GetProjects(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	err := s.db.SelectContext(ctx, &projects,
		"SELECT * FROM projects ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("reading project cache: %w", err)
	}
	return projects, nil
}
