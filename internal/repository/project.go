package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ProjectRepository handles project data access operations.
type ProjectRepository struct {
	db *sqlx.DB
}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// AppendIssue appends issueID to the project's references, creating the
// project first if it does not exist. Both steps run in one transaction.
func (r *ProjectRepository) AppendIssue(ctx context.Context, name, issueID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert project %q: %w", name, err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, tx.Rebind(
		`INSERT INTO projects (name) VALUES (?) ON CONFLICT (name) DO NOTHING`), name); err != nil {
		return fmt.Errorf("upsert project %q: %w", name, err)
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(
		`INSERT INTO project_issues (project_name, issue_id) VALUES (?, ?)`), name, issueID); err != nil {
		return fmt.Errorf("append issue to project %q: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert project %q: %w", name, err)
	}
	return nil
}
