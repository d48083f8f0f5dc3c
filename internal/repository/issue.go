package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sumire/issuetracker/internal/domain"
)

const (
	issueColumns          = `id, issue_title, issue_text, created_by, assigned_to, status_text, is_open, created_on, updated_on`
	qualifiedIssueColumns = `i.id, i.issue_title, i.issue_text, i.created_by, i.assigned_to, i.status_text, i.is_open, i.created_on, i.updated_on`
)

// IssueRepository handles issue data access operations.
type IssueRepository struct {
	db *sqlx.DB
}

// NewIssueRepository creates a new IssueRepository.
func NewIssueRepository(db *sqlx.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

// Insert stores a new issue under a freshly generated ID and returns the
// stored record.
func (r *IssueRepository) Insert(ctx context.Context, issue domain.Issue) (*domain.Issue, error) {
	var result domain.Issue
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(
		`INSERT INTO issues (`+issueColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING `+issueColumns),
		uuid.NewString(), issue.Title, issue.Text, issue.CreatedBy, issue.AssignedTo,
		issue.StatusText, issue.Open, issue.CreatedOn, issue.UpdatedOn,
	).StructScan(&result)
	if err != nil {
		return nil, fmt.Errorf("insert issue: %w", err)
	}
	return &result, nil
}

// FindByProject returns the issues filed under the project that satisfy the
// filter, in filing order. References to deleted issues are skipped, and an
// unknown project has no issues.
func (r *IssueRepository) FindByProject(ctx context.Context, project string, filter domain.IssueFilter) ([]domain.Issue, error) {
	if filter.Unsatisfiable {
		return []domain.Issue{}, nil
	}

	where := []string{"p.project_name = ?"}
	args := []any{project}
	add := func(column string, value any) {
		where = append(where, "i."+column+" = ?")
		args = append(args, value)
	}
	if filter.ID != nil {
		add("id", *filter.ID)
	}
	if filter.Title != nil {
		add("issue_title", *filter.Title)
	}
	if filter.Text != nil {
		add("issue_text", *filter.Text)
	}
	if filter.CreatedBy != nil {
		add("created_by", *filter.CreatedBy)
	}
	if filter.AssignedTo != nil {
		add("assigned_to", *filter.AssignedTo)
	}
	if filter.StatusText != nil {
		add("status_text", *filter.StatusText)
	}
	if filter.Open != nil {
		add("is_open", *filter.Open)
	}

	var rows []domain.Issue
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(
		`SELECT `+qualifiedIssueColumns+`
		 FROM project_issues p
		 JOIN issues i ON i.id = p.issue_id
		 WHERE `+strings.Join(where, " AND ")+`
		 ORDER BY p.seq`),
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("find issues of project %q: %w", project, err)
	}

	// Timestamps are compared here rather than in SQL, where their storage
	// format differs between drivers.
	issues := make([]domain.Issue, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, issue := range rows {
		if _, dup := seen[issue.ID]; dup || !filter.Matches(issue) {
			continue
		}
		seen[issue.ID] = struct{}{}
		issues = append(issues, issue)
	}
	return issues, nil
}

// Update applies a partial update to the issue and returns the record as it
// is after the update. The stored updated_on always moves forward: when
// updatedOn is not after the previous value, it becomes one microsecond
// past it.
func (r *IssueRepository) Update(ctx context.Context, id string, patch domain.IssuePatch, updatedOn time.Time) (*domain.Issue, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update issue %s: %w", id, err)
	}
	defer tx.Rollback() //nolint:errcheck

	var prev time.Time
	err = tx.GetContext(ctx, &prev, tx.Rebind(`SELECT updated_on FROM issues WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("read issue %s: %w", id, err)
	}
	if !updatedOn.After(prev) {
		updatedOn = prev.Add(time.Microsecond)
	}

	sets := []string{"updated_on = ?"}
	args := []any{updatedOn}
	set := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}
	if patch.Title != nil {
		set("issue_title", *patch.Title)
	}
	if patch.Text != nil {
		set("issue_text", *patch.Text)
	}
	if patch.CreatedBy != nil {
		set("created_by", *patch.CreatedBy)
	}
	if patch.AssignedTo != nil {
		set("assigned_to", *patch.AssignedTo)
	}
	if patch.StatusText != nil {
		set("status_text", *patch.StatusText)
	}
	if patch.Open != nil {
		set("is_open", *patch.Open)
	}
	args = append(args, id)

	var result domain.Issue
	err = tx.QueryRowxContext(ctx, tx.Rebind(
		`UPDATE issues SET `+strings.Join(sets, ", ")+`
		 WHERE id = ?
		 RETURNING `+issueColumns),
		args...,
	).StructScan(&result)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update issue %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update issue %s: %w", id, err)
	}
	return &result, nil
}

// Delete removes the issue and returns the removed record.
func (r *IssueRepository) Delete(ctx context.Context, id string) (*domain.Issue, error) {
	var result domain.Issue
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(
		`DELETE FROM issues WHERE id = ? RETURNING `+issueColumns), id,
	).StructScan(&result)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("delete issue %s: %w", id, err)
	}
	return &result, nil
}
