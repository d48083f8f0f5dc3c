package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sumire/issuetracker/internal/domain"
)

// IssueStore defines the issue data access interface consumed by IssueService.
type IssueStore interface {
	Insert(ctx context.Context, issue domain.Issue) (*domain.Issue, error)
	FindByProject(ctx context.Context, project string, filter domain.IssueFilter) ([]domain.Issue, error)
	Update(ctx context.Context, id string, patch domain.IssuePatch, updatedOn time.Time) (*domain.Issue, error)
	Delete(ctx context.Context, id string) (*domain.Issue, error)
}

// ProjectStore defines the project data access interface consumed by IssueService.
type ProjectStore interface {
	AppendIssue(ctx context.Context, name, issueID string) error
}

// IssueService handles issue tracking logic.
type IssueService struct {
	issues   IssueStore
	projects ProjectStore
	now      func() time.Time
}

// NewIssueService creates a new IssueService.
func NewIssueService(issues IssueStore, projects ProjectStore) *IssueService {
	return &IssueService{
		issues:   issues,
		projects: projects,
		now: func() time.Time {
			return time.Now().UTC().Truncate(time.Microsecond)
		},
	}
}

// List returns the project's issues matching the filter. An unknown project
// has no issues.
func (s *IssueService) List(ctx context.Context, project string, filter domain.IssueFilter) ([]domain.Issue, error) {
	return s.issues.FindByProject(ctx, project, filter)
}

// Create validates and stores a new issue, then files it under the project,
// creating the project if needed. If filing fails the issue stays stored.
func (s *IssueService) Create(ctx context.Context, project string, draft domain.NewIssue) (*domain.Issue, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	issue, err := s.issues.Insert(ctx, draft.Build(s.now()))
	if err != nil {
		return nil, err
	}

	if err := s.projects.AppendIssue(ctx, project, issue.ID); err != nil {
		slog.Error("issue stored without project reference",
			"project", project, "issue_id", issue.ID, "error", err)
		return nil, err
	}

	slog.Debug("issue created", "project", project, "issue_id", issue.ID)
	return issue, nil
}

// Update applies the patch to the issue and refreshes its updated_on.
func (s *IssueService) Update(ctx context.Context, id string, patch domain.IssuePatch) (*domain.Issue, error) {
	if id == "" {
		return nil, domain.ErrMissingID
	}
	if patch.IsEmpty() {
		return nil, domain.ErrNoUpdateFields
	}
	if err := validateID(id); err != nil {
		return nil, err
	}
	return s.issues.Update(ctx, id, patch, s.now())
}

// Delete removes the issue. Its project keeps the reference.
func (s *IssueService) Delete(ctx context.Context, id string) (*domain.Issue, error) {
	if id == "" {
		return nil, domain.ErrMissingID
	}
	if err := validateID(id); err != nil {
		return nil, err
	}
	return s.issues.Delete(ctx, id)
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", domain.ErrInvalidID, id)
	}
	return nil
}
