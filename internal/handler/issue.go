package handler

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/sumire/issuetracker/internal/domain"
	"github.com/sumire/issuetracker/internal/metrics"
	"github.com/sumire/issuetracker/internal/service"
)

// IssueHandler handles the /api/issues/:project endpoints.
type IssueHandler struct {
	issues *service.IssueService
}

// NewIssueHandler creates a new IssueHandler.
func NewIssueHandler(issues *service.IssueService) *IssueHandler {
	return &IssueHandler{issues: issues}
}

// List returns the project's issues, filtered by the query string.
func (h *IssueHandler) List(c echo.Context) error {
	project := c.Param("project")
	filter := domain.ParseIssueFilter(c.QueryParams())

	issues, err := h.issues.List(c.Request().Context(), project, filter)
	if err != nil {
		metrics.RecordIssueOperation("list", metrics.OutcomeFailure)
		return Fail(c, fmt.Errorf("list issues of %q: %w", project, err), "")
	}

	metrics.RecordIssueOperation("list", metrics.OutcomeSuccess)
	return OK(c, issues)
}

// Create files a new issue under the project.
func (h *IssueHandler) Create(c echo.Context) error {
	var req createIssueRequest
	if err := c.Bind(&req); err != nil {
		metrics.RecordIssueOperation("create", metrics.OutcomeValidationError)
		return Fail(c, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err), "")
	}
	if err := c.Validate(&req); err != nil {
		metrics.RecordIssueOperation("create", metrics.OutcomeValidationError)
		return Fail(c, err, "")
	}

	issue, err := h.issues.Create(c.Request().Context(), c.Param("project"), req.toDomain())
	if err != nil {
		outcome := metrics.OutcomeFailure
		if errors.Is(err, domain.ErrRequiredFieldsMissing) {
			outcome = metrics.OutcomeValidationError
		}
		metrics.RecordIssueOperation("create", outcome)
		return Fail(c, err, "")
	}

	metrics.RecordIssueOperation("create", metrics.OutcomeSuccess)
	return OK(c, issue)
}

// Update changes the non-empty fields sent for the issue identified by _id.
func (h *IssueHandler) Update(c echo.Context) error {
	var req updateIssueRequest
	if err := bindIDRequest(c, &req); err != nil {
		return bindFailure(c, "update", msgCouldNotUpdate, err)
	}
	if req.ID != "" && req.Open.Invalid {
		return couldNot(c, "update", msgCouldNotUpdate, req.ID, errors.New("open is not a boolean"))
	}

	_, err := h.issues.Update(c.Request().Context(), req.ID, req.patch())
	switch {
	case err == nil:
		metrics.RecordIssueOperation("update", metrics.OutcomeSuccess)
		return OK(c, ResultBody{Result: msgUpdated, ID: req.ID})
	case errors.Is(err, domain.ErrMissingID), errors.Is(err, domain.ErrNoUpdateFields):
		metrics.RecordIssueOperation("update", metrics.OutcomeValidationError)
		return Fail(c, err, req.ID)
	default:
		// Malformed IDs, unknown IDs and store failures look the same to
		// the client.
		return couldNot(c, "update", msgCouldNotUpdate, req.ID, err)
	}
}

// Delete removes the issue identified by _id.
func (h *IssueHandler) Delete(c echo.Context) error {
	var req deleteIssueRequest
	if err := bindIDRequest(c, &req); err != nil {
		return bindFailure(c, "delete", msgCouldNotDelete, err)
	}

	_, err := h.issues.Delete(c.Request().Context(), req.ID)
	switch {
	case err == nil:
		metrics.RecordIssueOperation("delete", metrics.OutcomeSuccess)
		return OK(c, ResultBody{Result: msgDeleted, ID: req.ID})
	case errors.Is(err, domain.ErrMissingID):
		metrics.RecordIssueOperation("delete", metrics.OutcomeValidationError)
		return Fail(c, err, req.ID)
	default:
		return couldNot(c, "delete", msgCouldNotDelete, req.ID, err)
	}
}

// bindFailure answers an update or delete whose body did not bind. A body
// that decodes still gets the collapsed answer for its _id.
func bindFailure(c echo.Context, op, msg string, err error) error {
	var fe *fieldError
	if !errors.As(err, &fe) {
		metrics.RecordIssueOperation(op, metrics.OutcomeValidationError)
		return Fail(c, err, "")
	}
	if fe.ID == "" {
		metrics.RecordIssueOperation(op, metrics.OutcomeValidationError)
		return Fail(c, domain.ErrMissingID, "")
	}
	return couldNot(c, op, msg, fe.ID, fe)
}

func couldNot(c echo.Context, op, msg, id string, err error) error {
	slog.Warn("could not "+op+" issue", "issue_id", id, "error", err)
	metrics.RecordIssueOperation(op, metrics.OutcomeFailure)
	return OK(c, ErrorBody{Error: msg, ID: id})
}
