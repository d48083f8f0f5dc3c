package domain

import "time"

// Issue represents a trackable work item filed under a project.
type Issue struct {
	ID         string    `json:"_id" db:"id"`
	Title      string    `json:"issue_title" db:"issue_title"`
	Text       string    `json:"issue_text" db:"issue_text"`
	CreatedOn  time.Time `json:"created_on" db:"created_on"`
	UpdatedOn  time.Time `json:"updated_on" db:"updated_on"`
	CreatedBy  string    `json:"created_by" db:"created_by"`
	AssignedTo string    `json:"assigned_to" db:"assigned_to"`
	Open       bool      `json:"open" db:"is_open"`
	StatusText string    `json:"status_text" db:"status_text"`
}

// NewIssue holds the client-supplied fields of an issue before it is stored.
type NewIssue struct {
	Title      string
	Text       string
	CreatedBy  string
	AssignedTo string
	StatusText string
	Open       *bool
}

// Validate reports ErrRequiredFieldsMissing when a required field is empty.
func (n NewIssue) Validate() error {
	if n.Title == "" || n.Text == "" || n.CreatedBy == "" {
		return ErrRequiredFieldsMissing
	}
	return nil
}

// Build returns the Issue to persist, with defaults applied and both
// timestamps set to now. The ID is left for the store to assign.
func (n NewIssue) Build(now time.Time) Issue {
	open := true
	if n.Open != nil {
		open = *n.Open
	}
	return Issue{
		Title:      n.Title,
		Text:       n.Text,
		CreatedOn:  now,
		UpdatedOn:  now,
		CreatedBy:  n.CreatedBy,
		AssignedTo: n.AssignedTo,
		Open:       open,
		StatusText: n.StatusText,
	}
}

// IssuePatch lists the fields an update may change. A nil field is left
// untouched.
type IssuePatch struct {
	Title      *string
	Text       *string
	CreatedBy  *string
	AssignedTo *string
	StatusText *string
	Open       *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p IssuePatch) IsEmpty() bool {
	return p.Title == nil &&
		p.Text == nil &&
		p.CreatedBy == nil &&
		p.AssignedTo == nil &&
		p.StatusText == nil &&
		p.Open == nil
}

// Apply returns a copy of i with the patch applied and UpdatedOn set.
func (p IssuePatch) Apply(i Issue, updatedOn time.Time) Issue {
	if p.Title != nil {
		i.Title = *p.Title
	}
	if p.Text != nil {
		i.Text = *p.Text
	}
	if p.CreatedBy != nil {
		i.CreatedBy = *p.CreatedBy
	}
	if p.AssignedTo != nil {
		i.AssignedTo = *p.AssignedTo
	}
	if p.StatusText != nil {
		i.StatusText = *p.StatusText
	}
	if p.Open != nil {
		i.Open = *p.Open
	}
	i.UpdatedOn = updatedOn
	return i
}
