package domain

import (
	"net/url"
	"strconv"
	"time"
)

// IssueFilter is a set of field equality constraints applied when listing
// issues. Nil fields are unconstrained.
type IssueFilter struct {
	ID         *string
	Title      *string
	Text       *string
	CreatedBy  *string
	AssignedTo *string
	StatusText *string
	Open       *bool
	CreatedOn  *time.Time
	UpdatedOn  *time.Time

	// Unsatisfiable is set when a typed value could not be parsed, so no
	// issue can match.
	Unsatisfiable bool
}

// ParseIssueFilter builds a filter from query parameters keyed by the issue's
// JSON field names. Unknown keys are ignored; when a key repeats, the first
// value wins.
func ParseIssueFilter(q url.Values) IssueFilter {
	var f IssueFilter

	str := func(key string) *string {
		if _, ok := q[key]; !ok {
			return nil
		}
		v := q.Get(key)
		return &v
	}

	f.ID = str("_id")
	f.Title = str("issue_title")
	f.Text = str("issue_text")
	f.CreatedBy = str("created_by")
	f.AssignedTo = str("assigned_to")
	f.StatusText = str("status_text")

	if v := str("open"); v != nil {
		b, err := strconv.ParseBool(*v)
		if err != nil {
			f.Unsatisfiable = true
		} else {
			f.Open = &b
		}
	}

	for key, dst := range map[string]**time.Time{
		"created_on": &f.CreatedOn,
		"updated_on": &f.UpdatedOn,
	} {
		v := str(key)
		if v == nil {
			continue
		}
		t, err := time.Parse(time.RFC3339Nano, *v)
		if err != nil {
			f.Unsatisfiable = true
			continue
		}
		t = t.UTC()
		*dst = &t
	}

	return f
}

// Matches reports whether the issue satisfies every constraint.
func (f IssueFilter) Matches(i Issue) bool {
	if f.Unsatisfiable {
		return false
	}
	return eq(f.ID, i.ID) &&
		eq(f.Title, i.Title) &&
		eq(f.Text, i.Text) &&
		eq(f.CreatedBy, i.CreatedBy) &&
		eq(f.AssignedTo, i.AssignedTo) &&
		eq(f.StatusText, i.StatusText) &&
		eq(f.Open, i.Open) &&
		(f.CreatedOn == nil || f.CreatedOn.Equal(i.CreatedOn)) &&
		(f.UpdatedOn == nil || f.UpdatedOn.Equal(i.UpdatedOn))
}

func eq[T comparable](want *T, got T) bool {
	return want == nil || *want == got
}
