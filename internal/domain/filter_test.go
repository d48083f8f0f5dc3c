package domain

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIssueFilter(t *testing.T) {
	q, err := url.ParseQuery("created_by=chai&status_text=initial+post&open=false&assigned_to=&color=red")
	require.NoError(t, err)

	f := ParseIssueFilter(q)

	require.NotNil(t, f.CreatedBy)
	assert.Equal(t, "chai", *f.CreatedBy)
	require.NotNil(t, f.StatusText)
	assert.Equal(t, "initial post", *f.StatusText)
	require.NotNil(t, f.Open)
	assert.False(t, *f.Open)
	require.NotNil(t, f.AssignedTo, "an empty value still constrains the field")
	assert.Equal(t, "", *f.AssignedTo)
	assert.Nil(t, f.Title)
	assert.False(t, f.Unsatisfiable)
}

func TestParseIssueFilter_Unparseable(t *testing.T) {
	for _, query := range []string{"open=maybe", "created_on=yesterday", "updated_on=1"} {
		q, err := url.ParseQuery(query)
		require.NoError(t, err)
		assert.True(t, ParseIssueFilter(q).Unsatisfiable, query)
	}
}

func TestIssueFilter_Matches(t *testing.T) {
	created := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	issue := Issue{
		ID:         "id-1",
		Title:      "title",
		CreatedBy:  "chai",
		StatusText: "initial post",
		Open:       true,
		CreatedOn:  created,
		UpdatedOn:  created,
	}

	q := url.Values{
		"created_by": {"chai"},
		"open":       {"true"},
		"created_on": {created.In(time.FixedZone("CET", 3600)).Format(time.RFC3339)},
	}
	assert.True(t, ParseIssueFilter(q).Matches(issue))

	q.Set("status_text", "done")
	assert.False(t, ParseIssueFilter(q).Matches(issue))

	assert.True(t, IssueFilter{}.Matches(issue))
	assert.False(t, IssueFilter{Unsatisfiable: true}.Matches(issue))
}
