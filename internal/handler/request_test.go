package handler

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalBool_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		body string
		want OptionalBool
	}{
		{body: `{"open": true}`, want: OptionalBool{Value: true, Set: true}},
		{body: `{"open": false}`, want: OptionalBool{Value: false, Set: true}},
		{body: `{"open": "false"}`, want: OptionalBool{Value: false, Set: true}},
		{body: `{"open": "true"}`, want: OptionalBool{Value: true, Set: true}},
		{body: `{"open": null}`, want: OptionalBool{}},
		{body: `{"open": ""}`, want: OptionalBool{}},
		{body: `{}`, want: OptionalBool{}},
		{body: `{"open": "nope"}`, want: OptionalBool{Invalid: true}},
		{body: `{"open": 1}`, want: OptionalBool{Invalid: true}},
		{body: `{"open": {"x": true}}`, want: OptionalBool{Invalid: true}},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			var req updateIssueRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			assert.Equal(t, tt.want, req.Open)
			if tt.want.Set {
				require.NotNil(t, req.patch().Open)
				assert.Equal(t, tt.want.Value, *req.patch().Open)
			} else {
				assert.Nil(t, req.patch().Open, "invalid and unset values are not patched")
			}
		})
	}
}

func TestOptionalBool_InvalidDoesNotStopDecoding(t *testing.T) {
	var req updateIssueRequest
	require.NoError(t, json.Unmarshal([]byte(`{"open": "maybe", "_id": "abc", "status_text": "x"}`), &req))
	assert.True(t, req.Open.Invalid)
	assert.Equal(t, "abc", req.ID)
	assert.Equal(t, "x", req.StatusText)
}

func TestOptionalBool_UnmarshalParam(t *testing.T) {
	tests := map[string]OptionalBool{
		"":      {},
		"true":  {Value: true, Set: true},
		"0":     {Value: false, Set: true},
		"maybe": {Invalid: true},
	}

	for param, want := range tests {
		t.Run(param, func(t *testing.T) {
			var b OptionalBool
			require.NoError(t, b.UnmarshalParam(param))
			assert.Equal(t, want, b)
		})
	}
}

func TestRawJSONID(t *testing.T) {
	tests := []struct {
		body   string
		wantID string
		wantOK bool
	}{
		{body: `{"_id": "abc"}`, wantID: "abc", wantOK: true},
		{body: `{"_id": 123}`, wantID: "123", wantOK: true},
		{body: `{"_id": true}`, wantID: "true", wantOK: true},
		{body: `{"_id": null}`, wantID: "", wantOK: true},
		{body: `{"title": "x"}`, wantID: "", wantOK: true},
		{body: `[1, 2]`, wantOK: false},
		{body: `{"_id": `, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			id, ok := rawJSONID([]byte(tt.body))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestUpdateIssueRequest_Patch(t *testing.T) {
	req := updateIssueRequest{
		ID:         "abc",
		Title:      "",
		StatusText: "done",
		Open:       OptionalBool{Value: false, Set: true},
	}

	p := req.patch()
	assert.Nil(t, p.Title)
	assert.Nil(t, p.Text)
	assert.Nil(t, p.AssignedTo)
	require.NotNil(t, p.StatusText)
	assert.Equal(t, "done", *p.StatusText)
	require.NotNil(t, p.Open)
	assert.False(t, *p.Open)

	assert.True(t, updateIssueRequest{ID: "abc"}.patch().IsEmpty())
}

func TestAppValidator(t *testing.T) {
	v := NewAppValidator()

	err := v.Validate(&createIssueRequest{Title: "t", Text: "x"})
	assert.ErrorContains(t, err, "required field(s) missing")

	assert.NoError(t, v.Validate(&createIssueRequest{Title: "t", Text: "x", CreatedBy: "c"}))
}
