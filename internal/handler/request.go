package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sumire/issuetracker/internal/domain"
)

// OptionalBool is a boolean request field that records whether it was sent.
// null and "" count as not sent, and the strings "true"/"false" are accepted
// so that HTML form posts and JSON bodies bind the same way. Any other value
// leaves the field unset and marks it Invalid instead of failing the bind.
type OptionalBool struct {
	Value   bool
	Set     bool
	Invalid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *OptionalBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*b = OptionalBool{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return b.UnmarshalParam(s)
	}
	var v bool
	if err := json.Unmarshal(data, &v); err != nil {
		*b = OptionalBool{Invalid: true}
		return nil
	}
	*b = OptionalBool{Value: v, Set: true}
	return nil
}

// UnmarshalParam implements echo.BindUnmarshaler for form and query values.
func (b *OptionalBool) UnmarshalParam(param string) error {
	if param == "" {
		*b = OptionalBool{}
		return nil
	}
	v, err := strconv.ParseBool(param)
	if err != nil {
		*b = OptionalBool{Invalid: true}
		return nil
	}
	*b = OptionalBool{Value: v, Set: true}
	return nil
}

func (b OptionalBool) ptr() *bool {
	if !b.Set {
		return nil
	}
	v := b.Value
	return &v
}

type createIssueRequest struct {
	Title      string       `json:"issue_title" form:"issue_title" validate:"required"`
	Text       string       `json:"issue_text" form:"issue_text" validate:"required"`
	CreatedBy  string       `json:"created_by" form:"created_by" validate:"required"`
	AssignedTo string       `json:"assigned_to" form:"assigned_to"`
	StatusText string       `json:"status_text" form:"status_text"`
	Open       OptionalBool `json:"open" form:"open"`
}

func (r createIssueRequest) toDomain() domain.NewIssue {
	return domain.NewIssue{
		Title:      r.Title,
		Text:       r.Text,
		CreatedBy:  r.CreatedBy,
		AssignedTo: r.AssignedTo,
		StatusText: r.StatusText,
		Open:       r.Open.ptr(),
	}
}

type updateIssueRequest struct {
	ID         string       `json:"_id" form:"_id"`
	Title      string       `json:"issue_title" form:"issue_title"`
	Text       string       `json:"issue_text" form:"issue_text"`
	CreatedBy  string       `json:"created_by" form:"created_by"`
	AssignedTo string       `json:"assigned_to" form:"assigned_to"`
	StatusText string       `json:"status_text" form:"status_text"`
	Open       OptionalBool `json:"open" form:"open"`
}

// patch keeps only the fields that were sent with a non-empty value.
func (r updateIssueRequest) patch() domain.IssuePatch {
	return domain.IssuePatch{
		Title:      nonEmpty(r.Title),
		Text:       nonEmpty(r.Text),
		CreatedBy:  nonEmpty(r.CreatedBy),
		AssignedTo: nonEmpty(r.AssignedTo),
		StatusText: nonEmpty(r.StatusText),
		Open:       r.Open.ptr(),
	}
}

type deleteIssueRequest struct {
	ID string `json:"_id" form:"_id"`
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// fieldError reports a body that decoded but whose fields do not fit the
// request type. ID is the _id as sent, in its raw form when it is not a
// string.
type fieldError struct {
	ID  string
	Err error
}

func (e *fieldError) Error() string { return fmt.Sprintf("bind _id %q: %v", e.ID, e.Err) }

func (e *fieldError) Unwrap() error { return e.Err }

// bindIDRequest binds an update or delete body into dst. It returns an error
// wrapping domain.ErrInvalidInput when the body cannot be decoded at all, and
// a *fieldError when it decodes but a field has the wrong type.
func bindIDRequest(c echo.Context, dst any) error {
	req := c.Request()

	var raw []byte
	if req.Body != nil {
		var err error
		if raw, err = io.ReadAll(req.Body); err != nil {
			return fmt.Errorf("%w: read body: %v", domain.ErrInvalidInput, err)
		}
		req.Body = io.NopCloser(bytes.NewReader(raw))
	}

	ctype := req.Header.Get(echo.HeaderContentType)
	form := strings.HasPrefix(ctype, echo.MIMEApplicationForm)
	if form && req.PostForm == nil {
		// net/http only parses form bodies of POST, PUT and PATCH requests.
		values, err := url.ParseQuery(string(raw))
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		req.PostForm = values
	}

	bindErr := c.Bind(dst)
	if bindErr == nil {
		return nil
	}

	var id string
	switch {
	case form:
		id = req.PostForm.Get("_id")
	case strings.HasPrefix(ctype, echo.MIMEApplicationJSON):
		var ok bool
		if id, ok = rawJSONID(raw); !ok {
			return fmt.Errorf("%w: %v", domain.ErrInvalidInput, bindErr)
		}
	default:
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, bindErr)
	}
	return &fieldError{ID: id, Err: bindErr}
}

// rawJSONID returns the _id member of a JSON object body: strings unquoted,
// other scalars as written, null or absent as "". ok is false when the body
// is not a JSON object.
func rawJSONID(body []byte) (id string, ok bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return "", false
	}
	member, found := fields["_id"]
	if !found || bytes.Equal(member, []byte("null")) {
		return "", true
	}
	if err := json.Unmarshal(member, &id); err == nil {
		return id, true
	}
	return string(member), true
}
