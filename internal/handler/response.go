package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sumire/issuetracker/internal/domain"
)

// Response messages. Clients match on these strings, so they must not change.
const (
	msgRequiredFieldsMissing = "required field(s) missing"
	msgMissingID             = "missing _id"
	msgNoUpdateFields        = "no update field(s) sent"
	msgCouldNotUpdate        = "could not update"
	msgCouldNotDelete        = "could not delete"
	msgInvalidBody           = "invalid request body"

	msgUpdated = "successfully updated"
	msgDeleted = "successfully deleted"
)

// ErrorBody is the body of every failed issue request.
type ErrorBody struct {
	Error string `json:"error"`
	ID    string `json:"_id,omitempty"`
}

// ResultBody is the body of a successful update or delete.
type ResultBody struct {
	Result string `json:"result"`
	ID     string `json:"_id"`
}

// OK writes data as JSON with status 200. Issue routes report failures in the
// body, never through the status code.
func OK(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, data)
}

// Fail writes the error body for err with status 200.
func Fail(c echo.Context, err error, id string) error {
	return OK(c, mapError(err, id))
}

func mapError(err error, id string) ErrorBody {
	switch {
	case errors.Is(err, domain.ErrRequiredFieldsMissing):
		return ErrorBody{Error: msgRequiredFieldsMissing}
	case errors.Is(err, domain.ErrMissingID):
		return ErrorBody{Error: msgMissingID}
	case errors.Is(err, domain.ErrNoUpdateFields):
		return ErrorBody{Error: msgNoUpdateFields, ID: id}
	case errors.Is(err, domain.ErrInvalidInput):
		return ErrorBody{Error: msgInvalidBody}
	default:
		slog.Error("store error", "error", err)
		return ErrorBody{Error: err.Error()}
	}
}

// HTTPErrorHandler is the global error handler for echo. It only sees
// framework errors such as unknown routes; those keep their status code.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	msg := http.StatusText(status)

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		status = echoErr.Code
		msg, _ = echoErr.Message.(string)
		if msg == "" {
			msg = http.StatusText(status)
		}
	} else {
		slog.Error("unhandled error", "error", err)
	}

	if jsonErr := c.JSON(status, ErrorBody{Error: msg}); jsonErr != nil {
		slog.Error("failed to send error response", "error", jsonErr)
	}
}
