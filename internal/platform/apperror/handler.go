package apperror

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// ServerErrorMessage is the only text clients see for internal faults.
const ServerErrorMessage = "Server Error"

// Body is the JSON shape of every error response.
type Body struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Status maps an error to its HTTP status and client-visible body.
func Status(err error) (int, Body) {
	var (
		ve *ValidationError
		fe *ForbiddenError
		ne *NotFoundError
		de *DataAccessFault
		he *echo.HTTPError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, Body{Message: "validation failed", Fields: ve.Fields}
	case errors.As(err, &fe):
		return http.StatusForbidden, Body{Message: fe.Error()}
	case errors.As(err, &ne):
		return http.StatusNotFound, Body{Message: ne.Error()}
	case errors.As(err, &de):
		return http.StatusInternalServerError, Body{Message: ServerErrorMessage}
	case errors.As(err, &he):
		if he.Code >= http.StatusInternalServerError {
			return he.Code, Body{Message: ServerErrorMessage}
		}
		msg, ok := he.Message.(string)
		if !ok {
			msg = http.StatusText(he.Code)
		}
		return he.Code, Body{Message: msg}
	default:
		return http.StatusInternalServerError, Body{Message: ServerErrorMessage}
	}
}

// HTTPErrorHandler renders errors returned by handlers and middleware.
// Internal faults are logged with their cause; the response never carries it.
func HTTPErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := Status(err)
		if code >= http.StatusInternalServerError {
			rid, _ := c.Get("request_id").(string)
			logger.Error().Err(err).
				Str("request_id", rid).
				Str("path", c.Request().URL.Path).
				Msg("request failed")
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(code)
		} else {
			writeErr = c.JSON(code, body)
		}
		if writeErr != nil {
			logger.Error().Err(writeErr).Msg("write error response")
		}
	}
}
