package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timeoutContext() echo.Context {
	req := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func TestRequestTimeout_SetsDeadline(t *testing.T) {
	var hasDeadline bool
	err := RequestTimeout(5 * time.Second)(func(c echo.Context) error {
		_, hasDeadline = c.Request().Context().Deadline()
		return c.String(http.StatusOK, "ok")
	})(timeoutContext())

	require.NoError(t, err)
	assert.True(t, hasDeadline)
}

func TestRequestTimeout_ExpiredStoreCallIs504(t *testing.T) {
	err := RequestTimeout(20 * time.Millisecond)(func(c echo.Context) error {
		<-c.Request().Context().Done()
		return fmt.Errorf("list appointments: %w", c.Request().Context().Err())
	})(timeoutContext())

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusGatewayTimeout, httpErr.Code)
}

func TestRequestTimeout_OtherErrorsPassThrough(t *testing.T) {
	want := echo.NewHTTPError(http.StatusBadRequest, "bad")
	err := RequestTimeout(time.Second)(func(c echo.Context) error { return want })(timeoutContext())
	assert.Equal(t, want, err)
}

func TestRequestTimeout_ZeroDisables(t *testing.T) {
	var hasDeadline bool
	RequestTimeout(0)(func(c echo.Context) error {
		_, hasDeadline = c.Request().Context().Deadline()
		return nil
	})(timeoutContext())
	assert.False(t, hasDeadline)
}
