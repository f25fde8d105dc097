package middleware

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/bytes"
)

const defaultBodyLimit = "1M"

// BodyLimit rejects request bodies larger than limit with 413, whether the
// size is declared up front or only discovered while reading. Unparseable
// limits fall back to 1M.
func BodyLimit(limit string) echo.MiddlewareFunc {
	return echomw.BodyLimit(normalizeLimit(limit))
}

func normalizeLimit(limit string) string {
	if n, err := bytes.Parse(limit); err != nil || n <= 0 {
		return defaultBodyLimit
	}
	return limit
}
