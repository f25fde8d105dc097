package auth

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// LegacyTokenHeader is the header the browser client sends its token in.
const LegacyTokenHeader = "x-auth-token"

// Dev-mode identity headers.
const (
	DevUserHeader = "X-User-ID"
	DevRoleHeader = "X-User-Role"
)

type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
	// User is the nested payload issued by the legacy auth service:
	// {"user": {"id": "...", "role": "..."}}.
	User *LegacyUser `json:"user,omitempty"`
}

type LegacyUser struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

// Principal extracts the caller identity, preferring registered claims.
func (c *Claims) Principal() Principal {
	p := Principal{UserID: c.Subject, Role: c.Role}
	if c.User != nil {
		if p.UserID == "" {
			p.UserID = c.User.ID
		}
		if p.Role == "" {
			p.Role = c.User.Role
		}
	}
	return p
}

type JWTConfig struct {
	Issuer     string
	Audience   string
	SigningKey []byte
	// Skipper bypasses authentication for matching requests.
	Skipper func(c echo.Context) bool
}

// tokenFromRequest returns the bearer token, falling back to the legacy header.
func tokenFromRequest(r *http.Request) (string, error) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
		}
		return strings.TrimSpace(parts[1]), nil
	}
	if tok := r.Header.Get(LegacyTokenHeader); tok != "" {
		return tok, nil
	}
	return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
}

func hasToken(r *http.Request) bool {
	return r.Header.Get("Authorization") != "" || r.Header.Get(LegacyTokenHeader) != ""
}

func parseToken(cfg JWTConfig, tokenStr string) (Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return cfg.SigningKey, nil
	}, opts...)
	if err != nil || !token.Valid {
		return Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	p := claims.Principal()
	if p.UserID == "" {
		return Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "token has no subject")
	}
	return p, nil
}

func JWTMiddleware(cfg JWTConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper != nil && cfg.Skipper(c) {
				return next(c)
			}

			tokenStr, err := tokenFromRequest(c.Request())
			if err != nil {
				return err
			}
			p, err := parseToken(cfg, tokenStr)
			if err != nil {
				return err
			}

			c.SetRequest(c.Request().WithContext(WithPrincipal(c.Request().Context(), p)))
			return next(c)
		}
	}
}

// DevAuthMiddleware is a permissive middleware for development. Requests
// without a token take their identity from the X-User-ID and X-User-Role
// headers, defaulting to dev-user/worker. Tokens, when present, are still
// validated.
func DevAuthMiddleware(cfg JWTConfig) echo.MiddlewareFunc {
	strict := JWTMiddleware(cfg)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		validated := strict(next)
		return func(c echo.Context) error {
			if hasToken(c.Request()) {
				return validated(c)
			}

			p := Principal{
				UserID: c.Request().Header.Get(DevUserHeader),
				Role:   c.Request().Header.Get(DevRoleHeader),
			}
			if p.UserID == "" {
				p.UserID = "dev-user"
			}
			if p.Role == "" {
				p.Role = RoleWorker
			}
			c.SetRequest(c.Request().WithContext(WithPrincipal(c.Request().Context(), p)))
			return next(c)
		}
	}
}
