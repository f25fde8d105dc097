package profile

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/migrantcare/healthtrack/internal/platform/auth"
	"github.com/migrantcare/healthtrack/pkg/pagination"
)

type Handler struct {
	resolver *Resolver
}

func NewHandler(resolver *Resolver) *Handler {
	return &Handler{resolver: resolver}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/doctors", h.ListDoctors)
	api.GET("/profile", h.GetOwnProfile)
}

func (h *Handler) ListDoctors(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.resolver.ListDoctors(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

// GetOwnProfile returns the caller's profile, or 404 when the role has none.
func (h *Handler) GetOwnProfile(c echo.Context) error {
	p, ok := auth.PrincipalFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing principal")
	}
	prof, err := h.resolver.Resolve(c.Request().Context(), p)
	if err != nil {
		return err
	}
	if prof == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no profile for this user")
	}
	return c.JSON(http.StatusOK, prof)
}
