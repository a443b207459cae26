package catalog

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/caretrack/caretrack/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	role := auth.RequireRole(auth.RoleProfessional, auth.RoleAssistant)

	g := api.Group("", role)
	g.GET("/departments", h.ListDepartments)
	g.GET("/wards", h.ListWards)
	g.GET("/specialties", h.ListSpecialties)
	g.GET("/interventions", h.ListInterventions)
}

func (h *Handler) ListDepartments(c echo.Context) error {
	items, err := h.svc.ListDepartments(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list departments")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListWards(c echo.Context) error {
	items, err := h.svc.ListWards(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list wards")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListSpecialties(c echo.Context) error {
	items, err := h.svc.ListSpecialties(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list specialties")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListInterventions(c echo.Context) error {
	items, err := h.svc.ListInterventions(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list interventions")
	}
	return c.JSON(http.StatusOK, items)
}
