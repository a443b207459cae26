package summary

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/caretrack/caretrack/internal/platform/auth"
	"github.com/caretrack/caretrack/pkg/errs"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes attaches the summary endpoints. Echo resolves static paths
// before parameter paths, so /tasks/summary never collides with /tasks/:id.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	staff := auth.RequireRole(auth.RoleProfessional, auth.RoleAssistant)

	api.GET("/tasks/summary", h.TaskSummary, staff)
	api.GET("/referrals/summary", h.ReferralSummary, staff)
	api.GET("/dashboard", h.Dashboard, staff)
}

func (h *Handler) TaskSummary(c echo.Context) error {
	caller := auth.CallerFromContext(c.Request().Context())
	sum, err := h.svc.TaskSummary(c.Request().Context(), caller)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), errs.Message(err))
	}
	return c.JSON(http.StatusOK, sum)
}

func (h *Handler) ReferralSummary(c echo.Context) error {
	caller := auth.CallerFromContext(c.Request().Context())
	sum, err := h.svc.ReferralSummary(c.Request().Context(), caller)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), errs.Message(err))
	}
	return c.JSON(http.StatusOK, sum)
}

func (h *Handler) Dashboard(c echo.Context) error {
	caller := auth.CallerFromContext(c.Request().Context())
	d, err := h.svc.Dashboard(c.Request().Context(), caller)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), errs.Message(err))
	}
	return c.JSON(http.StatusOK, d)
}
