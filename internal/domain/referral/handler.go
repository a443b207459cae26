package referral

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/caretrack/caretrack/internal/platform/auth"
	"github.com/caretrack/caretrack/pkg/errs"
	"github.com/caretrack/caretrack/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	staff := auth.RequireRole(auth.RoleProfessional, auth.RoleAssistant)

	g := api.Group("/referrals", staff)
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Resolve)
}

type createRequest struct {
	PatientID        uuid.UUID `json:"patient_id"`
	FromDepartmentID uuid.UUID `json:"from_department_id"`
	ToDepartmentID   uuid.UUID `json:"to_department_id"`
	Priority         string    `json:"priority"`
	Notes            *string   `json:"notes"`
}

func (h *Handler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	caller := auth.CallerFromContext(c.Request().Context())
	ref, err := h.svc.Create(c.Request().Context(), caller, CreateInput{
		PatientID:        req.PatientID,
		FromDepartmentID: req.FromDepartmentID,
		ToDepartmentID:   req.ToDepartmentID,
		Priority:         req.Priority,
		Notes:            req.Notes,
	})
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), errs.Message(err))
	}
	return c.JSON(http.StatusCreated, ref)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid referral id")
	}

	ref, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), errs.Message(err))
	}
	return c.JSON(http.StatusOK, ref)
}

type resolveRequest struct {
	Decision string `json:"decision"`
}

func (h *Handler) Resolve(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid referral id")
	}

	var req resolveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	caller := auth.CallerFromContext(c.Request().Context())
	ref, err := h.svc.Resolve(c.Request().Context(), caller, id, Status(req.Decision))
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), errs.Message(err))
	}
	return c.JSON(http.StatusOK, ref)
}

func (h *Handler) List(c echo.Context) error {
	direction := Direction(c.QueryParam("direction"))
	switch direction {
	case DirectionIncoming, DirectionOutgoing, DirectionAny:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "direction must be incoming or outgoing")
	}

	caller := auth.CallerFromContext(c.Request().Context())
	p := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), caller, direction, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), errs.Message(err))
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, p.Limit, p.Offset))
}
