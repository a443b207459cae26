package patient

import (
	"net/http"
	"time"

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

	g := api.Group("/patients", staff)
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.POST("/:id/outcomes", h.RecordOutcome)
	g.GET("/:id/outcomes", h.ListOutcomes)
}

type createRequest struct {
	MRN         string  `json:"mrn"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	DateOfBirth *string `json:"date_of_birth"`
}

func (h *Handler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	in := CreateInput{MRN: req.MRN, FirstName: req.FirstName, LastName: req.LastName}
	if req.DateOfBirth != nil {
		dob, err := time.Parse("2006-01-02", *req.DateOfBirth)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "date_of_birth must be YYYY-MM-DD")
		}
		in.DateOfBirth = &dob
	}

	p, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), errs.Message(err))
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}

	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), errs.Message(err))
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) List(c echo.Context) error {
	p := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), errs.Message(err))
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, p.Limit, p.Offset))
}

type outcomeRequest struct {
	Seen        bool    `json:"seen"`
	AttemptMade bool    `json:"attempt_made"`
	Declined    bool    `json:"declined"`
	Unseen      bool    `json:"unseen"`
	Refer       bool    `json:"refer"`
	Note        *string `json:"note"`
}

func (h *Handler) RecordOutcome(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}

	var req outcomeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	caller := auth.CallerFromContext(c.Request().Context())
	o, err := h.svc.RecordOutcome(c.Request().Context(), caller, id, OutcomeInput{
		Seen:        req.Seen,
		AttemptMade: req.AttemptMade,
		Declined:    req.Declined,
		Unseen:      req.Unseen,
		Refer:       req.Refer,
		Note:        req.Note,
	})
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), errs.Message(err))
	}
	return c.JSON(http.StatusCreated, o)
}

func (h *Handler) ListOutcomes(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}

	items, err := h.svc.ListOutcomes(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), errs.Message(err))
	}
	return c.JSON(http.StatusOK, items)
}
