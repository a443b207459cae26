package task

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/caretrack/caretrack/internal/platform/auth"
	"github.com/caretrack/caretrack/pkg/errs"
	"github.com/caretrack/caretrack/pkg/pagination"
)

const dateLayout = "2006-01-02"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	staff := auth.RequireRole(auth.RoleProfessional, auth.RoleAssistant)

	g := api.Group("/tasks", staff)
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("", h.UpdateOutcome)

	api.DELETE("/tasks/:id", h.Retire, auth.RequireRole(auth.RoleAdmin))
}

type createRequest struct {
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	TaskType      string                `json:"task_type"`
	Priority      string                `json:"priority"`
	DueDate       string                `json:"due_date"`
	DueTime       *string               `json:"due_time"`
	PatientID     uuid.UUID             `json:"patient_id"`
	Interventions []interventionRequest `json:"interventions"`
}

type interventionRequest struct {
	InterventionID uuid.UUID `json:"intervention_id"`
	WardID         uuid.UUID `json:"ward_id"`
	StartDate      string    `json:"start_date"`
	EndDate        string    `json:"end_date"`
}

func (h *Handler) Create(c echo.Context) error {
	caller := auth.CallerFromContext(c.Request().Context())

	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	dueDate, err := parseDate(req.DueDate, "due_date")
	if err != nil {
		return err
	}

	in := CreateInput{
		Title:       req.Title,
		Description: req.Description,
		TaskType:    req.TaskType,
		Priority:    req.Priority,
		DueDate:     dueDate,
		DueTime:     req.DueTime,
		PatientID:   req.PatientID,
	}
	for _, ivReq := range req.Interventions {
		start, err := parseDate(ivReq.StartDate, "start_date")
		if err != nil {
			return err
		}
		end, err := parseDate(ivReq.EndDate, "end_date")
		if err != nil {
			return err
		}
		in.Interventions = append(in.Interventions, InterventionInput{
			InterventionID: ivReq.InterventionID,
			WardID:         ivReq.WardID,
			StartDate:      start,
			EndDate:        end,
		})
	}

	detail, err := h.svc.Create(c.Request().Context(), caller, in)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), errs.Message(err))
	}
	return c.JSON(http.StatusCreated, detail)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid task id")
	}

	detail, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), errs.Message(err))
	}
	return c.JSON(http.StatusOK, detail)
}

type updateOutcomeRequest struct {
	TaskInterventionID uuid.UUID `json:"task_intervention_id"`
	OutcomeStatus      string    `json:"outcome_status"`
	Outcome            *string   `json:"outcome"`
}

func (h *Handler) UpdateOutcome(c echo.Context) error {
	var req updateOutcomeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.TaskInterventionID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "task_intervention_id is required")
	}

	detail, err := h.svc.ApplyOutcome(c.Request().Context(),
		req.TaskInterventionID, OutcomeStatus(req.OutcomeStatus), req.Outcome)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), errs.Message(err))
	}
	return c.JSON(http.StatusOK, detail)
}

func (h *Handler) List(c echo.Context) error {
	caller := auth.CallerFromContext(c.Request().Context())

	p := pagination.FromContext(c)
	filter := ListFilter{Mine: c.QueryParam("mine") == "true"}
	if raw := c.QueryParam("patient_id"); raw != "" {
		pid, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		filter.PatientID = &pid
	}

	details, total, err := h.svc.List(c.Request().Context(), caller, filter, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), errs.Message(err))
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(details, total, p.Limit, p.Offset))
}

func (h *Handler) Retire(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid task id")
	}

	if err := h.svc.Retire(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), errs.Message(err))
	}
	return c.NoContent(http.StatusNoContent)
}

func parseDate(raw, field string) (time.Time, error) {
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, echo.NewHTTPError(http.StatusBadRequest, field+" must be YYYY-MM-DD")
	}
	return t, nil
}
