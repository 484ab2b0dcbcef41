package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"care-tasks.com/care-tasks/internal/constants"
	dto "care-tasks.com/care-tasks/internal/data_models"
	apperrors "care-tasks.com/care-tasks/internal/errors"
	middleware "care-tasks.com/care-tasks/internal/http/middlewares"
	"care-tasks.com/care-tasks/internal/http/validators"
	"care-tasks.com/care-tasks/internal/identity"
	"care-tasks.com/care-tasks/internal/services"
)

type Handler struct {
	roster         *services.RosterService
	taskService    *services.TaskService
	executions     *services.ExecutionService
	attendance     *services.AttendanceService
	importMaxBytes int64
}

func NewHandler(
	roster *services.RosterService,
	taskService *services.TaskService,
	executions *services.ExecutionService,
	attendance *services.AttendanceService,
	importMaxBytes int64,
) *Handler {
	return &Handler{
		roster:         roster,
		taskService:    taskService,
		executions:     executions,
		attendance:     attendance,
		importMaxBytes: importMaxBytes,
	}
}

func caller(c echo.Context) (identity.Caller, error) {
	who, ok := middleware.CallerFrom(c)
	if !ok {
		return identity.Caller{}, echo.NewHTTPError(http.StatusUnauthorized, "missing identity")
	}
	return who, nil
}

func privileged(c echo.Context) (identity.Caller, error) {
	who, err := caller(c)
	if err != nil {
		return who, err
	}
	if !who.Privileged() {
		return who, apperrors.ErrPrivilegeRequired
	}
	return who, nil
}

// scopedRole returns the role filter of a listing. Non-privileged callers only ever
// see their own role.
func scopedRole(c echo.Context, who identity.Caller) (constants.Role, error) {
	if !who.Privileged() {
		return who.Role, nil
	}
	raw := c.QueryParam("role")
	if raw == "" {
		return "", nil
	}
	role, ok := constants.ParseRole(raw)
	if !ok {
		return "", apperrors.ErrInvalidRole
	}
	return role, nil
}

func (h *Handler) ListTeam(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return err
	}
	filter, err := scopedRole(c, who)
	if err != nil {
		return err
	}

	members, err := h.roster.ListByAccountAndRole(c.Request().Context(), who.ID, who.Role, filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"count":   len(members),
		"members": members,
	})
}

func (h *Handler) ListTeamByRole(c echo.Context) error {
	if _, err := privileged(c); err != nil {
		return err
	}
	role, ok := constants.ParseRole(c.Param("role"))
	if !ok {
		return apperrors.ErrInvalidRole
	}

	members, err := h.roster.ListByRole(c.Request().Context(), role)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"count":   len(members),
		"members": members,
	})
}

func (h *Handler) EnrollMember(c echo.Context) error {
	who, err := privileged(c)
	if err != nil {
		return err
	}

	var req dto.EnrollMemberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if err := validators.Validate(&req); err != nil {
		return err
	}

	member, err := h.roster.EnrollMember(c.Request().Context(), who.ID, req.Name, req.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, member)
}

func (h *Handler) DeactivateMember(c echo.Context) error {
	who, err := privileged(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	id := c.Param("id")
	belongs, err := h.roster.BelongsToAccount(ctx, id, who.ID)
	if err != nil {
		return err
	}
	if !belongs {
		return apperrors.ErrMemberNotInTeam
	}

	if err := h.roster.DeactivateMember(ctx, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CreateTask(c echo.Context) error {
	who, err := privileged(c)
	if err != nil {
		return err
	}

	var req dto.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if err := validators.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	id, err := h.taskService.CreateTask(ctx, dto.CreateTaskInput{
		Title:           req.Title,
		Description:     req.Description,
		TargetRole:      req.TargetRole,
		DueDate:         req.DueDate,
		DocumentRef:     req.DocumentRef,
		CreatorID:       who.ID,
		Recurrence:      req.Recurrence,
		DestinationMode: req.DestinationMode,
		AssigneeIDs:     req.AssigneeIDs,
	})
	if err != nil {
		return err
	}

	task, err := h.executions.GetTask(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, task)
}

func (h *Handler) GetTask(c echo.Context) error {
	if _, err := caller(c); err != nil {
		return err
	}

	task, err := h.executions.GetTask(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

func (h *Handler) ListTasks(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return err
	}
	role, err := scopedRole(c, who)
	if err != nil {
		return err
	}

	includeValidations, _ := strconv.ParseBool(c.QueryParam("include_validations"))
	tasks, err := h.executions.ListTasks(c.Request().Context(), dto.TaskFilter{
		Role:               role,
		MemberID:           c.QueryParam("member_id"),
		IncludeValidations: includeValidations,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"count": len(tasks),
		"tasks": tasks,
	})
}

func (h *Handler) DeleteTask(c echo.Context) error {
	if _, err := privileged(c); err != nil {
		return err
	}
	if err := h.taskService.DeleteTask(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) SetExecutionStatus(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return err
	}

	var req dto.SetExecutionStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if err := validators.Validate(&req); err != nil {
		return err
	}

	execution, err := h.executions.SetExecutionStatus(c.Request().Context(), who, dto.SetExecutionStatusInput{
		TaskID:         c.Param("id"),
		MemberID:       c.Param("memberId"),
		Status:         req.Status,
		Note:           req.Note,
		AttachmentRef:  req.AttachmentRef,
		MemberNameHint: req.MemberName,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, execution)
}
