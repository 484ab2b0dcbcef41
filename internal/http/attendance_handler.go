package http

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/labstack/echo/v4"

	dto "care-tasks.com/care-tasks/internal/data_models"
	apperrors "care-tasks.com/care-tasks/internal/errors"
	"care-tasks.com/care-tasks/internal/http/validators"
	"care-tasks.com/care-tasks/internal/importsheet"
)

func (h *Handler) RecordClockEvent(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return err
	}

	var req dto.ClockEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if err := validators.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if !who.Privileged() {
		belongs, err := h.roster.BelongsToAccount(ctx, req.MemberID, who.ID)
		if err != nil {
			return err
		}
		if !belongs {
			return apperrors.ErrMemberNotInTeam
		}
	}

	record, err := h.attendance.RecordClockEvent(ctx, dto.ClockEventInput{
		MemberID:  req.MemberID,
		AccountID: who.ID,
		EventType: req.EventType,
		Note:      req.Note,
		At:        req.At,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, record)
}

func (h *Handler) ImportClockEvents(c echo.Context) error {
	who, err := privileged(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file not found in request")
	}
	if fileHeader.Size > h.importMaxBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file too large")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read file")
	}
	defer file.Close()

	rows, rowErrors, err := importsheet.Parse(fileHeader.Filename, file)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if len(rows) == 0 {
		return apperrors.Validation("sheet has no valid rows")
	}

	result, err := h.attendance.ImportClockEvents(c.Request().Context(), rows, who.ID)
	if err != nil {
		return err
	}

	result.Errors = append(result.Errors, rowErrors...)
	sort.SliceStable(result.Errors, func(i, j int) bool {
		return result.Errors[i].Line < result.Errors[j].Line
	})
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) ListClockEvents(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return err
	}
	role, err := scopedRole(c, who)
	if err != nil {
		return err
	}

	var limit int
	if raw := c.QueryParam("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a number")
		}
	}

	records, err := h.attendance.ListClockEvents(c.Request().Context(), dto.ClockFilter{
		Role:     role,
		MemberID: c.QueryParam("member_id"),
		Limit:    limit,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"count":   len(records),
		"records": records,
	})
}
