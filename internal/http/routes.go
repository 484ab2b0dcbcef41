package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "care-tasks.com/care-tasks/internal/errors"
)

// Register mounts the API. Middlewares run in order on every route.
func Register(e *echo.Echo, h *Handler, middlewares ...echo.MiddlewareFunc) {
	g := e.Group("", middlewares...)

	g.GET("/team", h.ListTeam)
	g.GET("/team/roles/:role", h.ListTeamByRole)
	g.POST("/team", h.EnrollMember)
	g.DELETE("/team/:id", h.DeactivateMember)

	g.POST("/tasks", h.CreateTask)
	g.GET("/tasks", h.ListTasks)
	g.GET("/tasks/:id", h.GetTask)
	g.DELETE("/tasks/:id", h.DeleteTask)
	g.PUT("/tasks/:id/executions/:memberId", h.SetExecutionStatus)

	g.POST("/attendance", h.RecordClockEvent)
	g.POST("/attendance/import", h.ImportClockEvents)
	g.GET("/attendance", h.ListClockEvents)
}

// ErrorHandler renders domain errors with their status and message. Anything else
// goes through echo's default handler.
func ErrorHandler(e *echo.Echo, logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			e.DefaultHTTPErrorHandler(err, c)
			return
		}

		status := apperrors.StatusCode(err)
		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}
		e.DefaultHTTPErrorHandler(echo.NewHTTPError(status, apperrors.Message(err)), c)
	}
}
