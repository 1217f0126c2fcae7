package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "github.com/julianstephens/taskflow/internal/errors"
	"github.com/julianstephens/taskflow/internal/models"
	"github.com/julianstephens/taskflow/internal/service"
)

// completionResponse is the completed task plus what it unlocked.
type completionResponse struct {
	Task models.Task `json:"task"`
	models.CompletionUpdate
}

// handleGenerateSchedule serves GET /api/schedule/generate?days=7&workSchedule={...}
func (s *Server) handleGenerateSchedule(c echo.Context) error {
	days := s.svc.DefaultDays()
	if raw := strings.TrimSpace(c.QueryParam("days")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return apperrors.Validation("days", "must be an integer, got %q", raw)
		}
		days = parsed
	}

	var overrides models.WorkSchedule
	if raw := strings.TrimSpace(c.QueryParam("workSchedule")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &overrides); err != nil {
			return apperrors.Validation("workSchedule", "must be a JSON object of weekday windows: %v", err)
		}
	}

	result, err := s.svc.GenerateSchedule(c.Request().Context(), userID(c), overrides, days)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleStats(c echo.Context) error {
	stats, err := s.svc.GetSchedulingStats(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func (s *Server) handleUpdateAfterCompletion(c echo.Context) error {
	update, err := s.svc.UpdateScheduleAfterCompletion(c.Request().Context(), c.Param("taskId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, update)
}

func (s *Server) handleGetWorkSchedule(c echo.Context) error {
	schedule, err := s.svc.GetWorkSchedule(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, schedule)
}

func (s *Server) handleSaveWorkSchedule(c echo.Context) error {
	var schedule models.WorkSchedule
	if err := decodeBody(c, &schedule); err != nil {
		return err
	}

	saved, err := s.svc.SaveWorkSchedule(c.Request().Context(), userID(c), schedule)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, saved)
}

func (s *Server) handleListProjects(c echo.Context) error {
	projects, err := s.svc.ListProjects(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, projects)
}

func (s *Server) handleCreateProject(c echo.Context) error {
	var in service.ProjectInput
	if err := decodeBody(c, &in); err != nil {
		return err
	}

	project, err := s.svc.CreateProject(c.Request().Context(), userID(c), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, project)
}

func (s *Server) handleGetProject(c echo.Context) error {
	project, err := s.svc.GetProject(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, project)
}

func (s *Server) handleUpdateProject(c echo.Context) error {
	var patch service.ProjectPatch
	if err := decodeBody(c, &patch); err != nil {
		return err
	}

	project, err := s.svc.UpdateProject(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, project)
}

func (s *Server) handleDeleteProject(c echo.Context) error {
	if err := s.svc.DeleteProject(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleCreateTask(c echo.Context) error {
	var in service.TaskInput
	if err := decodeBody(c, &in); err != nil {
		return err
	}

	task, err := s.svc.CreateTask(c.Request().Context(), c.Param("projectId"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, task)
}

func (s *Server) handleUpdateTask(c echo.Context) error {
	var patch service.TaskPatch
	if err := decodeBody(c, &patch); err != nil {
		return err
	}

	task, err := s.svc.UpdateTask(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

func (s *Server) handleCompleteTask(c echo.Context) error {
	task, update, err := s.svc.CompleteTask(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, completionResponse{Task: task, CompletionUpdate: update})
}

func (s *Server) handleDeleteTask(c echo.Context) error {
	if err := s.svc.DeleteTask(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// decodeBody binds the JSON request body into v. Malformed bodies are
// reported as validation errors.
func decodeBody(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			msg = fmt.Sprint(he.Message)
		}
		return apperrors.Validation("body", "invalid request body: %s", msg)
	}
	return nil
}
