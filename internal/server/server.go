// Package server exposes the scheduling service over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/julianstephens/taskflow/internal/constants"
	apperrors "github.com/julianstephens/taskflow/internal/errors"
	"github.com/julianstephens/taskflow/internal/logger"
	"github.com/julianstephens/taskflow/internal/service"
)

const userIDKey = "user_id"

// Server is the HTTP front end of a ScheduleService.
type Server struct {
	svc         *service.ScheduleService
	defaultUser string
	now         func() time.Time
	echo        *echo.Echo
}

// New creates a server. Requests without an X-User-ID header act as
// defaultUser.
func New(svc *service.ScheduleService, defaultUser string) *Server {
	s := &Server{
		svc:         svc,
		defaultUser: defaultUser,
		now:         time.Now,
	}
	s.setupEcho()
	return s
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.RequestID())
	e.Use(requestLogger)
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
		Timeout: constants.DefaultRequestTimeout,
	}))

	e.GET("/health", s.handleHealth)

	api := e.Group("/api")
	api.Use(s.userMiddleware)

	schedule := api.Group("/schedule")
	schedule.GET("/generate", s.handleGenerateSchedule)
	schedule.GET("/stats", s.handleStats)
	schedule.POST("/update-after-completion/:taskId", s.handleUpdateAfterCompletion)
	schedule.GET("/work-schedule", s.handleGetWorkSchedule)
	schedule.PUT("/work-schedule", s.handleSaveWorkSchedule)

	projects := api.Group("/projects")
	projects.GET("", s.handleListProjects)
	projects.POST("", s.handleCreateProject)
	projects.GET("/:id", s.handleGetProject)
	projects.PUT("/:id", s.handleUpdateProject)
	projects.DELETE("/:id", s.handleDeleteProject)

	tasks := api.Group("/tasks")
	tasks.POST("/project/:projectId", s.handleCreateTask)
	tasks.PUT("/:id", s.handleUpdateTask)
	tasks.PATCH("/:id/complete", s.handleCompleteTask)
	tasks.DELETE("/:id", s.handleDeleteTask)

	s.echo = e
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	logger.Info("Starting HTTP server", "addr", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// requestLogger logs every request once it has been handled.
func requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			// Let the error handler pick the status before it is logged.
			c.Error(err)
		}

		req := c.Request()
		res := c.Response()
		logger.Info("HTTP request",
			"id", res.Header().Get(echo.HeaderXRequestID),
			"method", req.Method,
			"uri", req.RequestURI,
			"status", res.Status,
			"size", res.Size,
			"duration", time.Since(start).String())
		return nil
	}
}

// userMiddleware resolves the acting user. There is no authentication;
// the header is trusted.
func (s *Server) userMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID := strings.TrimSpace(c.Request().Header.Get(constants.UserIDHeader))
		if userID == "" {
			userID = s.defaultUser
		}
		c.Set(userIDKey, userID)
		return next(c)
	}
}

func userID(c echo.Context) string {
	id, _ := c.Get(userIDKey).(string)
	return id
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// handleError maps service errors onto status codes. Store failures only
// expose the failed operation; the cause has already been logged.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	body := errorResponse{Error: "internal server error"}

	var (
		verr    *apperrors.ValidationError
		nf      *apperrors.NotFoundError
		failure *apperrors.SchedulingFailure
		he      *echo.HTTPError
	)
	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
		body = errorResponse{Error: verr.Error(), Field: verr.Field}
	case errors.As(err, &nf):
		status = http.StatusNotFound
		body = errorResponse{Error: nf.Error()}
	case errors.As(err, &failure):
		body = errorResponse{Error: failure.Error()}
	case errors.As(err, &he):
		status = he.Code
		if msg, ok := he.Message.(string); ok {
			body = errorResponse{Error: msg}
		} else {
			body = errorResponse{Error: http.StatusText(he.Code)}
		}
	default:
		logger.Error("Unhandled request error", "uri", c.Request().RequestURI, "error", err)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, body)
	}
	if writeErr != nil {
		logger.Error("Failed to write error response", "error", writeErr)
	}
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "OK",
		"timestamp": s.now().UTC().Format(time.RFC3339),
	})
}
