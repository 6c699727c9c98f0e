// Package server exposes the analysis over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/agent"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/history"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/metrics"
	"github.com/prasad8mhatre/smart-recruiter-ai/internal/profile"
	"go.uber.org/zap"
)

const (
	RunIDHeader = "X-Run-ID"

	errInvalidRequest = "Invalid request data"
	errAnalysisFailed = "Analysis failed"
)

type Analyzer interface {
	Analyze(ctx context.Context, p profile.Profile, job string) (*agent.RunResult, error)
}

type Config struct {
	AllowOrigins []string
}

type Server struct {
	echo     *echo.Echo
	analyzer Analyzer
	lister   history.Lister
	metrics  *metrics.Metrics
	validate *validator.Validate
	logger   *zap.Logger
}

type analyzeRequest struct {
	Profile        any    `json:"profile" validate:"required"`
	JobDescription string `json:"jobDescription" validate:"required"`
}

// failure is the body of every 5xx response.
type failure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// New wires the routes. lister may be nil when history is disabled.
func New(cfg Config, analyzer Analyzer, lister history.Lister, m *metrics.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowOrigins = []string{"*"}
	}

	s := &Server{
		echo:     echo.New(),
		analyzer: analyzer,
		lister:   lister,
		metrics:  m,
		validate: validator.New(),
		logger:   logger,
	}

	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError

	e.Use(s.observe)
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType},
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(m.Handler()))
	e.POST("/analyze", s.analyze)
	e.GET("/runs", s.runs)

	return s
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.logger.Info("http server listening", zap.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve http: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) analyze(c echo.Context) error {
	var req analyzeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": errInvalidRequest})
	}
	if err := s.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": errInvalidRequest})
	}

	p, err := profile.FromValue(req.Profile)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": errInvalidRequest, "details": err.Error()})
	}

	result, err := s.analyzer.Analyze(c.Request().Context(), p, req.JobDescription)
	if result != nil && result.RunID != "" {
		c.Response().Header().Set(RunIDHeader, result.RunID)
	}
	if err != nil {
		s.logger.Error("analysis error", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, failure{Success: false, Error: errAnalysisFailed, Details: err.Error()})
	}

	return c.JSON(http.StatusOK, result)
}

func (s *Server) runs(c echo.Context) error {
	if s.lister == nil {
		return echo.NewHTTPError(http.StatusNotFound, "run history is disabled")
	}

	limit := history.DefaultLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = n
	}

	entries, err := s.lister.Recent(c.Request().Context(), limit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	return c.JSON(http.StatusOK, entries)
}

func (s *Server) observe(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		started := time.Now()
		if err := next(c); err != nil {
			c.Error(err)
		}

		req := c.Request()
		status := c.Response().Status
		s.metrics.ObserveRequest(req.Method, c.Path(), status)
		s.logger.Debug("http request",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Int("status", status),
			zap.Duration("elapsed", time.Since(started)),
		)
		return nil
	}
}

// handleError keeps every error response JSON. Anything that is not an
// *echo.HTTPError becomes the analysis failure shape.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	var body any = failure{Success: false, Error: errAnalysisFailed, Details: err.Error()}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if code < http.StatusInternalServerError {
			body = map[string]any{"error": fmt.Sprint(he.Message)}
		} else {
			body = failure{Success: false, Error: errAnalysisFailed, Details: fmt.Sprint(he.Message)}
		}
	}

	req := c.Request()
	s.logger.Warn("http error",
		zap.Int("status", code),
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.String("remote_ip", c.RealIP()),
		zap.Error(err),
	)

	var writeErr error
	if req.Method == http.MethodHead {
		writeErr = c.NoContent(code)
	} else {
		writeErr = c.JSON(code, body)
	}
	if writeErr != nil {
		s.logger.Error("writing error response", zap.Error(writeErr))
	}
}
