// Package api exposes the scan pipeline over HTTP: trigger scans, poll job
// status, and browse the cached result set.
package api

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/singh-automation/winscope/internal/auth"
	"github.com/singh-automation/winscope/internal/config"
	"github.com/singh-automation/winscope/internal/models"
	"github.com/singh-automation/winscope/internal/scan"
)

const defaultListMinScore = 50

type Server struct {
	Echo        *echo.Echo
	AuthService *auth.Service
	Scanner     *scan.Scanner

	scanTimeout time.Duration

	// Background job tracking
	jobMu      sync.Mutex
	runningJob *backgroundJob

	// Latest completed scan, served by the read endpoints.
	resultMu   sync.RWMutex
	lastResult *scan.Result
	lastScanAt time.Time
}

type backgroundJob struct {
	ID        string             `json:"id"`
	Status    string             `json:"status"` // running, completed, failed
	StartedAt time.Time          `json:"started_at"`
	EndedAt   time.Time          `json:"ended_at,omitempty"`
	Result    any                `json:"result,omitempty"`
	Error     string             `json:"error,omitempty"`
	Cancel    context.CancelFunc `json:"-"`
}

var (
	adminSecretOnce    sync.Once
	adminSecretRuntime string
	adminSecretErr     error
)

func NewServer(cfg config.Config, scanner *scan.Scanner, authService *auth.Service) *Server {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// CORS: allow frontend origins from config or default to localhost
	allowedOrigins := []string{"http://localhost:4200"}
	for _, o := range cfg.CORSOrigins {
		o = strings.TrimSpace(o)
		if o != "" {
			allowedOrigins = append(allowedOrigins, o)
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-Admin-Secret"},
	}))

	timeout := time.Duration(cfg.ScanTimeoutMinutes) * time.Minute
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}

	s := &Server{
		Echo:        e,
		AuthService: authService,
		Scanner:     scanner,
		scanTimeout: timeout,
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)
	api := s.Echo.Group("/api/v1")
	api.GET("/opportunities", s.handleListOpportunities)
	api.GET("/opportunities/:id", s.handleGetOpportunity)
	api.GET("/stats", s.handleGetStats)
	api.GET("/sources", s.handleGetSources)

	// Admin routes (scan trigger)
	admin := api.Group("")
	admin.Use(s.adminMiddleware)
	admin.POST("/scan", s.handleTriggerScan)
	admin.GET("/scan/:id", s.handleJobStatus)

	// Auth routes
	api.POST("/auth/signup", s.handleSignup)
	api.POST("/auth/login", s.handleLogin)

	// Protected routes (saved opportunities)
	saved := api.Group("/saved")
	saved.Use(auth.Middleware)
	saved.POST("/:id", s.handleSaveOpportunity)
	saved.DELETE("/:id", s.handleUnsaveOpportunity)
	saved.GET("", s.handleGetSavedOpportunities)
}

func (s *Server) handleHealth(c echo.Context) error {
	_, scannedAt := s.snapshot()
	resp := map[string]any{
		"status":  "ok",
		"portals": len(scan.Portals()),
	}
	if !scannedAt.IsZero() {
		resp["last_scan_at"] = scannedAt
	}
	return c.JSON(http.StatusOK, resp)
}

// handleTriggerScan starts one background scan. At most one scan runs at a
// time; a second trigger while one is running returns the running job id.
func (s *Server) handleTriggerScan(c echo.Context) error {
	s.jobMu.Lock()
	if s.runningJob != nil && s.runningJob.Status == "running" {
		job := s.runningJob
		s.jobMu.Unlock()
		return c.JSON(http.StatusConflict, map[string]any{
			"error":  "A scan is already running",
			"job_id": job.ID,
		})
	}

	params := scan.Params{}
	if raw := strings.TrimSpace(c.QueryParam("terms")); raw != "" {
		params.Terms = splitCSV(raw)
	}
	if raw := strings.TrimSpace(c.QueryParam("days")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 365 {
			params.WindowDays = parsed
		}
	}
	if raw := strings.TrimSpace(c.QueryParam("per_term_limit")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 200 {
			params.PerTermLimit = parsed
		}
	}

	// context.WithoutCancel detaches from the HTTP lifecycle but preserves
	// trace values. The configured timeout bounds the job.
	jobCtx, jobCancel := context.WithTimeout(
		context.WithoutCancel(c.Request().Context()), s.scanTimeout,
	)

	jobID := uuid.New().String()[:8]
	job := &backgroundJob{
		ID:        jobID,
		Status:    "running",
		StartedAt: time.Now(),
		Cancel:    jobCancel,
	}
	s.runningJob = job
	s.jobMu.Unlock()

	// Run in background goroutine; respond 202 immediately.
	go func() {
		defer jobCancel()

		result, err := s.Scanner.Scan(jobCtx, params)
		if err != nil {
			s.jobMu.Lock()
			job.Status = "failed"
			job.Error = err.Error()
			job.EndedAt = time.Now()
			s.jobMu.Unlock()
			log.Printf("[scan-job %s] failed: %v", jobID, err)
			return
		}

		s.resultMu.Lock()
		s.lastResult = result
		s.lastScanAt = time.Now()
		s.resultMu.Unlock()

		degraded := 0
		for _, src := range result.Sources {
			if src.Degraded {
				degraded++
			}
		}

		s.jobMu.Lock()
		job.Status = "completed"
		job.EndedAt = time.Now()
		job.Result = map[string]any{
			"total":            result.Stats.Total,
			"portal_count":     result.Stats.PortalCount,
			"sources":          len(result.Sources),
			"degraded_sources": degraded,
		}
		s.jobMu.Unlock()
		log.Printf("[scan-job %s] completed: %d opportunities", jobID, result.Stats.Total)
	}()

	return c.JSON(http.StatusAccepted, map[string]any{
		"message": "Scan started",
		"job_id":  jobID,
		"poll":    fmt.Sprintf("/api/v1/scan/%s", jobID),
	})
}

func (s *Server) handleJobStatus(c echo.Context) error {
	queried := c.Param("id")
	s.jobMu.Lock()
	job := s.runningJob
	s.jobMu.Unlock()

	if job == nil || job.ID != queried {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "job not found"})
	}

	s.jobMu.Lock()
	resp := map[string]any{
		"id":         job.ID,
		"status":     job.Status,
		"started_at": job.StartedAt,
	}
	if !job.EndedAt.IsZero() {
		resp["ended_at"] = job.EndedAt
		resp["duration"] = job.EndedAt.Sub(job.StartedAt).String()
	}
	if job.Result != nil {
		resp["result"] = job.Result
	}
	if job.Error != "" {
		resp["error"] = job.Error
	}
	s.jobMu.Unlock()

	return c.JSON(http.StatusOK, resp)
}

// snapshot returns the latest scan result, or nil if none has completed.
func (s *Server) snapshot() (*scan.Result, time.Time) {
	s.resultMu.RLock()
	defer s.resultMu.RUnlock()
	return s.lastResult, s.lastScanAt
}

func (s *Server) handleListOpportunities(c echo.Context) error {
	result, scannedAt := s.snapshot()
	if result == nil {
		return c.JSON(http.StatusOK, map[string]any{
			"opportunities": []models.Opportunity{},
			"total":         0,
			"message":       "No scan has completed yet; trigger one via POST /api/v1/scan",
		})
	}

	minScore := defaultListMinScore
	if raw := strings.TrimSpace(c.QueryParam("min_score")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			minScore = parsed
		}
	}
	source := strings.TrimSpace(c.QueryParam("source"))
	oppType := strings.TrimSpace(c.QueryParam("type"))
	var portal *bool
	if raw := strings.TrimSpace(c.QueryParam("portal")); raw != "" {
		val := raw == "true"
		portal = &val
	}

	limit := 100
	if raw := strings.TrimSpace(c.QueryParam("limit")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	filtered := make([]models.Opportunity, 0, limit)
	for _, opp := range result.Opportunities {
		if minScore > 0 {
			v := opp.Verdict
			if v == nil || v.Score == nil || *v.Score < minScore {
				continue
			}
		}
		if source != "" && opp.Source != source {
			continue
		}
		if oppType != "" && string(opp.Type) != oppType {
			continue
		}
		if portal != nil && opp.IsPortal != *portal {
			continue
		}
		filtered = append(filtered, opp)
		if len(filtered) >= limit {
			break
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"opportunities": filtered,
		"total":         len(filtered),
		"scanned_at":    scannedAt,
	})
}

func (s *Server) handleGetOpportunity(c echo.Context) error {
	result, _ := s.snapshot()
	if result == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	}

	id := c.Param("id")
	for _, opp := range result.Opportunities {
		if opp.ID == id {
			return c.JSON(http.StatusOK, opp)
		}
	}
	return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
}

func (s *Server) handleGetStats(c echo.Context) error {
	result, scannedAt := s.snapshot()
	if result == nil {
		return c.JSON(http.StatusOK, map[string]any{
			"stats":   scan.Stats{},
			"message": "No scan has completed yet",
		})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"stats":      result.Stats,
		"scanned_at": scannedAt,
	})
}

func (s *Server) handleGetSources(c echo.Context) error {
	result, scannedAt := s.snapshot()
	if result == nil {
		return c.JSON(http.StatusOK, map[string]any{"sources": []scan.SourceHealth{}})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"sources":    result.Sources,
		"scanned_at": scannedAt,
	})
}

func (s *Server) handleSignup(c echo.Context) error {
	var req auth.SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	resp, err := s.AuthService.Signup(req)
	if err != nil {
		if err == auth.ErrUserExists {
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		}
		if err == auth.ErrInvalidCreds {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Email and password are required"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, resp)
}

func (s *Server) handleLogin(c echo.Context) error {
	var req auth.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	resp, err := s.AuthService.Login(req)
	if err != nil {
		if err == auth.ErrInvalidCreds {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, resp)
}

// Protected handlers

func (s *Server) handleSaveOpportunity(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	if err := s.AuthService.SaveOpportunity(userID, c.Param("id")); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	return c.NoContent(http.StatusOK)
}

func (s *Server) handleUnsaveOpportunity(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	s.AuthService.UnsaveOpportunity(userID, c.Param("id"))
	return c.JSON(http.StatusOK, map[string]string{"status": "unsaved"})
}

func (s *Server) handleGetSavedOpportunities(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	ids := s.AuthService.SavedOpportunityIDs(userID)
	opps := []models.Opportunity{}

	result, _ := s.snapshot()
	if result != nil {
		byID := make(map[string]models.Opportunity, len(result.Opportunities))
		for _, opp := range result.Opportunities {
			byID[opp.ID] = opp
		}
		for _, id := range ids {
			if opp, ok := byID[id]; ok {
				opps = append(opps, opp)
			}
		}
	}

	return c.JSON(http.StatusOK, opps)
}

func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}

// splitCSV splits a comma-separated query parameter into trimmed non-empty strings.
func splitCSV(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}

func (s *Server) adminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		secret, err := adminSecret()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Server admin configuration error"})
		}

		// Check X-Admin-Secret header or Bearer token
		authHeader := c.Request().Header.Get("Authorization")
		adminHeader := c.Request().Header.Get("X-Admin-Secret")

		if adminHeader == secret {
			return next(c)
		}
		if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
			if authHeader[7:] == secret {
				return next(c)
			}
		}

		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized admin access"})
	}
}

func adminSecret() (string, error) {
	adminSecretOnce.Do(func() {
		secret := strings.TrimSpace(os.Getenv("ADMIN_SECRET"))
		if secret != "" {
			adminSecretRuntime = secret
			return
		}

		buf := make([]byte, 48)
		if _, err := rand.Read(buf); err != nil {
			adminSecretErr = fmt.Errorf("failed to generate ADMIN_SECRET fallback: %w", err)
			return
		}

		adminSecretRuntime = base64.RawURLEncoding.EncodeToString(buf)
		log.Print("ADMIN_SECRET is not set; using ephemeral in-memory fallback secret")
	})

	if adminSecretErr != nil {
		return "", adminSecretErr
	}
	if adminSecretRuntime == "" {
		return "", fmt.Errorf("admin secret unavailable")
	}

	return adminSecretRuntime, nil
}
