package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jobpulse/backend/internal/analytics"
	"github.com/jobpulse/backend/internal/domain"
	"github.com/jobpulse/backend/pkg/logger"
)

// Runner executes one full pipeline run.
type Runner interface {
	Run(ctx context.Context, queries []domain.Query) *domain.PipelineRunResult
}

// RunService serializes pipeline runs: at most one run is in flight, and the
// latest finished run's result and analysis stay available for the read
// endpoints.
type RunService struct {
	mu       sync.Mutex
	running  bool
	runID    string
	queries  []domain.Query
	runner   Runner
	result   *domain.PipelineRunResult
	analysis *analytics.Result
}

// NewRunService builds the service around a runner and the configured query
// plan.
func NewRunService(runner Runner, queries []domain.Query) *RunService {
	return &RunService{runner: runner, queries: queries}
}

// Trigger starts a background run. It fails when one is already in flight.
func (s *RunService) Trigger() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return "", fiber.NewError(fiber.StatusConflict, "a run is already in progress")
	}

	s.running = true
	s.runID = uuid.New().String()
	runID := s.runID

	go func() {
		started := time.Now()
		result := s.runner.Run(context.Background(), s.queries)
		analysis := analytics.Analyze(result.Jobs)

		s.mu.Lock()
		s.running = false
		s.result = result
		s.analysis = analysis
		s.mu.Unlock()

		logger.Info("Background run finished",
			zap.String("run_id", runID),
			zap.Int("jobs", len(result.Jobs)),
			zap.Duration("elapsed", time.Since(started)),
		)
	}()

	return runID, nil
}

// Status reports whether a run is in flight plus the last result summary.
func (s *RunService) Status() (bool, string, *domain.PipelineRunResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running, s.runID, s.result
}

// Jobs returns the latest corpus, nil when no run has finished yet.
func (s *RunService) Jobs() []domain.JobPosting {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return nil
	}
	return s.result.Jobs
}

// Analysis returns the latest analysis, nil when no run has finished yet.
func (s *RunService) Analysis() *analytics.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analysis
}

// RunsHandler exposes the run lifecycle over HTTP.
type RunsHandler struct {
	service *RunService
}

func NewRunsHandler(service *RunService) *RunsHandler {
	return &RunsHandler{service: service}
}

// Trigger starts a pipeline run.
func (h *RunsHandler) Trigger(c *fiber.Ctx) error {
	runID, err := h.service.Trigger()
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"run_id": runID,
		"status": "started",
	})
}

// Status reports run state and the last result summary.
func (h *RunsHandler) Status(c *fiber.Ctx) error {
	running, runID, result := h.service.Status()

	resp := fiber.Map{
		"running": running,
		"run_id":  runID,
	}
	if result != nil {
		resp["last_result"] = fiber.Map{
			"source":         result.Source,
			"jobs":           len(result.Jobs),
			"total_parsed":   result.TotalParsed,
			"duplicates":     result.DuplicateCount,
			"failed_pages":   result.TotalFailedPages,
			"failed_queries": result.FailedQueries,
			"captcha_seen":   result.CaptchaEncountered,
			"started_at":     result.StartedAt,
			"finished_at":    result.FinishedAt,
		}
	}
	return c.JSON(resp)
}
