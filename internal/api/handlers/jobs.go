package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jobpulse/backend/internal/domain"
)

const defaultPageSize = 50

// JobsHandler serves the latest run's corpus with simple filters.
type JobsHandler struct {
	service *RunService
}

func NewJobsHandler(service *RunService) *JobsHandler {
	return &JobsHandler{service: service}
}

// List returns postings filtered by category, region, work type, company,
// and skill, paginated with limit/offset.
func (h *JobsHandler) List(c *fiber.Ctx) error {
	jobs := h.service.Jobs()
	if jobs == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no completed run yet",
		})
	}

	filtered := filterJobs(jobs, c)

	limit, _ := strconv.Atoi(c.Query("limit", strconv.Itoa(defaultPageSize)))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if limit <= 0 {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}

	total := len(filtered)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	return c.JSON(fiber.Map{
		"total":  total,
		"limit":  limit,
		"offset": offset,
		"jobs":   filtered[offset:end],
	})
}

// Analytics returns the latest run's full analysis.
func (h *JobsHandler) Analytics(c *fiber.Ctx) error {
	analysis := h.service.Analysis()
	if analysis == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no completed run yet",
		})
	}
	return c.JSON(analysis)
}

func filterJobs(jobs []domain.JobPosting, c *fiber.Ctx) []domain.JobPosting {
	category := c.Query("category")
	region := c.Query("region")
	workType := c.Query("work_type")
	company := strings.ToLower(c.Query("company"))
	skill := strings.ToLower(c.Query("skill"))

	filtered := make([]domain.JobPosting, 0, len(jobs))
	for _, job := range jobs {
		if category != "" && string(job.Category) != category {
			continue
		}
		if region != "" && string(job.Region) != region {
			continue
		}
		if workType != "" && string(job.WorkType) != workType {
			continue
		}
		if company != "" && !strings.Contains(strings.ToLower(job.CompanyName), company) {
			continue
		}
		if skill != "" && !hasSkill(job.RequiredSkills, skill) {
			continue
		}
		filtered = append(filtered, job)
	}
	return filtered
}

func hasSkill(skills []string, want string) bool {
	for _, s := range skills {
		if strings.ToLower(s) == want {
			return true
		}
	}
	return false
}
