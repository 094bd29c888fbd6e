package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobpulse/backend/internal/analytics"
	"github.com/jobpulse/backend/internal/domain"
)

func TestWriteProducesAllArtifacts(t *testing.T) {
	posted := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	jobs := []domain.JobPosting{
		{
			JobID: "j1", Title: "Backend Engineer", Category: domain.RoleBackend,
			CompanyName: "Acme", LocationRaw: "Austin, TX",
			Region: domain.RegionUS, WorkType: domain.WorkRemote,
			DatePosted: &posted, RequiredSkills: []string{"Go", "PostgreSQL"},
			ExperienceLevel: domain.ExperienceSenior,
			EmploymentType:  domain.EmploymentFullTime,
			ScrapedAt:       time.Now().UTC(),
		},
	}
	analysis := analytics.Analyze(jobs)

	dir := t.TempDir()
	res, err := Write(dir, jobs, analysis)
	require.NoError(t, err)

	// JSON round-trips back to the same corpus size.
	data, err := os.ReadFile(res.JSONPath)
	require.NoError(t, err)
	var decoded []domain.JobPosting
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "Backend Engineer", decoded[0].Title)

	// CSV has a header plus one row with the joined skill list.
	f, err := os.Open(res.CSVPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "job_id", rows[0][0])
	assert.Equal(t, "Go; PostgreSQL", rows[1][10])
	assert.Equal(t, "2026-07-01", rows[1][9])

	// The report carries the main sections.
	report, err := os.ReadFile(res.ReportPath)
	require.NoError(t, err)
	text := string(report)
	assert.True(t, strings.Contains(text, "# Tech Jobs Demand Report"))
	assert.True(t, strings.Contains(text, "## Role Demand Breakdown"))
	assert.True(t, strings.Contains(text, "Backend Engineer"))
	assert.True(t, strings.Contains(text, "2026-Q3"))
}

func TestWriteEmptyCorpus(t *testing.T) {
	dir := t.TempDir()
	res, err := Write(dir, nil, analytics.Analyze(nil))
	require.NoError(t, err)

	rowsData, err := os.ReadFile(res.CSVPath)
	require.NoError(t, err)
	// Header only.
	assert.Equal(t, 1, strings.Count(strings.TrimSpace(string(rowsData)), "\n")+1)

	report, err := os.ReadFile(res.ReportPath)
	require.NoError(t, err)
	assert.Contains(t, string(report), "*No dated postings in this run.*")
}
