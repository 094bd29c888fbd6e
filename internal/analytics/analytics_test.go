package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobpulse/backend/internal/domain"
)

func testCorpus() []domain.JobPosting {
	q3 := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	q2 := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	return []domain.JobPosting{
		{
			Title: "Senior ML Engineer", Category: domain.RoleMLAI,
			CompanyName: "Acme", LocationRaw: "San Francisco, CA",
			Region: domain.RegionUS, WorkType: domain.WorkRemote,
			DatePosted: &q3, RequiredSkills: []string{"Python", "PyTorch"},
			ExperienceLevel: domain.ExperienceSenior,
			EmploymentType:  domain.EmploymentFullTime,
			Description:     "Deep learning on large models",
		},
		{
			Title: "ML Engineer", Category: domain.RoleMLAI,
			CompanyName: "Acme", LocationRaw: "Bengaluru",
			Region: domain.RegionIndia, WorkType: domain.WorkHybrid,
			DatePosted: &q3, RequiredSkills: []string{"Python", "TensorFlow"},
			ExperienceLevel: domain.ExperienceMid,
			EmploymentType:  domain.EmploymentFullTime,
		},
		{
			Title: "Backend Engineer", Category: domain.RoleBackend,
			CompanyName: "Initech", LocationRaw: "Austin, TX",
			Region: domain.RegionUS, WorkType: domain.WorkOnsite,
			DatePosted: &q2, RequiredSkills: []string{"Go", "PostgreSQL"},
			ExperienceLevel: domain.ExperienceSenior,
			EmploymentType:  domain.EmploymentContract,
		},
		{
			Title: "Backend Engineer", Category: domain.RoleBackend,
			CompanyName: "Globex", LocationRaw: "Berlin",
			Region: domain.RegionOther, WorkType: domain.WorkNotSpecified,
			RequiredSkills:  []string{"Go", "Python"},
			ExperienceLevel: domain.ExperienceNotSpecified,
			EmploymentType:  domain.EmploymentFullTime,
		},
	}
}

func TestAnalyzeRegionalSplit(t *testing.T) {
	res := Analyze(testCorpus())

	assert.Equal(t, 4, res.TotalJobs)
	assert.Equal(t, 2, res.USJobs)
	assert.Equal(t, 1, res.IndiaJobs)
	assert.Equal(t, 1, res.OtherJobs)
}

func TestAnalyzeRoleStats(t *testing.T) {
	res := Analyze(testCorpus())

	require.Len(t, res.RoleStats, 2)
	// Equal counts order alphabetically for stable output.
	ml := res.RoleStats[1]
	if ml.Category != string(domain.RoleMLAI) {
		ml = res.RoleStats[0]
	}
	assert.Equal(t, 2, ml.TotalCount)
	assert.Equal(t, 1, ml.USCount)
	assert.Equal(t, 1, ml.IndiaCount)
	assert.Equal(t, 50.0, ml.RemotePercentage)
	assert.Equal(t, 50.0, ml.HybridPercentage)
	assert.Equal(t, 0.0, ml.OnsitePercentage)
	assert.Contains(t, ml.TopSkills, "Python")
}

func TestAnalyzeSkillFrequencies(t *testing.T) {
	res := Analyze(testCorpus())

	require.NotEmpty(t, res.TopSkills)
	top := res.TopSkills[0]
	assert.Equal(t, "Python", top.Skill)
	assert.Equal(t, 3, top.Count)
	assert.Equal(t, 75.0, top.Percentage)
	assert.Contains(t, top.TopCategories, string(domain.RoleMLAI))
}

func TestAnalyzeQuarterlyTrends(t *testing.T) {
	res := Analyze(testCorpus())

	// The undated posting is excluded from trends.
	require.Len(t, res.QuarterlyTrends, 2)
	assert.Equal(t, "2026-Q2", res.QuarterlyTrends[0].Quarter)
	assert.Equal(t, string(domain.RoleBackend), res.QuarterlyTrends[0].Category)
	assert.Equal(t, 1, res.QuarterlyTrends[0].Count)
	assert.Equal(t, "2026-Q3", res.QuarterlyTrends[1].Quarter)
	assert.Equal(t, 2, res.QuarterlyTrends[1].Count)
}

func TestAnalyzeDistributions(t *testing.T) {
	res := Analyze(testCorpus())

	assert.Equal(t, 2, res.ExperienceDistribution[string(domain.ExperienceSenior)])
	assert.Equal(t, 1, res.WorkTypeDistribution[string(domain.WorkRemote)])
	assert.Equal(t, 3, res.EmploymentTypeDistribution[string(domain.EmploymentFullTime)])
}

func TestAnalyzeTopCompanies(t *testing.T) {
	res := Analyze(testCorpus())

	require.NotEmpty(t, res.TopCompanies)
	assert.Equal(t, "Acme", res.TopCompanies[0].CompanyName)
	assert.Equal(t, 2, res.TopCompanies[0].TotalOpenings)
	assert.Equal(t, 1, res.TopCompanies[0].RemoteCount)
	assert.Equal(t, []string{string(domain.RoleMLAI)}, res.TopCompanies[0].Categories)
}

func TestAnalyzeInsightsAndAIMention(t *testing.T) {
	res := Analyze(testCorpus())

	assert.NotEmpty(t, res.Insights)
	// Both ML postings carry AI signals (title or skills).
	assert.Equal(t, 100.0, res.AIMentionByRole[string(domain.RoleMLAI)])
	assert.Equal(t, 0.0, res.AIMentionByRole[string(domain.RoleBackend)])
}

func TestAnalyzeEmptyCorpus(t *testing.T) {
	res := Analyze(nil)

	assert.Zero(t, res.TotalJobs)
	assert.Empty(t, res.RoleStats)
	assert.Empty(t, res.TopSkills)
	assert.Empty(t, res.Insights)
}
