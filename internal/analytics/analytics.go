// Package analytics aggregates a run's canonical corpus into market
// statistics: per-role breakdowns, quarterly trends, skill frequencies,
// distributions, top companies, and rule-based insight text.
package analytics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jobpulse/backend/internal/domain"
)

const (
	topSkillsPerRole   = 10
	topSkillsGlobal    = 20
	topCompanies       = 20
	topSkillCategories = 3
	companyLocations   = 5
)

// RoleStats is one role category's aggregate.
type RoleStats struct {
	Category           string   `json:"category"`
	TotalCount         int      `json:"total_count"`
	USCount            int      `json:"us_count"`
	IndiaCount         int      `json:"india_count"`
	OtherCount         int      `json:"other_count"`
	TopSkills          []string `json:"top_skills"`
	DominantExperience string   `json:"dominant_experience"`
	RemotePercentage   float64  `json:"remote_percentage"`
	HybridPercentage   float64  `json:"hybrid_percentage"`
	OnsitePercentage   float64  `json:"onsite_percentage"`
}

// QuarterlyTrend is a posting count for one (quarter, category) cell.
// Quarter has the form "2025-Q3".
type QuarterlyTrend struct {
	Quarter  string `json:"quarter"`
	Count    int    `json:"count"`
	Category string `json:"category"`
}

// SkillFrequency is one skill's corpus-wide demand.
type SkillFrequency struct {
	Skill         string   `json:"skill"`
	Count         int      `json:"count"`
	Percentage    float64  `json:"percentage"`
	TopCategories []string `json:"top_categories"`
}

// CompanyStats is one employer's aggregate.
type CompanyStats struct {
	CompanyName   string   `json:"company_name"`
	TotalOpenings int      `json:"total_openings"`
	Categories    []string `json:"categories"`
	Locations     []string `json:"locations"`
	RemoteCount   int      `json:"remote_count"`
}

// Result is the complete analysis of one run's corpus.
type Result struct {
	TotalJobs                  int                `json:"total_jobs"`
	USJobs                     int                `json:"us_jobs"`
	IndiaJobs                  int                `json:"india_jobs"`
	OtherJobs                  int                `json:"other_jobs"`
	RoleStats                  []RoleStats        `json:"role_stats"`
	QuarterlyTrends            []QuarterlyTrend   `json:"quarterly_trends"`
	TopSkills                  []SkillFrequency   `json:"top_skills"`
	ExperienceDistribution     map[string]int     `json:"experience_distribution"`
	WorkTypeDistribution       map[string]int     `json:"work_type_distribution"`
	EmploymentTypeDistribution map[string]int     `json:"employment_type_distribution"`
	TopCompanies               []CompanyStats     `json:"top_companies"`
	AIMentionByRole            map[string]float64 `json:"ai_mention_by_role"`
	Insights                   []string           `json:"insights"`
}

// Analyze computes the full analysis over the canonical corpus.
func Analyze(jobs []domain.JobPosting) *Result {
	total := len(jobs)

	res := &Result{
		TotalJobs:                  total,
		ExperienceDistribution:     map[string]int{},
		WorkTypeDistribution:       map[string]int{},
		EmploymentTypeDistribution: map[string]int{},
		AIMentionByRole:            map[string]float64{},
	}

	byCategory := map[string][]domain.JobPosting{}
	for _, job := range jobs {
		switch job.Region {
		case domain.RegionUS:
			res.USJobs++
		case domain.RegionIndia:
			res.IndiaJobs++
		}
		byCategory[string(job.Category)] = append(byCategory[string(job.Category)], job)
		res.ExperienceDistribution[string(job.ExperienceLevel)]++
		res.WorkTypeDistribution[string(job.WorkType)]++
		res.EmploymentTypeDistribution[string(job.EmploymentType)]++
	}
	res.OtherJobs = total - res.USJobs - res.IndiaJobs

	res.RoleStats = roleStats(byCategory)
	res.QuarterlyTrends = quarterlyTrends(jobs)
	res.TopSkills = skillFrequencies(jobs, total)
	res.TopCompanies = companyStats(jobs)

	for category, catJobs := range byCategory {
		aiCount := 0
		for _, job := range catJobs {
			if mentionsAI(job) {
				aiCount++
			}
		}
		res.AIMentionByRole[category] = percent(aiCount, len(catJobs))
	}

	res.Insights = insights(res)
	return res
}

func roleStats(byCategory map[string][]domain.JobPosting) []RoleStats {
	stats := make([]RoleStats, 0, len(byCategory))
	for category, catJobs := range byCategory {
		s := RoleStats{Category: category, TotalCount: len(catJobs)}

		remote, hybrid := 0, 0
		skillCounts := map[string]int{}
		expCounts := map[string]int{}
		for _, job := range catJobs {
			switch job.Region {
			case domain.RegionUS:
				s.USCount++
			case domain.RegionIndia:
				s.IndiaCount++
			}
			switch job.WorkType {
			case domain.WorkRemote:
				remote++
			case domain.WorkHybrid:
				hybrid++
			}
			for _, skill := range job.RequiredSkills {
				skillCounts[skill]++
			}
			expCounts[string(job.ExperienceLevel)]++
		}
		s.OtherCount = s.TotalCount - s.USCount - s.IndiaCount
		s.RemotePercentage = percent(remote, s.TotalCount)
		s.HybridPercentage = percent(hybrid, s.TotalCount)
		s.OnsitePercentage = percent(s.TotalCount-remote-hybrid, s.TotalCount)
		s.TopSkills = topKeys(skillCounts, topSkillsPerRole)
		if dominant := topKeys(expCounts, 1); len(dominant) > 0 {
			s.DominantExperience = dominant[0]
		}

		stats = append(stats, s)
	}
	// Largest categories first, ties alphabetical for stable output.
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].TotalCount != stats[j].TotalCount {
			return stats[i].TotalCount > stats[j].TotalCount
		}
		return stats[i].Category < stats[j].Category
	})
	return stats
}

func quarterlyTrends(jobs []domain.JobPosting) []QuarterlyTrend {
	counts := map[[2]string]int{}
	for _, job := range jobs {
		if job.DatePosted == nil {
			continue
		}
		dt := *job.DatePosted
		quarter := fmt.Sprintf("%d-Q%d", dt.Year(), (int(dt.Month())-1)/3+1)
		counts[[2]string{quarter, string(job.Category)}]++
	}

	trends := make([]QuarterlyTrend, 0, len(counts))
	for key, count := range counts {
		trends = append(trends, QuarterlyTrend{Quarter: key[0], Count: count, Category: key[1]})
	}
	sort.Slice(trends, func(i, j int) bool {
		if trends[i].Quarter != trends[j].Quarter {
			return trends[i].Quarter < trends[j].Quarter
		}
		return trends[i].Category < trends[j].Category
	})
	return trends
}

func skillFrequencies(jobs []domain.JobPosting, total int) []SkillFrequency {
	counts := map[string]int{}
	perCategory := map[string]map[string]int{}
	for _, job := range jobs {
		for _, skill := range job.RequiredSkills {
			counts[skill]++
			if perCategory[skill] == nil {
				perCategory[skill] = map[string]int{}
			}
			perCategory[skill][string(job.Category)]++
		}
	}

	freqs := make([]SkillFrequency, 0, topSkillsGlobal)
	for _, skill := range topKeys(counts, topSkillsGlobal) {
		freqs = append(freqs, SkillFrequency{
			Skill:         skill,
			Count:         counts[skill],
			Percentage:    percent(counts[skill], total),
			TopCategories: topKeys(perCategory[skill], topSkillCategories),
		})
	}
	return freqs
}

func companyStats(jobs []domain.JobPosting) []CompanyStats {
	byCompany := map[string][]domain.JobPosting{}
	for _, job := range jobs {
		byCompany[job.CompanyName] = append(byCompany[job.CompanyName], job)
	}

	counts := map[string]int{}
	for company, cjobs := range byCompany {
		counts[company] = len(cjobs)
	}

	stats := make([]CompanyStats, 0, topCompanies)
	for _, company := range topKeys(counts, topCompanies) {
		cjobs := byCompany[company]
		s := CompanyStats{CompanyName: company, TotalOpenings: len(cjobs)}

		seenCat := map[string]bool{}
		seenLoc := map[string]bool{}
		for _, job := range cjobs {
			if !seenCat[string(job.Category)] {
				seenCat[string(job.Category)] = true
				s.Categories = append(s.Categories, string(job.Category))
			}
			if job.LocationRaw != "" && !seenLoc[job.LocationRaw] && len(s.Locations) < companyLocations {
				seenLoc[job.LocationRaw] = true
				s.Locations = append(s.Locations, job.LocationRaw)
			}
			if job.WorkType == domain.WorkRemote {
				s.RemoteCount++
			}
		}
		stats = append(stats, s)
	}
	return stats
}

var aiTerms = []string{
	"machine learning", "artificial intelligence", " ai ", "deep learning",
	"llm", "generative ai", "neural network",
}

func mentionsAI(job domain.JobPosting) bool {
	text := " " + strings.ToLower(job.Title+" "+job.Description) + " "
	for _, term := range aiTerms {
		if strings.Contains(text, term) {
			return true
		}
	}
	for _, skill := range job.RequiredSkills {
		switch skill {
		case "Machine Learning", "Deep Learning", "TensorFlow", "PyTorch", "LLM", "NLP":
			return true
		}
	}
	return false
}

// insights turns the aggregate numbers into short factual statements.
func insights(res *Result) []string {
	var out []string
	total := res.TotalJobs
	if total == 0 {
		return out
	}

	out = append(out, fmt.Sprintf(
		"US market dominates with %d%% of total postings (%d jobs), while India accounts for %d%% (%d jobs).",
		roundPercent(res.USJobs, total), res.USJobs,
		roundPercent(res.IndiaJobs, total), res.IndiaJobs,
	))

	if len(res.RoleStats) > 0 {
		top := res.RoleStats[0]
		out = append(out, fmt.Sprintf(
			"'%s' is the most in-demand role with %d open positions globally.",
			top.Category, top.TotalCount,
		))
		for _, rs := range res.RoleStats {
			if strings.Contains(rs.Category, "ML") || strings.Contains(rs.Category, "AI") {
				out = append(out, fmt.Sprintf(
					"ML/AI roles show strong demand (%d postings), reflecting the ongoing AI adoption wave across industries.",
					rs.TotalCount,
				))
				break
			}
		}
	}

	if len(res.TopSkills) >= 3 {
		out = append(out, fmt.Sprintf(
			"The top 3 most in-demand skills are: %s, %s, %s. Cloud and AI/ML competencies appear frequently across all role types.",
			res.TopSkills[0].Skill, res.TopSkills[1].Skill, res.TopSkills[2].Skill,
		))
	}

	flexible := res.WorkTypeDistribution[string(domain.WorkRemote)] +
		res.WorkTypeDistribution[string(domain.WorkHybrid)]
	if flexible > 0 {
		out = append(out, fmt.Sprintf(
			"%d%% of roles offer flexible work arrangements (Remote or Hybrid), indicating a sustained shift post-pandemic.",
			roundPercent(flexible, total),
		))
	}

	if senior := res.ExperienceDistribution[string(domain.ExperienceSenior)]; senior > 0 {
		out = append(out, fmt.Sprintf(
			"Senior-level roles constitute %d%% of all postings, suggesting companies prioritize experienced talent over entry-level hiring.",
			roundPercent(senior, total),
		))
	}

	return out
}

// topKeys returns the n highest-count keys, count descending then key
// ascending so equal counts order deterministically.
func topKeys(counts map[string]int, n int) []string {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	// One decimal place, matching the report format.
	return float64(int(float64(part)/float64(whole)*1000+0.5)) / 10
}

func roundPercent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(float64(part)/float64(whole)*100 + 0.5)
}
