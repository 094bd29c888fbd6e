// Package export writes a run's deliverables: the corpus as JSON and CSV,
// and a Markdown market report built from the analysis.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jobpulse/backend/internal/analytics"
	"github.com/jobpulse/backend/internal/domain"
)

const (
	jsonFilename   = "jobs_data.json"
	csvFilename    = "jobs_data.csv"
	reportFilename = "jobs_report.md"
)

// Result holds the written artifact paths.
type Result struct {
	JSONPath   string
	CSVPath    string
	ReportPath string
}

// Write exports everything into dir, creating it when missing. Each artifact
// is independent; the first failure aborts since a half-written output
// directory is worse than none.
func Write(dir string, jobs []domain.JobPosting, analysis *analytics.Result) (*Result, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	res := &Result{
		JSONPath:   filepath.Join(dir, jsonFilename),
		CSVPath:    filepath.Join(dir, csvFilename),
		ReportPath: filepath.Join(dir, reportFilename),
	}

	if err := writeJSON(res.JSONPath, jobs); err != nil {
		return nil, err
	}
	if err := writeCSV(res.CSVPath, jobs); err != nil {
		return nil, err
	}
	if err := os.WriteFile(res.ReportPath, []byte(buildReport(analysis, time.Now().UTC())), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}
	return res, nil
}

func writeJSON(path string, jobs []domain.JobPosting) error {
	data, err := json.MarshalIndent(jobs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode corpus: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write JSON export: %w", err)
	}
	return nil
}

var csvHeader = []string{
	"job_id", "title", "normalized_category", "company_name", "location_raw",
	"location_city", "location_country", "region", "work_type", "date_posted",
	"required_skills", "experience_level", "employment_type", "source_url",
	"search_query", "search_location", "scraped_at",
}

func writeCSV(path string, jobs []domain.JobPosting) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV export: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, job := range jobs {
		datePosted := ""
		if job.DatePosted != nil {
			datePosted = job.DatePosted.Format("2006-01-02")
		}
		row := []string{
			job.JobID,
			job.Title,
			string(job.Category),
			job.CompanyName,
			job.LocationRaw,
			job.LocationCity,
			job.LocationCountry,
			string(job.Region),
			string(job.WorkType),
			datePosted,
			strings.Join(job.RequiredSkills, "; "),
			string(job.ExperienceLevel),
			string(job.EmploymentType),
			job.SourceURL,
			job.SearchQuery,
			job.SearchLocation,
			job.ScrapedAt.Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV export: %w", err)
	}
	return nil
}

// buildReport renders the Markdown market report from the analysis.
func buildReport(a *analytics.Result, now time.Time) string {
	var b strings.Builder
	stamp := now.Format("2006-01-02 15:04 UTC")

	fmt.Fprintf(&b, "# Tech Jobs Demand Report\n\n")
	fmt.Fprintf(&b, "> **Generated:** %s  \n", stamp)
	fmt.Fprintf(&b, "> **Total Jobs Analyzed:** %d  \n", a.TotalJobs)
	fmt.Fprintf(&b, "> **Regions:** United States · India · Global\n\n---\n\n")

	// Region split.
	b.WriteString("## Jobs by Region\n\n")
	b.WriteString("| Region | Job Count | % of Total |\n")
	b.WriteString("|--------|----------:|-----------:|\n")
	total := a.TotalJobs
	if total == 0 {
		total = 1
	}
	for _, row := range []struct {
		label string
		count int
	}{
		{"United States", a.USJobs},
		{"India", a.IndiaJobs},
		{"Other", a.OtherJobs},
	} {
		fmt.Fprintf(&b, "| %s | %d | %.1f%% |\n", row.label, row.count, float64(row.count)/float64(total)*100)
	}
	fmt.Fprintf(&b, "| **Total** | **%d** | **100%%** |\n\n---\n\n", a.TotalJobs)

	// Role demand.
	b.WriteString("## Role Demand Breakdown\n\n")
	b.WriteString("| Role Category | Total | US | India | Other | Remote% | Hybrid% |\n")
	b.WriteString("|---------------|------:|---:|------:|------:|--------:|--------:|\n")
	for _, rs := range a.RoleStats {
		fmt.Fprintf(&b, "| %s | %d | %d | %d | %d | %.1f%% | %.1f%% |\n",
			rs.Category, rs.TotalCount, rs.USCount, rs.IndiaCount, rs.OtherCount,
			rs.RemotePercentage, rs.HybridPercentage)
	}
	b.WriteString("\n### Top Skills Per Role\n\n")
	limit := len(a.RoleStats)
	if limit > 5 {
		limit = 5
	}
	for _, rs := range a.RoleStats[:limit] {
		if len(rs.TopSkills) == 0 {
			continue
		}
		skills := rs.TopSkills
		if len(skills) > 8 {
			skills = skills[:8]
		}
		fmt.Fprintf(&b, "**%s:** `%s`\n\n", rs.Category, strings.Join(skills, "` · `"))
	}
	b.WriteString("\n---\n\n")

	// Top skills.
	b.WriteString("## Top Skills in Demand\n\n")
	b.WriteString("| Rank | Skill | Mentions | % of Jobs | Top Role Categories |\n")
	b.WriteString("|-----:|-------|---------:|----------:|---------------------|\n")
	for i, skill := range a.TopSkills {
		cats := "—"
		if len(skill.TopCategories) > 0 {
			top := skill.TopCategories
			if len(top) > 2 {
				top = top[:2]
			}
			cats = strings.Join(top, ", ")
		}
		fmt.Fprintf(&b, "| %d | **%s** | %d | %.1f%% | %s |\n", i+1, skill.Skill, skill.Count, skill.Percentage, cats)
	}
	b.WriteString("\n---\n\n")

	// Distributions.
	b.WriteString("## Experience Level Distribution\n\n")
	writeDistribution(&b, "Experience Level", a.ExperienceDistribution, total)
	b.WriteString("\n## Work Mode Distribution\n\n")
	writeDistribution(&b, "Work Mode", a.WorkTypeDistribution, total)
	b.WriteString("\n**Employment Type Breakdown:**\n\n")
	writeDistribution(&b, "Employment Type", a.EmploymentTypeDistribution, total)
	b.WriteString("\n---\n\n")

	// Companies.
	b.WriteString("## Top Hiring Companies\n\n")
	b.WriteString("| Rank | Company | Open Roles | Remote | Key Role Types |\n")
	b.WriteString("|-----:|---------|-----------:|-------:|----------------|\n")
	for i, company := range a.TopCompanies {
		cats := "—"
		if len(company.Categories) > 0 {
			top := company.Categories
			if len(top) > 3 {
				top = top[:3]
			}
			cats = strings.Join(top, ", ")
		}
		fmt.Fprintf(&b, "| %d | **%s** | %d | %d | %s |\n",
			i+1, company.CompanyName, company.TotalOpenings, company.RemoteCount, cats)
	}
	b.WriteString("\n---\n\n")

	// Quarterly totals.
	b.WriteString("## Quarterly Trends\n\n")
	quarterTotals := map[string]int{}
	for _, t := range a.QuarterlyTrends {
		quarterTotals[t.Quarter] += t.Count
	}
	if len(quarterTotals) > 0 {
		quarters := make([]string, 0, len(quarterTotals))
		for q := range quarterTotals {
			quarters = append(quarters, q)
		}
		sort.Strings(quarters)
		b.WriteString("| Quarter | Total Postings |\n|---------|---------------:|\n")
		for _, q := range quarters {
			fmt.Fprintf(&b, "| %s | %d |\n", q, quarterTotals[q])
		}
	} else {
		b.WriteString("*No dated postings in this run.*\n")
	}
	b.WriteString("\n---\n\n")

	// AI/ML adoption.
	b.WriteString("## AI/ML Knowledge Expected by Role\n\n")
	if len(a.AIMentionByRole) > 0 {
		b.WriteString("| Role Category | AI/ML Adoption |\n|---------------|---------------:|\n")
		roles := make([]string, 0, len(a.AIMentionByRole))
		for role := range a.AIMentionByRole {
			roles = append(roles, role)
		}
		sort.Slice(roles, func(i, j int) bool {
			if a.AIMentionByRole[roles[i]] != a.AIMentionByRole[roles[j]] {
				return a.AIMentionByRole[roles[i]] > a.AIMentionByRole[roles[j]]
			}
			return roles[i] < roles[j]
		})
		for _, role := range roles {
			fmt.Fprintf(&b, "| %s | %.1f%% |\n", role, a.AIMentionByRole[role])
		}
	} else {
		b.WriteString("*AI/ML mention data not available for this run.*\n")
	}
	b.WriteString("\n---\n\n")

	// Insights.
	b.WriteString("## Observations & Insights\n\n")
	for i, insight := range a.Insights {
		fmt.Fprintf(&b, "**%d.** %s\n\n", i+1, insight)
	}

	fmt.Fprintf(&b, "\n---\n\n*Report generated on %s from public job listings.*\n", stamp)
	return b.String()
}

func writeDistribution(b *strings.Builder, label string, dist map[string]int, total int) {
	fmt.Fprintf(b, "| %s | Count | %% |\n", label)
	b.WriteString("|" + strings.Repeat("-", len(label)+2) + "|------:|--:|\n")

	keys := make([]string, 0, len(dist))
	for key := range dist {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if dist[keys[i]] != dist[keys[j]] {
			return dist[keys[i]] > dist[keys[j]]
		}
		return keys[i] < keys[j]
	})
	for _, key := range keys {
		fmt.Fprintf(b, "| %s | %d | %.1f%% |\n", key, dist[key], float64(dist[key])/float64(total)*100)
	}
}
