package domain

import (
	"strings"
	"time"
)

// RoleCategory is the normalized role taxonomy. Every posting is classified
// into exactly one category; unclassifiable titles fall back to RoleOther.
type RoleCategory string

const (
	RoleBackend          RoleCategory = "Backend Engineer"
	RoleFrontend         RoleCategory = "Frontend Engineer"
	RoleFullstack        RoleCategory = "Full Stack Engineer"
	RoleMLAI             RoleCategory = "ML/AI Engineer"
	RoleDataEngineer     RoleCategory = "Data Engineer"
	RoleDataScientist    RoleCategory = "Data Scientist"
	RoleDevOps           RoleCategory = "DevOps/Platform/SRE"
	RoleEngManager       RoleCategory = "Engineering Manager/Tech Lead"
	RoleSoftwareEngineer RoleCategory = "Software Engineer"
	RoleForwardDeployed  RoleCategory = "Forward Deployed Engineer"
	RoleProductProgram   RoleCategory = "Product/Program Management"
	RoleOther            RoleCategory = "Other"
)

// ExperienceLevel is the seniority taxonomy.
type ExperienceLevel string

const (
	ExperienceEntry        ExperienceLevel = "Entry"
	ExperienceMid          ExperienceLevel = "Mid"
	ExperienceSenior       ExperienceLevel = "Senior"
	ExperienceStaff        ExperienceLevel = "Staff"
	ExperiencePrincipal    ExperienceLevel = "Principal"
	ExperienceManager      ExperienceLevel = "Manager"
	ExperienceNotSpecified ExperienceLevel = "Not Specified"
)

// WorkType is the work arrangement taxonomy.
type WorkType string

const (
	WorkRemote       WorkType = "Remote"
	WorkHybrid       WorkType = "Hybrid"
	WorkOnsite       WorkType = "Onsite"
	WorkNotSpecified WorkType = "Not Specified"
)

// EmploymentType is the schedule taxonomy.
type EmploymentType string

const (
	EmploymentFullTime     EmploymentType = "Full-time"
	EmploymentPartTime     EmploymentType = "Part-time"
	EmploymentContract     EmploymentType = "Contract"
	EmploymentInternship   EmploymentType = "Internship"
	EmploymentNotSpecified EmploymentType = "Not Specified"
)

// Region is the coarse geography taxonomy.
type Region string

const (
	RegionUS    Region = "United States"
	RegionIndia Region = "India"
	RegionOther Region = "Other"
)

// JobPosting is the canonical, normalized record. Instances are written once
// by the normalization stage and never mutated afterwards, except for the
// skill backfill pass which only fills an empty skill set.
type JobPosting struct {
	JobID           string          `json:"job_id,omitempty"`
	Title           string          `json:"title"`
	Category        RoleCategory    `json:"normalized_category"`
	CompanyName     string          `json:"company_name"`
	LocationRaw     string          `json:"location_raw"`
	LocationCity    string          `json:"location_city,omitempty"`
	LocationCountry string          `json:"location_country,omitempty"`
	Region          Region          `json:"region"`
	WorkType        WorkType        `json:"work_type"`
	DatePosted      *time.Time      `json:"date_posted,omitempty"`
	DatePostedRaw   string          `json:"date_posted_raw,omitempty"`
	RequiredSkills  []string        `json:"required_skills"`
	ExperienceLevel ExperienceLevel `json:"experience_level"`
	EmploymentType  EmploymentType  `json:"employment_type"`
	Description     string          `json:"job_description,omitempty"`
	SourceURL       string          `json:"source_url"`
	SearchQuery     string          `json:"search_query,omitempty"`
	SearchLocation  string          `json:"search_location,omitempty"`
	ScrapedAt       time.Time       `json:"scraped_at"`
}

// DedupeSkills trims entries and drops case-insensitive duplicates while
// preserving the first-seen spelling and order.
func DedupeSkills(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		trimmed := strings.TrimSpace(s)
		key := strings.ToLower(trimmed)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
