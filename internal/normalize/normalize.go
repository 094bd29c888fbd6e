// Package normalize maps raw extracted text onto the closed canonical
// taxonomy: role category, experience level, work arrangement, employment
// type, region, city/country, skills, and posting dates. All functions are
// pure; the keyword tables in tables.go are immutable package data.
package normalize

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/jobpulse/backend/internal/domain"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// CleanText collapses runs of whitespace and trims the result.
func CleanText(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// ClassifyRole maps a job title to a role category. First matching phrase in
// table order wins; no match falls through to Other.
func ClassifyRole(title string) domain.RoleCategory {
	lower := strings.ToLower(title)
	for _, entry := range roleTable {
		for _, phrase := range entry.phrases {
			if strings.Contains(lower, phrase) {
				return entry.category
			}
		}
	}
	return domain.RoleOther
}

// DetectExperienceLevel maps free text (title, optionally a description
// prefix) to an experience level.
func DetectExperienceLevel(text string) domain.ExperienceLevel {
	lower := strings.ToLower(text)
	for _, entry := range experienceTable {
		for _, phrase := range entry.phrases {
			if strings.Contains(lower, phrase) {
				return entry.level
			}
		}
	}
	return domain.ExperienceNotSpecified
}

// DetectWorkType classifies the work arrangement. Hybrid is checked before
// the remote signals so "hybrid remote" postings resolve to Hybrid.
func DetectWorkType(text string) domain.WorkType {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "hybrid") {
		return domain.WorkHybrid
	}
	for _, signal := range remoteSignals {
		if strings.Contains(lower, signal) {
			return domain.WorkRemote
		}
	}
	for _, signal := range onsiteSignals {
		if strings.Contains(lower, signal) {
			return domain.WorkOnsite
		}
	}
	return domain.WorkNotSpecified
}

// DetectEmploymentType classifies the schedule. Full-time is the default in
// the absence of a contrary signal, unlike the other taxonomies.
func DetectEmploymentType(text string) domain.EmploymentType {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "contract") || strings.Contains(lower, "contractor") {
		return domain.EmploymentContract
	}
	if strings.Contains(lower, "part-time") || strings.Contains(lower, "part time") {
		return domain.EmploymentPartTime
	}
	if strings.Contains(lower, "internship") || strings.Contains(lower, "intern ") {
		return domain.EmploymentInternship
	}
	return domain.EmploymentFullTime
}

// DetectRegion resolves the coarse region from the raw location plus the
// search location. US signals take precedence over India signals.
func DetectRegion(locationRaw, searchLocation string) domain.Region {
	combined := strings.ToLower(locationRaw + " " + searchLocation)
	for _, signal := range usSignals {
		if strings.Contains(combined, signal) {
			return domain.RegionUS
		}
	}
	for _, signal := range indiaSignals {
		if strings.Contains(combined, signal) {
			return domain.RegionIndia
		}
	}
	return domain.RegionOther
}

// SplitLocation splits a raw location on commas: first segment is the city,
// last segment the country when more than one segment exists.
func SplitLocation(locationRaw string) (city, country string) {
	if strings.TrimSpace(locationRaw) == "" {
		return "", ""
	}
	parts := strings.Split(locationRaw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	city = parts[0]
	if len(parts) > 1 {
		country = parts[len(parts)-1]
	}
	return city, country
}

// InferCountry guesses a country name from region signals in the location.
func InferCountry(location string) string {
	lower := strings.ToLower(location)
	for _, signal := range usSignals {
		if strings.Contains(lower, signal) {
			return "United States"
		}
	}
	for _, signal := range indiaSignals {
		if strings.Contains(lower, signal) {
			return "India"
		}
	}
	return ""
}

// ExtractSkills scans text against the skill vocabulary with word-boundary
// matching and returns the matched canonical spellings, sorted and unique.
func ExtractSkills(text string) []string {
	if text == "" {
		return nil
	}
	var found []string
	for _, p := range skillPatterns {
		if p.re.MatchString(text) {
			found = append(found, p.canonical)
		}
	}
	sort.Strings(found)
	return found
}

var relativeDateUnits = []struct {
	re  *regexp.Regexp
	dur time.Duration
}{
	{regexp.MustCompile(`(\d+)\s+second`), time.Second},
	{regexp.MustCompile(`(\d+)\s+minute`), time.Minute},
	{regexp.MustCompile(`(\d+)\s+hour`), time.Hour},
	{regexp.MustCompile(`(\d+)\s+day`), 24 * time.Hour},
	{regexp.MustCompile(`(\d+)\s+week`), 7 * 24 * time.Hour},
	{regexp.MustCompile(`(\d+)\s+month`), 30 * 24 * time.Hour},
	{regexp.MustCompile(`(\d+)\s+year`), 365 * 24 * time.Hour},
}

var absoluteDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"02/01/2006",
}

// ResolveDate turns an absolute or relative date string into a timestamp.
// Absolute formats are tried first, then "<N> <unit> ago" phrases relative
// to now (months approximated as 30 days, years as 365). "today" and
// "just now" resolve to now, "yesterday" to now minus one day. Anything else
// is unresolved and returns nil rather than an error.
func ResolveDate(raw string, now time.Time) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	for _, layout := range absoluteDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}

	lower := strings.ToLower(raw)
	for _, unit := range relativeDateUnits {
		if m := unit.re.FindStringSubmatch(lower); m != nil {
			n := 0
			for _, ch := range m[1] {
				n = n*10 + int(ch-'0')
			}
			t := now.Add(-time.Duration(n) * unit.dur)
			return &t
		}
	}

	if strings.Contains(lower, "today") || strings.Contains(lower, "just now") {
		t := now
		return &t
	}
	if strings.Contains(lower, "yesterday") {
		t := now.Add(-24 * time.Hour)
		return &t
	}

	return nil
}
