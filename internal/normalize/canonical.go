package normalize

import (
	"time"

	"github.com/jobpulse/backend/internal/domain"
)

// descriptionSample bounds how much of a description feeds experience-level
// detection for API-sourced records.
const descriptionSample = 500

// Canonicalize builds the canonical posting from one raw record. Every
// enumeration field is always set; fields with no signal get their
// NotSpecified/Other value (Full-time for employment type).
func Canonicalize(rec domain.RawJobRecord, now time.Time) domain.JobPosting {
	title := CleanText(rec.Title)
	company := CleanText(rec.Company)
	locationRaw := CleanText(rec.LocationRaw)

	city, country := SplitLocation(locationRaw)
	if country == "" {
		country = InferCountry(locationRaw + " " + rec.SearchLocation)
	}

	var workType domain.WorkType
	var employment domain.EmploymentType
	var experience domain.ExperienceLevel
	var skills []string

	if rec.FromAPI {
		combined := title + " " + locationRaw + " " + rec.Description + " " + rec.ScheduleType
		if rec.WorkFromHome {
			workType = domain.WorkRemote
		} else {
			workType = DetectWorkType(combined)
		}
		empText := rec.ScheduleType
		if empText == "" {
			empText = combined
		}
		employment = DetectEmploymentType(empText)
		desc := rec.Description
		if len(desc) > descriptionSample {
			desc = desc[:descriptionSample]
		}
		experience = DetectExperienceLevel(title + " " + desc)
		skills = ExtractSkills(rec.Description + " " + title)
	} else {
		workType = DetectWorkType(rec.JobLocationType + " " + title + " " + locationRaw)
		employment = DetectEmploymentType(title)
		experience = DetectExperienceLevel(title)
	}

	return domain.JobPosting{
		JobID:           rec.ProviderID,
		Title:           title,
		Category:        ClassifyRole(title),
		CompanyName:     company,
		LocationRaw:     locationRaw,
		LocationCity:    city,
		LocationCountry: country,
		Region:          DetectRegion(locationRaw, rec.SearchLocation),
		WorkType:        workType,
		DatePosted:      ResolveDate(rec.DateRaw, now),
		DatePostedRaw:   rec.DateRaw,
		RequiredSkills:  domain.DedupeSkills(skills),
		ExperienceLevel: experience,
		EmploymentType:  employment,
		Description:     rec.Description,
		SourceURL:       rec.SourceURL,
		SearchQuery:     rec.SearchQuery,
		SearchLocation:  rec.SearchLocation,
		ScrapedAt:       now,
	}
}
