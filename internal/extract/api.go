package extract

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/jobpulse/backend/internal/domain"
	"github.com/jobpulse/backend/pkg/logger"
)

// descriptionCap bounds the free-text description carried on a record.
const descriptionCap = 2000

// apiJob mirrors one google_jobs result item.
type apiJob struct {
	Title              string `json:"title"`
	CompanyName        string `json:"company_name"`
	Location           string `json:"location"`
	Description        string `json:"description"`
	JobID              string `json:"job_id"`
	DetectedExtensions struct {
		PostedAt     string `json:"posted_at"`
		ScheduleType string `json:"schedule_type"`
		WorkFromHome bool   `json:"work_from_home"`
	} `json:"detected_extensions"`
	RelatedLinks []struct {
		Link string `json:"link"`
	} `json:"related_links"`
	JobApplyLink string `json:"job_apply_link"`
}

// apiRecords maps a provider JSON array directly onto raw records, bypassing
// the markup path entirely.
func apiRecords(raw, query, location string) []domain.RawJobRecord {
	var items []apiJob
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		logger.Warn("API payload decode failed",
			zap.String("query", query),
			zap.Error(err),
		)
		return nil
	}

	records := make([]domain.RawJobRecord, 0, len(items))
	for i, item := range items {
		title := cleanSpace(item.Title)
		if title == "" {
			continue
		}

		company := cleanSpace(item.CompanyName)
		if company == "" {
			company = "Unknown Company"
		}

		locationRaw := cleanSpace(item.Location)
		if locationRaw == "" {
			locationRaw = location
		}

		providerID := item.JobID
		if providerID == "" {
			providerID = fmt.Sprintf("serpapi_%d", i)
		}

		sourceURL := ""
		for _, link := range item.RelatedLinks {
			if len(link.Link) > 4 && link.Link[:4] == "http" {
				sourceURL = link.Link
				break
			}
		}
		if sourceURL == "" {
			sourceURL = item.JobApplyLink
		}

		description := item.Description
		if len(description) > descriptionCap {
			description = description[:descriptionCap]
		}

		records = append(records, domain.RawJobRecord{
			ProviderID:     providerID,
			Title:          title,
			Company:        company,
			LocationRaw:    locationRaw,
			DateRaw:        item.DetectedExtensions.PostedAt,
			Description:    description,
			SourceURL:      sourceURL,
			SearchQuery:    query,
			SearchLocation: location,
			FromAPI:        true,
			WorkFromHome:   item.DetectedExtensions.WorkFromHome,
			ScheduleType:   item.DetectedExtensions.ScheduleType,
		})
	}
	return records
}
