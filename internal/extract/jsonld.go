package extract

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jobpulse/backend/internal/domain"
)

// structuredDataRecords is the second markup strategy: when no listing cards
// match, walk the embedded JSON-LD blocks for JobPosting-typed objects.
func structuredDataRecords(doc *goquery.Document, query, location string) []domain.RawJobRecord {
	var records []domain.RawJobRecord
	doc.Find("script[type='application/ld+json']").Each(func(_ int, script *goquery.Selection) {
		raw := strings.TrimSpace(script.Text())
		if raw == "" {
			return
		}
		var payload any
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			return
		}
		collectJobPostings(payload, func(obj map[string]any) {
			if rec, ok := structuredDataRecord(obj, query, location); ok {
				records = append(records, rec)
			}
		})
	})
	return records
}

// collectJobPostings walks a decoded JSON-LD value, descending into arrays
// and @graph containers, and calls visit for every JobPosting object.
func collectJobPostings(payload any, visit func(map[string]any)) {
	switch v := payload.(type) {
	case map[string]any:
		if isJobPostingType(v["@type"]) {
			visit(v)
			return
		}
		if graph, ok := v["@graph"].([]any); ok {
			for _, item := range graph {
				collectJobPostings(item, visit)
			}
		}
	case []any:
		for _, item := range v {
			collectJobPostings(item, visit)
		}
	}
}

func isJobPostingType(t any) bool {
	switch v := t.(type) {
	case string:
		return v == "JobPosting"
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s == "JobPosting" {
				return true
			}
		}
	}
	return false
}

func structuredDataRecord(obj map[string]any, query, location string) (domain.RawJobRecord, bool) {
	title := cleanSpace(stringField(obj, "title"))
	if title == "" {
		return domain.RawJobRecord{}, false
	}

	company := ""
	switch org := obj["hiringOrganization"].(type) {
	case map[string]any:
		company = stringField(org, "name")
	case string:
		company = org
	}
	if company == "" {
		company = "Unknown"
	}

	locationRaw := structuredDataLocation(obj)
	if locationRaw == "" {
		locationRaw = location
	}

	sourceURL := stringField(obj, "url")

	description := stringField(obj, "description")
	if len(description) > descriptionCap {
		description = description[:descriptionCap]
	}

	return domain.RawJobRecord{
		Title:           title,
		Company:         company,
		LocationRaw:     locationRaw,
		DateRaw:         stringField(obj, "datePosted"),
		Description:     description,
		SourceURL:       sourceURL,
		SearchQuery:     query,
		SearchLocation:  location,
		JobLocationType: stringField(obj, "jobLocationType"),
	}, true
}

func structuredDataLocation(obj map[string]any) string {
	loc, ok := obj["jobLocation"].(map[string]any)
	if !ok {
		// Some graphs carry a list of locations; use the first.
		if list, ok := obj["jobLocation"].([]any); ok && len(list) > 0 {
			loc, _ = list[0].(map[string]any)
		}
	}
	if loc == nil {
		return ""
	}
	addr, _ := loc["address"].(map[string]any)
	if addr == nil {
		return ""
	}
	var parts []string
	for _, key := range []string{"streetAddress", "addressLocality", "addressRegion", "addressCountry"} {
		if v := stringField(addr, key); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
