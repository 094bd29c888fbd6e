package domain

import "time"

// APIPayloadMarker prefixes RawPage payloads that hold a raw search-API JSON
// array instead of rendered markup. The extraction stage routes on it; no
// other content sniffing is performed.
const APIPayloadMarker = "SERPAPI_JSON::"

// Query is one (keywords, location) search produced by the query planner.
type Query struct {
	Keywords string `json:"keywords"`
	Location string `json:"location"`
}

// Key is the "keywords|location" form used in failed-query accounting.
func (q Query) Key() string {
	return q.Keywords + "|" + q.Location
}

// RawPage is one page-fetch attempt. Exactly one RawPage exists per
// (query, page) pair whether or not the fetch succeeded; failed pages carry
// an empty payload and an error detail. Never mutated after creation.
type RawPage struct {
	URL         string    `json:"url"`
	Payload     string    `json:"payload"`
	Query       string    `json:"query"`
	Location    string    `json:"location"`
	PageNumber  int       `json:"page_number"`
	FetchedAt   time.Time `json:"fetched_at"`
	Succeeded   bool      `json:"succeeded"`
	ErrorDetail string    `json:"error_detail,omitempty"`
}

// RawJobRecord is the extraction stage's loosely-typed intermediate output.
// It lives only between extraction and normalization.
type RawJobRecord struct {
	ProviderID     string
	Title          string
	Company        string
	LocationRaw    string
	DateRaw        string
	Description    string
	SourceURL      string
	SearchQuery    string
	SearchLocation string

	// API-source extension hints.
	FromAPI         bool
	WorkFromHome    bool
	ScheduleType    string
	JobLocationType string
}

// PipelineRunResult is the sole interface handed to downstream consumers:
// the unique canonical corpus plus failure and duplicate accounting.
type PipelineRunResult struct {
	Jobs               []JobPosting `json:"jobs"`
	TotalParsed        int          `json:"total_parsed"`
	TotalFailedPages   int          `json:"total_failed_pages"`
	DuplicateCount     int          `json:"duplicate_count"`
	SourcePages        int          `json:"source_pages"`
	TotalQueries       int          `json:"total_queries"`
	FailedQueries      []string     `json:"failed_queries"`
	CaptchaEncountered bool         `json:"captcha_encountered"`
	Source             string       `json:"source"`
	StartedAt          time.Time    `json:"started_at"`
	FinishedAt         time.Time    `json:"finished_at"`
}
