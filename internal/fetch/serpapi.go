package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jobpulse/backend/internal/domain"
)

const (
	serpEndpoint = "https://serpapi.com/search.json"
	// apiPageSize is the provider's fixed result-page size; a shorter batch
	// without a continuation token means the last page.
	apiPageSize = 10
)

// placeholderKeys are values a key field holds when nobody filled it in.
var placeholderKeys = map[string]struct{}{
	"":                            {},
	"PASTE_YOUR_SERPAPI_KEY_HERE": {},
	"your_key_here":               {},
	"YOUR_API_KEY":                {},
	"serpapi_key":                 {},
	"xxxx":                        {},
}

// APIOptions tunes the search-API client. Endpoint is overridable for
// testing and defaults to the hosted service.
type APIOptions struct {
	APIKey   string
	Timeout  time.Duration
	Endpoint string
}

// APIAdapter fetches job batches from the hosted google_jobs search API.
// Unlike the browser session it paginates by provider continuation token,
// falling back to result offsets when no token is issued.
type APIAdapter struct {
	opts    APIOptions
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewAPIAdapter validates the key up front. A placeholder key is a fatal
// precondition, not a per-page failure.
func NewAPIAdapter(opts APIOptions, log *zap.Logger) (*APIAdapter, error) {
	if _, bad := placeholderKeys[opts.APIKey]; bad {
		return nil, fmt.Errorf("serpapi key is missing or still a placeholder")
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Endpoint == "" {
		opts.Endpoint = serpEndpoint
	}
	return &APIAdapter{
		opts:    opts,
		client:  &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(rate.Every(400*time.Millisecond), 1),
		logger:  log,
	}, nil
}

// Name returns the adapter name.
func (a *APIAdapter) Name() string {
	return "serpapi"
}

// serpResponse is the slice of the provider envelope we act on. JobsResults
// stays raw; the extract layer owns the item schema.
type serpResponse struct {
	Error             string          `json:"error"`
	JobsResults       json.RawMessage `json:"jobs_results"`
	SerpapiPagination struct {
		NextPageToken string `json:"next_page_token"`
	} `json:"serpapi_pagination"`
}

// FetchPage requests one result batch and classifies the response.
func (a *APIAdapter) FetchPage(ctx context.Context, q domain.Query, cur Cursor) (*PageFetch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("engine", "google_jobs")
	params.Set("q", q.Keywords)
	params.Set("location", q.Location)
	params.Set("api_key", a.opts.APIKey)
	params.Set("hl", "en")
	params.Set("chips", "date_posted:month")
	if cur.Token != "" {
		params.Set("next_page_token", cur.Token)
	} else if cur.Page > 0 {
		params.Set("start", fmt.Sprintf("%d", cur.Page*apiPageSize))
	}

	requestURL := a.opts.Endpoint + "?" + params.Encode()
	// The key never goes in logs or recorded page URLs.
	params.Set("api_key", "redacted")
	displayURL := a.opts.Endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return &PageFetch{
			URL:     displayURL,
			Outcome: Outcome{Status: StatusSoftFailure, Reason: err.Error()},
		}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		a.logger.Warn("Search API rate limited", zap.Int("page", cur.Page))
		return &PageFetch{URL: displayURL, Outcome: Outcome{Status: StatusRateLimited}}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return &PageFetch{
			URL:     displayURL,
			Outcome: Outcome{Status: StatusSoftFailure, Reason: fmt.Sprintf("unexpected status %d", resp.StatusCode)},
		}, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &PageFetch{
			URL:     displayURL,
			Outcome: Outcome{Status: StatusSoftFailure, Reason: err.Error()},
		}, nil
	}

	var envelope serpResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return &PageFetch{
			URL:     displayURL,
			Outcome: Outcome{Status: StatusSoftFailure, Reason: fmt.Sprintf("bad response body: %v", err)},
		}, nil
	}

	if envelope.Error != "" {
		// Provider errors ("no more results", bad query) do not recover
		// with retries; stop the query's pagination here.
		return &PageFetch{
			URL:      displayURL,
			Outcome:  Outcome{Status: StatusSoftFailure, Reason: envelope.Error},
			Terminal: true,
		}, nil
	}

	var items []json.RawMessage
	if len(envelope.JobsResults) > 0 {
		if err := json.Unmarshal(envelope.JobsResults, &items); err != nil {
			return &PageFetch{
				URL:     displayURL,
				Outcome: Outcome{Status: StatusSoftFailure, Reason: fmt.Sprintf("bad jobs_results: %v", err)},
			}, nil
		}
	}

	if len(items) == 0 {
		// An empty batch is a clean end of results, not a failure.
		return &PageFetch{URL: displayURL, Outcome: Outcome{Status: StatusSuccess}}, nil
	}

	pf := &PageFetch{
		URL:     displayURL,
		Outcome: Outcome{Status: StatusSuccess, Payload: domain.APIPayloadMarker + string(envelope.JobsResults)},
	}

	switch {
	case envelope.SerpapiPagination.NextPageToken != "":
		pf.Next = &Cursor{Page: cur.Page + 1, Token: envelope.SerpapiPagination.NextPageToken}
	case len(items) >= apiPageSize:
		pf.Next = &Cursor{Page: cur.Page + 1}
	}
	return pf, nil
}

// Pace waits on the request-rate limiter.
func (a *APIAdapter) Pace(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// Close is a no-op; the adapter holds no connection state worth tearing down.
func (a *APIAdapter) Close() error {
	return nil
}
