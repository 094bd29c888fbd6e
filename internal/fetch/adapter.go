// Package fetch provides the two page-fetch adapters behind one capability
// interface: a stealth browser session for rendered listing pages and a
// structured search-API client. Retry policy lives with the orchestrator,
// not here; adapters only classify what a single attempt produced.
package fetch

import (
	"context"

	"github.com/jobpulse/backend/internal/domain"
)

// Status classifies a single fetch attempt.
type Status int

const (
	StatusSuccess Status = iota
	StatusSoftFailure
	StatusCaptcha
	StatusRateLimited
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusSoftFailure:
		return "soft_failure"
	case StatusCaptcha:
		return "captcha"
	case StatusRateLimited:
		return "rate_limited"
	}
	return "unknown"
}

// Outcome is the result of one fetch attempt. Payload is only set on
// success; Reason carries the failure detail otherwise.
type Outcome struct {
	Status  Status
	Payload string
	Reason  string
}

// Cursor identifies the next result page: a provider continuation token
// when one was issued, else a zero-based page number for offset pagination.
type Cursor struct {
	Page  int
	Token string
}

// PageFetch is one attempt's outcome plus pagination state. Next is nil when
// the adapter determined there are no further pages. Terminal marks a
// failure that retrying cannot help (an explicit provider error); the
// orchestrator stops the query's pagination immediately.
type PageFetch struct {
	URL      string
	Outcome  Outcome
	Next     *Cursor
	Terminal bool
}

// Adapter is the capability shared by both fetch sources. One adapter is
// selected per pipeline run. FetchPage never panics; transport-level
// problems come back as SoftFailure outcomes, and the returned error is
// reserved for context cancellation.
type Adapter interface {
	Name() string
	FetchPage(ctx context.Context, q domain.Query, cur Cursor) (*PageFetch, error)
	// Pace blocks for the adapter's inter-request delay. This is the
	// backpressure protecting the target from burst traffic.
	Pace(ctx context.Context) error
	Close() error
}
