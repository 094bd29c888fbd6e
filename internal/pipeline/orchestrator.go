// Package pipeline drives a full ingestion run: plan queries, fetch pages
// through one adapter with retry and pacing, then extract, normalize and
// deduplicate everything into a single run result.
package pipeline

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/jobpulse/backend/internal/dedup"
	"github.com/jobpulse/backend/internal/domain"
	"github.com/jobpulse/backend/internal/extract"
	"github.com/jobpulse/backend/internal/fetch"
	"github.com/jobpulse/backend/internal/normalize"
)

// captchaAbandonCount is the per-query strike limit: the second CAPTCHA on
// the same query abandons it instead of burning more attempts.
const captchaAbandonCount = 2

// Policy is the orchestrator's retry and pagination tuning. Retry policy is
// owned here, never by adapters.
type Policy struct {
	MaxRetries int
	MaxPages   int
	Backoff    float64
}

// DefaultPolicy returns the tuning used when config is absent.
func DefaultPolicy() Policy {
	return Policy{MaxRetries: 3, MaxPages: 5, Backoff: 2.0}
}

// Orchestrator runs the pipeline over one adapter. It is single-use per Run
// call and holds no state between runs.
type Orchestrator struct {
	adapter fetch.Adapter
	policy  Policy
	logger  *zap.Logger
	now     func() time.Time
	sleep   func(ctx context.Context, d time.Duration) bool
}

// New builds an orchestrator. A zero-valued policy field falls back to its
// default so partial config never produces a stuck run.
func New(adapter fetch.Adapter, policy Policy, log *zap.Logger) *Orchestrator {
	def := DefaultPolicy()
	if policy.MaxRetries <= 0 {
		policy.MaxRetries = def.MaxRetries
	}
	if policy.MaxPages <= 0 {
		policy.MaxPages = def.MaxPages
	}
	if policy.Backoff <= 1 {
		policy.Backoff = def.Backoff
	}
	return &Orchestrator{
		adapter: adapter,
		policy:  policy,
		logger:  log,
		now:     time.Now,
		sleep:   sleepCtx,
	}
}

// queryOutcome is one query's fetch accounting. captcha reports any CAPTCHA
// observed during the walk, recovered or not; abandoned reports that the
// strike limit ended the query.
type queryOutcome struct {
	pages      []domain.RawPage
	anySuccess bool
	captcha    bool
	abandoned  bool
}

// Run executes the whole pipeline. It never panics: an unexpected panic is
// recovered into an empty result so one poisoned page cannot take down the
// caller. A context error aborts fetching but still assembles whatever
// pages were already collected.
func (o *Orchestrator) Run(ctx context.Context, queries []domain.Query) (result *domain.PipelineRunResult) {
	startedAt := o.now()

	result = &domain.PipelineRunResult{
		TotalQueries:  len(queries),
		FailedQueries: []string{},
		Source:        o.adapter.Name(),
		StartedAt:     startedAt,
		FinishedAt:    startedAt,
	}

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("Pipeline run panicked", zap.Any("panic", r))
			result = &domain.PipelineRunResult{
				TotalQueries:  len(queries),
				FailedQueries: []string{},
				Source:        o.adapter.Name(),
				StartedAt:     startedAt,
				FinishedAt:    o.now(),
			}
		}
	}()

	var allPages []domain.RawPage
	for i, q := range queries {
		if i > 0 {
			// Pause between queries too, not just between pages.
			if err := o.adapter.Pace(ctx); err != nil {
				o.logger.Warn("Run cancelled, assembling partial results")
				break
			}
		}
		outcome := o.fetchQuery(ctx, q)
		allPages = append(allPages, outcome.pages...)
		if outcome.captcha {
			result.CaptchaEncountered = true
		}
		// An abandoned query is failed even when earlier pages succeeded.
		if !outcome.anySuccess || outcome.abandoned {
			result.FailedQueries = append(result.FailedQueries, q.Key())
		}
		if ctx.Err() != nil {
			o.logger.Warn("Run cancelled, assembling partial results")
			break
		}
	}

	o.assemble(allPages, result)
	result.FinishedAt = o.now()

	o.logger.Info("Pipeline run finished",
		zap.String("source", result.Source),
		zap.Int("jobs", len(result.Jobs)),
		zap.Int("parsed", result.TotalParsed),
		zap.Int("duplicates", result.DuplicateCount),
		zap.Int("failed_pages", result.TotalFailedPages),
		zap.Int("failed_queries", len(result.FailedQueries)),
	)
	return result
}

// fetchQuery walks one query's pages until the adapter reports no further
// pages, the page cap is hit, retries are exhausted, or the query is
// abandoned on a second CAPTCHA.
func (o *Orchestrator) fetchQuery(ctx context.Context, q domain.Query) (out queryOutcome) {
	cur := fetch.Cursor{}
	captchaStrikes := 0

	// The flags must be accurate on every exit path.
	defer func() {
		out.captcha = captchaStrikes > 0
		out.abandoned = captchaStrikes >= captchaAbandonCount
	}()

	for pageNum := 0; pageNum < o.policy.MaxPages; pageNum++ {
		pf, abandoned := o.fetchPageWithRetry(ctx, q, cur, pageNum, &captchaStrikes)
		if pf == nil {
			if abandoned {
				return out
			}
			// Retries exhausted; account for the page and end the walk,
			// since pagination cannot advance past a missing page.
			out.pages = append(out.pages, domain.RawPage{
				Query:       q.Keywords,
				Location:    q.Location,
				PageNumber:  pageNum,
				FetchedAt:   o.now(),
				Succeeded:   false,
				ErrorDetail: "retries exhausted",
			})
			return out
		}

		if pf.Outcome.Status != fetch.StatusSuccess {
			// Terminal provider failure. On the first page it marks the
			// query failed; mid-pagination it just ends the walk.
			if pageNum == 0 {
				out.pages = append(out.pages, o.failedPage(pf, q, pageNum))
			}
			return out
		}

		if pf.Outcome.Payload == "" {
			// Clean empty batch: end of results, nothing to record.
			out.anySuccess = true
			return out
		}

		out.pages = append(out.pages, domain.RawPage{
			URL:        pf.URL,
			Payload:    pf.Outcome.Payload,
			Query:      q.Keywords,
			Location:   q.Location,
			PageNumber: pageNum,
			FetchedAt:  o.now(),
			Succeeded:  true,
		})
		out.anySuccess = true

		if pf.Next == nil {
			return out
		}
		cur = *pf.Next

		if err := o.adapter.Pace(ctx); err != nil {
			return out
		}
	}
	return out
}

// fetchPageWithRetry attempts one page up to MaxRetries times, sleeping the
// status-specific backoff between attempts. It returns nil when the page
// could not be fetched; abandoned is true when a CAPTCHA strike limit or
// cancellation ended the whole query.
func (o *Orchestrator) fetchPageWithRetry(ctx context.Context, q domain.Query, cur fetch.Cursor, pageNum int, captchaStrikes *int) (*fetch.PageFetch, bool) {
	for attempt := 0; attempt < o.policy.MaxRetries; attempt++ {
		pf, err := o.adapter.FetchPage(ctx, q, cur)
		if err != nil {
			return nil, true
		}

		switch pf.Outcome.Status {
		case fetch.StatusSuccess:
			return pf, false

		case fetch.StatusCaptcha:
			*captchaStrikes++
			o.logger.Warn("CAPTCHA strike",
				zap.String("query", q.Key()),
				zap.Int("strikes", *captchaStrikes),
			)
			if *captchaStrikes >= captchaAbandonCount {
				o.logger.Warn("Abandoning query after repeated CAPTCHAs", zap.String("query", q.Key()))
				return nil, true
			}
			if !o.sleep(ctx, o.backoff(attempt, 15*time.Second)) {
				return nil, true
			}

		case fetch.StatusRateLimited:
			if !o.sleep(ctx, o.backoff(attempt+1, 5*time.Second)) {
				return nil, true
			}

		case fetch.StatusSoftFailure:
			if pf.Terminal {
				return pf, false
			}
			o.logger.Debug("Page fetch failed",
				zap.String("url", pf.URL),
				zap.Int("attempt", attempt),
				zap.String("reason", pf.Outcome.Reason),
			)
			if !o.sleep(ctx, o.backoff(attempt, 3*time.Second)) {
				return nil, true
			}
		}
	}

	o.logger.Warn("Retries exhausted for page",
		zap.String("query", q.Key()),
		zap.Int("page", pageNum),
	)
	return nil, false
}

// backoff is base scaled by the policy factor raised to the attempt number.
func (o *Orchestrator) backoff(attempt int, base time.Duration) time.Duration {
	return time.Duration(math.Pow(o.policy.Backoff, float64(attempt)) * float64(base))
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}

func (o *Orchestrator) failedPage(pf *fetch.PageFetch, q domain.Query, pageNum int) domain.RawPage {
	detail := pf.Outcome.Reason
	if detail == "" {
		detail = pf.Outcome.Status.String()
	}
	return domain.RawPage{
		URL:         pf.URL,
		Query:       q.Keywords,
		Location:    q.Location,
		PageNumber:  pageNum,
		FetchedAt:   o.now(),
		Succeeded:   false,
		ErrorDetail: detail,
	}
}

// assemble runs the batch stages over every collected page: extract raw
// records, canonicalize, backfill skills for records that arrived without a
// description, then deduplicate first-seen-wins.
func (o *Orchestrator) assemble(pages []domain.RawPage, result *domain.PipelineRunResult) {
	now := o.now()

	var canonical []domain.JobPosting
	for _, page := range pages {
		if !page.Succeeded {
			result.TotalFailedPages++
			continue
		}
		result.SourcePages++
		for _, rec := range extract.Records(page) {
			canonical = append(canonical, normalize.Canonicalize(rec, now))
		}
	}
	result.TotalParsed = len(canonical)

	for i := range canonical {
		if len(canonical[i].RequiredSkills) == 0 {
			text := fmt.Sprintf("%s %s", canonical[i].Title, canonical[i].Description)
			canonical[i].RequiredSkills = domain.DedupeSkills(normalize.ExtractSkills(text))
		}
	}

	result.Jobs, result.DuplicateCount = dedup.Unique(canonical)
}
