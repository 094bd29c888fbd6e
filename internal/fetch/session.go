package fetch

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/jobpulse/backend/internal/domain"
)

// jobsPerPage is the listing page size; offsets advance in this stride.
const jobsPerPage = 25

// stealthScript suppresses the automation markers checked by anti-bot
// scripts. It must be installed before any navigation on a tab.
const stealthScript = `
Object.defineProperty(navigator, 'webdriver', {
    get: () => undefined,
});
Object.defineProperty(navigator, 'plugins', {
    get: () => [1, 2, 3, 4, 5],
});
Object.defineProperty(navigator, 'languages', {
    get: () => ['en-US', 'en'],
});
const originalQuery = window.navigator.permissions.query;
window.navigator.permissions.query = (parameters) => (
    parameters.name === 'notifications' ?
    Promise.resolve({ state: Notification.permission }) :
    originalQuery(parameters)
);
window.chrome = {
    runtime: {},
    loadTimes: function() {},
    csi: function() {},
    app: {},
};
`

// desktopUserAgents is the identity pool rotated per request.
var desktopUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_4_1) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4.1 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36 Edg/123.0.0.0",
}

func randomUserAgent() string {
	return desktopUserAgents[rand.Intn(len(desktopUserAgents))]
}

var captchaSignals = []string{
	"captcha",
	"CAPTCHA",
	"cf-captcha-container",
	"recaptcha",
	"challenge-form",
	"hCaptcha",
	"Please verify you are a human",
	"bot detection",
}

var rateLimitSignals = []string{
	"429",
	"too many requests",
	"rate limit",
	"slow down",
	"temporarily blocked",
}

func isCaptcha(html string) bool {
	for _, signal := range captchaSignals {
		if strings.Contains(html, signal) {
			return true
		}
	}
	return false
}

func isRateLimited(html string) bool {
	lower := strings.ToLower(html)
	for _, signal := range rateLimitSignals {
		if strings.Contains(lower, signal) {
			return true
		}
	}
	return false
}

// hasNextPage reports whether the listing markup suggests more result pages.
func hasNextPage(html string) bool {
	if strings.Contains(html, "No matching jobs found") {
		return false
	}
	return !strings.Contains(strings.ToLower(html), "no-results")
}

// SessionOptions tunes one browser session.
type SessionOptions struct {
	Headless   bool
	NavTimeout time.Duration
	MinDelay   time.Duration
	MaxDelay   time.Duration
	// TimeRange limits results to postings newer than this window.
	TimeRange time.Duration
}

// DefaultSessionOptions returns the tuning used when config is absent.
func DefaultSessionOptions() SessionOptions {
	return SessionOptions{
		Headless:   true,
		NavTimeout: 30 * time.Second,
		MinDelay:   2 * time.Second,
		MaxDelay:   5 * time.Second,
		TimeRange:  2 * 365 * 24 * time.Hour,
	}
}

// SessionAdapter owns one stealth browser session. Page fetches on a session
// are strictly sequential: a single browsing context is held and its
// anti-detection posture depends on not parallelizing navigations.
type SessionAdapter struct {
	opts        SessionOptions
	logger      *zap.Logger
	browserCtx  context.Context
	cancelAlloc context.CancelFunc
	cancelCtx   context.CancelFunc
}

// NewSessionAdapter launches the browser with automation-signal suppression
// flags and a fixed realistic viewport. Launch failure is a fatal
// precondition; no fetch is attempted against a half-started session.
func NewSessionAdapter(opts SessionOptions, log *zap.Logger) (*SessionAdapter, error) {
	execOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("headless", opts.Headless),
		chromedp.UserAgent(randomUserAgent()),
		chromedp.WindowSize(1920, 1080),
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), execOpts...)
	browserCtx, cancelCtx := chromedp.NewContext(allocCtx)

	// Start the browser eagerly so construction surfaces launch errors.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelCtx()
		cancelAlloc()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	log.Debug("Browser session started", zap.Bool("headless", opts.Headless))

	return &SessionAdapter{
		opts:        opts,
		logger:      log,
		browserCtx:  browserCtx,
		cancelAlloc: cancelAlloc,
		cancelCtx:   cancelCtx,
	}, nil
}

// Name returns the adapter name.
func (s *SessionAdapter) Name() string {
	return "browser"
}

// FetchPage renders one search results page and classifies the markup.
func (s *SessionAdapter) FetchPage(ctx context.Context, q domain.Query, cur Cursor) (*PageFetch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pageURL := BuildSearchURL(q.Keywords, q.Location, s.opts.TimeRange, cur.Page*jobsPerPage)

	html, err := s.renderPage(ctx, pageURL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Navigation timeouts and transport errors are soft failures.
		return &PageFetch{
			URL:     pageURL,
			Outcome: Outcome{Status: StatusSoftFailure, Reason: err.Error()},
		}, nil
	}

	if isCaptcha(html) {
		s.logger.Warn("CAPTCHA detected", zap.String("url", pageURL))
		return &PageFetch{URL: pageURL, Outcome: Outcome{Status: StatusCaptcha}}, nil
	}
	if isRateLimited(html) {
		s.logger.Warn("Rate limited", zap.String("url", pageURL))
		return &PageFetch{URL: pageURL, Outcome: Outcome{Status: StatusRateLimited}}, nil
	}

	pf := &PageFetch{
		URL:     pageURL,
		Outcome: Outcome{Status: StatusSuccess, Payload: html},
	}
	if hasNextPage(html) {
		pf.Next = &Cursor{Page: cur.Page + 1}
	}
	return pf, nil
}

// renderPage opens an ephemeral tab, installs the stealth script, rotates
// the presented identity, navigates, triggers lazy rendering with staged
// scrolls, and returns the rendered markup. The tab is released on every
// exit path.
func (s *SessionAdapter) renderPage(parent context.Context, pageURL string) (string, error) {
	tabCtx, cancelTab := chromedp.NewContext(s.browserCtx)
	defer cancelTab()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, s.opts.NavTimeout)
	defer cancelTimeout()

	// Honor external cancellation while the tab context drives chromedp.
	go func() {
		select {
		case <-parent.Done():
			cancelTab()
		case <-tabCtx.Done():
		}
	}()

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
			return err
		}),
		emulation.SetUserAgentOverride(randomUserAgent()),
		chromedp.Navigate(pageURL),
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight / 3)`, nil),
		chromedp.Sleep(time.Second),
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight * 2 / 3)`, nil),
		chromedp.Sleep(time.Second),
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
		chromedp.Sleep(1500*time.Millisecond),
		chromedp.ActionFunc(func(ctx context.Context) error {
			node, err := dom.GetDocument().Do(ctx)
			if err != nil {
				return err
			}
			html, err = dom.GetOuterHTML().WithNodeID(node.NodeID).Do(ctx)
			return err
		}),
	)
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", pageURL, err)
	}
	return html, nil
}

// Pace sleeps a uniformly sampled duration between the configured min and
// max before the next fetch.
func (s *SessionAdapter) Pace(ctx context.Context) error {
	delay := s.opts.MinDelay
	if s.opts.MaxDelay > s.opts.MinDelay {
		delay += time.Duration(rand.Int63n(int64(s.opts.MaxDelay - s.opts.MinDelay)))
	}
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close tears down the session and its browser unconditionally.
func (s *SessionAdapter) Close() error {
	s.cancelCtx()
	s.cancelAlloc()
	s.logger.Debug("Browser session closed")
	return nil
}

// BuildSearchURL assembles a public jobs-search URL for the query, bounded
// to the posting-age window and offset to the given result index.
func BuildSearchURL(keywords, location string, timeRange time.Duration, start int) string {
	params := url.Values{}
	params.Set("keywords", keywords)
	params.Set("location", location)
	params.Set("f_TPR", fmt.Sprintf("r%d", int(timeRange.Seconds())))
	params.Set("start", fmt.Sprintf("%d", start))
	params.Set("sortBy", "DD")
	return "https://www.linkedin.com/jobs/search/?" + params.Encode()
}
