package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jobpulse/backend/internal/domain"
)

func TestNewAPIAdapterRejectsPlaceholderKeys(t *testing.T) {
	for _, key := range []string{"", "PASTE_YOUR_SERPAPI_KEY_HERE", "your_key_here", "YOUR_API_KEY", "xxxx"} {
		_, err := NewAPIAdapter(APIOptions{APIKey: key}, zap.NewNop())
		assert.Error(t, err, "key %q must be rejected", key)
	}

	adapter, err := NewAPIAdapter(APIOptions{APIKey: "real-key-123"}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "serpapi", adapter.Name())
}

func newTestAPIAdapter(t *testing.T, handler http.HandlerFunc) *APIAdapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	adapter, err := NewAPIAdapter(APIOptions{APIKey: "real-key-123", Endpoint: srv.URL}, zap.NewNop())
	require.NoError(t, err)
	return adapter
}

func TestAPIAdapterFetchPageSuccess(t *testing.T) {
	var gotQuery map[string]string
	adapter := newTestAPIAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for key, vals := range r.URL.Query() {
			gotQuery[key] = vals[0]
		}
		w.Write([]byte(`{
			"jobs_results": [
				{"title": "ML Engineer"}, {"title": "Data Engineer"},
				{"title": "a"}, {"title": "b"}, {"title": "c"},
				{"title": "d"}, {"title": "e"}, {"title": "f"},
				{"title": "g"}, {"title": "h"}
			],
			"serpapi_pagination": {"next_page_token": "tok-2"}
		}`))
	})

	pf, err := adapter.FetchPage(context.Background(), domain.Query{Keywords: "Engineer", Location: "India"}, Cursor{})
	require.NoError(t, err)

	assert.Equal(t, "google_jobs", gotQuery["engine"])
	assert.Equal(t, "Engineer", gotQuery["q"])
	assert.Equal(t, "India", gotQuery["location"])
	assert.Equal(t, "date_posted:month", gotQuery["chips"])

	assert.Equal(t, StatusSuccess, pf.Outcome.Status)
	assert.True(t, strings.HasPrefix(pf.Outcome.Payload, domain.APIPayloadMarker))
	require.NotNil(t, pf.Next)
	assert.Equal(t, "tok-2", pf.Next.Token)
	assert.Equal(t, 1, pf.Next.Page)
	// The key must never leak into the recorded URL.
	assert.NotContains(t, pf.URL, "real-key-123")
}

func TestAPIAdapterOffsetFallbackWhenNoToken(t *testing.T) {
	adapter := newTestAPIAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "20", r.URL.Query().Get("start"))
		assert.Empty(t, r.URL.Query().Get("next_page_token"))
		w.Write([]byte(`{"jobs_results": [{"title": "only one"}]}`))
	})

	pf, err := adapter.FetchPage(context.Background(), domain.Query{Keywords: "x"}, Cursor{Page: 2})
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, pf.Outcome.Status)
	// A partial page without a continuation token ends pagination.
	assert.Nil(t, pf.Next)
}

func TestAPIAdapterTokenPreferredOverOffset(t *testing.T) {
	adapter := newTestAPIAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tok-1", r.URL.Query().Get("next_page_token"))
		assert.Empty(t, r.URL.Query().Get("start"))
		w.Write([]byte(`{"jobs_results": []}`))
	})

	pf, err := adapter.FetchPage(context.Background(), domain.Query{Keywords: "x"}, Cursor{Page: 1, Token: "tok-1"})
	require.NoError(t, err)

	// Empty batch is a clean end of results.
	assert.Equal(t, StatusSuccess, pf.Outcome.Status)
	assert.Empty(t, pf.Outcome.Payload)
	assert.Nil(t, pf.Next)
}

func TestAPIAdapterRateLimited(t *testing.T) {
	adapter := newTestAPIAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	pf, err := adapter.FetchPage(context.Background(), domain.Query{Keywords: "x"}, Cursor{})
	require.NoError(t, err)
	assert.Equal(t, StatusRateLimited, pf.Outcome.Status)
	assert.False(t, pf.Terminal)
}

func TestAPIAdapterProviderErrorIsTerminal(t *testing.T) {
	adapter := newTestAPIAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": "Google Jobs hasn't returned any results for this query."}`))
	})

	pf, err := adapter.FetchPage(context.Background(), domain.Query{Keywords: "x"}, Cursor{})
	require.NoError(t, err)
	assert.Equal(t, StatusSoftFailure, pf.Outcome.Status)
	assert.True(t, pf.Terminal)
	assert.Contains(t, pf.Outcome.Reason, "hasn't returned any results")
}

func TestBuildSearchURL(t *testing.T) {
	u := BuildSearchURL("Backend Engineer", "United States", time.Hour, 25)

	assert.True(t, strings.HasPrefix(u, "https://www.linkedin.com/jobs/search/?"))
	assert.Contains(t, u, "keywords=Backend+Engineer")
	assert.Contains(t, u, "location=United+States")
	assert.Contains(t, u, "f_TPR=r3600")
	assert.Contains(t, u, "start=25")
	assert.Contains(t, u, "sortBy=DD")
}

func TestMarkupClassifiers(t *testing.T) {
	assert.True(t, isCaptcha("<div class='recaptcha'></div>"))
	assert.True(t, isCaptcha("Please verify you are a human"))
	assert.False(t, isCaptcha("<div class='job-search-card'></div>"))

	assert.True(t, isRateLimited("HTTP 429 Too Many Requests"))
	assert.True(t, isRateLimited("you are temporarily blocked"))
	assert.False(t, isRateLimited("all good"))

	assert.False(t, hasNextPage("<p>No matching jobs found</p>"))
	assert.False(t, hasNextPage("<div class='no-results'></div>"))
	assert.True(t, hasNextPage("<ul class='jobs-search__results-list'><li></li></ul>"))
}
