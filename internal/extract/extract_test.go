package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobpulse/backend/internal/domain"
)

const listingHTML = `
<html><body>
<ul class="jobs-search__results-list">
  <li data-entity-urn="urn:li:jobPosting:4012345678">
    <div class="base-card">
      <a href="/jobs/view/4012345678">details</a>
      <h3 class="base-search-card__title"> Senior Backend Engineer </h3>
      <h4 class="base-search-card__subtitle">Acme Corp</h4>
      <span class="job-search-card__location">Austin, TX</span>
      <time datetime="2026-08-01">3 weeks ago</time>
    </div>
  </li>
  <li data-entity-urn="urn:li:jobPosting:4098765432">
    <div class="base-card">
      <a href="https://example.com/jobs/view/4098765432">details</a>
      <h3 class="base-search-card__title">Data Engineer</h3>
      <time>2 days ago</time>
    </div>
  </li>
  <li>
    <div class="base-card">
      <h4 class="base-search-card__company">No Name Inc</h4>
    </div>
  </li>
</ul>
</body></html>`

func rawPage(payload string) domain.RawPage {
	return domain.RawPage{
		Payload:   payload,
		Query:     "Backend Engineer",
		Location:  "United States",
		FetchedAt: time.Now(),
		Succeeded: true,
	}
}

func TestRecordsFromListingMarkup(t *testing.T) {
	records := Records(rawPage(listingHTML))

	// The card without a title is dropped entirely.
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "4012345678", first.ProviderID)
	assert.Equal(t, "Senior Backend Engineer", first.Title)
	assert.Equal(t, "Acme Corp", first.Company)
	assert.Equal(t, "Austin, TX", first.LocationRaw)
	// The datetime attribute wins over the human-readable text.
	assert.Equal(t, "2026-08-01", first.DateRaw)
	assert.Equal(t, "https://www.linkedin.com/jobs/view/4012345678", first.SourceURL)
	assert.Equal(t, "Backend Engineer", first.SearchQuery)
	assert.False(t, first.FromAPI)

	second := records[1]
	assert.Equal(t, "4098765432", second.ProviderID)
	assert.Equal(t, "Unknown Company", second.Company)
	// Missing location falls back to the search location.
	assert.Equal(t, "United States", second.LocationRaw)
	assert.Equal(t, "2 days ago", second.DateRaw)
	assert.Equal(t, "https://example.com/jobs/view/4098765432", second.SourceURL)
}

const structuredDataHTML = `
<html><body>
<div id="app">no listing cards here</div>
<script type="application/ld+json">
{
  "@context": "https://schema.org",
  "@graph": [
    {"@type": "WebSite", "name": "jobs"},
    {
      "@type": "JobPosting",
      "title": "Platform Engineer",
      "hiringOrganization": {"@type": "Organization", "name": "Initech"},
      "jobLocation": {
        "@type": "Place",
        "address": {"addressLocality": "Pune", "addressCountry": "India"}
      },
      "datePosted": "2026-07-15",
      "jobLocationType": "TELECOMMUTE",
      "url": "https://example.com/jobs/platform-engineer"
    }
  ]
}
</script>
</body></html>`

func TestRecordsFallsBackToStructuredData(t *testing.T) {
	records := Records(rawPage(structuredDataHTML))

	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, "Platform Engineer", rec.Title)
	assert.Equal(t, "Initech", rec.Company)
	assert.Equal(t, "Pune, India", rec.LocationRaw)
	assert.Equal(t, "2026-07-15", rec.DateRaw)
	assert.Equal(t, "TELECOMMUTE", rec.JobLocationType)
	assert.Equal(t, "https://example.com/jobs/platform-engineer", rec.SourceURL)
}

const apiPayload = domain.APIPayloadMarker + `[
  {
    "title": "ML Engineer",
    "company_name": "Acme AI",
    "location": "Remote",
    "description": "Train models.",
    "job_id": "serp_abc",
    "detected_extensions": {"posted_at": "5 days ago", "schedule_type": "Full-time", "work_from_home": true},
    "related_links": [{"link": "https://acme.ai/careers/ml"}]
  },
  {
    "title": "",
    "company_name": "Dropped"
  },
  {
    "title": "SRE",
    "job_apply_link": "https://apply.example.com/sre"
  }
]`

func TestRecordsFromAPIPayload(t *testing.T) {
	records := Records(rawPage(apiPayload))

	// The untitled item is dropped.
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "serp_abc", first.ProviderID)
	assert.Equal(t, "ML Engineer", first.Title)
	assert.Equal(t, "Acme AI", first.Company)
	assert.Equal(t, "5 days ago", first.DateRaw)
	assert.Equal(t, "Full-time", first.ScheduleType)
	assert.True(t, first.WorkFromHome)
	assert.True(t, first.FromAPI)
	assert.Equal(t, "https://acme.ai/careers/ml", first.SourceURL)

	second := records[1]
	assert.Equal(t, "Unknown Company", second.Company)
	// Index-based fallback id; the item sits at position 2 in the payload.
	assert.Equal(t, "serpapi_2", second.ProviderID)
	// No related links, so the apply link is used.
	assert.Equal(t, "https://apply.example.com/sre", second.SourceURL)
	// Missing location falls back to the search location.
	assert.Equal(t, "United States", second.LocationRaw)
}

func TestRecordsSkipsFailedAndEmptyPages(t *testing.T) {
	assert.Nil(t, Records(domain.RawPage{Succeeded: false, Payload: listingHTML}))
	assert.Nil(t, Records(domain.RawPage{Succeeded: true, Payload: ""}))
}

func TestRecordsMalformedAPIPayload(t *testing.T) {
	assert.Nil(t, Records(rawPage(domain.APIPayloadMarker+"{not json")))
}
