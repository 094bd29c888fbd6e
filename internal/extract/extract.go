// Package extract converts raw page payloads into loosely-typed job records.
// Payloads carrying the API marker are parsed as a provider JSON array;
// everything else goes through the markup path: an ordered cascade of
// listing-card selectors with an embedded JSON-LD fallback.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/jobpulse/backend/internal/domain"
	"github.com/jobpulse/backend/pkg/logger"
)

const listingBaseURL = "https://www.linkedin.com"

// cardSelectors covers the listing layouts observed over time; the first
// selector that yields any match wins for the whole page.
var cardSelectors = []string{
	"li.jobs-search__results-list > .job-search-card",
	"ul.jobs-search__results-list li",
	".base-card",
	"li[data-occludable-job-id]",
	".job-search-card",
}

var titleSelectors = []string{
	"h3.base-search-card__title",
	".job-search-card__title",
	"h3",
	"[class*='title']",
}

var companySelectors = []string{
	"h4.base-search-card__subtitle",
	"a[data-tracking-control-name='public_jobs_jserp-result_job-search-card-subtitle']",
	".job-search-card__company-name",
	"h4",
}

var locationSelectors = []string{
	".job-search-card__location",
	"span.job-result-card__location",
	"[class*='location']",
}

var dateSelectors = []string{
	"time",
	"[class*='date']",
	"[class*='time']",
}

// Records extracts all raw job records from one page. Failed pages yield
// nothing; a single unparseable card never blocks its siblings.
func Records(page domain.RawPage) []domain.RawJobRecord {
	if !page.Succeeded || page.Payload == "" {
		return nil
	}
	if strings.HasPrefix(page.Payload, domain.APIPayloadMarker) {
		raw := strings.TrimPrefix(page.Payload, domain.APIPayloadMarker)
		return apiRecords(raw, page.Query, page.Location)
	}
	return markupRecords(page.Payload, page.Query, page.Location)
}

func markupRecords(html, query, location string) []domain.RawJobRecord {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		logger.Debug("Markup parse failed", zap.Error(err))
		return nil
	}

	var cards *goquery.Selection
	for _, selector := range cardSelectors {
		cards = doc.Find(selector)
		if cards.Length() > 0 {
			break
		}
	}

	if cards == nil || cards.Length() == 0 {
		if records := structuredDataRecords(doc, query, location); len(records) > 0 {
			return records
		}
		logger.Debug("No job cards found",
			zap.String("query", query),
			zap.String("location", location),
		)
		return nil
	}

	var records []domain.RawJobRecord
	cards.Each(func(_ int, card *goquery.Selection) {
		if rec, ok := parseCard(card, query, location); ok {
			records = append(records, rec)
		}
	})
	return records
}

func parseCard(card *goquery.Selection, query, location string) (domain.RawJobRecord, bool) {
	title := firstText(card, titleSelectors)
	if title == "" {
		// Title is mandatory; a card without one is dropped entirely.
		return domain.RawJobRecord{}, false
	}

	company := firstText(card, companySelectors)
	if company == "" {
		company = "Unknown Company"
	}

	locationRaw := firstText(card, locationSelectors)
	if locationRaw == "" {
		locationRaw = location
	}

	var dateRaw string
	for _, selector := range dateSelectors {
		el := card.Find(selector).First()
		if el.Length() == 0 {
			continue
		}
		if dt, ok := el.Attr("datetime"); ok && dt != "" {
			dateRaw = dt
		} else {
			dateRaw = cleanSpace(el.Text())
		}
		break
	}

	return domain.RawJobRecord{
		ProviderID:     cardJobID(card),
		Title:          title,
		Company:        company,
		LocationRaw:    locationRaw,
		DateRaw:        dateRaw,
		SourceURL:      cardLink(card),
		SearchQuery:    query,
		SearchLocation: location,
	}, true
}

// cardJobID resolves the provider identifier: explicit job-id attribute,
// then occludable-id, then the trailing segment of an entity URN.
func cardJobID(card *goquery.Selection) string {
	if id, ok := card.Attr("data-job-id"); ok && id != "" {
		return id
	}
	if id, ok := card.Attr("data-occludable-job-id"); ok && id != "" {
		return id
	}
	if urn, ok := card.Attr("data-entity-urn"); ok && urn != "" {
		parts := strings.Split(urn, ":")
		return parts[len(parts)-1]
	}
	return ""
}

// cardLink picks the first anchor pointing at a listing detail page and
// qualifies relative links against the site origin.
func cardLink(card *goquery.Selection) string {
	link := card.Find("a[href*='/jobs/view/']").First()
	if link.Length() == 0 {
		link = card.Find("a[href]").First()
	}
	href, ok := link.Attr("href")
	if !ok || href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http") {
		return href
	}
	return listingBaseURL + href
}

func firstText(card *goquery.Selection, selectors []string) string {
	for _, selector := range selectors {
		if text := cleanSpace(card.Find(selector).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

func cleanSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
