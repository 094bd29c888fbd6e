// Package dedup collapses a posting stream into a unique set using a
// two-stage identity: the provider job id when present, then a lowercased
// (title, company) composite key. First-seen records win.
package dedup

import (
	"strings"

	"github.com/jobpulse/backend/internal/domain"
)

// Unique returns the postings that survive deduplication, in input order,
// plus the number of duplicates removed. A record whose provider id was
// already seen is dropped even when its title/company differ; records
// without a provider id collapse on the composite key alone.
func Unique(jobs []domain.JobPosting) ([]domain.JobPosting, int) {
	seenIDs := make(map[string]struct{})
	seenComposite := make(map[string]struct{})
	unique := make([]domain.JobPosting, 0, len(jobs))
	duplicates := 0

	for _, job := range jobs {
		if job.JobID != "" {
			if _, ok := seenIDs[job.JobID]; ok {
				duplicates++
				continue
			}
		}

		key := CompositeKey(job.Title, job.CompanyName)
		if _, ok := seenComposite[key]; ok {
			duplicates++
			continue
		}

		if job.JobID != "" {
			seenIDs[job.JobID] = struct{}{}
		}
		seenComposite[key] = struct{}{}
		unique = append(unique, job)
	}

	return unique, duplicates
}

// CompositeKey builds the fallback identity from title and company.
func CompositeKey(title, company string) string {
	return strings.ToLower(strings.TrimSpace(title)) + "\x00" + strings.ToLower(strings.TrimSpace(company))
}
