package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobpulse/backend/internal/domain"
)

func job(id, title, company string) domain.JobPosting {
	return domain.JobPosting{JobID: id, Title: title, CompanyName: company}
}

func TestUniqueByProviderID(t *testing.T) {
	jobs := []domain.JobPosting{
		job("1", "Backend Engineer", "Acme"),
		job("1", "Backend Engineer (Reposted)", "Acme Corp"),
		job("2", "Backend Engineer", "Initech"),
	}

	unique, dups := Unique(jobs)

	require.Len(t, unique, 2)
	assert.Equal(t, 1, dups)
	// First-seen record wins regardless of later variants.
	assert.Equal(t, "Backend Engineer", unique[0].Title)
	assert.Equal(t, "Acme", unique[0].CompanyName)
}

func TestUniqueByCompositeKey(t *testing.T) {
	jobs := []domain.JobPosting{
		job("", "Data Engineer", "Acme"),
		job("", "data engineer", "ACME"),
		job("", " Data Engineer ", "acme"),
		job("", "Data Engineer", "Initech"),
	}

	unique, dups := Unique(jobs)

	require.Len(t, unique, 2)
	assert.Equal(t, 2, dups)
	assert.Equal(t, "Acme", unique[0].CompanyName)
	assert.Equal(t, "Initech", unique[1].CompanyName)
}

func TestUniqueCompositeCollapsesDistinctProviderIDs(t *testing.T) {
	// A reposted listing gets a fresh provider id; the composite key still
	// collapses it onto the first sighting.
	jobs := []domain.JobPosting{
		job("in-1", "Backend Engineer", "Acme"),
		job("in-2", "Backend Engineer", "Acme"),
		job("us-1", "Platform Engineer", "Initech"),
	}

	unique, dups := Unique(jobs)

	require.Len(t, unique, 2)
	assert.Equal(t, 1, dups)
	assert.Equal(t, "in-1", unique[0].JobID)
	assert.Equal(t, "us-1", unique[1].JobID)
}

func TestUniquePreservesInputOrder(t *testing.T) {
	jobs := []domain.JobPosting{
		job("c", "Role C", "Gamma"),
		job("a", "Role A", "Alpha"),
		job("b", "Role B", "Beta"),
	}

	unique, dups := Unique(jobs)

	assert.Zero(t, dups)
	require.Len(t, unique, 3)
	assert.Equal(t, "c", unique[0].JobID)
	assert.Equal(t, "a", unique[1].JobID)
	assert.Equal(t, "b", unique[2].JobID)
}

func TestUniqueIdempotent(t *testing.T) {
	jobs := []domain.JobPosting{
		job("1", "SWE", "Acme"),
		job("1", "SWE", "Acme"),
		job("", "SRE", "Acme"),
	}

	once, dups := Unique(jobs)
	assert.Equal(t, 1, dups)

	twice, dups := Unique(once)
	assert.Zero(t, dups)
	assert.Equal(t, once, twice)
}

func TestUniqueEmpty(t *testing.T) {
	unique, dups := Unique(nil)
	assert.Empty(t, unique)
	assert.Zero(t, dups)
}

func TestCompositeKeyCaseInsensitive(t *testing.T) {
	assert.Equal(t, CompositeKey("Backend Engineer", "Acme"), CompositeKey("  backend engineer", "ACME  "))
	assert.NotEqual(t, CompositeKey("Backend Engineer", "Acme"), CompositeKey("Backend Engineer", "Initech"))
}
