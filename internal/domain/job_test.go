package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeSkills(t *testing.T) {
	skills := []string{" Python ", "python", "Go", "GO", "", "  ", "PostgreSQL"}

	got := DedupeSkills(skills)

	// First-seen spelling wins; blanks are dropped.
	assert.Equal(t, []string{"Python", "Go", "PostgreSQL"}, got)
}

func TestQueryKey(t *testing.T) {
	q := Query{Keywords: "Backend Engineer", Location: "India"}
	assert.Equal(t, "Backend Engineer|India", q.Key())
}
