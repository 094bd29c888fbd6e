package pipeline

import "github.com/jobpulse/backend/internal/domain"

// BuildQueries expands the configured role and location lists into the full
// cross product of search queries, preserving configuration order.
func BuildQueries(roles, locations []string) []domain.Query {
	queries := make([]domain.Query, 0, len(roles)*len(locations))
	for _, role := range roles {
		for _, location := range locations {
			queries = append(queries, domain.Query{Keywords: role, Location: location})
		}
	}
	return queries
}
