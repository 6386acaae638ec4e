package catalog

import (
	"fmt"
	"strings"
)

// buildFilter assembles the shared predicate over entries: category match,
// one membership subquery per selected genre (an entry must carry every
// selected genre), and an optional viewed-marks restriction.
func buildFilter(columns string, category Category, genres []string, viewedOnly bool, userID int64) (string, []any) {
	var q strings.Builder
	args := make([]any, 0, len(genres)+2)

	fmt.Fprintf(&q, "SELECT %s FROM entries WHERE type = $1", columns)
	args = append(args, string(category))

	for _, genre := range genres {
		args = append(args, genre)
		fmt.Fprintf(&q,
			" AND id IN (SELECT eg.entry_id FROM entry_genres eg JOIN genres g ON g.id = eg.genre_id WHERE g.name = $%d)",
			len(args),
		)
	}

	if viewedOnly {
		args = append(args, userID)
		fmt.Fprintf(&q, " AND id IN (SELECT entry_id FROM viewed WHERE user_id = $%d)", len(args))
	}

	return q.String(), args
}

// buildAvailableGenres wraps the filter predicate to produce the distinct,
// sorted genre names still attached to at least one matching entry.
func buildAvailableGenres(category Category, genres []string, viewedOnly bool, userID int64) (string, []any) {
	inner, args := buildFilter("id", category, genres, viewedOnly, userID)
	query := "SELECT DISTINCT g.name FROM genres g" +
		" JOIN entry_genres eg ON g.id = eg.genre_id" +
		" WHERE eg.entry_id IN (" + inner + ") ORDER BY g.name"
	return query, args
}
