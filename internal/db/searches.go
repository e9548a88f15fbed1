package db

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// SearchHistory records destination queries that resolved successfully.
type SearchHistory struct {
	db *sql.DB
}

// NewSearchHistory returns a SearchHistory backed by database.
func NewSearchHistory(database *sql.DB) *SearchHistory {
	return &SearchHistory{db: database}
}

// Record stores query, moving it to the front if it was searched before.
func (h *SearchHistory) Record(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	stmt := `
		INSERT INTO searches (query, searched_at)
		VALUES (?, ?)
		ON CONFLICT(query) DO UPDATE SET searched_at = excluded.searched_at
	`
	if _, err := h.db.ExecContext(ctx, stmt, query, time.Now().UTC().Format(timestampLayout)); err != nil {
		return fmt.Errorf("failed to record search: %w", err)
	}
	return nil
}

// Recent returns up to limit queries, newest first.
func (h *SearchHistory) Recent(ctx context.Context, limit int) ([]string, error) {
	rows, err := h.db.QueryContext(ctx, `SELECT query FROM searches ORDER BY searched_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list searches: %w", err)
	}
	defer rows.Close()

	var results []string
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, fmt.Errorf("failed to scan search row: %w", err)
		}
		results = append(results, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating search rows: %w", err)
	}
	return results, nil
}

// Suggest ranks the stored queries against text. Prefix matches come first,
// then the rest by edit distance; queries too far from text are dropped.
func (h *SearchHistory) Suggest(ctx context.Context, text string, limit int) ([]string, error) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return h.Recent(ctx, limit)
	}

	all, err := h.Recent(ctx, -1)
	if err != nil {
		return nil, err
	}

	type scored struct {
		query  string
		prefix bool
		dist   int
	}
	var candidates []scored
	for _, q := range all {
		lower := strings.ToLower(q)
		c := scored{query: q, prefix: strings.HasPrefix(lower, text)}
		// Compare against the same-length head so long names are not penalised.
		head := []rune(lower)
		if n := utf8.RuneCountInString(text); len(head) > n {
			head = head[:n]
		}
		c.dist = levenshtein.ComputeDistance(text, string(head))
		if !c.prefix && c.dist > maxSuggestDistance(text) {
			continue
		}
		candidates = append(candidates, c)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].prefix != candidates[j].prefix {
			return candidates[i].prefix
		}
		return candidates[i].dist < candidates[j].dist
	})

	if limit >= 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.query
	}
	return out, nil
}

// maxSuggestDistance allows one edit per three characters typed.
func maxSuggestDistance(text string) int {
	if n := utf8.RuneCountInString(text) / 3; n > 1 {
		return n
	}
	return 1
}
