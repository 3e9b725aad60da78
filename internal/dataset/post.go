// Package dataset loads the trending-posts CSV into an in-memory table.
//
// A load either fails structurally (unreadable CSV, missing required
// columns) or succeeds completely: individual cell values never fail a
// load, numeric cells that do not parse are coerced to zero. Loads of
// identical bytes are idempotent and can be served from a
// fingerprint-keyed cache.
package dataset

import (
	"sort"
	"time"
)

// Required column names. The community column accepts either
// "subreddit" (the canonical export header) or "community".
const (
	ColTitle         = "title"
	ColCommunity     = "subreddit"
	ColCommunityAlt  = "community"
	ColTrendingScore = "trending_score"
	ColUpvotes       = "score"
	ColComments      = "num_comments"
)

// Post is a single row of the dataset after normalization.
type Post struct {
	Title         string
	Community     string
	TrendingScore float64
	Upvotes       int64
	Comments      int64

	// PostedAt is parsed best-effort from a created_utc/created_at/
	// posted_at column when one is present. Zero when absent or
	// unparseable.
	PostedAt time.Time

	// Extra holds columns outside the required set, keyed by header
	// name. Preserved but unused by the pipeline.
	Extra map[string]string
}

// Table is an immutable loaded dataset. The pipeline only ever derives
// views from it; nothing mutates Posts after the load returns.
type Table struct {
	Posts       []Post
	Columns     []string
	SourceLabel string
	Fingerprint uint64
	LoadedAt    time.Time
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Posts)
}

// Communities returns the distinct non-empty community names present
// in the table, sorted ascending.
func (t *Table) Communities() []string {
	seen := make(map[string]struct{}, len(t.Posts))

	for _, p := range t.Posts {
		if p.Community == "" {
			continue
		}

		seen[p.Community] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
