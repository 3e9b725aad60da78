// Package pipeline implements the filter/rank/aggregate core of the
// dashboard. Every function is a pure derivation over a loaded table:
// nothing here mutates the table, holds state, or knows why it was
// invoked (timer tick, filter change, upload).
package pipeline

import (
	"math"
	"sort"

	"github.com/communitypulse/pulse-dashboard/internal/dataset"
)

// DefaultTopN is the fixed size of the ranked view.
const DefaultTopN = 20

// Config is the immutable filter state for one run. An empty
// Communities list means no community restriction.
type Config struct {
	MinScore    float64
	Communities []string
	TopN        int
}

// ProjectedRow is one ranked table row: the required columns with the
// comment column renamed for display.
type ProjectedRow struct {
	Title         string  `json:"title"`
	Community     string  `json:"community"`
	TrendingScore float64 `json:"trending_score"`
	Upvotes       int64   `json:"upvotes"`
	Comments      int64   `json:"comments"`
}

// CommunityCount is one slice of the community distribution.
type CommunityCount struct {
	Community string `json:"community"`
	Count     int    `json:"count"`
}

// Summary holds the three headline metrics for the current filters.
type Summary struct {
	FilteredPosts       int     `json:"filtered_posts"`
	MeanTrendingScore   float64 `json:"mean_trending_score"`
	SelectedCommunities int     `json:"selected_communities"`
}

// Result is the full output of one pipeline run.
type Result struct {
	Top     []ProjectedRow
	Counts  []CommunityCount
	Summary Summary
}

// Run executes filter, ranking, and aggregation over table with the
// given config. Empty outputs are valid results, never errors.
func Run(table *dataset.Table, cfg Config) Result {
	topN := cfg.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}

	filtered := Filter(table.Posts, cfg.MinScore, cfg.Communities)

	selected := len(cfg.Communities)
	if selected == 0 {
		selected = len(table.Communities())
	}

	return Result{
		Top:    TopN(filtered, topN),
		Counts: CommunityCounts(filtered),
		Summary: Summary{
			FilteredPosts:       len(filtered),
			MeanTrendingScore:   MeanTrendingScore(filtered),
			SelectedCommunities: selected,
		},
	}
}

// Filter retains posts with TrendingScore >= minScore. A non-empty
// allow-list further restricts to its communities; empty means no
// restriction. The input slice is never modified.
func Filter(posts []dataset.Post, minScore float64, allowed []string) []dataset.Post {
	allowSet := make(map[string]struct{}, len(allowed))
	for _, name := range allowed {
		allowSet[name] = struct{}{}
	}

	out := make([]dataset.Post, 0, len(posts))

	for _, p := range posts {
		if p.TrendingScore < minScore {
			continue
		}

		if len(allowSet) > 0 {
			if _, ok := allowSet[p.Community]; !ok {
				continue
			}
		}

		out = append(out, p)
	}

	return out
}

// TopN sorts posts by trending score descending and projects the first
// n. The sort is stable: posts with equal scores keep their original
// relative order, so ranking is deterministic for a given table and
// filter state.
func TopN(posts []dataset.Post, n int) []ProjectedRow {
	ranked := make([]dataset.Post, len(posts))
	copy(ranked, posts)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TrendingScore > ranked[j].TrendingScore
	})

	if n > len(ranked) {
		n = len(ranked)
	}

	rows := make([]ProjectedRow, n)
	for i, p := range ranked[:n] {
		rows[i] = ProjectedRow{
			Title:         p.Title,
			Community:     p.Community,
			TrendingScore: p.TrendingScore,
			Upvotes:       p.Upvotes,
			Comments:      p.Comments,
		}
	}

	return rows
}

// CommunityCounts groups posts by community and counts members. Posts
// with an empty community are excluded. Order is descending by count,
// ties broken by community name ascending, so output is deterministic.
func CommunityCounts(posts []dataset.Post) []CommunityCount {
	byName := make(map[string]int)

	for _, p := range posts {
		if p.Community == "" {
			continue
		}

		byName[p.Community]++
	}

	counts := make([]CommunityCount, 0, len(byName))
	for name, count := range byName {
		counts = append(counts, CommunityCount{Community: name, Count: count})
	}

	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}

		return counts[i].Community < counts[j].Community
	})

	return counts
}

// MeanTrendingScore returns the mean trending score rounded to two
// decimals, or 0 for an empty slice.
func MeanTrendingScore(posts []dataset.Post) float64 {
	if len(posts) == 0 {
		return 0
	}

	var sum float64
	for _, p := range posts {
		sum += p.TrendingScore
	}

	return math.Round(sum/float64(len(posts))*100) / 100
}
