package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/cespare/xxhash/v2"
)

// Candidate headers for the optional post timestamp.
var postedAtColumns = []string{"created_utc", "created_at", "posted_at"}

// Load reads a CSV file from disk and returns the normalized table.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}

	return LoadBytes(data, path)
}

// LoadBytes parses CSV bytes into a normalized table. label identifies
// the source in errors and in the table itself (a path, or something
// like "upload").
//
// Fails with *ParseError when the input is not readable CSV and with
// *MissingColumnsError when required columns are absent from the
// header. Cell-level numeric failures coerce to zero and never fail
// the load.
func LoadBytes(data []byte, label string) (*Table, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, &ParseError{Source: label, Err: err}
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, &ParseError{Source: label, Err: err}
	}

	cols := newColumnIndex(header)
	if missing := cols.missingRequired(); len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	posts := make([]Post, 0, len(records))
	for _, record := range records {
		posts = append(posts, cols.row(record))
	}

	return &Table{
		Posts:       posts,
		Columns:     append([]string(nil), header...),
		SourceLabel: label,
		Fingerprint: xxhash.Sum64(data),
		LoadedAt:    time.Now(),
	}, nil
}

// columnIndex resolves header names to record positions.
type columnIndex struct {
	header    []string
	byName    map[string]int
	title     int
	community int
	trending  int
	upvotes   int
	comments  int
	postedAt  int
}

func newColumnIndex(header []string) *columnIndex {
	byName := make(map[string]int, len(header))

	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, dup := byName[key]; !dup {
			byName[key] = i
		}
	}

	idx := &columnIndex{
		header:    header,
		byName:    byName,
		title:     lookup(byName, ColTitle),
		community: lookup(byName, ColCommunity),
		trending:  lookup(byName, ColTrendingScore),
		upvotes:   lookup(byName, ColUpvotes),
		comments:  lookup(byName, ColComments),
		postedAt:  -1,
	}

	if idx.community < 0 {
		idx.community = lookup(byName, ColCommunityAlt)
	}

	for _, name := range postedAtColumns {
		if i := lookup(byName, name); i >= 0 {
			idx.postedAt = i
			break
		}
	}

	return idx
}

func lookup(byName map[string]int, name string) int {
	if i, ok := byName[name]; ok {
		return i
	}

	return -1
}

// missingRequired returns canonical names of absent required columns,
// sorted for deterministic error messages.
func (c *columnIndex) missingRequired() []string {
	var missing []string

	if c.title < 0 {
		missing = append(missing, ColTitle)
	}

	if c.community < 0 {
		missing = append(missing, ColCommunity)
	}

	if c.trending < 0 {
		missing = append(missing, ColTrendingScore)
	}

	if c.upvotes < 0 {
		missing = append(missing, ColUpvotes)
	}

	if c.comments < 0 {
		missing = append(missing, ColComments)
	}

	sort.Strings(missing)

	return missing
}

func (c *columnIndex) row(record []string) Post {
	post := Post{
		Title:         field(record, c.title),
		Community:     strings.TrimSpace(field(record, c.community)),
		TrendingScore: coerceFloat(field(record, c.trending)),
		Upvotes:       coerceInt(field(record, c.upvotes)),
		Comments:      coerceInt(field(record, c.comments)),
	}

	if c.postedAt >= 0 {
		post.PostedAt = coerceTime(field(record, c.postedAt))
	}

	post.Extra = c.extras(record)

	return post
}

// extras collects columns outside the required set.
func (c *columnIndex) extras(record []string) map[string]string {
	known := map[int]struct{}{
		c.title: {}, c.community: {}, c.trending: {}, c.upvotes: {}, c.comments: {},
	}

	var extra map[string]string

	for i, name := range c.header {
		if _, ok := known[i]; ok || i >= len(record) {
			continue
		}

		if extra == nil {
			extra = make(map[string]string)
		}

		extra[strings.TrimSpace(name)] = record[i]
	}

	return extra
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}

	return record[i]
}

// coerceFloat converts a cell to float64, substituting 0 for anything
// unparseable. Mirrors to_numeric-with-fill semantics: loads never
// fail on bad cells.
func coerceFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}

	return v
}

func coerceInt(s string) int64 {
	trimmed := strings.TrimSpace(s)

	if v, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return v
	}

	// Exports sometimes write integer columns as floats ("42.0").
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return int64(f)
	}

	return 0
}

// coerceTime parses a timestamp cell best-effort. Accepts anything
// dateparse recognizes plus bare epoch seconds; returns the zero time
// on failure.
func coerceTime(s string) time.Time {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return time.Time{}
	}

	if t, err := dateparse.ParseAny(trimmed); err == nil {
		return t
	}

	if epoch, err := strconv.ParseFloat(trimmed, 64); err == nil && epoch > 0 {
		return time.Unix(int64(epoch), 0).UTC()
	}

	return time.Time{}
}
