package dataset

import (
	"fmt"
	"strings"
)

// MissingColumnsError reports required columns absent from the CSV
// header. Columns is sorted and uses canonical names.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("csv missing required columns: %s", strings.Join(e.Columns, ", "))
}

// ParseError reports structurally unreadable input. Cell-level parse
// failures never produce a ParseError; they coerce to zero instead.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("read csv %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
