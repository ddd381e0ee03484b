// Package naics attaches NAICS-style hierarchical industry descriptions to a
// table. Codes are digit strings whose leading 2..6 characters name
// successively finer categories; the classification index maps each code to
// a title and may list a sector as an inclusive range such as "31-33".
package naics

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/bigtable-cli/internal/parser"
	"github.com/KaramelBytes/bigtable-cli/internal/table"
)

// ErrMalformedRange is returned when a range code cannot be expanded.
var ErrMalformedRange = errors.New("malformed range code")

// RangeError describes a range code that failed to expand.
type RangeError struct {
	Code   string
	Reason string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s %q: %s", ErrMalformedRange.Error(), e.Code, e.Reason)
}

func (e *RangeError) Unwrap() error { return ErrMalformedRange }

// Index maps classification codes to their descriptions.
type Index struct {
	entries map[string]string
}

// NewIndex builds an index from a classification table, keyed by
// codeColumn and valued by titleColumn. Rows with an absent code are skipped.
func NewIndex(tbl *table.Table, codeColumn, titleColumn string) (*Index, error) {
	codes, missing, err := tbl.Texts(codeColumn)
	if err != nil {
		return nil, fmt.Errorf("naics index: %w", err)
	}
	titles, titleMissing, err := tbl.Texts(titleColumn)
	if err != nil {
		return nil, fmt.Errorf("naics index: %w", err)
	}
	idx := &Index{entries: make(map[string]string, len(codes))}
	for i, c := range codes {
		code := strings.TrimSpace(c)
		if missing[i] || code == "" {
			continue
		}
		title := strings.TrimSpace(titles[i])
		if titleMissing[i] {
			title = ""
		}
		idx.entries[code] = title
	}
	return idx, nil
}

// FromMap builds an index from code/description pairs.
func FromMap(m map[string]string) *Index {
	idx := &Index{entries: make(map[string]string, len(m))}
	for k, v := range m {
		idx.entries[strings.TrimSpace(k)] = v
	}
	return idx
}

// LoadIndex reads a classification file (CSV/TSV/XLSX), builds the index
// and expands its range codes.
func LoadIndex(path string, opt parser.Options, codeColumn, titleColumn string) (*Index, error) {
	tbl, err := parser.ParseFile(path, opt)
	if err != nil {
		return nil, err
	}
	idx, err := NewIndex(tbl, codeColumn, titleColumn)
	if err != nil {
		return nil, err
	}
	if err := idx.Expand(); err != nil {
		return nil, err
	}
	return idx, nil
}

// Expand replaces every range code "lo-hi" with one entry per integer in
// [lo, hi], each carrying the range's description. Codes already present
// keep their own description. Ranges are validated before any entry changes.
func (x *Index) Expand() error {
	type span struct {
		code   string
		lo, hi int
	}
	var spans []span
	for code := range x.entries {
		if strings.Index(code, "-") <= 0 {
			continue
		}
		lo, hi, err := parseRange(code)
		if err != nil {
			return err
		}
		spans = append(spans, span{code: code, lo: lo, hi: hi})
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].code < spans[j].code })
	for _, s := range spans {
		desc := x.entries[s.code]
		delete(x.entries, s.code)
		for i := s.lo; i <= s.hi; i++ {
			k := strconv.Itoa(i)
			if _, ok := x.entries[k]; ok {
				continue
			}
			x.entries[k] = desc
		}
	}
	return nil
}

func parseRange(code string) (int, int, error) {
	parts := strings.Split(code, "-")
	if len(parts) != 2 {
		return 0, 0, &RangeError{Code: code, Reason: "expected exactly two bounds"}
	}
	lo, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, &RangeError{Code: code, Reason: "lower bound is not an integer"}
	}
	hi, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, &RangeError{Code: code, Reason: "upper bound is not an integer"}
	}
	if lo > hi {
		return 0, 0, &RangeError{Code: code, Reason: "lower bound exceeds upper bound"}
	}
	return lo, hi, nil
}

// Lookup returns the description for code.
func (x *Index) Lookup(code string) (string, bool) {
	d, ok := x.entries[code]
	return d, ok
}

// Len returns the number of codes in the index.
func (x *Index) Len() int { return len(x.entries) }

// Codes returns the indexed codes in sorted order.
func (x *Index) Codes() []string {
	out := make([]string, 0, len(x.entries))
	for k := range x.entries {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
