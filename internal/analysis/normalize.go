package analysis

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/bigtable-cli/internal/table"
)

// Derived numeric columns written by Normalize.
const (
	TimeColumn      = "time_n"
	RevenueColumn   = "rev_n"
	HeadcountColumn = "hdcnt_n"
)

// ErrUnmappedLabel is returned in strict mode when a cell holds a label
// outside its closed lookup table.
var ErrUnmappedLabel = errors.New("unmapped label")

// UnmappedLabelError reports the first unexpected label found in strict mode.
type UnmappedLabelError struct {
	Column string
	Label  string
	Row    int
}

func (e *UnmappedLabelError) Error() string {
	return fmt.Sprintf("%s: column %q row %d: %q", ErrUnmappedLabel.Error(), e.Column, e.Row, e.Label)
}

func (e *UnmappedLabelError) Unwrap() error { return ErrUnmappedLabel }

// Attribute is one ordinal text column and its closed label lookup.
type Attribute struct {
	Source string
	Target string
	Labels map[string]float64
}

var tenureLabels = map[string]float64{
	"10+ years":        10,
	"6-10 years":       7,
	"3-5 years":        5,
	"1-2 years":        2,
	"Less than a year": table.Sentinel,
	table.SentinelText: table.Sentinel,
}

var revenueLabels = map[string]float64{
	"Less Than $500,000":     0.5,
	"$500,000 to $1 Million": 1,
	"$1 to 2.5 Million":      2.5,
	"$2.5 to 5 Million":      5,
	"$5 to 10 Million":       10,
	"$10 to 20 Million":      20,
	"$20 to 50 Million":      50,
	"$50 to 100 Million":     100,
	"$100 to 500 Million":    500,
	"Over $500 Million":      750,
	"Over $1 Billion":        1000,
	table.SentinelText:       table.Sentinel,
}

var headcountLabels = map[string]float64{
	"1 to 4":           4,
	"5 to 9":           9,
	"10 to 19":         19,
	"20 to 49":         49,
	"50 to 99":         99,
	"100 to 249":       249,
	"250 to 499":       499,
	"500 to 999":       999,
	"Over 1,000":       1999,
	table.SentinelText: table.Sentinel,
}

// Attributes returns the three normalized attributes: business tenure,
// revenue bracket (millions) and headcount bracket (upper bound).
func Attributes() []Attribute {
	return []Attribute{
		{Source: "time_in_business", Target: TimeColumn, Labels: tenureLabels},
		{Source: "revenue", Target: RevenueColumn, Labels: revenueLabels},
		{Source: "headcount", Target: HeadcountColumn, Labels: headcountLabels},
	}
}

// Lookup maps a label through an attribute's table. Surrounding spaces are
// ignored and any numeric spelling of -1 maps to the sentinel.
func (a Attribute) Lookup(label string) (float64, bool) {
	l := strings.TrimSpace(label)
	if v, ok := a.Labels[l]; ok {
		return v, true
	}
	if f, err := strconv.ParseFloat(l, 64); err == nil && f == table.Sentinel {
		return table.Sentinel, true
	}
	return 0, false
}

// NormalizeOptions controls Normalize.
type NormalizeOptions struct {
	// Strict fails on the first label outside a lookup table instead of
	// writing the sentinel for it.
	Strict bool
}

// ColumnNormalization summarizes one derived column.
type ColumnNormalization struct {
	Source         string   `json:"source"`
	Target         string   `json:"target"`
	Mapped         int      `json:"mapped"`
	Sentinel       int      `json:"sentinel"`
	Unmapped       int      `json:"unmapped"`
	UnmappedLabels []string `json:"unmapped_labels,omitempty"`
}

// NormalizeResult is returned by Normalize.
type NormalizeResult struct {
	Columns []ColumnNormalization `json:"columns"`
}

// Normalize maps the tenure, revenue and headcount label columns of tbl to
// numbers, writing time_n, rev_n and hdcnt_n in place. Absent cells become
// the sentinel. Labels outside the lookup tables become the sentinel and are
// counted, unless opt.Strict is set, in which case nothing is written and an
// *UnmappedLabelError is returned.
func Normalize(tbl *table.Table, opt NormalizeOptions) (*NormalizeResult, error) {
	attrs := Attributes()
	derived := make([][]float64, len(attrs))
	res := &NormalizeResult{}
	for ai, a := range attrs {
		vals, missing, err := tbl.Texts(a.Source)
		if err != nil {
			return nil, fmt.Errorf("normalize: %w", err)
		}
		out := make([]float64, len(vals))
		col := ColumnNormalization{Source: a.Source, Target: a.Target}
		unknown := map[string]struct{}{}
		for i, v := range vals {
			if missing[i] {
				out[i] = table.Sentinel
				col.Sentinel++
				continue
			}
			x, ok := a.Lookup(v)
			if !ok {
				if opt.Strict {
					return nil, &UnmappedLabelError{Column: a.Source, Label: v, Row: i}
				}
				out[i] = table.Sentinel
				col.Unmapped++
				unknown[v] = struct{}{}
				continue
			}
			out[i] = x
			if x == table.Sentinel {
				col.Sentinel++
			} else {
				col.Mapped++
			}
		}
		for l := range unknown {
			col.UnmappedLabels = append(col.UnmappedLabels, l)
		}
		sort.Strings(col.UnmappedLabels)
		if col.Unmapped > 0 {
			slog.Warn("unmapped labels written as sentinel",
				slog.String("column", a.Source),
				slog.Int("rows", col.Unmapped),
				slog.Any("labels", col.UnmappedLabels))
		}
		derived[ai] = out
		res.Columns = append(res.Columns, col)
	}
	for ai, a := range attrs {
		if err := tbl.SetFloats(a.Target, derived[ai]); err != nil {
			return nil, fmt.Errorf("normalize: %w", err)
		}
	}
	return res, nil
}

// product multiplies two derived cells; the result is the sentinel if either
// operand is absent or the sentinel.
func product(a, b float64) float64 {
	if table.IsMissing(a) || table.IsMissing(b) {
		return table.Sentinel
	}
	return a * b
}

// finite reports whether v is usable as a correlation input.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
