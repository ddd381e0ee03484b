package table

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Sentinel marks a derived cell as missing, invalid, or below threshold.
// It is kept distinct from a NaN absence so reports can count it.
const Sentinel = -1

// SentinelText is the textual form of Sentinel stored in string columns.
const SentinelText = "-1"

// DefaultMissing lists the raw tokens loaders treat as absent cells.
var DefaultMissing = []string{"", "NA", "NaN", "None", "null", "<nil>"}

var (
	// ErrUnknownColumn is returned when a column name is not present in the table.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrLengthMismatch is returned when a column or mask does not cover every row.
	ErrLengthMismatch = errors.New("length does not match table rows")
)

// Table is a mutable handle over a gota DataFrame. Operations that add
// columns replace the wrapped frame in place, so every holder of the
// handle sees the new columns.
type Table struct {
	df dataframe.DataFrame
}

// ValueCount is the frequency of one distinct value of a column.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// New wraps an existing DataFrame.
func New(df dataframe.DataFrame) (*Table, error) {
	if df.Err != nil {
		return nil, fmt.Errorf("dataframe: %w", df.Err)
	}
	return &Table{df: df}, nil
}

// FromRecords builds a Table from a header row followed by data rows.
// Every column is stored as text; tokens in DefaultMissing become absent cells.
func FromRecords(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, errors.New("records: missing header row")
	}
	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(DefaultMissing),
	)
	return New(df)
}

// Frame returns the wrapped DataFrame.
func (t *Table) Frame() dataframe.DataFrame { return t.df }

// Nrow returns the number of rows.
func (t *Table) Nrow() int { return t.df.Nrow() }

// Names returns the column names in order.
func (t *Table) Names() []string { return t.df.Names() }

// Has reports whether the table has a column with the given name.
func (t *Table) Has(name string) bool {
	for _, n := range t.df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Column returns the named series.
func (t *Table) Column(name string) (series.Series, error) {
	if !t.Has(name) {
		return series.Series{}, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	s := t.df.Col(name)
	if s.Err != nil {
		return series.Series{}, fmt.Errorf("column %q: %w", name, s.Err)
	}
	return s, nil
}

// Texts returns the cells of a column as strings together with a parallel
// slice marking absent cells. Absent cells hold "".
func (t *Table) Texts(name string) ([]string, []bool, error) {
	s, err := t.Column(name)
	if err != nil {
		return nil, nil, err
	}
	vals := s.Records()
	missing := s.IsNaN()
	for i := range vals {
		if missing[i] {
			vals[i] = ""
		}
	}
	return vals, missing, nil
}

// Floats returns a column parsed as numbers. Absent or unparsable cells are NaN.
func (t *Table) Floats(name string) ([]float64, error) {
	s, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	out := s.Float()
	missing := s.IsNaN()
	for i := range out {
		if missing[i] {
			out[i] = math.NaN()
		}
	}
	return out, nil
}

// SetTexts writes (or replaces) a text column. Cells flagged in missing are stored as absent;
// missing may be nil.
func (t *Table) SetTexts(name string, vals []string, missing []bool) error {
	if len(vals) != t.Nrow() {
		return fmt.Errorf("set %q: %w (%d != %d)", name, ErrLengthMismatch, len(vals), t.Nrow())
	}
	cells := make([]string, len(vals))
	for i, v := range vals {
		if missing != nil && missing[i] {
			cells[i] = "NaN"
			continue
		}
		cells[i] = v
	}
	return t.mutate(series.New(cells, series.String, name))
}

// SetFloats writes (or replaces) a numeric column. NaN values are stored as absent.
func (t *Table) SetFloats(name string, vals []float64) error {
	if len(vals) != t.Nrow() {
		return fmt.Errorf("set %q: %w (%d != %d)", name, ErrLengthMismatch, len(vals), t.Nrow())
	}
	cells := make([]string, len(vals))
	for i, v := range vals {
		if math.IsNaN(v) {
			cells[i] = "NaN"
			continue
		}
		cells[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return t.mutate(series.New(cells, series.Float, name))
}

func (t *Table) mutate(s series.Series) error {
	if s.Err != nil {
		return fmt.Errorf("series %q: %w", s.Name, s.Err)
	}
	df := t.df.Mutate(s)
	if df.Err != nil {
		return fmt.Errorf("mutate %q: %w", s.Name, df.Err)
	}
	t.df = df
	return nil
}

// Equal returns the row mask column == value. Absent cells never match.
func (t *Table) Equal(name, value string) ([]bool, error) {
	vals, missing, err := t.Texts(name)
	if err != nil {
		return nil, err
	}
	mask := make([]bool, len(vals))
	for i, v := range vals {
		mask[i] = !missing[i] && v == value
	}
	return mask, nil
}

// Subset returns a new Table holding the rows where mask is true.
func (t *Table) Subset(mask []bool) (*Table, error) {
	if len(mask) != t.Nrow() {
		return nil, fmt.Errorf("subset: %w (%d != %d)", ErrLengthMismatch, len(mask), t.Nrow())
	}
	sub := t.df.Subset(mask)
	if sub.Err != nil {
		return nil, fmt.Errorf("subset: %w", sub.Err)
	}
	return &Table{df: sub}, nil
}

// ValueCounts counts the distinct non-absent values of a column, most frequent first.
func (t *Table) ValueCounts(name string) ([]ValueCount, error) {
	vals, missing, err := t.Texts(name)
	if err != nil {
		return nil, err
	}
	return CountValues(vals, missing), nil
}

// CountValues tallies vals, skipping cells flagged in missing (which may be nil).
func CountValues(vals []string, missing []bool) []ValueCount {
	counts := map[string]int{}
	for i, v := range vals {
		if missing != nil && missing[i] {
			continue
		}
		counts[v]++
	}
	out := make([]ValueCount, 0, len(counts))
	for k, v := range counts {
		out = append(out, ValueCount{Value: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Value < out[j].Value
		}
		return out[i].Count > out[j].Count
	})
	return out
}

// WriteCSV writes the table, header included.
func (t *Table) WriteCSV(w io.Writer) error {
	if err := t.df.WriteCSV(w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// IsMissing reports whether a numeric cell is absent or holds the sentinel.
func IsMissing(v float64) bool {
	return math.IsNaN(v) || v == Sentinel
}
