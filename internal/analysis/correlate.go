package analysis

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/bigtable-cli/internal/table"
)

// Interaction columns written by Correlate.
const (
	HeadcountTimeColumn    = "hdcnt_n * time_n"
	HeadcountRevenueColumn = "hdcnt_n * rev_n"
	RevenueTimeColumn      = "rev_n * time_n"
	HeadcountSquaredColumn = "hdcnt_n**2"
)

// BaseColumns are the rows of every correlation report.
var BaseColumns = []string{TimeColumn, RevenueColumn, HeadcountColumn}

// DefaultCorrelationColumns are the base attributes plus their interactions.
var DefaultCorrelationColumns = []string{
	TimeColumn, RevenueColumn, HeadcountColumn,
	HeadcountTimeColumn, HeadcountRevenueColumn, RevenueTimeColumn, HeadcountSquaredColumn,
}

// CorrMatrix holds Pearson correlations of each base attribute (rows)
// against the requested columns.
type CorrMatrix struct {
	Rows    []string
	Columns []string
	Values  [][]float64 // row-major, Values[i][j]
	// N is the number of fully populated rows the correlations were computed on.
	N int
}

// At returns the correlation of base row against column, or NaN if either is absent.
func (m *CorrMatrix) At(row, column string) float64 {
	for i, r := range m.Rows {
		if r != row {
			continue
		}
		for j, c := range m.Columns {
			if c == column {
				return m.Values[i][j]
			}
		}
	}
	return math.NaN()
}

// MarshalJSON encodes undefined correlations as null.
func (m *CorrMatrix) MarshalJSON() ([]byte, error) {
	vals := make([][]*float64, len(m.Values))
	for i, row := range m.Values {
		vals[i] = make([]*float64, len(row))
		for j := range row {
			if finite(row[j]) {
				v := row[j]
				vals[i][j] = &v
			}
		}
	}
	return json.Marshal(struct {
		Rows    []string     `json:"rows"`
		Columns []string     `json:"columns"`
		Values  [][]*float64 `json:"values"`
		N       int          `json:"n"`
	}{m.Rows, m.Columns, vals, m.N})
}

// AddInteractions writes the pairwise products and the headcount square
// into tbl. A product is the sentinel when either operand is absent or the
// sentinel. Normalize must have run first.
func AddInteractions(tbl *table.Table) error {
	tm, err := tbl.Floats(TimeColumn)
	if err != nil {
		return fmt.Errorf("interactions: %w", err)
	}
	rev, err := tbl.Floats(RevenueColumn)
	if err != nil {
		return fmt.Errorf("interactions: %w", err)
	}
	hc, err := tbl.Floats(HeadcountColumn)
	if err != nil {
		return fmt.Errorf("interactions: %w", err)
	}
	n := tbl.Nrow()
	hcTime := make([]float64, n)
	hcRev := make([]float64, n)
	revTime := make([]float64, n)
	hcSq := make([]float64, n)
	for i := 0; i < n; i++ {
		hcTime[i] = product(hc[i], tm[i])
		hcRev[i] = product(hc[i], rev[i])
		revTime[i] = product(rev[i], tm[i])
		hcSq[i] = product(hc[i], hc[i])
	}
	for _, c := range []struct {
		name string
		vals []float64
	}{
		{HeadcountTimeColumn, hcTime},
		{HeadcountRevenueColumn, hcRev},
		{RevenueTimeColumn, revTime},
		{HeadcountSquaredColumn, hcSq},
	} {
		if err := tbl.SetFloats(c.name, c.vals); err != nil {
			return fmt.Errorf("interactions: %w", err)
		}
	}
	return nil
}

// Correlate adds the interaction columns to tbl (in place), keeps the rows
// where every requested column holds a number greater than the sentinel, and
// returns the Pearson correlation of each base attribute against each
// requested column on those rows. The filter always includes time_n, rev_n
// and hdcnt_n, even when columns leaves them out, so every cell of the
// matrix is computed on the same rows.
func Correlate(tbl *table.Table, columns []string) (*CorrMatrix, error) {
	if len(columns) == 0 {
		columns = DefaultCorrelationColumns
	}
	if err := AddInteractions(tbl); err != nil {
		return nil, err
	}

	needed := append([]string(nil), columns...)
	for _, b := range BaseColumns {
		if !contains(needed, b) {
			needed = append(needed, b)
		}
	}
	data := make(map[string][]float64, len(needed))
	for _, c := range needed {
		vals, err := tbl.Floats(c)
		if err != nil {
			return nil, fmt.Errorf("correlate: %w", err)
		}
		data[c] = vals
	}

	keep := make([]int, 0, tbl.Nrow())
	for i := 0; i < tbl.Nrow(); i++ {
		ok := true
		for _, c := range needed {
			v := data[c][i]
			if !(v > table.Sentinel) || !finite(v) {
				ok = false
				break
			}
		}
		if ok {
			keep = append(keep, i)
		}
	}
	filtered := make(map[string][]float64, len(needed))
	for _, c := range needed {
		col := make([]float64, len(keep))
		for k, i := range keep {
			col[k] = data[c][i]
		}
		filtered[c] = col
	}

	m := &CorrMatrix{
		Rows:    append([]string(nil), BaseColumns...),
		Columns: append([]string(nil), columns...),
		Values:  make([][]float64, len(BaseColumns)),
		N:       len(keep),
	}
	for i, b := range BaseColumns {
		m.Values[i] = make([]float64, len(columns))
		for j, c := range columns {
			if b == c {
				m.Values[i][j] = 1
				continue
			}
			m.Values[i][j] = pearson(filtered[b], filtered[c])
		}
	}
	slog.Debug("correlations computed", slog.Int("rows", m.N), slog.Any("columns", columns))
	return m, nil
}

// pearson returns the clamped correlation of x and y, or NaN when undefined.
func pearson(x, y []float64) float64 {
	if len(x) < 2 {
		return math.NaN()
	}
	r := stat.Correlation(x, y, nil)
	if !finite(r) {
		return math.NaN()
	}
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
