package region

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/KaramelBytes/bigtable-cli/internal/table"
)

// ErrEmptyRegion is returned when a region has no recorded masks, so its
// membership predicate is undefined.
var ErrEmptyRegion = errors.New("region has no recorded masks")

// Mask is the row mask for one (column, value) condition.
type Mask struct {
	Value string
	Rows  []bool
}

// Region is a named subset of a Table defined by categorical conditions.
// A row belongs to the region when, for every column with at least one
// recorded mask, it matches one of that column's values.
//
// A Region only reads its table; it never mutates or copies it.
type Region struct {
	name    string
	tbl     *table.Table
	columns []string
	masks   map[string][]Mask
	items   map[string][]string
}

// New returns an empty region over tbl.
func New(name string, tbl *table.Table) *Region {
	return &Region{
		name:  name,
		tbl:   tbl,
		masks: make(map[string][]Mask),
		items: make(map[string][]string),
	}
}

// Name returns the region name.
func (r *Region) Name() string { return r.name }

// AddCategory adds the condition column == v for each v in values. Every
// value is remembered as a masked item; its mask is recorded only when at
// least one row matches and the mask covers every row of the table. Masks from
// Table.Equal always cover every row; the length check guards mask sources
// that may not.
func (r *Region) AddCategory(column string, values ...string) error {
	if !r.tbl.Has(column) {
		return fmt.Errorf("add category to %s: %w: %q", r.name, table.ErrUnknownColumn, column)
	}
	for _, v := range values {
		r.items[column] = append(r.items[column], v)
		mask, err := r.tbl.Equal(column, v)
		if err != nil {
			return fmt.Errorf("add category to %s: %w", r.name, err)
		}
		if len(mask) != r.tbl.Nrow() {
			slog.Debug("dropping mask with wrong length",
				slog.String("region", r.name), slog.String("column", column), slog.String("value", v))
			continue
		}
		if !anyTrue(mask) {
			continue
		}
		if _, ok := r.masks[column]; !ok {
			r.columns = append(r.columns, column)
		}
		r.masks[column] = append(r.masks[column], Mask{Value: v, Rows: mask})
	}
	return nil
}

// MaskedItems returns the values passed to AddCategory for column, in order.
func (r *Region) MaskedItems(column string) []string {
	return append([]string(nil), r.items[column]...)
}

// Masks returns the recorded masks for column.
func (r *Region) Masks(column string) []Mask {
	return append([]Mask(nil), r.masks[column]...)
}

// MaskCount returns how many masks were recorded for column.
func (r *Region) MaskCount(column string) int { return len(r.masks[column]) }

// FinalMask returns, for each row, whether it satisfies every column's
// OR-of-values condition.
func (r *Region) FinalMask() ([]bool, error) {
	if len(r.columns) == 0 {
		return nil, fmt.Errorf("%s: %w", r.name, ErrEmptyRegion)
	}
	n := r.tbl.Nrow()
	final := make([]bool, n)
	for i := range final {
		final[i] = true
	}
	for _, col := range r.columns {
		for i := 0; i < n; i++ {
			if !final[i] {
				continue
			}
			hit := false
			for _, m := range r.masks[col] {
				if m.Rows[i] {
					hit = true
					break
				}
			}
			final[i] = hit
		}
	}
	return final, nil
}

// Rows returns the sub-table selected by FinalMask.
func (r *Region) Rows() (*table.Table, error) {
	mask, err := r.FinalMask()
	if err != nil {
		return nil, err
	}
	return r.tbl.Subset(mask)
}

// ColumnCounts returns the value counts of column within the region.
func (r *Region) ColumnCounts(column string) ([]table.ValueCount, error) {
	sub, err := r.Rows()
	if err != nil {
		return nil, err
	}
	return sub.ValueCounts(column)
}

func anyTrue(mask []bool) bool {
	for _, b := range mask {
		if b {
			return true
		}
	}
	return false
}
