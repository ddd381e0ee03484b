package region

import (
	"fmt"
	"sort"

	"github.com/KaramelBytes/bigtable-cli/internal/table"
)

// Delta compares how common a category is inside a region versus the whole table.
// Positive values mean the category is over-represented in the region.
type Delta struct {
	Value   string  `json:"value"`
	Region  float64 `json:"region_share"`
	Overall float64 `json:"overall_share"`
	Delta   float64 `json:"delta"`
}

// IndustryDelta computes, for every distinct value of column, the share of
// the region's non-absent cells minus the share of the whole table's
// non-absent cells. Values seen on only one side count as zero on the
// other. Results are sorted by delta, largest first.
func IndustryDelta(tbl *table.Table, r *Region, column string) ([]Delta, error) {
	overall, err := tbl.ValueCounts(column)
	if err != nil {
		return nil, err
	}
	inRegion, err := r.ColumnCounts(column)
	if err != nil {
		return nil, fmt.Errorf("industry delta for %s: %w", r.Name(), err)
	}
	overallShare := shares(overall)
	regionShare := shares(inRegion)

	out := make([]Delta, 0, len(overallShare))
	for v, o := range overallShare {
		rs := regionShare[v]
		out = append(out, Delta{Value: v, Region: rs, Overall: o, Delta: rs - o})
	}
	for v, rs := range regionShare {
		if _, ok := overallShare[v]; ok {
			continue
		}
		out = append(out, Delta{Value: v, Region: rs, Delta: rs})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Delta == out[j].Delta {
			return out[i].Value < out[j].Value
		}
		return out[i].Delta > out[j].Delta
	})
	return out, nil
}

func shares(counts []table.ValueCount) map[string]float64 {
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	out := make(map[string]float64, len(counts))
	if total == 0 {
		return out
	}
	for _, c := range counts {
		out[c.Value] = float64(c.Count) / float64(total)
	}
	return out
}
