package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/bigtable-cli/internal/table"
)

func companies(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.FromRecords([][]string{
		{"state", "time_in_business", "revenue", "headcount"},
		{"CA", "10+ years", "Over $1 Billion", "Over 1,000"},
		{"TX", "Less than a year", "Less Than $500,000", "1 to 4"},
		{"NY", "3-5 years", "$1 to 2.5 Million", "10 to 19"},
		{"WA", "-1", "", "5 to 9"},
		{"OR", "6-10 years", "$5 to 10 Million", "50 to 99"},
		{"NV", "1-2 years", "$20 to 50 Million", "20 to 49"},
	})
	require.NoError(t, err)
	return tbl
}

func TestLookupClosedTables(t *testing.T) {
	for _, a := range Attributes() {
		for label, want := range a.Labels {
			got, ok := a.Lookup(label)
			require.True(t, ok, "%s %q", a.Source, label)
			assert.Equal(t, want, got)
		}
		got, ok := a.Lookup("-1")
		require.True(t, ok)
		assert.Equal(t, float64(table.Sentinel), got)
		got, ok = a.Lookup("-1.0")
		require.True(t, ok)
		assert.Equal(t, float64(table.Sentinel), got)
	}
}

func TestLookupExamples(t *testing.T) {
	attrs := Attributes()
	tenure, revenue, headcount := attrs[0], attrs[1], attrs[2]

	v, _ := headcount.Lookup("Over 1,000")
	assert.Equal(t, 1999.0, v)
	v, _ = tenure.Lookup("Less than a year")
	assert.Equal(t, -1.0, v)
	v, _ = revenue.Lookup(" Over $500 Million ")
	assert.Equal(t, 750.0, v)
	_, ok := revenue.Lookup("a lot")
	assert.False(t, ok)
}

func TestNormalizeWritesDerivedColumns(t *testing.T) {
	tbl := companies(t)
	res, err := Normalize(tbl, NormalizeOptions{})
	require.NoError(t, err)

	tm, err := tbl.Floats(TimeColumn)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, -1, 5, -1, 7, 2}, tm)

	rev, err := tbl.Floats(RevenueColumn)
	require.NoError(t, err)
	assert.Equal(t, []float64{1000, 0.5, 2.5, -1, 10, 50}, rev)

	hc, err := tbl.Floats(HeadcountColumn)
	require.NoError(t, err)
	assert.Equal(t, []float64{1999, 4, 19, 9, 99, 49}, hc)

	require.Len(t, res.Columns, 3)
	assert.Equal(t, ColumnNormalization{Source: "time_in_business", Target: "time_n", Mapped: 4, Sentinel: 2}, res.Columns[0])
	assert.Equal(t, 1, res.Columns[1].Sentinel)
	assert.Zero(t, res.Columns[2].Unmapped)
}

func TestNormalizeIsDeterministic(t *testing.T) {
	a, b := companies(t), companies(t)
	_, err := Normalize(a, NormalizeOptions{})
	require.NoError(t, err)
	_, err = Normalize(b, NormalizeOptions{})
	require.NoError(t, err)
	_, err = Normalize(b, NormalizeOptions{})
	require.NoError(t, err)
	for _, c := range BaseColumns {
		x, _ := a.Floats(c)
		y, _ := b.Floats(c)
		assert.Equal(t, x, y, c)
	}
}

func TestNormalizeUnmappedSentinelFill(t *testing.T) {
	tbl, err := table.FromRecords([][]string{
		{"time_in_business", "revenue", "headcount"},
		{"100 years", "$1 to 2.5 Million", "1 to 4"},
		{"100 years", "$1 to 2.5 Million", "lots"},
	})
	require.NoError(t, err)

	res, err := Normalize(tbl, NormalizeOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Columns[0].Unmapped)
	assert.Equal(t, []string{"100 years"}, res.Columns[0].UnmappedLabels)
	assert.Equal(t, []string{"lots"}, res.Columns[2].UnmappedLabels)

	tm, _ := tbl.Floats(TimeColumn)
	assert.Equal(t, []float64{-1, -1}, tm)
}

func TestNormalizeStrictFailsBeforeWriting(t *testing.T) {
	tbl, err := table.FromRecords([][]string{
		{"time_in_business", "revenue", "headcount"},
		{"10+ years", "$1 to 2.5 Million", "lots"},
	})
	require.NoError(t, err)

	_, err = Normalize(tbl, NormalizeOptions{Strict: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnmappedLabel)
	var ule *UnmappedLabelError
	require.ErrorAs(t, err, &ule)
	assert.Equal(t, "headcount", ule.Column)
	assert.Equal(t, "lots", ule.Label)
	assert.False(t, tbl.Has(TimeColumn))
}

func TestNormalizeMissingColumn(t *testing.T) {
	tbl, err := table.FromRecords([][]string{{"revenue"}, {"Over $1 Billion"}})
	require.NoError(t, err)
	_, err = Normalize(tbl, NormalizeOptions{})
	assert.ErrorIs(t, err, table.ErrUnknownColumn)
}
