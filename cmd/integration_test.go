package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const companiesCSV = `state,time_in_business,revenue,headcount,category_code
CA,10+ years,Over $1 Billion,"Over 1,000",311111
WA,3-5 years,$1 to 2.5 Million,10 to 19,445110
OR,6-10 years,$5 to 10 Million,50 to 99,311111
TX,1-2 years,$20 to 50 Million,20 to 49,445110
NY,3-5 years,$2.5 to 5 Million,5 to 9,541110
FL,Less than a year,"Less Than $500,000",1 to 4,999999
`

const indexCSV = `code,title
31-33,Manufacturing
44-45,Retail Trade
54,Professional Services
311,Food Manufacturing
445,Food and Beverage Stores
`

const placeholderCSV = `state,time_in_business,revenue,headcount,category_code
CA,10+ years,Over $1 Billion,"Over 1,000",311111
WA,3-5 years,None,10 to 19,
OR,6-10 years,$5 to 10 Million,50 to 99,None
TX,1-2 years,$20 to 50 Million,20 to 49,445110
NY,3-5 years,$2.5 to 5 Million,5 to 9,999999
`

// resetFlags restores every flag to its default so state does not leak
// between invocations of the shared root command.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		if sv, ok := fl.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = fl.Value.Set(fl.DefValue)
		}
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd executes the root command with args and returns its stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg = nil
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func fixtures(t *testing.T) (data, index string) {
	t.Helper()
	dir := t.TempDir()
	data = filepath.Join(dir, "companies.csv")
	index = filepath.Join(dir, "naics.csv")
	require.NoError(t, os.WriteFile(data, []byte(companiesCSV), 0o644))
	require.NoError(t, os.WriteFile(index, []byte(indexCSV), 0o644))
	return data, index
}

func TestCLI_RegionsReference(t *testing.T) {
	out, err := runCmd(t, "regions")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "division,states\n"))
	assert.Contains(t, out, "newengland")
}

func TestCLI_RegionsCounts(t *testing.T) {
	data, _ := fixtures(t)
	out, err := runCmd(t, "regions", data, "--count-by", "state")
	require.NoError(t, err)
	assert.Contains(t, out, "[REGIONS]")
	assert.Contains(t, out, "- pacific: 3 rows")
	assert.Contains(t, out, "- middleatlantic: 1 rows")
	assert.Contains(t, out, "- mountain: 0 rows")
	assert.Contains(t, out, "no matching rows")
	assert.Contains(t, out, "• CA: 1")
	assert.Contains(t, out, "state has 6 distinct values")

	out, err = runCmd(t, "regions", data, "--division", "Pacific")
	require.NoError(t, err)
	assert.Contains(t, out, "- pacific: 3 rows")
	assert.NotContains(t, out, "mountain")

	_, err = runCmd(t, "regions", data, "--division", "atlantis")
	assert.Error(t, err)
}

func TestCLI_CorrelateJSON(t *testing.T) {
	data, _ := fixtures(t)
	out, err := runCmd(t, "correlate", data, "--format", "json")
	require.NoError(t, err)

	var rep struct {
		RunID        string `json:"run_id"`
		Correlations struct {
			Rows    []string     `json:"rows"`
			Columns []string     `json:"columns"`
			Values  [][]*float64 `json:"values"`
			N       int          `json:"n"`
		} `json:"correlations"`
		Normalize struct {
			Columns []struct {
				Target   string `json:"target"`
				Sentinel int    `json:"sentinel"`
			} `json:"columns"`
		} `json:"normalize"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.NotEmpty(t, rep.RunID)
	assert.Equal(t, []string{"time_n", "rev_n", "hdcnt_n"}, rep.Correlations.Rows)
	assert.Len(t, rep.Correlations.Columns, 7)
	// FL has tenure "Less than a year", which maps to -1
	assert.Equal(t, 5, rep.Correlations.N)
	require.NotNil(t, rep.Correlations.Values[0][0])
	assert.Equal(t, 1.0, *rep.Correlations.Values[0][0])
	require.Len(t, rep.Normalize.Columns, 3)
	assert.Equal(t, 1, rep.Normalize.Columns[0].Sentinel)
}

func TestCLI_CorrelateColumnsAndExport(t *testing.T) {
	data, _ := fixtures(t)
	export := filepath.Join(t.TempDir(), "out", "augmented.csv")
	out, err := runCmd(t, "correlate", data, "--columns", "time_n,rev_n", "--export", export)
	require.NoError(t, err)
	assert.Contains(t, out, "[CORRELATIONS] (n=5)")
	assert.Contains(t, out, "| | time_n | rev_n |")

	b, err := os.ReadFile(export)
	require.NoError(t, err)
	header := strings.SplitN(string(b), "\n", 2)[0]
	assert.Contains(t, header, "hdcnt_n**2")
}

func TestCLI_CorrelateStrict(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(data, []byte("time_in_business,revenue,headcount\n10+ years,lots,1 to 4\n"), 0o644))

	out, err := runCmd(t, "correlate", data)
	require.NoError(t, err)
	assert.Contains(t, out, "revenue: 1 unmapped label set to -1")

	_, err = runCmd(t, "correlate", data, "--strict")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lots")
}

func TestCLI_NaicsJoin(t *testing.T) {
	data, index := fixtures(t)
	augmented := filepath.Join(t.TempDir(), "joined.csv")
	out, err := runCmd(t, "naics", data, "--index", index, "--output", augmented)
	require.NoError(t, err)
	assert.Contains(t, out, "[NAICS NON-MATCHES]")
	assert.Contains(t, out, "- naics_sector_desc: 1")
	assert.Contains(t, out, "- naics_subsector_desc: 2")

	b, err := os.ReadFile(augmented)
	require.NoError(t, err)
	assert.Contains(t, string(b), "naics_industries_6_desc")
	assert.Contains(t, string(b), "Food Manufacturing")
}

func TestCLI_NaicsRequiresIndex(t *testing.T) {
	data, _ := fixtures(t)
	_, err := runCmd(t, "naics", data)
	assert.Error(t, err)
}

func TestCLI_Compare(t *testing.T) {
	data, index := fixtures(t)
	out, err := runCmd(t, "compare", data, "--division", "pacific", "--index", index)
	require.NoError(t, err)
	assert.Contains(t, out, "[PACIFIC VS ALL: naics_sector_desc]")
	assert.Contains(t, out, "- Manufacturing: +33.33%")
	assert.Contains(t, out, "- pacific: 3 rows")

	out, err = runCmd(t, "compare", data, "--division", "pacific", "--index", index, "--top", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "showing top 1 of 4 values")
	assert.NotContains(t, out, "Retail Trade")

	_, err = runCmd(t, "compare", data, "--division", "pacific")
	assert.Error(t, err, "naics_sector_desc is absent without --index")

	_, err = runCmd(t, "compare", data, "--division", "atlantis", "--index", index)
	assert.Error(t, err)
}

func TestCLI_ConfigSetShow(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	_, err := runCmd(t, "--config", p, "config", "set", "state_column", "st")
	require.NoError(t, err)
	_, err = runCmd(t, "--config", p, "config", "set", "output_format", "json")
	require.NoError(t, err)

	_, err = runCmd(t, "--config", p, "config", "set", "output_format", "pdf")
	assert.Error(t, err)
	_, err = runCmd(t, "--config", p, "config", "set", "nope", "x")
	assert.Error(t, err)

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Contains(t, string(b), "state_column: st")
	assert.Contains(t, string(b), "output_format: json")
}

func TestCLI_BadFormat(t *testing.T) {
	data, _ := fixtures(t)
	_, err := runCmd(t, "regions", data, "--format", "html")
	assert.Error(t, err)
}

func placeholderFixture(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "placeholders.csv")
	require.NoError(t, os.WriteFile(p, []byte(placeholderCSV), 0o644))
	return p
}

func TestCLI_NaicsClean(t *testing.T) {
	_, index := fixtures(t)
	data := placeholderFixture(t)
	out, err := runCmd(t, "naics", data, "--index", index, "--clean")
	require.NoError(t, err)
	assert.Contains(t, out, "replaced 3 empty or placeholder cells with -1")
	// cleaned codes have no prefix, so only 999999 misses
	assert.Contains(t, out, "- naics_sector_desc: 1")
	assert.Contains(t, out, "- naics_subsector_desc: 1")
}

func TestCLI_CorrelateClean(t *testing.T) {
	data := placeholderFixture(t)
	out, err := runCmd(t, "correlate", data, "--clean")
	require.NoError(t, err)
	assert.Contains(t, out, "replaced 3 empty or placeholder cells with -1")
	assert.Contains(t, out, "- revenue -> rev_n: mapped 4, sentinel 1, unmapped 0")
	assert.Contains(t, out, "[CORRELATIONS] (n=4)")
	assert.NotContains(t, out, "unmapped label")
}
