package cmd

import (
	"fmt"

	"github.com/KaramelBytes/bigtable-cli/internal/analysis"
	"github.com/KaramelBytes/bigtable-cli/internal/parser"
	"github.com/spf13/cobra"
)

var (
	corData    dataFlags
	corColumns []string
	corStrict  bool
	corOutput  string
	corExport  string
)

var correlateCmd = &cobra.Command{
	Use:   "correlate <data-file>",
	Short: "Normalize tenure, revenue and headcount and correlate them",
	Long: `Maps the time_in_business, revenue and headcount labels to numbers
(time_n, rev_n, hdcnt_n), adds their interaction columns and prints the
Pearson correlation of each base attribute against the chosen columns.
Rows holding -1 or an empty cell in any involved column are left out.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := effectiveConfig()
		tbl, notes, err := corData.load(args[0])
		if err != nil {
			return err
		}

		strict := c.StrictLabels
		if cmd.Flags().Changed("strict") {
			strict = corStrict
		}
		res, err := analysis.Normalize(tbl, analysis.NormalizeOptions{Strict: strict})
		if err != nil {
			return err
		}

		columns := corColumns
		if len(columns) == 0 {
			columns = c.CorrelationColumns
		}
		m, err := analysis.Correlate(tbl, columns)
		if err != nil {
			return err
		}

		rep := analysis.NewReport(args[0], tbl.Nrow())
		rep.Normalize = res
		rep.Corr = m
		rep.Warnings = notes
		for _, col := range res.Columns {
			if col.Unmapped > 0 {
				rep.Warnings = append(rep.Warnings,
					fmt.Sprintf("%s: %s set to -1", col.Source, pluralize(col.Unmapped, "unmapped label")))
			}
		}
		if m.N < 2 {
			rep.Warnings = append(rep.Warnings, "fewer than two complete rows; correlations are undefined")
		}

		if corExport != "" {
			if err := parser.WriteCSVFile(corExport, tbl); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote augmented table to %s\n", corExport)
		}
		return writeReport(cmd, rep, corOutput)
	},
}

func init() {
	rootCmd.AddCommand(correlateCmd)
	addDataFlags(correlateCmd, &corData)
	correlateCmd.Flags().StringSliceVar(&corColumns, "columns", nil, "columns to correlate against (default: base attributes and interactions)")
	correlateCmd.Flags().BoolVar(&corStrict, "strict", false, "fail on labels outside the known tables instead of writing -1")
	correlateCmd.Flags().StringVarP(&corOutput, "output", "o", "", "write the report to this file instead of stdout")
	correlateCmd.Flags().StringVar(&corExport, "export", "", "write the table with derived columns to this CSV file")
}
