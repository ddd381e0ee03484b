package cmd

import (
	"fmt"

	"github.com/KaramelBytes/bigtable-cli/internal/analysis"
	"github.com/KaramelBytes/bigtable-cli/internal/naics"
	"github.com/KaramelBytes/bigtable-cli/internal/parser"
	"github.com/KaramelBytes/bigtable-cli/internal/table"
	"github.com/spf13/cobra"
)

var (
	naData       dataFlags
	naIndex      string
	naIndexSheet string
	naCodeCol    string
	naTitleCol   string
	naOutput     string
	naReport     string
)

var naicsCmd = &cobra.Command{
	Use:   "naics <data-file> --index <classification-file>",
	Short: "Join NAICS sector to 6-digit industry descriptions onto the table",
	Long: `Expands range codes such as 31-33 in the classification file, splits the
category code of every row into its 2 to 6 digit prefixes and attaches the
matching titles. Prefixes without a title get -1 and are counted per level.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tbl, notes, err := naData.load(args[0])
		if err != nil {
			return err
		}
		report, err := joinIndex(tbl, naIndex, naIndexSheet, naCodeCol, naTitleCol)
		if err != nil {
			return err
		}

		rep := analysis.NewReport(args[0], tbl.Nrow())
		rep.NonMatches = report
		rep.Warnings = notes
		if naOutput != "" {
			if err := parser.WriteCSVFile(naOutput, tbl); err != nil {
				return err
			}
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("augmented table written to %s", naOutput))
		}
		return writeReport(cmd, rep, naReport)
	},
}

// joinIndex loads the classification file and joins it into tbl, returning
// the per-level non-match counts.
func joinIndex(tbl *table.Table, path, sheet, codeCol, titleCol string) ([]naics.NonMatch, error) {
	c := effectiveConfig()
	if codeCol == "" {
		codeCol = c.NAICSCodeColumn
	}
	if titleCol == "" {
		titleCol = c.NAICSTitleColumn
	}
	idx, err := naics.LoadIndex(path, parser.Options{Sheet: sheet}, codeCol, titleCol)
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}
	return naics.Join(tbl, idx, naics.JoinOptions{CodeColumn: c.CategoryColumn, ReportNonMatches: true})
}

func init() {
	rootCmd.AddCommand(naicsCmd)
	addDataFlags(naicsCmd, &naData)
	naicsCmd.Flags().StringVar(&naIndex, "index", "", "classification file (CSV/TSV/XLSX) with code and title columns")
	naicsCmd.Flags().StringVar(&naIndexSheet, "index-sheet", "", "XLSX sheet of the classification file")
	naicsCmd.Flags().StringVar(&naCodeCol, "code-column", "", "code column of the classification file (overrides config)")
	naicsCmd.Flags().StringVar(&naTitleCol, "title-column", "", "title column of the classification file (overrides config)")
	naicsCmd.Flags().StringVarP(&naOutput, "output", "o", "", "write the augmented table to this CSV file")
	naicsCmd.Flags().StringVar(&naReport, "report", "", "write the report to this file instead of stdout")
	_ = naicsCmd.MarkFlagRequired("index")
}
