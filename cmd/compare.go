package cmd

import (
	"fmt"

	"github.com/KaramelBytes/bigtable-cli/internal/analysis"
	"github.com/KaramelBytes/bigtable-cli/internal/region"
	"github.com/spf13/cobra"
)

var (
	cmpData       dataFlags
	cmpDivision   string
	cmpColumn     string
	cmpIndex      string
	cmpIndexSheet string
	cmpTop        int
	cmpOutput     string
)

var compareCmd = &cobra.Command{
	Use:   "compare <data-file> --division <name>",
	Short: "Compare a division's category mix against the whole table",
	Long: `For every value of --column, prints the value's share among the division's
rows minus its share among all rows. With --index, NAICS descriptions are
joined first so --column can name a level such as naics_sector_desc.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		div, ok := region.LookupDivision(cmpDivision)
		if !ok {
			return fmt.Errorf("unknown division: %s", cmpDivision)
		}
		if cmpTop < 0 {
			return fmt.Errorf("--top must be >= 0")
		}
		c := effectiveConfig()
		tbl, notes, err := cmpData.load(args[0])
		if err != nil {
			return err
		}

		rep := analysis.NewReport(args[0], tbl.Nrow())
		rep.Warnings = notes
		if cmpIndex != "" {
			report, err := joinIndex(tbl, cmpIndex, cmpIndexSheet, "", "")
			if err != nil {
				return err
			}
			rep.NonMatches = report
		}

		r := region.New(div.Name, tbl)
		if err := r.AddCategory(c.StateColumn, div.States...); err != nil {
			return err
		}
		deltas, err := region.IndustryDelta(tbl, r, cmpColumn)
		if err != nil {
			return err
		}
		sub, err := r.Rows()
		if err != nil {
			return err
		}
		total := len(deltas)
		if cmpTop > 0 && cmpTop < total {
			deltas = deltas[:cmpTop]
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("showing top %d of %d values", cmpTop, total))
		}
		rep.Regions = []analysis.RegionSummary{{Name: div.Name, States: div.States, Rows: sub.Nrow()}}
		rep.Delta = &analysis.DeltaSection{Region: div.Name, Column: cmpColumn, Deltas: deltas}
		return writeReport(cmd, rep, cmpOutput)
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
	addDataFlags(compareCmd, &cmpData)
	compareCmd.Flags().StringVar(&cmpDivision, "division", "", "census division to compare (e.g. pacific)")
	compareCmd.Flags().StringVar(&cmpColumn, "column", "naics_sector_desc", "category column to compare")
	compareCmd.Flags().StringVar(&cmpIndex, "index", "", "classification file to join before comparing")
	compareCmd.Flags().StringVar(&cmpIndexSheet, "index-sheet", "", "XLSX sheet of the classification file")
	compareCmd.Flags().IntVar(&cmpTop, "top", 0, "only show the N most over-represented values (0 = all)")
	compareCmd.Flags().StringVarP(&cmpOutput, "output", "o", "", "write the report to this file instead of stdout")
	_ = compareCmd.MarkFlagRequired("division")
}
