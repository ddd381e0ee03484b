package cmd

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/bigtable-cli/internal/analysis"
	"github.com/KaramelBytes/bigtable-cli/internal/region"
	"github.com/spf13/cobra"
)

var (
	regData     dataFlags
	regDivision string
	regCountBy  string
	regOutput   string
)

var regionsCmd = &cobra.Command{
	Use:   "regions [data-file]",
	Short: "Count rows per census division, or list the divisions",
	Long: `Without a data file, prints the division reference table as CSV.
With a data file, selects each division's rows by state and prints their count,
optionally with value counts of --count-by inside each division.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			ref, err := region.DivisionsTable()
			if err != nil {
				return err
			}
			return ref.WriteCSV(cmd.OutOrStdout())
		}
		only := ""
		if regDivision != "" {
			d, ok := region.LookupDivision(regDivision)
			if !ok {
				return fmt.Errorf("unknown division: %s", regDivision)
			}
			only = d.Name
		}

		c := effectiveConfig()
		tbl, notes, err := regData.load(args[0])
		if err != nil {
			return err
		}
		regions, ref, err := region.BuildDivisions(tbl, c.StateColumn)
		if err != nil {
			return err
		}

		rep := analysis.NewReport(args[0], tbl.Nrow())
		rep.Warnings = notes
		for i, r := range regions {
			if only != "" && r.Name() != only {
				continue
			}
			sum := analysis.RegionSummary{Name: r.Name(), States: ref[i].States, Column: regCountBy}
			sub, err := r.Rows()
			if errors.Is(err, region.ErrEmptyRegion) {
				sum.Note = "no matching rows"
				rep.Regions = append(rep.Regions, sum)
				continue
			}
			if err != nil {
				return err
			}
			sum.Rows = sub.Nrow()
			if regCountBy != "" {
				counts, err := sub.ValueCounts(regCountBy)
				if err != nil {
					return err
				}
				sum.Counts = counts
			}
			rep.Regions = append(rep.Regions, sum)
		}
		if regCountBy != "" {
			n, err := tbl.UniqueCount(regCountBy)
			if err != nil {
				return err
			}
			rep.Warnings = append(rep.Warnings,
				fmt.Sprintf("%s has %s overall, ignoring case and spaces", regCountBy, pluralize(n, "distinct value")))
		}
		return writeReport(cmd, rep, regOutput)
	},
}

func init() {
	rootCmd.AddCommand(regionsCmd)
	addDataFlags(regionsCmd, &regData)
	regionsCmd.Flags().StringVar(&regDivision, "division", "", "only report this division")
	regionsCmd.Flags().StringVar(&regCountBy, "count-by", "", "column to count values of within each division")
	regionsCmd.Flags().StringVarP(&regOutput, "output", "o", "", "write the report to this file instead of stdout")
}
