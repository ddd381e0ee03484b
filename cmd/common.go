package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/bigtable-cli/internal/analysis"
	"github.com/KaramelBytes/bigtable-cli/internal/parser"
	"github.com/KaramelBytes/bigtable-cli/internal/table"
	"github.com/KaramelBytes/bigtable-cli/internal/utils"
	"github.com/spf13/cobra"
)

// dataFlags are the input options shared by every command that reads a table.
type dataFlags struct {
	delimiter  string
	sheet      string
	sheetIndex int
	clean      bool
}

func addDataFlags(c *cobra.Command, f *dataFlags) {
	c.Flags().StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (default from extension)")
	c.Flags().StringVar(&f.sheet, "sheet", "", "XLSX sheet name")
	c.Flags().IntVar(&f.sheetIndex, "sheet-index", 0, "XLSX sheet index (1-based) when --sheet is empty")
	c.Flags().BoolVar(&f.clean, "clean", false, "replace empty, None and null cells with -1 before analysis")
}

func (f *dataFlags) options() (parser.Options, error) {
	opt := parser.Options{Sheet: f.sheet, SheetIndex: f.sheetIndex}
	switch f.delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	case "|":
		opt.Delimiter = '|'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", f.delimiter)
	}
	return opt, nil
}

// load reads the data file and applies --clean. The returned notes are
// meant for the report's NOTES section.
func (f *dataFlags) load(path string) (*table.Table, []string, error) {
	opt, err := f.options()
	if err != nil {
		return nil, nil, err
	}
	tbl, err := parser.ParseFile(path, opt)
	if err != nil {
		return nil, nil, err
	}
	var notes []string
	if f.clean {
		n, err := tbl.ReplaceBadEntries()
		if err != nil {
			return nil, nil, err
		}
		notes = append(notes, fmt.Sprintf("replaced %d empty or placeholder cells with -1", n))
	}
	return tbl, notes, nil
}

// writeReport renders rep in the selected format to --output or stdout.
func writeReport(cmd *cobra.Command, rep *analysis.Report, output string) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}
	var body []byte
	switch format {
	case "json":
		b, err := utils.PrettyJSON(rep)
		if err != nil {
			return err
		}
		body = append(b, '\n')
	default:
		body = []byte(rep.Markdown())
	}
	if output != "" {
		if err := utils.SafeWriteFile(output, body); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote report to %s\n", output)
		return nil
	}
	_, err = cmd.OutOrStdout().Write(body)
	return err
}

func pluralize(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, strings.TrimSuffix(word, "s"))
}
