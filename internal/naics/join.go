package naics

import (
	"fmt"
	"log/slog"

	"github.com/KaramelBytes/bigtable-cli/internal/table"
)

// Level is one breakout of the hierarchical code.
type Level struct {
	Column string
	Width  int
}

// DescColumn is the name of the description column paired with the level.
func (l Level) DescColumn() string { return l.Column + "_desc" }

// Levels are the five prefix widths joined by Join.
var Levels = []Level{
	{Column: "naics_sector", Width: 2},
	{Column: "naics_subsector", Width: 3},
	{Column: "naics_industry_grp", Width: 4},
	{Column: "naics_industries_5", Width: 5},
	{Column: "naics_industries_6", Width: 6},
}

// NonMatch counts the rows of one description column whose prefix had no
// entry in the index.
type NonMatch struct {
	Column string `json:"column"`
	Count  int    `json:"num_non_matches"`
}

// JoinOptions controls Join.
type JoinOptions struct {
	// CodeColumn holds the category code; defaults to "category_code".
	CodeColumn string
	// ReportNonMatches makes Join return per-level non-match counts.
	ReportNonMatches bool
}

// Join breaks the code column of tbl into its 2..6 character prefixes and
// writes, for each level, the prefix column and a description column. It
// mutates tbl. A prefix is absent when the code is absent, the sentinel, or
// shorter than the level width. Descriptions start as the sentinel and are filled from
// idx; prefixes without an entry keep the sentinel and are counted.
func Join(tbl *table.Table, idx *Index, opt JoinOptions) ([]NonMatch, error) {
	codeCol := opt.CodeColumn
	if codeCol == "" {
		codeCol = "category_code"
	}
	codes, missing, err := tbl.Texts(codeCol)
	if err != nil {
		return nil, fmt.Errorf("naics join: %w", err)
	}

	var report []NonMatch
	for _, lvl := range Levels {
		prefix := make([]string, len(codes))
		absent := make([]bool, len(codes))
		desc := make([]string, len(codes))
		unmatched := 0
		for i, c := range codes {
			desc[i] = table.SentinelText
			if missing[i] || c == table.SentinelText || len([]rune(c)) < lvl.Width {
				absent[i] = true
				continue
			}
			prefix[i] = string([]rune(c)[:lvl.Width])
			if d, ok := idx.Lookup(prefix[i]); ok {
				desc[i] = d
				continue
			}
			unmatched++
		}
		if err := tbl.SetTexts(lvl.Column, prefix, absent); err != nil {
			return nil, fmt.Errorf("naics join: %w", err)
		}
		if err := tbl.SetTexts(lvl.DescColumn(), desc, nil); err != nil {
			return nil, fmt.Errorf("naics join: %w", err)
		}
		slog.Debug("naics level joined",
			slog.String("column", lvl.Column),
			slog.Int("width", lvl.Width),
			slog.Int("non_matches", unmatched))
		if opt.ReportNonMatches {
			report = append(report, NonMatch{Column: lvl.DescColumn(), Count: unmatched})
		}
	}
	return report, nil
}

// CountNonMatches recounts, for each level already joined into tbl, the rows
// with a present prefix and a sentinel description.
func CountNonMatches(tbl *table.Table) ([]NonMatch, error) {
	out := make([]NonMatch, 0, len(Levels))
	for _, lvl := range Levels {
		_, absent, err := tbl.Texts(lvl.Column)
		if err != nil {
			return nil, err
		}
		desc, descMissing, err := tbl.Texts(lvl.DescColumn())
		if err != nil {
			return nil, err
		}
		n := 0
		for i := range desc {
			if !absent[i] && !descMissing[i] && desc[i] == table.SentinelText {
				n++
			}
		}
		out = append(out, NonMatch{Column: lvl.DescColumn(), Count: n})
	}
	return out, nil
}
