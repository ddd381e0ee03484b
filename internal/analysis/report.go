package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/KaramelBytes/bigtable-cli/internal/naics"
	"github.com/KaramelBytes/bigtable-cli/internal/region"
	"github.com/KaramelBytes/bigtable-cli/internal/table"
)

// RegionSummary is the size of one region and, optionally, the value
// counts of a column inside it.
type RegionSummary struct {
	Name   string             `json:"name"`
	States []string           `json:"states,omitempty"`
	Rows   int                `json:"rows"`
	Column string             `json:"column,omitempty"`
	Counts []table.ValueCount `json:"counts,omitempty"`
	Note   string             `json:"note,omitempty"`
}

// DeltaSection holds an industry comparison between a region and the whole table.
type DeltaSection struct {
	Region string         `json:"region"`
	Column string         `json:"column"`
	Deltas []region.Delta `json:"deltas"`
}

// Report is a markdown-friendly collection of analysis results. Every
// section is optional; Markdown renders the ones that are set.
type Report struct {
	RunID      string           `json:"run_id"`
	Name       string           `json:"name"`
	Rows       int              `json:"rows"`
	Regions    []RegionSummary  `json:"regions,omitempty"`
	Normalize  *NormalizeResult `json:"normalize,omitempty"`
	Corr       *CorrMatrix      `json:"correlations,omitempty"`
	NonMatches []naics.NonMatch `json:"non_matches,omitempty"`
	Delta      *DeltaSection    `json:"delta,omitempty"`
	Warnings   []string         `json:"warnings,omitempty"`
}

// NewReport starts a report for a dataset with a fresh run id.
func NewReport(name string, rows int) *Report {
	return &Report{RunID: uuid.NewString(), Name: name, Rows: rows}
}

// Markdown renders a compact report suitable for terminals or standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Run: %s\n", r.RunID))

	if len(r.Regions) > 0 {
		b.WriteString("\n[REGIONS]\n")
		for _, rg := range r.Regions {
			b.WriteString(fmt.Sprintf("- %s: %d rows", rg.Name, rg.Rows))
			if len(rg.States) > 0 {
				b.WriteString(fmt.Sprintf(" (%s)", strings.Join(rg.States, ",")))
			}
			if rg.Note != "" {
				b.WriteString(" — " + rg.Note)
			}
			b.WriteString("\n")
			for _, c := range rg.Counts {
				b.WriteString(fmt.Sprintf("  • %s: %d\n", safeVal(c.Value), c.Count))
			}
		}
	}

	if r.Normalize != nil {
		b.WriteString("\n[NORMALIZED ATTRIBUTES]\n")
		for _, c := range r.Normalize.Columns {
			b.WriteString(fmt.Sprintf("- %s -> %s: mapped %d, sentinel %d, unmapped %d",
				c.Source, c.Target, c.Mapped, c.Sentinel, c.Unmapped))
			if len(c.UnmappedLabels) > 0 {
				b.WriteString(" (" + strings.Join(c.UnmappedLabels, " | ") + ")")
			}
			b.WriteString("\n")
		}
	}

	if r.Corr != nil {
		b.WriteString(fmt.Sprintf("\n[CORRELATIONS] (n=%d)\n", r.Corr.N))
		b.WriteString("| |")
		for _, c := range r.Corr.Columns {
			b.WriteString(" " + safeVal(c) + " |")
		}
		b.WriteString("\n|---|")
		for range r.Corr.Columns {
			b.WriteString("---|")
		}
		b.WriteString("\n")
		for i, row := range r.Corr.Rows {
			b.WriteString("| " + row + " |")
			for j := range r.Corr.Columns {
				b.WriteString(" " + fmtCorr(r.Corr.Values[i][j]) + " |")
			}
			b.WriteString("\n")
		}
	}

	if len(r.NonMatches) > 0 {
		b.WriteString("\n[NAICS NON-MATCHES]\n")
		for _, nm := range r.NonMatches {
			b.WriteString(fmt.Sprintf("- %s: %d\n", nm.Column, nm.Count))
		}
	}

	if r.Delta != nil {
		b.WriteString(fmt.Sprintf("\n[%s VS ALL: %s]\n", strings.ToUpper(r.Delta.Region), r.Delta.Column))
		for _, d := range r.Delta.Deltas {
			b.WriteString(fmt.Sprintf("- %s: %+.2f%% (region %.2f%%, all %.2f%%)\n",
				safeVal(d.Value), d.Delta*100, d.Region*100, d.Overall*100))
		}
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func fmtCorr(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", v)
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
