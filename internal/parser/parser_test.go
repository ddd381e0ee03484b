package parser_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/bigtable-cli/internal/parser"
)

func writeWorkbook(t *testing.T, path string, sheets map[string][][]any) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName("Sheet1", name))
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			r := row
			require.NoError(t, f.SetSheetRow(name, cell, &r))
		}
	}
	require.NoError(t, f.SaveAs(path))
}

func TestParseFileXLSX(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "naics.xlsx")
	writeWorkbook(t, p, map[string][][]any{
		"codes": {
			{"code", "title"},
			{11, "Agriculture, Forestry, Fishing and Hunting"},
			{"31-33", "Manufacturing"},
			{111110, "Soybean Farming"},
			{nil, "orphan title"},
		},
	})

	tbl, err := parser.ParseFile(p, parser.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"code", "title"}, tbl.Names())
	assert.Equal(t, 4, tbl.Nrow())

	codes, missing, err := tbl.Texts("code")
	require.NoError(t, err)
	assert.Equal(t, []string{"11", "31-33", "111110", ""}, codes)
	assert.Equal(t, []bool{false, false, false, true}, missing)
}

func TestParseFileXLSX_SheetByName(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "book.xlsx")
	writeWorkbook(t, p, map[string][][]any{
		"data": {{"state"}, {"CA"}},
	})

	_, err := parser.ParseFile(p, parser.Options{Sheet: "missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Available sheets: data")

	tbl, err := parser.ParseFile(p, parser.Options{Sheet: "DATA"})
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Nrow())
}

func TestParseFileUnsupported(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(p, []byte("hello"), 0o644))
	_, err := parser.ParseFile(p, parser.Options{})
	assert.ErrorIs(t, err, parser.ErrUnsupported)
}
