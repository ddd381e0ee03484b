package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/bigtable-cli/internal/table"
	"github.com/KaramelBytes/bigtable-cli/internal/utils"
)

// Options controls how a tabular file is read.
type Options struct {
	// Delimiter for CSV. If 0, picked from the file extension.
	Delimiter rune
	// Sheet selects an XLSX sheet by name.
	Sheet string
	// SheetIndex is the 1-based XLSX sheet used when Sheet is empty.
	SheetIndex int
}

// Parser loads a Table from a supported file format.
type Parser interface {
	CanParse(filename string) bool
	Parse(r io.Reader, opt Options) (*table.Table, error)
}

var registry []Parser

// Register adds a parser implementation to the registry.
func Register(p Parser) {
	registry = append(registry, p)
}

// ErrUnsupported indicates a format is not supported.
var ErrUnsupported = errors.New("unsupported table format")

// ParseFile selects a parser based on filename and loads the file into a Table.
func ParseFile(path string, opt Options) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()
	for _, p := range registry {
		if !p.CanParse(path) {
			continue
		}
		if opt.Delimiter == 0 {
			opt.Delimiter = sniffDelimiter(path)
		}
		tbl, err := p.Parse(f, opt)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
		}
		slog.Debug("loaded table",
			slog.String("file", filepath.Base(path)),
			slog.Int("rows", tbl.Nrow()),
			slog.Int("columns", len(tbl.Names())))
		return tbl, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
}

// WriteCSVFile writes the table to path atomically.
func WriteCSVFile(path string, tbl *table.Table) error {
	var buf bytes.Buffer
	if err := tbl.WriteCSV(&buf); err != nil {
		return err
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}

func init() {
	Register(csvParser{})
	Register(xlsxParser{})
}
