package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// RowReader yields spreadsheet rows one at a time. Next returns io.EOF
// after the last row.
type RowReader interface {
	Next() ([]string, error)
	Close() error
}

// Open picks a reader by file extension: .xlsx through excelize, anything
// else as CSV. sheet selects the worksheet and defaults to the first one.
func Open(path string, sheet string) (RowReader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return openXLSX(path, sheet)
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		return newCSVReader(f), nil
	}
}

type csvReader struct {
	r      *csv.Reader
	closer io.Closer
}

func newCSVReader(rc io.ReadCloser) *csvReader {
	r := csv.NewReader(rc)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return &csvReader{r: r, closer: rc}
}

func (c *csvReader) Next() ([]string, error) {
	return c.r.Read()
}

func (c *csvReader) Close() error {
	return c.closer.Close()
}

type xlsxReader struct {
	file *excelize.File
	rows *excelize.Rows
}

func openXLSX(path string, sheet string) (*xlsxReader, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.Rows(sheet)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return &xlsxReader{file: f, rows: rows}, nil
}

func (x *xlsxReader) Next() ([]string, error) {
	if !x.rows.Next() {
		if err := x.rows.Error(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	return x.rows.Columns()
}

func (x *xlsxReader) Close() error {
	return errors.Join(x.rows.Close(), x.file.Close())
}
