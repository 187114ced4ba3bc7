package dataset

import (
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	cferrors "github.com/matzehuels/cancerflow/pkg/errors"
)

// DefaultPageSize is the number of rows per page in the dashboard data table.
const DefaultPageSize = 10

// MaxPageSize caps the page size accepted from clients.
const MaxPageSize = 1000

// LoadCSV reads a CSV file into a Table.
// The first record is the header.
func LoadCSV(path string) (*Table, error) {
	if err := cferrors.ValidateDataPath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, cferrors.Wrap(cferrors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV decodes CSV data from r into a Table.
// Header names are trimmed of surrounding whitespace and a UTF-8 byte order
// mark; cells are kept verbatim.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, cferrors.New(cferrors.ErrCodeInvalidInput, "csv has no header row")
	}
	if err != nil {
		return nil, cferrors.Wrap(cferrors.ErrCodeInvalidInput, err, "read csv header")
	}
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, cferrors.Wrap(cferrors.ErrCodeInvalidInput, err, "read csv")
		}
		rows = append(rows, rec)
	}
	return NewTable(cols, rows)
}

// WriteCSV encodes t as CSV, header first.
func WriteCSV(t *Table, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}
