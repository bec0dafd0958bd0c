// Package source reads raw participant tables from CSV files, HTTP
// endpoints and Postgres. It performs no cleaning beyond CSV decoding;
// see package normalize for that.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"aram-stats/internal/domain"
)

var ErrEmptyInput = errors.New("input has no header row")

// ReadCSV decodes a header-first CSV stream. Ragged rows are accepted; the
// normalizer pads short rows with empty cells.
func ReadCSV(r io.Reader) (*domain.RawTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	table := &domain.RawTable{Columns: header}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row %d: %w", len(table.Rows)+2, err)
		}
		table.Rows = append(table.Rows, rec)
	}
	return table, nil
}

func ReadFile(path string) (*domain.RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return ReadCSV(f)
}

// IsURL reports whether location should be fetched over HTTP.
func IsURL(location string) bool {
	l := strings.ToLower(location)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}
