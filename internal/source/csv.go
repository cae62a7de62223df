// Package source reads tabular event records.
package source

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jittakal/xesgen/internal/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is a header plus its data rows.
type Table struct {
	Header []string
	Rows   [][]string
}

// Reader reads delimited text. The zero value reads RFC 4180 CSV.
type Reader struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune
	// StripQuotes removes every '"' from a line and splits on Comma
	// without quote handling.
	StripQuotes bool
	// TrimSpace trims surrounding white space from every field.
	TrimSpace bool
}

// NewReader returns a Reader for the given delimiter.
func NewReader(comma rune) *Reader {
	return &Reader{Comma: comma}
}

// Read reads a header line followed by data rows. Row arity is not checked
// here. Blank lines are skipped.
func (r *Reader) Read(in io.Reader) (*Table, error) {
	br := bufio.NewReader(in)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return nil, fmt.Errorf("failed to skip byte order mark: %w", err)
		}
	}

	var (
		records [][]string
		err     error
	)
	if r.StripQuotes {
		records, err = r.readLines(br)
	} else {
		records, err = r.readCSV(br)
	}
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, errors.ErrEmptyInput
	}

	if r.TrimSpace {
		for _, rec := range records {
			for i := range rec {
				rec[i] = strings.TrimSpace(rec[i])
			}
		}
	}

	return &Table{Header: records[0], Rows: records[1:]}, nil
}

func (r *Reader) comma() rune {
	if r.Comma == 0 {
		return ','
	}
	return r.Comma
}

func (r *Reader) readCSV(in io.Reader) ([][]string, error) {
	cr := csv.NewReader(in)
	cr.Comma = r.comma()
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse csv: %w", errors.ErrMalformedInput, err)
	}
	return records, nil
}

func (r *Reader) readLines(in io.Reader) ([][]string, error) {
	sep := string(r.comma())
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var records [][]string
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		line = strings.ReplaceAll(line, `"`, "")
		records = append(records, strings.Split(line, sep))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read lines: %w", err)
	}
	return records, nil
}

// ReadFile reads the file at path.
func (r *Reader) ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	t, err := r.Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return t, nil
}
