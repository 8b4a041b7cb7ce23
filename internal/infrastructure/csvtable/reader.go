// Package csvtable reads bulk upload files into ports.Table and renders the
// downloadable upload template.
package csvtable

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/99minutos/bulk-shipping/internal/core/domain"
	"github.com/99minutos/bulk-shipping/internal/core/ports"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Read parses a CSV upload. Header names are trimmed and lower-cased and
// empty lines are skipped. A row of blank cells such as ",,,," is kept so it
// is counted and rejected like any other incomplete row. Short rows are
// padded with blanks and cells beyond the header are ignored.
//
// Any structural problem is reported as domain.ErrMalformedInput.
func Read(r io.Reader) (ports.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return ports.Table{}, fmt.Errorf("%w: read upload: %v", domain.ErrMalformedInput, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return ports.Table{}, fmt.Errorf("%w: file is empty", domain.ErrMalformedInput)
	}
	if err != nil {
		return ports.Table{}, fmt.Errorf("%w: read header: %v", domain.ErrMalformedInput, err)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.ToLower(strings.TrimSpace(h))
	}

	table := ports.Table{Columns: columns}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// *csv.ParseError already carries the physical line.
			return ports.Table{}, fmt.Errorf("%w: %v", domain.ErrMalformedInput, err)
		}
		if emptyLine(record) {
			continue
		}

		row := make(domain.RawRow, len(columns))
		for i, col := range columns {
			if col == "" {
				continue
			}
			if i < len(record) {
				row[col] = strings.TrimSpace(record[i])
			} else {
				row[col] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// emptyLine reports a line with no delimiters and nothing but whitespace.
func emptyLine(record []string) bool {
	return len(record) == 0 || (len(record) == 1 && strings.TrimSpace(record[0]) == "")
}
