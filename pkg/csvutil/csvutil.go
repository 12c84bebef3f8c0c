// Package csvutil reads and writes the CSV files exchanged with stores,
// the label vendor and the report mail. Files are written with a UTF-8
// byte order mark so Excel opens them correctly.
package csvutil

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// utf8BOM marks written files as UTF-8 for Excel.
const utf8BOM = "\uFEFF"

// File is an in-memory CSV document keyed by header.
type File struct {
	Headers []string
	Rows    []map[string]string
}

// Read loads a CSV file from disk.
func Read(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return ReadFrom(f)
}

// ReadFrom loads a CSV document from a reader. The first record is
// treated as the header row; a leading byte order mark is stripped.
func ReadFrom(r io.Reader) (*File, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	if len(records) == 0 {
		return &File{}, nil
	}

	headers := records[0]
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], utf8BOM)
	}

	file := &File{Headers: headers}
	for _, record := range records[1:] {
		row := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(record) {
				row[header] = record[i]
			}
		}
		file.Rows = append(file.Rows, row)
	}
	return file, nil
}

// Column returns all values of a named column.
func (f *File) Column(name string) ([]string, error) {
	found := false
	for _, header := range f.Headers {
		if header == name {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("column %q not found", name)
	}
	values := make([]string, 0, len(f.Rows))
	for _, row := range f.Rows {
		values = append(values, row[name])
	}
	return values, nil
}

// Write writes rows to a CSV file under the given headers. Row keys
// missing from the headers are dropped; missing values become empty cells.
func Write(path string, headers []string, rows []map[string]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	return WriteTo(f, headers, rows)
}

// WriteTo writes a CSV document with a UTF-8 byte order mark.
func WriteTo(w io.Writer, headers []string, rows []map[string]string) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("writing bom: %w", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, row := range rows {
		record := make([]string, len(headers))
		for i, header := range headers {
			record[i] = row[header]
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ParseQuantity converts a quantity cell to an integer. Store exports
// contain blanks, thousands separators and occasional decimal values;
// anything unparseable counts as zero.
func ParseQuantity(value string) int {
	cleaned := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if cleaned == "" {
		return 0
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return int(f)
}
