package csvio

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bomwerk/bomwerk/internal/plm/plmerr"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// ImportResult accumulates the three per-row outcome lists every importer
// returns. Invalid rows land in Errors and the import continues.
type ImportResult struct {
	Successes []string `json:"successes"`
	Warnings  []string `json:"warnings"`
	Errors    []string `json:"errors"`
}

func (r *ImportResult) successf(format string, args ...interface{}) {
	r.Successes = append(r.Successes, fmt.Sprintf(format, args...))
}

func (r *ImportResult) warnf(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *ImportResult) errorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// decode turns raw import bytes into UTF-8 text. UTF-16 byte-order marks
// are honored, a UTF-8 BOM is stripped, and anything else that is not
// valid UTF-8 falls back to Windows-1252, which covers the usual
// spreadsheet exports. A transcoding failure fails the whole import.
func decode(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}), bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		out, err := dec.Bytes(data)
		if err != nil {
			return nil, plmerr.Validationf("file is not valid UTF-16: %v", err)
		}
		return out, nil
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return data[3:], nil
	case utf8.Valid(data):
		return data, nil
	default:
		out, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return nil, plmerr.Validationf("file encoding is not recognized: %v", err)
		}
		return out, nil
	}
}

// sniffDelimiter picks the dialect from the first line: whichever of
// tab, semicolon, comma appears most, comma on a blank tie.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	best, bestCount := ',', bytes.Count(line, []byte{','})
	if n := bytes.Count(line, []byte{';'}); n > bestCount {
		best, bestCount = ';', n
	}
	if n := bytes.Count(line, []byte{'\t'}); n > bestCount {
		best = '\t'
	}
	return rune(best)
}

// ReadTable decodes an import file into a lowercased header row and its
// data rows. Short rows are padded to the header width so cell lookups
// never go out of range.
func ReadTable(data []byte) ([]string, [][]string, error) {
	text, err := decode(data)
	if err != nil {
		return nil, nil, err
	}
	reader := csv.NewReader(bytes.NewReader(text))
	reader.Comma = sniffDelimiter(text)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, plmerr.Validationf("cannot parse file: %v", err)
	}
	if len(rows) == 0 {
		return nil, nil, plmerr.Validationf("file is empty")
	}
	header := rows[0]
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}
	body := rows[1:]
	for i := range body {
		for len(body[i]) < len(header) {
			body[i] = append(body[i], "")
		}
	}
	return header, body, nil
}

// row pairs a header with one data row for cell access by column name.
type row struct {
	schema *CSVHeaders
	header []string
	cells  []string
}

// get returns the trimmed cell under the column owning name, "" when the
// column is absent.
func (r *row) get(name string) string {
	h := r.schema.find(name)
	if h == nil {
		return ""
	}
	for i, col := range r.header {
		if i < len(r.cells) && h.matches(col) {
			return strings.TrimSpace(r.cells[i])
		}
	}
	return ""
}

// has reports whether the column is present in the header at all.
func (r *row) has(name string) bool {
	return r.schema.CountMatches(r.header, name) > 0
}

// truthy interprets the loose boolean vocabulary spreadsheets produce.
func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "y", "x", "yes", "true", "t", "on":
		return true
	}
	return false
}
