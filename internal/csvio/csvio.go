// Package csvio reads uploaded CSV and XLSX files into (headers, rows)
// tables, combines multi-file uploads, and generates the export CSV in
// the fixed canonical column order.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/moovs/dataprep/internal/schema"
)

// ErrEmptyFile is returned for uploads with no header row.
var ErrEmptyFile = errors.New("empty file")

// Table is one parsed upload: a header row plus data rows. Rows that are
// entirely blank are dropped at parse time.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Parse reads a CSV stream. Quoting is lenient and ragged rows are
// accepted; dispatch system exports are rarely strict RFC 4180.
func Parse(r io.Reader) (Table, error) {
	reader := csv.NewReader(stripBOM(r))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return Table{}, ErrEmptyFile
		}
		return Table{}, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("read row: %w", err)
		}
		if !blankRow(row) {
			rows = append(rows, row)
		}
	}
	return Table{Headers: header, Rows: rows}, nil
}

// ParseXLSX reads the first sheet of an XLSX workbook as a table.
func ParseXLSX(r io.Reader) (Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Table{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Table{}, ErrEmptyFile
	}
	all, err := f.GetRows(sheets[0])
	if err != nil {
		return Table{}, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(all) == 0 {
		return Table{}, ErrEmptyFile
	}

	header := all[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	var rows [][]string
	for _, row := range all[1:] {
		if !blankRow(row) {
			rows = append(rows, row)
		}
	}
	return Table{Headers: header, Rows: rows}, nil
}

// Combine merges multi-file uploads into one table under the first
// file's headers. A later file is rejected when more than half of its
// headers are unknown to the first file; that usually means a different
// export type was mixed in.
func Combine(tables []Table) (Table, error) {
	if len(tables) == 0 {
		return Table{}, ErrEmptyFile
	}
	ref := tables[0]
	known := make(map[string]struct{}, len(ref.Headers))
	for _, h := range ref.Headers {
		known[h] = struct{}{}
	}

	combined := Table{Headers: ref.Headers, Rows: append([][]string{}, ref.Rows...)}
	for i, t := range tables[1:] {
		mismatched := 0
		for _, h := range t.Headers {
			if _, ok := known[h]; !ok {
				mismatched++
			}
		}
		if mismatched > 0 && float64(mismatched) > float64(len(ref.Headers))*0.5 {
			return Table{}, fmt.Errorf("file %d has different headers; ensure all files are from the same export type", i+2)
		}
		combined.Rows = append(combined.Rows, t.Rows...)
	}
	return combined, nil
}

// Generate renders rows as CSV text under the given headers. Cells
// containing a comma, quote, or newline are quoted with internal quotes
// doubled.
func Generate(headers []string, rows [][]string) string {
	var b strings.Builder
	writeRow(&b, headers)
	for _, row := range rows {
		b.WriteByte('\n')
		writeRow(&b, row)
	}
	return b.String()
}

// GenerateContacts renders contact rows in the canonical column order.
func GenerateContacts(rows []schema.Contact) string {
	out := make([][]string, len(rows))
	for i := range rows {
		out[i] = rows[i].ExportRow()
	}
	return Generate(schema.ContactHeaders, out)
}

// GenerateReservations renders reservation rows in the canonical column
// order.
func GenerateReservations(rows []schema.Reservation) string {
	out := make([][]string, len(rows))
	for i := range rows {
		out[i] = rows[i].ExportRow()
	}
	return Generate(schema.ReservationHeaders, out)
}

// ExportFilename names the download with a workflow prefix and a
// millisecond timestamp.
func ExportFilename(w schema.Workflow, now time.Time) string {
	prefix := "moovs-contacts"
	if w == schema.WorkflowReservations {
		prefix = "moovs-reservations"
	}
	return fmt.Sprintf("%s-%d.csv", prefix, now.UnixMilli())
}

func writeRow(b *strings.Builder, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		if strings.ContainsAny(cell, ",\"\n") {
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(cell, `"`, `""`))
			b.WriteByte('"')
		} else {
			b.WriteString(cell)
		}
	}
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func stripBOM(r io.Reader) io.Reader {
	buf := make([]byte, 3)
	n, err := r.Read(buf)
	if err != nil || n < 3 {
		return io.MultiReader(strings.NewReader(string(buf[:n])), r)
	}
	if buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF {
		return r
	}
	return io.MultiReader(strings.NewReader(string(buf[:n])), r)
}
