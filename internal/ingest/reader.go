// Package ingest reads the CSV tables a matching run works on and writes the
// run's result files.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/listmatch/internal/match"
)

// Table is one CSV file: its header row and data rows in file order.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// ReadTable loads a CSV file. The first row is the header; short data rows
// are padded with empty cells and long ones keep only the headed columns.
func ReadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	headers, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("file %s has no header row", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	t := &Table{Name: filepath.Base(path), Headers: headers}
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if len(row) < len(headers) {
			padded := make([]string, len(headers))
			copy(padded, row)
			row = padded
		}
		t.Rows = append(t.Rows, row[:len(headers)])
	}
	return t, nil
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Data converts the table into the runner's input form. Rows shorter than
// the header row read as empty cells, so tables built directly from request
// payloads are safe too.
func (t *Table) Data() match.TableData {
	rows := make([]map[string]string, len(t.Rows))
	for i, row := range t.Rows {
		m := make(map[string]string, len(t.Headers))
		for j, h := range t.Headers {
			var v string
			if j < len(row) {
				v = row[j]
			}
			m[h] = v
		}
		rows[i] = m
	}
	return match.TableData{Name: t.Name, Headers: t.Headers, Rows: rows}
}

// AssignRoles orders two tables by size: the larger table is the master
// list, the smaller the input. A tie keeps the argument order.
func AssignRoles(a, b *Table) (input, master *Table) {
	if b.Len() >= a.Len() {
		return a, b
	}
	return b, a
}

// ResultsDir is the timestamped output directory for an input file's run.
func ResultsDir(inputPath string, now time.Time) string {
	base := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
	return fmt.Sprintf("%s_RESULTS_%s", base, now.Format("20060102_150405"))
}
