package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/listmatch/internal/match"
	"github.com/listmatch/internal/normalize"
)

// resultHeaders is the column layout of a strategy results file. Opens stays
// rightmost so open activity reads off the end of each row.
var resultHeaders = []string{
	"Match Score",
	"Sheet A Row",
	"Sheet B Row",
	"Name A",
	"Name B",
	"Address A",
	"Address B",
	"Opens",
}

// rowOffset converts a zero-based record index to its spreadsheet row number:
// one for the header row plus one for 1-based counting.
const rowOffset = 2

// WriteResults writes one results_<Strategy>.csv per strategy that produced
// matches, rows sorted by score descending. Opens values come from the
// matched master record and stay blank when the master table has no opens
// column. The written paths are returned in strategy order.
func WriteResults(dir string, matched map[match.Strategy][]match.Record, masters []normalize.Record, opensMissing bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir %s: %w", dir, err)
	}

	var written []string
	for _, strategy := range match.Strategies() {
		records := matched[strategy]
		if len(records) == 0 {
			continue
		}
		path := filepath.Join(dir, fmt.Sprintf("results_%s.csv", strategy))
		if err := writeStrategyFile(path, records, masters, opensMissing); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func writeStrategyFile(path string, records []match.Record, masters []normalize.Record, opensMissing bool) error {
	sorted := make([]match.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	w.Write(resultHeaders)
	for _, rec := range sorted {
		opens := ""
		if !opensMissing && rec.MasterIndex >= 0 && rec.MasterIndex < len(masters) {
			opens = masters[rec.MasterIndex].Opens
		}
		w.Write([]string{
			strconv.FormatFloat(rec.Score, 'f', 2, 64),
			strconv.Itoa(rec.InputIndex + rowOffset),
			strconv.Itoa(rec.MasterIndex + rowOffset),
			rec.InputName,
			rec.MasterName,
			rec.InputAddress,
			rec.MasterAddress,
			opens,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// WriteUnmatched writes the input rows no strategy matched, each prefixed
// with its original spreadsheet row number. Nothing is written when every
// row matched; the returned path is empty in that case.
func WriteUnmatched(dir string, input *Table, rows []int) (string, error) {
	if len(rows) == 0 {
		return "", nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir %s: %w", dir, err)
	}

	path := filepath.Join(dir, "unmatched_rows.csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	w.Write(append([]string{"Original_Row_Number"}, input.Headers...))
	for _, idx := range rows {
		if idx < 0 || idx >= len(input.Rows) {
			continue
		}
		w.Write(append([]string{strconv.Itoa(idx + rowOffset)}, input.Rows[idx]...))
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, f.Close()
}
