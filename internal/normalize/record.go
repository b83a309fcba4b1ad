package normalize

import (
	"strings"

	"github.com/listmatch/internal/schema"
)

// Record is one normalized row ready for matching. Text fields are
// upper-cased with collapsed whitespace. Index is the zero-based position of
// the row in its source table and is stable across the whole run.
type Record struct {
	Index       int
	FirstName   string
	LastName    string
	AddressLine string
	City        string
	State       string
	Zip         string
	FullAddress string
	Opens       string
}

// Name returns the record's display name.
func (r Record) Name() string {
	return CollapseSpaces(r.FirstName + " " + r.LastName)
}

// opensSynonyms matches the master-side opens column by normalized header.
var opensSynonyms = map[string]struct{}{
	"opens":   {},
	"open":    {},
	"opened":  {},
	"opening": {},
}

// NormalizeInput converts raw input rows into records using the detected
// mapping.
func NormalizeInput(rows []map[string]string, mapping schema.Mapping) []Record {
	records := make([]Record, len(rows))
	for i, row := range rows {
		records[i] = normalizeRow(i, row, mapping)
	}
	return records
}

// NormalizeMaster converts raw master rows into records and pulls each row's
// opens flag from the first opens-like column. A cell counts as an open only
// when it holds exactly "x" after trimming, case-insensitively. The second
// result reports that no opens column exists, so output can leave the Opens
// column blank instead of inventing values.
func NormalizeMaster(rows []map[string]string, headers []string, mapping schema.Mapping) ([]Record, bool) {
	opensHeader := ""
	for _, h := range headers {
		if _, ok := opensSynonyms[schema.NormalizeHeader(h)]; ok {
			opensHeader = h
			break
		}
	}

	records := make([]Record, len(rows))
	for i, row := range rows {
		rec := normalizeRow(i, row, mapping)
		if opensHeader != "" && strings.ToLower(strings.TrimSpace(row[opensHeader])) == "x" {
			rec.Opens = "x"
		}
		records[i] = rec
	}
	return records, opensHeader == ""
}

func normalizeRow(idx int, row map[string]string, mapping schema.Mapping) Record {
	rec := Record{Index: idx}

	full := Clean(sourceValue(row, mapping, schema.FieldFullName))

	rec.FirstName = Clean(sourceValue(row, mapping, schema.FieldFirstName))
	rec.LastName = Clean(sourceValue(row, mapping, schema.FieldLastName))
	if rec.FirstName == "" && derivationOf(mapping, schema.FieldFirstName) == schema.DeriveSplitFirst {
		rec.FirstName, _ = SplitFullName(full)
	}
	if rec.LastName == "" && derivationOf(mapping, schema.FieldLastName) == schema.DeriveSplitLast {
		_, rec.LastName = SplitFullName(full)
	}

	addr1 := Clean(sourceValue(row, mapping, schema.FieldAddress1))
	addr2 := Clean(sourceValue(row, mapping, schema.FieldAddress2))
	rec.AddressLine = CollapseSpaces(addr1 + " " + addr2)
	rec.City = Clean(sourceValue(row, mapping, schema.FieldCity))
	rec.State = Clean(sourceValue(row, mapping, schema.FieldState))
	rec.Zip = Clean(sourceValue(row, mapping, schema.FieldZip))

	rec.FullAddress = Clean(sourceValue(row, mapping, schema.FieldFullAddress))
	if rec.FullAddress == "" && derivationOf(mapping, schema.FieldFullAddress) == schema.DeriveConcat {
		// The composite form needs every part; a partial address would
		// score against complete ones as if the street were different.
		if addr1 != "" && rec.City != "" && rec.State != "" && rec.Zip != "" {
			rec.FullAddress = rec.AddressLine + ", " + rec.City + ", " + rec.State + " " + rec.Zip
		}
	}

	return rec
}

func sourceValue(row map[string]string, mapping schema.Mapping, f schema.CanonicalField) string {
	fm, ok := mapping[f]
	if !ok || fm.Source == "" {
		return ""
	}
	return row[fm.Source]
}

func derivationOf(mapping schema.Mapping, f schema.CanonicalField) string {
	return mapping[f].Derivation
}
