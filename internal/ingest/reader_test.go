package ingest

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestReadTable(t *testing.T) {
	path := writeFile(t, "input.csv",
		"First_Name,Last_Name,City\n"+
			"Ann,Lee,Mystic\n"+
			"Bob,Stone\n"+
			"Cam,Reyes,Groton,extra\n")

	table, err := ReadTable(path)
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}

	if table.Name != "input.csv" {
		t.Errorf("Name = %q, want input.csv", table.Name)
	}
	wantHeaders := []string{"First_Name", "Last_Name", "City"}
	if !reflect.DeepEqual(table.Headers, wantHeaders) {
		t.Errorf("Headers = %v, want %v", table.Headers, wantHeaders)
	}
	wantRows := [][]string{
		{"Ann", "Lee", "Mystic"},
		{"Bob", "Stone", ""},
		{"Cam", "Reyes", "Groton"},
	}
	if !reflect.DeepEqual(table.Rows, wantRows) {
		t.Errorf("Rows = %v, want %v", table.Rows, wantRows)
	}
}

func TestReadTableEmptyFile(t *testing.T) {
	path := writeFile(t, "empty.csv", "")
	if _, err := ReadTable(path); err == nil {
		t.Error("ReadTable() of empty file succeeded, want error")
	}
}

func TestReadTableMissingFile(t *testing.T) {
	if _, err := ReadTable(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("ReadTable() of missing file succeeded, want error")
	}
}

func TestTableData(t *testing.T) {
	table := &Table{
		Name:    "x.csv",
		Headers: []string{"Name", "City"},
		Rows:    [][]string{{"Ann Lee", "Mystic"}},
	}

	data := table.Data()
	if data.Name != "x.csv" || len(data.Rows) != 1 {
		t.Fatalf("Data() = %+v", data)
	}
	if data.Rows[0]["Name"] != "Ann Lee" || data.Rows[0]["City"] != "Mystic" {
		t.Errorf("Data() row = %v", data.Rows[0])
	}
}

func TestAssignRoles(t *testing.T) {
	small := &Table{Rows: [][]string{{"a"}}}
	big := &Table{Rows: [][]string{{"a"}, {"b"}, {"c"}}}

	input, master := AssignRoles(big, small)
	if input != small || master != big {
		t.Error("AssignRoles() did not make the larger table the master")
	}

	input, master = AssignRoles(small, big)
	if input != small || master != big {
		t.Error("AssignRoles() swapped roles for already ordered tables")
	}

	a := &Table{Rows: [][]string{{"a"}}}
	b := &Table{Rows: [][]string{{"b"}}}
	input, master = AssignRoles(a, b)
	if input != a || master != b {
		t.Error("AssignRoles() tie did not keep argument order")
	}
}

func TestResultsDir(t *testing.T) {
	now := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	got := ResultsDir(filepath.Join("data", "prospects.csv"), now)
	want := filepath.Join("data", "prospects_RESULTS_20260314_150926")
	if got != want {
		t.Errorf("ResultsDir() = %q, want %q", got, want)
	}
}
