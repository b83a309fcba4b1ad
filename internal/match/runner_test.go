package match

import (
	"errors"
	"testing"

	"github.com/listmatch/internal/schema"
)

func TestRunnerFullPipeline(t *testing.T) {
	input := TableData{
		Name:    "prospects.csv",
		Headers: []string{"First Name", "Last Name", "Address1", "City", "State", "Zip"},
		Rows: []map[string]string{
			{"First Name": "Ann", "Last Name": "Lee", "Address1": "50 Oak Road", "City": "Mystic", "State": "CT", "Zip": "06355"},
			{"First Name": "Bob", "Last Name": "Stone", "Address1": "9 Nowhere Blvd", "City": "Elsewhere", "State": "VT", "Zip": "05001"},
		},
	}
	master := TableData{
		Name:    "dealer.csv",
		Headers: []string{"Name", "FullAddress", "Opens"},
		Rows: []map[string]string{
			{"Name": "Ann Lee", "FullAddress": "50 OAK RD, MYSTIC, CT 06355", "Opens": "x"},
			{"Name": "Carl Reyes", "FullAddress": "14 SHORE DR, GROTON, CT 06340", "Opens": ""},
		},
	}

	res, err := NewRunner(serialOptions()).Run(input, master, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !res.Report.FullName.Enabled || !res.Report.LastNameAddress.Enabled || !res.Report.FullAddress.Enabled {
		t.Fatalf("report = %+v, want all strategies enabled", res.Report)
	}
	if res.OpensMissing {
		t.Error("OpensMissing = true with an Opens column present")
	}

	for _, s := range Strategies() {
		recs := res.Matched[s]
		if len(recs) != 1 {
			t.Fatalf("%s matches = %+v, want exactly Ann Lee", s, recs)
		}
		if recs[0].InputIndex != 0 || recs[0].MasterIndex != 0 {
			t.Errorf("%s matched rows %d->%d, want 0->0", s, recs[0].InputIndex, recs[0].MasterIndex)
		}
	}

	if res.Masters[0].Opens != "x" || res.Masters[1].Opens != "" {
		t.Errorf("master opens = %q, %q, want x and empty", res.Masters[0].Opens, res.Masters[1].Opens)
	}

	unmatched := res.Unmatched()
	if len(unmatched) != 1 || unmatched[0] != 1 {
		t.Errorf("Unmatched() = %v, want [1]", unmatched)
	}
}

func TestRunnerUnitMismatch(t *testing.T) {
	input := TableData{
		Headers: []string{"Last_Name", "Address1", "Address2", "City", "State", "Zip"},
		Rows: []map[string]string{
			{"Last_Name": "Doe", "Address1": "123 Main St", "Address2": "Apt 5", "City": "Town", "State": "CT", "Zip": "06001"},
		},
	}
	master := TableData{
		Headers: []string{"Last_Name", "FullAddress"},
		Rows: []map[string]string{
			{"Last_Name": "Doe", "FullAddress": "123 MAIN ST APT 6, TOWN, CT 06001"},
		},
	}

	res, err := NewRunner(serialOptions()).Run(input, master, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Stripping units lines both addresses up for the last name strategy.
	if got := res.Matched[LastNameAddress]; len(got) != 1 {
		t.Errorf("LastNameAddress matches = %+v, want 1", got)
	}
	// The full address strategy keeps APT 5 and APT 6 apart.
	if got := res.Matched[FullAddress]; len(got) != 0 {
		t.Errorf("FullAddress matches = %+v, want none", got)
	}
	if reason := res.Skipped[FullName]; reason == "" {
		t.Error("FullName skipped without a reason")
	}
}

func TestRunnerSkipsUnsupportedStrategies(t *testing.T) {
	input := TableData{
		Headers: []string{"Name"},
		Rows:    []map[string]string{{"Name": "Alan Turing"}},
	}
	master := TableData{
		Headers: []string{"Name"},
		Rows:    []map[string]string{{"Name": "ALAN TURING"}},
	}

	res, err := NewRunner(serialOptions()).Run(input, master, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := res.Matched[FullName]; len(got) != 1 || got[0].Score != 100 {
		t.Errorf("FullName matches = %+v, want one exact match", got)
	}
	if _, ran := res.Matched[LastNameAddress]; ran {
		t.Error("LastNameAddress ran without address fields")
	}
	if reason := res.Skipped[LastNameAddress]; reason == "" {
		t.Error("LastNameAddress skipped without a reason")
	}
	if reason := res.Skipped[FullAddress]; reason == "" {
		t.Error("FullAddress skipped without a reason")
	}
}

func TestRunnerAmbiguousSchema(t *testing.T) {
	input := TableData{
		Headers: []string{"First Name", "GivenName", "Last_Name"},
		Rows:    []map[string]string{},
	}
	master := TableData{
		Headers: []string{"Name"},
		Rows:    []map[string]string{},
	}

	_, err := NewRunner(serialOptions()).Run(input, master, nil)
	var ambErr *schema.AmbiguousHeaderError
	if !errors.As(err, &ambErr) {
		t.Fatalf("Run() error = %v, want AmbiguousHeaderError", err)
	}
	if ambErr.Field != schema.FieldFirstName {
		t.Errorf("ambiguous field = %s, want First_Name", ambErr.Field)
	}
}

func TestRunnerUnknownStrategy(t *testing.T) {
	tables := TableData{
		Headers: []string{"Name"},
		Rows:    []map[string]string{{"Name": "A B"}},
	}

	_, err := NewRunner(serialOptions()).Run(tables, tables, []Strategy{Strategy("Metaphone")})
	var unknown *UnknownStrategyError
	if !errors.As(err, &unknown) {
		t.Fatalf("Run() error = %v, want UnknownStrategyError", err)
	}
}

func TestRunnerRequestedSubset(t *testing.T) {
	input := TableData{
		Headers: []string{"First Name", "Last Name", "FullAddress"},
		Rows: []map[string]string{
			{"First Name": "Ann", "Last Name": "Lee", "FullAddress": "50 OAK RD, MYSTIC, CT 06355"},
		},
	}

	res, err := NewRunner(serialOptions()).Run(input, input, []Strategy{FullAddress})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, ran := res.Matched[FullName]; ran {
		t.Error("FullName ran but was not requested")
	}
	if got := res.Matched[FullAddress]; len(got) != 1 {
		t.Errorf("FullAddress matches = %+v, want 1", got)
	}
}
