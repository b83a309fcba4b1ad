package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/zap"

	"github.com/listmatch/internal/match"
	"github.com/listmatch/internal/schema"
	"github.com/listmatch/internal/store"
)

func postJSON(t *testing.T, v interface{}) *http.Request {
	t.Helper()
	body, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	return httptest.NewRequest("POST", "/", bytes.NewReader(body))
}

func TestSchemaDetect(t *testing.T) {
	h := &SchemaHandler{Logger: zap.NewNop()}

	req := postJSON(t, DetectRequest{Headers: []string{"First Name", "Surname", "Address", "Town", "State", "Zip Code", "Color"}})
	w := httptest.NewRecorder()
	h.Detect(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp DetectResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got := resp.Mapping[schema.FieldLastName].Source; got != "Surname" {
		t.Errorf("Last_Name source = %q, want %q", got, "Surname")
	}
	if !resp.Report.FullName.Enabled {
		t.Errorf("FullName should be enabled")
	}
	if len(resp.Unmapped) != 1 || resp.Unmapped[0].Header != "Color" {
		t.Errorf("Unmapped = %+v, want just Color", resp.Unmapped)
	}
}

func TestSchemaDetectAmbiguous(t *testing.T) {
	h := &SchemaHandler{Logger: zap.NewNop()}

	req := postJSON(t, DetectRequest{Headers: []string{"First Name", "GivenName", "Last Name"}})
	w := httptest.NewRecorder()
	h.Detect(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
	}
	var resp struct {
		Error string `json:"error"`
		Field string `json:"field"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Field != string(schema.FieldFirstName) {
		t.Errorf("field = %q, want %q", resp.Field, schema.FieldFirstName)
	}
}

func TestSchemaDetectBadRequests(t *testing.T) {
	h := &SchemaHandler{Logger: zap.NewNop()}

	tests := []struct {
		name string
		body string
	}{
		{"invalid JSON", "{not json"},
		{"no headers", `{"headers": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			h.Detect(w, req)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
		})
	}
}

func matchRequest() MatchRequest {
	return MatchRequest{
		Input: TablePayload{
			Name:    "input.csv",
			Headers: []string{"First Name", "Last Name", "Address", "City", "State", "Zip"},
			Rows: [][]string{
				{"JOHN", "SMITH", "123 MAIN ST", "MYSTIC", "CT", "06355"},
			},
		},
		Master: TablePayload{
			Name:    "master.csv",
			Headers: []string{"FName", "LName", "StreetAddress", "Town", "Province", "PostalCode", "Opens"},
			Rows: [][]string{
				{"JOHN", "SMITH", "123 MAIN STREET", "MYSTIC", "CT", "06355", "x"},
				{"ALICE", "JONES", "77 OAK RD", "NOANK", "CT", "06340", ""},
			},
		},
	}
}

func TestMatchRun(t *testing.T) {
	h := &MatchHandler{Opts: match.DefaultOptions(), Logger: zap.NewNop()}

	req := postJSON(t, matchRequest())
	w := httptest.NewRecorder()
	h.Run(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
	var resp MatchResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.InputRows != 1 || resp.MasterRows != 2 {
		t.Errorf("rows = %d/%d, want 1/2", resp.InputRows, resp.MasterRows)
	}
	if resp.OpensMissing {
		t.Errorf("OpensMissing = true, want false")
	}

	full, ok := resp.Results[string(match.FullName)]
	if !ok {
		t.Fatalf("no FullName result")
	}
	if len(full.Matches) != 1 {
		t.Fatalf("FullName matches = %d, want 1", len(full.Matches))
	}
	if full.Matches[0].Score != 100 {
		t.Errorf("FullName score = %v, want 100", full.Matches[0].Score)
	}
	if full.Matches[0].MasterIndex != 0 {
		t.Errorf("MasterIndex = %d, want 0", full.Matches[0].MasterIndex)
	}

	addr, ok := resp.Results[string(match.FullAddress)]
	if !ok {
		t.Fatalf("no FullAddress result")
	}
	if len(addr.Matches) != 1 {
		t.Errorf("FullAddress matches = %d, want 1", len(addr.Matches))
	}
}

func TestMatchRunThresholdOverride(t *testing.T) {
	h := &MatchHandler{Opts: match.DefaultOptions(), Logger: zap.NewNop()}

	body := matchRequest()
	body.Strategies = []string{"FullAddress"}
	body.Thresholds = map[string]float64{"FullAddress": 99}

	req := postJSON(t, body)
	w := httptest.NewRecorder()
	h.Run(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
	var resp MatchResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("results = %d strategies, want 1", len(resp.Results))
	}
	addr := resp.Results[string(match.FullAddress)]
	if addr.Threshold != 99 {
		t.Errorf("threshold = %v, want 99", addr.Threshold)
	}
	if len(addr.Matches) != 0 {
		t.Errorf("matches = %d, want 0 at threshold 99", len(addr.Matches))
	}
}

func TestMatchRunUnknownStrategy(t *testing.T) {
	h := &MatchHandler{Opts: match.DefaultOptions(), Logger: zap.NewNop()}

	body := matchRequest()
	body.Strategies = []string{"Soundex"}

	req := postJSON(t, body)
	w := httptest.NewRecorder()
	h.Run(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestMatchRunAmbiguousSchema(t *testing.T) {
	h := &MatchHandler{Opts: match.DefaultOptions(), Logger: zap.NewNop()}

	body := matchRequest()
	body.Input.Headers = []string{"First Name", "GivenName", "Last Name"}
	body.Input.Rows = [][]string{{"JOHN", "JOHN", "SMITH"}}

	req := postJSON(t, body)
	w := httptest.NewRecorder()
	h.Run(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
	}
}

func TestMatchRunSaveWithoutStore(t *testing.T) {
	h := &MatchHandler{Opts: match.DefaultOptions(), Logger: zap.NewNop()}

	body := matchRequest()
	body.Save = true

	req := postJSON(t, body)
	w := httptest.NewRecorder()
	h.Run(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}

func TestRunsList(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	rows := sqlmock.NewRows([]string{"id", "created_at", "input_name", "master_name", "strategy", "threshold", "matches"}).
		AddRow("5f2b", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), "input.csv", "master.csv", "FullName", 85.0, 7)
	mock.ExpectQuery("SELECT id, created_at").WithArgs(5).WillReturnRows(rows)

	h := &RunsHandler{Store: store.New(db), Logger: zap.NewNop()}

	req := httptest.NewRequest("GET", "/?limit=5", nil)
	w := httptest.NewRecorder()
	h.List(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
	var resp struct {
		Runs []store.RunSummary `json:"runs"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Runs) != 1 || resp.Runs[0].Strategy != "FullName" {
		t.Errorf("runs = %+v, want one FullName run", resp.Runs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRunsListWithoutStore(t *testing.T) {
	h := &RunsHandler{Logger: zap.NewNop()}

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	h.List(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}

func TestRunsListBadLimit(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	h := &RunsHandler{Store: store.New(db), Logger: zap.NewNop()}

	req := httptest.NewRequest("GET", "/?limit=zero", nil)
	w := httptest.NewRecorder()
	h.List(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}
