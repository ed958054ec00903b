package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/core"
)

// fakeSheets serves the subset of the Sheets v4 REST API the client uses,
// backed by a single tab held in memory.
type fakeSheets struct {
	mu           sync.Mutex
	tabExists    bool
	rows         [][]interface{}
	failGet      int
	batchUpdates int
	headerWrites int
	appendQuery  []string
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	if strings.HasSuffix(path, ":batchUpdate") {
		f.batchUpdates++
		f.tabExists = true
		writeJSON(w, map[string]any{})
		return
	}

	i := strings.Index(path, "/values/")
	if i < 0 {
		http.NotFound(w, r)
		return
	}
	rng := path[i+len("/values/"):]

	if f.failGet != 0 && r.Method == http.MethodGet {
		writeError(w, f.failGet, "backend unavailable")
		return
	}
	if !f.tabExists {
		writeError(w, http.StatusBadRequest, "Unable to parse range: "+rng)
		return
	}

	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(rng, ":append"):
		var body gsheet.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		f.appendQuery = append(f.appendQuery, r.URL.Query().Get("valueInputOption")+"/"+r.URL.Query().Get("insertDataOption"))
		f.rows = append(f.rows, body.Values...)
		writeJSON(w, map[string]any{"updates": map[string]any{"updatedRange": fmt.Sprintf("Transactions!A%d:D%d", len(f.rows), len(f.rows))}})
	case r.Method == http.MethodPut:
		var body gsheet.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		f.headerWrites++
		if len(f.rows) == 0 {
			f.rows = append(f.rows, body.Values[0])
		} else {
			f.rows[0] = body.Values[0]
		}
		writeJSON(w, map[string]any{})
	case r.Method == http.MethodGet:
		values := f.rows
		if strings.HasSuffix(rng, "A1:D1") && len(values) > 1 {
			values = values[:1]
		}
		writeJSON(w, map[string]any{"range": rng, "values": values})
	default:
		http.Error(w, "unexpected request", http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": code, "message": msg},
	})
}

func newFakeClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("sheets service: %v", err)
	}
	return NewWithService(svc, Config{SpreadsheetID: "sheet-123"})
}

func header() []interface{} {
	return []interface{}{"date", "amount", "category", "description"}
}

func TestInitializeCreatesMissingTab(t *testing.T) {
	fake := &fakeSheets{}
	c := newFakeClient(t, fake)

	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if fake.batchUpdates != 1 {
		t.Fatalf("expected the tab to be added once, got %d", fake.batchUpdates)
	}
	if fake.headerWrites != 1 || len(fake.rows) != 1 {
		t.Fatalf("expected header only, got rows=%v", fake.rows)
	}
	if got := toStrings(fake.rows[0]); strings.Join(got, ",") != "date,amount,category,description" {
		t.Fatalf("unexpected header: %v", got)
	}
}

func TestInitializeKeepsExistingHeader(t *testing.T) {
	fake := &fakeSheets{
		tabExists: true,
		rows:      [][]interface{}{header(), {"01-01-2024", "100.00", "Income", "Salary"}},
	}
	c := newFakeClient(t, fake)

	for i := 0; i < 2; i++ {
		if err := c.Initialize(context.Background()); err != nil {
			t.Fatalf("initialize #%d: %v", i+1, err)
		}
	}
	if fake.batchUpdates != 0 || fake.headerWrites != 0 {
		t.Fatalf("existing tab was modified: batch=%d header=%d", fake.batchUpdates, fake.headerWrites)
	}
	if len(fake.rows) != 2 {
		t.Fatalf("rows changed: %v", fake.rows)
	}
}

func TestInitializeRejectsForeignHeader(t *testing.T) {
	fake := &fakeSheets{tabExists: true, rows: [][]interface{}{{"when", "how_much", "kind", "note"}}}
	c := newFakeClient(t, fake)

	err := c.Initialize(context.Background())
	if !errors.Is(err, core.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
	if fake.headerWrites != 0 {
		t.Fatalf("foreign header was overwritten")
	}
}

func TestInitializePropagatesOtherErrors(t *testing.T) {
	fake := &fakeSheets{tabExists: true, failGet: http.StatusForbidden}
	c := newFakeClient(t, fake)

	err := c.Initialize(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if fake.batchUpdates != 0 {
		t.Fatalf("tab must not be created on a permission error")
	}
}

func TestAppendThenQueryRange(t *testing.T) {
	ctx := context.Background()
	fake := &fakeSheets{}
	c := newFakeClient(t, fake)
	if err := c.Initialize(ctx); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	in := []core.Transaction{
		{Date: core.NewDate(2024, 1, 1), Amount: decimal.RequireFromString("100"), Category: core.Income, Description: "Salary"},
		{Date: core.NewDate(2024, 1, 2), Amount: decimal.RequireFromString("40.00"), Category: core.Expense, Description: "Groceries"},
		{Date: core.NewDate(2024, 2, 1), Amount: decimal.RequireFromString("9.99"), Category: core.Expense, Description: "Later"},
	}
	for _, tx := range in {
		if err := c.Append(ctx, tx); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	for _, q := range fake.appendQuery {
		if q != "RAW/INSERT_ROWS" {
			t.Fatalf("append options = %q, want RAW/INSERT_ROWS", q)
		}
	}
	if got := toStrings(fake.rows[1]); strings.Join(got, "|") != "01-01-2024|100.00|Income|Salary" {
		t.Fatalf("unexpected stored row: %v", got)
	}

	rows, err := c.QueryRange(ctx, core.NewDate(2024, 1, 1), core.NewDate(2024, 1, 31))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows in January, got %d", len(rows))
	}
	for i, r := range rows {
		if !r.Date.Equal(in[i].Date.Time) || !r.Amount.Equal(in[i].Amount) ||
			r.Category != in[i].Category || r.Description != in[i].Description {
			t.Errorf("row %d = %+v, want %+v", i, r, in[i])
		}
	}
}

func TestAppendRejectsUnknownCategory(t *testing.T) {
	fake := &fakeSheets{tabExists: true, rows: [][]interface{}{header()}}
	c := newFakeClient(t, fake)

	err := c.Append(context.Background(), core.Transaction{
		Date: core.NewDate(2024, 1, 1), Amount: decimal.RequireFromString("5"), Category: "Transfer",
	})
	if !errors.Is(err, core.ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
	if len(fake.appendQuery) != 0 || len(fake.rows) != 1 {
		t.Fatalf("rejected row reached the sheet")
	}
}

func TestIsMissingSheet(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"unparsable range", &googleapi.Error{Code: http.StatusBadRequest, Message: "Unable to parse range: Transactions!A1:D1"}, true},
		{"wrapped", fmt.Errorf("read: %w", &googleapi.Error{Code: http.StatusBadRequest, Message: "Unable to parse range: x"}), true},
		{"other bad request", &googleapi.Error{Code: http.StatusBadRequest, Message: "Invalid value"}, false},
		{"forbidden", &googleapi.Error{Code: http.StatusForbidden, Message: "Unable to parse range"}, false},
		{"plain error", errors.New("Unable to parse range"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isMissingSheet(tt.err); got != tt.want {
				t.Errorf("isMissingSheet() = %v, want %v", got, tt.want)
			}
		})
	}
}
