package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	goption "google.golang.org/api/option"

	"boatshare/internal/core"
	applog "boatshare/internal/log"
)

// fakeSheet serves the three Sheets values calls the client makes.
type fakeSheet struct {
	mu   sync.Mutex
	rows map[int][]any
}

func (f *fakeSheet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rng := strings.TrimPrefix(r.URL.Path, "/v4/spreadsheets/sheet-id/values/")
	switch {
	case r.Method == http.MethodGet && rng == "Boats!A:A":
		last := 0
		for n := range f.rows {
			last = max(last, n)
		}
		values := make([][]any, last)
		for i := range values {
			values[i] = []any{}
			if row, ok := f.rows[i+1]; ok && len(row) > 0 {
				values[i] = []any{row[0]}
			}
		}
		json.NewEncoder(w).Encode(map[string]any{"range": rng, "majorDimension": "ROWS", "values": values})

	case r.Method == http.MethodPut:
		var n, m int
		if _, err := fmt.Sscanf(rng, "Boats!A%d:J%d", &n, &m); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var body struct {
			Values [][]any `json:"values"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Values) != 1 {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		f.rows[n] = body.Values[0]
		json.NewEncoder(w).Encode(map[string]any{"updatedRange": rng, "updatedRows": 1})

	case r.Method == http.MethodPost && strings.HasSuffix(rng, ":clear"):
		var n, m int
		if _, err := fmt.Sscanf(strings.TrimSuffix(rng, ":clear"), "Boats!A%d:J%d", &n, &m); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		delete(f.rows, n)
		json.NewEncoder(w).Encode(map[string]any{"clearedRange": rng})

	default:
		http.Error(w, "unexpected "+r.Method+" "+rng, http.StatusNotFound)
	}
}

func newFakeClient(t *testing.T) (*Client, *fakeSheet) {
	t.Helper()
	fake := &fakeSheet{rows: map[int][]any{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), "sheet-id", "Boats",
		applog.New(applog.Config{Output: &bytes.Buffer{}}),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c, fake
}

func TestClient_ExportBoat(t *testing.T) {
	c, fake := newFakeClient(t)
	ctx := context.Background()

	b1 := core.Boat{ID: "b1", Name: "Nimbus 305", Price: 650000, Votes: core.Votes{Up: 2, Down: 1}}
	ref, err := c.ExportBoat(ctx, b1)
	if err != nil {
		t.Fatalf("ExportBoat: %v", err)
	}
	if ref != "Boats!A2:J2" {
		t.Fatalf("ref = %q, want Boats!A2:J2", ref)
	}
	if got := fake.rows[1][0]; got != "ID" {
		t.Fatalf("header not written: %v", fake.rows[1])
	}
	if got := fake.rows[2][8]; got != float64(1) {
		t.Fatalf("score cell = %v, want 1", got)
	}

	ref, err = c.ExportBoat(ctx, core.Boat{ID: "b2", Name: "Askeladden", Price: 250000})
	if err != nil || ref != "Boats!A3:J3" {
		t.Fatalf("second export: ref=%q err=%v", ref, err)
	}

	// Re-exporting updates the same row.
	b1.Votes.Up = 5
	ref, err = c.ExportBoat(ctx, b1)
	if err != nil || ref != "Boats!A2:J2" {
		t.Fatalf("re-export: ref=%q err=%v", ref, err)
	}
	if got := fake.rows[2][6]; got != float64(5) {
		t.Fatalf("up cell = %v, want 5", got)
	}
}

func TestClient_RemoveBoat(t *testing.T) {
	c, fake := newFakeClient(t)
	ctx := context.Background()

	for _, id := range []string{"b1", "b2"} {
		if _, err := c.ExportBoat(ctx, core.Boat{ID: id, Name: id, Price: 1}); err != nil {
			t.Fatalf("ExportBoat(%s): %v", id, err)
		}
	}

	if err := c.RemoveBoat(ctx, "b1"); err != nil {
		t.Fatalf("RemoveBoat: %v", err)
	}
	if _, ok := fake.rows[2]; ok {
		t.Fatal("row 2 should be cleared")
	}
	if err := c.RemoveBoat(ctx, "never-exported"); err != nil {
		t.Fatalf("RemoveBoat of unknown id: %v", err)
	}

	// The cleared row stays a gap; new boats go after the last used row.
	ref, err := c.ExportBoat(ctx, core.Boat{ID: "b3", Name: "b3", Price: 1})
	if err != nil || ref != "Boats!A4:J4" {
		t.Fatalf("export after remove: ref=%q err=%v", ref, err)
	}
}

func TestNewClient_MissingSpreadsheetID(t *testing.T) {
	if _, err := NewClient(context.Background(), " ", "Boats", nil); err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
}

func TestNewFromEnv_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := NewFromEnv(context.Background(), "sheet-id", "Boats", nil)
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFindRow(t *testing.T) {
	values := [][]any{{"ID"}, {"b1"}, {}, {" b3 "}}
	tests := []struct {
		id   string
		want int
	}{
		{"b1", 2},
		{"b3", 4},
		{"b2", -1},
	}
	for _, tt := range tests {
		if got := findRow(values, tt.id); got != tt.want {
			t.Errorf("findRow(%q) = %d, want %d", tt.id, got, tt.want)
		}
	}
	if got := nextRow(values); got != 5 {
		t.Errorf("nextRow = %d, want 5", got)
	}
	if got := nextRow(nil); got != 2 {
		t.Errorf("nextRow(nil) = %d, want 2", got)
	}
}

func TestClient_ExportBoatConcurrent(t *testing.T) {
	c, fake := newFakeClient(t)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("b%02d", i)
			if _, err := c.ExportBoat(ctx, core.Boat{ID: id, Name: id, Price: 1}); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("ExportBoat: %v", err)
	}

	seen := map[any]bool{}
	for row, values := range fake.rows {
		if row == 1 {
			continue
		}
		seen[values[0]] = true
	}
	if len(seen) != n {
		t.Fatalf("sheet holds %d boats, want %d", len(seen), n)
	}
}
