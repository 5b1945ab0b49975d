package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"boatshare/internal/budget"
	"boatshare/internal/core"
)

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"vote":"up"}`, false},
		{"unknown field", `{"vote":"up","extra":1}`, true},
		{"trailing value", `{"vote":"up"}{"vote":"down"}`, true},
		{"wrong type", `{"vote":1}`, true},
		{"empty", ``, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var v voteRequest
			err := decodeJSON(httptest.NewRecorder(), r, &v)
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errMalformedBody) {
				t.Errorf("expected errMalformedBody, got %v", err)
			}
		})
	}
}

func TestDecodeJSON_TooLarge(t *testing.T) {
	body := `{"vote":"` + strings.Repeat("u", maxBodyBytes) + `"}`
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	var v voteRequest
	err := decodeJSON(httptest.NewRecorder(), r, &v)
	if !errors.Is(err, errBodyTooLarge) {
		t.Fatalf("decodeJSON() error = %v, want errBodyTooLarge", err)
	}
	if got := statusFor(err); got != http.StatusRequestEntityTooLarge {
		t.Errorf("statusFor() = %d, want %d", got, http.StatusRequestEntityTooLarge)
	}
}

func TestQueryHelpers(t *testing.T) {
	q := url.Values{"n": {"3"}, "bad": {"x"}, "f": {"2.5"}, "nan": {"NaN"}, "inf": {"+Inf"}}

	if got, err := queryInt(q, "n", 1); err != nil || got != 3 {
		t.Errorf("queryInt(n) = %d, %v", got, err)
	}
	if got, err := queryInt(q, "missing", 7); err != nil || got != 7 {
		t.Errorf("queryInt(missing) = %d, %v", got, err)
	}
	if _, err := queryInt(q, "bad", 1); !errors.Is(err, errInvalidQuery) {
		t.Errorf("queryInt(bad) error = %v", err)
	}
	if got, err := queryFloat(q, "f", 0); err != nil || got != 2.5 {
		t.Errorf("queryFloat(f) = %v, %v", got, err)
	}
	if _, err := queryFloat(q, "bad", 0); !errors.Is(err, errInvalidQuery) {
		t.Errorf("queryFloat(bad) error = %v", err)
	}
	for _, key := range []string{"nan", "inf"} {
		if _, err := queryFloat(q, key, 0); !errors.Is(err, errInvalidQuery) {
			t.Errorf("queryFloat(%s) error = %v", key, err)
		}
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("vote on boat x: %w", core.ErrBoatNotFound), http.StatusNotFound},
		{core.ErrEmptyOwnerSet, http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: too long", core.ErrInvalidInput), http.StatusUnprocessableEntity},
		{fmt.Errorf("x: %w", budget.ErrUnknownBoatType), http.StatusUnprocessableEntity},
		{errInvalidVote, http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: eof", errMalformedBody), http.StatusBadRequest},
		{fmt.Errorf("%w: limit is 10 bytes", errBodyTooLarge), http.StatusRequestEntityTooLarge},
		{fmt.Errorf("%w: amount must be finite", core.ErrInvalidAmount), http.StatusUnprocessableEntity},
		{errors.New("database is locked"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestWriteError_HidesInternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("sql: connection refused at 10.0.0.3"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "10.0.0.3") {
		t.Errorf("internal error leaked: %s", rec.Body.String())
	}
}

func TestWriteJSON_UnencodableValue(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, map[string]float64{"monthly_payment": math.Inf(1)})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %q", rec.Body.String())
	}
	if body.Error == "" {
		t.Error("expected an error message")
	}
}
