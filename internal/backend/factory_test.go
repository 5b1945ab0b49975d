package backend

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"boatshare/internal/config"
	"boatshare/internal/core"
	applog "boatshare/internal/log"
)

func quietFactory() Factory {
	return NewFactory(applog.New(applog.Config{Output: &bytes.Buffer{}}))
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}

	cfg := config.Load()
	cfg.DataBackend = "sheets"
	if _, err := FromAppConfig(cfg); err == nil {
		t.Error("expected error for unknown backend")
	}

	cfg.DataBackend = "sqlite"
	cfg.SQLiteDBPath = "/tmp/x.db"
	cfg.RedisAddr = "localhost:6379"
	bc, err := FromAppConfig(cfg)
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if bc.Type != SQLiteBackend || bc.SQLiteDBPath != "/tmp/x.db" || bc.RedisAddr != "localhost:6379" {
		t.Errorf("FromAppConfig() = %+v", bc)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"unknown type", Config{Type: "sheets"}, true},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"memory", Config{Type: MemoryBackend}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if got, want := GetBackendTypeStrings(), []string{"sqlite", "memory"}; !reflect.DeepEqual(got, want) {
		t.Errorf("GetBackendTypeStrings() = %v, want %v", got, want)
	}
}

func TestCreateBackend_Memory(t *testing.T) {
	ctx := context.Background()
	res, err := quietFactory().CreateBackend(ctx, Config{Type: MemoryBackend, CacheSize: 10, CacheTTL: time.Minute})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	defer res.Cleanup()

	if res.AMQPEnabled || res.SharedCache {
		t.Errorf("memory backend: AMQPEnabled=%v SharedCache=%v, want both false", res.AMQPEnabled, res.SharedCache)
	}
	if err := res.Ready(ctx); err != nil {
		t.Fatalf("Ready() error = %v", err)
	}

	b, err := res.BoatService.Propose(ctx, core.Boat{Name: "Nimbus", Price: 100})
	if err != nil {
		t.Fatalf("Propose() error = %v", err)
	}
	got, err := res.Boats.GetBoat(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetBoat() error = %v", err)
	}
	if got.Name != "Nimbus" {
		t.Errorf("Name = %q, want Nimbus", got.Name)
	}

	_, err = res.Financing.Calculate(ctx,
		core.FinancingParameters{PurchasePrice: 100, LoanTermYears: 1},
		[]core.Contribution{{ID: "1", Amount: 100}, {ID: "2"}})
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if res.Cache.Size() != 1 {
		t.Errorf("cache size = %d, want 1", res.Cache.Size())
	}
}

func TestCreateBackend_SQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db", "boats.db")
	res, err := quietFactory().CreateBackend(ctx, Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: path,
		// Unreachable Redis falls back to the in-process cache.
		RedisAddr: "127.0.0.1:1",
	})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}

	if res.SharedCache {
		t.Error("SharedCache = true with unreachable redis")
	}
	if err := res.Ready(ctx); err != nil {
		t.Fatalf("Ready() error = %v", err)
	}

	_, err = res.Financing.Calculate(ctx,
		core.FinancingParameters{PurchasePrice: 300, AnnualInterestRatePercent: 3, LoanTermYears: 2},
		[]core.Contribution{{ID: "1", Amount: 300}, {ID: "2"}, {ID: "3"}})
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	history, err := res.Financing.History(ctx, 10)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 1 {
		t.Errorf("len(history) = %d, want 1", len(history))
	}

	if err := res.Cleanup(); err != nil {
		t.Errorf("Cleanup() error = %v", err)
	}
}

func TestBackendResult_Ready(t *testing.T) {
	boom := errors.New("down")
	res := &BackendResult{Checks: []Check{
		{Name: "ok", Ping: func(context.Context) error { return nil }},
		{Name: "redis", Ping: func(context.Context) error { return boom }},
	}}
	err := res.Ready(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("Ready() error = %v, want %v", err, boom)
	}
	if !strings.Contains(err.Error(), "redis") {
		t.Errorf("Ready() error = %v, want it to name the failing check", err)
	}
}
