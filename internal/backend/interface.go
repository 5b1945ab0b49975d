package backend

import (
	"context"
	"time"

	"boatshare/internal/cache"
	"boatshare/internal/core"
	"boatshare/internal/services"
	"boatshare/internal/sheets"
)

// CleanupFunc releases the resources a backend opened.
type CleanupFunc func() error

// Check is a named readiness probe.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// BackendResult holds the stores and the services wired on top of them.
type BackendResult struct {
	Boats     sheets.BoatStore
	Scenarios sheets.ScenarioStore
	Cache     cache.Cache[core.FinancingResult]

	Financing   *services.FinancingService
	BoatService *services.BoatService
	Checks      []Check
	Cleanup     CleanupFunc
	AMQPEnabled bool
	SharedCache bool
}

// Ready runs every readiness check and returns the first failure.
func (r *BackendResult) Ready(ctx context.Context) error {
	for _, c := range r.Checks {
		if err := c.Ping(ctx); err != nil {
			return &CheckError{Name: c.Name, Err: err}
		}
	}
	return nil
}

// CheckError names the dependency that failed a readiness check.
type CheckError struct {
	Name string
	Err  error
}

func (e *CheckError) Error() string { return e.Name + ": " + e.Err.Error() }
func (e *CheckError) Unwrap() error { return e.Err }

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds what the factory needs to assemble a backend.
type Config struct {
	Type BackendType

	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	RedisAddr string
	CacheSize int
	CacheTTL  time.Duration
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
