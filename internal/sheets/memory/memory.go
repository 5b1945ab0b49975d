package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"boatshare/internal/core"
	ports "boatshare/internal/sheets"
)

var (
	_ ports.BoatStore     = (*Store)(nil)
	_ ports.ScenarioStore = (*Store)(nil)
	_ ports.BoatExporter  = (*Exporter)(nil)
)

// Store keeps boats and scenarios in process memory. It backs the
// "memory" data backend and the service tests.
type Store struct {
	mu        sync.Mutex
	boats     map[string]core.Boat
	order     []string
	scenarios []core.Scenario
	nextID    int64
	now       func() time.Time
}

func New() *Store {
	return &Store{
		boats: make(map[string]core.Boat),
		now:   time.Now,
	}
}

// NewWithBoats seeds the store, keeping the given order.
func NewWithBoats(boats ...core.Boat) *Store {
	s := New()
	for _, b := range boats {
		s.boats[b.ID] = b
		s.order = append(s.order, b.ID)
	}
	return s
}

func (s *Store) SaveBoat(_ context.Context, b core.Boat) (core.Boat, error) {
	if err := b.Validate(); err != nil {
		return core.Boat{}, err
	}
	if b.ID == "" {
		return core.Boat{}, fmt.Errorf("boat id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.boats[b.ID]; ok {
		b.Version = prev.Version + 1
	} else {
		b.Version = 1
		s.order = append(s.order, b.ID)
	}
	if b.AddedAt.IsZero() {
		b.AddedAt = s.now().UTC()
	}
	s.boats[b.ID] = b
	return b, nil
}

func (s *Store) GetBoat(_ context.Context, id string) (core.Boat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.boats[id]
	if !ok {
		return core.Boat{}, core.ErrBoatNotFound
	}
	return b, nil
}

// ListBoats returns boats in insertion order.
func (s *Store) ListBoats(_ context.Context) ([]core.Boat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Boat, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.boats[id])
	}
	return out, nil
}

func (s *Store) RecordVote(_ context.Context, id string, up bool) (core.Boat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.boats[id]
	if !ok {
		return core.Boat{}, core.ErrBoatNotFound
	}
	if up {
		b.Votes.Up++
	} else {
		b.Votes.Down++
	}
	b.Version++
	s.boats[id] = b
	return b, nil
}

func (s *Store) DeleteBoat(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.boats[id]; !ok {
		return core.ErrBoatNotFound
	}
	delete(s.boats, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	return nil
}

func (s *Store) SaveScenario(_ context.Context, sc core.Scenario) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	sc.ID = s.nextID
	if sc.CreatedAt.IsZero() {
		sc.CreatedAt = s.now().UTC()
	}
	sc.Contributions = slices.Clone(sc.Contributions)
	s.scenarios = append(s.scenarios, sc)
	return sc.ID, nil
}

func (s *Store) ListScenarios(_ context.Context, limit int) ([]core.Scenario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.scenarios)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]core.Scenario, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.scenarios[i])
	}
	return out, nil
}

// Exporter records exported rows instead of writing to a spreadsheet.
type Exporter struct {
	mu   sync.Mutex
	rows map[string]core.Boat
	refs map[string]string
}

func NewExporter() *Exporter {
	return &Exporter{rows: make(map[string]core.Boat), refs: make(map[string]string)}
}

func (e *Exporter) ExportBoat(_ context.Context, b core.Boat) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ref, ok := e.refs[b.ID]
	if !ok {
		ref = fmt.Sprintf("mem:%d", len(e.refs)+1)
		e.refs[b.ID] = ref
	}
	e.rows[b.ID] = b
	return ref, nil
}

func (e *Exporter) RemoveBoat(_ context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.rows, id)
	return nil
}

// Row returns the last exported state of a boat.
func (e *Exporter) Row(id string) (core.Boat, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, ok := e.rows[id]
	return b, ok
}
