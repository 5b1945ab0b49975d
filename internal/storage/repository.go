package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"boatshare/internal/core"
	applog "boatshare/internal/log"
	ports "boatshare/internal/sheets"
)

var (
	_ ports.BoatStore     = (*SQLiteRepository)(nil)
	_ ports.ScenarioStore = (*SQLiteRepository)(nil)
)

const timeLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db     *sql.DB
	logger *applog.Logger
	now    func() time.Time
}

// PendingBoat is the minimal data the sync loop needs to requeue a boat.
type PendingBoat struct {
	ID      string
	Version int64
	AddedAt time.Time
}

func NewSQLiteRepository(dbPath string, logger *applog.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:     db,
		logger: logger.WithComponent(applog.ComponentStorage),
		now:    time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping is used by the readiness probe.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

const boatColumns = `id, name, price, year, length, engine, finn_url, description,
	added_by, added_at, up_votes, down_votes, version`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBoat(s rowScanner) (core.Boat, error) {
	var (
		b       core.Boat
		addedAt string
	)
	err := s.Scan(&b.ID, &b.Name, &b.Price, &b.Year, &b.Length, &b.Engine, &b.FinnURL,
		&b.Description, &b.AddedBy, &addedAt, &b.Votes.Up, &b.Votes.Down, &b.Version)
	if err != nil {
		return core.Boat{}, err
	}
	if b.AddedAt, err = time.Parse(timeLayout, addedAt); err != nil {
		return core.Boat{}, fmt.Errorf("parse added_at %q: %w", addedAt, err)
	}
	return b, nil
}

// SaveBoat inserts a new proposal or overwrites the details of an existing
// one. Votes are left alone on update; they only change through RecordVote.
func (r *SQLiteRepository) SaveBoat(ctx context.Context, b core.Boat) (core.Boat, error) {
	if err := b.Validate(); err != nil {
		return core.Boat{}, err
	}
	if b.ID == "" {
		return core.Boat{}, errors.New("boat id is required")
	}
	if b.AddedAt.IsZero() {
		b.AddedAt = r.now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO boats (id, name, price, year, length, engine, finn_url, description,
			added_by, added_at, up_votes, down_votes, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			price = excluded.price,
			year = excluded.year,
			length = excluded.length,
			engine = excluded.engine,
			finn_url = excluded.finn_url,
			description = excluded.description,
			version = boats.version + 1`,
		b.ID, b.Name, b.Price, b.Year, b.Length, b.Engine, b.FinnURL, b.Description,
		b.AddedBy, b.AddedAt.UTC().Format(timeLayout), b.Votes.Up, b.Votes.Down)
	if err != nil {
		return core.Boat{}, fmt.Errorf("save boat: %w", err)
	}

	saved, err := r.GetBoat(ctx, b.ID)
	if err != nil {
		return core.Boat{}, err
	}
	r.logger.InfoContext(ctx, "Boat saved to SQLite", applog.NewFields().WithBoat(saved).ToSlice()...)
	return saved, nil
}

func (r *SQLiteRepository) GetBoat(ctx context.Context, id string) (core.Boat, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+boatColumns+` FROM boats WHERE id = ?`, id)
	b, err := scanBoat(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Boat{}, core.ErrBoatNotFound
	}
	if err != nil {
		return core.Boat{}, fmt.Errorf("get boat %s: %w", id, err)
	}
	return b, nil
}

// ListBoats returns boats in the order they were proposed.
func (r *SQLiteRepository) ListBoats(ctx context.Context) ([]core.Boat, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+boatColumns+` FROM boats ORDER BY added_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list boats: %w", err)
	}
	defer rows.Close()

	var out []core.Boat
	for rows.Next() {
		b, err := scanBoat(rows)
		if err != nil {
			return nil, fmt.Errorf("scan boat: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) RecordVote(ctx context.Context, id string, up bool) (core.Boat, error) {
	column := "down_votes"
	if up {
		column = "up_votes"
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE boats SET `+column+` = `+column+` + 1, version = version + 1 WHERE id = ?`, id)
	if err != nil {
		return core.Boat{}, fmt.Errorf("record vote: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.Boat{}, core.ErrBoatNotFound
	}
	return r.GetBoat(ctx, id)
}

func (r *SQLiteRepository) DeleteBoat(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM boats WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete boat: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrBoatNotFound
	}
	r.logger.InfoContext(ctx, "Boat deleted from SQLite", applog.FieldBoatID, id)
	return nil
}

// PendingSyncBoats returns boats whose latest version has not reached the
// spreadsheet yet, oldest first.
func (r *SQLiteRepository) PendingSyncBoats(ctx context.Context, limit int) ([]PendingBoat, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, version, added_at FROM boats
		WHERE synced_version < version
		ORDER BY added_at
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync boats: %w", err)
	}
	defer rows.Close()

	var out []PendingBoat
	for rows.Next() {
		var (
			p       PendingBoat
			addedAt string
		)
		if err := rows.Scan(&p.ID, &p.Version, &addedAt); err != nil {
			return nil, fmt.Errorf("scan pending boat: %w", err)
		}
		p.AddedAt, _ = time.Parse(timeLayout, addedAt)
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkSynced records that version of the boat reached the spreadsheet. An
// older version never overwrites a newer one.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string, version int64, sheetRef string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE boats
		SET synced_version = MAX(synced_version, ?), synced_at = ?, sheet_ref = ?, sync_error = ''
		WHERE id = ?`,
		version, r.now().UTC().Format(timeLayout), sheetRef, id)
	if err != nil {
		return fmt.Errorf("mark boat synced: %w", err)
	}
	r.logger.InfoContext(ctx, "Boat marked as synced", applog.FieldBoatID, id, "version", version)
	return nil
}

func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id string, syncErr error) error {
	msg := ""
	if syncErr != nil {
		msg = syncErr.Error()
	}
	if _, err := r.db.ExecContext(ctx, `UPDATE boats SET sync_error = ? WHERE id = ?`, msg, id); err != nil {
		return fmt.Errorf("mark boat sync error: %w", err)
	}
	r.logger.WarnContext(ctx, "Boat marked with sync error", applog.FieldBoatID, id, "error", msg)
	return nil
}

func (r *SQLiteRepository) SaveScenario(ctx context.Context, s core.Scenario) (int64, error) {
	params, err := json.Marshal(s.Parameters)
	if err != nil {
		return 0, fmt.Errorf("encode parameters: %w", err)
	}
	contributions, err := json.Marshal(s.Contributions)
	if err != nil {
		return 0, fmt.Errorf("encode contributions: %w", err)
	}
	result, err := json.Marshal(s.Result)
	if err != nil {
		return 0, fmt.Errorf("encode result: %w", err)
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = r.now()
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO scenarios (parameters, contributions, result, created_at) VALUES (?, ?, ?, ?)`,
		string(params), string(contributions), string(result), s.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("save scenario: %w", err)
	}
	return res.LastInsertId()
}

func (r *SQLiteRepository) ListScenarios(ctx context.Context, limit int) ([]core.Scenario, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, parameters, contributions, result, created_at
		FROM scenarios ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	defer rows.Close()

	var out []core.Scenario
	for rows.Next() {
		var s core.Scenario
		var params, contributions, result, at string
		if err := rows.Scan(&s.ID, &params, &contributions, &result, &at); err != nil {
			return nil, fmt.Errorf("scan scenario: %w", err)
		}
		if err := json.Unmarshal([]byte(params), &s.Parameters); err != nil {
			return nil, fmt.Errorf("decode scenario %d parameters: %w", s.ID, err)
		}
		if err := json.Unmarshal([]byte(contributions), &s.Contributions); err != nil {
			return nil, fmt.Errorf("decode scenario %d contributions: %w", s.ID, err)
		}
		if err := json.Unmarshal([]byte(result), &s.Result); err != nil {
			return nil, fmt.Errorf("decode scenario %d result: %w", s.ID, err)
		}
		s.CreatedAt, _ = time.Parse(timeLayout, at)
		out = append(out, s)
	}
	return out, rows.Err()
}
