package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"boatshare/internal/amqp"
	"boatshare/internal/core"
	applog "boatshare/internal/log"
	"boatshare/internal/sheets"
	"boatshare/internal/storage"
)

// SyncStore is the part of the SQLite repository the worker needs.
type SyncStore interface {
	GetBoat(ctx context.Context, id string) (core.Boat, error)
	PendingSyncBoats(ctx context.Context, limit int) ([]storage.PendingBoat, error)
	MarkSynced(ctx context.Context, id string, version int64, sheetRef string) error
	MarkSyncError(ctx context.Context, id string, syncErr error) error
}

var _ SyncStore = (*storage.SQLiteRepository)(nil)

// SyncWorker mirrors boat proposals from SQLite into the spreadsheet.
type SyncWorker struct {
	store     SyncStore
	exporter  sheets.BoatExporter
	batchSize int
	logger    *applog.Logger
}

func NewSyncWorker(store SyncStore, exporter sheets.BoatExporter, batchSize int, logger *applog.Logger) *SyncWorker {
	if batchSize < 1 {
		batchSize = 10
	}
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &SyncWorker{
		store:     store,
		exporter:  exporter,
		batchSize: batchSize,
		logger:    logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleBoatEvent processes one event from the queue. An error makes the
// consumer requeue the message.
func (w *SyncWorker) HandleBoatEvent(ctx context.Context, msg *amqp.BoatEventMessage) error {
	w.logger.InfoContext(ctx, "Processing boat event",
		applog.FieldBoatID, msg.BoatID,
		applog.FieldEventKind, msg.Kind,
		"version", msg.Version)

	switch msg.Kind {
	case amqp.BoatDeleted:
		if err := w.exporter.RemoveBoat(ctx, msg.BoatID); err != nil {
			return fmt.Errorf("remove boat from sheet: %w", err)
		}
		return nil
	case amqp.BoatUpserted:
		err := w.syncBoat(ctx, msg.BoatID)
		if errors.Is(err, core.ErrBoatNotFound) {
			// Deleted after the event was published; the delete event follows.
			w.logger.InfoContext(ctx, "Boat no longer exists, skipping", applog.FieldBoatID, msg.BoatID)
			return nil
		}
		return err
	default:
		return fmt.Errorf("unknown boat event kind %q", msg.Kind)
	}
}

// ProcessPending exports boats whose latest version has not reached the
// sheet. It backs up the queue when messages were lost.
func (w *SyncWorker) ProcessPending(ctx context.Context) (synced int, err error) {
	return w.processPending(ctx, w.batchSize)
}

// StartupSyncCheck runs a larger pending pass when the worker starts.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	synced, err := w.processPending(ctx, w.batchSize*5)
	if err != nil {
		return err
	}
	w.logger.InfoContext(ctx, "Startup sync completed", "synced", synced)
	return nil
}

func (w *SyncWorker) processPending(ctx context.Context, limit int) (int, error) {
	pending, err := w.store.PendingSyncBoats(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("get pending boats: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	w.logger.InfoContext(ctx, "Processing pending boats", "count", len(pending))

	synced := 0
	for _, p := range pending {
		if err := ctx.Err(); err != nil {
			return synced, err
		}
		if err := w.syncBoat(ctx, p.ID); err != nil {
			w.logger.ErrorContext(ctx, "Failed to sync boat", applog.FieldBoatID, p.ID, "error", err)
			continue
		}
		synced++
	}
	return synced, nil
}

// Run repeats ProcessPending every interval until ctx is cancelled.
func (w *SyncWorker) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.ProcessPending(ctx); err != nil && ctx.Err() == nil {
				w.logger.ErrorContext(ctx, "Periodic sync failed", "error", err)
			}
		}
	}
}

func (w *SyncWorker) syncBoat(ctx context.Context, id string) error {
	b, err := w.store.GetBoat(ctx, id)
	if err != nil {
		return err
	}

	ref, err := w.exporter.ExportBoat(ctx, b)
	if err != nil {
		if markErr := w.store.MarkSyncError(ctx, id, err); markErr != nil {
			w.logger.ErrorContext(ctx, "Failed to mark sync error", applog.FieldBoatID, id, "error", markErr)
		}
		return fmt.Errorf("export boat: %w", err)
	}

	// The export worked; a failed bookkeeping update only means a repeat export.
	if err := w.store.MarkSynced(ctx, id, b.Version, ref); err != nil {
		w.logger.ErrorContext(ctx, "Failed to mark as synced", applog.FieldBoatID, id, "error", err)
	}

	w.logger.InfoContext(ctx, "Boat synced",
		applog.FieldBoatID, id,
		applog.FieldSheetsRef, ref,
		"version", b.Version)
	return nil
}
