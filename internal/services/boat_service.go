package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"boatshare/internal/amqp"
	"boatshare/internal/core"
	applog "boatshare/internal/log"
	ports "boatshare/internal/sheets"
)

// EventPublisher announces boat changes to the sync worker.
type EventPublisher interface {
	PublishBoatEvent(ctx context.Context, boatID string, kind amqp.EventKind, version int64) error
}

// BoatService manages the family's shortlist of proposed boats. Changes
// are stored first and then announced; a failed announcement never fails
// the request.
type BoatService struct {
	store     ports.BoatStore
	publisher EventPublisher
	logger    *applog.Logger
	now       func() time.Time
	newID     func() string
}

func NewBoatService(store ports.BoatStore, publisher EventPublisher, logger *applog.Logger) *BoatService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &BoatService{
		store:     store,
		publisher: publisher,
		logger:    logger.WithComponent(applog.ComponentBoats),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Propose adds a boat to the shortlist with a fresh ID and no votes.
func (s *BoatService) Propose(ctx context.Context, b core.Boat) (core.Boat, error) {
	b.ID = s.newID()
	b.Name = strings.TrimSpace(b.Name)
	b.AddedBy = strings.TrimSpace(b.AddedBy)
	if b.AddedBy == "" {
		b.AddedBy = core.DefaultAddedBy
	}
	b.AddedAt = s.now().UTC()
	b.Votes = core.Votes{}
	if err := b.Validate(); err != nil {
		return core.Boat{}, err
	}

	saved, err := s.store.SaveBoat(ctx, b)
	if err != nil {
		return core.Boat{}, fmt.Errorf("save boat: %w", err)
	}

	s.logger.Fields(ctx, slog.LevelInfo, "Boat proposed",
		applog.NewFields().WithOperation(applog.OpPropose).WithBoat(saved))
	s.publish(ctx, saved.ID, amqp.BoatUpserted, saved.Version)
	return saved, nil
}

// Vote records one up or down vote.
func (s *BoatService) Vote(ctx context.Context, id string, up bool) (core.Boat, error) {
	b, err := s.store.RecordVote(ctx, id, up)
	if err != nil {
		return core.Boat{}, fmt.Errorf("vote on boat %s: %w", id, err)
	}
	s.logger.Fields(ctx, slog.LevelInfo, "Vote recorded",
		applog.NewFields().WithOperation(applog.OpVote).WithBoat(b))
	s.publish(ctx, b.ID, amqp.BoatUpserted, b.Version)
	return b, nil
}

func (s *BoatService) Remove(ctx context.Context, id string) error {
	if err := s.store.DeleteBoat(ctx, id); err != nil {
		return fmt.Errorf("remove boat %s: %w", id, err)
	}
	s.logger.InfoContext(ctx, "Boat removed", applog.FieldBoatID, id)
	s.publish(ctx, id, amqp.BoatDeleted, 0)
	return nil
}

func (s *BoatService) Get(ctx context.Context, id string) (core.Boat, error) {
	return s.store.GetBoat(ctx, id)
}

// Ranked lists boats by net votes, highest first. Ties keep the order in
// which the boats were proposed.
func (s *BoatService) Ranked(ctx context.Context) ([]core.Boat, error) {
	boats, err := s.store.ListBoats(ctx)
	if err != nil {
		return nil, fmt.Errorf("list boats: %w", err)
	}
	Rank(boats)
	return boats, nil
}

// Rank sorts boats in place by score descending, then by proposal time.
func Rank(boats []core.Boat) {
	sort.SliceStable(boats, func(i, j int) bool {
		if si, sj := boats[i].Score(), boats[j].Score(); si != sj {
			return si > sj
		}
		return boats[i].AddedAt.Before(boats[j].AddedAt)
	})
}

func (s *BoatService) publish(ctx context.Context, id string, kind amqp.EventKind, version int64) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "No event publisher configured, skipping boat event", applog.FieldBoatID, id)
		return
	}
	if err := s.publisher.PublishBoatEvent(ctx, id, kind, version); err != nil {
		s.logger.Fields(ctx, slog.LevelWarn, "Failed to publish boat event",
			applog.NewFields().WithOperation(applog.OpPublish).WithError(err))
	}
}
