package sheets

import (
	"context"

	"boatshare/internal/core"
)

// Ports for outbound adapters.
type (
	// BoatStore keeps the proposal list. Lookups of unknown IDs return
	// core.ErrBoatNotFound.
	BoatStore interface {
		SaveBoat(ctx context.Context, b core.Boat) (core.Boat, error)
		GetBoat(ctx context.Context, id string) (core.Boat, error)
		ListBoats(ctx context.Context) ([]core.Boat, error)
		// RecordVote applies one vote atomically and bumps the version.
		RecordVote(ctx context.Context, id string, up bool) (core.Boat, error)
		DeleteBoat(ctx context.Context, id string) error
	}

	// ScenarioStore keeps the history of financing calculations.
	ScenarioStore interface {
		SaveScenario(ctx context.Context, s core.Scenario) (int64, error)
		// ListScenarios returns the newest scenarios first.
		ListScenarios(ctx context.Context, limit int) ([]core.Scenario, error)
	}

	// BoatExporter mirrors proposals into an external spreadsheet.
	BoatExporter interface {
		ExportBoat(ctx context.Context, b core.Boat) (rowRef string, err error)
		RemoveBoat(ctx context.Context, id string) error
	}
)
