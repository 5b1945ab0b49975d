package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"boatshare/internal/cache"
	"boatshare/internal/core"
	"boatshare/internal/financing"
	applog "boatshare/internal/log"
	ports "boatshare/internal/sheets"
)

const defaultHistoryLimit = 20

// FinancingService runs the co-ownership calculation, caches results by
// input and keeps a history of calculated scenarios.
type FinancingService struct {
	cache   cache.Cache[core.FinancingResult]
	history ports.ScenarioStore
	logger  *applog.Logger
	now     func() time.Time
}

// NewFinancingService accepts a nil cache or history; the corresponding
// feature is then skipped.
func NewFinancingService(c cache.Cache[core.FinancingResult], history ports.ScenarioStore, logger *applog.Logger) *FinancingService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &FinancingService{
		cache:   c,
		history: history,
		logger:  logger.WithComponent(applog.ComponentFinancing),
		now:     time.Now,
	}
}

// ScheduleResult is a calculation together with its month-by-month plan.
type ScheduleResult struct {
	Result         core.FinancingResult `json:"result"`
	Schedule       []core.ScheduleEntry `json:"schedule"`
	BreakEvenMonth int                  `json:"break_even_month"`
	TotalPaid      float64              `json:"total_paid"`
	TotalInterest  float64              `json:"total_interest"`
}

// Calculate validates the owner set and returns the financing breakdown.
// Saving the scenario to history is best effort.
func (s *FinancingService) Calculate(ctx context.Context, params core.FinancingParameters, contributions []core.Contribution) (core.FinancingResult, error) {
	if err := core.ValidateContributions(contributions); err != nil {
		return core.FinancingResult{}, err
	}
	if err := params.Validate(); err != nil {
		return core.FinancingResult{}, err
	}

	key, err := cacheKey(params, contributions)
	if err != nil {
		return core.FinancingResult{}, err
	}
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			s.logger.Fields(ctx, slog.LevelDebug, "Financing served from cache",
				applog.NewFields().WithOperation(applog.OpCalculate).WithFinancing(params, len(contributions)))
			return cached, nil
		}
	}

	result, err := financing.Compute(params, contributions)
	if err != nil {
		return core.FinancingResult{}, err
	}

	if s.cache != nil {
		s.cache.Set(key, result)
	}
	s.saveScenario(ctx, params, contributions, result)

	s.logger.Fields(ctx, slog.LevelInfo, "Financing calculated",
		applog.NewFields().
			WithOperation(applog.OpCalculate).
			WithFinancing(params, len(contributions)).
			WithResult(result))
	return result, nil
}

func (s *FinancingService) saveScenario(ctx context.Context, params core.FinancingParameters, contributions []core.Contribution, result core.FinancingResult) {
	if s.history == nil {
		return
	}
	_, err := s.history.SaveScenario(ctx, core.Scenario{
		Parameters:    params,
		Contributions: append([]core.Contribution(nil), contributions...),
		Result:        result,
		CreatedAt:     s.now().UTC(),
	})
	if err != nil {
		s.logger.Fields(ctx, slog.LevelWarn, "Failed to save scenario to history",
			applog.NewFields().WithOperation(applog.OpHistory).WithError(err))
	}
}

// Schedule calculates and expands the internal loan into monthly rows.
func (s *FinancingService) Schedule(ctx context.Context, params core.FinancingParameters, contributions []core.Contribution) (ScheduleResult, error) {
	result, err := s.Calculate(ctx, params, contributions)
	if err != nil {
		return ScheduleResult{}, err
	}
	rows := financing.Schedule(result, params)
	paid, interest := financing.Totals(rows)
	return ScheduleResult{
		Result:         result,
		Schedule:       rows,
		BreakEvenMonth: financing.BreakEvenMonth(rows),
		TotalPaid:      paid,
		TotalInterest:  interest,
	}, nil
}

// History lists the most recent scenarios, newest first.
func (s *FinancingService) History(ctx context.Context, limit int) ([]core.Scenario, error) {
	if s.history == nil {
		return []core.Scenario{}, nil
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	scenarios, err := s.history.ListScenarios(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	return scenarios, nil
}

// cacheKey hashes the canonical JSON form of the inputs. Field order in
// the structs fixes the encoding, so equal inputs give equal keys.
func cacheKey(params core.FinancingParameters, contributions []core.Contribution) (string, error) {
	raw, err := json.Marshal(struct {
		P core.FinancingParameters `json:"p"`
		C []core.Contribution      `json:"c"`
	}{params, contributions})
	if err != nil {
		return "", fmt.Errorf("encode cache key: %w", err)
	}
	sum := sha256.Sum256(raw)
	return "financing:" + hex.EncodeToString(sum[:]), nil
}
