package service

import (
	"context"

	"github.com/iliyamo/festa-do-viso/internal/config"
	"github.com/iliyamo/festa-do-viso/internal/model"
)

// StatsService computes the dashboard summary.
type StatsService struct {
	counts CountStore
	scope  string
}

// NewStatsService builds the aggregator.  scope selects which sheets count
// toward NumbersAvailable: config.StatsScopeAll (every sheet) or
// config.StatsScopeActive (active sheets only).
func NewStatsService(counts CountStore, scope string) *StatsService {
	if scope != config.StatsScopeActive {
		scope = config.StatsScopeAll
	}
	return &StatsService{counts: counts, scope: scope}
}

// Compute reads all counts from one snapshot.
func (s *StatsService) Compute(ctx context.Context) (model.Stats, error) {
	c, err := s.counts.Counts(ctx)
	if err != nil {
		return model.Stats{}, storageErr("compute stats", err)
	}
	st := model.Stats{
		TotalSheets:    c.TotalSheets,
		ActiveSheets:   c.ActiveSheets,
		NumbersClaimed: c.Claims,
		TotalWinners:   c.Winners,
	}
	if s.scope == config.StatsScopeActive {
		st.NumbersAvailable = c.ActiveSheets*model.SheetCapacity - c.ActiveClaims
	} else {
		st.NumbersAvailable = c.TotalSheets*model.SheetCapacity - c.Claims
	}
	return st, nil
}
