package service

import (
	"context"
	"errors"
	"fmt"

	hclog "github.com/hashicorp/go-hclog"

	"medibill/internal/modules/dashboard/domain"
	dashboardout "medibill/internal/modules/dashboard/port/out"
	"medibill/internal/platform/logging"
)

type DashboardService struct {
	store dashboardout.SummaryStore
	log   hclog.Logger
}

func NewDashboardService(store dashboardout.SummaryStore, log hclog.Logger) *DashboardService {
	return &DashboardService{store: store, log: logging.OrDiscard(log).Named("dashboard")}
}

// Record folds outcome into the stored summary in one storage transaction.
// Recording the same outcome twice counts it twice.
func (s *DashboardService) Record(ctx context.Context, outcome domain.Outcome) (domain.Summary, error) {
	updated, err := s.store.Apply(ctx, func(current domain.Summary) domain.Summary {
		return current.Fold(outcome)
	})
	if err != nil {
		return domain.Summary{}, fmt.Errorf("record outcome: %w", err)
	}
	s.log.Debug("outcome recorded", "score", outcome.ComplianceScore, "flags", outcome.FlagCount, "total", updated.TotalAnalyzed)
	return updated, nil
}

// Summary reads the stored summary; a corrupt one reads as zero.
func (s *DashboardService) Summary(ctx context.Context) (domain.Summary, error) {
	summary, err := s.store.Load(ctx)
	if errors.Is(err, domain.ErrCorruptSummary) {
		s.log.Warn("ignoring corrupt dashboard summary", "error", err)
		return domain.Summary{}, nil
	}
	if err != nil {
		return domain.Summary{}, err
	}
	return summary.Normalize(), nil
}

func (s *DashboardService) Reset(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("reset dashboard summary: %w", err)
	}
	return nil
}
