package out

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	hclog "github.com/hashicorp/go-hclog"

	"medibill/internal/modules/dashboard/domain"
	apperrors "medibill/internal/platform/errors"
	"medibill/internal/platform/localstore"
	"medibill/internal/platform/logging"
)

// LocalSummaryStore keeps the summary as JSON under
// localstore.KeyDashboardStats.
type LocalSummaryStore struct {
	store localstore.Store
	log   hclog.Logger
}

func NewLocalSummaryStore(store localstore.Store, log hclog.Logger) *LocalSummaryStore {
	return &LocalSummaryStore{store: store, log: logging.OrDiscard(log).Named("summary_store")}
}

func (s *LocalSummaryStore) Load(ctx context.Context) (domain.Summary, error) {
	raw, err := s.store.Get(ctx, localstore.KeyDashboardStats)
	if errors.Is(err, apperrors.ErrNotFound) {
		return domain.Summary{}, nil
	}
	if err != nil {
		return domain.Summary{}, err
	}
	return decode(raw)
}

func (s *LocalSummaryStore) Apply(ctx context.Context, fn func(domain.Summary) domain.Summary) (domain.Summary, error) {
	var updated domain.Summary
	err := s.store.Update(ctx, localstore.KeyDashboardStats, func(current string, present bool) (string, error) {
		base := domain.Summary{}
		if present {
			decoded, err := decode(current)
			if err != nil {
				s.log.Warn("overwriting corrupt dashboard summary", "error", err)
			} else {
				base = decoded
			}
		}
		updated = fn(base)
		raw, err := json.Marshal(updated)
		if err != nil {
			return "", fmt.Errorf("encode dashboard summary: %w", err)
		}
		return string(raw), nil
	})
	if err != nil {
		return domain.Summary{}, err
	}
	return updated, nil
}

func (s *LocalSummaryStore) Clear(ctx context.Context) error {
	return s.store.Delete(ctx, localstore.KeyDashboardStats)
}

func decode(raw string) (domain.Summary, error) {
	summary := domain.Summary{}
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		return domain.Summary{}, fmt.Errorf("%w: %v", domain.ErrCorruptSummary, err)
	}
	return summary, nil
}
