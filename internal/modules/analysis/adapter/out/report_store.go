package out

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"medibill/internal/modules/analysis/domain"
	apperrors "medibill/internal/platform/errors"
	"medibill/internal/platform/localstore"
)

type LocalReportStore struct {
	store localstore.Store
}

func NewLocalReportStore(store localstore.Store) *LocalReportStore {
	return &LocalReportStore{store: store}
}

func (s *LocalReportStore) SaveLast(ctx context.Context, report domain.Report) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return s.store.Set(ctx, localstore.KeyLastReport, string(raw))
}

func (s *LocalReportStore) LoadLast(ctx context.Context) (domain.Report, error) {
	raw, err := s.store.Get(ctx, localstore.KeyLastReport)
	if errors.Is(err, apperrors.ErrNotFound) {
		return domain.Report{}, apperrors.ErrNoReport
	}
	if err != nil {
		return domain.Report{}, err
	}
	report := domain.Report{}
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return domain.Report{}, fmt.Errorf("decode stored report: %w", err)
	}
	return report, nil
}
