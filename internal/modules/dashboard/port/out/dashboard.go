package out

import (
	"context"

	"medibill/internal/modules/dashboard/domain"
)

// SummaryStore persists the dashboard summary. Load returns the zero summary
// when none is stored and wraps domain.ErrCorruptSummary when it cannot be
// decoded.
type SummaryStore interface {
	Load(ctx context.Context) (domain.Summary, error)
	// Apply replaces the stored summary with fn's result atomically.
	Apply(ctx context.Context, fn func(domain.Summary) domain.Summary) (domain.Summary, error)
	Clear(ctx context.Context) error
}
