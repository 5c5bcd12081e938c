package in

import (
	"context"

	"medibill/internal/modules/dashboard/dto"
)

type Usecase interface {
	// Record counts one successful analysis. It never fails.
	Record(ctx context.Context, input dto.RecordInput) dto.RecordOutput
	Summary(ctx context.Context) (dto.SummaryOutput, error)
	Reset(ctx context.Context) error
}
