package in

import (
	"context"

	"medibill/internal/modules/analysis/dto"
)

type Usecase interface {
	Analyze(ctx context.Context, input dto.AnalyzeInput) (dto.AnalyzeOutput, error)
	LastReport(ctx context.Context) (dto.ReportOutput, error)
	ExportLast(ctx context.Context, dir string) (dto.ExportOutput, error)
}
