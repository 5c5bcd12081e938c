package in

import (
	"context"

	"medibill/internal/modules/analysis/dto"
	analysisin "medibill/internal/modules/analysis/port/in"
)

type CLIHandler struct {
	usecase analysisin.Usecase
}

func NewCLIHandler(usecase analysisin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Analyze(ctx context.Context, path string, forceOCR bool) (dto.AnalyzeOutput, error) {
	return h.usecase.Analyze(ctx, dto.AnalyzeInput{Path: path, ForceOCR: forceOCR})
}

func (h CLIHandler) LastReport(ctx context.Context) (dto.ReportOutput, error) {
	return h.usecase.LastReport(ctx)
}

func (h CLIHandler) ExportLast(ctx context.Context, dir string) (dto.ExportOutput, error) {
	return h.usecase.ExportLast(ctx, dir)
}
