package usecase

import (
	"context"
	"fmt"
	"strings"

	"medibill/internal/modules/analysis/domain"
	"medibill/internal/modules/analysis/dto"
	analysisin "medibill/internal/modules/analysis/port/in"
	"medibill/internal/modules/analysis/service"
	apperrors "medibill/internal/platform/errors"
)

type Interactor struct {
	svc *service.AnalysisService
}

func NewInteractor(svc *service.AnalysisService) analysisin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Analyze(ctx context.Context, input dto.AnalyzeInput) (dto.AnalyzeOutput, error) {
	if strings.TrimSpace(input.Path) == "" {
		return dto.AnalyzeOutput{}, fmt.Errorf("%w: file path is required", apperrors.ErrInvalidInput)
	}
	result, err := i.svc.Analyze(ctx, input.Path, input.ForceOCR)
	if err != nil {
		return dto.AnalyzeOutput{}, err
	}
	return dto.AnalyzeOutput{
		Pages:  result.Document.Pages,
		Report: toReportOutput(result.Report),
		Summary: dto.SummaryOutput{
			TotalAnalyzed:  result.Summary.TotalAnalyzed,
			HighCompliance: result.Summary.HighCompliance,
			FlaggedIssues:  result.Summary.FlaggedIssues,
			Persisted:      result.Summary.Persisted,
		},
	}, nil
}

func (i *Interactor) LastReport(ctx context.Context) (dto.ReportOutput, error) {
	report, err := i.svc.LastReport(ctx)
	if err != nil {
		return dto.ReportOutput{}, err
	}
	return toReportOutput(report), nil
}

func (i *Interactor) ExportLast(ctx context.Context, dir string) (dto.ExportOutput, error) {
	path, err := i.svc.ExportLast(ctx, dir)
	if err != nil {
		return dto.ExportOutput{}, err
	}
	return dto.ExportOutput{Path: path}, nil
}

func toReportOutput(r domain.Report) dto.ReportOutput {
	out := dto.ReportOutput{
		FileID:            r.FileID,
		FileName:          r.File.FileName,
		UploadedAt:        r.File.UploadedAt,
		ComplianceScore:   r.ComplianceScore(),
		HighCompliance:    r.ComplianceScore() > domain.HighComplianceScore,
		BilledTotal:       r.BilledTotal(),
		IssuesFound:       r.Validation.Summary.IssuesFound,
		Recommendations:   r.Validation.Summary.Recommendations,
		OverallConfidence: r.ConfidenceScores.Overall,
		Markdown:          service.RenderMarkdown(r),
	}
	for _, f := range r.Validation.Flags {
		out.Flags = append(out.Flags, dto.FlagOutput{
			Rule:        f.Rule,
			Severity:    string(f.Severity),
			Description: f.Description,
			Evidence:    f.Evidence,
		})
	}
	for _, item := range r.Structured.LineItems {
		out.LineItems = append(out.LineItems, dto.LineItemOutput(item))
	}
	return out
}
