package usecase

import (
	"context"

	hclog "github.com/hashicorp/go-hclog"

	"medibill/internal/modules/dashboard/domain"
	"medibill/internal/modules/dashboard/dto"
	dashboardin "medibill/internal/modules/dashboard/port/in"
	"medibill/internal/modules/dashboard/service"
	"medibill/internal/platform/logging"
)

type Interactor struct {
	svc *service.DashboardService
	log hclog.Logger
}

func NewInteractor(svc *service.DashboardService, log hclog.Logger) dashboardin.Usecase {
	return &Interactor{svc: svc, log: logging.OrDiscard(log).Named("dashboard")}
}

func (i *Interactor) Record(ctx context.Context, input dto.RecordInput) dto.RecordOutput {
	updated, err := i.svc.Record(ctx, domain.NewOutcome(input.ComplianceScore, input.FlagCount))
	if err != nil {
		i.log.Error("dashboard summary not persisted", "error", err)
		return dto.RecordOutput{}
	}
	return dto.RecordOutput{Summary: toOutput(updated), Persisted: true}
}

func (i *Interactor) Summary(ctx context.Context) (dto.SummaryOutput, error) {
	summary, err := i.svc.Summary(ctx)
	if err != nil {
		return dto.SummaryOutput{}, err
	}
	return toOutput(summary), nil
}

func (i *Interactor) Reset(ctx context.Context) error {
	return i.svc.Reset(ctx)
}

func toOutput(s domain.Summary) dto.SummaryOutput {
	return dto.SummaryOutput{
		TotalAnalyzed:      s.TotalAnalyzed,
		HighCompliance:     s.HighCompliance,
		FlaggedIssues:      s.FlaggedIssues,
		HighComplianceRate: s.HighComplianceRate(),
	}
}
