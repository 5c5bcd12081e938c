package out

import (
	"context"

	analysisout "medibill/internal/modules/analysis/port/out"
	dashboarddto "medibill/internal/modules/dashboard/dto"
	dashboardin "medibill/internal/modules/dashboard/port/in"
)

type DashboardRecorder struct {
	dashboard dashboardin.Usecase
}

func NewDashboardRecorder(dashboard dashboardin.Usecase) *DashboardRecorder {
	return &DashboardRecorder{dashboard: dashboard}
}

func (r *DashboardRecorder) Record(ctx context.Context, complianceScore float64, flagCount int) analysisout.SummarySnapshot {
	out := r.dashboard.Record(ctx, dashboarddto.RecordInput{ComplianceScore: complianceScore, FlagCount: flagCount})
	return analysisout.SummarySnapshot{
		TotalAnalyzed:  out.Summary.TotalAnalyzed,
		HighCompliance: out.Summary.HighCompliance,
		FlaggedIssues:  out.Summary.FlaggedIssues,
		Persisted:      out.Persisted,
	}
}
