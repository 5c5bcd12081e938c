package out

import (
	"context"

	"medibill/internal/modules/analysis/domain"
)

// DocumentInspector checks a local bill before anything is uploaded.
type DocumentInspector interface {
	Inspect(ctx context.Context, path string) (domain.Document, error)
}

type AnalysisGateway interface {
	Analyze(ctx context.Context, token string, doc domain.Document, forceOCR bool) (domain.Report, error)
}

// ReportStore keeps the most recent report. LoadLast reports
// apperrors.ErrNoReport when none was stored.
type ReportStore interface {
	SaveLast(ctx context.Context, report domain.Report) error
	LoadLast(ctx context.Context) (domain.Report, error)
}

// SummarySnapshot is the dashboard state after an outcome was recorded.
type SummarySnapshot struct {
	TotalAnalyzed  int
	HighCompliance int
	FlaggedIssues  int
	Persisted      bool
}

// OutcomeRecorder counts one successful analysis in the dashboard summary.
type OutcomeRecorder interface {
	Record(ctx context.Context, complianceScore float64, flagCount int) SummarySnapshot
}

// SessionGate lends the current token and takes back auth rejections.
type SessionGate interface {
	Token(ctx context.Context) (string, error)
	ReportAuthFailure(ctx context.Context, token string, err error) bool
}

type NoteExporter interface {
	Export(ctx context.Context, dir string, note domain.Note) (string, error)
}
