package dto

type SummaryOutput struct {
	TotalAnalyzed      int
	HighCompliance     int
	FlaggedIssues      int
	HighComplianceRate float64
}

type RecordInput struct {
	ComplianceScore float64
	FlagCount       int
}

type RecordOutput struct {
	Summary SummaryOutput
	// Persisted is false when the summary could not be written; the caller's
	// flow continues either way.
	Persisted bool
}
