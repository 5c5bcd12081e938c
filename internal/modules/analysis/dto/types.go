package dto

type AnalyzeInput struct {
	Path     string
	ForceOCR bool
}

type FlagOutput struct {
	Rule        string
	Severity    string
	Description string
	Evidence    string
}

type LineItemOutput struct {
	Description string
	Quantity    float64
	UnitPrice   float64
	Total       float64
}

type ReportOutput struct {
	FileID            string
	FileName          string
	UploadedAt        string
	ComplianceScore   float64
	HighCompliance    bool
	Flags             []FlagOutput
	LineItems         []LineItemOutput
	BilledTotal       float64
	IssuesFound       []string
	Recommendations   []string
	OverallConfidence float64
	// Markdown is the report rendered for display or export.
	Markdown string
}

type SummaryOutput struct {
	TotalAnalyzed  int
	HighCompliance int
	FlaggedIssues  int
	Persisted      bool
}

type AnalyzeOutput struct {
	Pages   int
	Report  ReportOutput
	Summary SummaryOutput
}

type ExportOutput struct {
	Path string
}
