package domain

// Report is the analysis result served by the backend for one uploaded bill.
type Report struct {
	FileID           string           `json:"file_id"`
	ExtractedID      string           `json:"extracted_id"`
	File             FileInfo         `json:"file"`
	RawText          string           `json:"raw_text"`
	Structured       Structured       `json:"structured"`
	Validation       Validation       `json:"validation"`
	AnalysisDetails  AnalysisDetails  `json:"analysis_details"`
	ConfidenceScores ConfidenceScores `json:"confidence_scores"`
	Artifact         ReportArtifact   `json:"report"`
}

type FileInfo struct {
	FileName    string `json:"filename"`
	StoragePath string `json:"storage_path"`
	UploadedAt  string `json:"uploaded_at"`
	Size        int64  `json:"size"`
}

type Structured struct {
	LineItems []LineItem `json:"line_items"`
	Meta      Meta       `json:"meta"`
}

type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
}

type Meta struct {
	PatientName string        `json:"detected_patient_name"`
	PatientID   string        `json:"detected_patient_id"`
	Age         string        `json:"detected_age"`
	Gender      string        `json:"detected_gender"`
	Dates       DetectedDates `json:"detected_dates"`
	Hospital    string        `json:"detected_hospital"`
	GSTNumber   string        `json:"detected_gst_number"`
	Address     string        `json:"detected_address"`
}

type DetectedDates struct {
	Admission string `json:"admission"`
	Discharge string `json:"discharge"`
}

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

type Flag struct {
	ID          string   `json:"id"`
	Rule        string   `json:"rule"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	Evidence    string   `json:"evidence"`
	CreatedAt   string   `json:"created_at"`
}

type ValidationSummary struct {
	ComplianceScore float64  `json:"compliance_score"`
	IssuesFound     []string `json:"issues_found"`
	Recommendations []string `json:"recommendations"`
}

type Validation struct {
	Flags   []Flag            `json:"flags"`
	Summary ValidationSummary `json:"summary"`
}

type Checks struct {
	HasPatientInfo bool `json:"has_patient_info"`
	HasDates       bool `json:"has_dates"`
	HasAmounts     bool `json:"has_amounts"`
	HasLineItems   bool `json:"has_line_items"`
}

type AnalysisDetails struct {
	Summary ValidationSummary `json:"summary"`
	Details struct {
		Checks Checks `json:"checks"`
	} `json:"details"`
}

type ConfidenceScores struct {
	OCR        float64 `json:"ocr_confidence"`
	Extraction float64 `json:"extraction_confidence"`
	Overall    float64 `json:"overall_confidence"`
}

type ReportArtifact struct {
	Path string `json:"report_path"`
	// Type is "html", "pdf" or empty.
	Type string `json:"report_type"`
}

func (r Report) ComplianceScore() float64 {
	return r.Validation.Summary.ComplianceScore
}

func (r Report) FlagCount() int {
	return len(r.Validation.Flags)
}

// BilledTotal sums the line item totals.
func (r Report) BilledTotal() float64 {
	total := 0.0
	for _, item := range r.Structured.LineItems {
		total += item.Total
	}
	return total
}

// FlagsBySeverity counts flags per severity.
func (r Report) FlagsBySeverity() map[Severity]int {
	counts := map[Severity]int{}
	for _, f := range r.Validation.Flags {
		counts[f.Severity]++
	}
	return counts
}

// HighComplianceScore mirrors the dashboard threshold for labelling a report.
const HighComplianceScore = 0.8
