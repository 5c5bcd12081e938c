package service

import (
	"fmt"
	"strings"

	"medibill/internal/modules/analysis/domain"
)

// RenderMarkdown lays a report out as a markdown document.
func RenderMarkdown(r domain.Report) string {
	b := &strings.Builder{}
	title := r.File.FileName
	if title == "" {
		title = "Bill analysis"
	}
	fmt.Fprintf(b, "# %s\n\n", title)

	verdict := "needs review"
	if r.ComplianceScore() > domain.HighComplianceScore {
		verdict = "high compliance"
	}
	fmt.Fprintf(b, "**Compliance score:** %.0f%% (%s)\n\n", r.ComplianceScore()*100, verdict)
	if c := r.ConfidenceScores; c.Overall > 0 {
		fmt.Fprintf(b, "Confidence: overall %.0f%%, OCR %.0f%%, extraction %.0f%%\n\n", c.Overall*100, c.OCR*100, c.Extraction*100)
	}

	writeMeta(b, r.Structured.Meta)

	fmt.Fprintf(b, "## Flags (%d)\n\n", r.FlagCount())
	if r.FlagCount() == 0 {
		b.WriteString("No issues flagged.\n\n")
	}
	for _, f := range r.Validation.Flags {
		fmt.Fprintf(b, "- **%s** `%s`: %s\n", strings.ToUpper(string(f.Severity)), f.Rule, f.Description)
		if ev := strings.TrimSpace(f.Evidence); ev != "" {
			fmt.Fprintf(b, "  > %s\n", strings.ReplaceAll(ev, "\n", " "))
		}
	}
	if r.FlagCount() > 0 {
		b.WriteString("\n")
	}

	if items := r.Structured.LineItems; len(items) > 0 {
		b.WriteString("## Line items\n\n| Description | Qty | Unit price | Total |\n|---|---:|---:|---:|\n")
		for _, item := range items {
			fmt.Fprintf(b, "| %s | %g | %.2f | %.2f |\n", cell(item.Description), item.Quantity, item.UnitPrice, item.Total)
		}
		fmt.Fprintf(b, "| **Total** | | | **%.2f** |\n\n", r.BilledTotal())
	}

	writeList(b, "Issues found", r.Validation.Summary.IssuesFound)
	writeList(b, "Recommendations", r.Validation.Summary.Recommendations)
	return b.String()
}

func writeMeta(b *strings.Builder, m domain.Meta) {
	rows := [][2]string{
		{"Patient", m.PatientName},
		{"Patient ID", m.PatientID},
		{"Hospital", m.Hospital},
		{"Admission", m.Dates.Admission},
		{"Discharge", m.Dates.Discharge},
		{"GST number", m.GSTNumber},
	}
	wrote := false
	for _, row := range rows {
		if strings.TrimSpace(row[1]) == "" {
			continue
		}
		if !wrote {
			b.WriteString("## Details\n\n")
			wrote = true
		}
		fmt.Fprintf(b, "- %s: %s\n", row[0], row[1])
	}
	if wrote {
		b.WriteString("\n")
	}
}

func writeList(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", heading)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}

func cell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "|", `\|`), "\n", " ")
}
