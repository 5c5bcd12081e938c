package domain

import (
	"errors"
	"math"
)

// HighComplianceThreshold is the score an analysis must exceed to count as
// highly compliant.
const HighComplianceThreshold = 0.8

var ErrCorruptSummary = errors.New("dashboard summary is corrupt")

// Outcome is what one successful analysis contributes to the summary.
type Outcome struct {
	ComplianceScore float64
	FlagCount       int
}

// NewOutcome clamps the score into [0,1] and the flag count to zero or more.
func NewOutcome(score float64, flagCount int) Outcome {
	switch {
	case math.IsNaN(score) || score < 0:
		score = 0
	case score > 1:
		score = 1
	}
	if flagCount < 0 {
		flagCount = 0
	}
	return Outcome{ComplianceScore: score, FlagCount: flagCount}
}

func (o Outcome) HighCompliance() bool {
	return o.ComplianceScore > HighComplianceThreshold
}

type Summary struct {
	TotalAnalyzed  int `json:"total_analyzed"`
	HighCompliance int `json:"high_compliance"`
	FlaggedIssues  int `json:"flagged_issues"`
}

// Fold returns the summary with one more outcome counted.
func (s Summary) Fold(o Outcome) Summary {
	s = s.Normalize()
	s.TotalAnalyzed++
	if o.HighCompliance() {
		s.HighCompliance++
	}
	s.FlaggedIssues += o.FlagCount
	return s
}

// Normalize repairs counts read from storage: none negative and
// HighCompliance never above TotalAnalyzed.
func (s Summary) Normalize() Summary {
	if s.TotalAnalyzed < 0 {
		s.TotalAnalyzed = 0
	}
	if s.HighCompliance < 0 {
		s.HighCompliance = 0
	}
	if s.HighCompliance > s.TotalAnalyzed {
		s.HighCompliance = s.TotalAnalyzed
	}
	if s.FlaggedIssues < 0 {
		s.FlaggedIssues = 0
	}
	return s
}

// HighComplianceRate is zero for an empty summary.
func (s Summary) HighComplianceRate() float64 {
	if s.TotalAnalyzed == 0 {
		return 0
	}
	return float64(s.HighCompliance) / float64(s.TotalAnalyzed)
}
