package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"medibill/internal/modules/analysis/domain"
	analysisout "medibill/internal/modules/analysis/port/out"
	"medibill/internal/platform/clock"
	"medibill/internal/platform/logging"
	"medibill/internal/platform/slug"
	"medibill/internal/platform/transport"
)

type Deps struct {
	Inspector analysisout.DocumentInspector
	Gateway   analysisout.AnalysisGateway
	Reports   analysisout.ReportStore
	Recorder  analysisout.OutcomeRecorder
	Session   analysisout.SessionGate
	Exporter  analysisout.NoteExporter
	Clock     clock.Clock
	Logger    hclog.Logger
}

type AnalysisService struct {
	inspector analysisout.DocumentInspector
	gateway   analysisout.AnalysisGateway
	reports   analysisout.ReportStore
	recorder  analysisout.OutcomeRecorder
	session   analysisout.SessionGate
	exporter  analysisout.NoteExporter
	clock     clock.Clock
	log       hclog.Logger
}

func NewAnalysisService(deps Deps) *AnalysisService {
	clk := deps.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &AnalysisService{
		inspector: deps.Inspector,
		gateway:   deps.Gateway,
		reports:   deps.Reports,
		recorder:  deps.Recorder,
		session:   deps.Session,
		exporter:  deps.Exporter,
		clock:     clk,
		log:       logging.OrDiscard(deps.Logger).Named("analysis"),
	}
}

type Result struct {
	Document domain.Document
	Report   domain.Report
	Summary  analysisout.SummarySnapshot
}

// Analyze uploads one bill and counts the outcome in the dashboard summary
// exactly once. Failed uploads leave the summary and the last report alone.
func (s *AnalysisService) Analyze(ctx context.Context, path string, forceOCR bool) (Result, error) {
	doc, err := s.inspector.Inspect(ctx, path)
	if err != nil {
		return Result{}, err
	}

	token, err := s.session.Token(ctx)
	if err != nil || strings.TrimSpace(token) == "" {
		return Result{}, transport.AuthRequired()
	}

	log := s.log.With("file", doc.Name, "size", doc.Size, "force_ocr", forceOCR)
	log.Info("uploading for analysis")
	report, err := s.gateway.Analyze(ctx, token, doc, forceOCR)
	if err != nil {
		if s.session.ReportAuthFailure(ctx, token, err) {
			log.Info("session invalidated by analysis rejection")
		}
		return Result{}, err
	}

	summary := s.recorder.Record(ctx, report.ComplianceScore(), report.FlagCount())
	if err := s.reports.SaveLast(ctx, report); err != nil {
		log.Warn("last report not saved", "error", err)
	}
	log.Info("analysis complete", "file_id", report.FileID, "score", report.ComplianceScore(), "flags", report.FlagCount())
	return Result{Document: doc, Report: report, Summary: summary}, nil
}

func (s *AnalysisService) LastReport(ctx context.Context) (domain.Report, error) {
	return s.reports.LoadLast(ctx)
}

// ExportLast writes the last report as a markdown note into dir and returns
// the note's path.
func (s *AnalysisService) ExportLast(ctx context.Context, dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", fmt.Errorf("export directory is required")
	}
	report, err := s.reports.LoadLast(ctx)
	if err != nil {
		return "", err
	}
	return s.exporter.Export(ctx, dir, s.noteFor(report))
}

func (s *AnalysisService) noteFor(report domain.Report) domain.Note {
	name := slug.FromFileName(report.File.FileName)
	if id := slug.Make(report.FileID); report.FileID != "" {
		if len(id) > 8 {
			id = id[:8]
		}
		name += "-" + id
	}
	return domain.Note{
		Slug: name,
		Meta: domain.NoteMeta{
			FileID:          report.FileID,
			FileName:        report.File.FileName,
			UploadedAt:      report.File.UploadedAt,
			ComplianceScore: report.ComplianceScore(),
			Flags:           report.FlagCount(),
			Hospital:        report.Structured.Meta.Hospital,
			ExportedAt:      s.clock.Now().Format(time.RFC3339),
		},
		Body: RenderMarkdown(report),
	}
}
