package bootstrap

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	hclog "github.com/hashicorp/go-hclog"

	analysisinadapter "medibill/internal/modules/analysis/adapter/in"
	analysisoutadapter "medibill/internal/modules/analysis/adapter/out"
	analysisservice "medibill/internal/modules/analysis/service"
	analysisusecase "medibill/internal/modules/analysis/usecase"
	dashboardinadapter "medibill/internal/modules/dashboard/adapter/in"
	dashboardoutadapter "medibill/internal/modules/dashboard/adapter/out"
	dashboardservice "medibill/internal/modules/dashboard/service"
	dashboardusecase "medibill/internal/modules/dashboard/usecase"
	sessioninadapter "medibill/internal/modules/session/adapter/in"
	sessionoutadapter "medibill/internal/modules/session/adapter/out"
	sessionservice "medibill/internal/modules/session/service"
	sessionusecase "medibill/internal/modules/session/usecase"
	"medibill/internal/platform/clock"
	"medibill/internal/platform/config"
	"medibill/internal/platform/localstore"
	"medibill/internal/platform/logging"
	"medibill/internal/platform/transport"
	uiapp "medibill/internal/ui/app"
)

type App struct {
	SessionCLI   sessioninadapter.CLIHandler
	Guard        sessioninadapter.Guard
	DashboardCLI dashboardinadapter.CLIHandler
	AnalysisCLI  analysisinadapter.CLIHandler

	store *localstore.SQLiteStore
}

// New wires every module against the local store under cfg.DBPath and the
// backend at cfg.APIBaseURL. Callers must Close the returned App.
func New(cfg config.Config, log hclog.Logger) (*App, error) {
	log = logging.OrDiscard(log)
	clk := clock.SystemClock{}

	store, err := localstore.OpenSQLite(cfg.DBPath, clk)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	client := transport.New(transport.Options{
		BaseURL:          cfg.APIBaseURL,
		Timeout:          cfg.RequestTimeout,
		MaxResponseBytes: cfg.MaxResponseBytes,
		Logger:           log,
	})

	sessionUC := sessionusecase.NewInteractor(
		sessionservice.NewSessionService(
			sessionoutadapter.NewHTTPAuthGateway(client),
			sessionoutadapter.NewLocalTokenStore(store),
			log,
		),
		log,
	)

	dashboardUC := dashboardusecase.NewInteractor(
		dashboardservice.NewDashboardService(dashboardoutadapter.NewLocalSummaryStore(store, log), log),
		log,
	)

	analysisUC := analysisusecase.NewInteractor(analysisservice.NewAnalysisService(analysisservice.Deps{
		Inspector: analysisoutadapter.NewLocalDocumentInspector(),
		Gateway:   analysisoutadapter.NewHTTPAnalysisGateway(client),
		Reports:   analysisoutadapter.NewLocalReportStore(store),
		Recorder:  analysisoutadapter.NewDashboardRecorder(dashboardUC),
		Session:   analysisoutadapter.NewSessionGate(sessionUC),
		Exporter:  analysisoutadapter.NewMarkdownNoteExporter(),
		Clock:     clk,
		Logger:    log,
	}))

	return &App{
		SessionCLI:   sessioninadapter.NewCLIHandler(sessionUC),
		Guard:        sessioninadapter.NewGuard(sessionUC),
		DashboardCLI: dashboardinadapter.NewCLIHandler(dashboardUC),
		AnalysisCLI:  analysisinadapter.NewCLIHandler(analysisUC),
		store:        store,
	}, nil
}

func (a *App) Close() error {
	if a == nil || a.store == nil {
		return nil
	}
	return a.store.Close()
}

func RunTUI(app *App) error {
	model := uiapp.NewModel(app.Guard, app.SessionCLI, app.AnalysisCLI, app.DashboardCLI)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
