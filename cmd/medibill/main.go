package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"medibill/internal/bootstrap"
	analysisdto "medibill/internal/modules/analysis/dto"
	"medibill/internal/platform/config"
	"medibill/internal/platform/logging"
	"medibill/internal/ui/render"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, in io.Reader, out, errOut io.Writer) error {
	opts := &rootOptions{}
	root := newRootCmd(opts)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	err := root.Execute()
	if closeErr := opts.close(); err == nil {
		err = closeErr
	}
	return err
}

// rootOptions carries the persistent flags and the App opened for the
// running command, shared between a command's guard and its body. run closes
// the App once the command returns.
type rootOptions struct {
	dataDir  string
	apiURL   string
	logLevel string

	app *bootstrap.App
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:           "medibill",
		Short:         "Medical bill analysis client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", ".", "directory holding .medibill state")
	root.PersistentFlags().StringVar(&opts.apiURL, "api", "", "analysis backend base URL (overrides config and "+config.APIURLEnv+")")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: trace|debug|info|warn|error")

	root.AddCommand(newRegisterCmd(opts))
	root.AddCommand(newLoginCmd(opts))
	root.AddCommand(newLogoutCmd(opts))
	root.AddCommand(newWhoAmICmd(opts))
	root.AddCommand(newAnalyzeCmd(opts))
	root.AddCommand(newReportCmd(opts))
	root.AddCommand(newStatsCmd(opts))
	root.AddCommand(newTUICmd(opts))
	return root
}

func (o *rootOptions) load(cmd *cobra.Command) (*bootstrap.App, error) {
	if o.app != nil {
		return o.app, nil
	}
	cfg, err := config.Load(o.dataDir)
	if err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(o.apiURL); v != "" {
		cfg.APIBaseURL = v
	}
	if v := strings.TrimSpace(o.logLevel); v != "" {
		cfg.LogLevel = v
	}
	app, err := bootstrap.New(cfg, logging.New(cfg.LogLevel, cmd.ErrOrStderr()))
	if err != nil {
		return nil, err
	}
	o.app = app
	return app, nil
}

func (o *rootOptions) close() error {
	app := o.app
	o.app = nil
	return app.Close()
}

// requireLogin is the pre-run of every protected command.
func (o *rootOptions) requireLogin(cmd *cobra.Command, _ []string) error {
	app, err := o.load(cmd)
	if err != nil {
		return err
	}
	_, err = app.Guard.Require(cmd.Context())
	return err
}

func newRegisterCmd(opts *rootOptions) *cobra.Command {
	var username, email, password string
	cmd := &cobra.Command{
		Use:   "register --username <name> --email <addr> --password <secret>",
		Short: "Create a backend account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := opts.load(cmd)
			if err != nil {
				return err
			}
			out, err := app.SessionCLI.Register(cmd.Context(), username, email, password)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "registered %s (id %d)", out.Username, out.UserID)
			if out.Message != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), ": %s", out.Message)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "account name")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var username, password string
	var passwordStdin bool
	cmd := &cobra.Command{
		Use:   "login --username <name> [--password <secret> | --password-stdin]",
		Short: "Log in and store the session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if passwordStdin {
				if password != "" {
					return fmt.Errorf("--password and --password-stdin are mutually exclusive")
				}
				read, err := readSecret(cmd.InOrStdin())
				if err != nil {
					return err
				}
				password = read
			}
			app, err := opts.load(cmd)
			if err != nil {
				return err
			}
			out, err := app.SessionCLI.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s", out.User.Username)
			if !out.User.Resolved {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), " (profile not loaded yet)")
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "account name")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	return cmd
}

func readSecret(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if err := app.SessionCLI.Logout(cmd.Context()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func newWhoAmICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "whoami",
		Short:   "Show the logged-in user",
		PreRunE: opts.requireLogin,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := opts.load(cmd)
			if err != nil {
				return err
			}
			out, err := app.SessionCLI.WhoAmI(cmd.Context())
			if err != nil {
				return err
			}
			user := out.User
			if !user.Resolved {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s (profile not loaded yet)\n", user.Username)
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> id=%d\n", user.Username, user.Email, user.ID)
			return nil
		},
	}
}

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var forceOCR bool
	cmd := &cobra.Command{
		Use:     "analyze <file>",
		Short:   "Upload a bill (pdf, png, jpg) for analysis",
		Args:    cobra.ExactArgs(1),
		PreRunE: opts.requireLogin,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.load(cmd)
			if err != nil {
				return err
			}
			out, err := app.AnalysisCLI.Analyze(cmd.Context(), args[0], forceOCR)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			printReportLine(w, out.Report)
			if out.Pages > 0 {
				_, _ = fmt.Fprintf(w, "pages=%d\n", out.Pages)
			}
			s := out.Summary
			_, _ = fmt.Fprintf(w, "dashboard: analyzed=%d high_compliance=%d flagged_issues=%d\n", s.TotalAnalyzed, s.HighCompliance, s.FlaggedIssues)
			if !s.Persisted {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "warning: dashboard summary could not be saved")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&forceOCR, "force-ocr", false, "ask the backend to OCR even text PDFs")
	return cmd
}

func printReportLine(w io.Writer, r analysisdto.ReportOutput) {
	label := "needs review"
	if r.HighCompliance {
		label = "high compliance"
	}
	_, _ = fmt.Fprintf(w, "file=%s id=%s score=%.0f%% (%s) flags=%d\n", r.FileName, r.FileID, r.ComplianceScore*100, label, len(r.Flags))
}

func newReportCmd(opts *rootOptions) *cobra.Command {
	report := &cobra.Command{Use: "report", Short: "Last analysis report"}

	var raw bool
	var width int
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the last analysis report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := opts.load(cmd)
			if err != nil {
				return err
			}
			out, err := app.AnalysisCLI.LastReport(cmd.Context())
			if err != nil {
				return err
			}
			if raw {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.Markdown)
				return nil
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), render.New("", width).Render(out.Markdown))
			return nil
		},
	}
	show.Flags().BoolVar(&raw, "raw", false, "print markdown without terminal styling")
	show.Flags().IntVar(&width, "width", 100, "wrap width")

	var outDir string
	export := &cobra.Command{
		Use:   "export --out <dir>",
		Short: "Write the last report as a markdown note",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(outDir) == "" {
				return fmt.Errorf("--out is required")
			}
			app, err := opts.load(cmd)
			if err != nil {
				return err
			}
			out, err := app.AnalysisCLI.ExportLast(cmd.Context(), outDir)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported %s\n", out.Path)
			return nil
		},
	}
	export.Flags().StringVar(&outDir, "out", "", "destination directory")

	report.AddCommand(show, export)
	return report
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	stats := &cobra.Command{Use: "stats", Short: "Local dashboard summary"}

	stats.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print totals over every analysis run from this data dir",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := opts.load(cmd)
			if err != nil {
				return err
			}
			s, err := app.DashboardCLI.Summary(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "analyzed=%d high_compliance=%d flagged_issues=%d rate=%.1f%%\n",
				s.TotalAnalyzed, s.HighCompliance, s.FlaggedIssues, s.HighComplianceRate*100)
			return nil
		},
	})

	stats.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Zero the local summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if err := app.DashboardCLI.Reset(cmd.Context()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "summary reset")
			return nil
		},
	})
	return stats
}

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the terminal UI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := opts.load(cmd)
			if err != nil {
				return err
			}
			return bootstrap.RunTUI(app)
		},
	}
}
