package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/smartcommunity/portal/internal/client"
	"github.com/smartcommunity/portal/internal/config"
	"github.com/smartcommunity/portal/internal/observability"
	"github.com/smartcommunity/portal/internal/portal"
)

// cli carries what every command needs once the root pre-run has executed.
type cli struct {
	in  io.Reader
	out io.Writer

	apiURL      string
	sessionFile string

	logger  *zap.Logger
	session *portal.Session
	client  *client.Client
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	app := &cli{in: in, out: out}

	root := &cobra.Command{
		Use:           "gatectl",
		Short:         "Visitor passes and gate check-in for the community portal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.init()
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.PersistentFlags().StringVar(&app.apiURL, "api", "", "API base URL (default $GATECTL_API_URL or http://localhost:5000/api)")
	root.PersistentFlags().StringVar(&app.sessionFile, "session-file", "", "where the signed-in session is kept (default $GATECTL_SESSION_FILE)")

	root.AddCommand(
		newLoginCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newRegisterCmd(app),
		newVisitorsCmd(app),
		newVerifyCmd(app),
		newScanCmd(app),
		newPendingCmd(app),
		newCheckInCmd(app),
	)
	return root
}

func (a *cli) init() error {
	cfg := config.LoadClient()
	if a.apiURL != "" {
		cfg.BaseURL = a.apiURL
	}
	if a.sessionFile != "" {
		cfg.SessionFile = a.sessionFile
	}

	logger, err := observability.NewLogger(config.LoggerConfig{Level: cfg.LogLevel, Encoding: "console", Output: "stderr"})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.logger = logger

	a.session = portal.NewSession(portal.NewFileStore(cfg.SessionFile))
	if err := a.session.Init(); err != nil {
		logger.Warn("discarding unreadable session", zap.String("path", cfg.SessionFile), zap.Error(err))
		if err := a.session.Teardown(); err != nil {
			return err
		}
	}

	a.client = client.New(cfg.BaseURL, a.session,
		client.WithTimeout(cfg.Timeout()),
		client.WithLogger(logger))
	return nil
}

func (a *cli) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
