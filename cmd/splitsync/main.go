package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/mmynk/splitsync/internal/apiclient"
	"github.com/mmynk/splitsync/internal/config"
	"github.com/mmynk/splitsync/internal/service"
	"github.com/mmynk/splitsync/internal/session"
	"github.com/mmynk/splitsync/internal/session/sqlite"
	"github.com/mmynk/splitsync/pkg/logging"
)

var Version = "dev"

// app is built once per invocation before any subcommand runs.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	client   *service.Client
	out      *printer
	closers  []io.Closer
}

type rootFlags struct {
	configPath string
	baseURL    string
	logLevel   string
	output     string
	metrics    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, describe(err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "splitsync",
		Short:         "Command-line client for a shared-expense ledger",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd, flags)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close(flags)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", config.DefaultFilePath(), "Path to the YAML config file")
	pf.StringVar(&flags.baseURL, "base-url", "", "Ledger service URL (overrides config and "+config.EnvBaseURL+")")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVarP(&flags.output, "output", "o", "text", "Output format: text or json")
	pf.BoolVar(&flags.metrics, "metrics", false, "Print client metrics to stderr after the command")

	rootCmd.AddCommand(
		loginCmd(a),
		signupCmd(a),
		logoutCmd(a),
		meCmd(a),
		groupsCmd(a),
		membersCmd(a),
		inviteCmd(a),
		invitationCmd(a),
		expensesCmd(a),
		expenseCmd(a),
		addExpenseCmd(a),
		balancesCmd(a),
		debtsCmd(a),
		settleCmd(a),
		activityCmd(a),
		themesCmd(a),
	)
	return rootCmd
}

// init resolves settings (flag over env over file over defaults) and wires
// the session store, transport and services.
func (a *app) init(cmd *cobra.Command, flags *rootFlags) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	if flags.baseURL != "" {
		cfg.BaseURL = flags.baseURL
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	out, err := newPrinter(cmd.OutOrStdout(), flags.output)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.out = out
	a.logger = logging.Setup(cmd.ErrOrStderr(), cfg.LogLevel)
	a.registry = prometheus.NewRegistry()

	store, err := a.openStore(cmd.Context())
	if err != nil {
		return err
	}

	api, err := apiclient.New(apiclient.Config{
		BaseURL:           cfg.BaseURL,
		Timeout:           cfg.Timeout,
		HTTP2:             cfg.HTTP2,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
		Logger:            a.logger,
		Registerer:        a.registry,
	}, store)
	if err != nil {
		return err
	}

	a.client = service.NewClient(api, service.Options{
		Logger:     a.logger,
		Registerer: a.registry,
	})
	a.logger.Debug("Client initialized", "base_url", cfg.BaseURL, "session", cfg.SessionPath)
	return nil
}

func (a *app) openStore(ctx context.Context) (session.Store, error) {
	if a.cfg.SessionPath == "" {
		return session.NewMemoryStore(), nil
	}
	store, err := sqlite.New(ctx, a.cfg.SessionPath, a.cfg.SessionPassphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	a.closers = append(a.closers, store)
	return store, nil
}

func (a *app) close(flags *rootFlags) error {
	if flags.metrics && a.registry != nil {
		dumpMetrics(os.Stderr, a.registry)
	}
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn("Failed to close", "error", err)
		}
	}
	return nil
}

// dumpMetrics writes the registry in the text exposition format.
func dumpMetrics(w io.Writer, reg *prometheus.Registry) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	promhttp.HandlerFor(reg, promhttp.HandlerOpts{}).ServeHTTP(rec, req)
	_, _ = io.Copy(w, rec.Body)
}

// describe turns API errors into the user-facing message.
func describe(err error) string {
	if apiclient.IsSessionExpired(err) {
		return "Your session has expired. Run `splitsync login` to sign in again."
	}
	if apiErr, ok := apiclient.AsError(err); ok {
		return apiErr.Message
	}
	return err.Error()
}
