// Package cli implements the ecowork command line client.
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fastygo/ecowork/api/transport"
	"github.com/fastygo/ecowork/internal/apiclient"
	"github.com/fastygo/ecowork/internal/app"
	"github.com/fastygo/ecowork/internal/config"
	"github.com/fastygo/ecowork/pkg/logger"
)

// annotationDaemon marks long-running commands; they keep info logging and
// initialize the session themselves.
const annotationDaemon = "ecowork/daemon"

// Options customizes the root command.
type Options struct {
	Version    string
	LoadConfig func() (*config.Config, error)
}

type runtime struct {
	opts Options

	verbose bool
	noColor bool
	asJSON  bool
	apiURL  string
	storage string

	cfg    *config.Config
	logger *zap.Logger
	app    *app.App
}

// NewRootCommand builds the command tree.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.LoadConfig == nil {
		opts.LoadConfig = config.Load
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	rt := &runtime{opts: opts}

	root := &cobra.Command{
		Use:   "ecowork",
		Short: "EcoWork remote-work rewards client",
		Long: `ecowork talks to the EcoWork backend to register remote-work days,
track avoided CO2 and redeem benefits with the earned credits.

When the backend cannot be reached every command keeps working against a
local demo dataset and says so in its output.

Example usage:
  ecowork login --email joao.silva@techsolutions.com.br --password secret
  ecowork log-day --mode CAR --distance 15
  ecowork stats
  ecowork benefits --category vouchers
  ecowork serve                 # local session gateway on SERVER_PORT`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.BoolVarP(&rt.verbose, "verbose", "v", false, "verbose logging")
	pf.BoolVar(&rt.noColor, "no-color", false, "disable colored output")
	pf.BoolVar(&rt.asJSON, "json", false, "print results as JSON")
	pf.StringVar(&rt.apiURL, "api-url", "", "backend base URL (default from ECOWORK_API_URL)")
	pf.StringVar(&rt.storage, "storage", "", "session storage file (default from ECOWORK_STORAGE_PATH)")

	root.AddCommand(
		rt.versionCommand(),
		rt.serveCommand(),
		rt.loginCommand(),
		rt.registerCommand(),
		rt.logoutCommand(),
		rt.whoamiCommand(),
		rt.healthCommand(),
		rt.logDayCommand(),
		rt.historyCommand(),
		rt.statsCommand(),
		rt.benefitsCommand(),
		rt.redeemCommand(),
		rt.dashboardCommand(),
		rt.userCommand(),
		rt.usersCommand(),
		rt.companyCommand(),
	)
	return root
}

// Execute runs the CLI with the process arguments.
func Execute(version string) error {
	return NewRootCommand(Options{Version: version}).Execute()
}

type runFunc func(ctx context.Context, cmd *cobra.Command, args []string) error

// wrap boots the client core around fn and always releases storage.
func (rt *runtime) wrap(fn runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if err := rt.setup(ctx, cmd); err != nil {
			return err
		}
		defer rt.teardown()

		if cmd.Annotations[annotationDaemon] == "" {
			rt.app.Session.Initialize(ctx)
		}
		return fn(ctx, cmd, args)
	}
}

func (rt *runtime) setup(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := rt.opts.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if rt.apiURL != "" {
		cfg.API.BaseURL = strings.TrimSuffix(rt.apiURL, "/")
	}
	if rt.storage != "" {
		cfg.Storage.Path = rt.storage
	}

	level := cfg.Logger.Level
	switch {
	case rt.verbose:
		level = "debug"
	case cmd.Annotations[annotationDaemon] == "":
		// Demo-mode notices are printed by the command itself.
		level = "error"
	}
	log, err := logger.New(logger.Config{
		Level:    level,
		Encoding: cfg.Logger.Encoding,
		Output:   cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	rt.cfg = cfg
	rt.logger = log
	rt.app = a
	log.Debug("configuration loaded",
		zap.String("api_url", cfg.API.BaseURL),
		zap.String("storage_driver", cfg.Storage.Driver),
	)
	return nil
}

func (rt *runtime) teardown() {
	if rt.app != nil {
		if err := rt.app.Close(); err != nil {
			rt.logger.Warn("failed to release storage", zap.Error(err))
		}
		rt.app = nil
	}
	if rt.logger != nil {
		_ = rt.logger.Sync()
	}
}

func (rt *runtime) output(cmd *cobra.Command) *printer {
	return newPrinter(cmd.OutOrStdout(), !rt.noColor && !rt.asJSON)
}

// emit prints v as a JSON envelope with --json, otherwise runs human.
func (rt *runtime) emit(cmd *cobra.Command, v interface{}, source apiclient.Source, human func(p *printer)) error {
	if rt.asJSON {
		return rt.encode(cmd, transport.NewSourced(v, string(source), source != apiclient.SourceBackend))
	}
	p := rt.output(cmd)
	human(p)
	p.Source(source)
	return nil
}

func (rt *runtime) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "ecowork %s\n", rt.opts.Version)
			return nil
		},
	}
}
