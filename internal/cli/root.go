// Package cli implements the chainchart command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meikuraledutech/chainchart"
	"github.com/meikuraledutech/chainchart/backend"
	"github.com/meikuraledutech/chainchart/internal/config"
	"github.com/meikuraledutech/chainchart/internal/logging"
	"github.com/meikuraledutech/chainchart/internal/ui"
	"github.com/meikuraledutech/chainchart/libsql"
	"github.com/meikuraledutech/chainchart/memory"
	"github.com/meikuraledutech/chainchart/postgres"
)

var version = "0.3.0"

// app holds state shared by every subcommand once flags are parsed.
type app struct {
	configPath string
	driver     string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger

	// compiler overrides the configured backend, for tests.
	compiler chainchart.Compiler
	// store overrides the configured store, for tests.
	store chainchart.Store
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd(&app{}).Execute()
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "chainchart",
		Short: "chainchart: visual smart contract diagrams",
		Long: ui.Brand.Sprint("chainchart") + " designs smart contracts as diagrams\n" +
			ui.Subtle.Sprint("Validate, store, compile and deploy chainchart diagrams"),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd.ErrOrStderr())
		},
	}
	root.SetVersionTemplate("chainchart {{ .Version }}\n")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default "+config.Path()+")")
	root.PersistentFlags().StringVar(&a.driver, "driver", "", "project store: postgres, libsql or memory")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		a.serveCmd(),
		a.diagramCmd(),
		a.compileCmd(),
		a.deployCmd(),
		a.executeCmd(),
		a.projectsCmd(),
		a.configCmd(),
	)
	reportErrors(root)
	return root
}

func (a *app) load(stderr io.Writer) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.driver != "" {
		cfg.Database.Driver = a.driver
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg
	a.logger = logging.New(cfg.Log.Level, cfg.Log.Format, stderr)
	return nil
}

// reportErrors prints each command's error once, in the CLI palette.
func reportErrors(cmd *cobra.Command) {
	if run := cmd.RunE; run != nil {
		cmd.RunE = func(c *cobra.Command, args []string) error {
			err := run(c, args)
			if err != nil {
				fmt.Fprintf(c.ErrOrStderr(), "%s %s\n", ui.StatusIcon(false), ui.Bad.Sprint(err.Error()))
			}
			return err
		}
	}
	for _, sub := range cmd.Commands() {
		reportErrors(sub)
	}
}

// openStore opens the configured project store and makes sure its schema
// exists. The returned func releases it.
func (a *app) openStore(ctx context.Context) (chainchart.Store, func(), error) {
	if a.store != nil {
		return a.store, func() {}, nil
	}

	var (
		store   chainchart.Store
		closeFn func()
	)
	switch a.cfg.Database.Driver {
	case config.DriverPostgres:
		s, err := postgres.Open(ctx, a.cfg.Database.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		store, closeFn = s, s.Close
	case config.DriverLibSQL:
		if path := strings.TrimPrefix(a.cfg.Database.URL, "file:"); path != a.cfg.Database.URL {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, nil, err
			}
		}
		s, err := libsql.Open(a.cfg.Database.URL)
		if err != nil {
			return nil, nil, err
		}
		store, closeFn = s, func() { _ = s.Close() }
	default:
		store, closeFn = memory.New(), func() {}
	}

	if err := store.CreateSchema(ctx); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("create schema: %w", err)
	}
	a.logger.Debug("store opened", "driver", a.cfg.Database.Driver)
	return store, closeFn, nil
}

func (a *app) backend() chainchart.Compiler {
	if a.compiler != nil {
		return a.compiler
	}
	return backend.New(a.cfg.Backend.URL,
		backend.WithTimeout(a.cfg.Backend.Timeout.Duration),
		backend.WithLogger(a.logger),
	)
}

// readDiagram loads and validates a diagram file. "-" reads stdin.
func readDiagram(cmd *cobra.Command, path string) (*chainchart.Diagram, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	return chainchart.ParseDiagram(data)
}
