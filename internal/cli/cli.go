package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/specialistvlad/contractexplorer/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// AppFactory creates the App for a validated configuration.
type AppFactory func(outW io.Writer, cfg *app.Config) *app.App

type rootFlags struct {
	configPath   string
	contractsDir string
	network      string
	listen       string
	logLevel     string
	logFormat    string
	logFile      string
	concurrency  int
	metadataTTL  time.Duration
	open         bool
	placement    string
}

type runner struct {
	outW   io.Writer
	newApp AppFactory
	flags  rootFlags
}

// NewRootCommand builds the explorer command tree.
func NewRootCommand(outW io.Writer, newApp AppFactory) *cobra.Command {
	r := &runner{outW: outW, newApp: newApp}

	root := &cobra.Command{
		Use:   "explorer",
		Short: "Browse and call the Soroban contracts of a local project",
		Long: `Contract Explorer loads the contract manifests of a project and the
built-in contracts, and serves a development UI for inspecting them.

Without a subcommand the explorer server is started.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          r.serve,
	}
	root.SetOut(outW)
	root.SetErr(outW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: 2, Message: err.Error()}
	})

	pf := root.PersistentFlags()
	pf.StringVarP(&r.flags.configPath, "config", "c", app.DefaultConfigPath, "Path to the explorer configuration file.")
	pf.StringVarP(&r.flags.contractsDir, "contracts-dir", "d", "", "Directory containing contract manifests (default \""+app.DefaultContractsDir+"\").")
	pf.StringVarP(&r.flags.network, "network", "n", "", "ID of the network to activate.")
	pf.StringVar(&r.flags.listen, "listen", "", "Address for the explorer server (default \""+app.DefaultListen+"\").")
	pf.StringVar(&r.flags.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	pf.StringVar(&r.flags.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	pf.StringVar(&r.flags.logFile, "log-file", "", "Also write logs to this file, rotated by size.")
	pf.IntVar(&r.flags.concurrency, "concurrency", 0, "Number of contract modules resolved in parallel. 0 uses the config file or 1.")
	pf.DurationVar(&r.flags.metadataTTL, "metadata-ttl", 0, "How long fetched contract metadata is cached.")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the explorer server",
		Args:  cobra.NoArgs,
		RunE:  r.serve,
	}
	for _, c := range []*cobra.Command{root, serve} {
		c.Flags().BoolVar(&r.flags.open, "open", false, "Open the explorer window on first load.")
		c.Flags().StringVar(&r.flags.placement, "placement", "right", "Side of the toggle button. Options: 'left' or 'right'.")
	}

	root.AddCommand(
		serve,
		r.listCommand(),
		r.metadataCommand(),
		r.networksCommand(),
		r.labURLCommand(),
		r.signaturesCommand(),
	)
	return root
}

// Execute runs the command tree with args.
func Execute(ctx context.Context, outW io.Writer, args []string, newApp AppFactory) error {
	root := NewRootCommand(outW, newApp)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	var exitErr *ExitError
	if err != nil && !errors.As(err, &exitErr) && isUsageError(err) {
		return &ExitError{Code: 2, Message: err.Error()}
	}
	return err
}

func isUsageError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "accepts ") ||
		strings.HasPrefix(msg, "requires ")
}

// config validates the flags into an app configuration.
func (r *runner) config() (*app.Config, error) {
	cfg, err := app.NewConfig(app.Config{
		ConfigPath:      r.flags.configPath,
		ContractsDir:    r.flags.contractsDir,
		Listen:          r.flags.listen,
		Network:         r.flags.network,
		LogFormat:       strings.ToLower(r.flags.logFormat),
		LogLevel:        strings.ToLower(r.flags.logLevel),
		LogFile:         r.flags.logFile,
		LoadConcurrency: r.flags.concurrency,
		MetadataTTL:     r.flags.metadataTTL,
		OpenOnStart:     r.flags.open,
		Placement:       strings.ToLower(r.flags.placement),
	})
	if err != nil {
		return nil, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("CLI parameter validation complete.", "config", cfg)
	return cfg, nil
}

// withApp creates the App, runs fn and closes the App afterwards.
func (r *runner) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) (err error) {
	cfg, err := r.config()
	if err != nil {
		return err
	}
	a := r.newApp(r.outW, cfg)
	defer func() {
		if cerr := a.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to shut down: %w", cerr)
		}
	}()
	return fn(cmd.Context(), a)
}
