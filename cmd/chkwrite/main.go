package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cgast/chkwrite/internal/config"
	"github.com/cgast/chkwrite/internal/logging"
)

const version = "0.1.0"

// errCheckFailed makes `chkwrite check` exit non-zero without an extra
// error line; the verdicts were already printed.
var errCheckFailed = errors.New("check failed")

// globals holds what the persistent flags and config resolve to.
type globals struct {
	configPath string
	verbose    bool
	logFormat  string
	mode       string

	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:   "chkwrite",
		Short: "chkwrite - learn to write a paper check",
		Long: `chkwrite teaches check writing in three phases:

  I do     watch a scripted demonstration fill the check field by field
  We do    fill each field yourself; wrong answers stop you until fixed
  You do   fill the whole check, then have it graded

Run without arguments to start the interactive shell.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if g.logger != nil {
				_ = g.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if g.cfg.Mode == config.ModeAgent {
				return runAgent(cmd, g)
			}
			return runREPL(cmd, g)
		},
	}

	root.PersistentFlags().StringVar(&g.configPath, "config", config.DefaultPath, "Path to config file")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "Log format: json or console (default from config)")
	root.Flags().StringVar(&g.mode, "mode", "", "Run mode: interactive or agent (default from config or CHKWRITE_MODE)")

	root.AddCommand(
		newREPLCmd(g),
		newAgentCmd(g),
		newServeCmd(g),
		newScenariosCmd(g),
		newDemoCmd(g),
		newCheckCmd(g),
		newInitCmd(),
		newValidateCmd(g),
	)
	return root
}

// init loads config and builds the logger. Flags override the file.
func (g *globals) init(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(g.configPath)
	if err != nil {
		return err
	}
	if g.mode != "" {
		cfg.Mode = g.mode
	}
	if g.logFormat != "" {
		cfg.LogFormat = g.logFormat
	}
	if g.verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	g.cfg = cfg

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	g.logger = logger.With(zap.String("command", cmd.Name()))
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errCheckFailed) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}
