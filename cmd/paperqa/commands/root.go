// Package commands defines all Cobra CLI commands for the paperqa binary.
package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ebzlo/paperqa-go/internal/audit"
	"github.com/ebzlo/paperqa-go/internal/config"
	"github.com/ebzlo/paperqa-go/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedCfg is the resolved configuration, populated in PersistentPreRunE
// before any subcommand runs.
var loadedCfg *config.Config

// rootLogger is the process logger, built from the resolved logging config.
var rootLogger *slog.Logger

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "paperqa",
		Short: "paperqa — ask questions of a folder of research papers",
		Long: `paperqa ingests a directory of PDF research papers, indexes them in
memory, and answers natural language questions with page-level citations.

Every answer is drafted, critiqued, and revised by an LLM loop, then passed
through a citation guard that rejects references to documents that were not
retrieved.

Model provider is selected via the MODEL_PROVIDER environment variable
or a YAML config file (~/.paperqa/config.yaml).
See 'paperqa --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Bootstrap logger so config loading itself can log; rebuilt
			// below once the logging config is known.
			log := logging.New("", "")

			cfg, path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}
			loadedCfg = cfg
			rootLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(rootLogger, cmd.Name(), path)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.paperqa/config.yaml)")

	root.AddCommand(
		NewAskCmd(),
		NewChatCmd(),
		NewHistoryCmd(),
		NewVersionCmd(),
	)

	return root
}
