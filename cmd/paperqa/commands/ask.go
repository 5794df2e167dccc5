package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ebzlo/paperqa-go/internal/logging"
)

// NewAskCmd constructs the `paperqa ask` command, which answers a single
// question against the configured paper corpus and prints the result.
func NewAskCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a single question of the paper corpus",
		Long: `Ask one natural language question of the ingested papers and print the
cited answer.

Examples:
  paperqa ask "what dataset was used to evaluate the model?"
  paperqa ask --papers ./papers "how does attention scale with sequence length?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadedCfg
			if dir != "" {
				cfg.Papers.Dir = dir
			}

			log := rootLogger
			ctx := logging.WithLogger(cmd.Context(), log)

			qa, cleanup, err := buildAgent(ctx, cfg, log)
			defer cleanup()
			if err != nil {
				return err
			}

			history, err := openHistory(cfg, log)
			if err != nil {
				return err
			}
			if history != nil {
				defer history.Close()
			}

			answer, err := qa.Answer(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), answer)

			if history != nil {
				if err := history.Append(ctx, cfg.Papers.Dir, args[0], answer); err != nil {
					log.Warn("failed to persist turn", "error", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "papers", "p", "", "Directory of PDF papers to ingest (overrides config)")

	return cmd
}
