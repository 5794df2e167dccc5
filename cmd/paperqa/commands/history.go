package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ebzlo/paperqa-go/internal/logging"
)

// NewHistoryCmd constructs the `paperqa history` command, which prints the
// most recent Q&A turns recorded for a corpus directory.
func NewHistoryCmd() *cobra.Command {
	var dir string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent questions and answers for a corpus",
		Long: `Print the most recent Q&A turns persisted for the configured papers
directory, oldest first.

Examples:
  paperqa history
  paperqa history --papers ./papers --limit 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadedCfg
			if dir != "" {
				cfg.Papers.Dir = dir
			}

			log := rootLogger
			ctx := logging.WithLogger(cmd.Context(), log)

			history, err := openHistory(cfg, log)
			if err != nil {
				return err
			}
			if history == nil {
				return fmt.Errorf("history: persistence is disabled (history.db_path = disabled)")
			}
			defer history.Close()

			turns, err := history.Recent(ctx, cfg.Papers.Dir, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(turns) == 0 {
				fmt.Fprintf(out, "No history for %s\n", cfg.Papers.Dir)
				return nil
			}
			for _, t := range turns {
				fmt.Fprintf(out, "[%s]\nQ: %s\nA: %s\n\n",
					t.CreatedAt.Format("2006-01-02 15:04"), t.Question, t.Answer)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "papers", "p", "", "Corpus directory the transcript is keyed by (overrides config)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of turns to show")

	return cmd
}
