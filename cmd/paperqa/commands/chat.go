package commands

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ebzlo/paperqa-go/internal/agent"
	"github.com/ebzlo/paperqa-go/internal/logging"
	"github.com/ebzlo/paperqa-go/internal/safety"
)

// NewChatCmd constructs the `paperqa chat` command: an interactive loop that
// answers questions until the user types "exit" or closes stdin. The corpus
// is ingested and indexed once at startup, then reused for every question.
func NewChatCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive Q&A session over the paper corpus",
		Long: `Start an interactive session. Each line is answered against the indexed
papers; type "exit" (or press Ctrl-D) to quit.

Examples:
  paperqa chat
  paperqa chat --papers ./papers`,
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

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, `Ask a question about your papers (type "exit" to quit).`)

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					break
				}
				question := strings.TrimSpace(scanner.Text())
				if question == "" {
					continue
				}
				if strings.EqualFold(question, "exit") {
					break
				}

				answer, err := qa.Answer(ctx, question)
				if err != nil {
					fmt.Fprintln(out, formatAnswerErr(err))
					continue
				}
				fmt.Fprintln(out, answer)
				fmt.Fprintln(out)

				if history != nil {
					if err := history.Append(ctx, cfg.Papers.Dir, question, answer); err != nil {
						log.Warn("failed to persist turn", "error", err)
					}
				}
			}
			return scanner.Err()
		},
	}

	cmd.Flags().StringVarP(&dir, "papers", "p", "", "Directory of PDF papers to ingest (overrides config)")

	return cmd
}

// formatAnswerErr renders an Answer error for interactive display. Question
// validation problems get a friendly message; everything else is shown as-is
// so the session survives transient provider failures.
func formatAnswerErr(err error) string {
	var vErr *safety.ValidationError
	if errors.As(err, &vErr) {
		return "Cannot answer that: " + vErr.Error()
	}
	var pErr *agent.ParseError
	if errors.As(err, &pErr) {
		return "The checker returned an unreadable verdict; please try again: " + pErr.Error()
	}
	return "Error: " + err.Error()
}
