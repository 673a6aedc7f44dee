package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Kavirubc/ticket-dedup/internal/pipeline"
)

func newProcessCmd() *cobra.Command {
	var eventPath string

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Process a single issue from GitHub Action event",
		Long: `Process an issues event. For newly opened issues the ticket is fetched,
stored, ranked against the corpus and annotated with similar tickets.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			builder := pipeline.NewBuilder(a.gh, a.store, a.analyzer(), dryRun)
			if a.semantic != nil {
				builder.WithIndex(a.semantic)
			}
			orch := pipeline.NewOrchestrator(a.cfg, builder.BuildDefault(), a.logger)

			result, err := orch.ProcessEventFile(ctx, eventPath)
			if err != nil {
				return err
			}

			pipeline.PrintResult(os.Stdout, result)
			if result.Failed {
				return fmt.Errorf("processing %s failed", result.Key)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&eventPath, "event-path", os.Getenv("GITHUB_EVENT_PATH"), "path to the GitHub event JSON")
	return cmd
}
