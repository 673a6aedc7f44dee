package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Kavirubc/ticket-dedup/internal/clock"
	"github.com/Kavirubc/ticket-dedup/internal/search"
)

func newSearchCmd() *cobra.Command {
	var (
		offset int
		limit  int
		save   string
	)

	cmd := &cobra.Command{
		Use:   "search [term]",
		Short: "Search stored and live tickets",
		Long: `Search the local corpus and GitHub at once. Terms may be plain text, a
ticket key (owner/repo#N) or field:value (priority, status, assignee,
reporter, project, type, component, label, created, updated).

Use --save KEY to store a live-only result locally.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && save == "" {
				return fmt.Errorf("a search term or --save is required")
			}
			ctx := context.Background()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			searcher := search.NewSearcher(a.store, a.gh, a.cfg.Sync.Projects, clock.Real(), a.logger)

			if save != "" {
				ticket, err := searcher.SaveLive(ctx, save)
				if err != nil {
					return err
				}
				if ticket == nil {
					printWarning("Ticket %s not found", save)
					return nil
				}
				printSuccess("Saved %s - %s", ticket.Key, ticket.Title)
				if len(args) == 0 {
					return nil
				}
			}

			entries, err := searcher.Search(ctx, args[0], offset, limit)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}

			if len(entries) == 0 {
				fmt.Println("No tickets found")
				return nil
			}

			printHeader("Found %d tickets:", len(entries))
			fmt.Println()
			for i, e := range entries {
				printTicket(offset+i+1, e.Ticket, e.Origin.String())
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&offset, "offset", 0, "number of results to skip")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum results to return")
	cmd.Flags().StringVar(&save, "save", "", "store the live ticket with this key locally")

	return cmd
}
