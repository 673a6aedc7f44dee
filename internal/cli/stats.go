package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show local corpus statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := a.store.Stats(ctx)
			if err != nil {
				return err
			}

			printHeader("Ticket store: %s", a.cfg.Storage.Path)
			fmt.Printf("  Total:  %d\n", stats.Total)
			fmt.Printf("  Open:   %d\n", stats.Open)
			fmt.Printf("  Closed: %d\n", stats.Closed)

			if len(stats.ByProject) > 0 {
				fmt.Println("  By project:")
				projects := make([]string, 0, len(stats.ByProject))
				for p := range stats.ByProject {
					projects = append(projects, p)
				}
				sort.Strings(projects)
				for _, p := range projects {
					fmt.Printf("    %-40s %d\n", p, stats.ByProject[p])
				}
			}
			return nil
		},
	}
}
