package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func newRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh KEY",
		Short: "Re-fetch one ticket from GitHub into the local store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			ticket, err := a.syncer().Refresh(ctx, args[0])
			if err != nil {
				return err
			}
			if ticket == nil {
				printWarning("Ticket %s not found", args[0])
				return nil
			}
			printSuccess("Refreshed %s - %s", ticket.Key, ticket.Title)
			return nil
		},
	}
}
