package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Kavirubc/ticket-dedup/pkg/models"
)

const indexPageSize = 500

func newIndexCmd() *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Rebuild the semantic index from the local store",
		Long:  `Embed every stored ticket (or those of --project) into the Qdrant collection.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.semantic == nil {
				return fmt.Errorf("semantic analysis is not available (analysis.enable_semantic_analysis)")
			}

			indexed, total := 0, 0
			for offset := 0; ; offset += indexPageSize {
				var page []*models.Ticket
				if project != "" {
					page, err = a.store.GetByProject(ctx, project, offset, indexPageSize)
				} else {
					page, err = a.store.GetAll(ctx, offset, indexPageSize)
				}
				if err != nil {
					return err
				}
				if len(page) == 0 {
					break
				}

				n, err := a.semantic.Index(ctx, page)
				if err != nil {
					return fmt.Errorf("indexing failed: %w", err)
				}
				indexed += n
				total += len(page)
				fmt.Printf("Indexed %d/%d tickets\n", indexed, total)
			}

			printSuccess("Indexed %d of %d tickets into %s", indexed, total, a.vdb.Collection())
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "only index one project (owner/repo)")
	return cmd
}
