package cli

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/Kavirubc/ticket-dedup/pkg/models"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		req    models.AnalysisRequest
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Rank stored tickets against a described ticket",
		Long:  `Compare a ticket description with the local corpus without touching GitHub.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if !cmd.Flags().Changed("threshold") {
				req.MinimumThreshold = a.cfg.Similarity.MinimumThreshold
			}
			if !cmd.Flags().Changed("max-results") {
				req.MaxResults = a.cfg.Similarity.MaxResults
			}

			results, err := a.analyzer().Analyze(ctx, req)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			printMatches(results)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Title, "title", "", "ticket title")
	cmd.Flags().StringVar(&req.Description, "description", "", "ticket description")
	cmd.Flags().StringSliceVar(&req.Files, "file", nil, "affected file path (repeatable)")
	cmd.Flags().StringVar(&req.ProjectKey, "project", "", "limit the corpus to a project (owner/repo)")
	cmd.Flags().Float64Var(&req.MinimumThreshold, "threshold", 0, "minimum similarity score (default from config)")
	cmd.Flags().IntVar(&req.MaxResults, "max-results", 0, "maximum matches (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}
