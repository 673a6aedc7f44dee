package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Kavirubc/ticket-dedup/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management commands",
	}

	cmd.AddCommand(newConfigValidateCmd())
	return cmd
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := config.FindConfigPath(cfgFile)
			if cfgPath == "" {
				return fmt.Errorf("config file not found")
			}

			fmt.Printf("Validating config: %s\n", cfgPath)

			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			errs := config.Validate(cfg)
			if len(errs) > 0 {
				printError("\nValidation errors:")
				for _, e := range errs {
					printError("  - %v", e)
				}
				return fmt.Errorf("configuration is invalid")
			}

			sim := cfg.Similarity
			printSuccess("\nConfiguration is valid!")
			fmt.Printf("  - Weights: title %.2f, description %.2f, files %.2f, labels %.2f\n",
				sim.TitleWeight, sim.DescriptionWeight, sim.FilePathWeight, sim.LabelWeight)
			fmt.Printf("  - Minimum threshold: %.2f, max results: %d\n", sim.MinimumThreshold, sim.MaxResults)
			fmt.Printf("  - Projects: %d configured\n", len(cfg.Sync.Projects))
			fmt.Printf("  - Sync: enabled=%t every %dh\n", cfg.Sync.Enabled, cfg.Sync.IntervalHours)
			fmt.Printf("  - Store: %s\n", cfg.Storage.Path)
			if cfg.Analysis.EnableSemanticAnalysis {
				fmt.Printf("  - Qdrant URL: %s\n", cfg.Qdrant.URL)
				fmt.Printf("  - Primary embedding: %s (%s)\n", cfg.Embedding.Primary.Provider, cfg.Embedding.Primary.Model)
			}

			return nil
		},
	}
}
