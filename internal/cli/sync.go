package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Kavirubc/ticket-dedup/internal/clock"
	"github.com/Kavirubc/ticket-dedup/internal/scheduler"
	"github.com/Kavirubc/ticket-dedup/pkg/models"
)

func newSyncCmd() *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync historical issues into the local store",
		Long:  `Run one sync cycle over the configured projects, or over --project only.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			syncer := a.syncer()
			var stats []models.SyncStats
			if project != "" {
				st, err := syncer.SyncProject(ctx, project)
				if err != nil {
					printError("%v", err)
				}
				stats = append(stats, st)
			} else {
				if len(syncer.Projects()) == 0 {
					return fmt.Errorf("no projects configured (sync.projects)")
				}
				stats = syncer.SyncAll(ctx)
			}

			printSyncStats(stats)
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "sync a single project (owner/repo)")
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the periodic sync until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.cfg.Sync.Enabled {
				return fmt.Errorf("sync is disabled (sync.enabled)")
			}

			s := scheduler.New(a.syncer(), a.cfg.Sync.Interval(), clock.Real(), a.logger)
			return s.Run(ctx)
		},
	}
}

func printSyncStats(stats []models.SyncStats) {
	for _, st := range stats {
		line := fmt.Sprintf("%s: fetched %d, stored %d in %dms", st.Project, st.Fetched, st.Upserted, st.DurationMs)
		if st.Errors > 0 {
			printWarning("%s (%d errors)", line, st.Errors)
		} else {
			printSuccess("%s", line)
		}
	}
}
