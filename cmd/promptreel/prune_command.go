package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"promptreel/internal/blobstore"
	"promptreel/internal/jobs"
)

func newPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete failed jobs and their artifacts",
		Long: "Delete failed jobs that ended before the cutoff. Each job's artifacts are\n" +
			"removed from the blob store before the job record itself.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return errors.New("--older-than must be positive")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			repo, err := jobs.Open(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("open job repository: %w", err)
			}
			defer repo.Close()
			store, err := blobstore.NewFSStore(cfg.Storage.BlobDir)
			if err != nil {
				return fmt.Errorf("open blob store: %w", err)
			}

			cutoff := time.Now().Add(-olderThan)
			result, err := jobs.PruneFailed(cmd.Context(), repo, store, cutoff)
			out := cmd.OutOrStdout()
			for _, id := range result.JobIDs {
				fmt.Fprintf(out, "Removed job %s\n", id)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Pruned %d failed job(s) and %d artifact(s) older than %s\n",
				len(result.JobIDs), result.Artifacts, olderThan)
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 168*time.Hour, "Only prune jobs that ended longer ago than this")
	return cmd
}
