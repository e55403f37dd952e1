package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/silica-labs/corpusd/internal/core/domain"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage vector indexes",
	Long: `An index groups up to five completed jobs and backs one vector
collection. Syncing chunks the documents, embeds the chunks, and
upserts them; only synced indexes answer queries.`,
}

var indexCreateCmd = &cobra.Command{
	Use:   "create <project-id> <name> <job-id>...",
	Short: "Create an index over completed jobs",
	Args:  cobra.MinimumNArgs(3),
	RunE:  runIndexCreate,
}

var indexUpdateCmd = &cobra.Command{
	Use:   "update <index-id> <job-id>...",
	Short: "Replace an index's job set",
	Long: `Replaces the set of jobs bound to the index. A changed set resets the
index, and the next sync rebuilds the collection from scratch.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runIndexUpdate,
}

var indexSyncCmd = &cobra.Command{
	Use:   "sync <index-id>",
	Short: "Chunk, embed, and upsert an index's documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexSync,
}

var indexStatusCmd = &cobra.Command{
	Use:   "status <index-id>",
	Short: "Show an index with its jobs",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexStatus,
}

var indexListCmd = &cobra.Command{
	Use:   "list <project-id>",
	Short: "List a project's indexes",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexList,
}

var indexDeleteCmd = &cobra.Command{
	Use:   "delete <index-id>",
	Short: "Delete an index and its collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexDelete,
}

var (
	flagIndexDescription string
	flagEmbeddingModel   string
	flagSyncAsync        bool
)

func init() {
	indexCreateCmd.Flags().StringVarP(&flagIndexDescription, "description", "d", "", "index description")
	indexSyncCmd.Flags().StringVarP(&flagEmbeddingModel, "model", "m", "", "embedding model (default from config)")
	indexSyncCmd.Flags().BoolVar(&flagSyncAsync, "async", false, "return immediately instead of waiting for the sync")

	indexCmd.AddCommand(indexCreateCmd)
	indexCmd.AddCommand(indexUpdateCmd)
	indexCmd.AddCommand(indexSyncCmd)
	indexCmd.AddCommand(indexStatusCmd)
	indexCmd.AddCommand(indexListCmd)
	indexCmd.AddCommand(indexDeleteCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexCreate(cmd *cobra.Command, args []string) error {
	if indexManager == nil {
		return errors.New("index service not configured")
	}

	idx, err := indexManager.CreateIndex(
		context.Background(), args[0], args[1], flagIndexDescription, args[2:],
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	cmd.Printf("Created index %s\n", idx.Name)
	cmd.Printf("  ID:   %s\n", idx.ID)
	cmd.Printf("  Jobs: %d\n", len(idx.JobIDs))
	cmd.Println("Run: corpusd index sync " + idx.ID)
	return nil
}

func runIndexUpdate(cmd *cobra.Command, args []string) error {
	if indexManager == nil {
		return errors.New("index service not configured")
	}

	idx, err := indexManager.UpdateIndex(context.Background(), args[0], args[1:])
	if err != nil {
		return fmt.Errorf("update index: %w", err)
	}

	cmd.Printf("Index %s now has %d jobs (status %s)\n", idx.Name, len(idx.JobIDs), idx.Status)
	if idx.Status == domain.IndexCreated {
		cmd.Println("Membership changed; run: corpusd index sync " + idx.ID)
	}
	return nil
}

func runIndexSync(cmd *cobra.Command, args []string) error {
	if indexManager == nil {
		return errors.New("index service not configured")
	}
	ctx := context.Background()
	indexID := args[0]

	ack, err := indexManager.RequestSync(ctx, indexID, flagEmbeddingModel)
	if err != nil {
		return fmt.Errorf("request sync: %w", err)
	}
	if ack.AlreadySynced {
		cmd.Printf("Index already synced (%d chunks). Change its jobs to force a rebuild.\n", ack.ChunksCount)
		return nil
	}
	cmd.Println(ack.Message)

	if flagSyncAsync {
		return nil
	}
	return waitForSync(cmd, indexID)
}

// waitForSync polls the index until it leaves the syncing state.
func waitForSync(cmd *cobra.Command, indexID string) error {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		detail, err := indexManager.IndexStatus(context.Background(), indexID)
		if err != nil {
			return fmt.Errorf("get status: %w", err)
		}
		switch detail.Index.Status {
		case domain.IndexSynced:
			cmd.Printf("Sync complete: %d chunks, dimension %d\n",
				detail.Index.ChunksCount, detail.Index.EmbeddingDimension)
			return nil
		case domain.IndexSyncFailed:
			return fmt.Errorf("sync failed: %s", detail.Index.SyncError)
		case domain.IndexSyncing:
			// Keep polling.
		default:
			return fmt.Errorf("unexpected index status %s", detail.Index.Status)
		}
	}
	return nil
}

func runIndexStatus(cmd *cobra.Command, args []string) error {
	if indexManager == nil {
		return errors.New("index service not configured")
	}

	detail, err := indexManager.IndexStatus(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("get status: %w", err)
	}
	if flagJSON {
		return printJSON(cmd, detail)
	}
	idx := detail.Index

	cmd.Printf("Index: %s\n", idx.Name)
	cmd.Printf("  ID:     %s\n", idx.ID)
	cmd.Printf("  Status: %s\n", idx.Status)
	if idx.Synced {
		cmd.Printf("  Chunks: %d (dimension %d, model %s)\n",
			idx.ChunksCount, idx.EmbeddingDimension, idx.EmbeddingModel)
	}
	if idx.SyncError != "" {
		cmd.Printf("  Error:  %s\n", idx.SyncError)
	}
	if idx.SyncCompletedAt != nil {
		cmd.Printf("  Synced: %s\n", idx.SyncCompletedAt.Format("2006-01-02 15:04:05"))
	}

	cmd.Printf("  Jobs (%d):\n", len(detail.Jobs))
	for _, job := range detail.Jobs {
		cmd.Printf("    %s  %-10s %-10s %s\n", job.ID, job.Status, job.IndexingStatus, job.Filename)
	}
	return nil
}

func runIndexList(cmd *cobra.Command, args []string) error {
	if indexManager == nil {
		return errors.New("index service not configured")
	}

	indexes, err := indexManager.ListIndexes(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("list indexes: %w", err)
	}
	if flagJSON {
		return printJSON(cmd, indexes)
	}
	if len(indexes) == 0 {
		cmd.Println("No indexes in this project.")
		return nil
	}

	for _, idx := range indexes {
		cmd.Printf("%s  %-12s %-20s %d jobs", idx.ID, idx.Status, idx.Name, len(idx.JobIDs))
		if idx.Synced {
			cmd.Printf(", %d chunks", idx.ChunksCount)
		}
		cmd.Println()
	}
	return nil
}

func runIndexDelete(cmd *cobra.Command, args []string) error {
	if indexManager == nil {
		return errors.New("index service not configured")
	}

	if err := indexManager.DeleteIndex(context.Background(), args[0]); err != nil {
		return fmt.Errorf("delete index: %w", err)
	}
	cmd.Printf("Deleted index %s\n", args[0])
	return nil
}
