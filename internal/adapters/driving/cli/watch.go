package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/silica-labs/corpusd/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch <project-id> <directory>",
	Short: "Watch a directory and ingest dropped files",
	Long: `Watches a drop directory and creates an upload job for every file
that appears. Runs until interrupted.`,
	Args: cobra.ExactArgs(2),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// settleDelay gives writers time to finish before the file is read.
const settleDelay = 500 * time.Millisecond

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	projectID, dir := args[0], args[1]

	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s (project %s). Press Ctrl+C to stop.\n", dir, projectID)

	for {
		select {
		case <-ctx.Done():
			cmd.Println("\nStopping watcher.")
			ingestService.Wait()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			ingestFile(cmd, projectID, event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// seenFiles prevents duplicate jobs when a create is followed by
// writes for the same file.
var seenFiles = map[string]time.Time{}

// ingestFile uploads one dropped file as a job.
func ingestFile(cmd *cobra.Command, projectID, path string) {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return
	}

	// Collapse the create+write event burst for one file.
	if last, ok := seenFiles[path]; ok && time.Since(last) < 5*time.Second {
		return
	}
	seenFiles[path] = time.Now()

	time.Sleep(settleDelay)

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Failed to read %s: %v", path, err)
		return
	}

	job, err := ingestService.Upload(context.Background(), projectID, name, data)
	if err != nil {
		logger.Warn("Failed to ingest %s: %v", name, err)
		return
	}
	cmd.Printf("Ingesting %s as job %s\n", name, job.ID)
}
