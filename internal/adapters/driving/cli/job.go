package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/silica-labs/corpusd/internal/core/domain"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <project-id> <file>",
	Short: "Upload a document for parsing",
	Long: `Creates an upload job, extracts the document text, and stores it for
indexing. Supported formats: PDF and plain text (txt, md, csv, ...).`,
	Args: cobra.ExactArgs(2),
	RunE: runUpload,
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape <project-id> <url>",
	Short: "Scrape a web page into a job",
	Args:  cobra.ExactArgs(2),
	RunE:  runScrape,
}

var manualCmd = &cobra.Command{
	Use:   "manual <project-id> <text>",
	Short: "Create a job from literal text",
	Args:  cobra.ExactArgs(2),
	RunE:  runManual,
}

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Inspect and manage jobs",
}

var jobListCmd = &cobra.Command{
	Use:   "list <project-id>",
	Short: "List a project's jobs",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobList,
}

var jobShowCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Show a job's status",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobShow,
}

var jobContentCmd = &cobra.Command{
	Use:   "content <job-id>",
	Short: "Print a job's extracted text",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobContent,
}

var jobPreviewCmd = &cobra.Command{
	Use:   "preview <job-id>",
	Short: "Print the first lines of a job's text",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobPreview,
}

var jobDeleteCmd = &cobra.Command{
	Use:   "delete <job-id>",
	Short: "Delete a job and its content",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobDelete,
}

var (
	flagManualName   string
	flagPreviewLines int
)

func init() {
	manualCmd.Flags().StringVarP(&flagManualName, "name", "n", "", "name for the manual job")
	jobPreviewCmd.Flags().IntVarP(&flagPreviewLines, "lines", "l", 50, "number of lines to show")

	jobCmd.AddCommand(jobListCmd)
	jobCmd.AddCommand(jobShowCmd)
	jobCmd.AddCommand(jobContentCmd)
	jobCmd.AddCommand(jobPreviewCmd)
	jobCmd.AddCommand(jobDeleteCmd)

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(scrapeCmd)
	rootCmd.AddCommand(manualCmd)
	rootCmd.AddCommand(jobCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	projectID, path := args[0], args[1]

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	job, err := ingestService.Upload(context.Background(), projectID, filepath.Base(path), data)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	cmd.Printf("Created job %s, parsing...\n", job.ID)

	return waitAndReport(cmd, job.ID)
}

func runScrape(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	job, err := ingestService.Scrape(context.Background(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("scrape: %w", err)
	}
	cmd.Printf("Created job %s, fetching %s...\n", job.ID, args[1])

	return waitAndReport(cmd, job.ID)
}

func runManual(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	job, err := ingestService.Manual(context.Background(), args[0], flagManualName, args[1])
	if err != nil {
		return fmt.Errorf("create manual job: %w", err)
	}
	cmd.Printf("Created job %s (%d bytes of text)\n", job.ID, job.TextSize)
	return nil
}

// waitAndReport blocks until background parsing settles and prints
// the job's final state.
func waitAndReport(cmd *cobra.Command, jobID string) error {
	ingestService.Wait()

	job, err := ingestService.Job(context.Background(), jobID)
	if err != nil {
		return fmt.Errorf("get job: %w", err)
	}
	switch job.Status {
	case domain.JobCompleted:
		cmd.Printf("Job %s completed: %d bytes of text extracted\n", job.ID, job.TextSize)
		return nil
	case domain.JobFailed:
		return fmt.Errorf("job failed: %s", job.Error)
	default:
		cmd.Printf("Job %s is %s\n", job.ID, job.Status)
		return nil
	}
}

func runJobList(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	jobs, err := ingestService.ListJobs(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("list jobs: %w", err)
	}
	if flagJSON {
		return printJSON(cmd, jobs)
	}
	if len(jobs) == 0 {
		cmd.Println("No jobs in this project.")
		return nil
	}

	for _, job := range jobs {
		cmd.Printf("%s  %-8s %-10s %-10s %s\n",
			job.ID, job.Type, job.Status, job.IndexingStatus, job.Filename)
	}
	return nil
}

func runJobShow(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	job, err := ingestService.Job(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("get job: %w", err)
	}
	if flagJSON {
		return printJSON(cmd, job)
	}

	cmd.Printf("Job: %s\n", job.ID)
	cmd.Printf("  Source:    %s\n", job.Filename)
	cmd.Printf("  Type:      %s\n", job.Type)
	cmd.Printf("  Status:    %s\n", job.Status)
	cmd.Printf("  Indexing:  %s\n", job.IndexingStatus)
	if job.FileSize > 0 {
		cmd.Printf("  File size: %d bytes\n", job.FileSize)
	}
	if job.TextSize > 0 {
		cmd.Printf("  Text size: %d bytes\n", job.TextSize)
	}
	if job.Error != "" {
		cmd.Printf("  Error:     %s\n", job.Error)
	}
	cmd.Printf("  Created:   %s\n", job.CreatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func runJobContent(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	content, err := ingestService.Content(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("get content: %w", err)
	}

	cmd.Printf("# %s (%d chars, %d words, %d lines, %.1f KB)\n",
		content.Job.Filename, content.Stats.CharacterCount, content.Stats.WordCount,
		content.Stats.LineCount, content.Stats.SizeKB)
	cmd.Println(content.Text)
	return nil
}

func runJobPreview(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	preview, err := ingestService.Preview(context.Background(), args[0], flagPreviewLines)
	if err != nil {
		return fmt.Errorf("get preview: %w", err)
	}

	cmd.Println(preview.Text)
	if preview.Truncated {
		cmd.Printf("... (truncated to %d lines)\n", preview.Lines)
	}
	return nil
}

func runJobDelete(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	err := ingestService.DeleteJob(context.Background(), args[0])
	if err != nil {
		var conflict *domain.ConflictError
		if errors.As(err, &conflict) {
			return fmt.Errorf("job is referenced by indexes %v; delete them first", conflict.IndexNames)
		}
		return fmt.Errorf("delete job: %w", err)
	}
	cmd.Printf("Deleted job %s\n", args[0])
	return nil
}
