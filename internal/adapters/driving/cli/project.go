package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
	Long:  `Projects group jobs and indexes. Every other resource belongs to one.`,
}

var projectCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectCreate,
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all projects",
	Args:  cobra.NoArgs,
	RunE:  runProjectList,
}

var projectShowCmd = &cobra.Command{
	Use:   "show <project-id>",
	Short: "Show a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectShow,
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete <project-id>",
	Short: "Delete a project and everything in it",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectDelete,
}

var flagProjectDescription string

func init() {
	projectCreateCmd.Flags().StringVarP(&flagProjectDescription, "description", "d", "", "project description")
	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectShowCmd)
	projectCmd.AddCommand(projectDeleteCmd)
	rootCmd.AddCommand(projectCmd)
}

func runProjectCreate(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}

	project, err := projectService.CreateProject(context.Background(), args[0], flagProjectDescription)
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}

	cmd.Printf("Created project %s\n", project.Name)
	cmd.Printf("  ID: %s\n", project.ID)
	return nil
}

func runProjectList(cmd *cobra.Command, _ []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}

	projects, err := projectService.ListProjects(context.Background())
	if err != nil {
		return fmt.Errorf("list projects: %w", err)
	}
	if flagJSON {
		return printJSON(cmd, projects)
	}
	if len(projects) == 0 {
		cmd.Println("No projects. Create one with: corpusd project create <name>")
		return nil
	}

	for _, p := range projects {
		cmd.Printf("%s  %s", p.ID, p.Name)
		if p.Description != "" {
			cmd.Printf("  (%s)", p.Description)
		}
		cmd.Println()
	}
	return nil
}

func runProjectShow(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}
	ctx := context.Background()

	project, err := projectService.Project(ctx, args[0])
	if err != nil {
		return fmt.Errorf("get project: %w", err)
	}
	if flagJSON {
		return printJSON(cmd, project)
	}

	cmd.Printf("Project: %s\n", project.Name)
	cmd.Printf("  ID:          %s\n", project.ID)
	if project.Description != "" {
		cmd.Printf("  Description: %s\n", project.Description)
	}
	cmd.Printf("  Created:     %s\n", project.CreatedAt.Format("2006-01-02 15:04:05"))

	if ingestService != nil {
		jobs, err := ingestService.ListJobs(ctx, project.ID)
		if err == nil {
			cmd.Printf("  Jobs:        %d\n", len(jobs))
		}
	}
	if indexManager != nil {
		indexes, err := indexManager.ListIndexes(ctx, project.ID)
		if err == nil {
			cmd.Printf("  Indexes:     %d\n", len(indexes))
		}
	}
	return nil
}

func runProjectDelete(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}

	if err := projectService.DeleteProject(context.Background(), args[0]); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	cmd.Printf("Deleted project %s\n", args[0])
	return nil
}
