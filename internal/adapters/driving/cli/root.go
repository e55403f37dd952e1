// Package cli implements the corpusd command-line interface.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/silica-labs/corpusd/internal/adapters/driven/config/file"
	"github.com/silica-labs/corpusd/internal/core/ports/driving"
	"github.com/silica-labs/corpusd/internal/logger"
)

// Package-level services wired by the application before Execute.
var (
	projectService driving.ProjectService
	ingestService  driving.IngestService
	indexManager   driving.IndexManager
	queryService   driving.QueryService

	appConfig file.Config
)

var (
	flagVerbose    bool
	flagConfigPath string
	flagJSON       bool
)

var rootCmd = &cobra.Command{
	Use:   "corpusd",
	Short: "Document corpus indexing and semantic search",
	Long: `corpusd ingests documents, chunks them on a token budget, embeds the
chunks, and serves semantic queries over the resulting vector indexes.

Documents enter as jobs (uploads, scraped URLs, or manual text),
completed jobs are grouped into indexes, and synced indexes answer
queries.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.SetVerbose(flagVerbose)

		cfg, err := file.Load(flagConfigPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		appConfig = cfg

		if servicesFactory == nil {
			return fmt.Errorf("services not configured")
		}
		return servicesFactory(cfg)
	},
}

// servicesFactory builds the service layer from the loaded config.
// The application entrypoint sets it; tests substitute their own.
var servicesFactory func(cfg file.Config) error

// SetServicesFactory installs the wiring function run before every
// command.
func SetServicesFactory(fn func(cfg file.Config) error) {
	servicesFactory = fn
}

// SetServices installs the driving services directly.
func SetServices(
	projects driving.ProjectService,
	ingest driving.IngestService,
	indexes driving.IndexManager,
	query driving.QueryService,
) {
	projectService = projects
	ingestService = ingest
	indexManager = indexes
	queryService = query
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file path (default ~/.corpusd/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "print machine-readable JSON output")
}

// printJSON writes v as indented JSON to the command's stdout.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
