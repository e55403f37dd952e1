package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query <index-id> <question>",
	Short: "Search a synced index",
	Long: `Embeds the question with the model the index was built with and
returns the most similar chunks.`,
	Args: cobra.ExactArgs(2),
	RunE: runQuery,
}

var flagTopK int

func init() {
	queryCmd.Flags().IntVarP(&flagTopK, "top", "k", 5, "number of results")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	answer, err := queryService.Query(context.Background(), args[0], args[1], flagTopK)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	if flagJSON {
		return printJSON(cmd, answer)
	}

	cmd.Printf("Index %s (%d documents, %d chunks)\n",
		answer.IndexName, answer.DocumentsCount, answer.ChunksCount)
	if len(answer.Results) == 0 {
		cmd.Println("No results.")
		return nil
	}

	for i, res := range answer.Results {
		cmd.Printf("\n%d. [%.3f] from job %s\n", i+1, res.Score, res.DocumentSource)
		cmd.Println(indent(res.Text, "   "))
	}
	return nil
}

// indent prefixes each line of text.
func indent(text, prefix string) string {
	return prefix + strings.ReplaceAll(text, "\n", "\n"+prefix)
}
