package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "epicgraph",
	Short: "Epicgraph draws Pivotal Tracker epics as dependency diagrams",
	Long: `Epicgraph is a CLI tool that fetches a Pivotal Tracker epic and its stories,
reads the blockers recorded on each story and renders the result as an
interactive dependency diagram. Clicking a story in the diagram shows its details.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// Cancelling ctx aborts any in-flight tracker requests.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Add persistent flags that will be available to all commands
	rootCmd.PersistentFlags().StringP("epic", "e", "", "The epic name (label) in Pivotal Tracker")

	rootCmd.AddCommand(diagramCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(statusCmd)
}
