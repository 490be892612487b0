package cmd

import (
	"fmt"

	"github.com/danielolaszy/epicgraph/internal/logging"
	"github.com/danielolaszy/epicgraph/internal/report"
	"github.com/spf13/cobra"
)

// diagramCmd writes the interactive HTML report for an epic.
var diagramCmd = &cobra.Command{
	Use:   "diagram",
	Short: "Create an interactive dependency diagram of an epic",
	Long: `Create a self-contained HTML page showing the stories of a Pivotal Tracker
epic as a dependency graph.

Each story becomes a node coloured by its current state. Every story referenced
from one of its blockers (as "#123", a story URL or a project story URL) gets an
arrow pointing from the blocking story to the blocked one. Clicking a node shows
the story's name, labels and state below the diagram.

Example:
  epicgraph diagram -e "checkout flow" -o reports/checkout.html

The page loads Mermaid (and d3 with --zoom) from a CDN when it is opened.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, err := cmd.Flags().GetString("output")
		if err != nil {
			return err
		}

		zoom, err := cmd.Flags().GetBool("zoom")
		if err != nil {
			return err
		}

		cfg, epic, stories, err := loadEpic(cmd)
		if err != nil {
			return err
		}

		page, err := report.Generate(epic, stories, report.Options{
			Renderer: rendererFor(cfg),
			Zoom:     zoom,
		})
		if err != nil {
			return fmt.Errorf("failed to generate diagram: %w", err)
		}

		if output == "" {
			output = report.Filename(epic)
		}

		logging.Info("writing diagram to file", "path", output, "bytes", len(page))
		if err := report.Write(output, page); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), output)
		return nil
	},
}

func init() {
	diagramCmd.Flags().StringP("output", "o", "", "Output file (default: <epic id>-<epic name>.html)")
	diagramCmd.Flags().Bool("zoom", false, "Make the diagram pannable and zoomable (loads d3)")
}
