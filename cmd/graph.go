package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// graphCmd prints the Mermaid source of an epic's diagram.
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the Mermaid graph of an epic",
	Long: `Print the Mermaid flowchart for a Pivotal Tracker epic to standard output,
without the surrounding HTML page. Useful for pasting into Markdown or the
Mermaid live editor.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, epic, stories, err := loadEpic(cmd)
		if err != nil {
			return err
		}

		_, err = fmt.Fprint(cmd.OutOrStdout(), rendererFor(cfg).Render(epic, stories))
		return err
	},
}
