package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/cheynewallace/tabby"
	"github.com/danielolaszy/epicgraph/internal/diagram"
	"github.com/danielolaszy/epicgraph/pkg/models"
	"github.com/spf13/cobra"
)

// statusCmd summarises an epic's stories by state.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarise the stories of an epic by state",
	Long: `This command displays how many stories of an epic are in each state,
the diagram colour used for that state, and how many blocker references
were found.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, epic, stories, err := loadEpic(cmd)
		if err != nil {
			return err
		}

		counts := make(map[models.StoryState]int)
		ids := make(map[string]bool)
		for _, s := range stories {
			counts[s.CurrentState]++
			ids[diagram.NodeID(s.ID)] = true
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Epic: %s (%d)\n\n", epic.Name, epic.ID)

		t := tabby.NewCustom(tabwriter.NewWriter(out, 0, 0, 2, ' ', 0))
		t.AddHeader("STATE", "COLOUR", "STORIES")
		for _, state := range models.AllStoryStates() {
			t.AddLine(state, diagram.BucketFor(state), counts[state])
		}
		t.Print()

		edges := rendererFor(cfg).Edges(stories)
		external := 0
		for _, e := range edges {
			if !ids[e.From] {
				external++
			}
		}

		fmt.Fprintf(out, "\nStories: %d\n", len(stories))
		fmt.Fprintf(out, "Dependencies: %d (%d on stories outside the epic)\n", len(edges), external)
		fmt.Fprintf(out, "Done: %s\n", donePercentage(counts, len(stories)))

		return nil
	},
}

// donePercentage reports the share of stories in the green bucket.
func donePercentage(counts map[models.StoryState]int, total int) string {
	if total == 0 {
		return "no stories"
	}

	done := 0
	for state, n := range counts {
		if diagram.BucketFor(state) == diagram.Green {
			done += n
		}
	}

	percentage := float64(done) / float64(total) * 100
	return fmt.Sprintf("%.1f%% (%d/%d stories)", percentage, done, total)
}
