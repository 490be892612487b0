package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danielolaszy/epicgraph/internal/config"
	"github.com/danielolaszy/epicgraph/internal/tracker"
	"github.com/danielolaszy/epicgraph/pkg/models"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockSource implements tracker.Source for testing
type MockSource struct {
	EpicsFunc    func(string) ([]models.Epic, error)
	StoriesFunc  func(string) ([]models.Story, error)
	BlockersFunc func(int64) ([]models.Blocker, error)
	LabelsFunc   func(int64) ([]models.Label, error)
}

func (m *MockSource) EpicsWithLabel(_ context.Context, label string) ([]models.Epic, error) {
	if m.EpicsFunc != nil {
		return m.EpicsFunc(label)
	}
	return nil, errors.New("EpicsWithLabel not implemented")
}

func (m *MockSource) StoriesWithLabel(_ context.Context, label string) ([]models.Story, error) {
	if m.StoriesFunc != nil {
		return m.StoriesFunc(label)
	}
	return nil, errors.New("StoriesWithLabel not implemented")
}

func (m *MockSource) Blockers(_ context.Context, storyID int64) ([]models.Blocker, error) {
	if m.BlockersFunc != nil {
		return m.BlockersFunc(storyID)
	}
	return nil, nil
}

func (m *MockSource) Labels(_ context.Context, storyID int64) ([]models.Label, error) {
	if m.LabelsFunc != nil {
		return m.LabelsFunc(storyID)
	}
	return nil, nil
}

// checkoutSource serves a small epic: 42 is blocked by 7 (outside the epic)
// and by 43, which is finished.
func checkoutSource() *MockSource {
	return &MockSource{
		EpicsFunc: func(label string) ([]models.Epic, error) {
			return []models.Epic{{ID: 1, ProjectID: 99, Name: "Checkout"}}, nil
		},
		StoriesFunc: func(label string) ([]models.Story, error) {
			return []models.Story{
				{ID: 42, Name: "Add cart", URL: "https://www.pivotaltracker.com/story/show/42", CurrentState: models.StateStarted},
				{ID: 43, Name: "Price rules", URL: "https://www.pivotaltracker.com/story/show/43", CurrentState: models.StateFinished},
			}, nil
		},
		BlockersFunc: func(id int64) ([]models.Blocker, error) {
			if id == 42 {
				return []models.Blocker{
					{ID: 1, StoryID: 42, Description: "blocked by #7"},
					{ID: 2, StoryID: 42, Description: "https://www.pivotaltracker.com/story/show/43"},
				}, nil
			}
			return []models.Blocker{}, nil
		},
		LabelsFunc: func(id int64) ([]models.Label, error) {
			return []models.Label{{ID: 3, Name: "checkout"}, {ID: 4, Name: "frontend"}}, nil
		},
	}
}

// setup swaps the config loader and tracker source for the duration of a test.
func setup(t *testing.T, source tracker.Source) {
	t.Helper()
	origLoad, origSource := loadConfig, newSource
	t.Cleanup(func() {
		loadConfig, newSource = origLoad, origSource
	})

	loadConfig = func() (*config.Config, error) {
		return &config.Config{
			Tracker: config.TrackerConfig{
				URL:         config.DefaultTrackerURL,
				Token:       "test-token",
				ProjectID:   99,
				Concurrency: 2,
			},
			Log: config.LogConfig{Level: "info", Format: "text"},
		}, nil
	}
	newSource = func(config.TrackerConfig) (tracker.Source, error) {
		return source, nil
	}
}

// resetFlags restores every flag to its default; cobra commands are package globals.
func resetFlags() {
	for _, c := range []*cobra.Command{rootCmd, diagramCmd, graphCmd, statusCmd} {
		for _, fs := range []*pflag.FlagSet{c.PersistentFlags(), c.Flags()} {
			fs.VisitAll(func(f *pflag.Flag) {
				_ = f.Value.Set(f.DefValue)
				f.Changed = false
			})
		}
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags()

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestGraphCommand(t *testing.T) {
	setup(t, checkoutSource())

	stdout, _, err := run(t, "graph", "--epic", "checkout")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stdout, "graph TD\n"))
	assert.Contains(t, stdout, "\t42:::BLUE\n")
	assert.Contains(t, stdout, "\t43:::GREEN\n")
	assert.Contains(t, stdout, "\t7 --> 42\n")
	assert.Contains(t, stdout, "\t43 --> 42\n")
}

func TestDiagramCommandWritesReport(t *testing.T) {
	setup(t, checkoutSource())
	path := filepath.Join(t.TempDir(), "out", "checkout.html")

	stdout, stderr, err := run(t, "diagram", "-e", "checkout", "-o", path)
	require.NoError(t, err)

	assert.Equal(t, path+"\n", stdout)
	assert.Contains(t, stderr, "writing diagram to file")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	page := string(content)
	assert.Contains(t, page, "<h1>Epic: Checkout</h1>")
	assert.Contains(t, page, `id="story-details-42"`)
	assert.Contains(t, page, `id="story-details-43"`)
	assert.Contains(t, page, `<span class="badge badge-epic">checkout</span>`)
	assert.Contains(t, page, `<span class="badge">frontend</span>`)
	assert.NotContains(t, page, "d3.min.js")
}

func TestDiagramCommandDefaultFilename(t *testing.T) {
	setup(t, checkoutSource())
	chdir(t, t.TempDir())

	stdout, _, err := run(t, "diagram", "-e", "checkout", "--zoom")
	require.NoError(t, err)
	assert.Equal(t, "1-checkout.html\n", stdout)

	content, err := os.ReadFile("1-checkout.html")
	require.NoError(t, err)
	assert.Contains(t, string(content), "d3.min.js")
}

func TestStatusCommand(t *testing.T) {
	setup(t, checkoutSource())

	stdout, _, err := run(t, "status", "-e", "checkout")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Epic: Checkout (1)")
	assert.Regexp(t, `(?m)^Started\s+BLUE\s+1\s*$`, stdout)
	assert.Regexp(t, `(?m)^Finished\s+GREEN\s+1\s*$`, stdout)
	assert.Regexp(t, `(?m)^Rejected\s+RED\s+0\s*$`, stdout)
	assert.Contains(t, stdout, "Stories: 2")
	assert.Contains(t, stdout, "Dependencies: 2 (1 on stories outside the epic)")
	assert.Contains(t, stdout, "Done: 50.0% (1/2 stories)")
}

func TestCommandsRequireEpic(t *testing.T) {
	setup(t, checkoutSource())

	for _, name := range []string{"diagram", "graph", "status"} {
		t.Run(name, func(t *testing.T) {
			_, _, err := run(t, name)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "epic flag is required")
		})
	}
}

func TestCommandReportsMissingEpic(t *testing.T) {
	source := checkoutSource()
	source.EpicsFunc = func(string) ([]models.Epic, error) { return nil, nil }
	setup(t, source)

	_, _, err := run(t, "graph", "-e", "nope")
	assert.ErrorIs(t, err, tracker.ErrEpicNotFound)
}

func TestCommandReportsConfigError(t *testing.T) {
	setup(t, checkoutSource())
	loadConfig = func() (*config.Config, error) {
		return nil, config.ErrMissingConfig
	}

	_, _, err := run(t, "graph", "-e", "checkout")
	assert.ErrorIs(t, err, config.ErrMissingConfig)
}

func TestDonePercentage(t *testing.T) {
	assert.Equal(t, "no stories", donePercentage(nil, 0))

	counts := map[models.StoryState]int{
		models.StateAccepted:  1,
		models.StateDelivered: 1,
		models.StateStarted:   2,
	}
	assert.Equal(t, "50.0% (2/4 stories)", donePercentage(counts, 4))
}
