// Package cmd provides the command-line interface for the epicgraph tool.
package cmd

import (
	"fmt"
	"net/url"

	"github.com/danielolaszy/epicgraph/internal/config"
	"github.com/danielolaszy/epicgraph/internal/diagram"
	"github.com/danielolaszy/epicgraph/internal/logging"
	"github.com/danielolaszy/epicgraph/internal/refs"
	"github.com/danielolaszy/epicgraph/internal/tracker"
	"github.com/danielolaszy/epicgraph/pkg/models"
	"github.com/spf13/cobra"
)

// Replaced in tests.
var (
	loadConfig = config.LoadConfig
	newSource  = func(cfg config.TrackerConfig) (tracker.Source, error) {
		client, err := tracker.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
)

// loadEpic reads configuration, then fetches the epic named by the --epic
// flag together with its enriched stories.
func loadEpic(cmd *cobra.Command) (*config.Config, *models.Epic, []models.Story, error) {
	label, err := cmd.Flags().GetString("epic")
	if err != nil {
		return nil, nil, nil, err
	}
	if label == "" {
		return nil, nil, nil, fmt.Errorf("epic flag is required")
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logging.Setup(cmd.ErrOrStderr(), logging.LogLevel(cfg.Log.Level), logging.Format(cfg.Log.Format))

	source, err := newSource(cfg.Tracker)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize tracker client: %w", err)
	}

	epic, stories, err := tracker.NewLoader(source, cfg.Tracker.Concurrency).Load(cmd.Context(), label)
	if err != nil {
		return nil, nil, nil, err
	}

	logging.Info("loaded epic",
		"epic_id", epic.ID,
		"epic", epic.Name,
		"story_count", len(stories))

	return cfg, epic, stories, nil
}

// rendererFor builds a renderer that recognises story links on the configured tracker host.
func rendererFor(cfg *config.Config) *diagram.Renderer {
	host := refs.DefaultHost
	if u, err := url.Parse(cfg.Tracker.URL); err == nil && u.Host != "" {
		host = u.Host
	}
	return diagram.NewRenderer(refs.NewExtractor(host))
}
