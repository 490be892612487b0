package tracker

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/danielolaszy/epicgraph/internal/config"
	"github.com/danielolaszy/epicgraph/internal/logging"
	"github.com/danielolaszy/epicgraph/pkg/models"
)

var (
	// ErrEpicNotFound is returned when no epic matches the requested label.
	ErrEpicNotFound = errors.New("could not find epic matching label")
	// ErrAmbiguousEpic is returned when more than one epic matches the label.
	ErrAmbiguousEpic = errors.New("found more than one epic matching label")
)

// Source is the subset of the tracker API the loader needs. *Client implements it.
type Source interface {
	EpicsWithLabel(ctx context.Context, label string) ([]models.Epic, error)
	StoriesWithLabel(ctx context.Context, label string) ([]models.Story, error)
	Blockers(ctx context.Context, storyID int64) ([]models.Blocker, error)
	Labels(ctx context.Context, storyID int64) ([]models.Label, error)
}

// Loader fetches an epic and its fully enriched stories.
type Loader struct {
	source      Source
	concurrency int
}

// NewLoader creates a loader that enriches up to concurrency stories at a time.
func NewLoader(source Source, concurrency int) *Loader {
	if concurrency <= 0 {
		concurrency = config.DefaultConcurrency
	}
	return &Loader{source: source, concurrency: concurrency}
}

// Load resolves the single epic carrying label, then fetches its stories and
// fills in each story's blockers and labels. Story order is the tracker's.
func (l *Loader) Load(ctx context.Context, label string) (*models.Epic, []models.Story, error) {
	logging.Info("fetching epic from tracker", "label", label)
	epics, err := l.source.EpicsWithLabel(ctx, label)
	if err != nil {
		return nil, nil, err
	}

	switch {
	case len(epics) == 0:
		return nil, nil, fmt.Errorf("%w %q", ErrEpicNotFound, label)
	case len(epics) > 1:
		return nil, nil, fmt.Errorf("%w %q (%d matches)", ErrAmbiguousEpic, label, len(epics))
	}
	epic := epics[0]

	logging.Info("fetching stories from tracker", "epic_id", epic.ID, "label", label)
	stories, err := l.source.StoriesWithLabel(ctx, label)
	if err != nil {
		return nil, nil, err
	}

	logging.Info("fetching blockers and labels for each story",
		"story_count", len(stories),
		"concurrency", l.concurrency)
	if err := l.enrich(ctx, stories); err != nil {
		return nil, nil, err
	}

	return &epic, stories, nil
}

// enrich fetches blockers and labels for every story. Each goroutine writes
// only its own element of stories.
func (l *Loader) enrich(ctx context.Context, stories []models.Story) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)

	for i := range stories {
		story := &stories[i]
		g.Go(func() error {
			blockers, err := l.source.Blockers(ctx, story.ID)
			if err != nil {
				return err
			}
			labels, err := l.source.Labels(ctx, story.ID)
			if err != nil {
				return err
			}

			story.Blockers = blockers
			story.Labels = labels
			logging.Debug("enriched story",
				"story_id", story.ID,
				"blocker_count", len(blockers),
				"label_count", len(labels))
			return nil
		})
	}

	return g.Wait()
}
