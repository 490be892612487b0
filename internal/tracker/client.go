// Package tracker provides functionality for interacting with the Pivotal Tracker API.
package tracker

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dghubble/sling"

	"github.com/danielolaszy/epicgraph/internal/config"
	"github.com/danielolaszy/epicgraph/internal/logging"
	"github.com/danielolaszy/epicgraph/pkg/models"
)

const (
	apiPath = "/services/v5/"

	// TokenHeader carries the API token on every request.
	TokenHeader = "X-TrackerToken"

	// pageSize is the largest page the stories endpoint returns.
	pageSize = 500
)

// APIError is the error payload the tracker returns with non-2xx responses.
type APIError struct {
	Status         int    `json:"-"`
	Code           string `json:"code"`
	Kind           string `json:"kind"`
	Message        string `json:"error"`
	GeneralProblem string `json:"general_problem"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.GeneralProblem != "" {
		msg += ": " + e.GeneralProblem
	}
	if e.Code != "" {
		return fmt.Sprintf("tracker api error %d (%s): %s", e.Status, e.Code, msg)
	}
	return fmt.Sprintf("tracker api error %d: %s", e.Status, msg)
}

// Client encapsulates the Pivotal Tracker REST API for a single project.
type Client struct {
	base      *sling.Sling
	projectID int64
}

type epicParams struct {
	Filter string `url:"filter"`
}

type storyParams struct {
	WithLabel string `url:"with_label"`
	Limit     int    `url:"limit"`
	Offset    int    `url:"offset"`
}

// NewClient creates a client for the project in cfg. The token is sent in
// the X-TrackerToken header of every request.
func NewClient(cfg config.TrackerConfig) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("tracker token not found in configuration")
	}
	if cfg.ProjectID <= 0 {
		return nil, fmt.Errorf("tracker project id not found in configuration")
	}
	if cfg.URL == "" {
		cfg.URL = config.DefaultTrackerURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = config.DefaultTimeout
	}

	apiURL := cfg.URL + apiPath
	logging.Debug("tracker configuration",
		"api_url", apiURL,
		"project_id", cfg.ProjectID,
		"token", logging.MaskSensitive(cfg.Token))

	base := sling.New().
		Client(&http.Client{Timeout: cfg.Timeout}).
		Base(apiURL).
		Set(TokenHeader, cfg.Token).
		Set("Accept", "application/json")

	return &Client{base: base, projectID: cfg.ProjectID}, nil
}

// EpicsWithLabel returns the project's epics matching label.
func (c *Client) EpicsWithLabel(ctx context.Context, label string) ([]models.Epic, error) {
	var epics []models.Epic
	path := fmt.Sprintf("projects/%d/epics", c.projectID)
	if err := c.get(ctx, path, &epicParams{Filter: label}, &epics); err != nil {
		return nil, fmt.Errorf("failed to fetch epics: %w", err)
	}
	return epics, nil
}

// StoriesWithLabel returns every story of the project carrying label,
// following pagination until a short page is returned.
func (c *Client) StoriesWithLabel(ctx context.Context, label string) ([]models.Story, error) {
	var stories []models.Story
	path := fmt.Sprintf("projects/%d/stories", c.projectID)

	for offset := 0; ; offset += pageSize {
		var page []models.Story
		params := &storyParams{WithLabel: label, Limit: pageSize, Offset: offset}
		if err := c.get(ctx, path, params, &page); err != nil {
			return nil, fmt.Errorf("failed to fetch stories: %w", err)
		}
		stories = append(stories, page...)
		if len(page) < pageSize {
			break
		}
	}

	return stories, nil
}

// Blockers returns the blockers recorded on a story.
func (c *Client) Blockers(ctx context.Context, storyID int64) ([]models.Blocker, error) {
	var blockers []models.Blocker
	path := fmt.Sprintf("projects/%d/stories/%d/blockers", c.projectID, storyID)
	if err := c.get(ctx, path, nil, &blockers); err != nil {
		return nil, fmt.Errorf("failed to fetch blockers for story %d: %w", storyID, err)
	}
	return blockers, nil
}

// Labels returns the labels attached to a story.
func (c *Client) Labels(ctx context.Context, storyID int64) ([]models.Label, error) {
	var labels []models.Label
	path := fmt.Sprintf("projects/%d/stories/%d/labels", c.projectID, storyID)
	if err := c.get(ctx, path, nil, &labels); err != nil {
		return nil, fmt.Errorf("failed to fetch labels for story %d: %w", storyID, err)
	}
	return labels, nil
}

func (c *Client) get(ctx context.Context, path string, params any, out any) error {
	s := c.base.New().Get(path)
	if params != nil {
		s = s.QueryStruct(params)
	}

	req, err := s.Request()
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	apiErr := &APIError{}
	resp, err := s.Do(req.WithContext(ctx), out, apiErr)
	if resp != nil && resp.StatusCode >= http.StatusMultipleChoices {
		apiErr.Status = resp.StatusCode
		logging.Debug("tracker request failed",
			"path", path,
			"status_code", resp.StatusCode,
			"code", apiErr.Code)
		return apiErr
	}
	if err != nil {
		return err
	}

	logging.Debug("tracker request complete", "path", path, "status_code", resp.StatusCode)
	return nil
}
