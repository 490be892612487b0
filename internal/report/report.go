// Package report assembles the interactive HTML report for an epic.
package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/danielolaszy/epicgraph/internal/diagram"
	"github.com/danielolaszy/epicgraph/pkg/models"
)

const (
	// DefaultMermaidURL is where the page loads the diagram renderer from.
	DefaultMermaidURL = "https://cdn.jsdelivr.net/npm/mermaid/dist/mermaid.min.js"
	// DefaultD3URL is where the page loads d3 from when zooming is enabled.
	DefaultD3URL = "https://cdn.jsdelivr.net/npm/d3@7/dist/d3.min.js"

	// DetailsIDPrefix prefixes a story's node id to form its detail block's DOM id.
	DetailsIDPrefix = "story-details-"
)

//go:embed assets
var assetsFS embed.FS

var pageTemplate = template.Must(template.ParseFS(assetsFS, "assets/page.html.tmpl"))

// Options configures report generation.
type Options struct {
	// Renderer draws the graph. Defaults to diagram.NewRenderer(nil).
	Renderer *diagram.Renderer

	// Now supplies the footer timestamp. Defaults to time.Now.
	Now func() time.Time

	// Zoom adds d3 based pan and zoom to the rendered diagram.
	Zoom bool

	MermaidURL string
	D3URL      string
}

type storyDetails struct {
	ID         string
	URL        string
	Name       string
	EpicLabels []string
	Labels     []string
	State      string
}

type pageData struct {
	Epic        *models.Epic
	Graph       string
	Stories     []storyDetails
	GeneratedAt string

	Script     template.JS
	ZoomScript template.JS
	Style      template.CSS

	Zoom       bool
	MermaidURL string
	D3URL      string
}

// Generate returns the complete HTML document for an epic and its stories.
// Graph node ids, detail block ids and callback arguments all use
// diagram.NodeID so a click on a node reveals the matching block.
func Generate(epic *models.Epic, stories []models.Story, opts Options) (string, error) {
	if epic == nil {
		return "", fmt.Errorf("epic is required")
	}
	opts = opts.withDefaults()

	script, err := assetsFS.ReadFile("assets/ui.js")
	if err != nil {
		return "", fmt.Errorf("failed to read ui script: %w", err)
	}
	style, err := assetsFS.ReadFile("assets/style.css")
	if err != nil {
		return "", fmt.Errorf("failed to read stylesheet: %w", err)
	}

	data := pageData{
		Epic:        epic,
		Graph:       opts.Renderer.Render(epic, stories),
		Stories:     make([]storyDetails, 0, len(stories)),
		GeneratedAt: Timestamp(opts.Now()),
		Script:      template.JS(script),
		Style:       template.CSS(style),
		Zoom:        opts.Zoom,
		MermaidURL:  opts.MermaidURL,
		D3URL:       opts.D3URL,
	}

	if opts.Zoom {
		zoom, err := assetsFS.ReadFile("assets/zoom.js")
		if err != nil {
			return "", fmt.Errorf("failed to read zoom script: %w", err)
		}
		data.ZoomScript = template.JS(zoom)
	}

	for _, story := range stories {
		data.Stories = append(data.Stories, detailsFor(epic, story))
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}

	return buf.String(), nil
}

// Timestamp formats t as RFC 3339 with seconds precision, as shown in the footer.
func Timestamp(t time.Time) string {
	return t.Truncate(time.Second).Format(time.RFC3339)
}

func (o Options) withDefaults() Options {
	if o.Renderer == nil {
		o.Renderer = diagram.NewRenderer(nil)
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.MermaidURL == "" {
		o.MermaidURL = DefaultMermaidURL
	}
	if o.D3URL == "" {
		o.D3URL = DefaultD3URL
	}
	return o
}

func detailsFor(epic *models.Epic, story models.Story) storyDetails {
	epicLabels, labels := splitLabels(epic, story.Labels)
	return storyDetails{
		ID:         diagram.NodeID(story.ID),
		URL:        story.URL,
		Name:       story.Name,
		EpicLabels: epicLabels,
		Labels:     labels,
		State:      story.CurrentState.String(),
	}
}

// splitLabels separates the epic's own label, matched case-insensitively
// against the epic name, from the story's other labels.
func splitLabels(epic *models.Epic, labels []models.Label) (epicLabels, others []string) {
	for _, l := range labels {
		if strings.EqualFold(l.Name, epic.Name) {
			epicLabels = append(epicLabels, l.Name)
			continue
		}
		others = append(others, l.Name)
	}
	return epicLabels, others
}
