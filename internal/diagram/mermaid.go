// Package diagram renders an epic's stories as a Mermaid flowchart.
package diagram

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/danielolaszy/epicgraph/internal/refs"
	"github.com/danielolaszy/epicgraph/pkg/models"
)

// CallbackName is the client-side function every node's click binding calls.
const CallbackName = "ticketNodeCallback"

// Bucket is a node style class. Several story states share a bucket.
type Bucket int

// Buckets in legend order. The zero Bucket is unassigned.
const (
	Grey Bucket = iota + 1
	Blue
	Yellow
	Green
	Red
)

// Style holds the Mermaid classDef colours of a bucket.
type Style struct {
	Fill   string
	Stroke string
	Color  string
}

var bucketNames = [...]string{
	Grey:   "GREY",
	Blue:   "BLUE",
	Yellow: "YELLOW",
	Green:  "GREEN",
	Red:    "RED",
}

// Colours follow https://www.pivotaltracker.com/help/articles/story_states/
var bucketStyles = [...]Style{
	Grey:   {Fill: "#e0e2e5", Stroke: "#c4c5c5", Color: "#000"},
	Blue:   {Fill: "#507bbd", Stroke: "#2959a4", Color: "#fff"},
	Yellow: {Fill: "#f5b04f", Stroke: "#fc9d17", Color: "#fff"},
	Green:  {Fill: "#94c37f", Stroke: "#5fa640", Color: "#fff"},
	Red:    {Fill: "#e87450", Stroke: "#ec4d22", Color: "#fff"},
}

var stateBuckets = [...]Bucket{
	models.StateAccepted:    Green,
	models.StateDelivered:   Green,
	models.StateFinished:    Green,
	models.StateStarted:     Blue,
	models.StateRejected:    Red,
	models.StatePlanned:     Grey,
	models.StateUnstarted:   Grey,
	models.StateUnscheduled: Grey,
}

// Fails to compile when a story state is added without a bucket entry.
func _() {
	var x [1]struct{}
	_ = x[len(stateBuckets)-1-models.NumStoryStates]
}

// String returns the class name used in the graph, e.g. "BLUE".
func (b Bucket) String() string {
	if b < Grey || b > Red {
		return fmt.Sprintf("Bucket(%d)", int(b))
	}
	return bucketNames[b]
}

// Style returns the bucket's colours.
func (b Bucket) Style() Style {
	if b < Grey || b > Red {
		return Style{}
	}
	return bucketStyles[b]
}

// Buckets returns all buckets in legend order.
func Buckets() []Bucket {
	return []Bucket{Grey, Blue, Yellow, Green, Red}
}

// BucketFor returns the bucket a state is drawn with. Invalid states have no
// bucket and return zero.
func BucketFor(state models.StoryState) Bucket {
	if !state.Valid() {
		return 0
	}
	return stateBuckets[state]
}

// Edge is a dependency drawn from the blocking reference to the blocked story.
type Edge struct {
	From string
	To   string
}

// Renderer turns stories into Mermaid text using Extractor to resolve blocker references.
type Renderer struct {
	Extractor *refs.Extractor
}

// NewRenderer returns a renderer using the given extractor, or the default
// one when e is nil.
func NewRenderer(e *refs.Extractor) *Renderer {
	if e == nil {
		e = refs.NewExtractor(refs.DefaultHost)
	}
	return &Renderer{Extractor: e}
}

var defaultRenderer = NewRenderer(nil)

// Render produces the Mermaid document for an epic with the default extractor.
func Render(epic *models.Epic, stories []models.Story) string {
	return defaultRenderer.Render(epic, stories)
}

// Edges returns every edge Render would draw, in the same order.
func Edges(stories []models.Story) []Edge {
	return defaultRenderer.Edges(stories)
}

// Render produces the Mermaid document: the direction header, one classDef
// per bucket, then for each story its node, its click binding and one edge
// per blocker reference. The epic is not drawn; it is accepted so callers
// hand the renderer the same input as the report.
func (r *Renderer) Render(_ *models.Epic, stories []models.Story) string {
	var sb strings.Builder

	sb.WriteString("graph TD\n")
	for _, b := range Buckets() {
		s := b.Style()
		fmt.Fprintf(&sb, "\tclassDef %s fill:%s,stroke:%s,color:%s;\n", b, s.Fill, s.Stroke, s.Color)
	}
	sb.WriteString("\n")

	for _, story := range stories {
		r.writeStory(&sb, story)
	}

	return sb.String()
}

// Edges returns the edges of stories in render order.
func (r *Renderer) Edges(stories []models.Story) []Edge {
	var edges []Edge
	for _, story := range stories {
		edges = append(edges, r.storyEdges(story)...)
	}
	return edges
}

func (r *Renderer) writeStory(sb *strings.Builder, story models.Story) {
	id := NodeID(story.ID)

	fmt.Fprintf(sb, "\t%s:::%s\n", id, BucketFor(story.CurrentState))
	fmt.Fprintf(sb, "\tclick %s call %s(%s)\n", id, CallbackName, id)
	for _, e := range r.storyEdges(story) {
		fmt.Fprintf(sb, "\t%s --> %s\n", e.From, e.To)
	}
	sb.WriteString("\n")
}

// storyEdges points each reference at the story it blocks.
func (r *Renderer) storyEdges(story models.Story) []Edge {
	var edges []Edge
	id := NodeID(story.ID)
	for _, blocker := range story.Blockers {
		for _, ref := range r.Extractor.Extract(blocker.Description) {
			edges = append(edges, Edge{From: ref, To: id})
		}
	}
	return edges
}

// NodeID is the graph node identifier of a story, its decimal id. The report
// uses the same value for DOM ids and callback arguments.
func NodeID(storyID int64) string {
	return strconv.FormatInt(storyID, 10)
}
