// Package models defines data structures shared across the application.
package models

import (
	"fmt"
	"strings"
)

// Epic represents a Pivotal Tracker epic, the grouping a report is built for.
type Epic struct {
	// ID is the tracker's numeric epic identifier
	ID int64 `json:"id"`

	// ProjectID is the identifier of the project owning the epic
	ProjectID int64 `json:"project_id"`

	// Name is the epic's display name, conventionally equal to its label
	Name string `json:"name"`
}

// Story represents a single work item belonging to an epic.
type Story struct {
	// ID is the tracker's numeric story identifier (e.g., 42)
	ID int64 `json:"id"`

	// ProjectID is the identifier of the project owning the story
	ProjectID int64 `json:"project_id"`

	// Name is the story's title
	Name string `json:"name"`

	// URL is the canonical link to the story in the tracker
	URL string `json:"url"`

	// CurrentState is the story's workflow state
	CurrentState StoryState `json:"current_state"`

	// Blockers are the recorded dependencies of the story. Nil and empty both mean none.
	Blockers []Blocker `json:"blockers,omitempty"`

	// Labels attached to the story. Nil and empty both mean none.
	Labels []Label `json:"labels,omitempty"`
}

// Blocker is a free-text dependency claim recorded on a story. The
// description may mention zero or more other story identifiers.
type Blocker struct {
	ID          int64  `json:"id"`
	StoryID     int64  `json:"story_id"`
	Description string `json:"description"`
	Resolved    bool   `json:"resolved"`
}

// Label is a tracker label attached to a story.
type Label struct {
	ID   int64  `json:"id"`
	Kind string `json:"kind"`
	Name string `json:"name"`
}

// StoryState is the workflow state of a story.
type StoryState int

// The zero StoryState is invalid; every decoded story carries one of these.
const (
	StateAccepted StoryState = iota + 1
	StateDelivered
	StateFinished
	StateStarted
	StateRejected
	StatePlanned
	StateUnstarted
	StateUnscheduled

	stateEnd
)

// NumStoryStates is the number of valid story states.
const NumStoryStates = int(stateEnd) - 1

var stateNames = [...]string{
	StateAccepted:    "accepted",
	StateDelivered:   "delivered",
	StateFinished:    "finished",
	StateStarted:     "started",
	StateRejected:    "rejected",
	StatePlanned:     "planned",
	StateUnstarted:   "unstarted",
	StateUnscheduled: "unscheduled",
}

// AllStoryStates returns every valid state in declaration order.
func AllStoryStates() []StoryState {
	states := make([]StoryState, 0, NumStoryStates)
	for s := StateAccepted; s < stateEnd; s++ {
		states = append(states, s)
	}
	return states
}

// Valid reports whether s is one of the declared states.
func (s StoryState) Valid() bool {
	return s >= StateAccepted && s < stateEnd
}

// String returns the capitalised display name, e.g. "Started".
func (s StoryState) String() string {
	if !s.Valid() {
		return fmt.Sprintf("StoryState(%d)", int(s))
	}
	name := stateNames[s]
	return strings.ToUpper(name[:1]) + name[1:]
}

// ParseStoryState converts the tracker's wire value (case-insensitive) into a StoryState.
func ParseStoryState(value string) (StoryState, error) {
	for s := StateAccepted; s < stateEnd; s++ {
		if strings.EqualFold(stateNames[s], value) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown story state %q", value)
}

// MarshalText encodes the state as the tracker's lowercase wire value.
func (s StoryState) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid story state %d", int(s))
	}
	return []byte(stateNames[s]), nil
}

// UnmarshalText decodes the tracker's wire value.
func (s *StoryState) UnmarshalText(text []byte) error {
	state, err := ParseStoryState(string(text))
	if err != nil {
		return err
	}
	*s = state
	return nil
}
