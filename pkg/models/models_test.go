package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoryStateString(t *testing.T) {
	assert.Equal(t, "Started", StateStarted.String())
	assert.Equal(t, "Unscheduled", StateUnscheduled.String())
	assert.Equal(t, "StoryState(0)", StoryState(0).String())
}

func TestAllStoryStates(t *testing.T) {
	states := AllStoryStates()
	require.Len(t, states, NumStoryStates)
	assert.Equal(t, StateAccepted, states[0])
	assert.Equal(t, StateUnscheduled, states[len(states)-1])
	for _, s := range states {
		assert.True(t, s.Valid(), "state %d should be valid", s)
	}
}

func TestParseStoryState(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    StoryState
		wantErr bool
	}{
		{name: "lowercase", input: "accepted", want: StateAccepted},
		{name: "mixed case", input: "Unstarted", want: StateUnstarted},
		{name: "unknown", input: "archived", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStoryState(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStoryDecodesTrackerPayload(t *testing.T) {
	payload := `{
		"id": 42,
		"project_id": 99,
		"name": "Add cart",
		"url": "https://www.pivotaltracker.com/story/show/42",
		"current_state": "started",
		"story_type": "feature"
	}`

	var story Story
	require.NoError(t, json.Unmarshal([]byte(payload), &story))

	assert.Equal(t, int64(42), story.ID)
	assert.Equal(t, int64(99), story.ProjectID)
	assert.Equal(t, "Add cart", story.Name)
	assert.Equal(t, StateStarted, story.CurrentState)
	assert.Nil(t, story.Blockers)
	assert.Nil(t, story.Labels)
}

func TestStoryRejectsUnknownState(t *testing.T) {
	var story Story
	err := json.Unmarshal([]byte(`{"id": 1, "current_state": "archived"}`), &story)
	assert.Error(t, err)
}

func TestStoryStateMarshalsWireValue(t *testing.T) {
	out, err := json.Marshal(Story{ID: 7, CurrentState: StateRejected})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"current_state":"rejected"`)

	_, err = json.Marshal(Story{ID: 8})
	assert.Error(t, err)
}
