package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent() StoryEvent {
	return StoryEvent{
		Type:       EventStoryCompleted,
		SessionID:  "4b1c",
		HostToken:  "nllvk0",
		HostName:   "Horizon Stays",
		Audience:   "GUEST",
		Slides:     []string{"intro", "map", "outro"},
		SlideIndex: 2,
		OccurredAt: "2025-12-31T23:59:00Z",
	}
}

func TestFormatLine(t *testing.T) {
	got := FormatLine(sampleEvent())
	assert.Equal(t, `[2025-12-31T23:59:00Z] story.completed | session_id=4b1c | host=nllvk0 | host_name="Horizon Stays" | audience=GUEST | slide=2 | slides=[intro,map,outro]`+"\n", got)

	brand := StoryEvent{Type: EventSessionStarted, SessionID: "x", Audience: "HOSTAI"}
	assert.Contains(t, FormatLine(brand), "host=- ")
	assert.Contains(t, FormatLine(brand), "slides=[]")
}

func TestHandleMessageAppends(t *testing.T) {
	dir := t.TempDir()
	c := &Consumer{LogDir: filepath.Join(dir, "nested")}

	body, err := json.Marshal(sampleEvent())
	require.NoError(t, err)
	require.NoError(t, c.handleMessage(body))
	require.NoError(t, c.handleMessage(body))

	data, err := os.ReadFile(filepath.Join(dir, "nested", StoryLogFile))
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	c := &Consumer{LogDir: t.TempDir()}
	assert.Error(t, c.handleMessage([]byte("{not json")))
}
