// Package queue defines message payloads exchanged over the message broker
// and the consumer that records them.
package queue

// StoryEventsQueue is the durable queue story events are published to.
const StoryEventsQueue = "story.events"

// Story event types.
const (
	EventSessionStarted = "session.started"
	EventStoryCompleted = "story.completed"
	EventSessionEnded   = "session.ended"
)

// StoryEvent is published when a viewing session starts, reaches the end of
// its last slide, or is torn down.  It carries enough for downstream
// consumers to log or count views without querying the service.  It never
// carries a viewer's email.
type StoryEvent struct {
	Type       string   `json:"type"`
	SessionID  string   `json:"session_id"`
	HostID     string   `json:"host_id,omitempty"`
	HostToken  string   `json:"host_token,omitempty"`
	HostName   string   `json:"host_name,omitempty"`
	Audience   string   `json:"audience"`
	Slides     []string `json:"slides"`
	SlideIndex int      `json:"slide_index"`
	OccurredAt string   `json:"occurred_at"`
}
