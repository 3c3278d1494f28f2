package domain

import "encoding/json"

// EventType discriminates the JSON frames pushed over the chat SSE stream.
type EventType string

const (
	EventToken            EventType = "token"
	EventToolStart        EventType = "tool_start"
	EventToolEnd          EventType = "tool_end"
	EventPhaseChange      EventType = "phase_change"
	EventWorkflowProgress EventType = "workflow_progress"
	EventOutlineCreated   EventType = "outline_created"
	EventOutlineUpdated   EventType = "outline_updated"
	EventSectionStarted   EventType = "section_started"
	EventSlideUpdate      EventType = "slide_update"
	EventDone             EventType = "done"
	EventError            EventType = "error"
)

// StreamEvent is the wire shape of one SSE frame. Only the fields relevant
// to the given Type are populated; field names match the JSON the web client
// already consumes.
type StreamEvent struct {
	Type           EventType         `json:"type"`
	Content        string            `json:"content,omitempty"`
	Tool           string            `json:"tool,omitempty"`
	Phase          string            `json:"phase,omitempty"`
	Progress       *WorkflowProgress `json:"progress,omitempty"`
	Outline        *Outline          `json:"outline,omitempty"`
	Section        string            `json:"section,omitempty"`
	Slide          json.RawMessage   `json:"slide,omitempty"`
	Context        *GatheredContext  `json:"context,omitempty"`
	ConversationID string            `json:"conversationId,omitempty"`
	Message        string            `json:"message,omitempty"`
}
