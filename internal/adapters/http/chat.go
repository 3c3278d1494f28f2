package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dealdesk/diligence/internal/core/domain"
	"github.com/dealdesk/diligence/internal/core/ports"
)

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId,omitempty"`
}

func (rt *Router) chatStream(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}

	// Headers go out before the first upstream byte; everything after this
	// point is surfaced in-stream, never as a replacement status code.
	stream, err := newSSEWriter(w)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	start := time.Now()
	outcome := "done"

	streamErr := rt.chat.Stream(r.Context(), ports.ChatRequest{
		ProjectID:      r.PathValue("projectID"),
		ConversationID: req.ConversationID,
		Message:        req.Message,
	}, func(event domain.StreamEvent) error {
		rt.metrics.RecordChatEvent(serviceName, string(event.Type))
		if event.Type == domain.EventError {
			outcome = "error"
		}
		return stream.WriteEvent(event)
	})

	switch {
	case streamErr == nil:
		_ = stream.WriteDone()
	case errors.Is(streamErr, context.Canceled):
		outcome = "cancelled"
	default:
		outcome = "error"
		slog.Error("chat_stream_aborted",
			"request_id", requestIDFromContext(r.Context()),
			"error", streamErr,
		)
		// The 200 is already on the wire, so a failure before the first
		// agent event must still reach the client as a terminal frame:
		// plain EOF would read as a clean empty answer.
		rt.metrics.RecordChatEvent(serviceName, string(domain.EventError))
		_ = stream.WriteEvent(domain.StreamEvent{
			Type:    domain.EventError,
			Message: "chat is temporarily unavailable, please retry",
		})
	}

	rt.metrics.RecordChatStream(serviceName, outcome, time.Since(start))
}

func (rt *Router) getTranscript(w http.ResponseWriter, r *http.Request) {
	messages, err := rt.chat.Transcript(r.Context(), r.PathValue("projectID"), r.PathValue("conversationID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}
