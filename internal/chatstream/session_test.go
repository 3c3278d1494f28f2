package chatstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dealdesk/diligence/internal/core/domain"
)

type chatHandler struct {
	requests atomic.Int32
	lastBody atomic.Value // chatBody
	frames   []string
}

type chatBody struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId"`
}

func (h *chatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.requests.Add(1)

	var body chatBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.lastBody.Store(body)

	w.Header().Set("Content-Type", "text/event-stream")
	flusher := w.(http.Flusher)
	for _, frame := range h.frames {
		fmt.Fprintf(w, "data: %s\n\n", frame)
		flusher.Flush()
	}
	fmt.Fprint(w, "data: [DONE]\n\n")
}

func TestSendWhitespaceOnlyIsNoOp(t *testing.T) {
	handler := &chatHandler{}
	server := httptest.NewServer(handler)
	defer server.Close()

	session := NewSession(server.URL, "p-1", server.Client(), Callbacks{})
	if err := session.Send(context.Background(), "   \n\t"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if got := handler.requests.Load(); got != 0 {
		t.Fatalf("expected no request for whitespace input, got %d", got)
	}
	if got := len(session.Snapshot().Transcript); got != 0 {
		t.Fatalf("expected empty transcript, got %d messages", got)
	}
}

func TestSendAccumulatesTokensAndTranscript(t *testing.T) {
	handler := &chatHandler{frames: []string{
		`{"type":"token","content":"The "}`,
		`{"type":"token","content":"company "}`,
		`{"type":"token","content":"looks solid."}`,
		`{"type":"done","conversationId":"c-42"}`,
	}}
	server := httptest.NewServer(handler)
	defer server.Close()

	var tokens string
	doneID := ""
	session := NewSession(server.URL, "p-1", server.Client(), Callbacks{
		OnToken: func(token string) { tokens += token },
		OnDone:  func(conversationID string) { doneID = conversationID },
	})

	if err := session.Send(context.Background(), "How healthy is the target?"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	state := session.Snapshot()
	if state.Err != nil {
		t.Fatalf("unexpected stream error: %v", state.Err)
	}
	if tokens != "The company looks solid." {
		t.Fatalf("tokens arrived out of order: %q", tokens)
	}
	if len(state.Transcript) != 2 {
		t.Fatalf("expected user + assistant messages, got %d", len(state.Transcript))
	}
	if state.Transcript[1].Role != domain.RoleAssistant || state.Transcript[1].Content != "The company looks solid." {
		t.Fatalf("unexpected assistant message: %+v", state.Transcript[1])
	}
	if state.ConversationID != "c-42" || doneID != "c-42" {
		t.Fatalf("expected conversation id stored and reported, got %q / %q", state.ConversationID, doneID)
	}
	if state.Draft != "" {
		t.Fatalf("expected draft cleared after done, got %q", state.Draft)
	}
}

func TestSendEchoesConversationIDOnNextTurn(t *testing.T) {
	handler := &chatHandler{frames: []string{
		`{"type":"done","conversationId":"c-7"}`,
	}}
	server := httptest.NewServer(handler)
	defer server.Close()

	session := NewSession(server.URL, "p-1", server.Client(), Callbacks{})
	if err := session.Send(context.Background(), "first"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if err := session.Send(context.Background(), "second"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	body := handler.lastBody.Load().(chatBody)
	if body.ConversationID != "c-7" {
		t.Fatalf("expected second turn to reuse conversation id, got %q", body.ConversationID)
	}
}

func TestSendSystemMessageSkipsTranscript(t *testing.T) {
	handler := &chatHandler{frames: []string{
		`{"type":"done","conversationId":"c-1"}`,
	}}
	server := httptest.NewServer(handler)
	defer server.Close()

	session := NewSession(server.URL, "p-1", server.Client(), Callbacks{})
	if err := session.Send(context.Background(), "[SYSTEM] generate the outline"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	body := handler.lastBody.Load().(chatBody)
	if body.Message != "[SYSTEM] generate the outline" {
		t.Fatalf("expected system message sent to service, got %q", body.Message)
	}
	if got := len(session.Snapshot().Transcript); got != 0 {
		t.Fatalf("expected system message kept out of transcript, got %d messages", got)
	}
}

func TestSendErrorEventPopulatesErr(t *testing.T) {
	handler := &chatHandler{frames: []string{
		`{"type":"token","content":"partial"}`,
		`{"type":"error","message":"agent exploded"}`,
	}}
	server := httptest.NewServer(handler)
	defer server.Close()

	session := NewSession(server.URL, "p-1", server.Client(), Callbacks{})
	if err := session.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	state := session.Snapshot()
	var streamErr *StreamError
	if !errors.As(state.Err, &streamErr) {
		t.Fatalf("expected StreamError, got %v", state.Err)
	}
	if streamErr.Message != "agent exploded" {
		t.Fatalf("unexpected error message: %q", streamErr.Message)
	}
}

func TestSendHTTPErrorPopulatesErr(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	session := NewSession(server.URL, "p-1", server.Client(), Callbacks{})
	if err := session.Send(context.Background(), "hello"); err == nil {
		t.Fatalf("expected error for non-200 response")
	}
	if session.Snapshot().Err == nil {
		t.Fatalf("expected error recorded in state")
	}
}

func TestCancelEndsSilently(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		fmt.Fprint(w, "data: {\"type\":\"token\",\"content\":\"par\"}\n\n")
		flusher.Flush()
		close(started)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	session := NewSession(server.URL, "p-1", server.Client(), Callbacks{})
	done := make(chan error, 1)
	go func() {
		done <- session.Send(context.Background(), "hello")
	}()

	<-started
	session.Cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected cancelled send to end silently, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for cancelled send")
	}
	if err := session.Snapshot().Err; err != nil {
		t.Fatalf("cancel must not populate error state, got %v", err)
	}
}

func TestSendRejectsConcurrentTurn(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.(http.Flusher).Flush()
		close(started)
		select {
		case <-release:
		case <-r.Context().Done():
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	session := NewSession(server.URL, "p-1", server.Client(), Callbacks{})
	done := make(chan error, 1)
	go func() {
		done <- session.Send(context.Background(), "first")
	}()

	<-started
	if err := session.Send(context.Background(), "second"); !errors.Is(err, ErrSendInFlight) {
		t.Fatalf("expected ErrSendInFlight, got %v", err)
	}
	close(release)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("first send error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for first send")
	}
}
