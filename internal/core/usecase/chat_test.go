package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dealdesk/diligence/internal/core/domain"
	"github.com/dealdesk/diligence/internal/core/ports"
)

type conversationStoreFake struct {
	mu       sync.Mutex
	ensured  []string
	messages []domain.ConversationMessage
	err      error
}

func (f *conversationStoreFake) EnsureConversation(_ context.Context, projectID, conversationID string) (*domain.Conversation, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensured = append(f.ensured, conversationID)
	return &domain.Conversation{ID: conversationID, ProjectID: projectID}, nil
}

func (f *conversationStoreFake) AppendMessage(_ context.Context, message domain.ConversationMessage) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
	return nil
}

func (f *conversationStoreFake) ListMessages(context.Context, string, string) ([]domain.ConversationMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.ConversationMessage(nil), f.messages...), f.err
}

func (f *conversationStoreFake) stored() []domain.ConversationMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.ConversationMessage(nil), f.messages...)
}

type agentStreamFake struct {
	events  []domain.StreamEvent
	err     error
	lastReq ports.AgentRequest
}

func (f *agentStreamFake) Stream(_ context.Context, req ports.AgentRequest, emit func(domain.StreamEvent) error) error {
	f.lastReq = req
	for _, event := range f.events {
		if err := emit(event); err != nil {
			return err
		}
	}
	return f.err
}

func collectEvents(events *[]domain.StreamEvent) func(domain.StreamEvent) error {
	return func(event domain.StreamEvent) error {
		*events = append(*events, event)
		return nil
	}
}

func TestChatStreamPersistsTurnAndFillsConversationID(t *testing.T) {
	store := &conversationStoreFake{}
	agent := &agentStreamFake{events: []domain.StreamEvent{
		{Type: domain.EventToken, Content: "The target "},
		{Type: domain.EventToken, Content: "is profitable."},
		{Type: domain.EventDone},
	}}
	uc := NewChatUseCase(agent, store)

	var emitted []domain.StreamEvent
	err := uc.Stream(context.Background(), ports.ChatRequest{
		ProjectID: "p-1",
		Message:   "Summarize financial health",
	}, collectEvents(&emitted))
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}

	done := emitted[len(emitted)-1]
	if done.Type != domain.EventDone || done.ConversationID == "" {
		t.Fatalf("expected done event with generated conversation id, got %+v", done)
	}
	if agent.lastReq.ConversationID != done.ConversationID {
		t.Fatalf("expected agent request to carry the same conversation id")
	}

	messages := store.stored()
	if len(messages) != 2 {
		t.Fatalf("expected user + assistant persisted, got %d", len(messages))
	}
	if messages[0].Role != domain.RoleUser {
		t.Fatalf("expected user message first, got %+v", messages[0])
	}
	if messages[1].Role != domain.RoleAssistant || messages[1].Content != "The target is profitable." {
		t.Fatalf("unexpected assistant message: %+v", messages[1])
	}
}

func TestChatStreamRequiresMessage(t *testing.T) {
	uc := NewChatUseCase(&agentStreamFake{}, &conversationStoreFake{})

	err := uc.Stream(context.Background(), ports.ChatRequest{ProjectID: "p-1", Message: "  "}, func(domain.StreamEvent) error { return nil })
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestChatStreamSystemMessageNotPersisted(t *testing.T) {
	store := &conversationStoreFake{}
	agent := &agentStreamFake{events: []domain.StreamEvent{{Type: domain.EventDone}}}
	uc := NewChatUseCase(agent, store)

	err := uc.Stream(context.Background(), ports.ChatRequest{
		ProjectID: "p-1",
		Message:   "[SYSTEM] start outline generation",
	}, func(domain.StreamEvent) error { return nil })
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}

	if agent.lastReq.Message != "[SYSTEM] start outline generation" {
		t.Fatalf("expected system message forwarded to agent, got %q", agent.lastReq.Message)
	}
	for _, msg := range store.stored() {
		if msg.Role == domain.RoleUser {
			t.Fatalf("system message must not appear in transcript: %+v", msg)
		}
	}
}

func TestChatStreamUpstreamFailureEmitsTerminalError(t *testing.T) {
	store := &conversationStoreFake{}
	agent := &agentStreamFake{
		events: []domain.StreamEvent{{Type: domain.EventToken, Content: "partial answer"}},
		err:    errors.New("agent connection reset"),
	}
	uc := NewChatUseCase(agent, store)

	var emitted []domain.StreamEvent
	err := uc.Stream(context.Background(), ports.ChatRequest{
		ProjectID: "p-1",
		Message:   "hello",
	}, collectEvents(&emitted))
	if err != nil {
		t.Fatalf("upstream failure must be surfaced in-stream, got %v", err)
	}

	last := emitted[len(emitted)-1]
	if last.Type != domain.EventError || last.Message == "" {
		t.Fatalf("expected terminal error event, got %+v", last)
	}

	messages := store.stored()
	if len(messages) != 2 || messages[1].Content != "partial answer" {
		t.Fatalf("expected partial assistant text persisted, got %+v", messages)
	}
}

func TestChatStreamCancellationKeepsPartialWithoutErrorEvent(t *testing.T) {
	store := &conversationStoreFake{}
	agent := &agentStreamFake{
		events: []domain.StreamEvent{{Type: domain.EventToken, Content: "par"}},
		err:    context.Canceled,
	}
	uc := NewChatUseCase(agent, store)

	var emitted []domain.StreamEvent
	err := uc.Stream(context.Background(), ports.ChatRequest{
		ProjectID: "p-1",
		Message:   "hello",
	}, collectEvents(&emitted))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	for _, event := range emitted {
		if event.Type == domain.EventError {
			t.Fatalf("cancellation must not emit an error event")
		}
	}
	messages := store.stored()
	if len(messages) != 2 || messages[1].Content != "par" {
		t.Fatalf("expected partial assistant text persisted, got %+v", messages)
	}
}

func TestChatTranscriptRequiresConversationID(t *testing.T) {
	uc := NewChatUseCase(&agentStreamFake{}, &conversationStoreFake{})

	if _, err := uc.Transcript(context.Background(), "p-1", " "); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
