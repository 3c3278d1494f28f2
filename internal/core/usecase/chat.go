package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dealdesk/diligence/internal/core/domain"
	"github.com/dealdesk/diligence/internal/core/ports"
)

// systemMessagePrefix marks instructions injected by the UI. They are sent to
// the agent but kept out of the persisted transcript.
const systemMessagePrefix = "[SYSTEM]"

type ChatUseCase struct {
	agent         ports.AgentStream
	conversations ports.ConversationStore
}

func NewChatUseCase(agent ports.AgentStream, conversations ports.ConversationStore) *ChatUseCase {
	return &ChatUseCase{agent: agent, conversations: conversations}
}

// Stream runs one chat turn: persists the user message, proxies the agent
// event stream to emit, and persists the assistant message once the stream
// finishes. An upstream failure surfaces as a terminal error event plus
// whatever assistant text already arrived; it never breaks the SSE response.
func (uc *ChatUseCase) Stream(ctx context.Context, req ports.ChatRequest, emit func(domain.StreamEvent) error) error {
	projectID := strings.TrimSpace(req.ProjectID)
	if projectID == "" {
		return domain.WrapError(domain.ErrInvalidInput, "chat stream", fmt.Errorf("project id is required"))
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return domain.WrapError(domain.ErrInvalidInput, "chat stream", fmt.Errorf("message is required"))
	}

	conversationID := strings.TrimSpace(req.ConversationID)
	if conversationID == "" {
		conversationID = uuid.NewString()
	}
	if _, err := uc.conversations.EnsureConversation(ctx, projectID, conversationID); err != nil {
		return fmt.Errorf("ensure conversation: %w", err)
	}

	if !strings.HasPrefix(message, systemMessagePrefix) {
		userMsg := domain.ConversationMessage{
			ID:             uuid.NewString(),
			ConversationID: conversationID,
			ProjectID:      projectID,
			Role:           domain.RoleUser,
			Content:        message,
			CreatedAt:      time.Now().UTC(),
		}
		if err := uc.conversations.AppendMessage(ctx, userMsg); err != nil {
			return fmt.Errorf("append user message: %w", err)
		}
	}

	var assistant strings.Builder
	sawTerminal := false

	streamErr := uc.agent.Stream(ctx, ports.AgentRequest{
		ProjectID:      projectID,
		ConversationID: conversationID,
		Message:        req.Message,
	}, func(event domain.StreamEvent) error {
		switch event.Type {
		case domain.EventToken:
			assistant.WriteString(event.Content)
		case domain.EventDone:
			sawTerminal = true
			if event.ConversationID == "" {
				event.ConversationID = conversationID
			}
		case domain.EventError:
			sawTerminal = true
		}
		return emit(event)
	})

	if streamErr != nil && errors.Is(streamErr, context.Canceled) {
		// Caller went away; nothing to surface, keep the partial transcript.
		uc.persistAssistant(projectID, conversationID, assistant.String())
		return streamErr
	}

	if streamErr != nil && !sawTerminal {
		slog.Error("agent_stream_failed", "project_id", projectID, "conversation_id", conversationID, "error", streamErr)
		fallback := domain.StreamEvent{
			Type:           domain.EventError,
			ConversationID: conversationID,
			Message:        "assistant is temporarily unavailable, partial answer kept",
		}
		if emitErr := emit(fallback); emitErr != nil {
			uc.persistAssistant(projectID, conversationID, assistant.String())
			return emitErr
		}
	}

	uc.persistAssistant(projectID, conversationID, assistant.String())
	return nil
}

func (uc *ChatUseCase) Transcript(ctx context.Context, projectID, conversationID string) ([]domain.ConversationMessage, error) {
	if strings.TrimSpace(conversationID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "transcript", fmt.Errorf("conversation id is required"))
	}
	return uc.conversations.ListMessages(ctx, projectID, conversationID)
}

// persistAssistant writes the accumulated assistant text with a background
// context so a cancelled request does not lose the partial answer.
func (uc *ChatUseCase) persistAssistant(projectID, conversationID, content string) {
	if strings.TrimSpace(content) == "" {
		return
	}
	persistCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msg := domain.ConversationMessage{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		ProjectID:      projectID,
		Role:           domain.RoleAssistant,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}
	if err := uc.conversations.AppendMessage(persistCtx, msg); err != nil {
		slog.Error("append_assistant_message_failed", "conversation_id", conversationID, "error", err)
	}
}
