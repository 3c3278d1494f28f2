package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dealdesk/diligence/internal/core/domain"
)

type ConversationRepository struct {
	db *sql.DB
}

func NewConversationRepository(db *sql.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) EnsureConversation(ctx context.Context, projectID, conversationID string) (*domain.Conversation, error) {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
INSERT INTO conversations (id, project_id, created_at, updated_at)
VALUES ($1, $2, $3, $3)
ON CONFLICT (project_id, id) DO NOTHING
`, conversationID, projectID, now)
	if err != nil {
		return nil, fmt.Errorf("ensure conversation insert: %w", err)
	}

	row := r.db.QueryRowContext(ctx, `
SELECT id, project_id, created_at, updated_at
FROM conversations
WHERE project_id = $1 AND id = $2
`, projectID, conversationID)

	var conv domain.Conversation
	if err := row.Scan(&conv.ID, &conv.ProjectID, &conv.CreatedAt, &conv.UpdatedAt); err != nil {
		return nil, fmt.Errorf("ensure conversation select: %w", err)
	}
	return &conv, nil
}

func (r *ConversationRepository) AppendMessage(ctx context.Context, message domain.ConversationMessage) error {
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO conversation_messages (id, conversation_id, project_id, role, content, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
`, message.ID, message.ConversationID, message.ProjectID, string(message.Role), message.Content, message.CreatedAt)
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
UPDATE conversations SET updated_at = $3 WHERE project_id = $1 AND id = $2
`, message.ProjectID, message.ConversationID, message.CreatedAt)
	if err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}
	return nil
}

func (r *ConversationRepository) ListMessages(ctx context.Context, projectID, conversationID string) ([]domain.ConversationMessage, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, conversation_id, project_id, role, content, created_at
FROM conversation_messages
WHERE project_id = $1 AND conversation_id = $2
ORDER BY created_at ASC
`, projectID, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ConversationMessage, 0)
	for rows.Next() {
		var msg domain.ConversationMessage
		var role string
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.ProjectID, &role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg.Role = domain.MessageRole(role)
		out = append(out, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	if len(out) == 0 {
		// Distinguish empty transcript from unknown conversation.
		var exists bool
		row := r.db.QueryRowContext(ctx, `
SELECT EXISTS (SELECT 1 FROM conversations WHERE project_id = $1 AND id = $2)
`, projectID, conversationID)
		if err := row.Scan(&exists); err != nil && err != sql.ErrNoRows {
			return nil, fmt.Errorf("check conversation exists: %w", err)
		}
		if !exists {
			return nil, domain.WrapError(domain.ErrNotFound, "list messages", fmt.Errorf("conversation %s", conversationID))
		}
	}
	return out, nil
}
