package ports

import (
	"context"
	"io"

	"github.com/dealdesk/diligence/internal/core/domain"
)

// FindingRepository persists extracted findings. Rows are only ever
// status-flagged, never deleted.
type FindingRepository interface {
	Create(ctx context.Context, finding *domain.Finding) error
	GetByID(ctx context.Context, projectID, id string) (*domain.Finding, error)
	List(ctx context.Context, projectID string, filter domain.FindingFilter) ([]domain.Finding, error)
	SetStatus(ctx context.Context, projectID, id string, status domain.ValidationStatus, reason string) error
	ApplyPatch(ctx context.Context, projectID, id string, patch domain.FindingPatch) error
}

// ContradictionRepository persists finding conflicts and their resolution.
type ContradictionRepository interface {
	Create(ctx context.Context, c *domain.Contradiction) error
	GetByID(ctx context.Context, projectID, id string) (*domain.Contradiction, error)
	List(ctx context.Context, projectID string, status string) ([]domain.Contradiction, error)
	Resolve(ctx context.Context, projectID, id string, status domain.ResolutionStatus, note string) error
}

// GapRepository persists information gaps.
type GapRepository interface {
	Create(ctx context.Context, gap *domain.Gap) error
	GetByID(ctx context.Context, projectID, id string) (*domain.Gap, error)
	List(ctx context.Context, projectID string, status string) ([]domain.Gap, error)
	ApplyPatch(ctx context.Context, projectID, id string, patch domain.GapPatch) error
}

// ConversationStore persists chat transcripts.
type ConversationStore interface {
	EnsureConversation(ctx context.Context, projectID, conversationID string) (*domain.Conversation, error)
	AppendMessage(ctx context.Context, message domain.ConversationMessage) error
	ListMessages(ctx context.Context, projectID, conversationID string) ([]domain.ConversationMessage, error)
}

// AgentRequest is the body sent to the external agent-graph service.
type AgentRequest struct {
	ProjectID      string `json:"project_id"`
	ConversationID string `json:"conversation_id,omitempty"`
	Message        string `json:"message"`
}

// AgentStream opens a streaming chat turn against the agent-graph service.
// Events are delivered to emit in arrival order; a non-nil return from emit
// aborts the stream.
type AgentStream interface {
	Stream(ctx context.Context, req AgentRequest, emit func(domain.StreamEvent) error) error
}

// ExportRenderer turns records into downloadable files.
type ExportRenderer interface {
	RenderFindingsCSV(w io.Writer, findings []domain.Finding) error
	RenderFindingsXLSX(w io.Writer, findings []domain.Finding) error
	RenderReportHTML(w io.Writer, report domain.Report) error
}

// EventPublisher fans out analyst actions to the extraction pipeline.
type EventPublisher interface {
	PublishChange(ctx context.Context, event domain.ChangeEvent) error
}
