package ports

import (
	"context"
	"io"

	"github.com/dealdesk/diligence/internal/core/domain"
)

// FindingService is the inbound contract for browsing and curating findings.
type FindingService interface {
	Ingest(ctx context.Context, projectID string, finding domain.Finding) (*domain.Finding, error)
	Get(ctx context.Context, projectID, id string) (*domain.Finding, error)
	List(ctx context.Context, projectID string, filter domain.FindingFilter) ([]domain.Finding, error)
	Validate(ctx context.Context, projectID, id string) (*domain.Finding, error)
	Reject(ctx context.Context, projectID, id, reason string) (*domain.Finding, error)
	Edit(ctx context.Context, projectID, id string, patch domain.FindingPatch) (*domain.Finding, error)
}

// ContradictionService is the inbound contract for conflict resolution.
type ContradictionService interface {
	Create(ctx context.Context, projectID string, c domain.Contradiction) (*domain.Contradiction, error)
	List(ctx context.Context, projectID, status string) ([]domain.Contradiction, error)
	Resolve(ctx context.Context, projectID, id, status, note string) (*domain.Contradiction, error)
}

// GapService is the inbound contract for gap tracking.
type GapService interface {
	Create(ctx context.Context, projectID string, gap domain.Gap) (*domain.Gap, error)
	List(ctx context.Context, projectID, status string) ([]domain.Gap, error)
	Update(ctx context.Context, projectID, id string, patch domain.GapPatch) (*domain.Gap, error)
}

// ChatRequest is one analyst chat turn.
type ChatRequest struct {
	ProjectID      string
	ConversationID string
	Message        string
}

// ChatService bridges a chat turn to the agent-graph service, persisting the
// transcript and re-emitting stream events to the caller.
type ChatService interface {
	Stream(ctx context.Context, req ChatRequest, emit func(domain.StreamEvent) error) error
	Transcript(ctx context.Context, projectID, conversationID string) ([]domain.ConversationMessage, error)
}

// ExportService renders finding exports.
type ExportService interface {
	FindingsCSV(ctx context.Context, projectID string, filter domain.FindingFilter, w io.Writer) error
	FindingsXLSX(ctx context.Context, projectID string, filter domain.FindingFilter, w io.Writer) error
	ReportHTML(ctx context.Context, projectID string, w io.Writer) error
}
