package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dealdesk/diligence/internal/core/domain"
	"github.com/dealdesk/diligence/internal/core/ports"
)

type FindingUseCase struct {
	repo   ports.FindingRepository
	events ports.EventPublisher
}

func NewFindingUseCase(repo ports.FindingRepository, events ports.EventPublisher) *FindingUseCase {
	return &FindingUseCase{repo: repo, events: events}
}

func (uc *FindingUseCase) Ingest(ctx context.Context, projectID string, finding domain.Finding) (*domain.Finding, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ingest finding", fmt.Errorf("project id is required"))
	}
	if strings.TrimSpace(finding.Text) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ingest finding", fmt.Errorf("finding text is required"))
	}

	now := time.Now().UTC()
	finding.ID = uuid.NewString()
	finding.ProjectID = projectID
	finding.Status = domain.FindingPending
	finding.RejectionReason = ""
	finding.Confidence = domain.ClampConfidence(finding.Confidence)
	finding.CreatedAt = now
	finding.UpdatedAt = now

	if err := uc.repo.Create(ctx, &finding); err != nil {
		return nil, fmt.Errorf("create finding: %w", err)
	}
	uc.publish(ctx, projectID, finding.ID, domain.ActionCreated)
	return &finding, nil
}

func (uc *FindingUseCase) Get(ctx context.Context, projectID, id string) (*domain.Finding, error) {
	return uc.repo.GetByID(ctx, projectID, id)
}

func (uc *FindingUseCase) List(ctx context.Context, projectID string, filter domain.FindingFilter) ([]domain.Finding, error) {
	if filter.Status != "" {
		if _, ok := domain.ParseValidationStatus(filter.Status); !ok {
			return nil, domain.WrapError(domain.ErrInvalidInput, "list findings", fmt.Errorf("unknown status %q", filter.Status))
		}
	}
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return uc.repo.List(ctx, projectID, filter)
}

func (uc *FindingUseCase) Validate(ctx context.Context, projectID, id string) (*domain.Finding, error) {
	if err := uc.repo.SetStatus(ctx, projectID, id, domain.FindingValidated, ""); err != nil {
		return nil, err
	}
	uc.publish(ctx, projectID, id, domain.ActionValidated)
	return uc.repo.GetByID(ctx, projectID, id)
}

func (uc *FindingUseCase) Reject(ctx context.Context, projectID, id, reason string) (*domain.Finding, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "reject finding", fmt.Errorf("rejection reason is required"))
	}
	if err := uc.repo.SetStatus(ctx, projectID, id, domain.FindingRejected, reason); err != nil {
		return nil, err
	}
	uc.publish(ctx, projectID, id, domain.ActionRejected)
	return uc.repo.GetByID(ctx, projectID, id)
}

func (uc *FindingUseCase) Edit(ctx context.Context, projectID, id string, patch domain.FindingPatch) (*domain.Finding, error) {
	if patch.Text == nil && patch.Domain == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "edit finding", fmt.Errorf("patch is empty"))
	}
	if patch.Text != nil && strings.TrimSpace(*patch.Text) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "edit finding", fmt.Errorf("finding text cannot be blank"))
	}
	if err := uc.repo.ApplyPatch(ctx, projectID, id, patch); err != nil {
		return nil, err
	}
	uc.publish(ctx, projectID, id, domain.ActionEdited)
	return uc.repo.GetByID(ctx, projectID, id)
}

// publish is fire-and-forget: a pipeline outage must not fail analyst writes.
func (uc *FindingUseCase) publish(ctx context.Context, projectID, id, action string) {
	if uc.events == nil {
		return
	}
	event := domain.ChangeEvent{
		Entity:    domain.EntityFinding,
		EntityID:  id,
		ProjectID: projectID,
		Action:    action,
		At:        time.Now().UTC(),
	}
	if err := uc.events.PublishChange(ctx, event); err != nil {
		slog.Warn("change_event_publish_failed", "entity", event.Entity, "action", action, "error", err)
	}
}
