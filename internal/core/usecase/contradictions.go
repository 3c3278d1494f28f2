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

type ContradictionUseCase struct {
	repo     ports.ContradictionRepository
	findings ports.FindingRepository
	events   ports.EventPublisher
}

func NewContradictionUseCase(
	repo ports.ContradictionRepository,
	findings ports.FindingRepository,
	events ports.EventPublisher,
) *ContradictionUseCase {
	return &ContradictionUseCase{repo: repo, findings: findings, events: events}
}

func (uc *ContradictionUseCase) Create(ctx context.Context, projectID string, c domain.Contradiction) (*domain.Contradiction, error) {
	if strings.TrimSpace(c.FindingAID) == "" || strings.TrimSpace(c.FindingBID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create contradiction", fmt.Errorf("both finding ids are required"))
	}
	if c.FindingAID == c.FindingBID {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create contradiction", fmt.Errorf("a finding cannot contradict itself"))
	}
	// Both sides must exist in this project before a conflict can be recorded.
	if _, err := uc.findings.GetByID(ctx, projectID, c.FindingAID); err != nil {
		return nil, err
	}
	if _, err := uc.findings.GetByID(ctx, projectID, c.FindingBID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	c.ID = uuid.NewString()
	c.ProjectID = projectID
	c.Status = domain.ContradictionUnresolved
	c.ResolutionNote = ""
	c.CreatedAt = now
	c.UpdatedAt = now

	if err := uc.repo.Create(ctx, &c); err != nil {
		return nil, fmt.Errorf("create contradiction: %w", err)
	}
	uc.publish(ctx, projectID, c.ID, domain.ActionCreated)
	return &c, nil
}

func (uc *ContradictionUseCase) List(ctx context.Context, projectID, status string) ([]domain.Contradiction, error) {
	if status != "" {
		if _, ok := domain.ParseResolutionStatus(status); !ok {
			return nil, domain.WrapError(domain.ErrInvalidInput, "list contradictions", fmt.Errorf("unknown status %q", status))
		}
	}
	return uc.repo.List(ctx, projectID, status)
}

func (uc *ContradictionUseCase) Resolve(ctx context.Context, projectID, id, status, note string) (*domain.Contradiction, error) {
	parsed, ok := domain.ParseResolutionStatus(status)
	if !ok {
		return nil, domain.WrapError(domain.ErrInvalidInput, "resolve contradiction", fmt.Errorf("unknown resolution status %q", status))
	}
	if parsed == domain.ContradictionUnresolved {
		return nil, domain.WrapError(domain.ErrInvalidInput, "resolve contradiction", fmt.Errorf("cannot resolve back to unresolved"))
	}
	if err := uc.repo.Resolve(ctx, projectID, id, parsed, note); err != nil {
		return nil, err
	}
	uc.publish(ctx, projectID, id, domain.ActionResolved)
	return uc.repo.GetByID(ctx, projectID, id)
}

func (uc *ContradictionUseCase) publish(ctx context.Context, projectID, id, action string) {
	if uc.events == nil {
		return
	}
	event := domain.ChangeEvent{
		Entity:    domain.EntityContradiction,
		EntityID:  id,
		ProjectID: projectID,
		Action:    action,
		At:        time.Now().UTC(),
	}
	if err := uc.events.PublishChange(ctx, event); err != nil {
		slog.Warn("change_event_publish_failed", "entity", event.Entity, "action", action, "error", err)
	}
}
