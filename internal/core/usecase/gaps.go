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

type GapUseCase struct {
	repo   ports.GapRepository
	events ports.EventPublisher
}

func NewGapUseCase(repo ports.GapRepository, events ports.EventPublisher) *GapUseCase {
	return &GapUseCase{repo: repo, events: events}
}

func (uc *GapUseCase) Create(ctx context.Context, projectID string, gap domain.Gap) (*domain.Gap, error) {
	if strings.TrimSpace(gap.Description) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create gap", fmt.Errorf("description is required"))
	}
	category, ok := domain.ParseGapCategory(string(gap.Category))
	if !ok {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create gap", fmt.Errorf("unknown category %q", gap.Category))
	}
	priority := domain.GapPriorityMedium
	if gap.Priority != "" {
		priority, ok = domain.ParseGapPriority(string(gap.Priority))
		if !ok {
			return nil, domain.WrapError(domain.ErrInvalidInput, "create gap", fmt.Errorf("unknown priority %q", gap.Priority))
		}
	}

	now := time.Now().UTC()
	gap.ID = uuid.NewString()
	gap.ProjectID = projectID
	gap.Category = category
	gap.Priority = priority
	gap.Status = domain.GapActive
	gap.CreatedAt = now
	gap.UpdatedAt = now

	if err := uc.repo.Create(ctx, &gap); err != nil {
		return nil, fmt.Errorf("create gap: %w", err)
	}
	uc.publish(ctx, projectID, gap.ID, domain.ActionCreated)
	return &gap, nil
}

func (uc *GapUseCase) List(ctx context.Context, projectID, status string) ([]domain.Gap, error) {
	if status != "" {
		if _, ok := domain.ParseGapStatus(status); !ok {
			return nil, domain.WrapError(domain.ErrInvalidInput, "list gaps", fmt.Errorf("unknown status %q", status))
		}
	}
	return uc.repo.List(ctx, projectID, status)
}

func (uc *GapUseCase) Update(ctx context.Context, projectID, id string, patch domain.GapPatch) (*domain.Gap, error) {
	if patch.Status == nil && patch.Priority == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "update gap", fmt.Errorf("patch is empty"))
	}
	if patch.Status != nil {
		if _, ok := domain.ParseGapStatus(*patch.Status); !ok {
			return nil, domain.WrapError(domain.ErrInvalidInput, "update gap", fmt.Errorf("unknown status %q", *patch.Status))
		}
	}
	if patch.Priority != nil {
		if _, ok := domain.ParseGapPriority(*patch.Priority); !ok {
			return nil, domain.WrapError(domain.ErrInvalidInput, "update gap", fmt.Errorf("unknown priority %q", *patch.Priority))
		}
	}
	if err := uc.repo.ApplyPatch(ctx, projectID, id, patch); err != nil {
		return nil, err
	}
	uc.publish(ctx, projectID, id, domain.ActionUpdated)
	return uc.repo.GetByID(ctx, projectID, id)
}

func (uc *GapUseCase) publish(ctx context.Context, projectID, id, action string) {
	if uc.events == nil {
		return
	}
	event := domain.ChangeEvent{
		Entity:    domain.EntityGap,
		EntityID:  id,
		ProjectID: projectID,
		Action:    action,
		At:        time.Now().UTC(),
	}
	if err := uc.events.PublishChange(ctx, event); err != nil {
		slog.Warn("change_event_publish_failed", "entity", event.Entity, "action", action, "error", err)
	}
}
