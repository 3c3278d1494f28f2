package usecase

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dealdesk/diligence/internal/core/domain"
	"github.com/dealdesk/diligence/internal/core/ports"
)

type ExportUseCase struct {
	findings       ports.FindingRepository
	contradictions ports.ContradictionRepository
	gaps           ports.GapRepository
	renderer       ports.ExportRenderer
}

func NewExportUseCase(
	findings ports.FindingRepository,
	contradictions ports.ContradictionRepository,
	gaps ports.GapRepository,
	renderer ports.ExportRenderer,
) *ExportUseCase {
	return &ExportUseCase{
		findings:       findings,
		contradictions: contradictions,
		gaps:           gaps,
		renderer:       renderer,
	}
}

func (uc *ExportUseCase) FindingsCSV(ctx context.Context, projectID string, filter domain.FindingFilter, w io.Writer) error {
	findings, err := uc.listAll(ctx, projectID, filter)
	if err != nil {
		return err
	}
	if err := uc.renderer.RenderFindingsCSV(w, findings); err != nil {
		return fmt.Errorf("render findings csv: %w", err)
	}
	return nil
}

func (uc *ExportUseCase) FindingsXLSX(ctx context.Context, projectID string, filter domain.FindingFilter, w io.Writer) error {
	findings, err := uc.listAll(ctx, projectID, filter)
	if err != nil {
		return err
	}
	if err := uc.renderer.RenderFindingsXLSX(w, findings); err != nil {
		return fmt.Errorf("render findings xlsx: %w", err)
	}
	return nil
}

func (uc *ExportUseCase) ReportHTML(ctx context.Context, projectID string, w io.Writer) error {
	findings, err := uc.listAll(ctx, projectID, domain.FindingFilter{})
	if err != nil {
		return err
	}
	contradictions, err := uc.contradictions.List(ctx, projectID, "")
	if err != nil {
		return fmt.Errorf("list contradictions for report: %w", err)
	}
	gaps, err := uc.gaps.List(ctx, projectID, "")
	if err != nil {
		return fmt.Errorf("list gaps for report: %w", err)
	}

	report := domain.Report{
		ProjectID:      projectID,
		GeneratedAt:    time.Now().UTC(),
		Findings:       findings,
		Contradictions: contradictions,
		Gaps:           gaps,
	}
	if err := uc.renderer.RenderReportHTML(w, report); err != nil {
		return fmt.Errorf("render html report: %w", err)
	}
	return nil
}

// listAll pages through the repository so exports are not capped by the
// browse-page limit. Filters get the same validation as the browse endpoint.
func (uc *ExportUseCase) listAll(ctx context.Context, projectID string, filter domain.FindingFilter) ([]domain.Finding, error) {
	const pageSize = 500

	if filter.Status != "" {
		if _, ok := domain.ParseValidationStatus(filter.Status); !ok {
			return nil, domain.WrapError(domain.ErrInvalidInput, "export findings", fmt.Errorf("unknown status %q", filter.Status))
		}
	}

	filter.Limit = pageSize
	filter.Offset = 0

	var out []domain.Finding
	for {
		page, err := uc.findings.List(ctx, projectID, filter)
		if err != nil {
			return nil, fmt.Errorf("list findings for export: %w", err)
		}
		out = append(out, page...)
		if len(page) < pageSize {
			return out, nil
		}
		filter.Offset += pageSize
	}
}
