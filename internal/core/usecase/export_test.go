package usecase

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/dealdesk/diligence/internal/core/domain"
)

type pagingFindingRepo struct {
	findingRepoFake
	total int
	calls []domain.FindingFilter
}

func (f *pagingFindingRepo) List(_ context.Context, _ string, filter domain.FindingFilter) ([]domain.Finding, error) {
	f.calls = append(f.calls, filter)
	remaining := f.total - filter.Offset
	if remaining <= 0 {
		return nil, nil
	}
	count := filter.Limit
	if count > remaining {
		count = remaining
	}
	return make([]domain.Finding, count), nil
}

type rendererFake struct {
	csvCount  int
	xlsxCount int
	report    *domain.Report
}

func (f *rendererFake) RenderFindingsCSV(_ io.Writer, findings []domain.Finding) error {
	f.csvCount = len(findings)
	return nil
}

func (f *rendererFake) RenderFindingsXLSX(_ io.Writer, findings []domain.Finding) error {
	f.xlsxCount = len(findings)
	return nil
}

func (f *rendererFake) RenderReportHTML(_ io.Writer, report domain.Report) error {
	f.report = &report
	return nil
}

func TestExportFindingsCSVPagesPastBrowseLimit(t *testing.T) {
	repo := &pagingFindingRepo{total: 1200}
	renderer := &rendererFake{}
	uc := NewExportUseCase(repo, &contradictionRepoFake{}, &gapRepoFake{}, renderer)

	var buf bytes.Buffer
	if err := uc.FindingsCSV(context.Background(), "p-1", domain.FindingFilter{}, &buf); err != nil {
		t.Fatalf("FindingsCSV() error = %v", err)
	}
	if renderer.csvCount != 1200 {
		t.Fatalf("expected all 1200 findings rendered, got %d", renderer.csvCount)
	}
	if len(repo.calls) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(repo.calls))
	}
	if repo.calls[1].Offset != 500 || repo.calls[2].Offset != 1000 {
		t.Fatalf("unexpected paging offsets: %+v", repo.calls)
	}
}

func TestExportFindingsCSVRejectsUnknownStatus(t *testing.T) {
	repo := &pagingFindingRepo{total: 10}
	uc := NewExportUseCase(repo, &contradictionRepoFake{}, &gapRepoFake{}, &rendererFake{})

	var buf bytes.Buffer
	err := uc.FindingsCSV(context.Background(), "p-1", domain.FindingFilter{Status: "bogus"}, &buf)
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for unknown status, got %v", err)
	}
	if len(repo.calls) != 0 {
		t.Fatalf("invalid filter must not reach the repository, got %d calls", len(repo.calls))
	}
}

func TestExportReportHTMLAssemblesAllRecordKinds(t *testing.T) {
	repo := &pagingFindingRepo{total: 2}
	renderer := &rendererFake{}
	uc := NewExportUseCase(repo, &contradictionRepoFake{}, &gapRepoFake{}, renderer)

	var buf bytes.Buffer
	if err := uc.ReportHTML(context.Background(), "p-1", &buf); err != nil {
		t.Fatalf("ReportHTML() error = %v", err)
	}
	if renderer.report == nil {
		t.Fatalf("expected report rendered")
	}
	if renderer.report.ProjectID != "p-1" || len(renderer.report.Findings) != 2 {
		t.Fatalf("unexpected report: %+v", renderer.report)
	}
	if renderer.report.GeneratedAt.IsZero() {
		t.Fatalf("expected generation timestamp set")
	}
}
