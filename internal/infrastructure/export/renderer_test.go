package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/dealdesk/diligence/internal/core/domain"
)

func sampleFindings() []domain.Finding {
	created := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	return []domain.Finding{
		{
			ID:         "f-1",
			ProjectID:  "p-1",
			Text:       "Revenue grew 40% YoY",
			Domain:     "financial",
			Confidence: 0.92,
			Status:     domain.FindingValidated,
			Source:     domain.SourceRef{DocumentID: "d-1", DocumentName: "annual_report.pdf", Page: 12},
			CreatedAt:  created,
			UpdatedAt:  created,
		},
		{
			ID:              "f-2",
			ProjectID:       "p-1",
			Text:            "Churn is negligible",
			Confidence:      0.4,
			Status:          domain.FindingRejected,
			RejectionReason: "contradicted by CRM export",
			Source:          domain.SourceRef{DocumentID: "d-2", DocumentName: "crm.xlsx", Cell: "B7"},
			CreatedAt:       created,
			UpdatedAt:       created,
		},
	}
}

func TestRenderFindingsCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := NewRenderer().RenderFindingsCSV(&buf, sampleFindings()); err != nil {
		t.Fatalf("RenderFindingsCSV() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	if records[0][0] != "id" || records[0][3] != "confidence" {
		t.Fatalf("unexpected header: %v", records[0])
	}
	if records[1][0] != "f-1" || records[1][7] != "12" {
		t.Fatalf("unexpected first row: %v", records[1])
	}
	if records[2][8] != "B7" {
		t.Fatalf("expected spreadsheet cell reference, got %v", records[2])
	}
	if records[2][5] != "contradicted by CRM export" {
		t.Fatalf("expected rejection reason column, got %v", records[2])
	}
}

func TestRenderFindingsXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := NewRenderer().RenderFindingsXLSX(&buf, sampleFindings()); err != nil {
		t.Fatalf("RenderFindingsXLSX() error = %v", err)
	}

	file, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer file.Close()

	if got := file.GetSheetList(); len(got) != 1 || got[0] != "Findings" {
		t.Fatalf("expected single Findings sheet, got %v", got)
	}
	header, err := file.GetCellValue("Findings", "A1")
	if err != nil {
		t.Fatalf("read header cell: %v", err)
	}
	if header != "id" {
		t.Fatalf("unexpected header cell: %q", header)
	}
	text, err := file.GetCellValue("Findings", "B2")
	if err != nil {
		t.Fatalf("read text cell: %v", err)
	}
	if text != "Revenue grew 40% YoY" {
		t.Fatalf("unexpected text cell: %q", text)
	}
}

func TestRenderReportHTML(t *testing.T) {
	report := domain.Report{
		ProjectID:   "p-1",
		GeneratedAt: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		Findings:    sampleFindings(),
		Contradictions: []domain.Contradiction{{
			ID:          "c-1",
			FindingAID:  "f-1",
			FindingBID:  "f-2",
			Description: "growth vs churn claims disagree",
			Status:      domain.ContradictionUnresolved,
		}},
		Gaps: []domain.Gap{{
			ID:          "g-1",
			Description: "No customer contracts in the deal room",
			Category:    domain.GapIRLMissing,
			Priority:    domain.GapPriorityHigh,
			Status:      domain.GapActive,
		}},
	}

	var buf bytes.Buffer
	if err := NewRenderer().RenderReportHTML(&buf, report); err != nil {
		t.Fatalf("RenderReportHTML() error = %v", err)
	}

	html := buf.String()
	for _, want := range []string{
		"Findings (2)",
		"Contradictions (1)",
		"Information Gaps (1)",
		"Revenue grew 40% YoY",
		"growth vs churn claims disagree",
		"No customer contracts in the deal room",
		"annual_report.pdf p.12",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected report to contain %q", want)
		}
	}
}

func TestRenderReportHTMLEscapesUserText(t *testing.T) {
	report := domain.Report{
		ProjectID: "p-1",
		Findings: []domain.Finding{{
			ID:     "f-1",
			Text:   `<script>alert("x")</script>`,
			Status: domain.FindingPending,
		}},
	}

	var buf bytes.Buffer
	if err := NewRenderer().RenderReportHTML(&buf, report); err != nil {
		t.Fatalf("RenderReportHTML() error = %v", err)
	}
	if strings.Contains(buf.String(), "<script>alert") {
		t.Fatalf("finding text must be escaped in the report")
	}
}
