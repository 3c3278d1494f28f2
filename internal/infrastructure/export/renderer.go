// Package export renders findings and reports into downloadable files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/dealdesk/diligence/internal/core/domain"
	"github.com/dealdesk/diligence/internal/core/ports"
)

var findingColumns = []string{
	"id", "text", "domain", "confidence", "status", "rejection_reason",
	"source_document", "source_page", "source_cell", "created_at", "updated_at",
}

type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

var _ ports.ExportRenderer = (*Renderer)(nil)

func (r *Renderer) RenderFindingsCSV(w io.Writer, findings []domain.Finding) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(findingColumns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, finding := range findings {
		if err := writer.Write(findingRow(finding)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func (r *Renderer) RenderFindingsXLSX(w io.Writer, findings []domain.Finding) error {
	file := excelize.NewFile()
	defer func() {
		_ = file.Close()
	}()

	const sheet = "Findings"
	index, err := file.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	file.SetActiveSheet(index)
	if err := file.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	header := make([]any, len(findingColumns))
	for i, col := range findingColumns {
		header[i] = col
	}
	if err := file.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}

	for i, finding := range findings {
		row := findingRow(finding)
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		// Confidence as a number, not a string, so spreadsheets can sort it.
		cells[3] = finding.Confidence

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("build cell name: %w", err)
		}
		if err := file.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("write xlsx row: %w", err)
		}
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func findingRow(finding domain.Finding) []string {
	page := ""
	if finding.Source.Page > 0 {
		page = strconv.Itoa(finding.Source.Page)
	}
	return []string{
		finding.ID,
		finding.Text,
		finding.Domain,
		strconv.FormatFloat(finding.Confidence, 'f', 2, 64),
		string(finding.Status),
		finding.RejectionReason,
		finding.Source.DocumentName,
		page,
		finding.Source.Cell,
		finding.CreatedAt.UTC().Format(time.RFC3339),
		finding.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
