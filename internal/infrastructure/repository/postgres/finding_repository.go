package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dealdesk/diligence/internal/core/domain"
)

type FindingRepository struct {
	db *sql.DB
}

func NewFindingRepository(db *sql.DB) *FindingRepository {
	return &FindingRepository{db: db}
}

func (r *FindingRepository) Create(ctx context.Context, finding *domain.Finding) error {
	sourceJSON, err := json.Marshal(finding.Source)
	if err != nil {
		return fmt.Errorf("marshal source: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO findings (id, project_id, text, domain, confidence, status, rejection_reason, source, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`,
		finding.ID, finding.ProjectID, finding.Text, finding.Domain, finding.Confidence,
		string(finding.Status), finding.RejectionReason, sourceJSON, finding.CreatedAt, finding.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert finding: %w", err)
	}
	return nil
}

func (r *FindingRepository) GetByID(ctx context.Context, projectID, id string) (*domain.Finding, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, project_id, text, domain, confidence, status, rejection_reason, source, created_at, updated_at
FROM findings
WHERE project_id = $1 AND id = $2
`, projectID, id)

	finding, err := scanFinding(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get finding", fmt.Errorf("id %s", id))
		}
		return nil, err
	}
	return finding, nil
}

func (r *FindingRepository) List(ctx context.Context, projectID string, filter domain.FindingFilter) ([]domain.Finding, error) {
	query := strings.Builder{}
	query.WriteString(`
SELECT id, project_id, text, domain, confidence, status, rejection_reason, source, created_at, updated_at
FROM findings
WHERE project_id = $1
`)
	args := []any{projectID}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query.WriteString("AND status = $" + strconv.Itoa(len(args)) + "\n")
	}
	if filter.Domain != "" {
		args = append(args, filter.Domain)
		query.WriteString("AND domain = $" + strconv.Itoa(len(args)) + "\n")
	}
	args = append(args, filter.Limit)
	query.WriteString("ORDER BY created_at DESC\nLIMIT $" + strconv.Itoa(len(args)))
	args = append(args, filter.Offset)
	query.WriteString(" OFFSET $" + strconv.Itoa(len(args)))

	rows, err := r.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list findings: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Finding, 0)
	for rows.Next() {
		finding, err := scanFinding(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *finding)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate findings: %w", err)
	}
	return out, nil
}

func (r *FindingRepository) SetStatus(ctx context.Context, projectID, id string, status domain.ValidationStatus, reason string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE findings
SET status = $3, rejection_reason = $4, updated_at = $5
WHERE project_id = $1 AND id = $2
`, projectID, id, string(status), reason, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update finding status: %w", err)
	}
	return requireRow(res, "update finding status", id)
}

func (r *FindingRepository) ApplyPatch(ctx context.Context, projectID, id string, patch domain.FindingPatch) error {
	set := []string{"updated_at = $3"}
	args := []any{projectID, id, time.Now().UTC()}
	if patch.Text != nil {
		args = append(args, *patch.Text)
		set = append(set, "text = $"+strconv.Itoa(len(args)))
	}
	if patch.Domain != nil {
		args = append(args, *patch.Domain)
		set = append(set, "domain = $"+strconv.Itoa(len(args)))
	}

	query := "UPDATE findings\nSET " + strings.Join(set, ", ") + "\nWHERE project_id = $1 AND id = $2"
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("patch finding: %w", err)
	}
	return requireRow(res, "patch finding", id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFinding(row rowScanner) (*domain.Finding, error) {
	var finding domain.Finding
	var sourceRaw []byte
	var status string

	err := row.Scan(
		&finding.ID, &finding.ProjectID, &finding.Text, &finding.Domain, &finding.Confidence,
		&status, &finding.RejectionReason, &sourceRaw, &finding.CreatedAt, &finding.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan finding: %w", err)
	}

	if err := json.Unmarshal(sourceRaw, &finding.Source); err != nil {
		return nil, fmt.Errorf("unmarshal source: %w", err)
	}
	finding.Status = domain.ValidationStatus(status)
	return &finding, nil
}

func requireRow(res sql.Result, operation, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", operation, err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrNotFound, operation, fmt.Errorf("id %s", id))
	}
	return nil
}
