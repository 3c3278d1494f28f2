package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dealdesk/diligence/internal/core/domain"
)

type ContradictionRepository struct {
	db *sql.DB
}

func NewContradictionRepository(db *sql.DB) *ContradictionRepository {
	return &ContradictionRepository{db: db}
}

func (r *ContradictionRepository) Create(ctx context.Context, c *domain.Contradiction) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO contradictions (id, project_id, finding_a_id, finding_b_id, description, status, resolution_note, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`,
		c.ID, c.ProjectID, c.FindingAID, c.FindingBID, c.Description,
		string(c.Status), c.ResolutionNote, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert contradiction: %w", err)
	}
	return nil
}

func (r *ContradictionRepository) GetByID(ctx context.Context, projectID, id string) (*domain.Contradiction, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, project_id, finding_a_id, finding_b_id, description, status, resolution_note, created_at, updated_at
FROM contradictions
WHERE project_id = $1 AND id = $2
`, projectID, id)

	c, err := scanContradiction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get contradiction", fmt.Errorf("id %s", id))
		}
		return nil, err
	}
	return c, nil
}

func (r *ContradictionRepository) List(ctx context.Context, projectID string, status string) ([]domain.Contradiction, error) {
	query := `
SELECT id, project_id, finding_a_id, finding_b_id, description, status, resolution_note, created_at, updated_at
FROM contradictions
WHERE project_id = $1
`
	args := []any{projectID}
	if status != "" {
		query += "AND status = $2\n"
		args = append(args, status)
	}
	query += "ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list contradictions: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Contradiction, 0)
	for rows.Next() {
		c, err := scanContradiction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contradictions: %w", err)
	}
	return out, nil
}

func (r *ContradictionRepository) Resolve(ctx context.Context, projectID, id string, status domain.ResolutionStatus, note string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE contradictions
SET status = $3, resolution_note = $4, updated_at = $5
WHERE project_id = $1 AND id = $2
`, projectID, id, string(status), note, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("resolve contradiction: %w", err)
	}
	return requireRow(res, "resolve contradiction", id)
}

func scanContradiction(row rowScanner) (*domain.Contradiction, error) {
	var c domain.Contradiction
	var status string

	err := row.Scan(
		&c.ID, &c.ProjectID, &c.FindingAID, &c.FindingBID, &c.Description,
		&status, &c.ResolutionNote, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan contradiction: %w", err)
	}
	c.Status = domain.ResolutionStatus(status)
	return &c, nil
}
