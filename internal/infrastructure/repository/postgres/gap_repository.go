package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dealdesk/diligence/internal/core/domain"
)

type GapRepository struct {
	db *sql.DB
}

func NewGapRepository(db *sql.DB) *GapRepository {
	return &GapRepository{db: db}
}

func (r *GapRepository) Create(ctx context.Context, gap *domain.Gap) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO gaps (id, project_id, description, category, priority, status, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`,
		gap.ID, gap.ProjectID, gap.Description, string(gap.Category),
		string(gap.Priority), string(gap.Status), gap.CreatedAt, gap.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert gap: %w", err)
	}
	return nil
}

func (r *GapRepository) GetByID(ctx context.Context, projectID, id string) (*domain.Gap, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, project_id, description, category, priority, status, created_at, updated_at
FROM gaps
WHERE project_id = $1 AND id = $2
`, projectID, id)

	gap, err := scanGap(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get gap", fmt.Errorf("id %s", id))
		}
		return nil, err
	}
	return gap, nil
}

func (r *GapRepository) List(ctx context.Context, projectID string, status string) ([]domain.Gap, error) {
	query := `
SELECT id, project_id, description, category, priority, status, created_at, updated_at
FROM gaps
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
		return nil, fmt.Errorf("list gaps: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Gap, 0)
	for rows.Next() {
		gap, err := scanGap(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *gap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gaps: %w", err)
	}
	return out, nil
}

func (r *GapRepository) ApplyPatch(ctx context.Context, projectID, id string, patch domain.GapPatch) error {
	set := []string{"updated_at = $3"}
	args := []any{projectID, id, time.Now().UTC()}
	if patch.Status != nil {
		args = append(args, *patch.Status)
		set = append(set, "status = $"+strconv.Itoa(len(args)))
	}
	if patch.Priority != nil {
		args = append(args, *patch.Priority)
		set = append(set, "priority = $"+strconv.Itoa(len(args)))
	}

	query := "UPDATE gaps\nSET " + strings.Join(set, ", ") + "\nWHERE project_id = $1 AND id = $2"
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("patch gap: %w", err)
	}
	return requireRow(res, "patch gap", id)
}

func scanGap(row rowScanner) (*domain.Gap, error) {
	var gap domain.Gap
	var category, priority, status string

	err := row.Scan(
		&gap.ID, &gap.ProjectID, &gap.Description, &category,
		&priority, &status, &gap.CreatedAt, &gap.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan gap: %w", err)
	}
	gap.Category = domain.GapCategory(category)
	gap.Priority = domain.GapPriority(priority)
	gap.Status = domain.GapStatus(status)
	return &gap, nil
}
