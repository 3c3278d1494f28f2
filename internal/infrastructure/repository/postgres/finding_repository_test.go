package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/dealdesk/diligence/internal/core/domain"
)

func findingRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "project_id", "text", "domain", "confidence",
		"status", "rejection_reason", "source", "created_at", "updated_at",
	})
}

func TestFindingRepositoryListAppliesStatusFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewFindingRepository(db)
	rows := findingRows().
		AddRow("f-1", "p-1", "Revenue grew", "financial", 0.9,
			string(domain.FindingValidated), "", []byte(`{"document_id":"d-1","page":4}`), time.Now(), time.Now())

	mock.ExpectQuery("FROM findings").
		WithArgs("p-1", "validated", 100, 0).
		WillReturnRows(rows)

	findings, err := repo.List(context.Background(), "p-1", domain.FindingFilter{
		Status: "validated",
		Limit:  100,
	})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	if findings[0].Source.Page != 4 {
		t.Fatalf("expected source unmarshalled from jsonb, got %+v", findings[0].Source)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestFindingRepositoryGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewFindingRepository(db)
	mock.ExpectQuery("FROM findings").
		WithArgs("p-1", "missing").
		WillReturnRows(findingRows())

	_, err = repo.GetByID(context.Background(), "p-1", "missing")
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestFindingRepositorySetStatusNotFoundWhenNoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewFindingRepository(db)
	mock.ExpectExec("UPDATE findings").
		WithArgs("p-1", "missing", string(domain.FindingRejected), "stale", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.SetStatus(context.Background(), "p-1", "missing", domain.FindingRejected, "stale")
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestFindingRepositoryApplyPatchBuildsSetClause(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewFindingRepository(db)
	mock.ExpectExec("UPDATE findings").
		WithArgs("p-1", "f-1", sqlmock.AnyArg(), "corrected text").
		WillReturnResult(sqlmock.NewResult(0, 1))

	text := "corrected text"
	if err := repo.ApplyPatch(context.Background(), "p-1", "f-1", domain.FindingPatch{Text: &text}); err != nil {
		t.Fatalf("ApplyPatch() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
