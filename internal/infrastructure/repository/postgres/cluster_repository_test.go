package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/mlevkov/feedback-triage/internal/core/domain"
)

func TestClusterRepositorySaveDecisionConflictWhenNotPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewClusterRepository(db)
	now := time.Now().UTC()
	cluster := &domain.DiscoveredCluster{
		ID:             "c-1",
		Name:           "Export timeouts",
		Description:    "Large CSV exports time out",
		Category:       "bug",
		Theme:          "exports",
		ApprovalStatus: domain.ApprovalApproved,
		ReviewedBy:     "pm@example.com",
		ReviewedAt:     &now,
	}

	mock.ExpectExec("UPDATE discovered_clusters").
		WithArgs("c-1", "Export timeouts", "Large CSV exports time out", "bug", "exports",
			"approved", "pm@example.com", sqlmock.AnyArg(), "").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.SaveDecision(context.Background(), cluster)
	if !domain.IsKind(err, domain.ErrConflict) {
		t.Fatalf("expected Conflict when cluster is no longer pending, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestClusterRepositoryGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewClusterRepository(db)
	mock.ExpectQuery("FROM discovered_clusters").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := repo.GetByID(context.Background(), "missing"); !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestClusterRepositoryListPendingScansJSONColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewClusterRepository(db)
	rows := sqlmock.NewRows([]string{
		"id", "run_id", "cluster_name", "description", "category", "theme", "confidence_score",
		"message_count", "business_impact", "example_messages", "approval_status", "reviewed_by",
		"reviewed_at", "review_feedback", "created_at",
	}).AddRow(
		"c-1", "run-1", "Export timeouts", "desc", "bug", "exports", 0.92,
		14, nil, []byte(`["msg one","msg two"]`), "pending", nil, nil, nil, time.Now(),
	)

	mock.ExpectQuery("FROM discovered_clusters").
		WithArgs("ws-1", "pending").
		WillReturnRows(rows)

	clusters, err := repo.ListPending(context.Background(), "ws-1")
	if err != nil {
		t.Fatalf("ListPending() error = %v", err)
	}
	if len(clusters) != 1 {
		t.Fatalf("expected 1 cluster, got %d", len(clusters))
	}
	if len(clusters[0].ExampleMessages) != 2 {
		t.Fatalf("example messages not decoded: %+v", clusters[0].ExampleMessages)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
