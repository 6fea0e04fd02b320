package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mlevkov/feedback-triage/internal/core/domain"
)

type RunRepository struct {
	db *sql.DB
}

func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) Create(ctx context.Context, run *domain.ClusteringRun) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO clustering_runs (
	id, workspace_id, run_name, description, status, messages_analyzed, clusters_discovered,
	confidence_threshold, max_messages, error_message, started_at, completed_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
`,
		run.ID, run.WorkspaceID, run.RunName, run.Description, string(run.Status),
		run.MessagesAnalyzed, run.ClustersDiscovered, run.ConfidenceThreshold, run.MaxMessages,
		nullableString(run.Error), run.StartedAt, run.CompletedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.WrapError(domain.ErrConflict, "insert run", err)
		}
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (r *RunRepository) GetByID(ctx context.Context, id string) (*domain.ClusteringRun, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, workspace_id, run_name, description, status, messages_analyzed, clusters_discovered,
	confidence_threshold, max_messages, error_message, started_at, completed_at
FROM clustering_runs
WHERE id = $1
`, id)

	var run domain.ClusteringRun
	var status string
	var description, errorMessage sql.NullString
	err := row.Scan(
		&run.ID, &run.WorkspaceID, &run.RunName, &description, &status,
		&run.MessagesAnalyzed, &run.ClustersDiscovered, &run.ConfidenceThreshold,
		&run.MaxMessages, &errorMessage, &run.StartedAt, &run.CompletedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, notFound("get run", id)
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	run.Status = domain.RunStatus(status)
	run.Description = description.String
	run.Error = errorMessage.String
	return &run, nil
}

func (r *RunRepository) MarkCompleted(ctx context.Context, id string, messagesAnalyzed, clustersDiscovered int) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE clustering_runs
SET status = $2, messages_analyzed = $3, clusters_discovered = $4, completed_at = $5
WHERE id = $1
`, id, string(domain.RunStatusCompleted), messagesAnalyzed, clustersDiscovered, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark run completed: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark run completed rows affected: %w", err)
	}
	if rows == 0 {
		return notFound("mark run completed", id)
	}
	return nil
}

func (r *RunRepository) MarkFailed(ctx context.Context, id string, message string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE clustering_runs
SET status = $2, error_message = $3, completed_at = $4
WHERE id = $1
`, id, string(domain.RunStatusFailed), message, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark run failed: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark run failed rows affected: %w", err)
	}
	if rows == 0 {
		return notFound("mark run failed", id)
	}
	return nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
