package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mlevkov/feedback-triage/internal/core/domain"
)

type ClusterRepository struct {
	db *sql.DB
}

func NewClusterRepository(db *sql.DB) *ClusterRepository {
	return &ClusterRepository{db: db}
}

const clusterColumns = `id, run_id, cluster_name, description, category, theme, confidence_score,
message_count, business_impact, example_messages, approval_status, reviewed_by, reviewed_at,
review_feedback, created_at`

func (r *ClusterRepository) GetByID(ctx context.Context, id string) (*domain.DiscoveredCluster, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+clusterColumns+`
FROM discovered_clusters
WHERE id = $1
`, id)

	cluster, err := scanCluster(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, notFound("get cluster", id)
		}
		return nil, err
	}
	return &cluster, nil
}

func (r *ClusterRepository) ListPending(ctx context.Context, workspaceID string) ([]domain.DiscoveredCluster, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+clusterPrefixedColumns()+`
FROM discovered_clusters c
JOIN clustering_runs r ON r.id = c.run_id
WHERE r.workspace_id = $1 AND c.approval_status = $2
ORDER BY c.confidence_score DESC, c.created_at
`, workspaceID, string(domain.ApprovalPending))
	if err != nil {
		return nil, fmt.Errorf("list pending clusters: %w", err)
	}
	defer rows.Close()

	out := make([]domain.DiscoveredCluster, 0)
	for rows.Next() {
		cluster, err := scanCluster(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cluster)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clusters: %w", err)
	}
	return out, nil
}

func (r *ClusterRepository) InsertBatch(ctx context.Context, clusters []domain.DiscoveredCluster) error {
	if len(clusters) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i := range clusters {
		cluster := &clusters[i]
		examples, err := json.Marshal(cluster.ExampleMessages)
		if err != nil {
			return fmt.Errorf("marshal example messages: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
INSERT INTO discovered_clusters (
	id, run_id, cluster_name, description, category, theme, confidence_score,
	message_count, business_impact, example_messages, approval_status, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
`,
			cluster.ID, cluster.RunID, cluster.Name, cluster.Description, cluster.Category,
			cluster.Theme, cluster.ConfidenceScore, cluster.MessageCount, cluster.BusinessImpact,
			examples, string(cluster.ApprovalStatus), cluster.CreatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.WrapError(domain.ErrConflict, "insert cluster", err)
			}
			return fmt.Errorf("insert cluster: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert tx: %w", err)
	}
	return nil
}

// SaveDecision writes the terminal decision only when the cluster is still
// pending. A concurrent reviewer winning the race surfaces as ErrConflict.
func (r *ClusterRepository) SaveDecision(ctx context.Context, cluster *domain.DiscoveredCluster) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE discovered_clusters
SET cluster_name = $2, description = $3, category = $4, theme = $5,
	approval_status = $6, reviewed_by = $7, reviewed_at = $8, review_feedback = $9
WHERE id = $1 AND approval_status = 'pending'
`,
		cluster.ID, cluster.Name, cluster.Description, cluster.Category, cluster.Theme,
		string(cluster.ApprovalStatus), cluster.ReviewedBy, cluster.ReviewedAt, cluster.ReviewFeedback,
	)
	if err != nil {
		return fmt.Errorf("save decision: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("save decision rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrConflict, "save decision",
			fmt.Errorf("cluster %s is no longer pending", cluster.ID))
	}
	return nil
}

type clusterScanner interface {
	Scan(dest ...interface{}) error
}

func scanCluster(row clusterScanner) (domain.DiscoveredCluster, error) {
	var cluster domain.DiscoveredCluster
	var status string
	var businessImpact, reviewedBy, reviewFeedback sql.NullString
	var examplesRaw []byte

	err := row.Scan(
		&cluster.ID, &cluster.RunID, &cluster.Name, &cluster.Description, &cluster.Category,
		&cluster.Theme, &cluster.ConfidenceScore, &cluster.MessageCount, &businessImpact,
		&examplesRaw, &status, &reviewedBy, &cluster.ReviewedAt, &reviewFeedback, &cluster.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.DiscoveredCluster{}, err
		}
		return domain.DiscoveredCluster{}, fmt.Errorf("scan cluster: %w", err)
	}
	if err := json.Unmarshal(examplesRaw, &cluster.ExampleMessages); err != nil {
		return domain.DiscoveredCluster{}, fmt.Errorf("unmarshal example messages: %w", err)
	}
	cluster.ApprovalStatus = domain.ApprovalStatus(status)
	cluster.BusinessImpact = businessImpact.String
	cluster.ReviewedBy = reviewedBy.String
	cluster.ReviewFeedback = reviewFeedback.String
	return cluster, nil
}

func clusterPrefixedColumns() string {
	return `c.id, c.run_id, c.cluster_name, c.description, c.category, c.theme, c.confidence_score,
c.message_count, c.business_impact, c.example_messages, c.approval_status, c.reviewed_by, c.reviewed_at,
c.review_feedback, c.created_at`
}
