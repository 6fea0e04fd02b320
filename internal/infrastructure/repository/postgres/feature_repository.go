package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mlevkov/feedback-triage/internal/core/domain"
)

type FeatureRepository struct {
	db *sql.DB
}

func NewFeatureRepository(db *sql.DB) *FeatureRepository {
	return &FeatureRepository{db: db}
}

const featureColumns = `id, workspace_id, name, description, urgency, status, mention_count, theme_id,
first_mentioned, last_mentioned, data_points, created_at, updated_at`

func (r *FeatureRepository) ListByWorkspace(ctx context.Context, workspaceID string, themeID string) ([]domain.Feature, error) {
	query := `
SELECT ` + featureColumns + `
FROM features
WHERE workspace_id = $1
`
	args := []any{workspaceID}
	if themeID != "" {
		query += "AND theme_id = $2\n"
		args = append(args, themeID)
	}
	query += "ORDER BY updated_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list features: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Feature, 0)
	for rows.Next() {
		feature, err := scanFeature(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, feature)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate features: %w", err)
	}
	return out, nil
}

func (r *FeatureRepository) Create(ctx context.Context, feature *domain.Feature) error {
	dataPoints, err := json.Marshal(feature.DataPoints)
	if err != nil {
		return fmt.Errorf("marshal data points: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO features (
	id, workspace_id, name, description, urgency, status, mention_count, theme_id,
	first_mentioned, last_mentioned, data_points, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
`,
		feature.ID, feature.WorkspaceID, feature.Name, feature.Description, string(feature.Urgency),
		string(feature.Status), feature.MentionCount, feature.ThemeID,
		feature.FirstMentioned, feature.LastMentioned, dataPoints, feature.CreatedAt, feature.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.WrapError(domain.ErrConflict, "insert feature", err)
		}
		return fmt.Errorf("insert feature: %w", err)
	}
	return nil
}

func (r *FeatureRepository) Update(ctx context.Context, feature *domain.Feature) error {
	dataPoints, err := json.Marshal(feature.DataPoints)
	if err != nil {
		return fmt.Errorf("marshal data points: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
UPDATE features
SET name = $2, description = $3, urgency = $4, status = $5, mention_count = $6, theme_id = $7,
	first_mentioned = $8, last_mentioned = $9, data_points = $10, updated_at = $11
WHERE id = $1
`,
		feature.ID, feature.Name, feature.Description, string(feature.Urgency), string(feature.Status),
		feature.MentionCount, feature.ThemeID, feature.FirstMentioned, feature.LastMentioned,
		dataPoints, feature.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update feature: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update feature rows affected: %w", err)
	}
	if rows == 0 {
		return notFound("update feature", feature.ID)
	}
	return nil
}

func (r *FeatureRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM features WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete feature: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete feature rows affected: %w", err)
	}
	if rows == 0 {
		return notFound("delete feature", id)
	}
	return nil
}

type featureScanner interface {
	Scan(dest ...interface{}) error
}

func scanFeature(row featureScanner) (domain.Feature, error) {
	var feature domain.Feature
	var urgency, status string
	var dataPointsRaw []byte

	err := row.Scan(
		&feature.ID, &feature.WorkspaceID, &feature.Name, &feature.Description, &urgency, &status,
		&feature.MentionCount, &feature.ThemeID, &feature.FirstMentioned, &feature.LastMentioned,
		&dataPointsRaw, &feature.CreatedAt, &feature.UpdatedAt,
	)
	if err != nil {
		return domain.Feature{}, fmt.Errorf("scan feature: %w", err)
	}
	if err := json.Unmarshal(dataPointsRaw, &feature.DataPoints); err != nil {
		return domain.Feature{}, fmt.Errorf("unmarshal data points: %w", err)
	}
	feature.Urgency = domain.Urgency(urgency)
	feature.Status = domain.FeatureStatus(status)
	return feature, nil
}
