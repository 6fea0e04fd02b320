package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mlevkov/feedback-triage/internal/core/domain"
)

type ThemeRepository struct {
	db *sql.DB
}

func NewThemeRepository(db *sql.DB) *ThemeRepository {
	return &ThemeRepository{db: db}
}

func (r *ThemeRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]domain.Theme, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT t.id, t.workspace_id, t.name, t.description, t.parent_theme_id,
	(SELECT COUNT(*) FROM features f WHERE f.theme_id = t.id) AS feature_count,
	t.created_at, t.updated_at
FROM themes t
WHERE t.workspace_id = $1
ORDER BY t.name
`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list themes: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Theme, 0)
	for rows.Next() {
		var theme domain.Theme
		if err := rows.Scan(
			&theme.ID, &theme.WorkspaceID, &theme.Name, &theme.Description, &theme.ParentThemeID,
			&theme.FeatureCount, &theme.CreatedAt, &theme.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan theme: %w", err)
		}
		out = append(out, theme)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate themes: %w", err)
	}
	return out, nil
}

func (r *ThemeRepository) Create(ctx context.Context, theme *domain.Theme) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO themes (id, workspace_id, name, description, parent_theme_id, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, theme.ID, theme.WorkspaceID, theme.Name, theme.Description, theme.ParentThemeID, theme.CreatedAt, theme.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.WrapError(domain.ErrConflict, "insert theme", err)
		}
		return fmt.Errorf("insert theme: %w", err)
	}
	return nil
}

func (r *ThemeRepository) Update(ctx context.Context, theme *domain.Theme) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE themes
SET name = $2, description = $3, parent_theme_id = $4, updated_at = $5
WHERE id = $1
`, theme.ID, theme.Name, theme.Description, theme.ParentThemeID, theme.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update theme: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update theme rows affected: %w", err)
	}
	if rows == 0 {
		return notFound("update theme", theme.ID)
	}
	return nil
}

// Delete removes a theme, reparents its children and unlinks its features in
// one transaction.
func (r *ThemeRepository) Delete(ctx context.Context, id string, newParentID *string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `
UPDATE themes SET parent_theme_id = $2 WHERE parent_theme_id = $1
`, id, newParentID); err != nil {
		return fmt.Errorf("reparent children: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
UPDATE features SET theme_id = NULL WHERE theme_id = $1
`, id); err != nil {
		return fmt.Errorf("unlink features: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM themes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete theme: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete theme rows affected: %w", err)
	}
	if rows == 0 {
		return notFound("delete theme", id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete tx: %w", err)
	}
	return nil
}
