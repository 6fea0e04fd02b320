package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mlevkov/feedback-triage/internal/core/domain"
)

type SignalRepository struct {
	db *sql.DB
}

func NewSignalRepository(db *sql.DB) *SignalRepository {
	return &SignalRepository{db: db}
}

const signalColumns = `id, source_cluster_id, signal_type, signal_name, keywords, patterns,
semantic_threshold, business_rule, target_category, target_theme, priority_weight,
precision_score, recall_score, usage_count, is_active, created_at`

func (r *SignalRepository) Insert(ctx context.Context, signal *domain.ClassificationSignal) error {
	keywords, err := marshalNullable(signal.Keywords)
	if err != nil {
		return fmt.Errorf("marshal keywords: %w", err)
	}
	patterns, err := marshalNullable(signal.Patterns)
	if err != nil {
		return fmt.Errorf("marshal patterns: %w", err)
	}
	rule, err := marshalNullable(signal.BusinessRule)
	if err != nil {
		return fmt.Errorf("marshal business rule: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO classification_signals (
	id, source_cluster_id, signal_type, signal_name, keywords, patterns,
	semantic_threshold, business_rule, target_category, target_theme, priority_weight,
	precision_score, recall_score, usage_count, is_active, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
`,
		signal.ID, signal.SourceClusterID, string(signal.Type), signal.Name, keywords, patterns,
		signal.SemanticThreshold, rule, signal.TargetCategory, signal.TargetTheme,
		signal.PriorityWeight, signal.Precision, signal.Recall, signal.UsageCount,
		signal.IsActive, signal.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.WrapError(domain.ErrConflict, "insert signal", err)
		}
		return fmt.Errorf("insert signal: %w", err)
	}
	return nil
}

func (r *SignalRepository) GetByID(ctx context.Context, id string) (*domain.ClassificationSignal, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+signalColumns+`
FROM classification_signals
WHERE id = $1
`, id)

	signal, err := scanSignal(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, notFound("get signal", id)
		}
		return nil, err
	}
	return &signal, nil
}

func (r *SignalRepository) SetActive(ctx context.Context, id string, active bool) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE classification_signals SET is_active = $2 WHERE id = $1
`, id, active)
	if err != nil {
		return fmt.Errorf("set signal active: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set signal active rows affected: %w", err)
	}
	if rows == 0 {
		return notFound("set signal active", id)
	}
	return nil
}

func (r *SignalRepository) List(ctx context.Context, filter domain.SignalFilter) ([]domain.ClassificationSignal, error) {
	query := `
SELECT ` + signalColumns + `
FROM classification_signals
WHERE 1=1`
	args := make([]any, 0, 3)
	if filter.Type != nil {
		args = append(args, string(*filter.Type))
		query += " AND signal_type = $" + strconv.Itoa(len(args))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		query += " AND is_active = $" + strconv.Itoa(len(args))
	}
	if filter.TargetCategory != "" {
		args = append(args, filter.TargetCategory)
		query += " AND target_category = $" + strconv.Itoa(len(args))
	}
	query += " ORDER BY created_at DESC"

	return r.querySignals(ctx, query, args...)
}

func (r *SignalRepository) ListByCluster(ctx context.Context, clusterID string) ([]domain.ClassificationSignal, error) {
	return r.querySignals(ctx, `
SELECT `+signalColumns+`
FROM classification_signals
WHERE source_cluster_id = $1
ORDER BY created_at
`, clusterID)
}

func (r *SignalRepository) querySignals(ctx context.Context, query string, args ...any) ([]domain.ClassificationSignal, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list signals: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ClassificationSignal, 0)
	for rows.Next() {
		signal, err := scanSignal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, signal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signals: %w", err)
	}
	return out, nil
}

type signalScanner interface {
	Scan(dest ...interface{}) error
}

func scanSignal(row signalScanner) (domain.ClassificationSignal, error) {
	var signal domain.ClassificationSignal
	var signalType string
	var keywordsRaw, patternsRaw, ruleRaw []byte

	err := row.Scan(
		&signal.ID, &signal.SourceClusterID, &signalType, &signal.Name, &keywordsRaw, &patternsRaw,
		&signal.SemanticThreshold, &ruleRaw, &signal.TargetCategory, &signal.TargetTheme,
		&signal.PriorityWeight, &signal.Precision, &signal.Recall, &signal.UsageCount,
		&signal.IsActive, &signal.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.ClassificationSignal{}, err
		}
		return domain.ClassificationSignal{}, fmt.Errorf("scan signal: %w", err)
	}
	if len(keywordsRaw) > 0 {
		if err := json.Unmarshal(keywordsRaw, &signal.Keywords); err != nil {
			return domain.ClassificationSignal{}, fmt.Errorf("unmarshal keywords: %w", err)
		}
	}
	if len(patternsRaw) > 0 {
		if err := json.Unmarshal(patternsRaw, &signal.Patterns); err != nil {
			return domain.ClassificationSignal{}, fmt.Errorf("unmarshal patterns: %w", err)
		}
	}
	if len(ruleRaw) > 0 {
		if err := json.Unmarshal(ruleRaw, &signal.BusinessRule); err != nil {
			return domain.ClassificationSignal{}, fmt.Errorf("unmarshal business rule: %w", err)
		}
	}
	signal.Type = domain.SignalType(signalType)
	return signal, nil
}

// marshalNullable keeps empty payload slots as SQL NULL instead of JSON
// zero values.
func marshalNullable(v any) (any, error) {
	switch value := v.(type) {
	case []string:
		if len(value) == 0 {
			return nil, nil
		}
	case map[string]string:
		if len(value) == 0 {
			return nil, nil
		}
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return raw, nil
}
