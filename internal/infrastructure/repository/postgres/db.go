package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mlevkov/feedback-triage/internal/core/domain"
)

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the triage tables when absent.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS themes (
	id TEXT PRIMARY KEY,
	workspace_id TEXT NOT NULL,
	name TEXT NOT NULL,
	description TEXT NOT NULL,
	parent_theme_id TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_themes_workspace ON themes(workspace_id);
CREATE INDEX IF NOT EXISTS idx_themes_parent ON themes(parent_theme_id);

CREATE TABLE IF NOT EXISTS features (
	id TEXT PRIMARY KEY,
	workspace_id TEXT NOT NULL,
	name TEXT NOT NULL,
	description TEXT NOT NULL,
	urgency TEXT NOT NULL,
	status TEXT NOT NULL,
	mention_count INTEGER NOT NULL DEFAULT 0,
	theme_id TEXT,
	first_mentioned TIMESTAMPTZ,
	last_mentioned TIMESTAMPTZ,
	data_points JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_features_workspace ON features(workspace_id);
CREATE INDEX IF NOT EXISTS idx_features_theme ON features(theme_id);

CREATE TABLE IF NOT EXISTS clustering_runs (
	id TEXT PRIMARY KEY,
	workspace_id TEXT NOT NULL,
	run_name TEXT NOT NULL,
	description TEXT,
	status TEXT NOT NULL,
	messages_analyzed INTEGER NOT NULL DEFAULT 0,
	clusters_discovered INTEGER NOT NULL DEFAULT 0,
	confidence_threshold DOUBLE PRECISION NOT NULL,
	max_messages INTEGER NOT NULL DEFAULT 0,
	error_message TEXT,
	started_at TIMESTAMPTZ NOT NULL,
	completed_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_runs_workspace ON clustering_runs(workspace_id);

CREATE TABLE IF NOT EXISTS discovered_clusters (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	cluster_name TEXT NOT NULL,
	description TEXT NOT NULL,
	category TEXT NOT NULL,
	theme TEXT NOT NULL,
	confidence_score DOUBLE PRECISION NOT NULL,
	message_count INTEGER NOT NULL DEFAULT 0,
	business_impact TEXT,
	example_messages JSONB NOT NULL DEFAULT '[]'::jsonb,
	approval_status TEXT NOT NULL,
	reviewed_by TEXT,
	reviewed_at TIMESTAMPTZ,
	review_feedback TEXT,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_clusters_run ON discovered_clusters(run_id);
CREATE INDEX IF NOT EXISTS idx_clusters_status ON discovered_clusters(approval_status);

CREATE TABLE IF NOT EXISTS classification_signals (
	id TEXT PRIMARY KEY,
	source_cluster_id TEXT NOT NULL,
	signal_type TEXT NOT NULL,
	signal_name TEXT NOT NULL,
	keywords JSONB,
	patterns JSONB,
	semantic_threshold DOUBLE PRECISION,
	business_rule JSONB,
	target_category TEXT NOT NULL,
	target_theme TEXT NOT NULL,
	priority_weight DOUBLE PRECISION NOT NULL DEFAULT 0,
	precision_score DOUBLE PRECISION,
	recall_score DOUBLE PRECISION,
	usage_count INTEGER NOT NULL DEFAULT 0,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_signals_cluster ON classification_signals(source_cluster_id);
CREATE INDEX IF NOT EXISTS idx_signals_type ON classification_signals(signal_type);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func notFound(operation, id string) error {
	return domain.WrapError(domain.ErrNotFound, operation, fmt.Errorf("id=%s", id))
}
