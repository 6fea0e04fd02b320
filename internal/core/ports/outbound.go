package ports

import (
	"context"

	"github.com/mlevkov/feedback-triage/internal/core/domain"
)

// ThemeRepository persists the flat theme set. The taxonomy session treats it
// as the system of record at session boundaries only.
type ThemeRepository interface {
	ListByWorkspace(ctx context.Context, workspaceID string) ([]domain.Theme, error)
	Create(ctx context.Context, theme *domain.Theme) error
	Update(ctx context.Context, theme *domain.Theme) error
	// Delete removes the theme, reparents its children to newParentID
	// (nil = root) and clears feature links, all in one transaction.
	Delete(ctx context.Context, id string, newParentID *string) error
}

// FeatureRepository persists feature records.
type FeatureRepository interface {
	ListByWorkspace(ctx context.Context, workspaceID string, themeID string) ([]domain.Feature, error)
	Create(ctx context.Context, feature *domain.Feature) error
	Update(ctx context.Context, feature *domain.Feature) error
	Delete(ctx context.Context, id string) error
}

// ClusterRepository persists discovered clusters and their review decisions.
type ClusterRepository interface {
	GetByID(ctx context.Context, id string) (*domain.DiscoveredCluster, error)
	ListPending(ctx context.Context, workspaceID string) ([]domain.DiscoveredCluster, error)
	InsertBatch(ctx context.Context, clusters []domain.DiscoveredCluster) error
	// SaveDecision persists a terminal decision with a conditional update
	// guarded on the current status being pending; a stale precondition
	// must surface as domain.ErrConflict.
	SaveDecision(ctx context.Context, cluster *domain.DiscoveredCluster) error
}

// SignalRepository persists classification signals. Insert must reject
// duplicate ids with domain.ErrConflict.
type SignalRepository interface {
	Insert(ctx context.Context, signal *domain.ClassificationSignal) error
	GetByID(ctx context.Context, id string) (*domain.ClassificationSignal, error)
	SetActive(ctx context.Context, id string, active bool) error
	List(ctx context.Context, filter domain.SignalFilter) ([]domain.ClassificationSignal, error)
	ListByCluster(ctx context.Context, clusterID string) ([]domain.ClassificationSignal, error)
}

// RunRepository persists clustering runs.
type RunRepository interface {
	Create(ctx context.Context, run *domain.ClusteringRun) error
	GetByID(ctx context.Context, id string) (*domain.ClusteringRun, error)
	MarkCompleted(ctx context.Context, id string, messagesAnalyzed, clustersDiscovered int) error
	MarkFailed(ctx context.Context, id string, message string) error
}

// RunQueue publishes and consumes run-started events.
type RunQueue interface {
	PublishRunStarted(ctx context.Context, runID string) error
	SubscribeRunStarted(ctx context.Context, handler func(context.Context, string) error) error
}

// SignalDeriver asks the external insight service to derive classification
// signals from a decided cluster. The cluster passed in already carries any
// operator overrides.
type SignalDeriver interface {
	DeriveSignals(ctx context.Context, cluster domain.DiscoveredCluster) ([]domain.ClassificationSignal, error)
}

// MessageClusterer asks the external insight service to analyze the message
// corpus for a run and propose candidate clusters.
type MessageClusterer interface {
	DiscoverClusters(ctx context.Context, run domain.ClusteringRun) ([]domain.DiscoveredCluster, int, error)
}

// ReportExporter renders a triage summary workbook.
type ReportExporter interface {
	ExportFeatures(ctx context.Context, features []domain.Feature, themes []domain.Theme) ([]byte, error)
}
