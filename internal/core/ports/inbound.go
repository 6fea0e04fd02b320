package ports

import (
	"context"

	"github.com/mlevkov/feedback-triage/internal/core/domain"
)

// ThemeDirectory is the inbound contract for taxonomy reads and mutations.
type ThemeDirectory interface {
	List(ctx context.Context) ([]domain.Theme, error)
	Hierarchy(ctx context.Context) ([]*domain.ThemeWithChildren, error)
	FlatHierarchy(ctx context.Context) ([]domain.Theme, error)
	Create(ctx context.Context, name, description string, parentThemeID *string) (*domain.Theme, error)
	CreateBatch(ctx context.Context, drafts []domain.Theme) (int, error)
	Update(ctx context.Context, id, name, description string, parentThemeID *string) (*domain.Theme, error)
	Delete(ctx context.Context, id string) error
}

// FeatureDirectory is the inbound contract for feature reads and mutations.
type FeatureDirectory interface {
	List(ctx context.Context, themeID string, criteria domain.FeatureCriteria) ([]domain.Feature, error)
	Create(ctx context.Context, draft domain.Feature) (*domain.Feature, error)
	Update(ctx context.Context, feature domain.Feature) (*domain.Feature, error)
	Delete(ctx context.Context, id string) error
}

// ClusterReviewer is the inbound contract for the human review of discovered
// clusters.
type ClusterReviewer interface {
	Pending(ctx context.Context) ([]domain.DiscoveredCluster, error)
	Approve(ctx context.Context, clusterID, reviewer, feedback string) (*domain.DiscoveredCluster, error)
	Reject(ctx context.Context, clusterID, reviewer, feedback string) (*domain.DiscoveredCluster, error)
	Modify(ctx context.Context, clusterID, reviewer, feedback string, overrides domain.ClusterOverrides) (*domain.DiscoveredCluster, error)
}

// SignalDirectory is the inbound contract over the classification signal
// registry.
type SignalDirectory interface {
	List(ctx context.Context, filter domain.SignalFilter) ([]domain.ClassificationSignal, error)
	Toggle(ctx context.Context, signalID string) (*domain.ClassificationSignal, error)
}

// RunLauncher starts clustering runs on behalf of the operator.
type RunLauncher interface {
	Start(ctx context.Context, params domain.RunParams) (*domain.ClusteringRun, error)
}

// RunProcessor executes a previously started clustering run. It is the
// worker-side counterpart of RunLauncher.
type RunProcessor interface {
	Process(ctx context.Context, runID string) error
}
