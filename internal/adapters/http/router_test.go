package httpadapter

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/mlevkov/feedback-triage/internal/core/domain"
)

type themeDirectoryFake struct {
	themes []domain.Theme
	err    error
}

func (f *themeDirectoryFake) List(context.Context) ([]domain.Theme, error) {
	return f.themes, f.err
}

func (f *themeDirectoryFake) Hierarchy(context.Context) ([]*domain.ThemeWithChildren, error) {
	if f.err != nil {
		return nil, f.err
	}
	roots := make([]*domain.ThemeWithChildren, 0, len(f.themes))
	for _, theme := range f.themes {
		roots = append(roots, &domain.ThemeWithChildren{Theme: theme})
	}
	return roots, nil
}

func (f *themeDirectoryFake) FlatHierarchy(context.Context) ([]domain.Theme, error) {
	return f.themes, f.err
}

func (f *themeDirectoryFake) Create(_ context.Context, name, description string, parentThemeID *string) (*domain.Theme, error) {
	if f.err != nil {
		return nil, f.err
	}
	if name == "" {
		return nil, domain.WrapError(domain.ErrValidationFailed, "create theme", errors.New("name is required"))
	}
	theme := domain.Theme{ID: "t-new", Name: name, Description: description, ParentThemeID: parentThemeID}
	f.themes = append(f.themes, theme)
	return &theme, nil
}

func (f *themeDirectoryFake) CreateBatch(_ context.Context, drafts []domain.Theme) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.themes = append(f.themes, drafts...)
	return len(drafts), nil
}

func (f *themeDirectoryFake) Update(_ context.Context, id, name, description string, parentThemeID *string) (*domain.Theme, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Theme{ID: id, Name: name, Description: description, ParentThemeID: parentThemeID}, nil
}

func (f *themeDirectoryFake) Delete(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	for _, theme := range f.themes {
		if theme.ID == id {
			return nil
		}
	}
	return domain.WrapError(domain.ErrNotFound, "delete theme", errors.New(id))
}

type featureDirectoryFake struct {
	features []domain.Feature
	criteria domain.FeatureCriteria
	err      error
}

func (f *featureDirectoryFake) List(_ context.Context, _ string, criteria domain.FeatureCriteria) ([]domain.Feature, error) {
	f.criteria = criteria
	return f.features, f.err
}

func (f *featureDirectoryFake) Create(_ context.Context, draft domain.Feature) (*domain.Feature, error) {
	if f.err != nil {
		return nil, f.err
	}
	draft.ID = "f-new"
	return &draft, nil
}

func (f *featureDirectoryFake) Update(_ context.Context, feature domain.Feature) (*domain.Feature, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &feature, nil
}

func (f *featureDirectoryFake) Delete(context.Context, string) error {
	return f.err
}

type reviewerFake struct {
	pending   []domain.DiscoveredCluster
	decideErr error
	decisions []string
}

func (f *reviewerFake) Pending(context.Context) ([]domain.DiscoveredCluster, error) {
	return f.pending, nil
}

func (f *reviewerFake) decide(clusterID, reviewer string, status domain.ApprovalStatus) (*domain.DiscoveredCluster, error) {
	if f.decideErr != nil {
		return nil, f.decideErr
	}
	f.decisions = append(f.decisions, string(status))
	now := time.Now()
	return &domain.DiscoveredCluster{ID: clusterID, ApprovalStatus: status, ReviewedBy: reviewer, ReviewedAt: &now}, nil
}

func (f *reviewerFake) Approve(_ context.Context, clusterID, reviewer, _ string) (*domain.DiscoveredCluster, error) {
	return f.decide(clusterID, reviewer, domain.ApprovalApproved)
}

func (f *reviewerFake) Reject(_ context.Context, clusterID, reviewer, _ string) (*domain.DiscoveredCluster, error) {
	return f.decide(clusterID, reviewer, domain.ApprovalRejected)
}

func (f *reviewerFake) Modify(_ context.Context, clusterID, reviewer, _ string, overrides domain.ClusterOverrides) (*domain.DiscoveredCluster, error) {
	if err := overrides.Validate(); err != nil {
		return nil, err
	}
	return f.decide(clusterID, reviewer, domain.ApprovalModified)
}

type signalDirectoryFake struct {
	signals []domain.ClassificationSignal
	err     error
}

func (f *signalDirectoryFake) List(_ context.Context, filter domain.SignalFilter) ([]domain.ClassificationSignal, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.ClassificationSignal, 0)
	for _, signal := range f.signals {
		if filter.Matches(signal) {
			out = append(out, signal)
		}
	}
	return out, nil
}

func (f *signalDirectoryFake) Toggle(_ context.Context, signalID string) (*domain.ClassificationSignal, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.signals {
		if f.signals[i].ID == signalID {
			f.signals[i].IsActive = !f.signals[i].IsActive
			signal := f.signals[i]
			return &signal, nil
		}
	}
	return nil, domain.WrapError(domain.ErrNotFound, "toggle signal", errors.New(signalID))
}

type runLauncherFake struct {
	started []domain.RunParams
	err     error
}

func (f *runLauncherFake) Start(_ context.Context, params domain.RunParams) (*domain.ClusteringRun, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.started = append(f.started, params)
	return &domain.ClusteringRun{ID: "run-new", RunName: params.RunName, Status: domain.RunStatusRunning}, nil
}

type exporterFake struct {
	payload []byte
	err     error
}

func (f *exporterFake) ExportFeatures(context.Context, []domain.Feature, []domain.Theme) ([]byte, error) {
	return f.payload, f.err
}

type routerFakes struct {
	themes   *themeDirectoryFake
	features *featureDirectoryFake
	reviewer *reviewerFake
	signals  *signalDirectoryFake
	runs     *runLauncherFake
	exporter *exporterFake
}

func newTestRouter(options RouterOptions) (http.Handler, *routerFakes) {
	fakes := &routerFakes{
		themes:   &themeDirectoryFake{},
		features: &featureDirectoryFake{},
		reviewer: &reviewerFake{},
		signals:  &signalDirectoryFake{},
		runs:     &runLauncherFake{},
		exporter: &exporterFake{payload: []byte("xlsx")},
	}
	router := NewRouter(fakes.themes, fakes.features, fakes.reviewer, fakes.signals, fakes.runs, fakes.exporter, nil, options)
	return router.Handler(), fakes
}
