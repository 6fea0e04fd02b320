package bootstrap

import (
	"context"
	"fmt"

	"github.com/mlevkov/feedback-triage/internal/config"
	"github.com/mlevkov/feedback-triage/internal/core/ports"
	"github.com/mlevkov/feedback-triage/internal/core/usecase"
	"github.com/mlevkov/feedback-triage/internal/infrastructure/insight"
	"github.com/mlevkov/feedback-triage/internal/infrastructure/queue/nats"
	"github.com/mlevkov/feedback-triage/internal/infrastructure/report/excel"
	"github.com/mlevkov/feedback-triage/internal/infrastructure/repository/postgres"
	"github.com/mlevkov/feedback-triage/internal/infrastructure/resilience"
)

type App struct {
	Config config.Config

	Queue    ports.RunQueue
	Themes   ports.ThemeDirectory
	Features ports.FeatureDirectory
	Reviewer ports.ClusterReviewer
	Signals  ports.SignalDirectory
	Runs     *usecase.RunUseCase
	Exporter ports.ReportExporter

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	themeRepo := postgres.NewThemeRepository(db)
	featureRepo := postgres.NewFeatureRepository(db)
	clusterRepo := postgres.NewClusterRepository(db)
	signalRepo := postgres.NewSignalRepository(db)
	runRepo := postgres.NewRunRepository(db)

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init run queue: %w", err)
	}

	insightClient := insight.NewWithExecutor(cfg.InsightURL, executor)
	deriver := insight.NewDeriver(insightClient)
	clusterer := insight.NewClusterer(insightClient)

	taxonomyUC := usecase.NewTaxonomyUseCase(cfg.WorkspaceID, themeRepo)
	featureUC := usecase.NewFeatureUseCase(cfg.WorkspaceID, featureRepo)
	reviewUC := usecase.NewReviewUseCase(cfg.WorkspaceID, clusterRepo, signalRepo, deriver)
	signalUC := usecase.NewSignalUseCase(signalRepo)
	runUC := usecase.NewRunUseCase(cfg.WorkspaceID, runRepo, clusterRepo, queue, clusterer)

	return &App{
		Config:   cfg,
		Queue:    queue,
		Themes:   taxonomyUC,
		Features: featureUC,
		Reviewer: reviewUC,
		Signals:  signalUC,
		Runs:     runUC,
		Exporter: excel.New(),

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
