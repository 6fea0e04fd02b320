package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mlevkov/feedback-triage/internal/core/domain"
	"github.com/mlevkov/feedback-triage/internal/core/ports"
)

// RunUseCase starts clustering runs and, on the worker side, executes them
// against the insight service.
type RunUseCase struct {
	workspaceID string
	runs        ports.RunRepository
	clusters    ports.ClusterRepository
	queue       ports.RunQueue
	clusterer   ports.MessageClusterer
}

func NewRunUseCase(
	workspaceID string,
	runs ports.RunRepository,
	clusters ports.ClusterRepository,
	queue ports.RunQueue,
	clusterer ports.MessageClusterer,
) *RunUseCase {
	return &RunUseCase{
		workspaceID: workspaceID,
		runs:        runs,
		clusters:    clusters,
		queue:       queue,
		clusterer:   clusterer,
	}
}

func (uc *RunUseCase) Start(ctx context.Context, params domain.RunParams) (*domain.ClusteringRun, error) {
	if params.RunName == "" {
		return nil, domain.WrapError(domain.ErrValidationFailed, "start run", errors.New("run_name is required"))
	}
	if params.ConfidenceThreshold < 0 || params.ConfidenceThreshold > 1 {
		return nil, domain.WrapError(domain.ErrValidationFailed, "start run",
			fmt.Errorf("confidence_threshold %f outside [0,1]", params.ConfidenceThreshold))
	}
	if params.MaxMessages < 0 {
		return nil, domain.WrapError(domain.ErrValidationFailed, "start run",
			errors.New("max_messages must be >= 0"))
	}

	run := &domain.ClusteringRun{
		ID:                  uuid.NewString(),
		WorkspaceID:         uc.workspaceID,
		RunName:             params.RunName,
		Description:         params.Description,
		Status:              domain.RunStatusRunning,
		ConfidenceThreshold: params.ConfidenceThreshold,
		MaxMessages:         params.MaxMessages,
		StartedAt:           time.Now().UTC(),
	}
	if err := uc.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}

	if err := uc.queue.PublishRunStarted(ctx, run.ID); err != nil {
		if failErr := uc.runs.MarkFailed(ctx, run.ID, "publish run event: "+err.Error()); failErr != nil {
			return nil, fmt.Errorf("publish run event: %w; mark failed: %v", err, failErr)
		}
		return nil, fmt.Errorf("publish run event: %w", err)
	}
	return run, nil
}

// Process executes one run end to end: discover candidates, drop those below
// the run threshold, persist the survivors as pending clusters and close the
// run. Any failure marks the run failed with the error message.
func (uc *RunUseCase) Process(ctx context.Context, runID string) error {
	run, err := uc.runs.GetByID(ctx, runID)
	if err != nil {
		return fmt.Errorf("load run: %w", err)
	}
	if run.Status != domain.RunStatusRunning {
		return domain.WrapError(domain.ErrInvalidTransition, "process run",
			fmt.Errorf("run %s already %s", runID, run.Status))
	}

	analyzed, discovered, err := uc.discoverAndStore(ctx, run)
	if err != nil {
		if failErr := uc.runs.MarkFailed(ctx, runID, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark failed: %v", err, failErr)
		}
		return err
	}

	if err := uc.runs.MarkCompleted(ctx, runID, analyzed, discovered); err != nil {
		return fmt.Errorf("mark run completed: %w", err)
	}
	return nil
}

func (uc *RunUseCase) discoverAndStore(ctx context.Context, run *domain.ClusteringRun) (int, int, error) {
	candidates, analyzed, err := uc.clusterer.DiscoverClusters(ctx, *run)
	if err != nil {
		return 0, 0, fmt.Errorf("discover clusters: %w", err)
	}

	now := time.Now().UTC()
	accepted := make([]domain.DiscoveredCluster, 0, len(candidates))
	for _, candidate := range candidates {
		// The insight service should respect the threshold already; this
		// guard keeps the run-level invariant regardless.
		if candidate.ConfidenceScore < run.ConfidenceThreshold {
			continue
		}
		if candidate.ID == "" {
			candidate.ID = uuid.NewString()
		}
		candidate.RunID = run.ID
		candidate.ApprovalStatus = domain.ApprovalPending
		if candidate.CreatedAt.IsZero() {
			candidate.CreatedAt = now
		}
		accepted = append(accepted, candidate)
	}

	if len(accepted) > 0 {
		if err := uc.clusters.InsertBatch(ctx, accepted); err != nil {
			return 0, 0, fmt.Errorf("store discovered clusters: %w", err)
		}
	}
	return analyzed, len(accepted), nil
}
