package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mlevkov/feedback-triage/internal/core/domain"
	"github.com/mlevkov/feedback-triage/internal/core/ports"
)

// ReviewUseCase governs the lifecycle of a discovered cluster from pending to
// a terminal decision. Approve and modify derive classification signals
// through the insight service; reject never does. Terminal decisions are
// final: a re-review goes through a new clustering run.
type ReviewUseCase struct {
	workspaceID string
	clusters    ports.ClusterRepository
	signals     ports.SignalRepository
	deriver     ports.SignalDeriver
}

func NewReviewUseCase(
	workspaceID string,
	clusters ports.ClusterRepository,
	signals ports.SignalRepository,
	deriver ports.SignalDeriver,
) *ReviewUseCase {
	return &ReviewUseCase{
		workspaceID: workspaceID,
		clusters:    clusters,
		signals:     signals,
		deriver:     deriver,
	}
}

func (uc *ReviewUseCase) Pending(ctx context.Context) ([]domain.DiscoveredCluster, error) {
	clusters, err := uc.clusters.ListPending(ctx, uc.workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list pending clusters: %w", err)
	}
	return clusters, nil
}

func (uc *ReviewUseCase) Approve(ctx context.Context, clusterID, reviewer, feedback string) (*domain.DiscoveredCluster, error) {
	return uc.decide(ctx, clusterID, reviewer, feedback, domain.ApprovalApproved, nil)
}

func (uc *ReviewUseCase) Reject(ctx context.Context, clusterID, reviewer, feedback string) (*domain.DiscoveredCluster, error) {
	return uc.decide(ctx, clusterID, reviewer, feedback, domain.ApprovalRejected, nil)
}

// Modify validates the full override set before touching any state: a partial
// correction is rejected outright so the cluster stays pending and the
// operator's input remains retryable.
func (uc *ReviewUseCase) Modify(
	ctx context.Context,
	clusterID, reviewer, feedback string,
	overrides domain.ClusterOverrides,
) (*domain.DiscoveredCluster, error) {
	if err := overrides.Validate(); err != nil {
		return nil, err
	}
	return uc.decide(ctx, clusterID, reviewer, feedback, domain.ApprovalModified, &overrides)
}

func (uc *ReviewUseCase) decide(
	ctx context.Context,
	clusterID, reviewer, feedback string,
	decision domain.ApprovalStatus,
	overrides *domain.ClusterOverrides,
) (*domain.DiscoveredCluster, error) {
	cluster, err := uc.loadPending(ctx, clusterID)
	if err != nil {
		return nil, err
	}

	decided := *cluster
	if overrides != nil {
		// The human correction is authoritative: derivation below sees
		// the overridden fields, not the AI proposal.
		decided.Name = overrides.Name
		decided.Description = overrides.Description
		decided.Category = overrides.Category
		decided.Theme = overrides.Theme
	}
	now := time.Now().UTC()
	decided.ApprovalStatus = decision
	decided.ReviewedBy = reviewer
	decided.ReviewedAt = &now
	decided.ReviewFeedback = feedback

	// Derive before persisting: a derivation failure leaves the cluster
	// pending and the decision retryable.
	var derived []domain.ClassificationSignal
	if decision == domain.ApprovalApproved || decision == domain.ApprovalModified {
		derived, err = uc.deriver.DeriveSignals(ctx, decided)
		if err != nil {
			return nil, fmt.Errorf("derive signals for cluster %s: %w", clusterID, err)
		}
	}

	if err := uc.clusters.SaveDecision(ctx, &decided); err != nil {
		return nil, fmt.Errorf("save %s decision: %w", decision, err)
	}

	if recorded, err := uc.recordSignals(ctx, &decided, derived); err != nil {
		// The decision stands and already recorded signals stay recorded;
		// only the remainder failed.
		return &decided, fmt.Errorf("recorded %d/%d signals: %w", recorded, len(derived), err)
	}
	return &decided, nil
}

func (uc *ReviewUseCase) loadPending(ctx context.Context, clusterID string) (*domain.DiscoveredCluster, error) {
	cluster, err := uc.clusters.GetByID(ctx, clusterID)
	if err != nil {
		return nil, fmt.Errorf("load cluster: %w", err)
	}
	if cluster.ApprovalStatus.Terminal() {
		return nil, domain.WrapError(domain.ErrInvalidTransition, "review cluster",
			fmt.Errorf("cluster %s already %s", clusterID, cluster.ApprovalStatus))
	}
	if cluster.ApprovalStatus != domain.ApprovalPending {
		return nil, domain.WrapError(domain.ErrInvalidTransition, "review cluster",
			fmt.Errorf("cluster %s in unexpected state %s", clusterID, cluster.ApprovalStatus))
	}
	return cluster, nil
}

func (uc *ReviewUseCase) recordSignals(
	ctx context.Context,
	cluster *domain.DiscoveredCluster,
	derived []domain.ClassificationSignal,
) (int, error) {
	recorded := 0
	for i := range derived {
		signal := derived[i]
		if signal.ID == "" {
			signal.ID = uuid.NewString()
		}
		signal.SourceClusterID = cluster.ID
		if signal.TargetCategory == "" {
			signal.TargetCategory = cluster.Category
		}
		if signal.TargetTheme == "" {
			signal.TargetTheme = cluster.Theme
		}
		signal.IsActive = true
		signal.UsageCount = 0
		if signal.CreatedAt.IsZero() {
			signal.CreatedAt = time.Now().UTC()
		}

		if err := signal.Validate(); err != nil {
			return recorded, fmt.Errorf("signal %d invalid: %w", i, err)
		}
		if err := uc.signals.Insert(ctx, &signal); err != nil {
			return recorded, fmt.Errorf("record signal %s: %w", signal.ID, err)
		}
		recorded++
	}
	return recorded, nil
}
