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

// FeatureUseCase serves the operator's working subset of feature records:
// repository reads plus the pure filter/sort engine applied on top.
type FeatureUseCase struct {
	workspaceID string
	repo        ports.FeatureRepository
}

func NewFeatureUseCase(workspaceID string, repo ports.FeatureRepository) *FeatureUseCase {
	return &FeatureUseCase{
		workspaceID: workspaceID,
		repo:        repo,
	}
}

func (uc *FeatureUseCase) List(ctx context.Context, themeID string, criteria domain.FeatureCriteria) ([]domain.Feature, error) {
	features, err := uc.repo.ListByWorkspace(ctx, uc.workspaceID, themeID)
	if err != nil {
		return nil, fmt.Errorf("list features: %w", err)
	}
	return domain.FilterAndSortFeatures(features, criteria), nil
}

func (uc *FeatureUseCase) Create(ctx context.Context, draft domain.Feature) (*domain.Feature, error) {
	if err := validateFeature(&draft); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	draft.ID = uuid.NewString()
	draft.WorkspaceID = uc.workspaceID
	draft.CreatedAt = now
	draft.UpdatedAt = now
	if draft.DataPoints == nil {
		draft.DataPoints = []domain.DataPoint{}
	}

	if err := uc.repo.Create(ctx, &draft); err != nil {
		return nil, fmt.Errorf("create feature: %w", err)
	}
	return &draft, nil
}

func (uc *FeatureUseCase) Update(ctx context.Context, feature domain.Feature) (*domain.Feature, error) {
	if feature.ID == "" {
		return nil, domain.WrapError(domain.ErrValidationFailed, "update feature", errors.New("id is required"))
	}
	if err := validateFeature(&feature); err != nil {
		return nil, err
	}

	feature.WorkspaceID = uc.workspaceID
	feature.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, &feature); err != nil {
		return nil, fmt.Errorf("update feature: %w", err)
	}
	return &feature, nil
}

func (uc *FeatureUseCase) Delete(ctx context.Context, id string) error {
	if id == "" {
		return domain.WrapError(domain.ErrValidationFailed, "delete feature", errors.New("id is required"))
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete feature: %w", err)
	}
	return nil
}

func validateFeature(f *domain.Feature) error {
	if f.Name == "" {
		return domain.WrapError(domain.ErrValidationFailed, "validate feature", errors.New("name is required"))
	}
	if f.Description == "" {
		return domain.WrapError(domain.ErrValidationFailed, "validate feature", errors.New("description is required"))
	}
	if f.Urgency == "" {
		f.Urgency = domain.UrgencyMedium
	}
	if f.Status == "" {
		f.Status = domain.FeatureStatusNew
	}
	if !domain.ValidUrgency(f.Urgency) {
		return domain.WrapError(domain.ErrValidationFailed, "validate feature",
			fmt.Errorf("unknown urgency %q", f.Urgency))
	}
	if !domain.ValidFeatureStatus(f.Status) {
		return domain.WrapError(domain.ErrValidationFailed, "validate feature",
			fmt.Errorf("unknown status %q", f.Status))
	}
	if f.MentionCount < 0 {
		return domain.WrapError(domain.ErrValidationFailed, "validate feature",
			errors.New("mention_count must be >= 0"))
	}
	return nil
}
