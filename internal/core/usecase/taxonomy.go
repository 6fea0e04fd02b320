package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mlevkov/feedback-triage/internal/core/domain"
	"github.com/mlevkov/feedback-triage/internal/core/ports"
)

// TaxonomyUseCase is the per-workspace taxonomy session. It keeps an
// in-memory working copy of the flat theme set and rebuilds the derived
// hierarchy after every mutation; the repository is consulted once on first
// use and on explicit refresh, not after each write.
type TaxonomyUseCase struct {
	workspaceID string
	repo        ports.ThemeRepository

	mu     sync.Mutex
	loaded bool
	byID   map[string]domain.Theme
	tree   []*domain.ThemeWithChildren
}

func NewTaxonomyUseCase(workspaceID string, repo ports.ThemeRepository) *TaxonomyUseCase {
	return &TaxonomyUseCase{
		workspaceID: workspaceID,
		repo:        repo,
		byID:        make(map[string]domain.Theme),
	}
}

func (uc *TaxonomyUseCase) List(ctx context.Context) ([]domain.Theme, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if err := uc.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}
	return uc.flatSnapshotLocked(), nil
}

func (uc *TaxonomyUseCase) Hierarchy(ctx context.Context) ([]*domain.ThemeWithChildren, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if err := uc.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}
	return uc.tree, nil
}

// FlatHierarchy returns the theme set in hierarchy order, ready for an
// indentation-aware selection control.
func (uc *TaxonomyUseCase) FlatHierarchy(ctx context.Context) ([]domain.Theme, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if err := uc.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}
	return domain.FlattenHierarchy(uc.tree), nil
}

func (uc *TaxonomyUseCase) Create(ctx context.Context, name, description string, parentThemeID *string) (*domain.Theme, error) {
	if err := validateThemeFields(name, description); err != nil {
		return nil, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()
	if err := uc.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}
	if parentThemeID != nil {
		if _, ok := uc.byID[*parentThemeID]; !ok {
			return nil, domain.WrapError(domain.ErrNotFound, "create theme",
				fmt.Errorf("parent theme %s", *parentThemeID))
		}
	}

	now := time.Now().UTC()
	theme := &domain.Theme{
		ID:            uuid.NewString(),
		WorkspaceID:   uc.workspaceID,
		Name:          name,
		Description:   description,
		ParentThemeID: parentThemeID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.repo.Create(ctx, theme); err != nil {
		return nil, fmt.Errorf("create theme: %w", err)
	}

	uc.byID[theme.ID] = *theme
	uc.rebuildLocked()
	return theme, nil
}

// CreateBatch creates themes sequentially, typically from AI suggestions.
// Records already created stay created when a later draft fails; the caller
// receives the success count together with the specific failure.
func (uc *TaxonomyUseCase) CreateBatch(ctx context.Context, drafts []domain.Theme) (int, error) {
	created := 0
	for i, draft := range drafts {
		if _, err := uc.Create(ctx, draft.Name, draft.Description, draft.ParentThemeID); err != nil {
			return created, fmt.Errorf("batch draft %d (%q): %w", i, draft.Name, err)
		}
		created++
	}
	return created, nil
}

func (uc *TaxonomyUseCase) Update(ctx context.Context, id, name, description string, parentThemeID *string) (*domain.Theme, error) {
	if err := validateThemeFields(name, description); err != nil {
		return nil, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()
	if err := uc.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}

	current, ok := uc.byID[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "update theme", fmt.Errorf("theme %s", id))
	}
	if parentThemeID != nil {
		if *parentThemeID == id {
			return nil, domain.WrapError(domain.ErrValidationFailed, "update theme",
				errors.New("theme cannot be its own parent"))
		}
		if _, exists := uc.byID[*parentThemeID]; !exists {
			return nil, domain.WrapError(domain.ErrNotFound, "update theme",
				fmt.Errorf("parent theme %s", *parentThemeID))
		}
		if uc.wouldCreateCycleLocked(id, *parentThemeID) {
			return nil, domain.WrapError(domain.ErrValidationFailed, "update theme",
				fmt.Errorf("parent %s is a descendant of %s", *parentThemeID, id))
		}
	}

	updated := current
	updated.Name = name
	updated.Description = description
	updated.ParentThemeID = parentThemeID
	updated.UpdatedAt = time.Now().UTC()

	if err := uc.repo.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("update theme: %w", err)
	}

	uc.byID[id] = updated
	uc.rebuildLocked()
	return &updated, nil
}

// Delete removes a theme. Children are reparented to the deleted theme's own
// parent (or become roots) so no subtree is silently orphaned.
func (uc *TaxonomyUseCase) Delete(ctx context.Context, id string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if err := uc.ensureLoadedLocked(ctx); err != nil {
		return err
	}

	current, ok := uc.byID[id]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "delete theme", fmt.Errorf("theme %s", id))
	}

	if err := uc.repo.Delete(ctx, id, current.ParentThemeID); err != nil {
		return fmt.Errorf("delete theme: %w", err)
	}

	delete(uc.byID, id)
	for childID, child := range uc.byID {
		if child.ParentThemeID != nil && *child.ParentThemeID == id {
			child.ParentThemeID = current.ParentThemeID
			uc.byID[childID] = child
		}
	}
	uc.rebuildLocked()
	return nil
}

// Refresh discards the working copy and reloads from the repository. Used at
// session boundaries.
func (uc *TaxonomyUseCase) Refresh(ctx context.Context) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.loaded = false
	return uc.ensureLoadedLocked(ctx)
}

func (uc *TaxonomyUseCase) ensureLoadedLocked(ctx context.Context) error {
	if uc.loaded {
		return nil
	}
	themes, err := uc.repo.ListByWorkspace(ctx, uc.workspaceID)
	if err != nil {
		return fmt.Errorf("load themes: %w", err)
	}
	uc.byID = make(map[string]domain.Theme, len(themes))
	for _, theme := range themes {
		uc.byID[theme.ID] = theme
	}
	uc.loaded = true
	uc.rebuildLocked()
	return nil
}

func (uc *TaxonomyUseCase) rebuildLocked() {
	uc.tree = domain.BuildHierarchy(uc.flatSnapshotLocked())
}

func (uc *TaxonomyUseCase) flatSnapshotLocked() []domain.Theme {
	out := make([]domain.Theme, 0, len(uc.byID))
	for _, theme := range uc.byID {
		out = append(out, theme)
	}
	return out
}

// wouldCreateCycleLocked walks the parent chain upward from the proposed
// parent; reaching the updated theme means the new edge closes a cycle.
func (uc *TaxonomyUseCase) wouldCreateCycleLocked(themeID, newParentID string) bool {
	seen := map[string]bool{}
	id := newParentID
	for {
		if id == themeID {
			return true
		}
		if seen[id] {
			return false
		}
		seen[id] = true
		theme, ok := uc.byID[id]
		if !ok || theme.ParentThemeID == nil {
			return false
		}
		id = *theme.ParentThemeID
	}
}

func validateThemeFields(name, description string) error {
	if name == "" {
		return domain.WrapError(domain.ErrValidationFailed, "validate theme", errors.New("name is required"))
	}
	if description == "" {
		return domain.WrapError(domain.ErrValidationFailed, "validate theme", errors.New("description is required"))
	}
	return nil
}
