package usecase

import (
	"context"
	"fmt"

	"github.com/mlevkov/feedback-triage/internal/core/domain"
	"github.com/mlevkov/feedback-triage/internal/core/ports"
)

// SignalUseCase is the read/toggle surface over the classification signal
// registry. Signals are only ever created as a byproduct of cluster review;
// usage counters and precision/recall belong to the downstream evaluator.
type SignalUseCase struct {
	repo ports.SignalRepository
}

func NewSignalUseCase(repo ports.SignalRepository) *SignalUseCase {
	return &SignalUseCase{repo: repo}
}

func (uc *SignalUseCase) List(ctx context.Context, filter domain.SignalFilter) ([]domain.ClassificationSignal, error) {
	signals, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list signals: %w", err)
	}
	return signals, nil
}

// Toggle flips is_active and nothing else.
func (uc *SignalUseCase) Toggle(ctx context.Context, signalID string) (*domain.ClassificationSignal, error) {
	signal, err := uc.repo.GetByID(ctx, signalID)
	if err != nil {
		return nil, fmt.Errorf("load signal: %w", err)
	}
	if err := uc.repo.SetActive(ctx, signalID, !signal.IsActive); err != nil {
		return nil, fmt.Errorf("toggle signal: %w", err)
	}
	signal.IsActive = !signal.IsActive
	return signal, nil
}
