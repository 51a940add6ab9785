package services

import (
	"context"
	"fmt"

	"github.com/brightpools/charity-draw-backend/internal/models"
	"github.com/brightpools/charity-draw-backend/internal/repositories"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure SettingsServiceImpl implements SettingsService
var _ SettingsService = (*SettingsServiceImpl)(nil)

// SettingsServiceImpl manages the global draw configuration.
type SettingsServiceImpl struct {
	settingsRepo repositories.SettingsRepository
}

// NewSettingsService creates a new SettingsServiceImpl
func NewSettingsService(settingsRepo repositories.SettingsRepository) *SettingsServiceImpl {
	return &SettingsServiceImpl{settingsRepo: settingsRepo}
}

// GetSettings returns the current draw settings.
func (s *SettingsServiceImpl) GetSettings(ctx context.Context) (*models.DrawSettings, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch settings: %w", err)
	}
	return settings, nil
}

// UpdateSettings validates and persists new draw settings. Changes apply to
// the next analysis run; already-finalized draws keep their numbers.
func (s *SettingsServiceImpl) UpdateSettings(ctx context.Context, settings *models.DrawSettings, actorID string) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	settings.UpdatedBy = actorID
	if err := s.settingsRepo.Upsert(ctx, settings); err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	slog.Info("Draw settings updated", "actor", actorID,
		"tiers", fmt.Sprintf("%d/%d/%d", settings.Tier1Percent, settings.Tier2Percent, settings.Tier3Percent),
		"charityPercent", settings.CharityPercent)
	return nil
}
