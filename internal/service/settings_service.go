package service

import (
	"context"

	"github.com/rs/zerolog"

	"countdowns/internal/clock"
	"countdowns/internal/repository"
)

// SettingsService exposes the persisted display preferences.
type SettingsService struct {
	repo *repository.SettingsRepository
	log  zerolog.Logger
}

func NewSettingsService(repo *repository.SettingsRepository, log zerolog.Logger) *SettingsService {
	return &SettingsService{repo: repo, log: log.With().Str("component", "settings").Logger()}
}

func (s *SettingsService) DisplayMode(ctx context.Context) (clock.Mode, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return clock.ModeDays, err
	}
	return settings.DisplayMode, nil
}

func (s *SettingsService) SetDisplayMode(ctx context.Context, mode clock.Mode) error {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return err
	}
	settings.DisplayMode = clock.ParseMode(string(mode))
	if err := s.repo.Save(ctx, settings); err != nil {
		return err
	}
	s.log.Info().Str("mode", string(settings.DisplayMode)).Msg("display mode changed")
	return nil
}

// TogglePreviewBackground flips the photo background preference and returns the new value.
func (s *SettingsService) TogglePreviewBackground(ctx context.Context) (bool, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return false, err
	}
	settings.ShowPreviewBackground = !settings.ShowPreviewBackground
	if err := s.repo.Save(ctx, settings); err != nil {
		return false, err
	}
	return settings.ShowPreviewBackground, nil
}

func (s *SettingsService) ShowPreviewBackground(ctx context.Context) (bool, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return true, err
	}
	return settings.ShowPreviewBackground, nil
}
