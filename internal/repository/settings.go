package repository

import (
	"fmt"

	"github.com/julianstephens/habitchain/internal/constants"
	apperrors "github.com/julianstephens/habitchain/internal/errors"
	"github.com/julianstephens/habitchain/internal/logger"
	"github.com/julianstephens/habitchain/internal/models"
	"github.com/julianstephens/habitchain/internal/validation"
)

// GetStats returns the user's stats, or fresh defaults when none are stored.
func (r *Repository) GetStats() models.UserStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, err := r.loadStats()
	if err != nil {
		logger.Error("Failed to load stats", "error", err)
		return models.DefaultStats()
	}
	return stats
}

// GetSettings returns the stored settings with defaults filled in.
func (r *Repository) GetSettings() models.AppSettings {
	r.mu.Lock()
	defer r.mu.Unlock()

	settings, err := r.loadSettings()
	if err != nil {
		logger.Error("Failed to load settings", "error", err)
		return models.DefaultSettings()
	}
	return settings
}

// SaveSettings validates and stores settings.
func (r *Repository) SaveSettings(settings models.AppSettings) error {
	if err := r.saveSettings(settings); err != nil {
		return err
	}
	r.notify()
	return nil
}

func (r *Repository) saveSettings(settings models.AppSettings) error {
	models.ApplyDefaultSettings(&settings)
	settings.Language = validation.SanitizeInput(settings.Language, 10)
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if err := validation.ValidateStruct(settings); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.SetItem(constants.KeySettings, settings)
}

// GetUserName returns the stored display name, or "".
func (r *Repository) GetUserName() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	name, err := r.loadUserName()
	if err != nil {
		logger.Error("Failed to load user name", "error", err)
		return ""
	}
	return name
}

// SaveUserName sanitizes and stores the display name.
func (r *Repository) SaveUserName(name string) error {
	clean, err := validation.CleanField("user name", name, constants.MaxUserNameLen, true)
	if err != nil {
		return err
	}

	r.mu.Lock()
	err = r.store.SetItem(constants.KeyUserName, clean)
	r.mu.Unlock()
	if err != nil {
		return err
	}
	r.notify()
	return nil
}

// ClearAllData removes every stored entry. Subsequent reads return defaults.
func (r *Repository) ClearAllData() error {
	r.mu.Lock()
	err := r.store.Clear()
	r.mu.Unlock()
	if err != nil {
		return err
	}
	logger.Info("All data cleared")
	r.notify()
	return nil
}
