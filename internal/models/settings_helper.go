package models

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/habitchain/internal/constants"
)

// Setting keys accepted by ApplySetting and produced by SettingsToMap.
const (
	SettingNotificationsEnabled = "notifications_enabled"
	SettingDarkMode             = "dark_mode"
	SettingReminderTime         = "reminder_time"
	SettingTheme                = "theme"
	SettingSoundEnabled         = "sound_enabled"
	SettingSoundVolume          = "sound_volume"
	SettingLanguage             = "language"
	SettingTimezone             = "timezone"
)

// DefaultSettings returns the settings of a fresh installation.
func DefaultSettings() AppSettings {
	return AppSettings{
		NotificationsEnabled: constants.DefaultNotificationsEnabled,
		DarkMode:             constants.DefaultDarkMode,
		ReminderTime:         constants.DefaultReminderTime,
		Theme:                constants.DefaultTheme,
		SoundEnabled:         constants.DefaultSoundEnabled,
		SoundVolume:          constants.DefaultSoundVolume,
		Language:             constants.DefaultLanguage,
		Timezone:             constants.DefaultTimezone,
	}
}

// ApplyDefaultSettings fills in values missing from settings written by older versions.
func ApplyDefaultSettings(settings *AppSettings) {
	if settings.ReminderTime == "" {
		settings.ReminderTime = constants.DefaultReminderTime
	}
	if settings.Theme == "" {
		settings.Theme = constants.DefaultTheme
	}
	if settings.Language == "" {
		settings.Language = constants.DefaultLanguage
	}
	if settings.Timezone == "" {
		settings.Timezone = constants.DefaultTimezone
	}
}

// ApplyAbsentSettingDefaults fills sound settings that are missing from a
// decoded settings object, then applies ApplyDefaultSettings. fields is the
// same object as a generic JSON map and is used to tell an absent key from an
// explicit false or 0. A null value counts as absent. Exports from the browser app carry no sound settings.
func ApplyAbsentSettingDefaults(settings *AppSettings, fields map[string]any) {
	if v, ok := fields["soundEnabled"]; !ok || v == nil {
		settings.SoundEnabled = constants.DefaultSoundEnabled
	}
	if v, ok := fields["soundVolume"]; !ok || v == nil {
		settings.SoundVolume = constants.DefaultSoundVolume
	}
	ApplyDefaultSettings(settings)
}

// Validate checks value ranges that JSON typing alone cannot express.
func (s AppSettings) Validate() error {
	if _, err := time.Parse(constants.TimeFormat, s.ReminderTime); err != nil {
		return fmt.Errorf("invalid reminder time %q (expected HH:MM)", s.ReminderTime)
	}
	if !slices.Contains(constants.Themes, s.Theme) {
		return fmt.Errorf("invalid theme %q (expected one of %s)", s.Theme, strings.Join(constants.Themes, ", "))
	}
	if s.SoundVolume < 0 || s.SoundVolume > 1 {
		return fmt.Errorf("sound volume must be between 0 and 1, got %v", s.SoundVolume)
	}
	if s.Timezone != "" && s.Timezone != "Local" {
		if _, err := time.LoadLocation(s.Timezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", s.Timezone, err)
		}
	}
	return nil
}

// ApplySetting parses value and stores it under the named setting key.
func ApplySetting(settings *AppSettings, key, value string) error {
	switch key {
	case SettingNotificationsEnabled, SettingDarkMode, SettingSoundEnabled:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", key, err)
		}
		switch key {
		case SettingNotificationsEnabled:
			settings.NotificationsEnabled = b
		case SettingDarkMode:
			settings.DarkMode = b
		default:
			settings.SoundEnabled = b
		}
	case SettingReminderTime:
		settings.ReminderTime = value
	case SettingTheme:
		settings.Theme = strings.ToLower(value)
	case SettingSoundVolume:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", key, err)
		}
		settings.SoundVolume = v
	case SettingLanguage:
		settings.Language = value
	case SettingTimezone:
		settings.Timezone = value
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}

// SettingsToMap converts settings to key-value pairs for display.
func SettingsToMap(settings AppSettings) map[string]string {
	return map[string]string{
		SettingNotificationsEnabled: strconv.FormatBool(settings.NotificationsEnabled),
		SettingDarkMode:             strconv.FormatBool(settings.DarkMode),
		SettingReminderTime:         settings.ReminderTime,
		SettingTheme:                settings.Theme,
		SettingSoundEnabled:         strconv.FormatBool(settings.SoundEnabled),
		SettingSoundVolume:          strconv.FormatFloat(settings.SoundVolume, 'f', -1, 64),
		SettingLanguage:             settings.Language,
		SettingTimezone:             settings.Timezone,
	}
}
