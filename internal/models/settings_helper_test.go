package models

import (
	"encoding/json"
	"testing"
)

func TestApplyAbsentSettingDefaults(t *testing.T) {
	tests := []struct {
		name        string
		doc         string
		wantEnabled bool
		wantVolume  float64
	}{
		{
			name:        "browser export without sound settings",
			doc:         `{"notificationsEnabled": false, "darkMode": true, "reminderTime": "07:00"}`,
			wantEnabled: true,
			wantVolume:  0.5,
		},
		{
			name:        "explicitly muted",
			doc:         `{"notificationsEnabled": false, "darkMode": false, "reminderTime": "09:00", "soundEnabled": false, "soundVolume": 0}`,
			wantEnabled: false,
			wantVolume:  0,
		},
		{
			name:        "only volume present",
			doc:         `{"notificationsEnabled": false, "darkMode": false, "reminderTime": "09:00", "soundVolume": 0.2}`,
			wantEnabled: true,
			wantVolume:  0.2,
		},
		{
			name:        "null values",
			doc:         `{"notificationsEnabled": false, "darkMode": false, "reminderTime": "09:00", "soundEnabled": null, "soundVolume": null}`,
			wantEnabled: true,
			wantVolume:  0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var settings AppSettings
			if err := json.Unmarshal([]byte(tt.doc), &settings); err != nil {
				t.Fatalf("failed to decode settings: %v", err)
			}
			var fields map[string]any
			if err := json.Unmarshal([]byte(tt.doc), &fields); err != nil {
				t.Fatalf("failed to decode fields: %v", err)
			}

			ApplyAbsentSettingDefaults(&settings, fields)

			if settings.SoundEnabled != tt.wantEnabled {
				t.Errorf("SoundEnabled = %v, want %v", settings.SoundEnabled, tt.wantEnabled)
			}
			if settings.SoundVolume != tt.wantVolume {
				t.Errorf("SoundVolume = %v, want %v", settings.SoundVolume, tt.wantVolume)
			}
			if settings.Theme != "default" {
				t.Errorf("Theme = %q, want %q", settings.Theme, "default")
			}
			if err := settings.Validate(); err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}
