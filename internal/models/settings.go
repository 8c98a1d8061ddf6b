package models

// AppSettings holds user preferences
type AppSettings struct {
	NotificationsEnabled bool    `json:"notificationsEnabled"`                                                              // whether reminders are enabled
	DarkMode             bool    `json:"darkMode"`                                                                          // whether the dark palette is used
	ReminderTime         string  `json:"reminderTime" validate:"omitempty,max=5"`                                           // daily reminder in 24 hour format, e.g. "09:00"
	Theme                string  `json:"theme,omitempty" validate:"omitempty,oneof=default sage lavender peach ocean rose"` // color theme name
	SoundEnabled         bool    `json:"soundEnabled"`                                                                      // whether completion sounds play
	SoundVolume          float64 `json:"soundVolume" validate:"min=0,max=1"`                                                // sound volume from 0 to 1
	Language             string  `json:"language,omitempty" validate:"omitempty,max=10"`                                    // interface language code, e.g. "en"
	Timezone             string  `json:"timezone,omitempty" validate:"omitempty,max=64"`                                    // IANA timezone name used for streak days, or "Local"
}
