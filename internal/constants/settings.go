package constants

const (
	// Default Settings Values
	DefaultNotificationsEnabled = false
	DefaultDarkMode             = false
	DefaultReminderTime         = "09:00"
	DefaultTheme                = "default"
	DefaultSoundEnabled         = true
	DefaultSoundVolume          = 0.5
	DefaultLanguage             = "en"
	DefaultTimezone             = "Local" // Use system local timezone by default
)

// Themes lists the accepted values for AppSettings.Theme.
var Themes = []string{"default", "sage", "lavender", "peach", "ocean", "rose"}
