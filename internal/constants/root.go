package constants

import "time"

// SessionState represents the current state of the TUI dashboard
type SessionState int

const (
	AppName            = "habitchain"
	DefaultKeyringUser = "integrity-key"
	DefaultDataDir     = "~/.config/habitchain"
	DefaultConfigFile  = "config.yaml"
	EnvPrefix          = "HABITCHAIN_"
	Version            = "v0.3.0"

	// Storage keys. Each holds one whole-collection blob.
	KeyChains   = "chains"
	KeyStats    = "stats"
	KeySettings = "settings"
	KeyUserName = "userName"

	// Backend names
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendMemory = "memory"

	SQLiteFileName = "habitchain.db"
	BadgerDirName  = "badger"

	// Integrity modes
	IntegrityChecksum = "checksum"
	IntegrityKeyed    = "keyed"
	IntegrityKeyBytes = 32

	// Secure store limits
	MaxKeyLength        = 100
	MaxStoredValueBytes = 5 * 1024 * 1024
	NonceBytes          = 16

	// Export / import
	MaxExportBytes     = 10 * 1024 * 1024
	MaxImportDepth     = 32
	ExportVersion      = "1.0.0"
	ExportFilePrefix   = "chainreact-backup-"
	ExportFileSuffix   = ".json"
	ExportIndentPrefix = ""
	ExportIndent       = "  "

	// Text limits
	MaxChainNameLen        = 100
	MaxChainDescriptionLen = 500
	MaxHabitNameLen        = 100
	MaxHabitDescriptionLen = 200
	MaxUserNameLen         = 50
	DefaultSanitizeLen     = 1000
	MinHabitsPerChain      = 1
	MaxHabitsPerChain      = 10

	// Identifier generation
	IDRandomBytes  = 12
	IDTargetLength = 15
	IDMinLength    = 10
	IDMaxLength    = 50
	IDMaxAttempts  = 5

	// Gamification
	XPPerHabit = 10
	XPPerLevel = 100

	// Rate limited actions
	ActionChainCreate = "chain:create"
	ActionChainUpdate = "chain:update"
	ActionDataImport  = "data:import"

	DefaultChainCreateMax    = 10
	DefaultChainCreateWindow = time.Minute
	DefaultChainUpdateMax    = 30
	DefaultChainUpdateWindow = time.Minute
	DefaultDataImportMax     = 3
	DefaultDataImportWindow  = 5 * time.Minute
	RateLimitGCThreshold     = 100

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "habitchain-"
	BackupFileSuffix = ".json"

	// Lockfile
	LockfileName = "habitchain.lock"

	// Dashboard
	DefaultPollInterval = 2 * time.Second
)

// Session States
const (
	StateChains SessionState = iota
	StateStats
	StateBadges
	StateConfirmDelete
)
