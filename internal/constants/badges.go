package constants

// Badge identifiers. The ids match exports produced by earlier versions of the app.
const (
	BadgeFirstChain     = "badge-first-chain"
	Badge3DayStreak     = "badge-3-day-streak"
	Badge7DayStreak     = "badge-7-day-streak"
	Badge14DayStreak    = "badge-14-day-streak"
	Badge30DayStreak    = "badge-30-day-streak"
	Badge5Chains        = "badge-5-chains"
	Badge100Completions = "badge-100-completions"
)
