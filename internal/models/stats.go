package models

import "github.com/julianstephens/habitchain/internal/constants"

// UserStats is the installation-wide progress record.
type UserStats struct {
	TotalXP          int     `json:"totalXp" validate:"min=0"`
	Level            int     `json:"level" validate:"min=0"`
	StreakDays       int     `json:"streakDays" validate:"min=0"` // max streak over all chains
	LongestStreak    int     `json:"longestStreak" validate:"min=0"`
	TotalCompletions int     `json:"totalCompletions" validate:"min=0"`
	Badges           []Badge `json:"badges" validate:"dive"`
}

// Badge is a one-way achievement with a one-time XP reward.
type Badge struct {
	ID          string  `json:"id" validate:"required,max=50"`
	Name        string  `json:"name" validate:"max=100"`
	Description string  `json:"description" validate:"max=200"`
	IconName    string  `json:"iconName" validate:"max=50"`
	UnlockedAt  *string `json:"unlockedAt"` // RFC3339 timestamp
	Unlocked    bool    `json:"unlocked"`
}

// LevelForXP derives the level from total XP.
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/constants.XPPerLevel + 1
}

// BadgeCatalog returns the fixed badge catalog, all locked, in display order.
func BadgeCatalog() []Badge {
	return []Badge{
		{ID: constants.BadgeFirstChain, Name: "First Chain", Description: "Create your first habit chain", IconName: "trophy"},
		{ID: constants.Badge3DayStreak, Name: "3-Day Streak", Description: "Complete a habit chain for 3 days in a row", IconName: "award"},
		{ID: constants.Badge7DayStreak, Name: "Week Warrior", Description: "Complete a habit chain for 7 days in a row", IconName: "star"},
		{ID: constants.Badge14DayStreak, Name: "Fortnight Champion", Description: "Complete a habit chain for 14 days in a row", IconName: "star"},
		{ID: constants.Badge30DayStreak, Name: "Monthly Master", Description: "Complete a habit chain for 30 days in a row", IconName: "star"},
		{ID: constants.Badge5Chains, Name: "Chain Collector", Description: "Create 5 different habit chains", IconName: "badge"},
		{ID: constants.Badge100Completions, Name: "Century Club", Description: "Complete 100 total habits", IconName: "badge-check"},
	}
}

// DefaultStats returns the stats of a fresh installation.
func DefaultStats() UserStats {
	return UserStats{
		Level:  1,
		Badges: BadgeCatalog(),
	}
}

// NormalizeBadges makes sure every catalog badge is present. Unknown badges
// are kept as-is after the catalog entries; unlocked state is never cleared.
func (s *UserStats) NormalizeBadges() {
	existing := make(map[string]Badge, len(s.Badges))
	for _, b := range s.Badges {
		if _, seen := existing[b.ID]; !seen {
			existing[b.ID] = b
		}
	}

	catalog := BadgeCatalog()
	known := make(map[string]bool, len(catalog))
	normalized := make([]Badge, 0, len(catalog)+len(s.Badges))
	for _, def := range catalog {
		known[def.ID] = true
		if b, ok := existing[def.ID]; ok {
			def.Unlocked = b.Unlocked
			def.UnlockedAt = b.UnlockedAt
		}
		normalized = append(normalized, def)
	}
	for _, b := range s.Badges {
		if !known[b.ID] {
			known[b.ID] = true
			normalized = append(normalized, b)
		}
	}
	s.Badges = normalized
}

// Badge returns a pointer to the badge with the given id, or nil.
func (s *UserStats) Badge(id string) *Badge {
	for i := range s.Badges {
		if s.Badges[i].ID == id {
			return &s.Badges[i]
		}
	}
	return nil
}

// UnlockedCount returns the number of unlocked badges.
func (s *UserStats) UnlockedCount() int {
	n := 0
	for _, b := range s.Badges {
		if b.Unlocked {
			n++
		}
	}
	return n
}
