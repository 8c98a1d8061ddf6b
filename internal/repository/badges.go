package repository

import (
	"github.com/julianstephens/habitchain/internal/constants"
	"github.com/julianstephens/habitchain/internal/logger"
	"github.com/julianstephens/habitchain/internal/models"
	"github.com/julianstephens/habitchain/internal/utils"
)

type badgeRule struct {
	id       string
	xp       int
	unlocked func(chains []models.HabitChain, stats models.UserStats) bool
}

func streakAtLeast(n int) func([]models.HabitChain, models.UserStats) bool {
	return func(_ []models.HabitChain, s models.UserStats) bool { return s.StreakDays >= n }
}

func chainsAtLeast(n int) func([]models.HabitChain, models.UserStats) bool {
	return func(c []models.HabitChain, _ models.UserStats) bool { return len(c) >= n }
}

var badgeRules = []badgeRule{
	{constants.BadgeFirstChain, 50, chainsAtLeast(1)},
	{constants.Badge3DayStreak, 100, streakAtLeast(3)},
	{constants.Badge7DayStreak, 200, streakAtLeast(7)},
	{constants.Badge14DayStreak, 300, streakAtLeast(14)},
	{constants.Badge30DayStreak, 500, streakAtLeast(30)},
	{constants.Badge5Chains, 250, chainsAtLeast(5)},
	{constants.Badge100Completions, 400, func(_ []models.HabitChain, s models.UserStats) bool {
		return s.TotalCompletions >= 100
	}},
}

// BadgeXP returns the one-time XP reward for a badge id, or 0.
func BadgeXP(id string) int {
	for _, rule := range badgeRules {
		if rule.id == id {
			return rule.xp
		}
	}
	return 0
}

// evaluateBadges unlocks every badge whose condition now holds, adds each
// newly unlocked badge's XP once, and re-derives the level. Badges never
// re-lock. The caller persists stats.
func (r *Repository) evaluateBadges(chains []models.HabitChain, stats *models.UserStats) {
	stats.NormalizeBadges()
	now := utils.FormatTimestamp(r.now())
	for _, rule := range badgeRules {
		b := stats.Badge(rule.id)
		if b == nil || b.Unlocked || !rule.unlocked(chains, *stats) {
			continue
		}
		b.Unlocked = true
		unlockedAt := now
		b.UnlockedAt = &unlockedAt
		stats.TotalXP += rule.xp
		logger.Info("Badge unlocked", "badge", rule.id, "xp", rule.xp)
	}
	stats.Level = models.LevelForXP(stats.TotalXP)
}
