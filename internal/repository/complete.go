package repository

import (
	"time"

	"github.com/julianstephens/habitchain/internal/constants"
	"github.com/julianstephens/habitchain/internal/idgen"
	"github.com/julianstephens/habitchain/internal/logger"
	"github.com/julianstephens/habitchain/internal/models"
	"github.com/julianstephens/habitchain/internal/utils"
)

// CompleteHabit marks a habit done for the current cycle. It returns false
// without changing anything when either id is malformed or unknown, the
// habit is already done, or an earlier habit in the chain is still open.
// Completing the last open habit rolls the chain over: the streak and
// counters advance, XP is awarded and every habit reopens.
func (r *Repository) CompleteHabit(chainID, habitID string) bool {
	ok := r.completeHabit(chainID, habitID)
	if ok {
		r.notify()
	}
	return ok
}

func (r *Repository) completeHabit(chainID, habitID string) bool {
	if !idgen.Valid(chainID) || !idgen.Valid(habitID) {
		logger.Warn("Rejected malformed id", "chain", chainID, "habit", habitID)
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	chains, err := r.loadChains()
	if err != nil {
		logger.Error("Failed to load chains", "error", err)
		return false
	}
	ci := -1
	for i := range chains {
		if chains[i].ID == chainID {
			ci = i
			break
		}
	}
	if ci == -1 {
		return false
	}
	chain := &chains[ci]
	hi := chain.FindHabit(habitID)
	if hi == -1 {
		return false
	}
	target := &chain.Habits[hi]
	if target.Completed {
		return false
	}
	for _, h := range chain.Habits {
		if h.Position < target.Position && !h.Completed {
			return false
		}
	}

	now := r.now()
	target.Completed = true
	target.CompletedAt = utils.TimestampPtr(now)

	stats, err := r.loadStats()
	if err != nil {
		logger.Error("Failed to load stats", "error", err)
		return false
	}

	if chain.AllCompleted() {
		settings, err := r.loadSettings()
		if err != nil {
			logger.Error("Failed to load settings", "error", err)
			return false
		}
		r.rollover(chains, ci, &stats, r.location(settings))
	}

	r.evaluateBadges(chains, &stats)
	if err := r.store.SetItems(map[string]any{
		constants.KeyChains: chains,
		constants.KeyStats:  stats,
	}); err != nil {
		logger.Error("Failed to save completion", "error", err)
		return false
	}
	return true
}

// rollover closes the daily cycle of chains[ci]. Calendar days are compared
// in loc: a cycle finished yesterday extends the streak, one already finished
// today leaves it alone, anything older starts a new streak.
func (r *Repository) rollover(chains []models.HabitChain, ci int, stats *models.UserStats, loc *time.Location) {
	chain := &chains[ci]
	now := r.now()
	today := utils.DayKey(now, loc)
	yesterday := utils.PreviousDayKey(now, loc)

	last := ""
	if chain.LastCompleted != nil {
		if t, err := utils.ParseTimestamp(*chain.LastCompleted); err == nil {
			last = utils.DayKey(t, loc)
		} else {
			logger.Warn("Ignoring unparsable lastCompleted", "chain", chain.ID, "value", *chain.LastCompleted)
		}
	}

	switch last {
	case yesterday:
		chain.Streak++
	case today:
		// already counted today
	default:
		chain.Streak = 1
	}
	chain.LongestStreak = max(chain.LongestStreak, chain.Streak)
	chain.TotalCompletions++
	chain.LastCompleted = utils.TimestampPtr(now)

	stats.TotalCompletions++
	stats.StreakDays = 0
	for _, c := range chains {
		stats.StreakDays = max(stats.StreakDays, c.Streak)
	}
	stats.LongestStreak = max(stats.LongestStreak, stats.StreakDays)
	stats.TotalXP += constants.XPPerHabit * len(chain.Habits)

	chain.ResetCycle()
	logger.Info("Chain cycle completed", "chain", chain.ID, "streak", chain.Streak)
}
