package repository

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitchain/internal/models"
)

func TestMorningScenario(t *testing.T) {
	env := newTestEnv(t)
	chain := env.addChain(t, "Morning", "Wake", "Stretch")
	wake, stretch := chain.Habits[0], chain.Habits[1]
	xpBefore := env.repo.GetStats().TotalXP

	assert.False(t, env.repo.CompleteHabit(chain.ID, stretch.ID), "Stretch is locked until Wake is done")

	require.True(t, env.repo.CompleteHabit(chain.ID, wake.ID))
	got, _ := env.repo.GetChain(chain.ID)
	assert.True(t, got.Habits[0].Completed)
	assert.NotNil(t, got.Habits[0].CompletedAt)

	require.True(t, env.repo.CompleteHabit(chain.ID, stretch.ID))
	got, _ = env.repo.GetChain(chain.ID)
	for _, h := range got.Habits {
		assert.False(t, h.Completed)
		assert.Nil(t, h.CompletedAt)
	}
	assert.Equal(t, 1, got.TotalCompletions)
	assert.Equal(t, 1, got.Streak)
	assert.Equal(t, 1, got.LongestStreak)
	require.NotNil(t, got.LastCompleted)

	stats := env.repo.GetStats()
	assert.Equal(t, xpBefore+20, stats.TotalXP)
	assert.Equal(t, 1, stats.TotalCompletions)
	assert.Equal(t, 1, stats.StreakDays)
	assert.Equal(t, 1, stats.LongestStreak)
}

func TestSequentialUnlock(t *testing.T) {
	env := newTestEnv(t)
	chain := env.addChain(t, "Steps", "One", "Two", "Three", "Four")
	ids := make([]string, len(chain.Habits))
	for i, h := range chain.Habits {
		ids[i] = h.ID
	}

	for p := 0; p < len(ids); p++ {
		for later := p + 1; later < len(ids); later++ {
			before, _ := env.repo.GetChain(chain.ID)
			assert.False(t, env.repo.CompleteHabit(chain.ID, ids[later]), "position %d before %d", later, p)
			after, _ := env.repo.GetChain(chain.ID)
			assert.Equal(t, before, after, "failed completion leaves state unchanged")
		}
		require.True(t, env.repo.CompleteHabit(chain.ID, ids[p]))
	}
}

func TestCompleteHabitGuards(t *testing.T) {
	env := newTestEnv(t)
	chain := env.addChain(t, "Morning", "Wake", "Stretch")
	wake := chain.Habits[0].ID

	require.True(t, env.repo.CompleteHabit(chain.ID, wake))
	assert.False(t, env.repo.CompleteHabit(chain.ID, wake), "already completed this cycle")

	assert.False(t, env.repo.CompleteHabit("bad id", wake))
	assert.False(t, env.repo.CompleteHabit(chain.ID, "x"))
	assert.False(t, env.repo.CompleteHabit("unknownchain01", wake))
	assert.False(t, env.repo.CompleteHabit(chain.ID, "unknownhabit01"))

	other := env.addChain(t, "Evening", "Read")
	assert.False(t, env.repo.CompleteHabit(chain.ID, other.Habits[0].ID), "habit from another chain")
}

func TestCycleRolloverAllowsNextCycle(t *testing.T) {
	env := newTestEnv(t)
	chain := env.addChain(t, "Morning", "Wake", "Stretch")

	env.completeAll(t, chain.ID)
	assert.True(t, env.repo.CompleteHabit(chain.ID, chain.Habits[0].ID), "habit 0 reopens after rollover")

	got, _ := env.repo.GetChain(chain.ID)
	assert.Equal(t, 1, got.TotalCompletions)
	assert.True(t, got.Habits[0].Completed)
}

func TestStreakContinuity(t *testing.T) {
	env := newTestEnv(t)
	chain := env.addChain(t, "Daily", "Do it")

	env.completeAll(t, chain.ID)
	got, _ := env.repo.GetChain(chain.ID)
	assert.Equal(t, 1, got.Streak)

	env.clock.Advance(24 * time.Hour)
	env.completeAll(t, chain.ID)
	got, _ = env.repo.GetChain(chain.ID)
	assert.Equal(t, 2, got.Streak)

	// a second cycle on the same day does not extend the streak
	env.completeAll(t, chain.ID)
	got, _ = env.repo.GetChain(chain.ID)
	assert.Equal(t, 2, got.Streak)
	assert.Equal(t, 3, got.TotalCompletions)

	env.clock.Advance(48 * time.Hour)
	env.completeAll(t, chain.ID)
	got, _ = env.repo.GetChain(chain.ID)
	assert.Equal(t, 1, got.Streak, "skipping a day restarts the streak")
	assert.Equal(t, 2, got.LongestStreak)
}

func TestStreakUsesConfiguredTimezone(t *testing.T) {
	env := newTestEnv(t)
	settings := env.repo.GetSettings()
	settings.Timezone = "America/New_York"
	require.NoError(t, env.repo.SaveSettings(settings))
	chain := env.addChain(t, "Daily", "Do it")

	// 20:00 on Feb 28 in New York
	env.clock.t = time.Date(2025, 3, 1, 1, 0, 0, 0, time.UTC)
	env.completeAll(t, chain.ID)

	// 18:00 on Mar 1 in New York, the same UTC day as the first completion
	env.clock.t = time.Date(2025, 3, 1, 23, 0, 0, 0, time.UTC)
	env.completeAll(t, chain.ID)

	got, _ := env.repo.GetChain(chain.ID)
	assert.Equal(t, 2, got.Streak)
}

func TestStreakAcrossDSTChange(t *testing.T) {
	env := newTestEnv(t)
	settings := env.repo.GetSettings()
	settings.Timezone = "America/New_York"
	require.NoError(t, env.repo.SaveSettings(settings))
	chain := env.addChain(t, "Daily", "Do it")

	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	// clocks spring forward on Mar 9 2025
	env.clock.t = time.Date(2025, 3, 8, 23, 30, 0, 0, ny)
	env.completeAll(t, chain.ID)
	env.clock.t = time.Date(2025, 3, 9, 23, 30, 0, 0, ny)
	env.completeAll(t, chain.ID)

	got, _ := env.repo.GetChain(chain.ID)
	assert.Equal(t, 2, got.Streak)
}

func TestLongestStreakMonotonic(t *testing.T) {
	env := newTestEnv(t)
	chain := env.addChain(t, "Daily", "Do it")

	gaps := []int{1, 1, 1, 3, 1, 2, 1, 1, 1, 1, 5, 1}
	prevLongest := 0
	for _, gap := range gaps {
		env.clock.Advance(time.Duration(gap) * 24 * time.Hour)
		env.completeAll(t, chain.ID)

		got, _ := env.repo.GetChain(chain.ID)
		assert.GreaterOrEqual(t, got.LongestStreak, prevLongest)
		assert.GreaterOrEqual(t, got.LongestStreak, got.Streak)
		prevLongest = got.LongestStreak

		stats := env.repo.GetStats()
		assert.GreaterOrEqual(t, stats.LongestStreak, stats.StreakDays)
	}
	assert.Equal(t, 5, prevLongest)
}

func TestStreakBadgesLatchOnce(t *testing.T) {
	env := newTestEnv(t)
	chain := env.addChain(t, "Daily", "Do it")

	for day := 0; day < 3; day++ {
		env.completeAll(t, chain.ID)
		env.clock.Advance(24 * time.Hour)
	}
	stats := env.repo.GetStats()
	badge := stats.Badge("badge-3-day-streak")
	require.True(t, badge.Unlocked)
	unlockedAt := *badge.UnlockedAt
	assert.Equal(t, 50+30+100, stats.TotalXP)
	assert.Equal(t, 2, stats.Level)

	env.completeAll(t, chain.ID)
	env.clock.Advance(72 * time.Hour)
	env.completeAll(t, chain.ID)

	stats = env.repo.GetStats()
	badge = stats.Badge("badge-3-day-streak")
	assert.True(t, badge.Unlocked, "badge stays unlocked after the streak breaks")
	assert.Equal(t, unlockedAt, *badge.UnlockedAt)
	assert.Equal(t, 50+50+100, stats.TotalXP, "bonus is paid once")
	assert.Equal(t, 1, stats.StreakDays)
}

func TestLevelDerivation(t *testing.T) {
	env := newTestEnv(t)
	chain := env.addChain(t, "Big", "a", "b", "c", "d", "e", "f", "g", "h", "i", "j")

	for i := 0; i < 4; i++ {
		env.completeAll(t, chain.ID)
		stats := env.repo.GetStats()
		assert.Equal(t, models.LevelForXP(stats.TotalXP), stats.Level)
		assert.Equal(t, stats.TotalXP/100+1, stats.Level)
	}
	assert.Equal(t, 50+400, env.repo.GetStats().TotalXP)
}

func TestHundredCompletionsBadge(t *testing.T) {
	env := newTestEnv(t)
	chain := env.addChain(t, "Quick", "tap")

	for i := 0; i < 99; i++ {
		env.completeAll(t, chain.ID)
	}
	stats := env.repo.GetStats()
	assert.False(t, stats.Badge("badge-100-completions").Unlocked)

	env.completeAll(t, chain.ID)
	stats = env.repo.GetStats()
	assert.True(t, stats.Badge("badge-100-completions").Unlocked)
	assert.Equal(t, 100, stats.TotalCompletions)
	assert.Equal(t, 50+1000+400, stats.TotalXP)
}

func TestStreakDaysIsMaxAcrossChains(t *testing.T) {
	env := newTestEnv(t)
	a := env.addChain(t, "A chain", "x")
	b := env.addChain(t, "B chain", "x")

	for day := 0; day < 3; day++ {
		env.completeAll(t, a.ID)
		env.clock.Advance(24 * time.Hour)
	}
	env.completeAll(t, b.ID)

	stats := env.repo.GetStats()
	assert.Equal(t, 3, stats.StreakDays)
}
