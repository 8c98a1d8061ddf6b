package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitchain/internal/config"
	"github.com/julianstephens/habitchain/internal/models"
	"github.com/julianstephens/habitchain/internal/securestore"
	"github.com/julianstephens/habitchain/internal/storage"
	"github.com/julianstephens/habitchain/internal/validation"
)

type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time { return c.t }

func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type testEnv struct {
	repo    *Repository
	clock   *testClock
	backend *storage.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithLimits(t, config.RateLimits{})
}

func newTestEnvWithLimits(t *testing.T, limits config.RateLimits) *testEnv {
	t.Helper()
	clock := &testClock{t: time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)}
	backend := storage.NewMemoryStore()
	store := securestore.New(backend, securestore.Options{Now: clock.Now})
	repo := New(store, Options{
		Limits:  limits,
		Limiter: validation.NewRateLimiter().WithClock(clock.Now),
		Now:     clock.Now,
	})

	settings := models.DefaultSettings()
	settings.Timezone = "UTC"
	require.NoError(t, repo.SaveSettings(settings))

	return &testEnv{repo: repo, clock: clock, backend: backend}
}

func (e *testEnv) addChain(t *testing.T, name string, habits ...string) models.HabitChain {
	t.Helper()
	input := ChainInput{Name: name}
	for _, h := range habits {
		input.Habits = append(input.Habits, HabitInput{Name: h})
	}
	chain, err := e.repo.AddChain(input)
	require.NoError(t, err)
	return chain
}

// completeAll completes every habit of the chain in order.
func (e *testEnv) completeAll(t *testing.T, chainID string) {
	t.Helper()
	chain, ok := e.repo.GetChain(chainID)
	require.True(t, ok)
	for _, h := range chain.Habits {
		require.True(t, e.repo.CompleteHabit(chainID, h.ID), "complete %s", h.Name)
	}
}

func storageForTest() storage.Backend {
	return storage.NewMemoryStore()
}
