// Package repository implements chain management, the completion state
// machine, badges and export/import on top of the secure store. It keeps no
// state between calls: every operation re-reads the collections it touches.
package repository

import (
	"sync"
	"time"

	"github.com/julianstephens/habitchain/internal/config"
	"github.com/julianstephens/habitchain/internal/constants"
	"github.com/julianstephens/habitchain/internal/idgen"
	"github.com/julianstephens/habitchain/internal/logger"
	"github.com/julianstephens/habitchain/internal/models"
	"github.com/julianstephens/habitchain/internal/securestore"
	"github.com/julianstephens/habitchain/internal/utils"
	"github.com/julianstephens/habitchain/internal/validation"
)

// Options configures a Repository. Zero values fall back to defaults.
type Options struct {
	Limits  config.RateLimits
	Limiter *validation.RateLimiter
	Now     func() time.Time
}

type Repository struct {
	// mu serializes public methods so the dashboard's poller and key
	// handlers never interleave a read-modify-write.
	mu      sync.Mutex
	store   *securestore.Store
	limiter *validation.RateLimiter
	limits  config.RateLimits
	now     func() time.Time

	subMu       sync.Mutex
	subscribers map[int]func()
	nextSubID   int
}

func New(store *securestore.Store, opts Options) *Repository {
	r := &Repository{
		store:       store,
		limiter:     opts.Limiter,
		limits:      opts.Limits,
		now:         opts.Now,
		subscribers: make(map[int]func()),
	}
	if r.limiter == nil {
		r.limiter = validation.NewRateLimiter()
	}
	if r.limits == (config.RateLimits{}) {
		r.limits = config.Default("").RateLimits
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// Subscribe registers fn to run after every successful mutation. The
// returned function removes the subscription.
func (r *Repository) Subscribe(fn func()) (unsubscribe func()) {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	id := r.nextSubID
	r.nextSubID++
	r.subscribers[id] = fn
	return func() {
		r.subMu.Lock()
		defer r.subMu.Unlock()
		delete(r.subscribers, id)
	}
}

// notify must be called without r.mu held so subscribers may read back.
func (r *Repository) notify() {
	r.subMu.Lock()
	fns := make([]func(), 0, len(r.subscribers))
	for _, fn := range r.subscribers {
		fns = append(fns, fn)
	}
	r.subMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (r *Repository) allow(action string, limit config.RateLimit) bool {
	return r.limiter.Allow(action, limit.Max, limit.Window)
}

// loadChains returns the stored chains, or an empty list when absent.
func (r *Repository) loadChains() ([]models.HabitChain, error) {
	var chains []models.HabitChain
	found, err := r.store.GetItem(constants.KeyChains, &chains)
	if err != nil {
		return nil, err
	}
	if !found || chains == nil {
		return []models.HabitChain{}, nil
	}
	for i := range chains {
		chains[i].SortHabits()
	}
	return chains, nil
}

func (r *Repository) loadStats() (models.UserStats, error) {
	var stats models.UserStats
	found, err := r.store.GetItem(constants.KeyStats, &stats)
	if err != nil {
		return models.UserStats{}, err
	}
	if !found {
		return models.DefaultStats(), nil
	}
	stats.NormalizeBadges()
	stats.Level = models.LevelForXP(stats.TotalXP)
	return stats, nil
}

func (r *Repository) loadSettings() (models.AppSettings, error) {
	var settings models.AppSettings
	found, err := r.store.GetItem(constants.KeySettings, &settings)
	if err != nil {
		return models.AppSettings{}, err
	}
	if !found {
		return models.DefaultSettings(), nil
	}
	models.ApplyDefaultSettings(&settings)
	return settings, nil
}

func (r *Repository) loadUserName() (string, error) {
	var name string
	if _, err := r.store.GetItem(constants.KeyUserName, &name); err != nil {
		return "", err
	}
	return name, nil
}

// location returns the timezone calendar days are computed in.
func (r *Repository) location(settings models.AppSettings) *time.Location {
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		logger.Warn("Falling back to local timezone", "error", err)
		return time.Local
	}
	return loc
}

// idGenerator returns a generator whose collision probe covers store keys
// and every chain and habit id in chains.
func (r *Repository) idGenerator(chains []models.HabitChain) *idgen.Generator {
	used := make(map[string]bool)
	for _, c := range chains {
		used[c.ID] = true
		for _, h := range c.Habits {
			used[h.ID] = true
		}
	}
	if keys, err := r.store.Keys(); err == nil {
		for _, k := range keys {
			used[k] = true
		}
	}
	return idgen.New(func(id string) bool {
		if used[id] {
			return true
		}
		// reserve it so ids handed out in the same operation stay distinct
		used[id] = true
		return false
	})
}
