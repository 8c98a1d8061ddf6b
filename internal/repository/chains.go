package repository

import (
	"fmt"
	"strings"

	"github.com/julianstephens/habitchain/internal/constants"
	apperrors "github.com/julianstephens/habitchain/internal/errors"
	"github.com/julianstephens/habitchain/internal/idgen"
	"github.com/julianstephens/habitchain/internal/logger"
	"github.com/julianstephens/habitchain/internal/models"
	"github.com/julianstephens/habitchain/internal/utils"
	"github.com/julianstephens/habitchain/internal/validation"
)

// HabitInput describes a habit to create.
type HabitInput struct {
	Name        string
	Description string
	Icon        string
}

// ChainInput describes a chain to create. Habits are positioned in the
// order given.
type ChainInput struct {
	Name        string
	Description string
	Habits      []HabitInput
}

func cleanChainText(name, description string) (string, string, error) {
	name, err := validation.CleanField("chain name", name, constants.MaxChainNameLen, true)
	if err != nil {
		return "", "", err
	}
	description, err = validation.CleanField("chain description", description, constants.MaxChainDescriptionLen, false)
	if err != nil {
		return "", "", err
	}
	return name, description, nil
}

func cleanHabit(h *models.Habit) error {
	name, err := validation.CleanField("habit name", h.Name, constants.MaxHabitNameLen, true)
	if err != nil {
		return err
	}
	description, err := validation.CleanField("habit description", h.Description, constants.MaxHabitDescriptionLen, false)
	if err != nil {
		return err
	}
	h.Name = name
	h.Description = description
	h.Icon = validation.SanitizeInput(h.Icon, 50)
	return nil
}

func checkHabitCount(n int) error {
	if n < constants.MinHabitsPerChain || n > constants.MaxHabitsPerChain {
		return apperrors.Validationf("a chain needs between %d and %d habits, got %d",
			constants.MinHabitsPerChain, constants.MaxHabitsPerChain, n)
	}
	return nil
}

// nameTaken reports whether another chain (not excludeID) already uses name,
// compared case-insensitively.
func nameTaken(chains []models.HabitChain, name, excludeID string) bool {
	for _, c := range chains {
		if c.ID != excludeID && strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

// AddChain validates input and appends a new chain.
func (r *Repository) AddChain(input ChainInput) (models.HabitChain, error) {
	chain, err := r.addChain(input)
	if err != nil {
		return models.HabitChain{}, err
	}
	r.notify()
	return chain, nil
}

func (r *Repository) addChain(input ChainInput) (models.HabitChain, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name, description, err := cleanChainText(input.Name, input.Description)
	if err != nil {
		return models.HabitChain{}, err
	}
	if err := checkHabitCount(len(input.Habits)); err != nil {
		return models.HabitChain{}, err
	}
	habits := make([]models.Habit, len(input.Habits))
	for i, in := range input.Habits {
		habits[i] = models.Habit{Name: in.Name, Description: in.Description, Icon: in.Icon, Position: i}
		if err := cleanHabit(&habits[i]); err != nil {
			return models.HabitChain{}, err
		}
	}

	chains, err := r.loadChains()
	if err != nil {
		return models.HabitChain{}, err
	}
	if nameTaken(chains, name, "") {
		return models.HabitChain{}, apperrors.Validationf("a chain named %q already exists", name)
	}

	if !r.allow(constants.ActionChainCreate, r.limits.ChainCreate) {
		return models.HabitChain{}, fmt.Errorf("%w: creating chains", apperrors.ErrRateLimited)
	}

	ids := r.idGenerator(chains)
	chain := models.HabitChain{
		ID:          ids.Generate(),
		Name:        name,
		Description: description,
		Habits:      habits,
		CreatedAt:   utils.FormatTimestamp(r.now()),
	}
	for i := range chain.Habits {
		chain.Habits[i].ID = ids.Generate()
	}
	chain.Reindex()

	chains = append(chains, chain)
	if err := r.saveChainsAndBadges(chains); err != nil {
		return models.HabitChain{}, err
	}
	logger.Info("Chain created", "id", chain.ID, "habits", len(chain.Habits))
	return chain, nil
}

// UpdateChain replaces the stored chain with the same id. Name, description
// and habits come from updated; progress counters and the completion state of
// habits that already existed are kept from the stored copy. Updating an
// unknown id is a no-op.
func (r *Repository) UpdateChain(updated models.HabitChain) error {
	changed, err := r.updateChain(updated)
	if err != nil {
		return err
	}
	if changed {
		r.notify()
	}
	return nil
}

func (r *Repository) updateChain(updated models.HabitChain) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !idgen.Valid(updated.ID) {
		return false, apperrors.Validationf("invalid chain id %q", updated.ID)
	}
	name, description, err := cleanChainText(updated.Name, updated.Description)
	if err != nil {
		return false, err
	}
	if err := checkHabitCount(len(updated.Habits)); err != nil {
		return false, err
	}
	habits := make([]models.Habit, len(updated.Habits))
	copy(habits, updated.Habits)
	for i := range habits {
		if habits[i].ID != "" && !idgen.Valid(habits[i].ID) {
			return false, apperrors.Validationf("invalid habit id %q", habits[i].ID)
		}
		if err := cleanHabit(&habits[i]); err != nil {
			return false, err
		}
	}

	chains, err := r.loadChains()
	if err != nil {
		return false, err
	}
	idx := -1
	for i := range chains {
		if chains[i].ID == updated.ID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false, nil
	}
	if nameTaken(chains, name, updated.ID) {
		return false, apperrors.Validationf("a chain named %q already exists", name)
	}

	if !r.allow(constants.ActionChainUpdate, r.limits.ChainUpdate) {
		return false, fmt.Errorf("%w: updating chains", apperrors.ErrRateLimited)
	}

	stored := chains[idx]
	ids := r.idGenerator(chains)
	for i := range habits {
		h := &habits[i]
		if prev := stored.FindHabit(h.ID); h.ID != "" && prev != -1 {
			h.Completed = stored.Habits[prev].Completed
			h.CompletedAt = stored.Habits[prev].CompletedAt
		} else {
			if h.ID == "" {
				h.ID = ids.Generate()
			}
			h.Completed = false
			h.CompletedAt = nil
		}
	}

	stored.Name = name
	stored.Description = description
	stored.Habits = habits
	stored.Reindex()
	// Removing the only incomplete habits would leave a finished cycle that
	// can never roll over, so start the next cycle instead.
	if stored.AllCompleted() {
		stored.ResetCycle()
	}
	chains[idx] = stored

	if err := r.saveChainsAndBadges(chains); err != nil {
		return false, err
	}
	logger.Info("Chain updated", "id", stored.ID)
	return true, nil
}

// DeleteChain removes the chain with the given id. Stats and badges earned
// through it are kept.
func (r *Repository) DeleteChain(id string) error {
	removed, err := r.deleteChain(id)
	if err != nil {
		return err
	}
	if removed {
		r.notify()
	}
	return nil
}

func (r *Repository) deleteChain(id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	chains, err := r.loadChains()
	if err != nil {
		return false, err
	}
	kept := chains[:0]
	for _, c := range chains {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(chains) {
		return false, nil
	}
	if err := r.store.SetItem(constants.KeyChains, kept); err != nil {
		return false, err
	}
	logger.Info("Chain deleted", "id", id)
	return true, nil
}

// GetChain returns the chain with the given id. Malformed or unknown ids
// report false.
func (r *Repository) GetChain(id string) (models.HabitChain, bool) {
	if !idgen.Valid(id) {
		logger.Warn("Rejected malformed chain id", "id", id)
		return models.HabitChain{}, false
	}
	for _, c := range r.GetChains() {
		if c.ID == id {
			return c, true
		}
	}
	return models.HabitChain{}, false
}

// GetChains returns every chain with habits in position order.
func (r *Repository) GetChains() []models.HabitChain {
	r.mu.Lock()
	defer r.mu.Unlock()

	chains, err := r.loadChains()
	if err != nil {
		logger.Error("Failed to load chains", "error", err)
		return []models.HabitChain{}
	}
	return chains
}

// FindChain resolves ref as a chain id or, failing that, a case-insensitive
// chain name.
func (r *Repository) FindChain(ref string) (models.HabitChain, bool) {
	chains := r.GetChains()
	for _, c := range chains {
		if c.ID == ref {
			return c, true
		}
	}
	for _, c := range chains {
		if strings.EqualFold(c.Name, strings.TrimSpace(ref)) {
			return c, true
		}
	}
	return models.HabitChain{}, false
}

// saveChainsAndBadges writes chains and re-evaluates badges against them,
// persisting both collections in one batch.
func (r *Repository) saveChainsAndBadges(chains []models.HabitChain) error {
	stats, err := r.loadStats()
	if err != nil {
		return err
	}
	r.evaluateBadges(chains, &stats)
	return r.store.SetItems(map[string]any{
		constants.KeyChains: chains,
		constants.KeyStats:  stats,
	})
}
