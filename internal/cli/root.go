package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/julianstephens/habitchain/internal/backup"
	"github.com/julianstephens/habitchain/internal/config"
	"github.com/julianstephens/habitchain/internal/constants"
	"github.com/julianstephens/habitchain/internal/keyring"
	"github.com/julianstephens/habitchain/internal/logger"
	"github.com/julianstephens/habitchain/internal/models"
	"github.com/julianstephens/habitchain/internal/repository"
	"github.com/julianstephens/habitchain/internal/securestore"
	"github.com/julianstephens/habitchain/internal/storage"
)

type Context struct {
	Config  config.Config
	Backend storage.Backend

	store *securestore.Store
	repo  *repository.Repository
}

// NewContext wraps an opened (or not yet initialized) backend. The secure
// store and repository are built on first use so commands that only touch
// the backend or keyring work before an integrity key exists.
func NewContext(cfg config.Config, backend storage.Backend) *Context {
	return &Context{Config: cfg, Backend: backend}
}

// Checksummer resolves the checksum implementation for an integrity mode.
func Checksummer(mode string) (securestore.Checksummer, error) {
	switch mode {
	case "", constants.IntegrityChecksum:
		return securestore.RollingChecksum{}, nil
	case constants.IntegrityKeyed:
		key, err := keyring.GetIntegrityKey()
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, fmt.Errorf("integrity mode is keyed but no key is stored, run 'habitchain keyring init': %w", err)
		}
		if err != nil {
			return nil, err
		}
		return securestore.NewKeyedChecksum(key)
	default:
		return nil, fmt.Errorf("unknown integrity mode %q", mode)
	}
}

// SecureStore returns the checksummed store over the backend.
func (c *Context) SecureStore() (*securestore.Store, error) {
	if c.store != nil {
		return c.store, nil
	}
	sum, err := Checksummer(c.Config.IntegrityMode)
	if err != nil {
		return nil, err
	}
	c.store = securestore.New(c.Backend, securestore.Options{
		Checksummer: sum,
		MaxAge:      c.Config.EntryMaxAge,
	})
	return c.store, nil
}

// Repository returns the habit repository, creating it on first use.
func (c *Context) Repository() (*repository.Repository, error) {
	if c.repo != nil {
		return c.repo, nil
	}
	store, err := c.SecureStore()
	if err != nil {
		return nil, err
	}
	c.repo = repository.New(store, repository.Options{Limits: c.Config.RateLimits})
	return c.repo, nil
}

// Backups returns a backup manager for the data directory.
func (c *Context) Backups() (*backup.Manager, error) {
	repo, err := c.Repository()
	if err != nil {
		return nil, err
	}
	return backup.NewManager(repo, c.Config.DataDir, c.Config.MaxBackups), nil
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	mgr, err := c.Backups()
	if err == nil {
		_, err = mgr.CreateBackup()
	}
	if err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// unlockedCommands run without the lockfile. All but tui are read-only; the
// dashboard stays open for long periods and polls for writes made by other
// processes, so holding the lock would block every CLI write.
var unlockedCommands = map[string]bool{
	"chain list":          true,
	"chain show":          true,
	"stats":               true,
	"badges":              true,
	"user show":           true,
	"export":              true,
	"backup list":         true,
	"doctor":              true,
	"keyring status":      true,
	"debug db-path":       true,
	"debug keys":          true,
	"debug dump-entry":    true,
	"debug dump-chain":    true,
	"debug dump-stats":    true,
	"debug dump-settings": true,
	"tui":                 true,
}

// NeedsLock reports whether the kong command path writes to the store.
func NeedsLock(command string) bool {
	return !unlockedCommands[commandPath(command)]
}

// commandPath drops positional placeholders such as "<chain>" from a kong
// command string.
func commandPath(command string) string {
	var parts []string
	for _, f := range strings.Fields(command) {
		if strings.HasPrefix(f, "<") {
			continue
		}
		parts = append(parts, f)
	}
	return strings.Join(parts, " ")
}

// ResolveChain finds a chain by id or case-insensitive name.
func ResolveChain(repo *repository.Repository, ref string) (models.HabitChain, error) {
	chain, ok := repo.FindChain(ref)
	if !ok {
		return models.HabitChain{}, fmt.Errorf("chain %q not found", ref)
	}
	return chain, nil
}

// ResolveHabit finds a habit of chain by id, case-insensitive name or
// 1-based position.
func ResolveHabit(chain models.HabitChain, ref string) (models.Habit, error) {
	for _, h := range chain.Habits {
		if h.ID == ref {
			return h, nil
		}
	}
	for _, h := range chain.Habits {
		if strings.EqualFold(h.Name, strings.TrimSpace(ref)) {
			return h, nil
		}
	}
	if pos, err := strconv.Atoi(ref); err == nil && pos >= 1 && pos <= len(chain.Habits) {
		return chain.Habits[pos-1], nil
	}
	return models.Habit{}, fmt.Errorf("habit %q not found in chain %q", ref, chain.Name)
}

// ProgressBar renders done/total as a fixed-width bar.
func ProgressBar(done, total, width int) string {
	if total <= 0 {
		return strings.Repeat("░", width)
	}
	filled := done * width / total
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// Stdin is read by Confirm. Tests swap it for a fixed reader.
var Stdin io.Reader = os.Stdin

// Confirm prints prompt and reports whether the user answered y or yes.
func Confirm(prompt string) (bool, error) {
	fmt.Print(prompt + " [y/N]: ")
	response, err := bufio.NewReader(Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}
