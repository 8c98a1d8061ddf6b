package system

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/habitchain/internal/cli"
	"github.com/julianstephens/habitchain/internal/constants"
	"github.com/julianstephens/habitchain/internal/idgen"
	"github.com/julianstephens/habitchain/internal/keyring"
	"github.com/julianstephens/habitchain/internal/lock"
	"github.com/julianstephens/habitchain/internal/storage/sqlite"
	"github.com/julianstephens/habitchain/internal/utils"
	"github.com/julianstephens/habitchain/internal/validation"
)

type DoctorCmd struct{}

type check struct {
	name     string
	run      func(ctx *cli.Context) error
	warnOnly bool
	needsDB  bool
}

var checks = []check{
	{name: "Store reachable", run: checkStoreReachable},
	{name: "Schema version", run: checkSchemaVersion, needsDB: true},
	{name: "Integrity key", run: checkIntegrityKey},
	{name: "Entry integrity", run: checkEntryIntegrity, needsDB: true},
	{name: "Chain validation", run: checkChains, needsDB: true},
	{name: "Clock/timezone", run: checkClockTimezone, needsDB: true},
	{name: "Backups present", run: checkBackupsPresent, warnOnly: true, needsDB: true},
	{name: "Writer lock", run: checkLock, warnOnly: true},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	reachable := true
	for _, c := range checks {
		if c.needsDB && !reachable {
			fmt.Printf("⊘ %s: SKIPPED (store not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
			if c.name == "Store reachable" {
				reachable = false
			}
		}
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkStoreReachable(ctx *cli.Context) error {
	if err := ctx.Backend.Load(); err != nil {
		return fmt.Errorf("failed to load store: %w", err)
	}
	if _, err := ctx.Backend.Keys(); err != nil {
		return fmt.Errorf("failed to read store: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	sqliteStore, ok := ctx.Backend.(*sqlite.Store)
	if !ok {
		// only the SQLite backend has a schema
		return nil
	}

	current, latest, err := sqliteStore.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

func checkIntegrityKey(ctx *cli.Context) error {
	if ctx.Config.IntegrityMode != constants.IntegrityKeyed {
		return nil
	}
	if _, err := keyring.GetIntegrityKey(); err != nil {
		return fmt.Errorf("integrity mode is keyed but the key is unusable: %w", err)
	}
	return nil
}

func checkEntryIntegrity(ctx *cli.Context) error {
	store, err := ctx.SecureStore()
	if err != nil {
		return err
	}
	bad, err := store.Verify()
	if err != nil {
		return err
	}
	if len(bad) > 0 {
		return fmt.Errorf("entries failing verification (they will be reset on next read): %s", strings.Join(bad, ", "))
	}
	return nil
}

func checkChains(ctx *cli.Context) error {
	repo, err := ctx.Repository()
	if err != nil {
		return err
	}

	var problems []string
	names := make(map[string]bool)
	for _, chain := range repo.GetChains() {
		if err := validation.ValidateStruct(chain); err != nil {
			problems = append(problems, fmt.Sprintf("chain %s: %v", chain.ID, err))
		}
		if !idgen.Valid(chain.ID) {
			problems = append(problems, fmt.Sprintf("chain %q has a malformed id", chain.Name))
		}
		key := strings.ToLower(chain.Name)
		if names[key] {
			problems = append(problems, fmt.Sprintf("duplicate chain name %q", chain.Name))
		}
		names[key] = true
		for i, h := range chain.Habits {
			if h.Position != i {
				problems = append(problems, fmt.Sprintf("chain %q: habit %q has position %d, expected %d", chain.Name, h.Name, h.Position, i))
			}
		}
		if chain.LongestStreak < chain.Streak {
			problems = append(problems, fmt.Sprintf("chain %q: longest streak below current streak", chain.Name))
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	repo, err := ctx.Repository()
	if err != nil {
		return err
	}
	tz := repo.GetSettings().Timezone
	if _, err := utils.LoadLocation(tz); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	now := time.Now()
	if now.Year() < 2020 {
		return fmt.Errorf("system clock looks wrong: %s", now.Format(time.RFC3339))
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr, err := ctx.Backups()
	if err != nil {
		return err
	}
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'habitchain backup create'")
	}
	return nil
}

func checkLock(ctx *cli.Context) error {
	if _, err := os.Stat(lock.Path(ctx.Config.DataDir)); err == nil {
		return fmt.Errorf("lockfile present at %s, another habitchain process may be running", lock.Path(ctx.Config.DataDir))
	}
	return nil
}
