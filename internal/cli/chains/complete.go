package chains

import (
	"fmt"

	"github.com/julianstephens/habitchain/internal/cli"
)

type CompleteCmd struct {
	Chain string `arg:"" help:"Chain id or name."`
	Habit string `arg:"" optional:"" help:"Habit id, name or position. Defaults to the next habit."`
}

func (c *CompleteCmd) Run(ctx *cli.Context) error {
	repo, err := ctx.Repository()
	if err != nil {
		return err
	}
	chain, err := cli.ResolveChain(repo, c.Chain)
	if err != nil {
		return err
	}

	var habitID, habitName string
	if c.Habit == "" {
		next := chain.NextHabit()
		if next == -1 {
			return fmt.Errorf("chain %q has no habit left to complete", chain.Name)
		}
		habitID, habitName = chain.Habits[next].ID, chain.Habits[next].Name
	} else {
		h, err := cli.ResolveHabit(chain, c.Habit)
		if err != nil {
			return err
		}
		habitID, habitName = h.ID, h.Name
	}

	before := repo.GetStats()
	if !repo.CompleteHabit(chain.ID, habitID) {
		return fmt.Errorf("%q cannot be completed now, habits are completed in order", habitName)
	}
	after := repo.GetStats()

	fmt.Printf("✓ %s\n", habitName)
	if updated, ok := repo.GetChain(chain.ID); ok && updated.TotalCompletions > chain.TotalCompletions {
		fmt.Printf("🔗 Chain %q complete! Streak: %d day(s)\n", updated.Name, updated.Streak)
	}
	if after.Level > before.Level {
		fmt.Printf("⭐ Level up! You are now level %d\n", after.Level)
	}
	for _, b := range after.Badges {
		if prev := before.Badge(b.ID); b.Unlocked && (prev == nil || !prev.Unlocked) {
			fmt.Printf("🏆 Badge unlocked: %s\n", b.Name)
		}
	}
	return nil
}
