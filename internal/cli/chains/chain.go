package chains

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/julianstephens/habitchain/internal/cli"
	"github.com/julianstephens/habitchain/internal/models"
	"github.com/julianstephens/habitchain/internal/repository"
)

type ChainAddCmd struct {
	Name        string   `arg:"" optional:"" help:"Name of the chain."`
	Description string   `help:"Chain description." short:"d"`
	Habit       []string `help:"Habit name, in completion order. Repeat for each habit." short:"H"`
}

func (c *ChainAddCmd) Run(ctx *cli.Context) error {
	repo, err := ctx.Repository()
	if err != nil {
		return err
	}

	input := repository.ChainInput{Name: c.Name, Description: c.Description}
	for _, h := range c.Habit {
		input.Habits = append(input.Habits, repository.HabitInput{Name: h})
	}
	if len(input.Habits) == 0 {
		if input, err = runChainForm(input); err != nil {
			return err
		}
	}

	chain, err := repo.AddChain(input)
	if err != nil {
		return fmt.Errorf("failed to add chain: %w", err)
	}

	fmt.Printf("✓ Chain %q created with %d habit(s) (id: %s)\n", chain.Name, len(chain.Habits), chain.ID)
	return nil
}

type ChainEditCmd struct {
	Chain       string   `arg:"" help:"Chain id or name."`
	Name        *string  `help:"New chain name."`
	Description *string  `help:"New chain description."`
	AddHabit    []string `help:"Append a habit. Repeat for each habit."`
	RemoveHabit []string `help:"Remove a habit by id, name or position."`
	RenameHabit []string `help:"Rename a habit, as <habit>=<new name>."`
	Move        []string `help:"Move a habit to a 1-based position, as <habit>=<position>."`
}

func (c *ChainEditCmd) Run(ctx *cli.Context) error {
	repo, err := ctx.Repository()
	if err != nil {
		return err
	}
	chain, err := cli.ResolveChain(repo, c.Chain)
	if err != nil {
		return err
	}

	if c.Name != nil {
		chain.Name = *c.Name
	}
	if c.Description != nil {
		chain.Description = *c.Description
	}
	if err := c.applyHabitEdits(&chain); err != nil {
		return err
	}

	if err := repo.UpdateChain(chain); err != nil {
		return fmt.Errorf("failed to update chain: %w", err)
	}
	fmt.Printf("✓ Chain %q updated\n", chain.Name)
	return nil
}

func (c *ChainEditCmd) applyHabitEdits(chain *models.HabitChain) error {
	for _, arg := range c.RenameHabit {
		ref, name, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("invalid --rename-habit %q, expected <habit>=<new name>", arg)
		}
		h, err := cli.ResolveHabit(*chain, ref)
		if err != nil {
			return err
		}
		chain.Habits[chain.FindHabit(h.ID)].Name = name
	}

	for _, ref := range c.RemoveHabit {
		h, err := cli.ResolveHabit(*chain, ref)
		if err != nil {
			return err
		}
		i := chain.FindHabit(h.ID)
		chain.Habits = append(chain.Habits[:i], chain.Habits[i+1:]...)
	}

	for _, arg := range c.Move {
		ref, posStr, ok := strings.Cut(arg, "=")
		pos, err := strconv.Atoi(posStr)
		if !ok || err != nil {
			return fmt.Errorf("invalid --move %q, expected <habit>=<position>", arg)
		}
		h, err := cli.ResolveHabit(*chain, ref)
		if err != nil {
			return err
		}
		moveHabit(chain, chain.FindHabit(h.ID), pos-1)
	}

	for _, name := range c.AddHabit {
		chain.Habits = append(chain.Habits, models.Habit{Name: name})
	}

	for i := range chain.Habits {
		chain.Habits[i].Position = i
	}
	return nil
}

// moveHabit moves the habit at index from to index to, clamped to the
// chain's bounds.
func moveHabit(chain *models.HabitChain, from, to int) {
	to = max(0, min(to, len(chain.Habits)-1))
	h := chain.Habits[from]
	habits := append(chain.Habits[:from:from], chain.Habits[from+1:]...)
	habits = append(habits[:to], append([]models.Habit{h}, habits[to:]...)...)
	chain.Habits = habits
}

type ChainDeleteCmd struct {
	Chain string `arg:"" help:"Chain id or name."`
	Yes   bool   `help:"Skip the confirmation prompt." short:"y"`
}

func (c *ChainDeleteCmd) Run(ctx *cli.Context) error {
	repo, err := ctx.Repository()
	if err != nil {
		return err
	}
	chain, err := cli.ResolveChain(repo, c.Chain)
	if err != nil {
		return err
	}

	if !c.Yes {
		ok, err := cli.Confirm(fmt.Sprintf("Delete chain %q (streak %d)?", chain.Name, chain.Streak))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Delete cancelled.")
			return nil
		}
	}

	ctx.PerformAutomaticBackup()

	if err := repo.DeleteChain(chain.ID); err != nil {
		return fmt.Errorf("failed to delete chain: %w", err)
	}
	fmt.Printf("✓ Chain %q deleted\n", chain.Name)
	return nil
}

type ChainListCmd struct{}

func (c *ChainListCmd) Run(ctx *cli.Context) error {
	repo, err := ctx.Repository()
	if err != nil {
		return err
	}

	chains := repo.GetChains()
	if len(chains) == 0 {
		fmt.Println("No chains yet. Create one with 'habitchain chain add'.")
		return nil
	}

	fmt.Printf("%-15s  %-24s  %-12s  %6s  %7s\n", "ID", "NAME", "PROGRESS", "STREAK", "LONGEST")
	for _, chain := range chains {
		done, total := chain.CompletedCount(), len(chain.Habits)
		fmt.Printf("%-15s  %-24s  %s %d/%d  %6d  %7d\n",
			chain.ID, truncate(chain.Name, 24), cli.ProgressBar(done, total, 6), done, total,
			chain.Streak, chain.LongestStreak)
	}
	return nil
}

type ChainShowCmd struct {
	Chain string `arg:"" help:"Chain id or name."`
}

func (c *ChainShowCmd) Run(ctx *cli.Context) error {
	repo, err := ctx.Repository()
	if err != nil {
		return err
	}
	chain, err := cli.ResolveChain(repo, c.Chain)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s)\n", chain.Name, chain.ID)
	if chain.Description != "" {
		fmt.Printf("  %s\n", chain.Description)
	}
	fmt.Printf("\n  Streak: %d  Longest: %d  Completions: %d\n", chain.Streak, chain.LongestStreak, chain.TotalCompletions)
	if chain.LastCompleted != nil {
		fmt.Printf("  Last completed: %s\n", *chain.LastCompleted)
	}
	fmt.Println()

	next := chain.NextHabit()
	for i, h := range chain.Habits {
		mark := "○"
		if h.Completed {
			mark = "✓"
		}
		suffix := ""
		if i == next {
			suffix = "  ← next"
		}
		fmt.Printf("  %d. %s %s%s\n", h.Position+1, mark, h.Name, suffix)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
