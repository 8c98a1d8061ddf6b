package progress

import (
	"fmt"

	"github.com/julianstephens/habitchain/internal/cli"
	"github.com/julianstephens/habitchain/internal/constants"
	"github.com/julianstephens/habitchain/internal/repository"
)

type StatsCmd struct{}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	repo, err := ctx.Repository()
	if err != nil {
		return err
	}
	stats := repo.GetStats()

	name := repo.GetUserName()
	if name != "" {
		fmt.Printf("%s's progress\n\n", name)
	}
	xpInLevel := stats.TotalXP % constants.XPPerLevel
	fmt.Printf("  Level:             %d  %s %d/%d XP\n", stats.Level, cli.ProgressBar(xpInLevel, constants.XPPerLevel, 10), xpInLevel, constants.XPPerLevel)
	fmt.Printf("  Total XP:          %d\n", stats.TotalXP)
	fmt.Printf("  Current streak:    %d day(s)\n", stats.StreakDays)
	fmt.Printf("  Longest streak:    %d day(s)\n", stats.LongestStreak)
	fmt.Printf("  Chain completions: %d\n", stats.TotalCompletions)
	fmt.Printf("  Badges:            %d/%d\n", stats.UnlockedCount(), len(stats.Badges))
	return nil
}

type BadgesCmd struct{}

func (c *BadgesCmd) Run(ctx *cli.Context) error {
	repo, err := ctx.Repository()
	if err != nil {
		return err
	}
	stats := repo.GetStats()

	for _, b := range stats.Badges {
		mark := "🔒"
		when := ""
		if b.Unlocked {
			mark = "🏆"
			if b.UnlockedAt != nil {
				when = "  unlocked " + *b.UnlockedAt
			}
		}
		fmt.Printf("  %s %-20s +%-4d %s%s\n", mark, b.Name, repository.BadgeXP(b.ID), b.Description, when)
	}
	return nil
}
