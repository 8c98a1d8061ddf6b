package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitchain/internal/cli"
	"github.com/julianstephens/habitchain/internal/constants"
	"github.com/julianstephens/habitchain/internal/repository"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateChains:
		content = docStyle.Render(m.chainsModel.View())
	case constants.StateStats:
		content = docStyle.Render(m.viewStats())
	case constants.StateBadges:
		content = docStyle.Render(m.viewBadges())
	case constants.StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewHeader() string {
	var tabs []string
	titles := []string{"Chains", "Stats", "Badges"}
	for i, title := range titles {
		if m.state == views[i] {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	level := levelStyle.Render(fmt.Sprintf("Lv %d · %d XP", m.stats.Level, m.stats.TotalXP))
	return lipgloss.JoinHorizontal(lipgloss.Top, append(tabs, level)...)
}

func (m Model) viewStats() string {
	var b strings.Builder
	if m.userName != "" {
		fmt.Fprintf(&b, "%s\n\n", titleStyle.Render(m.userName+"'s progress"))
	}
	xpInLevel := m.stats.TotalXP % constants.XPPerLevel
	fmt.Fprintf(&b, "Level %d  %s  %d/%d XP\n\n", m.stats.Level,
		cli.ProgressBar(xpInLevel, constants.XPPerLevel, 20), xpInLevel, constants.XPPerLevel)
	fmt.Fprintf(&b, "Current streak:    %d day(s)\n", m.stats.StreakDays)
	fmt.Fprintf(&b, "Longest streak:    %d day(s)\n", m.stats.LongestStreak)
	fmt.Fprintf(&b, "Chain completions: %d\n", m.stats.TotalCompletions)
	fmt.Fprintf(&b, "Badges:            %d/%d\n", m.stats.UnlockedCount(), len(m.stats.Badges))
	return b.String()
}

func (m Model) viewBadges() string {
	var b strings.Builder
	for _, badge := range m.stats.Badges {
		line := fmt.Sprintf("%-20s +%-4d %s", badge.Name, repository.BadgeXP(badge.ID), badge.Description)
		if badge.Unlocked {
			b.WriteString(unlockedStyle.Render("🏆 " + line))
		} else {
			b.WriteString(lockedStyle.Render("🔒 " + line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewConfirmDelete() string {
	name := ""
	if m.pendingDelete != nil {
		name = m.pendingDelete.Name
	}
	return lipgloss.Place(m.width, max(m.height-4, 0),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(fmt.Sprintf("Delete chain %q?", name)),
			warningStyle.Render("Its streak cannot be recovered."),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}

func (m Model) viewStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusIsError {
		return dangerStyle.Render(m.status)
	}
	return statusStyle.Render(m.status)
}
