package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitchain/internal/constants"
	apperrors "github.com/julianstephens/habitchain/internal/errors"
	"github.com/julianstephens/habitchain/internal/logger"
	"github.com/julianstephens/habitchain/internal/tui/components/chains"
)

var views = []constants.SessionState{constants.StateChains, constants.StateStats, constants.StateBadges}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.chainsModel.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case pollMsg:
		m.refresh()
		return m, m.poll()

	case DataChangedMsg:
		m.refresh()
		return m, nil

	case chains.CompleteNextMsg:
		m.completeHabit(msg)
		return m, nil

	case chains.DeleteChainMsg:
		m.pendingDelete = &msg
		m.state = constants.StateConfirmDelete
		return m, nil

	case tea.KeyMsg:
		if handled, cmd := m.handleKey(msg); handled {
			return m, cmd
		}
	}

	if m.state == constants.StateChains {
		var cmd tea.Cmd
		m.chainsModel, cmd = m.chainsModel.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	if m.state == constants.StateConfirmDelete {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			m.deletePending()
			m.state = constants.StateChains
		case key.Matches(msg, m.keys.Cancel):
			m.pendingDelete = nil
			m.state = constants.StateChains
		}
		return true, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return true, tea.Quit
	case key.Matches(msg, m.keys.Tab):
		m.state = cycle(m.state, 1)
		return true, nil
	case key.Matches(msg, m.keys.ShiftTab):
		m.state = cycle(m.state, -1)
		return true, nil
	case key.Matches(msg, m.keys.Refresh):
		m.refresh()
		m.setStatus("Refreshed", false)
		return true, nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return true, nil
	}
	return false, nil
}

func cycle(state constants.SessionState, step int) constants.SessionState {
	for i, v := range views {
		if v == state {
			return views[(i+step+len(views))%len(views)]
		}
	}
	return constants.StateChains
}

func (m *Model) completeHabit(msg chains.CompleteNextMsg) {
	before, _ := m.repo.GetChain(msg.ChainID)
	level := m.stats.Level

	if !m.repo.CompleteHabit(msg.ChainID, msg.HabitID) {
		m.setStatus("That habit cannot be completed yet", true)
		return
	}
	m.refresh()

	after, _ := m.repo.GetChain(msg.ChainID)
	switch {
	case after.TotalCompletions > before.TotalCompletions:
		m.setStatus(fmt.Sprintf("🔗 %s complete! Streak: %d", after.Name, after.Streak), false)
	default:
		m.setStatus("✓ Habit completed", false)
	}
	if m.stats.Level > level {
		m.setStatus(fmt.Sprintf("%s  ⭐ Level %d!", m.status, m.stats.Level), false)
	}
}

func (m *Model) deletePending() {
	if m.pendingDelete == nil {
		return
	}
	target := *m.pendingDelete
	m.pendingDelete = nil
	if err := m.repo.DeleteChain(target.ID); err != nil {
		logger.Error("Failed to delete chain", "id", target.ID, "error", err)
		m.setStatus(apperrors.Title(err), true)
		return
	}
	m.refresh()
	m.setStatus(fmt.Sprintf("Deleted %s", target.Name), false)
}

func (m *Model) setStatus(status string, isError bool) {
	m.status = status
	m.statusIsError = isError
}
