package chains

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitchain/internal/models"
)

// CompleteNextMsg asks for the next habit of a chain to be completed.
type CompleteNextMsg struct {
	ChainID string
	HabitID string
}

type DeleteChainMsg struct {
	ID   string
	Name string
}

type Item struct {
	Chain models.HabitChain
}

func (i Item) Title() string {
	done, total := i.Chain.CompletedCount(), len(i.Chain.Habits)
	mark := "○"
	if done > 0 {
		mark = "◐"
	}
	return fmt.Sprintf("%s %s  %d/%d  🔥 %d", mark, i.Chain.Name, done, total, i.Chain.Streak)
}

func (i Item) Description() string {
	var parts []string
	for _, h := range i.Chain.Habits {
		if h.Completed {
			parts = append(parts, "✓ "+h.Name)
		} else {
			parts = append(parts, "· "+h.Name)
		}
	}
	return strings.Join(parts, "  →  ")
}

func (i Item) FilterValue() string { return i.Chain.Name }

type KeyMap struct {
	Complete key.Binding
	Delete   key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Complete: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter/space", "complete next habit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete chain"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(chains []models.HabitChain, width, height int) Model {
	l := list.New(toItems(chains), list.NewDefaultDelegate(), width, height)
	l.Title = "Chains"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	// the dashboard owns quitting
	l.KeyMap.Quit.SetEnabled(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Complete, keys.Delete}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Complete, keys.Delete}
	}

	return Model{list: l, keys: keys}
}

func toItems(chains []models.HabitChain) []list.Item {
	items := make([]list.Item, len(chains))
	for i, c := range chains {
		items[i] = Item{Chain: c}
	}
	return items
}

// SetChains replaces the list contents, keeping the cursor in range.
func (m *Model) SetChains(chains []models.HabitChain) {
	m.list.SetItems(toItems(chains))
}

// Selected returns the chain under the cursor.
func (m Model) Selected() (models.HabitChain, bool) {
	i, ok := m.list.SelectedItem().(Item)
	if !ok {
		return models.HabitChain{}, false
	}
	return i.Chain, true
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.Complete):
			if c, ok := m.Selected(); ok {
				if next := c.NextHabit(); next != -1 {
					habitID := c.Habits[next].ID
					return m, func() tea.Msg { return CompleteNextMsg{ChainID: c.ID, HabitID: habitID} }
				}
			}
			return m, nil
		case key.Matches(msg, m.keys.Delete):
			if c, ok := m.Selected(); ok {
				return m, func() tea.Msg { return DeleteChainMsg{ID: c.ID, Name: c.Name} }
			}
			return m, nil
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No chains yet.\n  Create one with 'habitchain chain add'."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
