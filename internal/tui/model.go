package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitchain/internal/constants"
	"github.com/julianstephens/habitchain/internal/models"
	"github.com/julianstephens/habitchain/internal/repository"
	"github.com/julianstephens/habitchain/internal/tui/components/chains"
)

// DataChangedMsg tells the dashboard to re-read the repository. The tui
// command sends it from a repository subscription.
type DataChangedMsg struct{}

type pollMsg time.Time

type KeyMap struct {
	Tab      key.Binding
	ShiftTab key.Binding
	Refresh  key.Binding
	Help     key.Binding
	Quit     key.Binding
	Confirm  key.Binding
	Cancel   key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next view"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous view"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "yes"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n", "no"),
		),
	}
}

type Model struct {
	repo          *repository.Repository
	state         constants.SessionState
	keys          KeyMap
	help          help.Model
	chainsModel   chains.Model
	stats         models.UserStats
	userName      string
	pollInterval  time.Duration
	pendingDelete *chains.DeleteChainMsg
	status        string
	statusIsError bool
	quitting      bool
	width         int
	height        int
}

// NewModel builds the dashboard over repo. pollInterval controls how often
// the repository is re-read to pick up changes from other processes.
func NewModel(repo *repository.Repository, pollInterval time.Duration) Model {
	if pollInterval <= 0 {
		pollInterval = constants.DefaultPollInterval
	}
	m := Model{
		repo:         repo,
		state:        constants.StateChains,
		keys:         DefaultKeyMap(),
		help:         help.New(),
		chainsModel:  chains.New(nil, 0, 0),
		pollInterval: pollInterval,
	}
	m.refresh()
	return m
}

// refresh re-reads chains, stats and the user name from the repository.
func (m *Model) refresh() {
	m.chainsModel.SetChains(m.repo.GetChains())
	m.stats = m.repo.GetStats()
	m.userName = m.repo.GetUserName()
}

func (m Model) poll() tea.Cmd {
	return tea.Tick(m.pollInterval, func(t time.Time) tea.Msg {
		return pollMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return m.poll()
}

func (m Model) ShortHelp() []key.Binding {
	if m.state == constants.StateConfirmDelete {
		return []key.Binding{m.keys.Confirm, m.keys.Cancel}
	}
	keys := []key.Binding{m.keys.Tab, m.keys.Refresh, m.keys.Quit, m.keys.Help}
	if m.state == constants.StateChains {
		ck := chains.DefaultKeyMap()
		keys = append(keys, ck.Complete, ck.Delete)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Refresh, m.keys.Quit, m.keys.Help}
	ck := chains.DefaultKeyMap()
	return [][]key.Binding{global, {ck.Complete, ck.Delete}}
}
