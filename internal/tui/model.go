// Package tui is the terminal front end for the coach.
package tui

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/jask/smartsavernet/internal/agents"
	"github.com/jask/smartsavernet/internal/logging"
	"github.com/jask/smartsavernet/internal/orchestrator"
	"github.com/jask/smartsavernet/internal/prefs"
	"github.com/jask/smartsavernet/internal/service"
	"github.com/jask/smartsavernet/internal/state"
)

const appName = "SmartSaverNet"

const (
	viewOverview = iota
	viewPlan
	viewGoals
	viewActivity
	viewCount
)

var viewNames = []string{"Overview", "Plan", "Goals", "Activity"}

// Options configures New.
type Options struct {
	Coach     *service.Coach
	PrefsPath string
	// Defaults are the agents enabled when no preference is saved.
	Defaults []agents.Name
	Log      *slog.Logger
}

// Model is the bubbletea model.
type Model struct {
	ctx       context.Context
	coach     *service.Coach
	log       *slog.Logger
	prefsPath string
	sid       string

	enabled  map[agents.Name]bool
	strategy state.Strategy
	view     int

	state     state.UserState
	report    *orchestrator.Report
	status    string
	statusErr bool
	busy      bool

	width  int
	height int
	keys   keyMap
	help   help.Model
}

type stateMsg struct {
	state  state.UserState
	report *orchestrator.Report
	status string
}

type errMsg struct{ err error }

// New restores preferences and prepares the model. A broken prefs file is reported, not fatal.
func New(ctx context.Context, opts Options) Model {
	m := Model{
		ctx:       ctx,
		coach:     opts.Coach,
		log:       logging.Named(opts.Log, "tui"),
		prefsPath: opts.PrefsPath,
		enabled:   map[agents.Name]bool{},
		strategy:  opts.Coach.Policy.Debt.DefaultStrategy,
		keys:      newKeyMap(),
		help:      help.New(),
	}

	p, err := prefs.Load(m.prefsPath)
	if err != nil {
		m.setError(err)
		p = prefs.Prefs{}
	}

	defaults := opts.Defaults
	if len(defaults) == 0 {
		defaults = agents.Order
	}
	if p.EnabledAgents != nil {
		if names, err := agents.ParseNames(p.EnabledAgents); err == nil {
			defaults = names
		} else {
			m.setError(fmt.Errorf("prefs: %w", err))
		}
	}
	for _, n := range defaults {
		m.enabled[n] = true
	}
	if p.DebtStrategy != "" {
		if st, err := state.ParseStrategy(p.DebtStrategy); err == nil {
			m.strategy = st
		}
	}

	m.sid = p.SessionID
	if _, err := uuid.Parse(m.sid); err != nil {
		m.sid = uuid.NewString()
		m.savePrefs()
	}
	return m
}

// Run starts the program on the alternate screen and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	_, err := tea.NewProgram(New(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return m.loadState()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil
	case stateMsg:
		m.busy = false
		m.state = msg.state
		if msg.report != nil {
			m.report = msg.report
		}
		if msg.status != "" {
			m.setStatus(msg.status)
		}
		return m, nil
	case errMsg:
		m.busy = false
		m.setError(msg.err)
		return m, nil
	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.NextTab):
		m.view = (m.view + 1) % viewCount
		return m, nil
	case key.Matches(msg, m.keys.PrevTab):
		m.view = (m.view + viewCount - 1) % viewCount
		return m, nil
	case key.Matches(msg, m.keys.Toggle):
		idx := int(msg.String()[0] - '1')
		n := agents.Order[idx]
		m.enabled[n] = !m.enabled[n]
		m.savePrefs()
		return m, nil
	case key.Matches(msg, m.keys.Strategy):
		if m.strategy == state.StrategyAvalanche {
			m.strategy = state.StrategySnowball
		} else {
			m.strategy = state.StrategyAvalanche
		}
		m.savePrefs()
		m.setStatus("Debt strategy: " + string(m.strategy))
		return m, nil
	}

	if m.busy {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Run):
		m.busy = true
		m.setStatus("Running agents")
		return m, m.runPass()
	case key.Matches(msg, m.keys.Reset):
		m.busy = true
		m.report = nil
		return m, m.resetState()
	case key.Matches(msg, m.keys.Seed):
		m.busy = true
		m.setStatus("Seeding mock transactions")
		return m, m.seed()
	}
	return m, nil
}

// enabledNames lists the enabled agents in pipeline order. It is never nil so that
// an empty selection skips every agent.
func (m Model) enabledNames() []agents.Name {
	out := make([]agents.Name, 0, len(agents.Order))
	for _, n := range agents.Order {
		if m.enabled[n] {
			out = append(out, n)
		}
	}
	return out
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{
		EnabledAgents: agents.Strings(m.enabledNames()),
		DebtStrategy:  string(m.strategy),
		SessionID:     m.sid,
	}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.log.Warn("save prefs", "error", err)
		m.setError(fmt.Errorf("save prefs: %w", err))
	}
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
}

func (m Model) loadState() tea.Cmd {
	ctx, coach, sid := m.ctx, m.coach, m.sid
	return func() tea.Msg {
		s, err := coach.State(ctx, sid)
		if err != nil {
			return errMsg{err}
		}
		var report *orchestrator.Report
		if r, ok := coach.LastReport(sid); ok {
			report = &r
		}
		return stateMsg{state: s, report: report}
	}
}

func (m Model) runPass() tea.Cmd {
	ctx, coach, sid := m.ctx, m.coach, m.sid
	req := service.RunRequest{Enabled: m.enabledNames(), Strategy: m.strategy}
	return func() tea.Msg {
		s, report, err := coach.Run(ctx, sid, req)
		if err != nil {
			return errMsg{err}
		}
		return stateMsg{
			state:  s,
			report: &report,
			status: fmt.Sprintf("Ran %d agent(s), %d alert(s)", len(report.Ran()), len(s.Alerts)),
		}
	}
}

func (m Model) resetState() tea.Cmd {
	ctx, coach, sid := m.ctx, m.coach, m.sid
	return func() tea.Msg {
		s, err := coach.Reset(ctx, sid)
		if err != nil {
			return errMsg{err}
		}
		return stateMsg{state: s, status: "State reset"}
	}
}

func (m Model) seed() tea.Cmd {
	ctx, coach, sid := m.ctx, m.coach, m.sid
	return func() tea.Msg {
		n, s, err := coach.Seed(ctx, sid, 0)
		if err != nil {
			return errMsg{err}
		}
		return stateMsg{state: s, status: fmt.Sprintf("Seeded %d mock transactions", n)}
	}
}
