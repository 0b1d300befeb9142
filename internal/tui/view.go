package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jask/smartsavernet/internal/agents"
	"github.com/jask/smartsavernet/internal/state"
)

func (m Model) View() string {
	var body string
	switch m.view {
	case viewPlan:
		body = m.renderPlan()
	case viewGoals:
		body = m.renderGoals()
	case viewActivity:
		body = m.renderActivity()
	default:
		body = m.renderOverview()
	}

	parts := []string{
		m.renderHeader(),
		m.renderAgents(),
		body,
		m.renderStatus(),
		footerStyle.Render(m.help.View(m.keys)),
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderHeader() string {
	tabs := make([]string, 0, len(viewNames))
	for i, name := range viewNames {
		if i == m.view {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	line := headerAppStyle.Render(appName) + " " + strings.Join(tabs, tabSepStyle.Render("│"))
	if m.width > 0 {
		return headerBarStyle.Width(m.width).Render(line)
	}
	return headerBarStyle.Render(line)
}

func (m Model) renderAgents() string {
	items := make([]string, 0, len(agents.Order)+1)
	for i, n := range agents.Order {
		if m.enabled[n] {
			items = append(items, agentOnStyle.Render(fmt.Sprintf("[%d] ✓ %s", i+1, n.Title())))
		} else {
			items = append(items, agentOffStyle.Render(fmt.Sprintf("[%d] · %s", i+1, n.Title())))
		}
	}
	items = append(items, dimStyle.Render("debt: "+string(m.strategy)))
	return " " + strings.Join(items, "  ")
}

func (m Model) section(title, content string) string {
	return sectionStyle.Render(titleStyle.Render(title) + "\n" + content)
}

func (m Model) money(v float64) string {
	return amountStyle.Render(m.coach.Policy.Money(v))
}

func (m Model) renderOverview() string {
	s := m.state
	var b strings.Builder
	fmt.Fprintf(&b, "Income %s / month   Savings rate %.0f%%\n", m.money(s.Income), s.SavingsRate*100)
	spent := s.TotalExpenses()
	fmt.Fprintf(&b, "Spent %s   Left %s\n", m.money(spent), m.money(s.Income-spent))
	if !s.BudgetPlan.IsZero() {
		fmt.Fprintf(&b, "Essentials %s   Wants %s   Savings %s\n",
			m.money(s.BudgetPlan.Essentials), m.money(s.BudgetPlan.Wants), m.money(s.BudgetPlan.Savings))
	}
	budget := m.section("Budget", strings.TrimRight(b.String(), "\n"))

	var exp strings.Builder
	cats := s.Categories()
	if len(cats) == 0 {
		exp.WriteString(dimStyle.Render("No expenses yet. Press s to seed mock data."))
	}
	for _, c := range cats {
		fmt.Fprintf(&exp, "%-16s %s\n", c, m.money(s.Expenses[c]))
	}
	expenses := m.section("Expenses", strings.TrimRight(exp.String(), "\n"))

	var al strings.Builder
	if len(s.Alerts) == 0 {
		al.WriteString(dimStyle.Render("None."))
	}
	for _, a := range s.Alerts {
		al.WriteString(alertStyle.Render("! "+a) + "\n")
	}
	alerts := m.section("Alerts", strings.TrimRight(al.String(), "\n"))

	left := lipgloss.JoinVertical(lipgloss.Left, budget, expenses)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, " ", alerts)
}

func (m Model) renderPlan() string {
	s := m.state
	var debt strings.Builder
	if s.DebtPlan == nil {
		debt.WriteString(dimStyle.Render("No debt plan. Run the Debt Agent."))
	} else {
		p := s.DebtPlan
		fmt.Fprintf(&debt, "Method %s, extra %s / month, debt free in %d months\n",
			p.Method, m.money(p.ExtraBudget), p.MonthsToDebtFree)
		for _, step := range p.Schedule {
			months := fmt.Sprint(step.MonthsToPayoff)
			if step.MonthsToPayoff < 0 {
				months = "never"
			}
			fmt.Fprintf(&debt, "%d. %-16s min %s  extra %s  %s months\n",
				step.Order, step.Debt, m.money(step.MinPayment), m.money(step.ExtraPayment), months)
		}
	}

	var sav strings.Builder
	if len(s.SavingsSuggestions) == 0 {
		sav.WriteString(dimStyle.Render("No micro-savings found."))
	}
	for _, sug := range s.SavingsSuggestions {
		fmt.Fprintf(&sav, "%s (~%s)\n", sug.Tip, m.money(sug.EstMonthlySavings))
	}
	if s.SuggestedAutosave > 0 {
		fmt.Fprintf(&sav, "Suggested autosave %s", m.money(s.SuggestedAutosave))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.section("Debt plan", strings.TrimRight(debt.String(), "\n")),
		m.section("Micro-savings", strings.TrimRight(sav.String(), "\n")))
}

func (m Model) renderGoals() string {
	if len(m.state.Goals) == 0 {
		return m.section("Goals", dimStyle.Render("No goals yet. The Goal Agent creates starter goals."))
	}
	layout := m.coach.Policy.UI.DateFormat
	var b strings.Builder
	for _, g := range m.state.Goals {
		due := "-"
		if !g.TargetDate.IsZero() {
			due = g.TargetDate.Format(layout)
		}
		projected := "-"
		if g.ProjectedDate != nil {
			projected = g.ProjectedDate.Format(layout)
		}
		track := agentOnStyle.Render("on track")
		if !g.OnTrack {
			track = warningStyle.Render("behind")
		}
		fmt.Fprintf(&b, "%-16s %s / %s  due %s  projected %s  %s\n",
			g.Name, m.money(g.SavedAmount), m.money(g.TargetAmount), due, projected, track)
	}
	return m.section("Goals", strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderActivity() string {
	var b strings.Builder
	if len(m.state.Messages) == 0 {
		b.WriteString(dimStyle.Render("Run the agents to see their notes."))
	}
	for _, msg := range m.state.Messages {
		style := infoStyle
		switch msg.Level {
		case state.LevelWarning:
			style = warningStyle
		case state.LevelAlert:
			style = alertStyle
		}
		b.WriteString(style.Render(msg.Agent+":") + " " + msg.Content + "\n")
	}
	out := m.section("Messages", strings.TrimRight(b.String(), "\n"))

	if m.report != nil {
		var r strings.Builder
		for _, run := range m.report.Runs {
			switch {
			case run.Skipped:
				fmt.Fprintf(&r, "%-8s %s\n", run.Agent, dimStyle.Render("skipped"))
			case run.Err != "":
				fmt.Fprintf(&r, "%-8s %s\n", run.Agent, alertStyle.Render(run.Err))
			default:
				fmt.Fprintf(&r, "%-8s %s\n", run.Agent, run.Duration)
			}
		}
		out = lipgloss.JoinVertical(lipgloss.Left, out, m.section("Last pass", strings.TrimRight(r.String(), "\n")))
	}
	return out
}

func (m Model) renderStatus() string {
	text := m.status
	if m.busy {
		text += " ..."
	}
	style := statusBarStyle
	if m.statusErr {
		style = statusErrStyle
	}
	if m.width > 0 {
		style = style.Width(m.width)
	}
	return style.Render(strings.ReplaceAll(text, "\n", " "))
}
