package policy

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/jask/smartsavernet/internal/calc"
)

// Template names agents render their headline message with.
const (
	TmplBudget  = "budget"
	TmplSavings = "savings"
	TmplDebt    = "debt"
	TmplGoals   = "goals"
	TmplAlerts  = "alerts"
	TmplAdvice  = "advice"
)

var defaultTemplates = map[string]string{
	TmplBudget:  `Set your monthly budget: Essentials {{money .Essentials}}, Wants {{money .Wants}}, Savings {{money .Savings}} ({{pct .Rate}}).`,
	TmplSavings: `{{if .Count}}Found {{.Count}} micro-saving{{if gt .Count 1}}s{{end}} (e.g. {{.Example}}). Recommend auto-transfer of {{money .Autosave}} on the 1st each month.{{else}}No obvious waste detected.{{if .Planned}} Keep the planned {{money .Planned}} savings transfer on the 1st.{{end}}{{end}}`,
	TmplDebt:    `Using {{.Method}} method. Next focus: {{.Focus}}{{if .Extra}} with extra {{money .Extra}}{{end}}.{{if ge .Months 0}} Debt-free in {{.Months}} month{{if ne .Months 1}}s{{end}}.{{end}}`,
	TmplGoals:   `{{if .Name}}Updated goals. Closest: {{.Name}} at {{.Percent}}% (by {{.Deadline}}){{if .Projected}}, projected {{.Projected}}{{end}}.{{else}}Updated goals.{{end}}`,
	TmplAlerts:  `{{if .Count}}{{.Count}} alert(s) this period.{{else}}No overspending detected.{{end}}`,
	TmplAdvice:  `{{.Summary}}`,
}

func (p *Policy) compile() error {
	p.buildTaxonomy()
	funcs := template.FuncMap{
		"money":  p.Money,
		"amount": calc.FormatAmount,
		"pct":    func(f float64) string { return fmt.Sprintf("%.0f%%", f*100) },
	}
	p.tmpl = make(map[string]*template.Template, len(defaultTemplates))
	for name, text := range defaultTemplates {
		if custom, ok := p.Templates[name]; ok && strings.TrimSpace(custom) != "" {
			text = custom
		}
		t, err := template.New(name).Funcs(funcs).Option("missingkey=zero").Parse(text)
		if err != nil {
			return fmt.Errorf("template %s: %w", name, err)
		}
		p.tmpl[name] = t
	}
	return nil
}

// Render executes a message template with data.
func (p *Policy) Render(name string, data any) (string, error) {
	t, ok := p.tmpl[name]
	if !ok {
		return "", fmt.Errorf("unknown template %q", name)
	}
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return b.String(), nil
}
