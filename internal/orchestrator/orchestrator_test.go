package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/jask/smartsavernet/internal/agents"
	"github.com/jask/smartsavernet/internal/policy"
	"github.com/jask/smartsavernet/internal/state"
)

func clock() time.Time { return time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC) }

func scenario() state.UserState {
	return state.UserState{
		Income:   4000,
		Expenses: map[string]float64{"rent": 1200, "food": 400, "subscriptions": 50},
	}
}

func newOrchestrator(t *testing.T, opts ...Option) *Orchestrator {
	t.Helper()
	p, err := policy.Parse([]byte("thresholds:\n  food: 350\n"))
	require.NoError(t, err)
	return New(agents.All(p, clock), opts...)
}

type fakeAgent struct {
	name agents.Name
	step func(*state.UserState) (string, error)
}

func (f fakeAgent) Name() agents.Name { return f.name }
func (f fakeAgent) Title() string     { return f.name.Title() }
func (f fakeAgent) Step(_ context.Context, s *state.UserState) (string, error) {
	return f.step(s)
}

func TestRunScenario(t *testing.T) {
	o := newOrchestrator(t)
	in := scenario()

	out, report, err := o.Run(context.Background(), in, nil)
	require.NoError(t, err)
	require.Equal(t, Done, o.Status())
	require.Equal(t, []string{"food over by 50"}, out.Alerts)
	require.Equal(t, 1600.0, out.BudgetPlan.Essentials)
	require.Equal(t, agents.Order, report.Ran())
	require.Empty(t, report.Failures)

	require.Empty(t, in.Alerts, "input must not be mutated")
	require.True(t, in.BudgetPlan.IsZero())

	var authors []string
	for _, m := range out.Messages {
		if m.Level == state.LevelInfo {
			authors = append(authors, m.Agent)
		}
	}
	require.Equal(t, []string{"Budget Agent", "Savings Agent", "Debt Agent", "Goal Agent", "Spending Alert Agent", "Advice Agent"}, authors)
}

func TestRunIsIdempotent(t *testing.T) {
	o := newOrchestrator(t)

	first, _, err := o.Run(context.Background(), scenario(), nil)
	require.NoError(t, err)
	second, _, err := o.Run(context.Background(), scenario(), nil)
	require.NoError(t, err)
	require.Equal(t, first.BudgetPlan, second.BudgetPlan)
	require.Equal(t, first.Alerts, second.Alerts)

	again, _, err := o.Run(context.Background(), first, nil)
	require.NoError(t, err)
	require.Equal(t, first.BudgetPlan, again.BudgetPlan)
	require.Equal(t, first.Alerts, again.Alerts)
	require.Len(t, again.Goals, len(first.Goals))
}

func TestRunSkipsDisabledAgents(t *testing.T) {
	o := newOrchestrator(t)
	out, report, err := o.Run(context.Background(), scenario(), []agents.Name{agents.Alerts})
	require.NoError(t, err)
	require.Equal(t, []agents.Name{agents.Alerts}, report.Ran())
	require.True(t, out.BudgetPlan.IsZero())
	require.Equal(t, []string{"food over by 50"}, out.Alerts)
	require.Len(t, report.Runs, len(agents.Order))
}

func TestRunDropsOutputOfDisabledAgents(t *testing.T) {
	o := newOrchestrator(t)
	in := state.Default()
	in.Expenses = map[string]float64{"rent": 12000, "coffee": 900}
	in.SpendCounts = map[string]int{"coffee": 10}

	first, _, err := o.Run(context.Background(), in, nil)
	require.NoError(t, err)
	require.NotNil(t, first.DebtPlan)
	require.Equal(t, "Credit Card", first.DebtPlan.Focus)
	require.False(t, first.BudgetPlan.IsZero())

	second, _, err := o.Run(context.Background(), first, []agents.Name{agents.Advice})
	require.NoError(t, err)
	require.Nil(t, second.DebtPlan)
	require.True(t, second.BudgetPlan.IsZero())
	require.Empty(t, second.SavingsSuggestions)
	require.Zero(t, second.SuggestedAutosave)
	for _, m := range second.Messages {
		require.NotContains(t, m.Content, first.DebtPlan.Focus)
		require.NotContains(t, m.Content, "automatic transfer")
	}
}

func TestRunRejectsUnknownAgent(t *testing.T) {
	o := newOrchestrator(t)
	_, _, err := o.Run(context.Background(), scenario(), []agents.Name{"horoscope"})
	require.Error(t, err)
	require.Equal(t, Idle, o.Status())
}

func TestRunAbortsOnInvalidState(t *testing.T) {
	o := newOrchestrator(t)
	in := scenario()
	in.Income = -5

	out, _, err := o.Run(context.Background(), in, nil)
	var verr *state.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, Idle, o.Status())
	require.Empty(t, out.Messages)
}

func TestRunRecoversAgentFailures(t *testing.T) {
	list := []agents.Agent{
		fakeAgent{name: agents.Budget, step: func(*state.UserState) (string, error) { panic("boom") }},
		fakeAgent{name: agents.Debt, step: func(*state.UserState) (string, error) { return "", errors.New("no rates") }},
		fakeAgent{name: agents.Advice, step: func(s *state.UserState) (string, error) {
			return "saw " + s.Alerts[0], nil
		}},
	}
	out, report, err := New(list).Run(context.Background(), scenario(), nil)
	require.NoError(t, err)
	require.Len(t, report.Failures, 2)
	require.True(t, report.Failures[0].Panic)
	require.Equal(t, agents.Debt, report.Failures[1].Agent)
	require.Equal(t, []string{"budget agent panicked: boom", "debt agent failed: no rates"}, out.Alerts)

	last := out.Messages[len(out.Messages)-1]
	require.Equal(t, "saw budget agent panicked: boom", last.Content)
	require.Equal(t, state.LevelAlert, out.Messages[0].Level)
}

func TestRunRefusesReentry(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	o := New([]agents.Agent{fakeAgent{name: agents.Budget, step: func(*state.UserState) (string, error) {
		close(entered)
		<-release
		return "ok", nil
	}}})

	errs := make(chan error, 1)
	go func() {
		_, _, err := o.Run(context.Background(), scenario(), nil)
		errs <- err
	}()
	<-entered
	require.Equal(t, Running, o.Status())

	_, _, err := o.Run(context.Background(), scenario(), nil)
	require.ErrorIs(t, err, ErrPassInProgress)

	close(release)
	require.NoError(t, <-errs)
	require.Equal(t, Done, o.Status())
}

func TestRunInjectsWarnings(t *testing.T) {
	o := newOrchestrator(t, WithWarnings("policy configuration missing: using defaults"))
	for range 2 {
		out, _, err := o.Run(context.Background(), scenario(), nil)
		require.NoError(t, err)
		require.Equal(t, state.LevelWarning, out.Messages[0].Level)
		require.Contains(t, out.Messages[0].Content, "policy configuration missing")
	}
}

func TestRunHonoursCancellation(t *testing.T) {
	o := newOrchestrator(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := o.Run(ctx, scenario(), nil)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, Done, o.Status())
}

func TestRunRecordsSpans(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	list := []agents.Agent{
		fakeAgent{name: agents.Budget, step: func(*state.UserState) (string, error) { return "ok", nil }},
		fakeAgent{name: agents.Debt, step: func(*state.UserState) (string, error) { return "", errors.New("no rates") }},
		fakeAgent{name: agents.Advice, step: func(*state.UserState) (string, error) { return "ok", nil }},
	}
	o := New(list, WithTracerProvider(tp))
	_, _, err := o.Run(context.Background(), scenario(), []agents.Name{agents.Budget, agents.Debt})
	require.NoError(t, err)

	spans := rec.Ended()
	byName := map[string]sdktrace.ReadOnlySpan{}
	for _, s := range spans {
		byName[s.Name()] = s
	}
	require.Len(t, spans, 3)
	require.Contains(t, byName, "pass.run")
	require.Contains(t, byName, "agent.budget")
	require.Contains(t, byName, "agent.debt")
	require.NotContains(t, byName, "agent.advice")

	pass := byName["pass.run"]
	for _, name := range []string{"agent.budget", "agent.debt"} {
		require.Equal(t, pass.SpanContext().SpanID(), byName[name].Parent().SpanID(), name)
	}
	require.Equal(t, codes.Error, byName["agent.debt"].Status().Code)
	require.Equal(t, codes.Unset, byName["agent.budget"].Status().Code)

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range pass.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	require.EqualValues(t, 2, attrs["pass.agents"].AsInt64())
	require.EqualValues(t, 1, attrs["pass.failures"].AsInt64())
}
