// Package orchestrator runs the agents over a UserState in their fixed order.
//
// A pass is strictly sequential. The orchestrator is a small state machine (idle, running,
// done) and refuses a second pass while one is in flight.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jask/smartsavernet/internal/agents"
	"github.com/jask/smartsavernet/internal/logging"
	"github.com/jask/smartsavernet/internal/state"
)

// Status is the orchestrator lifecycle state.
type Status string

const (
	Idle    Status = "idle"
	Running Status = "running"
	Done    Status = "done"
)

// ErrPassInProgress is returned when Run is called while a pass is running.
var ErrPassInProgress = errors.New("a pass is already running")

const tracerName = "github.com/jask/smartsavernet/internal/orchestrator"

// AgentError records an agent that failed or panicked during a pass. The pass carries on.
type AgentError struct {
	Agent agents.Name
	Err   error
	Panic bool
}

func (e *AgentError) Error() string {
	if e.Panic {
		return fmt.Sprintf("%s agent panicked: %v", e.Agent, e.Err)
	}
	return fmt.Sprintf("%s agent failed: %v", e.Agent, e.Err)
}

func (e *AgentError) Unwrap() error { return e.Err }

// AgentRun is the outcome of one agent in a pass.
type AgentRun struct {
	Agent    agents.Name   `json:"agent"`
	Skipped  bool          `json:"skipped"`
	Err      string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// Report summarises a pass.
type Report struct {
	Started  time.Time     `json:"started"`
	Finished time.Time     `json:"finished"`
	Runs     []AgentRun    `json:"runs"`
	Failures []*AgentError `json:"-"`
}

// Ran returns the names of agents that executed, in order.
func (r Report) Ran() []agents.Name {
	var out []agents.Name
	for _, run := range r.Runs {
		if !run.Skipped {
			out = append(out, run.Agent)
		}
	}
	return out
}

// Orchestrator owns the agent list and the pass lifecycle.
type Orchestrator struct {
	agents   []agents.Agent
	warnings []string
	log      *slog.Logger
	tracer   trace.Tracer

	mu     sync.Mutex
	status Status
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.log = logging.Named(l, "orchestrator") }
}

// WithWarnings adds startup warnings (e.g. a missing policy file) that are shown on every pass.
func WithWarnings(w ...string) Option {
	return func(o *Orchestrator) { o.warnings = append(o.warnings, w...) }
}

// WithTracerProvider records spans through tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *Orchestrator) { o.tracer = tp.Tracer(tracerName) }
}

// New returns an idle orchestrator. The agent slice fixes the pass order.
func New(list []agents.Agent, opts ...Option) *Orchestrator {
	o := &Orchestrator{agents: list, status: Idle, log: logging.Discard()}
	for _, opt := range opts {
		opt(o)
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(tracerName)
	}
	return o
}

// Status returns the current lifecycle state.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

func (o *Orchestrator) transition(from []Status, to Status) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, f := range from {
		if o.status == f {
			o.status = to
			return nil
		}
	}
	if o.status == Running && to == Running {
		return ErrPassInProgress
	}
	return fmt.Errorf("invalid orchestrator transition %s -> %s", o.status, to)
}

// Run executes one pass over a copy of in with the enabled agents and returns the new state.
//
// A nil enabled slice runs every agent. Unknown names and invalid input abort before any agent
// runs; agent failures are recorded in the state and the report instead.
func (o *Orchestrator) Run(ctx context.Context, in state.UserState, enabled []agents.Name) (state.UserState, Report, error) {
	on, err := o.enabledSet(enabled)
	if err != nil {
		return in, Report{}, err
	}
	if err := in.Validate(); err != nil {
		return in, Report{}, err
	}
	if err := o.transition([]Status{Idle, Done}, Running); err != nil {
		return in, Report{}, err
	}
	defer func() {
		if err := o.transition([]Status{Running}, Done); err != nil {
			o.log.Error("finish pass", "error", err)
		}
	}()

	ctx, span := o.tracer.Start(ctx, "pass.run")
	defer span.End()

	s := in.Clone()
	s.ResetPass()
	for _, w := range o.warnings {
		s.AppendMessage("System", state.LevelWarning, w)
	}

	report := Report{Started: time.Now()}
	o.log.Info("pass started", "agents", len(on))
	for _, a := range o.agents {
		run := AgentRun{Agent: a.Name()}
		if !on[a.Name()] {
			run.Skipped = true
			report.Runs = append(report.Runs, run)
			continue
		}
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, "cancelled")
			return in, report, fmt.Errorf("run pass: %w", err)
		}

		start := time.Now()
		msg, err := o.step(ctx, a, &s)
		run.Duration = time.Since(start)
		if err != nil {
			var ae *AgentError
			errors.As(err, &ae)
			run.Err = ae.Error()
			report.Failures = append(report.Failures, ae)
			s.AppendAlert(ae.Error())
			s.AppendMessage(a.Title(), state.LevelAlert, ae.Error())
			o.log.Warn("agent failed", "agent", a.Name(), "panic", ae.Panic, "error", ae.Err)
		} else if msg != "" {
			s.AppendMessage(a.Title(), state.LevelInfo, msg)
		}
		report.Runs = append(report.Runs, run)
	}
	report.Finished = time.Now()

	span.SetAttributes(
		attribute.Int("pass.agents", len(on)),
		attribute.Int("pass.failures", len(report.Failures)),
		attribute.Int("pass.alerts", len(s.Alerts)),
	)
	o.log.Info("pass finished", "alerts", len(s.Alerts), "failures", len(report.Failures),
		"elapsed", report.Finished.Sub(report.Started))
	return s, report, nil
}

// step runs one agent inside its own span and turns errors and panics into *AgentError.
func (o *Orchestrator) step(ctx context.Context, a agents.Agent, s *state.UserState) (msg string, err error) {
	ctx, span := o.tracer.Start(ctx, "agent."+string(a.Name()),
		trace.WithAttributes(attribute.String("agent.name", string(a.Name()))))
	defer func() {
		if r := recover(); r != nil {
			o.log.Debug("agent panic", "agent", a.Name(), "stack", string(debug.Stack()))
			err = &AgentError{Agent: a.Name(), Err: fmt.Errorf("%v", r), Panic: true}
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	msg, err = a.Step(ctx, s)
	if err != nil {
		return "", &AgentError{Agent: a.Name(), Err: err}
	}
	return msg, nil
}

func (o *Orchestrator) enabledSet(enabled []agents.Name) (map[agents.Name]bool, error) {
	known := make(map[agents.Name]bool, len(o.agents))
	for _, a := range o.agents {
		known[a.Name()] = true
	}
	if enabled == nil {
		return known, nil
	}
	on := make(map[agents.Name]bool, len(enabled))
	for _, n := range enabled {
		if !known[n] {
			return nil, fmt.Errorf("unknown agent %q", n)
		}
		on[n] = true
	}
	return on, nil
}
