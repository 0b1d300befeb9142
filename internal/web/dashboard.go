package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jask/smartsavernet/internal/database/repository"
	"github.com/jask/smartsavernet/internal/orchestrator"
	"github.com/jask/smartsavernet/internal/service"
	"github.com/jask/smartsavernet/internal/state"
)

var tabs = []string{"overview", "transactions", "goals"}

type pageData struct {
	State        state.UserState
	Agents       []agentInfo
	Report       *orchestrator.Report
	Tab          string
	Tabs         []string
	Strategy     state.Strategy
	Transactions []repository.Transaction
	Totals       []repository.CategoryTotal
	Month        repository.MonthlySummary
	Persistence  bool
	Flash        string
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sid := s.sessionID(w, r)
	st, err := s.coach.State(r.Context(), sid)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	resp := s.stateResponse(sid, st)
	data := pageData{
		State:       st,
		Agents:      resp.Agents,
		Report:      resp.Report,
		Tab:         pickTab(r.URL.Query().Get("tab")),
		Tabs:        tabs,
		Strategy:    st.DebtStrategy,
		Persistence: resp.Persistence,
		Flash:       r.URL.Query().Get("msg"),
	}
	if data.Strategy == "" {
		data.Strategy = s.coach.Policy.Debt.DefaultStrategy
	}
	if data.Tab == "transactions" && data.Persistence {
		txns, err := s.coach.RecentTransactions(r.Context(), 100)
		if err != nil {
			data.Flash = err.Error()
		}
		data.Transactions = txns
		if data.Totals, data.Month, err = s.coach.Totals(r.Context()); err != nil {
			data.Flash = err.Error()
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, data); err != nil {
		s.log.Error("render dashboard", "error", err)
	}
}

func pickTab(raw string) string {
	for _, t := range tabs {
		if t == raw {
			return t
		}
	}
	return tabs[0]
}

type formHandler func(w http.ResponseWriter, r *http.Request, sid string) (string, error)

// formAction runs fn and redirects back to the dashboard with a flash message.
func (s *Server) formAction(fn formHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid := s.sessionID(w, r)
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		msg, err := fn(w, r, sid)
		if err != nil {
			msg = err.Error()
			var verr *state.ValidationError
			if !errors.As(err, &verr) && !errors.Is(err, service.ErrNoDatabase) && !errors.Is(err, orchestrator.ErrPassInProgress) {
				s.log.Error("form action", "path", r.URL.Path, "error", err)
			}
		}
		q := url.Values{}
		q.Set("tab", pickTab(r.FormValue("tab")))
		if msg != "" {
			q.Set("msg", msg)
		}
		http.Redirect(w, r, "/?"+q.Encode(), http.StatusSeeOther)
	}
}

func (s *Server) formRun(_ http.ResponseWriter, r *http.Request, sid string) (string, error) {
	names := r.Form["agent"]
	if names == nil {
		names = []string{}
	}
	req, err := s.runRequest(names, r.FormValue("strategy"))
	if err != nil {
		return "", err
	}
	out, report, err := s.coach.Run(r.Context(), sid, req)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Ran %d agent(s), %d alert(s).", len(report.Ran()), len(out.Alerts)), nil
}

func (s *Server) formReset(_ http.ResponseWriter, r *http.Request, sid string) (string, error) {
	if _, err := s.coach.Reset(r.Context(), sid); err != nil {
		return "", err
	}
	return "State reset.", nil
}

func (s *Server) formSeed(_ http.ResponseWriter, r *http.Request, sid string) (string, error) {
	n, _, err := s.coach.Seed(r.Context(), sid, 0)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Seeded %d mock transactions.", n), nil
}
