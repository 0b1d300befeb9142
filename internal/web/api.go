package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/jask/smartsavernet/internal/agents"
	"github.com/jask/smartsavernet/internal/database/repository"
	"github.com/jask/smartsavernet/internal/orchestrator"
	"github.com/jask/smartsavernet/internal/service"
	"github.com/jask/smartsavernet/internal/state"
)

type agentInfo struct {
	Name    agents.Name `json:"name"`
	Title   string      `json:"title"`
	Enabled bool        `json:"enabled"`
}

type stateResponse struct {
	State       state.UserState      `json:"state"`
	Agents      []agentInfo          `json:"agents"`
	Report      *orchestrator.Report `json:"report,omitempty"`
	Persistence bool                 `json:"persistence"`
}

type errorResponse struct {
	Error    string   `json:"error"`
	Problems []string `json:"problems,omitempty"`
}

type runRequest struct {
	Agents   []string `json:"agents"`
	Strategy string   `json:"strategy"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sid := s.sessionID(w, r)
	st, err := s.coach.State(r.Context(), sid)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.stateResponse(sid, st))
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	sid := s.sessionID(w, r)
	var body runRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
			return
		}
	}
	req, err := s.runRequest(body.Agents, body.Strategy)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	st, _, err := s.coach.Run(r.Context(), sid, req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.stateResponse(sid, st))
}

func (s *Server) runRequest(names []string, strategy string) (service.RunRequest, error) {
	req := service.RunRequest{Enabled: s.defaults}
	if names != nil {
		enabled, err := agents.ParseNames(names)
		if err != nil {
			return req, err
		}
		req.Enabled = enabled
	}
	if strings.TrimSpace(strategy) != "" {
		st, err := state.ParseStrategy(strategy)
		if err != nil {
			return req, err
		}
		req.Strategy = st
	}
	return req, nil
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sid := s.sessionID(w, r)
	st, err := s.coach.Reset(r.Context(), sid)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.stateResponse(sid, st))
}

func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request) {
	sid := s.sessionID(w, r)
	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "days must be a positive integer"})
			return
		}
		days = parsed
	}
	n, st, err := s.coach.Seed(r.Context(), sid, days)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Inserted int `json:"inserted"`
		stateResponse
	}{n, s.stateResponse(sid, st)})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	sid := s.sessionID(w, r)
	res, err := s.coach.Import(r.Context(), sid, http.MaxBytesReader(w, r.Body, 10<<20))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	txns, err := s.coach.RecentTransactions(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if txns == nil {
		txns = []repository.Transaction{}
	}
	writeJSON(w, http.StatusOK, txns)
}

func (s *Server) stateResponse(sid string, st state.UserState) stateResponse {
	resp := stateResponse{State: st, Persistence: s.coach.HasDatabase()}
	enabled := s.defaults
	if report, ok := s.coach.LastReport(sid); ok {
		resp.Report = &report
		enabled = report.Ran()
	}
	on := map[agents.Name]bool{}
	for _, n := range enabled {
		on[n] = true
	}
	for _, n := range agents.Order {
		resp.Agents = append(resp.Agents, agentInfo{Name: n, Title: n.Title(), Enabled: on[n]})
	}
	return resp
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var verr *state.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: verr.Error(), Problems: verr.Problems})
	case errors.Is(err, orchestrator.ErrPassInProgress):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrNoDatabase):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	default:
		s.log.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
