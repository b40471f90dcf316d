package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/san-kum/popsim/internal/ecology"
	"github.com/san-kum/popsim/internal/sim"
)

type stateResponse struct {
	Scenario  string       `json:"scenario"`
	Exhausted bool         `json:"exhausted"`
	Microbes  []string     `json:"microbes"`
	Snapshot  sim.Snapshot `json:"snapshot"`
}

type stepResponse struct {
	Requested int          `json:"requested"`
	Taken     int          `json:"taken"`
	Exhausted bool         `json:"exhausted"`
	Snapshot  sim.Snapshot `json:"snapshot"`
}

type injectRequest struct {
	Resource string  `json:"resource"`
	Amount   float64 `json:"amount"`
}

type populationRequest struct {
	Microbe    string  `json:"microbe"`
	Population float64 `json:"population"`
}

type refreshRequest struct {
	Resource string  `json:"resource"`
	Rate     float64 `json:"rate"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decode(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// state must be called with s.mu held.
func (s *Server) state() stateResponse {
	return stateResponse{
		Scenario:  s.sim.Scenario().Name,
		Exhausted: s.sim.Exhausted(),
		Microbes:  s.sim.Microbes(),
		Snapshot:  s.sim.Snapshot(),
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := s.state()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	res := s.sim.Result(s.sim.Exhausted())
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	s.advance(w, 1)
}

// POST /fastforward?n=50
func (s *Server) handleFastForward(w http.ResponseWriter, r *http.Request) {
	n := 1
	if raw := r.URL.Query().Get("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			writeError(w, http.StatusBadRequest, "n must be a positive integer")
			return
		}
		n = v
	}
	if n > s.maxFF {
		writeError(w, http.StatusBadRequest, "n exceeds "+strconv.Itoa(s.maxFF))
		return
	}
	s.advance(w, n)
}

func (s *Server) advance(w http.ResponseWriter, n int) {
	s.mu.Lock()
	taken := s.sim.StepN(n)
	if taken < n {
		s.metrics.Stalled()
	}
	resp := stepResponse{
		Requested: n,
		Taken:     taken,
		Exhausted: s.sim.Exhausted(),
		Snapshot:  s.sim.Snapshot(),
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.sim.Reset()
	snap := s.sim.Snapshot()
	s.metrics.Rebuilt("reset", snap)
	resp := s.state()
	s.mu.Unlock()

	s.logger.Info("simulator reset", "scenario", resp.Scenario)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePreset(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if s.presets == nil {
		writeError(w, http.StatusNotFound, "presets are not available")
		return
	}
	sc, err := s.presets(name)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	simulator, err := s.build(sc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "cannot build preset: "+err.Error())
		return
	}

	s.mu.Lock()
	s.sim = simulator
	s.metrics.Rebuilt("preset", simulator.Snapshot())
	resp := s.state()
	s.mu.Unlock()

	s.logger.Info("preset loaded", "preset", name)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleInject(w http.ResponseWriter, r *http.Request) {
	var req injectRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	if req.Resource == "" {
		writeError(w, http.StatusBadRequest, "resource is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sim.Inject(ecology.Resource(req.Resource), req.Amount); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.metrics.Set(s.sim.Snapshot())
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handlePopulation(w http.ResponseWriter, r *http.Request) {
	var req populationRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sim.SetPopulation(req.Microbe, req.Population); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ecology.ErrUnknownMicrobe) {
			status = http.StatusNotFound
		}
		writeError(w, status, err.Error())
		return
	}
	s.metrics.Set(s.sim.Snapshot())
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	if req.Resource == "" {
		writeError(w, http.StatusBadRequest, "resource is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sim.SetRefreshRate(ecology.Resource(req.Resource), req.Rate); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.metrics.Set(s.sim.Snapshot())
	writeJSON(w, http.StatusOK, s.state())
}
