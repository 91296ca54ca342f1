package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"combatsim/combat"
	"combatsim/dice"
	"combatsim/game"
	"combatsim/meta"
	"combatsim/rules"
	"combatsim/simulator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Option func(s *Server)

func WithRegistry(registry *rules.Registry) Option {
	return func(s *Server) {
		if registry != nil {
			s.registry = registry
		}
	}
}

func WithWorkers(workers int) Option {
	return func(s *Server) {
		if workers > 0 {
			s.workers = workers
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// Server exposes simulation and resolution over JSON. It holds a live board
// that resolutions may be applied to; simulations always run on a fork.
type Server struct {
	board    *game.Board
	registry *rules.Registry
	resolver *combat.Resolver
	workers  int
	logger   zerolog.Logger
	mutex    sync.RWMutex
}

func NewServer(board *game.Board, options ...Option) *Server {
	s := &Server{
		board:    board,
		registry: rules.Default(),
		workers:  meta.GoRoutines,
		logger:   log.Logger,
	}
	for _, option := range options {
		option(s)
	}
	if s.board == nil {
		s.board = game.NewBoard()
	}
	s.resolver = combat.NewResolver(combat.WithRegistry(s.registry), combat.WithLogger(s.logger))
	return s
}

// Router builds the route table. Exposed for tests and for embedding.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestID)

	r.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	r.HandleFunc("/simulate", s.handleSimulate).Methods("POST")
	r.HandleFunc("/simulate/validate", s.handleValidate).Methods("POST")
	r.HandleFunc("/resolve/{phase}", s.handleResolve).Methods("POST")
	r.HandleFunc("/rules", s.handleRules).Methods("GET")
	r.HandleFunc("/rules/category/{category}", s.handleRuleCategory).Methods("GET")
	r.HandleFunc("/rules/{id}", s.handleRule).Methods("GET")
	r.HandleFunc("/units", s.handleUnits).Methods("GET")
	r.HandleFunc("/units", s.handleReplaceUnits).Methods("PUT")
	r.HandleFunc("/units/{id}", s.handleUnit).Methods("GET")
	r.HandleFunc("/units/{id}/rules", s.handleUnitRules).Methods("GET")
	return r
}

// Start serves on addr until the listener fails.
func (s *Server) Start(addr string) error {
	s.logger.Info().Msgf("Listening on %s", addr)
	return http.ListenAndServe(addr, s.Router())
}

// Board returns a fork of the live board.
func (s *Server) Board() *game.Board {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.board.Fork()
}

func (s *Server) SetBoard(b *game.Board) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.board = b
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		s.logger.Debug().Str("request", id).Msgf("%s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) runner(lookup game.Lookup) *simulator.Runner {
	return simulator.NewRunner(lookup,
		simulator.WithWorkers(s.workers),
		simulator.WithRegistry(s.registry),
		simulator.WithLogger(s.logger),
	)
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var cfg simulator.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	result, err := s.runner(s.Board()).Simulate(cfg)
	var verr *simulator.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, rules.Validation{Valid: false, Errors: verr.Errors})
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var cfg simulator.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	v := s.runner(s.Board()).Validate(cfg)
	if v.Errors == nil {
		v.Errors = []string{}
	}
	writeJSON(w, http.StatusOK, v)
}

// ResolveResponse carries the outcome together with the seed it was rolled
// with, so a resolution can be replayed.
type ResolveResponse struct {
	Seed    uint64         `json:"seed"`
	Applied bool           `json:"applied"`
	Skipped []string       `json:"skipped,omitempty"`
	Outcome combat.Outcome `json:"outcome"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	phase, err := combat.ParsePhase(mux.Vars(r)["phase"])
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	var action combat.Action
	if err := json.NewDecoder(r.Body).Decode(&action); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	apply := r.URL.Query().Get("apply") == "true"

	var src *dice.RNG
	if raw := r.URL.Query().Get("seed"); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid seed: "+raw)
			return
		}
		src = dice.NewRNG(seed)
	} else if src, err = dice.NewRandomRNG(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := ResolveResponse{Seed: src.Seed()}
	if apply {
		s.mutex.Lock()
		resp.Outcome = s.resolver.Resolve(phase, action, s.board, src)
		if resp.Outcome.Success {
			for _, e := range s.board.Apply(resp.Outcome.Diffs...) {
				resp.Skipped = append(resp.Skipped, e.Error())
			}
			resp.Applied = true
		}
		s.mutex.Unlock()
	} else {
		s.mutex.RLock()
		resp.Outcome = s.resolver.Resolve(phase, action, s.board, src)
		s.mutex.RUnlock()
	}
	if resp.Applied {
		s.logger.Info().Msgf("Applied %d diffs from %s", len(resp.Outcome.Diffs), action.AttackerUnitID)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.All())
}

func (s *Server) handleRule(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	def, ok := s.registry.Get(rules.RuleID(id))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown rule: "+id)
		return
	}
	writeJSON(w, http.StatusOK, def)
}

func (s *Server) handleRuleCategory(w http.ResponseWriter, r *http.Request) {
	defs := s.registry.ByCategory(rules.Category(mux.Vars(r)["category"]))
	if defs == nil {
		defs = []rules.RuleDefinition{}
	}
	writeJSON(w, http.StatusOK, defs)
}

func (s *Server) handleUnits(w http.ResponseWriter, r *http.Request) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	units := make([]*game.Unit, 0, len(s.board.IDs()))
	for _, id := range s.board.IDs() {
		u, _ := s.board.Unit(id)
		units = append(units, u)
	}
	writeJSON(w, http.StatusOK, units)
}

// handleReplaceUnits swaps the live board for the posted unit list.
func (s *Server) handleReplaceUnits(w http.ResponseWriter, r *http.Request) {
	var docs []game.UnitDoc
	if err := json.NewDecoder(r.Body).Decode(&docs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	catalog, err := game.BuildCatalog(docs)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.SetBoard(catalog.Board())
	writeJSON(w, http.StatusOK, map[string][]string{"units": catalog.IDs()})
}

func (s *Server) handleUnit(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mutex.RLock()
	u, ok := s.board.Unit(id)
	s.mutex.RUnlock()
	if !ok {
		writeError(w, http.StatusNotFound, "unknown unit: "+id)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleUnitRules(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mutex.RLock()
	u, ok := s.board.Unit(id)
	s.mutex.RUnlock()
	if !ok {
		writeError(w, http.StatusNotFound, "unknown unit: "+id)
		return
	}
	writeJSON(w, http.StatusOK, s.registry.ExtractUnitRules(u))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{
		"error":   http.StatusText(code),
		"message": msg,
		"status":  code,
	})
}
