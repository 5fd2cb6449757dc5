// Package chi exposes the search engine and saved searches over a REST API.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mekbench/mekbench/internal/db"
	"github.com/mekbench/mekbench/internal/domain/bookmark"
	"github.com/mekbench/mekbench/internal/domain/schema"
	"github.com/mekbench/mekbench/internal/filterstate"
	"github.com/mekbench/mekbench/internal/logger"
	"github.com/mekbench/mekbench/internal/query"
	bookmarkuc "github.com/mekbench/mekbench/internal/usecase/bookmark"
	searchuc "github.com/mekbench/mekbench/internal/usecase/search"
	"github.com/mekbench/mekbench/internal/version"
)

// Server wires the HTTP handlers.
type Server struct {
	reg         *schema.Registry
	newSession  func(game string) *searchuc.Coordinator
	bookmarks   *bookmarkuc.Service
	defaultGame string
	logger      *zap.Logger
}

// NewServer creates an HTTP API server. newSession builds a fresh search
// coordinator for the requested game system.
func NewServer(
	reg *schema.Registry,
	newSession func(game string) *searchuc.Coordinator,
	bookmarks *bookmarkuc.Service,
	defaultGame string,
	logger *zap.Logger,
) *Server {
	return &Server{
		reg:         reg,
		newSession:  newSession,
		bookmarks:   bookmarks,
		defaultGame: defaultGame,
		logger:      logger,
	}
}

// Routes registers all endpoints on a router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/fields", s.handleFields)
		r.Get("/units", s.handleSearch)
		r.Get("/units/options", s.handleOptions)

		r.Route("/searches", func(r chi.Router) {
			r.Get("/", s.handleListSearches)
			r.Post("/", s.handleCreateSearch)
			r.Get("/{id}", s.handleGetSearch)
			r.Delete("/{id}", s.handleDeleteSearch)
			r.Post("/{id}/apply", s.handleApplySearch)
		})
	})
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: version.Version})
}

type fieldResponse struct {
	Key       string `json:"key"`
	Kind      string `json:"kind"`
	Countable bool   `json:"countable,omitempty"`
	TextMatch bool   `json:"textMatch,omitempty"`
}

func (s *Server) handleFields(w http.ResponseWriter, r *http.Request) {
	game := s.game(r)
	configs := s.reg.Fields(game)
	out := make([]fieldResponse, 0, len(configs))
	for _, c := range configs {
		out = append(out, fieldResponse{
			Key:       c.Key,
			Kind:      string(c.Kind),
			Countable: c.Countable,
			TextMatch: c.TextMatch,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type unitHit struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

type searchResponse struct {
	Query   string             `json:"query"`
	Complex bool               `json:"complex"`
	Errors  []query.ParseError `json:"errors,omitempty"`
	Filters filterstate.State  `json:"filters"`
	Compact string             `json:"compact,omitempty"`
	Total   int                `json:"total"`
	Units   []unitHit          `json:"units"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	game := s.game(r)
	sess := s.newSession(game)
	sess.SetQuery(r.URL.Query().Get("q"))

	results := sess.Results()
	limit := len(results)
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n < limit {
			limit = n
		}
	}

	hits := make([]unitHit, 0, limit)
	for _, res := range results[:limit] {
		hits = append(hits, unitHit{ID: res.Unit.ID(), Name: res.Unit.Name(), Score: res.Score})
	}
	state := sess.State()
	writeJSON(w, http.StatusOK, searchResponse{
		Query:   sess.Query(),
		Complex: sess.Complex(),
		Errors:  sess.Errors(),
		Filters: state,
		Compact: filterstate.EncodeCompact(state, s.reg, game),
		Total:   len(results),
		Units:   hits,
	})
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	field := r.URL.Query().Get("field")
	if field == "" {
		writeError(w, http.StatusBadRequest, "field parameter is required")
		return
	}
	sess := s.newSession(s.game(r))
	sess.SetQuery(r.URL.Query().Get("q"))
	opts := sess.Options(field)
	if opts == nil {
		opts = []searchuc.Option{}
	}
	writeJSON(w, http.StatusOK, opts)
}

func (s *Server) handleListSearches(w http.ResponseWriter, r *http.Request) {
	saved, err := s.bookmarks.List(r.Context())
	if err != nil {
		s.serverError(w, r, err, "list searches")
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleCreateSearch(w http.ResponseWriter, r *http.Request) {
	var in bookmark.Saved
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	saved, err := s.bookmarks.Create(r.Context(), in)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			s.serverError(w, r, err, "create search")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleGetSearch(w http.ResponseWriter, r *http.Request) {
	saved, err := s.bookmarks.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.notFoundOrError(w, r, err, "get search")
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteSearch(w http.ResponseWriter, r *http.Request) {
	if err := s.bookmarks.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.serverError(w, r, err, "delete search")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleApplySearch restores a saved search into a fresh session and
// returns the resulting query text, state, and hits.
func (s *Server) handleApplySearch(w http.ResponseWriter, r *http.Request) {
	game := s.game(r)
	sess := s.newSession(game)
	if _, err := s.bookmarks.Apply(r.Context(), chi.URLParam(r, "id"), sess); err != nil {
		s.notFoundOrError(w, r, err, "apply search")
		return
	}

	results := sess.Results()
	hits := make([]unitHit, 0, len(results))
	for _, res := range results {
		hits = append(hits, unitHit{ID: res.Unit.ID(), Name: res.Unit.Name(), Score: res.Score})
	}
	state := sess.State()
	writeJSON(w, http.StatusOK, searchResponse{
		Query:   sess.Query(),
		Complex: sess.Complex(),
		Errors:  sess.Errors(),
		Filters: state,
		Compact: filterstate.EncodeCompact(state, s.reg, game),
		Total:   len(results),
		Units:   hits,
	})
}

func (s *Server) game(r *http.Request) string {
	if g := r.URL.Query().Get("game"); g != "" {
		return g
	}
	return s.defaultGame
}

func (s *Server) notFoundOrError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	if errors.Is(err, db.ErrKeyNotFound) {
		writeError(w, http.StatusNotFound, "saved search not found")
		return
	}
	s.serverError(w, r, err, msg)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	logger.FromContext(r.Context()).Error(msg, zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

type errorResponse struct {
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
