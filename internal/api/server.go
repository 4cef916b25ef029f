package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"holdco/internal/config"
	"holdco/internal/game"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Server struct {
	cfg  config.APIConfig
	log  *slog.Logger
	game *game.Service
	mux  *chi.Mux
}

func New(cfg config.APIConfig, logger *slog.Logger, gameSvc *game.Service) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:  cfg,
		log:  logger,
		game: gameSvc,
		mux:  chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if s.cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.cfg.RequestTimeout))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/games", s.handleCreateGame)
		r.Get("/games/{id}", s.handleGame)
		r.Post("/games/{id}/advance", s.handleAdvance)
		r.Post("/games/{id}/choices", s.handleChoice)
		r.Get("/games/{id}/metrics", s.handleMetrics)
		r.Get("/games/{id}/businesses/{businessID}/valuation", s.handleValuation)
		r.Get("/games/{id}/score", s.handleScore)

		r.Get("/leaderboard", s.handleLeaderboard)
		r.With(s.submitAuth).Post("/leaderboard", s.handleSubmit)
	})
}

// submitAuth requires the configured bearer token on leaderboard writes.
// An empty token leaves submissions open.
func (s *Server) submitAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.SubmitToken == "" {
			next.ServeHTTP(w, r)
			return
		}
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if token != s.cfg.SubmitToken {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Seed       int64             `json:"seed"`
		Duration   game.GameDuration `json:"duration"`
		Difficulty game.Difficulty   `json:"difficulty"`
		Sector     string            `json:"sector"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	switch in.Duration {
	case "", game.DurationStandard, game.DurationQuick:
	default:
		writeError(w, http.StatusBadRequest, "duration must be standard or quick")
		return
	}
	switch in.Difficulty {
	case "", game.DifficultyEasy, game.DifficultyNormal:
	default:
		writeError(w, http.StatusBadRequest, "difficulty must be easy or normal")
		return
	}
	state, err := s.game.CreateGame(r.Context(), game.NewGameConfig{
		Seed:       in.Seed,
		Duration:   in.Duration,
		Difficulty: in.Difficulty,
		SectorID:   strings.TrimSpace(in.Sector),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, state)
}

func (s *Server) handleGame(w http.ResponseWriter, r *http.Request) {
	state, err := s.game.Game(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	state, report, err := s.game.Advance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"state": state, "report": report})
}

func (s *Server) handleChoice(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Action string `json:"action"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(in.Action) == "" {
		writeError(w, http.StatusBadRequest, "action is required")
		return
	}
	state, impacts, err := s.game.ResolveChoice(r.Context(), chi.URLParam(r, "id"), in.Action)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"state": state, "impacts": impacts})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := s.game.Metrics(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleValuation(w http.ResponseWriter, r *http.Request) {
	v, err := s.game.Valuation(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "businessID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	out, err := s.game.Score(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.LeaderboardLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if limit <= 0 || n < limit {
			limit = n
		}
	}
	entries, err := s.game.Leaderboard(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var in game.Submission
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if key := strings.TrimSpace(r.Header.Get("Idempotency-Key")); key != "" {
		in.IdempotencyKey = key
	}
	entry, rank, err := s.game.Submit(r.Context(), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"entry": entry, "rank": rank})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrGameNotFound), errors.Is(err, game.ErrBusinessNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrGameOver), errors.Is(err, game.ErrGameInProgress),
		errors.Is(err, game.ErrNoPendingChoice), errors.Is(err, game.ErrDuplicateEntry):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrUnknownChoice), errors.Is(err, game.ErrUnknownSector),
		errors.Is(err, game.ErrInvalidInitials), errors.Is(err, game.ErrInvalidName),
		errors.Is(err, game.ErrInsufficientCash), errors.Is(err, game.ErrInvalidState):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
