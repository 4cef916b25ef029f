package game

import (
	"context"
	"fmt"
	"log/slog"
	mathrand "math/rand"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var initialsRE = regexp.MustCompile(`^[A-Z0-9]{2,4}$`)

var blockedNameFragments = []string{
	"admin",
	"shit",
	"fuck",
	"bitch",
	"nazi",
}

// GameStore persists in-flight games. GetGame returns ErrGameNotFound for an
// unknown id.
type GameStore interface {
	GetGame(ctx context.Context, id string) (GameState, error)
	PutGame(ctx context.Context, state GameState) error
}

type Service struct {
	games GameStore
	board LeaderboardStore
	log   *slog.Logger
	now   func() time.Time

	mu   sync.Mutex
	rand *mathrand.Rand

	// writeMu keeps a single writer per game and per board.
	writeMu sync.Mutex
}

func NewService(games GameStore, board LeaderboardStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		games: games,
		board: board,
		log:   logger,
		now:   time.Now,
		rand:  mathrand.New(mathrand.NewSource(time.Now().UnixNano())),
	}
}

func (s *Service) nextSeed() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rand.Int63()
}

// roundRand derives the generator for one step of a game so a saved game
// replays identically from its seed.
func roundRand(seed int64, round int, step int64) Rand {
	return NewSeededRand(seed*1_000_003 + int64(round)*7_919 + step)
}

const (
	stepAdvance int64 = 1
	stepChoice  int64 = 2
	stepCreate  int64 = 3
)

func (s *Service) CreateGame(ctx context.Context, cfg NewGameConfig) (GameState, error) {
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	if cfg.Seed == 0 {
		cfg.Seed = s.nextSeed()
	}
	state, err := NewGame(cfg, roundRand(cfg.Seed, 0, stepCreate))
	if err != nil {
		return GameState{}, err
	}
	if err := s.games.PutGame(ctx, state); err != nil {
		return GameState{}, fmt.Errorf("save game: %w", err)
	}
	s.log.Info("game created", "game_id", state.ID, "sector", state.Businesses[0].SectorID, "duration", state.Duration, "difficulty", state.Difficulty)
	return state, nil
}

func (s *Service) Game(ctx context.Context, id string) (GameState, error) {
	state, err := s.games.GetGame(ctx, id)
	if err != nil {
		return GameState{}, err
	}
	return NormalizeState(state), nil
}

func (s *Service) Advance(ctx context.Context, id string) (GameState, RoundReport, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	state, err := s.Game(ctx, id)
	if err != nil {
		return GameState{}, RoundReport{}, err
	}
	next, report, err := AdvanceRound(state, roundRand(state.Seed, state.Round, stepAdvance))
	if err != nil {
		return state, RoundReport{}, err
	}
	if err := s.games.PutGame(ctx, next); err != nil {
		return state, RoundReport{}, fmt.Errorf("save game: %w", err)
	}
	s.log.Info("round advanced",
		"game_id", id,
		"round", report.Round,
		"event", report.Event.Type,
		"fcf", report.Operating.FCF,
		"cash", next.Cash,
		"distress", report.Closing.DistressLevel,
	)
	if report.Bankrupt {
		s.log.Warn("holdco bankrupt", "game_id", id, "round", report.Round)
	}
	return next, report, nil
}

func (s *Service) ResolveChoice(ctx context.Context, id, action string) (GameState, []EventImpact, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	state, err := s.Game(ctx, id)
	if err != nil {
		return GameState{}, nil, err
	}
	if state.BankruptRound > 0 {
		return state, nil, ErrGameOver
	}
	if state.CurrentEvent == nil || !HasChoices(*state.CurrentEvent) {
		return state, nil, ErrNoPendingChoice
	}
	ev := *state.CurrentEvent
	next, impacts, err := ResolveEventChoice(state, ev, strings.TrimSpace(action), roundRand(state.Seed, state.Round, stepChoice))
	if err != nil {
		return state, nil, err
	}
	if err := s.games.PutGame(ctx, next); err != nil {
		return state, nil, fmt.Errorf("save game: %w", err)
	}
	s.log.Info("event choice resolved", "game_id", id, "event", ev.Type, "action", action)
	return next, impacts, nil
}

func (s *Service) Metrics(ctx context.Context, id string) (Metrics, error) {
	state, err := s.Game(ctx, id)
	if err != nil {
		return Metrics{}, err
	}
	return CalculateMetrics(state), nil
}

func (s *Service) Valuation(ctx context.Context, id, businessID string) (ExitValuation, error) {
	state, err := s.Game(ctx, id)
	if err != nil {
		return ExitValuation{}, err
	}
	b, ok := state.Business(businessID)
	if !ok || b.Status != StatusActive {
		return ExitValuation{}, ErrBusinessNotFound
	}
	return CalculateExitValuation(b, state.Round, state.LastEventType, portfolioContext(state), state.IntegratedPlatforms), nil
}

type ScoreReport struct {
	Score              ScoreBreakdown `json:"score"`
	EnterpriseValue    int64          `json:"enterprise_value"`
	FounderEquityValue int64          `json:"founder_equity_value"`
	Insights           []string       `json:"insights"`
	Final              bool           `json:"final"`
}

// Score grades a game. Games still in progress get a provisional score.
func (s *Service) Score(ctx context.Context, id string) (ScoreReport, error) {
	state, err := s.Game(ctx, id)
	if err != nil {
		return ScoreReport{}, err
	}
	return scoreReport(state), nil
}

func scoreReport(state GameState) ScoreReport {
	score := CalculateFinalScore(state)
	return ScoreReport{
		Score:              score,
		EnterpriseValue:    CalculateEnterpriseValue(state),
		FounderEquityValue: CalculateFounderEquityValue(state),
		Insights:           GeneratePostGameInsights(state, score),
		Final:              state.IsOver(),
	}
}

func (s *Service) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	entries, err := s.board.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}
	ranked := RankLeaderboard(entries)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// Submission is a finished game offered to the leaderboard. Either GameID
// names a stored game or State carries one played elsewhere; the server
// always re-scores it.
type Submission struct {
	IdempotencyKey string     `json:"idempotency_key"`
	GameID         string     `json:"game_id,omitempty"`
	State          *GameState `json:"state,omitempty"`
	Initials       string     `json:"initials"`
	HoldcoName     string     `json:"holdco_name"`
}

// Submit scores a finished game and records it. The returned rank is
// 1-based, or 0 if the entry did not make the board.
func (s *Service) Submit(ctx context.Context, in Submission) (LeaderboardEntry, int, error) {
	initials := strings.ToUpper(strings.TrimSpace(in.Initials))
	if !initialsRE.MatchString(initials) {
		return LeaderboardEntry{}, 0, ErrInvalidInitials
	}
	if err := validateHoldcoName(in.HoldcoName); err != nil {
		return LeaderboardEntry{}, 0, err
	}

	var state GameState
	switch {
	case in.State != nil:
		state = NormalizeState(*in.State)
	case in.GameID != "":
		var err error
		if state, err = s.Game(ctx, in.GameID); err != nil {
			return LeaderboardEntry{}, 0, err
		}
	default:
		return LeaderboardEntry{}, 0, ErrGameNotFound
	}
	if !state.IsOver() {
		return LeaderboardEntry{}, 0, ErrGameInProgress
	}
	if in.State != nil {
		if err := validateFinishedState(state); err != nil {
			return LeaderboardEntry{}, 0, err
		}
	}

	entry := NewLeaderboardEntry(state, initials, in.HoldcoName, s.now())
	entry.ID = strings.TrimSpace(in.IdempotencyKey)
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	entries, err := s.board.Load(ctx)
	if err != nil {
		return LeaderboardEntry{}, 0, fmt.Errorf("load leaderboard: %w", err)
	}
	for _, e := range entries {
		if e.ID == entry.ID {
			return e, 0, ErrDuplicateEntry
		}
	}
	ranked := AddLeaderboardEntry(entries, entry)
	if err := s.board.Save(ctx, ranked); err != nil {
		return LeaderboardEntry{}, 0, fmt.Errorf("save leaderboard: %w", err)
	}
	rank := 0
	for i, e := range ranked {
		if e.ID == entry.ID {
			rank = i + 1
			break
		}
	}
	s.log.Info("leaderboard submission", "entry_id", entry.ID, "game_id", entry.GameID, "score", entry.Score, "rank", rank)
	return entry, rank, nil
}

// validateFinishedState rejects client-supplied states that no sequence of
// rounds could have produced.
func validateFinishedState(s GameState) error {
	if s.MaxRounds != s.Duration.Rounds() {
		return fmt.Errorf("%w: %d rounds for a %s game", ErrInvalidState, s.MaxRounds, s.Duration)
	}
	played := s.MaxRounds
	if s.BankruptRound > 0 {
		if s.BankruptRound > s.MaxRounds || s.Round != s.BankruptRound {
			return fmt.Errorf("%w: bankrupt in round %d at round %d", ErrInvalidState, s.BankruptRound, s.Round)
		}
		played = s.BankruptRound
	} else if s.Round != s.MaxRounds+1 {
		return fmt.Errorf("%w: finished at round %d of %d", ErrInvalidState, s.Round, s.MaxRounds)
	}
	if len(s.History) != played {
		return fmt.Errorf("%w: %d history rows for %d rounds", ErrInvalidState, len(s.History), played)
	}
	for i, h := range s.History {
		if h.Round != i+1 {
			return fmt.Errorf("%w: history row %d is round %d", ErrInvalidState, i+1, h.Round)
		}
	}
	if s.FounderShares != FounderShares || s.FounderShares > s.SharesOutstanding {
		return fmt.Errorf("%w: founder shares %d of %d", ErrInvalidState, s.FounderShares, s.SharesOutstanding)
	}
	return nil
}

func validateHoldcoName(name string) error {
	clean := strings.TrimSpace(name)
	if clean == "" {
		return fmt.Errorf("%w: holdco name is required", ErrInvalidName)
	}
	if len(clean) > 64 {
		return fmt.Errorf("%w: holdco name too long (max 64 chars)", ErrInvalidName)
	}
	lower := strings.ToLower(clean)
	for _, fragment := range blockedNameFragments {
		if strings.Contains(lower, fragment) {
			return fmt.Errorf("%w: holdco name contains blocked content", ErrInvalidName)
		}
	}
	return nil
}

// MemoryGameStore keeps games in process memory.
type MemoryGameStore struct {
	mu    sync.RWMutex
	games map[string]GameState
}

func NewMemoryGameStore() *MemoryGameStore {
	return &MemoryGameStore{games: make(map[string]GameState)}
}

func (m *MemoryGameStore) GetGame(_ context.Context, id string) (GameState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.games[id]
	if !ok {
		return GameState{}, ErrGameNotFound
	}
	return state.Clone(), nil
}

func (m *MemoryGameStore) PutGame(_ context.Context, state GameState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[state.ID] = state.Clone()
	return nil
}
