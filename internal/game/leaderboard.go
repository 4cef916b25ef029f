package game

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

const MaxLeaderboardEntries = 50

type LeaderboardEntry struct {
	ID                 string       `json:"id"`
	GameID             string       `json:"game_id"`
	Initials           string       `json:"initials"`
	HoldcoName         string       `json:"holdco_name"`
	Score              int          `json:"score"`
	Grade              string       `json:"grade"`
	EnterpriseValue    int64        `json:"enterprise_value"`
	FounderEquityValue int64        `json:"founder_equity_value"`
	BusinessCount      int          `json:"business_count"`
	Difficulty         Difficulty   `json:"difficulty"`
	Duration           GameDuration `json:"duration"`
	CreatedAt          time.Time    `json:"created_at"`
}

// LeaderboardStore persists the ranked board. Implementations replace the
// whole board on Save.
type LeaderboardStore interface {
	Load(ctx context.Context) ([]LeaderboardEntry, error)
	Save(ctx context.Context, entries []LeaderboardEntry) error
}

func difficultyMultiplier(d Difficulty) float64 {
	if d == DifficultyNormal {
		return 1.15
	}
	return 1.0
}

// AdjustedValue is the ranking key: founder equity scaled for difficulty.
func (e LeaderboardEntry) AdjustedValue() float64 {
	return float64(e.FounderEquityValue) * difficultyMultiplier(e.Difficulty)
}

// RankLeaderboard sorts by adjusted founder equity, then score, then age.
func RankLeaderboard(entries []LeaderboardEntry) []LeaderboardEntry {
	out := append([]LeaderboardEntry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		ai, aj := out[i].AdjustedValue(), out[j].AdjustedValue()
		if ai != aj {
			return ai > aj
		}
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// AddLeaderboardEntry inserts e and trims the board to its maximum size.
func AddLeaderboardEntry(entries []LeaderboardEntry, e LeaderboardEntry) []LeaderboardEntry {
	e.Initials = strings.ToUpper(strings.TrimSpace(e.Initials))
	ranked := RankLeaderboard(append(append([]LeaderboardEntry(nil), entries...), e))
	if len(ranked) > MaxLeaderboardEntries {
		ranked = ranked[:MaxLeaderboardEntries]
	}
	return ranked
}

// WouldMakeLeaderboard reports whether a result would survive the trim.
func WouldMakeLeaderboard(entries []LeaderboardEntry, founderEquityValue int64, d Difficulty) bool {
	if len(entries) < MaxLeaderboardEntries {
		return true
	}
	ranked := RankLeaderboard(entries)
	candidate := LeaderboardEntry{FounderEquityValue: founderEquityValue, Difficulty: d}
	return candidate.AdjustedValue() > ranked[len(ranked)-1].AdjustedValue()
}

// NewLeaderboardEntry scores a finished game for submission.
func NewLeaderboardEntry(state GameState, initials, holdcoName string, now time.Time) LeaderboardEntry {
	score := CalculateFinalScore(state)
	return LeaderboardEntry{
		GameID:             state.ID,
		Initials:           strings.ToUpper(strings.TrimSpace(initials)),
		HoldcoName:         strings.TrimSpace(holdcoName),
		Score:              score.Total,
		Grade:              score.Grade,
		EnterpriseValue:    CalculateEnterpriseValue(state),
		FounderEquityValue: CalculateFounderEquityValue(state),
		BusinessCount:      len(state.ActiveBusinesses()),
		Difficulty:         state.Difficulty,
		Duration:           state.Duration,
		CreatedAt:          now.UTC(),
	}
}

// MemoryLeaderboard is an in-process LeaderboardStore.
type MemoryLeaderboard struct {
	mu      sync.Mutex
	entries []LeaderboardEntry
}

func NewMemoryLeaderboard() *MemoryLeaderboard {
	return &MemoryLeaderboard{}
}

func (m *MemoryLeaderboard) Load(_ context.Context) ([]LeaderboardEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]LeaderboardEntry(nil), m.entries...), nil
}

func (m *MemoryLeaderboard) Save(_ context.Context, entries []LeaderboardEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append([]LeaderboardEntry(nil), entries...)
	return nil
}
