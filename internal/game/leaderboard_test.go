package game

import (
	"fmt"
	"testing"
	"time"
)

func TestRankLeaderboard(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := []LeaderboardEntry{
		{ID: "easy", FounderEquityValue: 11_000, Difficulty: DifficultyEasy, Score: 90, CreatedAt: base},
		{ID: "normal", FounderEquityValue: 10_000, Difficulty: DifficultyNormal, Score: 50, CreatedAt: base},
		{ID: "tie-old", FounderEquityValue: 5_000, Difficulty: DifficultyEasy, Score: 70, CreatedAt: base},
		{ID: "tie-new", FounderEquityValue: 5_000, Difficulty: DifficultyEasy, Score: 70, CreatedAt: base.Add(time.Hour)},
		{ID: "tie-score", FounderEquityValue: 5_000, Difficulty: DifficultyEasy, Score: 80, CreatedAt: base.Add(2 * time.Hour)},
	}
	got := RankLeaderboard(entries)
	want := []string{"normal", "easy", "tie-score", "tie-old", "tie-new"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i+1, id, got[i].ID)
		}
	}
	if entries[0].ID != "easy" {
		t.Fatalf("input slice was reordered")
	}
}

func TestAddLeaderboardEntryCaps(t *testing.T) {
	var entries []LeaderboardEntry
	for i := 0; i < MaxLeaderboardEntries; i++ {
		entries = AddLeaderboardEntry(entries, LeaderboardEntry{ID: fmt.Sprintf("e%d", i), FounderEquityValue: int64(1_000 + i)})
	}
	if len(entries) != MaxLeaderboardEntries {
		t.Fatalf("expected %d entries, got %d", MaxLeaderboardEntries, len(entries))
	}

	entries = AddLeaderboardEntry(entries, LeaderboardEntry{ID: "low", FounderEquityValue: 1})
	if len(entries) != MaxLeaderboardEntries {
		t.Fatalf("board should stay capped, got %d", len(entries))
	}
	for _, e := range entries {
		if e.ID == "low" {
			t.Fatalf("lowest entry should be trimmed")
		}
	}

	entries = AddLeaderboardEntry(entries, LeaderboardEntry{ID: "top", Initials: " ab ", FounderEquityValue: 99_999})
	if entries[0].ID != "top" || entries[0].Initials != "AB" {
		t.Fatalf("expected normalized top entry, got %+v", entries[0])
	}
}

func TestWouldMakeLeaderboard(t *testing.T) {
	if !WouldMakeLeaderboard(nil, 0, DifficultyEasy) {
		t.Fatalf("an empty board accepts anything")
	}
	var entries []LeaderboardEntry
	for i := 0; i < MaxLeaderboardEntries; i++ {
		entries = append(entries, LeaderboardEntry{FounderEquityValue: 1_000, Difficulty: DifficultyEasy})
	}
	if WouldMakeLeaderboard(entries, 1_000, DifficultyEasy) {
		t.Fatalf("a tie with the last entry should not make a full board")
	}
	if !WouldMakeLeaderboard(entries, 900, DifficultyNormal) {
		t.Fatalf("900 on normal adjusts to 1035 and should make the board")
	}
}

func TestAdjustedValue(t *testing.T) {
	e := LeaderboardEntry{FounderEquityValue: 1_000, Difficulty: DifficultyNormal}
	if !approxEqual(e.AdjustedValue(), 1_150) {
		t.Fatalf("expected 1150, got %v", e.AdjustedValue())
	}
	e.Difficulty = DifficultyEasy
	if e.AdjustedValue() != 1_000 {
		t.Fatalf("expected 1000, got %v", e.AdjustedValue())
	}
}

func TestNewLeaderboardEntry(t *testing.T) {
	state := sampleState(sampleBusiness("a", "agency", 1_000))
	state.Round = state.MaxRounds + 1
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("EST", -5*3600))

	e := NewLeaderboardEntry(state, " xy ", "  Acme Holdings ", now)
	if e.Initials != "XY" || e.HoldcoName != "Acme Holdings" {
		t.Fatalf("unexpected names: %q %q", e.Initials, e.HoldcoName)
	}
	if e.GameID != state.ID || e.BusinessCount != 1 || e.CreatedAt.Location() != time.UTC {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if e.FounderEquityValue != CalculateFounderEquityValue(state) {
		t.Fatalf("founder equity mismatch")
	}
}
