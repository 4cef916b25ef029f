package db

import (
	"strings"
	"testing"
	"time"
)

func TestLeaderboardQueriesUseDollarPlaceholders(t *testing.T) {
	sqlStr, args, err := psql.Insert(leaderboardTable).
		Columns(leaderboardColumns...).
		Values("id", "g", "AB", "Acme", 80, "A", int64(1), int64(2), 3, "easy", "standard", time.Time{}).
		ToSql()
	if err != nil {
		t.Fatalf("build insert: %v", err)
	}
	if !strings.HasPrefix(sqlStr, "INSERT INTO leaderboard_entries (id,game_id,") {
		t.Fatalf("unexpected insert: %s", sqlStr)
	}
	if !strings.Contains(sqlStr, "$12") || strings.Contains(sqlStr, "?") {
		t.Fatalf("expected twelve dollar placeholders: %s", sqlStr)
	}
	if len(args) != len(leaderboardColumns) {
		t.Fatalf("expected %d args, got %d", len(leaderboardColumns), len(args))
	}
}

func TestLeaderboardSelectOrdering(t *testing.T) {
	sqlStr, _, err := psql.Select(leaderboardColumns...).
		From(leaderboardTable).
		OrderBy(colFounderEquityValue+" DESC", colScore+" DESC", colCreatedAt+" ASC").
		ToSql()
	if err != nil {
		t.Fatalf("build select: %v", err)
	}
	want := "ORDER BY founder_equity_value DESC, score DESC, created_at ASC"
	if !strings.HasSuffix(sqlStr, want) {
		t.Fatalf("expected %q in %s", want, sqlStr)
	}
}
