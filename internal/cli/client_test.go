package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"holdco/internal/api"
	"holdco/internal/config"
	"holdco/internal/game"
)

func newTestClient(t *testing.T, token string) *Client {
	t.Helper()
	svc := game.NewService(game.NewMemoryGameStore(), game.NewMemoryLeaderboard(), nil)
	srv := api.New(config.APIConfig{AllowedOrigins: []string{"*"}, SubmitToken: token, LeaderboardLimit: 10}, nil, svc)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return NewClient(ts.URL+"/", token)
}

func TestClientPlaysAGame(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t, "")

	state, err := c.CreateGame(ctx, CreateGameRequest{Seed: 12, Duration: game.DurationQuick, Sector: "saas"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if state.ID == "" || state.Businesses[0].SectorID != "saas" {
		t.Fatalf("unexpected game: %+v", state)
	}

	for !state.IsOver() {
		adv, err := c.Advance(ctx, state.ID)
		if err != nil {
			t.Fatalf("advance: %v", err)
		}
		state = adv.State
		if adv.Report.AwaitingInput && state.BankruptRound == 0 {
			action := game.AutopilotChoice(state, *state.CurrentEvent, nil)
			res, err := c.Choose(ctx, state.ID, action)
			if err != nil {
				t.Fatalf("choose %s: %v", action, err)
			}
			state = res.State
		}
	}

	score, err := c.Score(ctx, state.ID)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if !score.Final {
		t.Fatalf("finished game should have a final score")
	}

	sub, err := c.Submit(ctx, game.Submission{GameID: state.ID, Initials: "cd", HoldcoName: "Client Co"}, "idem-42")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if sub.Entry.ID != "idem-42" || sub.Rank != 1 {
		t.Fatalf("unexpected submit response: %+v", sub)
	}

	board, err := c.Leaderboard(ctx, 5)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board) != 1 || board[0].Initials != "CD" {
		t.Fatalf("unexpected board: %+v", board)
	}
}

func TestClientReadEndpoints(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t, "")
	state, err := c.CreateGame(ctx, CreateGameRequest{Seed: 3})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := c.Game(ctx, state.ID)
	if err != nil || got.ID != state.ID {
		t.Fatalf("game: %v %+v", err, got)
	}
	m, err := c.Metrics(ctx, state.ID)
	if err != nil || m.ActiveBusinesses != 1 {
		t.Fatalf("metrics: %v %+v", err, m)
	}
	v, err := c.Valuation(ctx, state.ID, "biz-1")
	if err != nil || v.TotalMultiple < game.MinExitMultiple {
		t.Fatalf("valuation: %v %+v", err, v)
	}
}

func TestClientStatusError(t *testing.T) {
	c := newTestClient(t, "")
	_, err := c.Game(context.Background(), "missing")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected a StatusError, got %v", err)
	}
	if se.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", se.Code)
	}
}

func TestClientDoReplaysRawCommands(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t, "tok")

	state, _ := game.NewGame(game.NewGameConfig{ID: "offline", Seed: 6, SectorID: "education"}, game.NewSeededRand(6))
	for r := 1; r <= state.MaxRounds; r++ {
		state.History = append(state.History, game.HistoricalMetrics{Round: r})
	}
	state.Round = state.MaxRounds + 1
	body, err := json.Marshal(game.Submission{State: &state, Initials: "EF", HoldcoName: "Offline Holdings"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	out, err := c.Do(ctx, http.MethodPost, "/v1/leaderboard", body, "queued-1")
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	entry, _ := out["entry"].(map[string]any)
	if entry["id"] != "queued-1" {
		t.Fatalf("unexpected response: %v", out)
	}

	c.Token = "wrong"
	_, err = c.Do(ctx, http.MethodPost, "/v1/leaderboard", body, "queued-2")
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}
