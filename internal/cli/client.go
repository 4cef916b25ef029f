package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"holdco/internal/game"
)

type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   strings.TrimSpace(token),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type CreateGameRequest struct {
	Seed       int64             `json:"seed,omitempty"`
	Duration   game.GameDuration `json:"duration,omitempty"`
	Difficulty game.Difficulty   `json:"difficulty,omitempty"`
	Sector     string            `json:"sector,omitempty"`
}

type AdvanceResponse struct {
	State  game.GameState   `json:"state"`
	Report game.RoundReport `json:"report"`
}

type ChoiceResponse struct {
	State   game.GameState     `json:"state"`
	Impacts []game.EventImpact `json:"impacts"`
}

type SubmitResponse struct {
	Entry game.LeaderboardEntry `json:"entry"`
	Rank  int                   `json:"rank"`
}

func (c *Client) CreateGame(ctx context.Context, in CreateGameRequest) (game.GameState, error) {
	var out game.GameState
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/games", "", in, &out, "")
	return out, err
}

func (c *Client) Game(ctx context.Context, id string) (game.GameState, error) {
	var out game.GameState
	err := c.jsonRequest(ctx, http.MethodGet, gamePath(id, ""), "", nil, &out, "")
	return out, err
}

func (c *Client) Advance(ctx context.Context, id string) (AdvanceResponse, error) {
	var out AdvanceResponse
	err := c.jsonRequest(ctx, http.MethodPost, gamePath(id, "/advance"), "", nil, &out, "")
	return out, err
}

func (c *Client) Choose(ctx context.Context, id, action string) (ChoiceResponse, error) {
	var out ChoiceResponse
	err := c.jsonRequest(ctx, http.MethodPost, gamePath(id, "/choices"), "", map[string]any{
		"action": action,
	}, &out, "")
	return out, err
}

func (c *Client) Metrics(ctx context.Context, id string) (game.Metrics, error) {
	var out game.Metrics
	err := c.jsonRequest(ctx, http.MethodGet, gamePath(id, "/metrics"), "", nil, &out, "")
	return out, err
}

func (c *Client) Valuation(ctx context.Context, id, businessID string) (game.ExitValuation, error) {
	var out game.ExitValuation
	err := c.jsonRequest(ctx, http.MethodGet, gamePath(id, "/businesses/"+url.PathEscape(businessID)+"/valuation"), "", nil, &out, "")
	return out, err
}

func (c *Client) Score(ctx context.Context, id string) (game.ScoreReport, error) {
	var out game.ScoreReport
	err := c.jsonRequest(ctx, http.MethodGet, gamePath(id, "/score"), "", nil, &out, "")
	return out, err
}

func (c *Client) Leaderboard(ctx context.Context, limit int) ([]game.LeaderboardEntry, error) {
	path := "/v1/leaderboard"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out struct {
		Entries []game.LeaderboardEntry `json:"entries"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, path, "", nil, &out, "")
	return out.Entries, err
}

func (c *Client) Submit(ctx context.Context, in game.Submission, idem string) (SubmitResponse, error) {
	var out SubmitResponse
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/leaderboard", c.Token, in, &out, idem)
	return out, err
}

// Do sends a raw JSON body. Queued commands are replayed through it.
func (c *Client) Do(ctx context.Context, method, path string, body json.RawMessage, idem string) (map[string]any, error) {
	var out map[string]any
	var in any
	if len(body) > 0 {
		in = body
	}
	err := c.jsonRequest(ctx, method, path, c.Token, in, &out, idem)
	return out, err
}

func gamePath(id, suffix string) string {
	return "/v1/games/" + url.PathEscape(id) + suffix
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api status %d: %s", e.Code, e.Body)
}

func (c *Client) jsonRequest(ctx context.Context, method, path, accessToken string, in any, out any, idem string) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	if idem != "" {
		req.Header.Set("Idempotency-Key", idem)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
