package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	cl "holdco/internal/cli"
	"holdco/internal/config"
	"holdco/internal/game"
	"holdco/internal/persistence"
	"holdco/internal/syncq"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type globals struct {
	cfg     config.CLIConfig
	apiBase string
	verbose bool
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	g := &globals{cfg: config.LoadCLIFromEnv()}
	g.apiBase = g.cfg.APIBaseURL

	root := &cobra.Command{
		Use:          "holdco",
		Short:        "Holding company simulation",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&g.apiBase, "api", g.apiBase, "API base URL")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "log engine activity to stderr")

	root.AddCommand(
		newSimulateCmd(g),
		newSavesCmd(g),
		newNewGameCmd(g),
		newStatusCmd(g),
		newAdvanceCmd(g),
		newChooseCmd(g),
		newScoreCmd(g),
		newLeaderboardCmd(g),
		newSubmitCmd(g),
		newSyncCmd(g),
		newProfileCmd(),
		newCatalogCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func (g *globals) client() *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(g.apiBase), "/"), g.cfg.SubmitToken)
}

func (g *globals) logger() *slog.Logger {
	level := slog.LevelWarn
	if g.verbose {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// localService runs the engine in-process against the local save file.
func (g *globals) localService() (*game.Service, *persistence.DB, error) {
	saves, err := persistence.Open(g.cfg.SavesPath)
	if err != nil {
		return nil, nil, err
	}
	return game.NewService(saves, game.NewMemoryLeaderboard(), g.logger()), saves, nil
}

func newSimulateCmd(g *globals) *cobra.Command {
	var (
		scenarioPath string
		seed         int64
		duration     string
		difficulty   string
		sector       string
		quiet        bool
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play a full game locally on autopilot",
		RunE: func(cmd *cobra.Command, args []string) error {
			sc := config.Scenario{
				Seed:       seed,
				Duration:   game.GameDuration(duration),
				Difficulty: game.Difficulty(difficulty),
				Sector:     sector,
			}
			if scenarioPath != "" {
				loaded, err := config.LoadScenario(scenarioPath)
				if err != nil {
					return err
				}
				sc = mergeScenarioFlags(cmd, loaded, sc)
			}

			svc, saves, err := g.localService()
			if err != nil {
				return err
			}
			defer saves.Close()

			ctx := cmd.Context()
			state, err := svc.CreateGame(ctx, game.NewGameConfig{
				Seed:       sc.Seed,
				Duration:   sc.Duration,
				Difficulty: sc.Difficulty,
				SectorID:   sc.Sector,
			})
			if err != nil {
				return err
			}
			if sc.Name != "" {
				accent.Printf("Scenario: %s\n", sc.Name)
			}
			printInfo(fmt.Sprintf("Game %s (seed %d)", state.ID, state.Seed))

			for !state.IsOver() {
				next, report, err := svc.Advance(ctx, state.ID)
				if err != nil {
					return err
				}
				state = next
				if !quiet {
					renderRound(report, state.Cash)
				}
				if report.AwaitingInput && state.BankruptRound == 0 && state.CurrentEvent != nil {
					action := game.AutopilotChoice(state, *state.CurrentEvent, sc.Choices)
					if action == "" {
						continue
					}
					resolved, impacts, err := svc.ResolveChoice(ctx, state.ID, action)
					if err != nil {
						return err
					}
					state = resolved
					if !quiet {
						printInfo("     -> " + action)
						renderImpacts(impacts)
					}
				}
			}

			if state.BankruptRound > 0 {
				printError(fmt.Sprintf("Bankrupt in round %d.", state.BankruptRound))
			}
			report, err := svc.Score(ctx, state.ID)
			if err != nil {
				return err
			}
			renderScore(report)
			if err := rememberGame(state.ID, sc.Initials, sc.HoldcoName); err != nil {
				printWarn("Could not update profile: " + err.Error())
			}
			printInfo("Submit with `holdco submit " + state.ID + "`.")
			return nil
		},
	}
	cmd.Flags().StringVar(&scenarioPath, "scenario", "", "YAML scenario file")
	cmd.Flags().Int64Var(&seed, "seed", 0, "RNG seed (0 picks one)")
	cmd.Flags().StringVar(&duration, "duration", string(game.DurationStandard), "standard or quick")
	cmd.Flags().StringVar(&difficulty, "difficulty", string(game.DifficultyEasy), "easy or normal")
	cmd.Flags().StringVar(&sector, "sector", "", "starting sector id (empty picks one)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only print the final score")
	return cmd
}

// mergeScenarioFlags lets explicitly set flags override the scenario file.
func mergeScenarioFlags(cmd *cobra.Command, sc, flags config.Scenario) config.Scenario {
	if cmd.Flags().Changed("seed") {
		sc.Seed = flags.Seed
	}
	if cmd.Flags().Changed("duration") {
		sc.Duration = flags.Duration
	}
	if cmd.Flags().Changed("difficulty") {
		sc.Difficulty = flags.Difficulty
	}
	if cmd.Flags().Changed("sector") {
		sc.Sector = flags.Sector
	}
	return sc
}

func rememberGame(gameID, initials, holdcoName string) error {
	p, err := cl.LoadProfile()
	if err != nil {
		return err
	}
	p.LastGameID = gameID
	if initials != "" {
		p.Initials = initials
	}
	if holdcoName != "" {
		p.HoldcoName = holdcoName
	}
	return cl.SaveProfile(p)
}

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List shared services, turnaround programs and platform recipes with their costs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			renderCatalog(game.SharedServiceCatalog(), game.TurnaroundTiers(), game.PlatformRecipes())
			return nil
		},
	}
}

func newSavesCmd(g *globals) *cobra.Command {
	var limit int
	saves := &cobra.Command{
		Use:   "saves",
		Short: "List locally saved games",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := persistence.Open(g.cfg.SavesPath)
			if err != nil {
				return err
			}
			defer db.Close()
			list, err := db.ListGames(cmd.Context(), limit)
			if err != nil {
				return err
			}
			renderSaves(list)
			return nil
		},
	}
	saves.Flags().IntVar(&limit, "limit", 20, "max saves to list")
	saves.AddCommand(&cobra.Command{
		Use:   "rm <game-id>",
		Short: "Delete a saved game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := persistence.Open(g.cfg.SavesPath)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.DeleteGame(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSuccess("Deleted " + args[0])
			return nil
		},
	})
	return saves
}

func newNewGameCmd(g *globals) *cobra.Command {
	var (
		seed       int64
		duration   string
		difficulty string
		sector     string
	)
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Start a game on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			state, err := g.client().CreateGame(ctx, cl.CreateGameRequest{
				Seed:       seed,
				Duration:   game.GameDuration(duration),
				Difficulty: game.Difficulty(difficulty),
				Sector:     sector,
			})
			if err != nil {
				return err
			}
			if err := rememberGame(state.ID, "", ""); err != nil {
				printWarn("Could not update profile: " + err.Error())
			}
			printSuccess("Game started: " + state.ID)
			renderState(state)
			return nil
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 0, "RNG seed (0 lets the server pick)")
	cmd.Flags().StringVar(&duration, "duration", "", "standard or quick")
	cmd.Flags().StringVar(&difficulty, "difficulty", "", "easy or normal")
	cmd.Flags().StringVar(&sector, "sector", "", "starting sector id")
	return cmd
}

// gameIDArg falls back to the last game this profile touched.
func gameIDArg(args []string) (string, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return strings.TrimSpace(args[0]), nil
	}
	p, err := cl.LoadProfile()
	if err != nil {
		return "", err
	}
	if p.LastGameID == "" {
		return "", errors.New("no game id given and no recent game; run `holdco new` first")
	}
	return p.LastGameID, nil
}

func newStatusCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "status [game-id]",
		Short: "Show a server game",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := gameIDArg(args)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			state, err := g.client().Game(ctx, id)
			if err != nil {
				return err
			}
			renderState(state)
			return nil
		},
	}
}

func newAdvanceCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "advance [game-id]",
		Short: "Play the next round of a server game",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := gameIDArg(args)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := g.client().Advance(ctx, id)
			if err != nil {
				return err
			}
			renderRound(out.Report, out.State.Cash)
			if out.Report.AwaitingInput {
				renderEvent(out.Report.Event)
				printInfo("Decide with `holdco choose`.")
			}
			if out.Report.GameOver {
				printSuccess("Game over. See `holdco score`.")
			}
			return nil
		},
	}
}

func newChooseCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "choose [action]",
		Short: "Resolve the pending event on the last server game",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := gameIDArg(nil)
			if err != nil {
				return err
			}
			client := g.client()
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			action := ""
			if len(args) == 1 {
				action = args[0]
			} else {
				state, err := client.Game(ctx, id)
				if err != nil {
					return err
				}
				if state.CurrentEvent == nil || !game.HasChoices(*state.CurrentEvent) {
					printInfo("Nothing to decide.")
					return nil
				}
				renderEvent(*state.CurrentEvent)
				if action, err = promptChoice(*state.CurrentEvent, state.Cash); err != nil {
					return err
				}
			}
			out, err := client.Choose(ctx, id, action)
			if err != nil {
				return err
			}
			printSuccess("Resolved: " + action)
			renderImpacts(out.Impacts)
			return nil
		},
	}
}

func newScoreCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "score [game-id]",
		Short: "Show the score of a server game",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := gameIDArg(args)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := g.client().Score(ctx, id)
			if err != nil {
				return err
			}
			renderScore(out)
			return nil
		},
	}
}

func newLeaderboardCmd(g *globals) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the global leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			entries, err := g.client().Leaderboard(ctx, limit)
			if err != nil {
				return err
			}
			renderLeaderboard(entries, "Global Leaderboard")
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "rows to show")
	return cmd
}

func newSubmitCmd(g *globals) *cobra.Command {
	var initials, holdcoName string
	cmd := &cobra.Command{
		Use:   "submit [game-id]",
		Short: "Submit a finished local game to the leaderboard",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := gameIDArg(args)
			if err != nil {
				return err
			}
			p, err := cl.LoadProfile()
			if err != nil {
				return err
			}
			if initials == "" {
				initials = p.Initials
			}
			if holdcoName == "" {
				holdcoName = p.HoldcoName
			}
			if initials == "" {
				if initials, err = promptRequired("Initials (2-4)"); err != nil {
					return err
				}
			}
			if holdcoName == "" {
				if holdcoName, err = promptRequired("Holdco name"); err != nil {
					return err
				}
			}

			saves, err := persistence.Open(g.cfg.SavesPath)
			if err != nil {
				return err
			}
			defer saves.Close()
			state, err := saves.GetGame(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !state.IsOver() {
				return game.ErrGameInProgress
			}

			sub := game.Submission{
				GameID:     state.ID,
				State:      &state,
				Initials:   initials,
				HoldcoName: holdcoName,
			}
			idem := uuid.NewString()
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := g.client().Submit(ctx, sub, idem)
			if err != nil {
				var se *cl.StatusError
				if errors.As(err, &se) {
					return err
				}
				body, mErr := json.Marshal(sub)
				if mErr != nil {
					return mErr
				}
				if qErr := syncq.Push(syncq.Command{
					Method:         http.MethodPost,
					Path:           "/v1/leaderboard",
					Body:           body,
					IdempotencyKey: idem,
				}); qErr != nil {
					return fmt.Errorf("submit failed (%v) and could not queue: %w", err, qErr)
				}
				printWarn("API unreachable; submission queued. Run `holdco sync` later.")
				return nil
			}
			_ = cl.SaveProfile(cl.Profile{Initials: initials, HoldcoName: holdcoName, LastGameID: id})
			if out.Rank > 0 {
				printSuccess(fmt.Sprintf("Submitted. Rank #%d with score %d (%s).", out.Rank, out.Entry.Score, out.Entry.Grade))
			} else {
				printInfo(fmt.Sprintf("Submitted score %d (%s); not enough to make the board.", out.Entry.Score, out.Entry.Grade))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&initials, "initials", "", "2-4 letters or digits")
	cmd.Flags().StringVar(&holdcoName, "name", "", "holdco name")
	return cmd
}

func newSyncCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replay locally queued leaderboard submissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			queue, err := syncq.Load()
			if err != nil {
				return err
			}
			if len(queue) == 0 {
				printInfo("Sync queue is empty.")
				return nil
			}
			client := g.client()
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			sent, failed, err := syncq.Drain(func(q syncq.Command) error {
				_, err := client.Do(ctx, q.Method, q.Path, q.Body, q.IdempotencyKey)
				return err
			}, retryable)
			for _, q := range failed {
				printError(fmt.Sprintf("Sync failed for %s %s: %s", q.Method, q.Path, q.LastError))
			}
			if err != nil {
				return err
			}
			remaining, err := syncq.Load()
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Sync complete: replayed=%d remaining=%d", sent, len(remaining)))
			return nil
		},
	}
}

// retryable keeps network failures and server errors queued. Client errors
// such as a duplicate submission will never succeed on replay.
func retryable(err error) bool {
	var se *cl.StatusError
	if errors.As(err, &se) {
		return se.Code >= http.StatusInternalServerError
	}
	return true
}

func newProfileCmd() *cobra.Command {
	var initials, holdcoName string
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or set the name used for leaderboard submissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := cl.LoadProfile()
			if err != nil {
				return err
			}
			changed := false
			if initials != "" {
				p.Initials = initials
				changed = true
			}
			if holdcoName != "" {
				p.HoldcoName = holdcoName
				changed = true
			}
			if changed {
				if err := cl.SaveProfile(p); err != nil {
					return err
				}
				printSuccess("Profile saved.")
			}
			fmt.Printf("Initials:  %s\nHoldco:    %s\nLast game: %s\n", p.Initials, p.HoldcoName, p.LastGameID)
			return nil
		},
	}
	cmd.Flags().StringVar(&initials, "initials", "", "2-4 letters or digits")
	cmd.Flags().StringVar(&holdcoName, "name", "", "holdco name")
	return cmd
}
