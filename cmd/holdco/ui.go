package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"holdco/internal/game"
	"holdco/internal/persistence"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	stdinReader = bufio.NewReader(os.Stdin)
	accent      = color.New(color.FgCyan, color.Bold)
	success     = color.New(color.FgGreen, color.Bold)
	warn        = color.New(color.FgYellow, color.Bold)
	danger      = color.New(color.FgRed, color.Bold)
	neutral     = color.New(color.FgHiWhite)
)

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printError(msg string) {
	danger.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func promptRequired(label string) (string, error) {
	for {
		fmt.Printf("%s: ", label)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text)
		if text != "" {
			return text, nil
		}
		printWarn(label + " is required.")
	}
}

// promptChoice uses the arrow-key picker on a terminal and a numbered prompt otherwise.
func promptChoice(ev game.GameEvent, cash int64) (string, error) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return pickChoice(ev, cash)
	}
	for i, c := range ev.Choices {
		cost := ""
		if c.Cost > 0 {
			cost = " (" + formatMoney(c.Cost) + ")"
		}
		fmt.Printf("  %d) %s%s\n", i+1, c.Label, cost)
	}
	for {
		text, err := promptRequired("Pick")
		if err != nil {
			return "", err
		}
		n, err := strconv.Atoi(text)
		if err == nil && n >= 1 && n <= len(ev.Choices) {
			return ev.Choices[n-1].Action, nil
		}
		for _, c := range ev.Choices {
			if strings.EqualFold(c.Action, text) {
				return c.Action, nil
			}
		}
		printWarn("Invalid option. Please pick one of the listed values.")
	}
}

func renderState(s game.GameState) {
	accent.Printf("\n== %s ==\n", strings.ToUpper("Holdco "+truncate(s.ID, 8)))
	round := s.Round
	if round > s.MaxRounds {
		round = s.MaxRounds
	}
	fmt.Printf("Round %d/%d  %s  %s\n", round, s.MaxRounds, s.Duration, s.Difficulty)
	fmt.Printf("Cash %s  Holdco debt %s  Rate %.2f%%\n", formatMoney(s.Cash), formatMoney(s.TotalDebt), s.InterestRate*100)
	fmt.Printf("%-8s %-24s %-16s %12s %12s %8s\n", "ID", "NAME", "SECTOR", "REVENUE", "EBITDA", "MARGIN")
	for _, b := range s.ActiveBusinesses() {
		fmt.Printf("%-8s %-24s %-16s %12s %12s %7.1f%%\n",
			truncate(b.ID, 8),
			truncate(b.Name, 24),
			truncate(b.SectorID, 16),
			formatMoney(b.Revenue),
			formatMoney(b.EBITDA),
			b.EBITDAMargin*100,
		)
	}
	if s.CurrentEvent != nil {
		fmt.Println()
		renderEvent(*s.CurrentEvent)
	}
	fmt.Println()
}

func renderEvent(ev game.GameEvent) {
	if ev.Type == game.EventQuiet {
		printInfo(ev.Title)
		return
	}
	warn.Printf("%s\n", ev.Title)
	if ev.Description != "" {
		printInfo(ev.Description)
	}
	if ev.OfferAmount > 0 {
		fmt.Printf("Offer %s (%.1fx)\n", formatMoney(ev.OfferAmount), ev.OfferMultiple)
	}
}

func renderRound(r game.RoundReport, cash int64) {
	level := string(r.Closing.DistressLevel)
	switch r.Closing.DistressLevel {
	case game.DistressComfortable:
		level = success.Sprint(level)
	case game.DistressElevated:
		level = warn.Sprint(level)
	default:
		level = danger.Sprint(level)
	}
	fmt.Printf("R%-3d EBITDA %10s  FCF %12s  cash %10s  lev %5.2fx %s  %s\n",
		r.Round,
		formatMoney(r.Operating.TotalEBITDA),
		colorizeMoney(r.Operating.FCF),
		formatMoney(cash),
		r.Closing.NetDebtToEBITDA,
		level,
		truncate(r.Event.Title, 40),
	)
}

func renderImpacts(impacts []game.EventImpact) {
	for _, im := range impacts {
		who := im.BusinessName
		if who == "" {
			who = "holdco"
		}
		fmt.Printf("  %-24s %-16s %12.2f -> %12.2f\n", truncate(who, 24), im.Metric, im.Before, im.After)
	}
}

var scoreCard = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("63")).
	Padding(0, 2)

func renderScore(r game.ScoreReport) {
	var b strings.Builder
	fmt.Fprintf(&b, "%d/100  grade %s  %s\n\n", r.Score.Total, r.Score.Grade, r.Score.Title)
	fmt.Fprintf(&b, "FCF/share growth     %5.1f / 25\n", r.Score.FCFShareGrowth)
	fmt.Fprintf(&b, "Portfolio ROIC       %5.1f / 20\n", r.Score.PortfolioROIC)
	fmt.Fprintf(&b, "Capital deployment   %5.1f / 20\n", r.Score.CapitalDeployment)
	fmt.Fprintf(&b, "Balance sheet        %5.1f / 15\n", r.Score.BalanceSheetHealth)
	fmt.Fprintf(&b, "Strategic discipline %5.1f / 20\n\n", r.Score.StrategicDiscipline)
	fmt.Fprintf(&b, "Enterprise value %s\nFounder equity   %s", formatMoney(r.EnterpriseValue), formatMoney(r.FounderEquityValue))

	accent.Printf("\n== FINAL SCORE ==\n")
	fmt.Println(scoreCard.Render(b.String()))
	if !r.Final {
		printWarn("Game still in progress; score is provisional.")
	}
	for _, line := range r.Insights {
		printInfo("- " + line)
	}
	fmt.Println()
}

func renderLeaderboard(entries []game.LeaderboardEntry, title string) {
	accent.Printf("\n== %s ==\n", strings.ToUpper(title))
	if len(entries) == 0 {
		printInfo("No leaderboard rows yet.")
		return
	}
	fmt.Printf("%-6s %-6s %-22s %6s %5s %14s %-8s\n", "RANK", "WHO", "HOLDCO", "SCORE", "GRADE", "EQUITY", "MODE")
	for i, e := range entries {
		fmt.Printf("%-6d %-6s %-22s %6d %5s %14s %-8s\n",
			i+1,
			e.Initials,
			truncate(e.HoldcoName, 22),
			e.Score,
			e.Grade,
			formatMoney(e.FounderEquityValue),
			e.Difficulty,
		)
	}
	fmt.Println()
}

func renderSaves(saves []persistence.SaveSummary) {
	accent.Printf("\n== SAVED GAMES ==\n")
	if len(saves) == 0 {
		printInfo("No saved games.")
		return
	}
	fmt.Printf("%-38s %6s %-9s %s\n", "ID", "ROUND", "STATUS", "UPDATED")
	for _, s := range saves {
		status := "playing"
		if s.Bankrupt {
			status = danger.Sprint("bankrupt")
		}
		fmt.Printf("%-38s %6d %-9s %s\n", s.ID, s.Round, status, s.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	fmt.Println()
}

func renderCatalog(services []game.SharedServiceSpec, tiers []game.TurnaroundTier, recipes []game.PlatformRecipe) {
	accent.Printf("\n== SHARED SERVICES ==\n")
	fmt.Printf("%-24s %10s %10s\n", "SERVICE", "UNLOCK", "ANNUAL")
	for _, s := range services {
		fmt.Printf("%-24s %10s %10s\n", truncate(s.Name, 24), formatMoney(s.UnlockCost), formatMoney(s.AnnualCost))
	}

	accent.Printf("\n== TURNAROUND PROGRAMS ==\n")
	fmt.Printf("%-4s %-26s %10s %10s %6s %8s\n", "TIER", "PROGRAM", "UPFRONT", "ANNUAL", "ROUNDS", "MARGIN")
	for _, t := range tiers {
		fmt.Printf("%-4d %-26s %10s %10s %6d %7.1f%%\n", t.Tier, truncate(t.Name, 26), formatMoney(t.UpfrontCost), formatMoney(t.AnnualCost), t.Rounds, t.MarginBoost*100)
	}

	accent.Printf("\n== PLATFORM RECIPES ==\n")
	fmt.Printf("%-26s %-28s %4s %10s %6s\n", "RECIPE", "SECTORS", "MIN", "FORGE", "MULT")
	for _, r := range recipes {
		fmt.Printf("%-26s %-28s %4d %10s %5.2fx\n", truncate(r.Name, 26), truncate(strings.Join(r.SectorIDs, ","), 28), r.MinConstituents, formatMoney(r.ForgeCost), r.MultipleExpansion)
	}
	fmt.Println()
}

func colorizeMoney(v int64) string {
	text := formatMoney(v)
	switch {
	case v > 0:
		return success.Sprint(text)
	case v < 0:
		return danger.Sprint(text)
	default:
		return neutral.Sprint(text)
	}
}

// formatMoney renders an amount held in thousands.
func formatMoney(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s$%sk", sign, comma(v))
}

func comma(v int64) string {
	s := strconv.FormatInt(v, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
		if len(s) > pre {
			b.WriteByte(',')
		}
	}
	for i := pre; i < len(s); i += 3 {
		b.WriteString(s[i : i+3])
		if i+3 < len(s) {
			b.WriteByte(',')
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
