package game

import (
	"fmt"
	"math"
)

type ScoreBreakdown struct {
	FCFShareGrowth      float64 `json:"fcf_share_growth"`     // max 25
	PortfolioROIC       float64 `json:"portfolio_roic"`       // max 20
	MOIC                float64 `json:"moic"`                 // max 10
	ROIIC               float64 `json:"roiic"`                // max 10
	CapitalDeployment   float64 `json:"capital_deployment"`   // MOIC + ROIIC
	BalanceSheetHealth  float64 `json:"balance_sheet_health"` // max 15
	StrategicDiscipline float64 `json:"strategic_discipline"` // max 20
	Total               int     `json:"total"`
	Grade               string  `json:"grade"`
	Title               string  `json:"title"`
}

const (
	maxFCFShareGrowthScore  = 25.0
	maxROICScore            = 20.0
	maxMOICScore            = 10.0
	maxROIICScore           = 10.0
	maxBalanceSheetScore    = 15.0
	maxFocusScore           = 6.0
	maxSharedServicesScore  = 4.0
	maxCapitalReturnScore   = 5.0
	maxDealQualityScore     = 5.0
	fullCreditROIC          = 0.25
	fullCreditROIIC         = 0.20
	leverageBreachPenalty   = 4.0
	covenantBreachPenalty   = 4.0
	restructuringPenalty    = 5.0
	idleCashShareOfNAV      = 0.30
	reinvestmentHurdleROIIC = 0.15
)

var gradeBands = []struct {
	min   int
	grade string
	title string
}{
	{90, "S", "Legendary Capital Allocator"},
	{75, "A", "Master Compounder"},
	{60, "B", "Skilled Operator"},
	{40, "C", "Steady Hand"},
	{20, "D", "Learning the Ropes"},
	{0, "F", "Back to the Drawing Board"},
}

func gradeFor(total int) (string, string) {
	for _, g := range gradeBands {
		if total >= g.min {
			return g.grade, g.title
		}
	}
	last := gradeBands[len(gradeBands)-1]
	return last.grade, last.title
}

// fcfGrowthTarget is the FCF/share growth that earns full credit.
func fcfGrowthTarget(maxRounds int) float64 {
	if maxRounds <= DurationQuick.Rounds() {
		return 1.5
	}
	return 3.0
}

func moicTarget(maxRounds int) float64 {
	if maxRounds <= DurationQuick.Rounds() {
		return 2.0
	}
	return 3.0
}

// CalculateFinalScore grades a finished game. A bankrupt holdco always
// scores zero.
func CalculateFinalScore(state GameState) ScoreBreakdown {
	if state.BankruptRound > 0 {
		grade, title := gradeFor(0)
		return ScoreBreakdown{Grade: grade, Title: title}
	}
	m := CalculateMetrics(state)
	maxRounds := state.MaxRounds
	if maxRounds <= 0 {
		maxRounds = state.Duration.Rounds()
	}

	var sb ScoreBreakdown
	sb.FCFShareGrowth = fcfShareGrowthScore(state.History, m.FCFPerShare, fcfGrowthTarget(maxRounds))
	sb.PortfolioROIC = clamp(m.ROIC/fullCreditROIC, 0, 1) * maxROICScore
	sb.MOIC = clamp((m.MOIC-1)/(moicTarget(maxRounds)-1), 0, 1) * maxMOICScore
	sb.ROIIC = clamp(averageROIIC(state.History)/fullCreditROIIC, 0, 1) * maxROIICScore
	sb.CapitalDeployment = sb.MOIC + sb.ROIIC
	sb.BalanceSheetHealth = balanceSheetScore(state, m)
	sb.StrategicDiscipline = focusScore(state) + sharedServicesScore(state) + capitalReturnScore(state, m) + dealQualityScore(state)

	total := sb.FCFShareGrowth + sb.PortfolioROIC + sb.CapitalDeployment + sb.BalanceSheetHealth + sb.StrategicDiscipline
	sb.Total = int(clamp(float64(roundHalfUp(finite(total, 0))), 0, 100))
	sb.Grade, sb.Title = gradeFor(sb.Total)
	return sb
}

func fcfShareGrowthScore(history []HistoricalMetrics, current, target float64) float64 {
	if len(history) == 0 {
		return 0
	}
	base := history[0].FCFPerShare
	if base <= 0 {
		if current > 0 {
			return maxFCFShareGrowthScore / 2
		}
		return 0
	}
	growth := (current - base) / base
	return clamp(finite(growth/target, 0), 0, 1) * maxFCFShareGrowthScore
}

func averageROIIC(history []HistoricalMetrics) float64 {
	var sum float64
	var n int
	for _, h := range history {
		if h.ROIIC != 0 {
			sum += h.ROIIC
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return finite(sum/float64(n), 0)
}

func balanceSheetScore(state GameState, m Metrics) float64 {
	score := maxBalanceSheetScore
	switch {
	case m.NetDebtToEBITDA > 3.5:
		score -= 5
	case m.NetDebtToEBITDA > 2.5:
		score -= 2
	}
	if state.ExceededLeverage4x {
		score -= leverageBreachPenalty
	}
	if state.HadCovenantBreach {
		score -= covenantBreachPenalty
	}
	if state.HasRestructured {
		score -= restructuringPenalty
	}
	return math.Max(0, score)
}

// focusGroupCounts counts active businesses per sector focus group.
func focusGroupCounts(businesses []Business) map[string]int {
	counts := make(map[string]int)
	for _, b := range businesses {
		if b.Status == StatusActive {
			counts[SectorByID(b.SectorID).FocusGroup]++
		}
	}
	return counts
}

// focusScore rewards either a deep focus group or real diversification.
func focusScore(state GameState) float64 {
	counts := focusGroupCounts(state.Businesses)
	total, top := 0, 0
	for _, c := range counts {
		total += c
		top = max(top, c)
	}
	if total == 0 {
		return 0
	}
	focus := 0.0
	if float64(top)/float64(total) >= 0.6 {
		focus = math.Min(1, float64(top)/4) * maxFocusScore
	}
	diversified := 0.0
	if len(counts) >= 3 {
		diversified = math.Min(1, float64(len(counts))/5) * maxFocusScore
	}
	return math.Max(focus, diversified)
}

func sharedServicesScore(state GameState) float64 {
	n := sharedServiceEffects(state.SharedServices).ActiveCount
	return math.Min(1, float64(n)/3) * maxSharedServicesScore
}

// capitalReturnScore rewards returning cash only when reinvestment returns
// are modest and leverage is healthy, and penalizes idle cash.
func capitalReturnScore(state GameState, m Metrics) float64 {
	returned := state.TotalDistributions + state.TotalBuybacks
	roiic := averageROIIC(state.History)
	var score float64
	switch {
	case returned > 0 && (roiic > fullCreditROIIC || m.NetDebtToEBITDA > 2.5):
		score = 2
	case returned > 0:
		score = maxCapitalReturnScore
	case roiic >= reinvestmentHurdleROIIC:
		score = 4
	default:
		score = 2
	}
	if m.NAV > 0 && float64(state.Cash) > float64(m.NAV)*idleCashShareOfNAV {
		score -= 2
	}
	return clamp(score, 0, maxCapitalReturnScore)
}

func dealQualityScore(state GameState) float64 {
	var sum, n int
	for _, b := range state.Businesses {
		if b.QualityRating > 0 {
			sum += b.QualityRating
			n++
		}
	}
	if n == 0 {
		return 0
	}
	avg := float64(sum) / float64(n)
	return clamp((avg-1)/4, 0, 1) * maxDealQualityScore
}

// CalculateEnterpriseValue is portfolio exit value plus cash minus all debt,
// floored at zero.
func CalculateEnterpriseValue(state GameState) int64 {
	m := CalculateMetrics(state)
	return maxInt(0, m.PortfolioValue+state.Cash-m.TotalDebt-m.OpcoBankDebt)
}

// CalculateFounderEquityValue is the founder's pro-rata share of enterprise
// value plus their share of everything distributed.
func CalculateFounderEquityValue(state GameState) int64 {
	if state.SharesOutstanding <= 0 {
		return 0
	}
	ownership := float64(state.FounderShares) / float64(state.SharesOutstanding)
	ev := CalculateEnterpriseValue(state)
	return roundHalfUp(float64(ev)*ownership) + roundHalfUp(float64(state.TotalDistributions)*ownership)
}

const maxInsights = 5

// GeneratePostGameInsights returns short lessons drawn from how the game went.
func GeneratePostGameInsights(state GameState, score ScoreBreakdown) []string {
	var out []string
	add := func(format string, args ...any) {
		if len(out) < maxInsights {
			out = append(out, fmt.Sprintf(format, args...))
		}
	}

	if state.BankruptRound > 0 {
		add("The holdco ran out of cash in round %d. Keep a cash buffer above next year's debt service.", state.BankruptRound)
	}
	if state.ExceededLeverage4x || state.HadCovenantBreach {
		add("Leverage went past 4x at some point. Lenders and buyers both punish that.")
	}
	if score.FCFShareGrowth >= maxFCFShareGrowthScore*0.8 {
		add("FCF per share compounded strongly; that is the engine of long-term value.")
	} else if score.FCFShareGrowth < maxFCFShareGrowthScore*0.3 && state.BankruptRound == 0 {
		add("FCF per share barely grew. Look for acquisitions that add cash flow faster than they add shares or debt.")
	}
	if score.PortfolioROIC < maxROICScore*0.4 && state.BankruptRound == 0 {
		add("Returns on invested capital were thin. Paying less, or improving what you own, lifts ROIC.")
	}
	if sharedServiceEffects(state.SharedServices).ActiveCount == 0 && len(state.ActiveBusinesses()) >= 3 {
		add("No shared services were unlocked across %d businesses. Centralized functions pay off at scale.", len(state.ActiveBusinesses()))
	}
	if state.TotalDistributions+state.TotalBuybacks == 0 && averageROIIC(state.History) < reinvestmentHurdleROIIC && len(state.History) > 0 {
		add("Capital was never returned even though reinvestment returns were modest.")
	}
	var sold int
	for _, b := range state.Businesses {
		if b.Status == StatusSold {
			sold++
		}
	}
	if sold > 0 {
		add("You exited %d business(es). Timed exits recycle capital into better opportunities.", sold)
	}
	if len(out) == 0 {
		add("A balanced game. Finishing with grade %s (%s).", score.Grade, score.Title)
	}
	return out
}
