package game

import (
	"fmt"
	"math"
)

// ExitValuation is the full breakdown of a single valuation call. It is
// recomputed on every call because any input field may have changed.
type ExitValuation struct {
	BusinessID   string  `json:"business_id"`
	YearsHeld    int     `json:"years_held"`
	EBITDA       int64   `json:"ebitda"`
	BaseMultiple float64 `json:"base_multiple"`

	EBITDAGrowth              float64 `json:"ebitda_growth"`
	GrowthPremium             float64 `json:"growth_premium"`
	QualityPremium            float64 `json:"quality_premium"`
	PlatformPremium           float64 `json:"platform_premium"`
	HoldPremium               float64 `json:"hold_premium"`
	ImprovementsPremium       float64 `json:"improvements_premium"`
	MarketModifier            float64 `json:"market_modifier"`
	SizeTierPremium           float64 `json:"size_tier_premium"`
	DeRiskingPremium          float64 `json:"de_risking_premium"`
	RuleOf40Premium           float64 `json:"rule_of_40_premium"`
	MarginExpansionPremium    float64 `json:"margin_expansion_premium"`
	MergerPremium             float64 `json:"merger_premium"`
	TurnaroundPremium         float64 `json:"turnaround_premium"`
	IntegratedPlatformPremium float64 `json:"integrated_platform_premium"`

	EarnedPremiums      float64 `json:"earned_premiums"`
	PremiumCap          float64 `json:"premium_cap"`
	PremiumCapped       bool    `json:"premium_capped"`
	SeasoningMultiplier float64 `json:"seasoning_multiplier"`

	BuyerPoolTier        string   `json:"buyer_pool_tier"`
	BuyerPoolDescription string   `json:"buyer_pool_description"`
	TotalMultiple        float64  `json:"total_multiple"`
	ExitPrice            int64    `json:"exit_price"`
	DebtPayoff           int64    `json:"debt_payoff"`
	EarnoutRemaining     int64    `json:"earnout_remaining"`
	NetProceeds          int64    `json:"net_proceeds"`
	Commentary           []string `json:"commentary"`
}

// PortfolioContext is optional holdco-level information a buyer considers.
type PortfolioContext struct {
	TotalEBITDA          int64
	BusinessCount        int
	SharedServicesActive int
}

type BuyerPool struct {
	Tier        string
	Description string
	Premium     float64
}

var buyerPools = []struct {
	below int64
	pool  BuyerPool
}{
	{1_000, BuyerPool{Tier: "individual", Description: "Individual buyers and search funds", Premium: 0}},
	{2_000, BuyerPool{Tier: "small_pe", Description: "Small PE funds and family offices", Premium: 0.5}},
	{5_000, BuyerPool{Tier: "lower_middle_market", Description: "Lower middle-market PE", Premium: 1.0}},
	{10_000, BuyerPool{Tier: "institutional_pe", Description: "Institutional PE funds", Premium: 1.5}},
	{20_000, BuyerPool{Tier: "upper_middle_market", Description: "Upper middle-market PE and strategics", Premium: 2.0}},
}

var topBuyerPool = BuyerPool{Tier: "strategic", Description: "Strategic acquirers and large-cap PE", Premium: 2.5}

// BuyerPoolFor tiers the universe of likely buyers by EBITDA size.
func BuyerPoolFor(ebitda int64) BuyerPool {
	for _, bp := range buyerPools {
		if ebitda < bp.below {
			return bp.pool
		}
	}
	return topBuyerPool
}

// SizeTierPremium is the multiple premium the buyer pool pays for size. It is
// snapshotted at acquisition so only later growth creates incremental value.
func SizeTierPremium(ebitda int64) float64 {
	return BuyerPoolFor(ebitda).Premium
}

const (
	maxGrowthPremium     = 2.5
	minGrowthPremium     = -1.0
	maxHoldPremium       = 0.5
	bullMarketModifier   = 0.5
	recessionModifier    = -0.5
	basePremiumCap       = 10.0
	platformHeadroomStep = 0.3
	fullSeasoningYears   = 2.0
)

func growthPremium(growth float64) float64 {
	if growth > 0 {
		return math.Min(maxGrowthPremium, growth*0.8)
	}
	return math.Max(minGrowthPremium, growth*0.5)
}

func platformPremium(b Business) float64 {
	if !b.IsPlatform || b.PlatformScale <= 0 {
		return 0
	}
	return math.Log2(float64(b.PlatformScale)+1) * 0.4
}

func marketModifier(lastEvent EventType) float64 {
	switch lastEvent {
	case EventBullMarket:
		return bullMarketModifier
	case EventRecession:
		return recessionModifier
	default:
		return 0
	}
}

// ruleOf40Premium only applies to recurring-revenue sectors.
func ruleOf40Premium(b Business) float64 {
	if b.SectorID != "saas" && b.SectorID != "education" {
		return 0
	}
	growth := b.RevenueGrowthRate
	if growth == 0 {
		growth = b.OrganicGrowthRate
	}
	combined := growth*100 + b.EBITDAMargin*100
	switch {
	case combined >= 50:
		return math.Min(1.5, 1.0+(combined-50)/20*0.5)
	case combined >= 40:
		return 0.5 + (combined-40)/10*0.5
	case combined < 25:
		return -0.3
	default:
		return 0
	}
}

func marginExpansionPremium(b Business) float64 {
	expansion := (b.EBITDAMargin - b.AcquisitionMargin) * 100
	switch {
	case expansion >= 10:
		return 0.3
	case expansion >= 5:
		return 0.1 + (expansion-5)/5*0.2
	case expansion <= -5:
		return -0.2
	default:
		return 0
	}
}

// MergerPremium rewards balanced mergers: the closer the two sides were in
// size, the bigger the premium.
func MergerPremium(b Business) float64 {
	if !b.WasMerged || b.MergerBalanceRatio <= 0 {
		return 0
	}
	switch {
	case b.MergerBalanceRatio <= 2:
		return 0.5
	case b.MergerBalanceRatio <= 3:
		return 0.4
	default:
		return 0.3
	}
}

func deRiskingPremium(b Business, yearsHeld int, pctx *PortfolioContext) float64 {
	p := 0.0
	switch b.DueDiligence.OperatorQuality {
	case "strong":
		p += 0.15
	case "weak":
		p -= 0.10
	}
	switch b.DueDiligence.CompetitivePosition {
	case "leader":
		p += 0.20
	case "commoditized":
		p -= 0.15
	}
	switch b.DueDiligence.RevenueConcentration {
	case "low":
		p += 0.15
	case "high":
		p -= 0.15
	}
	if b.QualityRating >= 4 && yearsHeld >= 3 {
		p += 0.10
	}
	if pctx != nil && pctx.SharedServicesActive >= 2 {
		p += 0.05
	}
	return clamp(p, -0.5, 0.6)
}

// CalculateExitValuation prices a business for sale in currentRound.
func CalculateExitValuation(b Business, currentRound int, lastEvent EventType, pctx *PortfolioContext, platforms []IntegratedPlatform) ExitValuation {
	v := ExitValuation{
		BusinessID:   b.ID,
		EBITDA:       b.EBITDA,
		BaseMultiple: b.AcquisitionMultiple,
	}
	v.YearsHeld = currentRound - b.AcquisitionRound
	if v.YearsHeld < 0 {
		v.YearsHeld = 0
	}

	if b.AcquisitionEBITDA > 0 {
		v.EBITDAGrowth = finite(float64(b.EBITDA-b.AcquisitionEBITDA)/float64(b.AcquisitionEBITDA), 0)
	}
	v.GrowthPremium = growthPremium(v.EBITDAGrowth)
	v.QualityPremium = float64(b.QualityRating-3) * 0.4
	v.PlatformPremium = platformPremium(b)
	v.HoldPremium = math.Min(maxHoldPremium, float64(v.YearsHeld)*0.1)
	v.ImprovementsPremium = improvementsPremium(b)
	v.MarketModifier = marketModifier(lastEvent)

	pool := BuyerPoolFor(b.EBITDA)
	v.BuyerPoolTier = pool.Tier
	v.BuyerPoolDescription = pool.Description
	v.SizeTierPremium = pool.Premium - b.AcquisitionSizeTierPremium

	v.DeRiskingPremium = deRiskingPremium(b, v.YearsHeld, pctx)
	v.RuleOf40Premium = ruleOf40Premium(b)
	v.MarginExpansionPremium = marginExpansionPremium(b)
	v.MergerPremium = MergerPremium(b)
	v.TurnaroundPremium = turnaroundExitPremium(b)
	v.IntegratedPlatformPremium = integratedPlatformPremium(b, platforms)

	earned := v.GrowthPremium + v.QualityPremium + v.PlatformPremium + v.HoldPremium +
		v.ImprovementsPremium + v.MarketModifier + v.SizeTierPremium + v.DeRiskingPremium +
		v.RuleOf40Premium + v.MarginExpansionPremium + v.MergerPremium + v.TurnaroundPremium

	headroom := 0.0
	if b.IsPlatform {
		headroom = float64(b.PlatformScale) * platformHeadroomStep
	}
	v.PremiumCap = math.Max(basePremiumCap+headroom, v.BaseMultiple*1.5)
	if earned > v.PremiumCap {
		earned = v.PremiumCap
		v.PremiumCapped = true
	}
	v.EarnedPremiums = earned

	// The integrated-platform premium is structural and sits outside the cap.
	premiums := earned + v.IntegratedPlatformPremium
	v.SeasoningMultiplier = math.Min(1.0, float64(v.YearsHeld)/fullSeasoningYears)

	v.TotalMultiple = math.Max(MinExitMultiple, finite(v.BaseMultiple+premiums*v.SeasoningMultiplier, MinExitMultiple))
	v.ExitPrice = maxInt(0, roundHalfUp(float64(b.EBITDA)*v.TotalMultiple))

	v.DebtPayoff = b.SellerNote.Balance + b.BankDebt.Balance
	v.EarnoutRemaining = b.EarnoutRemaining
	v.NetProceeds = saleProceeds(b, v.ExitPrice)
	v.Commentary = valuationCommentary(v)
	return v
}

// saleProceeds is what the holdco keeps from selling b at price once the
// opco debt and remaining earn-out are settled. Never negative.
func saleProceeds(b Business, price int64) int64 {
	return maxInt(0, price-(b.SellerNote.Balance+b.BankDebt.Balance+b.EarnoutRemaining))
}

func valuationCommentary(v ExitValuation) []string {
	var out []string
	if v.SeasoningMultiplier < 1 {
		out = append(out, fmt.Sprintf("Buyers credit only %.0f%% of earned premiums until the business has two years of ownership history.", v.SeasoningMultiplier*100))
	}
	if v.GrowthPremium >= 1.0 {
		out = append(out, "Strong EBITDA growth since acquisition is driving a meaningful premium.")
	} else if v.GrowthPremium < 0 {
		out = append(out, "EBITDA has declined since acquisition, which weighs on the multiple.")
	}
	if v.SizeTierPremium > 0 {
		out = append(out, fmt.Sprintf("Growth has moved the business into a larger buyer pool (%s).", v.BuyerPoolDescription))
	}
	if v.MarketModifier > 0 {
		out = append(out, "A bull market is lifting exit multiples.")
	} else if v.MarketModifier < 0 {
		out = append(out, "Recession conditions are depressing exit multiples.")
	}
	if v.PremiumCapped {
		out = append(out, "Premiums are capped; further improvements will not lift the multiple.")
	}
	if v.IntegratedPlatformPremium > 0 {
		out = append(out, "Integrated platform membership adds a structural premium.")
	}
	if v.TotalMultiple <= MinExitMultiple {
		out = append(out, "Valuation is at the distressed-sale floor.")
	}
	if v.DebtPayoff+v.EarnoutRemaining > v.ExitPrice {
		out = append(out, "Debt and earn-out obligations exceed the exit price; the sale returns no equity.")
	}
	return out
}
