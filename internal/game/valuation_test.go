package game

import "testing"

func TestExitMultipleNeverBelowFloor(t *testing.T) {
	bad := sampleBusiness("a", "restaurant", 1_000)
	bad.AcquisitionMultiple = 2.1
	bad.QualityRating = 1
	bad.EBITDA = 300
	bad.EBITDAMargin = 0.03
	bad.DueDiligence = DueDiligence{OperatorQuality: "weak", CompetitivePosition: "commoditized", RevenueConcentration: "high"}
	bad.AcquisitionSizeTierPremium = 2.5

	for _, round := range []int{1, 2, 5, 20} {
		for _, ev := range []EventType{EventRecession, EventQuiet, EventBullMarket} {
			v := CalculateExitValuation(bad, round, ev, nil, nil)
			if v.TotalMultiple < MinExitMultiple {
				t.Fatalf("round %d event %s: multiple %v below floor", round, ev, v.TotalMultiple)
			}
		}
	}
}

func TestExitValuationZeroAcquisitionEBITDA(t *testing.T) {
	b := sampleBusiness("a", "saas", 0)
	b.AcquisitionEBITDA = 0
	b.AcquisitionMultiple = 0
	b.EBITDA = 250

	v := CalculateExitValuation(b, 4, EventQuiet, nil, nil)
	assertFinite(t, "total multiple", v.TotalMultiple)
	assertFinite(t, "ebitda growth", v.EBITDAGrowth)
	if v.TotalMultiple < MinExitMultiple {
		t.Fatalf("multiple below floor: %v", v.TotalMultiple)
	}
}

func TestNetProceedsNeverNegative(t *testing.T) {
	b := sampleBusiness("a", "agency", 500)
	b.SellerNote = DebtTranche{Balance: 50_000, Rate: 0.06, RoundsRemaining: 5}
	b.BankDebt = DebtTranche{Balance: 10_000, Rate: 0.08, RoundsRemaining: 5}
	b.EarnoutRemaining = 5_000

	v := CalculateExitValuation(b, 3, EventQuiet, nil, nil)
	if v.NetProceeds != 0 {
		t.Fatalf("expected net proceeds floored at 0, got %d", v.NetProceeds)
	}
	if v.DebtPayoff != 60_000 || v.EarnoutRemaining != 5_000 {
		t.Fatalf("unexpected payoff breakdown: %+v", v)
	}
}

func TestExitValuationSeasoning(t *testing.T) {
	b := sampleBusiness("a", "agency", 1_000)
	b.QualityRating = 5

	unseasoned := CalculateExitValuation(b, 1, EventQuiet, nil, nil)
	half := CalculateExitValuation(b, 2, EventQuiet, nil, nil)
	full := CalculateExitValuation(b, 3, EventQuiet, nil, nil)

	if unseasoned.YearsHeld != 0 || !approxEqual(unseasoned.TotalMultiple, b.AcquisitionMultiple) {
		t.Fatalf("expected %v with no holding history, got %v", b.AcquisitionMultiple, unseasoned.TotalMultiple)
	}
	if !(half.TotalMultiple > unseasoned.TotalMultiple && half.TotalMultiple < full.TotalMultiple) {
		t.Fatalf("one year should sit strictly between: %v %v %v", unseasoned.TotalMultiple, half.TotalMultiple, full.TotalMultiple)
	}
	if full.SeasoningMultiplier != 1 || !approxEqual(full.TotalMultiple, b.AcquisitionMultiple+full.EarnedPremiums) {
		t.Fatalf("two years should apply full premiums: %+v", full)
	}
}

func TestMergerPremium(t *testing.T) {
	tests := []struct {
		ratio float64
		want  float64
	}{
		{ratio: 1.5, want: 0.5},
		{ratio: 2.5, want: 0.4},
		{ratio: 4.0, want: 0.3},
	}
	for _, tt := range tests {
		b := sampleBusiness("m", "agency", 1_000)
		b.WasMerged = true
		b.MergerBalanceRatio = tt.ratio
		if got := MergerPremium(b); got != tt.want {
			t.Fatalf("ratio %v: expected %v, got %v", tt.ratio, tt.want, got)
		}
	}

	unmerged := sampleBusiness("u", "agency", 1_000)
	unmerged.MergerBalanceRatio = 1.5
	if got := MergerPremium(unmerged); got != 0 {
		t.Fatalf("unmerged business should earn no merger premium, got %v", got)
	}
}

func TestPremiumCap(t *testing.T) {
	b := sampleBusiness("a", "saas", 1_000)
	b.EBITDA = 30_000
	b.QualityRating = 5
	b.IsPlatform = true
	b.PlatformScale = 3
	b.DueDiligence = DueDiligence{OperatorQuality: "strong", CompetitivePosition: "leader", RevenueConcentration: "low"}
	b.OrganicGrowthRate = 0.30
	b.EBITDAMargin = 0.40
	b.WasMerged = true
	b.MergerBalanceRatio = 1.5
	b.QualityImprovedTiers = 2
	b.Improvements = []Improvement{
		{Type: ImprovementDigitalTransformation},
		{Type: ImprovementRecurringRevenue},
		{Type: ImprovementManagementProfessnl},
	}

	v := CalculateExitValuation(b, 10, EventBullMarket, nil, nil)
	if !v.PremiumCapped {
		t.Fatalf("expected premiums to be capped: %+v", v)
	}
	if v.EarnedPremiums != v.PremiumCap {
		t.Fatalf("earned %v should equal cap %v", v.EarnedPremiums, v.PremiumCap)
	}
}

func TestBuyerPoolFor(t *testing.T) {
	tests := []struct {
		ebitda int64
		tier   string
	}{
		{ebitda: 999, tier: "individual"},
		{ebitda: 1_000, tier: "small_pe"},
		{ebitda: 4_999, tier: "lower_middle_market"},
		{ebitda: 25_000, tier: "strategic"},
	}
	for _, tt := range tests {
		if got := BuyerPoolFor(tt.ebitda).Tier; got != tt.tier {
			t.Fatalf("ebitda %d: expected %s, got %s", tt.ebitda, tt.tier, got)
		}
	}
}
