package game

import "testing"

func TestNormalizeBusinessDefaults(t *testing.T) {
	got := NormalizeBusiness(Business{ID: "x", SectorID: "saas", Status: " Active ", Revenue: 1_000, EBITDA: 250})
	if got.Status != StatusActive || got.Name != "x" {
		t.Fatalf("unexpected identity fields: %+v", got)
	}
	if !approxEqual(got.EBITDAMargin, 0.25) || !approxEqual(got.AcquisitionMargin, 0.25) {
		t.Fatalf("margin should be derived from revenue: %v", got.EBITDAMargin)
	}
	if got.AcquisitionMultiple != SectorByID("saas").MultipleMin {
		t.Fatalf("expected sector minimum multiple, got %v", got.AcquisitionMultiple)
	}
	if got.QualityRating != 3 {
		t.Fatalf("expected default quality 3, got %d", got.QualityRating)
	}
	dd := got.DueDiligence
	if dd.OperatorQuality != "moderate" || dd.CompetitivePosition != "competitive" || dd.RevenueConcentration != "medium" {
		t.Fatalf("unexpected diligence defaults: %+v", dd)
	}
	if got.PeakRevenue != 1_000 || got.PeakEBITDA != 250 {
		t.Fatalf("peaks should start at current values: %d %d", got.PeakRevenue, got.PeakEBITDA)
	}
	if got.BoltOnIDs == nil || got.Improvements == nil {
		t.Fatalf("slices should be non-nil")
	}
}

func TestNormalizeBusinessClamps(t *testing.T) {
	got := NormalizeBusiness(Business{ID: "x", SectorID: "agency", Revenue: -5, QualityRating: 9, OrganicGrowthRate: 3})
	if got.Revenue != 0 || got.QualityRating != 5 || got.OrganicGrowthRate != MaxGrowthRate {
		t.Fatalf("out-of-range values should clamp: %+v", got)
	}
}

func TestNormalizeState(t *testing.T) {
	got := NormalizeState(GameState{ID: "g", Duration: DurationQuick, InterestRate: 0.5})
	if got.MaxRounds != 10 || got.Round != 1 || got.Difficulty != DifficultyEasy {
		t.Fatalf("unexpected defaults: %+v", got)
	}
	if got.InterestRate != MaxInterestRate {
		t.Fatalf("rate should clamp to %v, got %v", MaxInterestRate, got.InterestRate)
	}
	if got.History == nil || got.EventLog == nil || got.ActionsThisRound == nil {
		t.Fatalf("slices should be non-nil")
	}
}

func TestNormalizeBusinessDropsRepeatedImprovements(t *testing.T) {
	got := NormalizeBusiness(Business{ID: "x", SectorID: "saas", Revenue: 1_000, EBITDA: 250, Improvements: []Improvement{
		{Type: ImprovementPricingModel, AppliedRound: 2, Effect: 0.02},
		{Type: ImprovementOperatingPlaybook, AppliedRound: 3, Effect: 0.01},
		{Type: ImprovementPricingModel, AppliedRound: 5, Effect: 0.04},
	}})
	if len(got.Improvements) != 2 || got.Improvements[0].AppliedRound != 2 {
		t.Fatalf("expected the first of each type to survive: %+v", got.Improvements)
	}
	if !got.HasImprovement(ImprovementOperatingPlaybook) || got.HasImprovement(ImprovementDigitalTransformation) {
		t.Fatalf("unexpected improvement lookup: %+v", got.Improvements)
	}
}
