package game

import "testing"

func TestMarginDriftStartRound(t *testing.T) {
	tests := []struct {
		maxRounds int
		want      int
	}{
		{maxRounds: 20, want: 4},
		{maxRounds: 10, want: 2},
		{maxRounds: 5, want: 2},
		{maxRounds: 0, want: 2},
	}
	for _, tt := range tests {
		if got := MarginDriftStartRound(tt.maxRounds); got != tt.want {
			t.Fatalf("MarginDriftStartRound(%d) = %d, want %d", tt.maxRounds, got, tt.want)
		}
	}
}

func TestConcentrationMultiplier(t *testing.T) {
	if got := concentrationMultiplier(3); got != 1 {
		t.Fatalf("expected 1 below four businesses, got %v", got)
	}
	if got := concentrationMultiplier(4); !approxEqual(got, 1.15) {
		t.Fatalf("expected 1.15 at four businesses, got %v", got)
	}
	if got := concentrationMultiplier(20); got != 1.75 {
		t.Fatalf("expected cap 1.75, got %v", got)
	}
}

func TestApplyOrganicGrowthNeutralDraw(t *testing.T) {
	b := sampleBusiness("a", "agency", 1_000)
	b.OrganicGrowthRate = 0.10
	in := GrowthInputs{CurrentRound: 1, MaxRounds: 20, Duration: DurationStandard}

	got := ApplyOrganicGrowth(b, in, stubRand{v: 0.5})
	if got.Revenue != 5_500 {
		t.Fatalf("expected revenue 5500, got %d", got.Revenue)
	}
	if got.EBITDAMargin != b.EBITDAMargin {
		t.Fatalf("margin must not drift during onboarding: %v -> %v", b.EBITDAMargin, got.EBITDAMargin)
	}
	if got.EBITDA != 1_100 {
		t.Fatalf("expected ebitda 1100, got %d", got.EBITDA)
	}
	if got.PeakRevenue != 5_500 || got.PeakEBITDA != 1_100 {
		t.Fatalf("peaks should ratchet up: %d %d", got.PeakRevenue, got.PeakEBITDA)
	}
	if b.Revenue != 5_000 {
		t.Fatalf("input business was modified")
	}
}

func TestApplyOrganicGrowthRespectsFloorAndPeaks(t *testing.T) {
	b := sampleBusiness("a", "agency", 1_000)
	b.OrganicGrowthRate = -0.10
	in := GrowthInputs{CurrentRound: 10, MaxRounds: 20, InflationActive: true}

	got := b
	for i := 0; i < 30; i++ {
		got = ApplyOrganicGrowth(got, in, stubRand{v: 0})
	}
	if got.EBITDA < 300 {
		t.Fatalf("ebitda fell below the 30%% floor: %d", got.EBITDA)
	}
	if got.PeakRevenue != 5_000 || got.PeakEBITDA != 1_000 {
		t.Fatalf("peaks must never decrease: %d %d", got.PeakRevenue, got.PeakEBITDA)
	}
	if got.EBITDAMargin < MarginFloor {
		t.Fatalf("margin below floor: %v", got.EBITDAMargin)
	}
}

func TestApplyEbitdaFloor(t *testing.T) {
	b := sampleBusiness("a", "agency", 1_000)
	b.EBITDA = 100
	b.EBITDAMargin = 0.02

	got := ApplyEbitdaFloor(b)
	if got.EBITDA != 300 {
		t.Fatalf("expected floor 300, got %d", got.EBITDA)
	}
	if !approxEqual(got.EBITDAMargin, 0.06) {
		t.Fatalf("expected margin re-derived to 0.06, got %v", got.EBITDAMargin)
	}
}

func TestApplyEbitdaFloorKeepsMarginInBand(t *testing.T) {
	b := sampleBusiness("a", "agency", 1_000)
	b.Revenue = 600
	b.EBITDA = 60
	b.EBITDAMargin = 0.10

	got := ApplyEbitdaFloor(b)
	ceiling := ClampMargin(1, "agency")
	if got.EBITDA != 300 {
		t.Fatalf("floor must hold EBITDA at 300, got %d", got.EBITDA)
	}
	if !approxEqual(got.EBITDAMargin, ceiling) {
		t.Fatalf("margin should stop at the sector ceiling %v, got %v", ceiling, got.EBITDAMargin)
	}
	if want := roundHalfUp(300 / ceiling); got.Revenue != want {
		t.Fatalf("revenue should be restated to %d, got %d", want, got.Revenue)
	}
}

func TestIntegrationDragDecays(t *testing.T) {
	b := sampleBusiness("a", "agency", 1_000)
	b.IntegrationGrowthDrag = -0.05
	in := GrowthInputs{CurrentRound: 1, MaxRounds: 20, Duration: DurationStandard}

	got := ApplyOrganicGrowth(b, in, stubRand{v: 0.5})
	if !approxEqual(got.IntegrationGrowthDrag, -0.0325) {
		t.Fatalf("expected drag -0.0325, got %v", got.IntegrationGrowthDrag)
	}

	b.IntegrationGrowthDrag = -0.0012
	got = ApplyOrganicGrowth(b, in, stubRand{v: 0.5})
	if got.IntegrationGrowthDrag != 0 {
		t.Fatalf("negligible drag should snap to zero, got %v", got.IntegrationGrowthDrag)
	}
}

func TestApplyOrganicGrowthIsDeterministic(t *testing.T) {
	b := sampleBusiness("a", "saas", 1_500)
	in := GrowthInputs{CurrentRound: 6, MaxRounds: 20, ConcentrationCount: 5}
	first := ApplyOrganicGrowth(b, in, NewSeededRand(7))
	second := ApplyOrganicGrowth(b, in, NewSeededRand(7))
	if first.Revenue != second.Revenue || first.EBITDAMargin != second.EBITDAMargin {
		t.Fatalf("same seed produced different results: %+v vs %+v", first, second)
	}
}
