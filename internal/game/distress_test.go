package game

import "testing"

func TestCalculateDistressLevel(t *testing.T) {
	tests := []struct {
		name      string
		ratio     float64
		debt      int64
		ebitda    int64
		wantLevel DistressLevel
	}{
		{name: "no debt", ratio: 9, debt: 0, ebitda: 100, wantLevel: DistressComfortable},
		{name: "debt without ebitda", ratio: 0, debt: 100, ebitda: 0, wantLevel: DistressBreach},
		{name: "low", ratio: 1.2, debt: 100, ebitda: 100, wantLevel: DistressComfortable},
		{name: "elevated edge", ratio: 2.5, debt: 100, ebitda: 100, wantLevel: DistressElevated},
		{name: "stressed edge", ratio: 3.5, debt: 100, ebitda: 100, wantLevel: DistressStressed},
		{name: "breach edge", ratio: 4.5, debt: 100, ebitda: 100, wantLevel: DistressBreach},
		{name: "negative net debt", ratio: -2, debt: 100, ebitda: 100, wantLevel: DistressComfortable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateDistressLevel(tt.ratio, tt.debt, tt.ebitda); got != tt.wantLevel {
				t.Fatalf("expected %s, got %s", tt.wantLevel, got)
			}
		})
	}
}

func TestRestrictionsFor(t *testing.T) {
	breach := RestrictionsFor(DistressBreach)
	if breach.CanAcquire || breach.CanTakeDebt || breach.CanDistribute || breach.CanBuyback {
		t.Fatalf("breach should block every capital action: %+v", breach)
	}
	if breach.InterestPenalty != 0.02 {
		t.Fatalf("expected breach penalty 0.02, got %v", breach.InterestPenalty)
	}

	stressed := RestrictionsFor(DistressStressed)
	if stressed.CanTakeDebt || !stressed.CanAcquire || stressed.InterestPenalty != 0.01 {
		t.Fatalf("unexpected stressed restrictions: %+v", stressed)
	}

	for _, level := range []DistressLevel{DistressComfortable, DistressElevated} {
		r := RestrictionsFor(level)
		if !r.CanAcquire || !r.CanTakeDebt || !r.CanDistribute || !r.CanBuyback || r.InterestPenalty != 0 {
			t.Fatalf("%s should be unrestricted: %+v", level, r)
		}
	}
}
