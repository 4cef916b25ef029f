package game

import (
	"math"
	"testing"
)

// stubRand returns the same draw forever.
type stubRand struct{ v float64 }

func (r stubRand) Next() float64 { return r.v }

// seqRand replays draws in order and then repeats the last one.
type seqRand struct {
	vals []float64
	i    int
}

func (r *seqRand) Next() float64 {
	if len(r.vals) == 0 {
		return 0
	}
	v := r.vals[min(r.i, len(r.vals)-1)]
	r.i++
	return v
}

const almostOne = 0.999999

func sampleBusiness(id, sectorID string, ebitda int64) Business {
	revenue := ebitda * 5
	return NormalizeBusiness(Business{
		ID:                  id,
		Name:                "Biz " + id,
		SectorID:            sectorID,
		Status:              StatusActive,
		Revenue:             revenue,
		EBITDA:              ebitda,
		EBITDAMargin:        0.20,
		AcquisitionRound:    1,
		AcquisitionPrice:    ebitda * 4,
		AcquisitionEBITDA:   ebitda,
		AcquisitionMargin:   0.20,
		AcquisitionMultiple: 4.0,
		AcquisitionRevenue:  revenue,
		QualityRating:       3,
	})
}

func sampleState(businesses ...Business) GameState {
	return NormalizeState(GameState{
		ID:                "game-1",
		Seed:              42,
		Duration:          DurationStandard,
		Difficulty:        DifficultyEasy,
		Round:             1,
		MaxRounds:         DurationStandard.Rounds(),
		Cash:              StartingCash,
		InterestRate:      StartingInterestRate,
		SharesOutstanding: StartingShares,
		FounderShares:     FounderShares,
		InitialRaise:      StartingCash,
		Businesses:        businesses,
	})
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func assertFinite(t *testing.T, name string, v float64) {
	t.Helper()
	if math.IsNaN(v) || math.IsInf(v, 0) {
		t.Fatalf("%s is not finite: %v", name, v)
	}
}
