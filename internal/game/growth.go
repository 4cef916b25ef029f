package game

import "math"

// GrowthInputs carries the portfolio-level context a single business needs
// to advance one round.
type GrowthInputs struct {
	SharedServicesGrowthBonus float64
	SectorFocusBonus          float64
	InflationActive           bool
	ConcentrationCount        int // businesses sharing this one's focus group
	DiversificationBonus      float64
	CurrentRound              int
	MarginDefense             float64
	MaxRounds                 int
	Duration                  GameDuration
}

const (
	baseGrowthMin = -0.10
	baseGrowthMax = 0.20

	competitiveLeaderBonus  = 0.015
	commoditizedPenalty     = -0.015
	integrationPenaltyMin   = 0.03
	integrationPenaltyMax   = 0.08
	inflationGrowthDrag     = -0.03
	meanReversionThreshold  = 0.10
	meanReversionStrength   = 0.10
	negligibleGrowthDrag    = 0.001
	agencyConsumerSSBonus   = 0.01
	concentrationStep       = 0.15
	maxConcentrationMultipl = 1.75
)

// MarginDriftStartRound is the first round in which margins start to move.
// Earlier rounds are an onboarding period with static margins.
func MarginDriftStartRound(maxRounds int) int {
	start := int(math.Ceil(float64(maxRounds) * 0.20))
	if start < 2 {
		return 2
	}
	return start
}

// concentrationMultiplier amplifies sector noise when four or more
// businesses share a focus group.
func concentrationMultiplier(count int) float64 {
	if count < 4 {
		return 1
	}
	return math.Min(maxConcentrationMultipl, 1+float64(count-3)*concentrationStep)
}

func integrationDragDecay(d GameDuration) float64 {
	if d == DurationQuick {
		return 0.50
	}
	return 0.65
}

// ApplyOrganicGrowth advances one business by one round of organic growth
// and margin drift. The input business is not modified.
func ApplyOrganicGrowth(b Business, in GrowthInputs, rng Rand) Business {
	out := b.clone()
	sector := SectorByID(b.SectorID)

	rate := clamp(b.OrganicGrowthRate, baseGrowthMin, baseGrowthMax)
	rate += signedNoise(rng, sector.Volatility) * concentrationMultiplier(in.ConcentrationCount)
	if in.SharedServicesGrowthBonus > 0 {
		rate += in.SharedServicesGrowthBonus
		if b.SectorID == "agency" || b.SectorID == "consumer" {
			rate += agencyConsumerSSBonus
		}
	}
	rate += in.SectorFocusBonus
	rate += in.DiversificationBonus
	switch b.DueDiligence.CompetitivePosition {
	case "leader":
		rate += competitiveLeaderBonus
	case "commoditized":
		rate += commoditizedPenalty
	}
	if b.IntegrationRoundsRemaining > 0 {
		rate -= between(rng, integrationPenaltyMin, integrationPenaltyMax)
	}
	if in.InflationActive {
		rate += inflationGrowthDrag
	}
	rate += b.IntegrationGrowthDrag
	rate = clamp(finite(rate, 0), MinGrowthRate, MaxGrowthRate)

	out.Revenue = maxInt(0, roundHalfUp(float64(b.Revenue)*(1+rate)))
	out.RevenueGrowthRate = rate

	margin := b.EBITDAMargin
	if in.CurrentRound >= MarginDriftStartRound(in.MaxRounds) {
		change := b.MarginDriftRate
		change += signedNoise(rng, sector.MarginVolatility)
		change += in.MarginDefense
		if excess := margin - sector.MarginMidpoint(); excess > meanReversionThreshold {
			change -= (excess - meanReversionThreshold) * meanReversionStrength
		}
		margin += change
	}
	out.EBITDAMargin = ClampMargin(margin, b.SectorID)
	out.EBITDA = roundHalfUp(float64(out.Revenue) * out.EBITDAMargin)
	// The floor holds EBITDA; margin stays in band and revenue absorbs the difference.
	out = ApplyEbitdaFloor(out)
	out = refreshPeaks(out)

	if out.IntegrationRoundsRemaining > 0 {
		out.IntegrationRoundsRemaining--
	}
	if out.IntegrationGrowthDrag != 0 {
		out.IntegrationGrowthDrag *= integrationDragDecay(in.Duration)
		if math.Abs(out.IntegrationGrowthDrag) < negligibleGrowthDrag {
			out.IntegrationGrowthDrag = 0
		}
	}
	return out
}

// ApplyEbitdaFloor lifts EBITDA back to a fraction of acquisition EBITDA and
// re-derives the margin so revenue×margin stays consistent. The margin stays
// inside the sector band; when the floor would need more than the ceiling,
// revenue is restated to floor/margin instead.
func ApplyEbitdaFloor(b Business) Business {
	if b.AcquisitionEBITDA <= 0 {
		return b
	}
	floor := roundHalfUp(float64(b.AcquisitionEBITDA) * EbitdaFloorFraction)
	if b.EBITDA >= floor {
		return b
	}
	b.EBITDA = floor
	if b.Revenue <= 0 {
		return b
	}
	implied := float64(floor) / float64(b.Revenue)
	b.EBITDAMargin = ClampMargin(implied, b.SectorID)
	if b.EBITDAMargin != implied {
		b.Revenue = roundHalfUp(float64(floor) / b.EBITDAMargin)
	}
	return b
}

// refreshPeaks ratchets the peak fields; they never decrease.
func refreshPeaks(b Business) Business {
	if b.Revenue > b.PeakRevenue {
		b.PeakRevenue = b.Revenue
	}
	if b.EBITDA > b.PeakEBITDA {
		b.PeakEBITDA = b.EBITDA
	}
	return b
}
