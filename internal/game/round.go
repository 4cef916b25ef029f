package game

import (
	"fmt"
	"math"
)

type NewGameConfig struct {
	ID         string
	Seed       int64
	Duration   GameDuration
	Difficulty Difficulty
	SectorID   string // empty picks a random sector
}

const (
	seedSellerNoteRate   = 0.06
	seedSellerNoteRounds = 5
	normalHoldcoLoan     = int64(5_000)
	normalHoldcoRounds   = 10
)

var (
	operatorQualities     = []string{"strong", "moderate", "weak"}
	competitivePositions  = []string{"leader", "competitive", "commoditized"}
	revenueConcentrations = []string{"low", "medium", "high"}
)

// NewGame opens a holdco with one seed business bought on day one.
func NewGame(cfg NewGameConfig, rng Rand) (GameState, error) {
	if cfg.Duration == "" {
		cfg.Duration = DurationStandard
	}
	if cfg.Difficulty == "" {
		cfg.Difficulty = DifficultyEasy
	}
	sectorID := cfg.SectorID
	if sectorID == "" {
		ids := SectorIDs()
		sectorID = ids[pickIndex(rng, len(ids))]
	}
	sector, err := LookupSector(sectorID)
	if err != nil {
		return GameState{}, err
	}

	s := GameState{
		ID:                cfg.ID,
		Seed:              cfg.Seed,
		Duration:          cfg.Duration,
		Difficulty:        cfg.Difficulty,
		Round:             1,
		MaxRounds:         cfg.Duration.Rounds(),
		Cash:              StartingCash,
		InterestRate:      StartingInterestRate,
		SharesOutstanding: StartingShares,
		FounderShares:     FounderShares,
		InitialRaise:      StartingCash,
	}
	if cfg.Difficulty == DifficultyNormal {
		s.TotalDebt = normalHoldcoLoan
		s.HoldcoLoanRoundsRemaining = normalHoldcoRounds
	}

	b := seedBusiness(sector, rng)
	equity := minInt(b.AcquisitionPrice, s.Cash/2)
	if note := b.AcquisitionPrice - equity; note > 0 {
		b.SellerNote = DebtTranche{Balance: note, Rate: seedSellerNoteRate, RoundsRemaining: seedSellerNoteRounds}
	}
	s.Cash -= equity
	s.TotalInvestedCapital = b.AcquisitionPrice
	s.Businesses = []Business{b}
	return NormalizeState(s), nil
}

func seedBusiness(sector Sector, rng Rand) Business {
	ebitda := roundHalfUp(between(rng, float64(sector.EbitdaMin), float64(sector.EbitdaMax)))
	margin := between(rng, sector.MarginMin, sector.MarginMax)
	revenue := roundHalfUp(float64(ebitda) / margin)
	ebitda = roundHalfUp(float64(revenue) * margin)
	multiple := math.Round(between(rng, sector.MultipleMin, sector.MultipleMax)*10) / 10

	return Business{
		ID:                         "biz-1",
		Name:                       fmt.Sprintf("%s Co.", sector.Name),
		SectorID:                   sector.ID,
		Status:                     StatusActive,
		Revenue:                    revenue,
		EBITDA:                     ebitda,
		EBITDAMargin:               margin,
		PeakRevenue:                revenue,
		PeakEBITDA:                 ebitda,
		OrganicGrowthRate:          between(rng, sector.GrowthMin, sector.GrowthMax),
		AcquisitionRound:           1,
		AcquisitionPrice:           roundHalfUp(float64(ebitda) * multiple),
		AcquisitionEBITDA:          ebitda,
		AcquisitionMargin:          margin,
		AcquisitionMultiple:        multiple,
		AcquisitionRevenue:         revenue,
		AcquisitionSizeTierPremium: SizeTierPremium(ebitda),
		QualityRating:              2 + pickIndex(rng, 3),
		DueDiligence: DueDiligence{
			OperatorQuality:      operatorQualities[pickIndex(rng, len(operatorQualities))],
			CompetitivePosition:  competitivePositions[pickIndex(rng, len(competitivePositions))],
			RevenueConcentration: revenueConcentrations[pickIndex(rng, len(revenueConcentrations))],
		},
	}
}

// RoundReport summarizes one AdvanceRound call.
type RoundReport struct {
	Round         int       `json:"round"`
	Operating     Metrics   `json:"operating"`
	Event         GameEvent `json:"event"`
	AwaitingInput bool      `json:"awaiting_input"`
	Closing       Metrics   `json:"closing"`
	Bankrupt      bool      `json:"bankrupt"`
	GameOver      bool      `json:"game_over"`
}

const (
	leverageFlagRatio     = 4.0
	minFocusCount         = 2
	diversificationGroups = 4
	diversificationBonus  = 0.01
)

// sectorFocusBonus grows with the number of businesses in one focus group.
func sectorFocusBonus(count int) float64 {
	switch {
	case count >= 4:
		return 0.02
	case count >= minFocusCount:
		return 0.01
	default:
		return 0
	}
}

func growthInputsFor(s GameState) func(Business) GrowthInputs {
	effects := sharedServiceEffects(s.SharedServices)
	counts := focusGroupCounts(s.Businesses)
	divBonus := 0.0
	if len(counts) >= diversificationGroups {
		divBonus = diversificationBonus
	}
	return func(b Business) GrowthInputs {
		group := counts[SectorByID(b.SectorID).FocusGroup]
		return GrowthInputs{
			SharedServicesGrowthBonus: effects.GrowthBonus,
			SectorFocusBonus:          sectorFocusBonus(group),
			InflationActive:           s.InflationRoundsRemaining > 0,
			ConcentrationCount:        group,
			DiversificationBonus:      divBonus,
			CurrentRound:              s.Round,
			MarginDefense:             effects.MarginDefense,
			MaxRounds:                 s.MaxRounds,
			Duration:                  s.Duration,
		}
	}
}

// AdvanceRound runs the fixed per-round pipeline: growth, cash flow and debt
// service, distress bookkeeping, the event roll and its resolution, then the
// closing metrics and history snapshot. Any unresolved choice from the
// previous round lapses.
func AdvanceRound(state GameState, rng Rand) (GameState, RoundReport, error) {
	if state.IsOver() {
		return state, RoundReport{}, ErrGameOver
	}
	s := state.Clone()
	s.CurrentEvent = nil
	s.ActionsThisRound = nil
	report := RoundReport{Round: s.Round}

	inputs := growthInputsFor(s)
	for i, b := range s.Businesses {
		if b.Status == StatusActive {
			s.Businesses[i] = ApplyOrganicGrowth(b, inputs(b), rng)
		}
	}

	m := CalculateMetrics(s)
	report.Operating = m
	s.Cash += m.FCF
	s = settleDebtAndEarnouts(s, m.InterestRate)

	if m.NetDebtToEBITDA > leverageFlagRatio {
		s.ExceededLeverage4x = true
	}
	if m.DistressLevel == DistressBreach {
		s.HadCovenantBreach = true
	}
	s = tickCounters(s)

	ev := GenerateEvent(s, rng)
	s.EventLog = append(s.EventLog, EventRecord{Round: s.Round, Type: ev.Type, BusinessID: ev.AffectedBusinessID})
	s.LastEventType = ev.Type
	if HasChoices(ev) {
		report.AwaitingInput = true
	} else {
		s, ev.Impacts = ApplyEventEffects(s, ev, rng)
	}
	s.CurrentEvent = &ev
	report.Event = ev

	if s.Cash < 0 {
		s.BankruptRound = s.Round
		report.Bankrupt = true
	}
	closing := CalculateMetrics(s)
	report.Closing = closing
	s.History = append(s.History, closing.Snapshot(s.Round))
	if !report.Bankrupt {
		s.Round++
	}
	report.GameOver = s.IsOver()
	return s, report, nil
}

// settleDebtAndEarnouts books the principal and earn-out payments that the
// round's FCF already paid for.
func settleDebtAndEarnouts(s GameState, holdcoRate float64) GameState {
	if s.TotalDebt > 0 {
		p := trancheService(holdcoTranche(s, holdcoRate))
		s.TotalDebt -= p.Principal
		if s.HoldcoLoanRoundsRemaining > 0 {
			s.HoldcoLoanRoundsRemaining--
		}
	}
	for i, b := range s.Businesses {
		if b.Status != StatusActive {
			continue
		}
		b.SellerNote = amortize(b.SellerNote)
		b.BankDebt = amortize(b.BankDebt)
		if due := earnoutDue(b); due > 0 {
			b.EarnoutRemaining -= due
		}
		s.Businesses[i] = b
	}
	return s
}

func amortize(t DebtTranche) DebtTranche {
	if t.Balance <= 0 {
		return DebtTranche{}
	}
	t.Balance -= trancheService(t).Principal
	if t.RoundsRemaining > 0 {
		t.RoundsRemaining--
	}
	if t.Balance <= 0 {
		return DebtTranche{}
	}
	return t
}

// tickCounters ages timed effects and completes turnaround programs.
func tickCounters(s GameState) GameState {
	if s.InflationRoundsRemaining > 0 {
		s.InflationRoundsRemaining--
	}
	if s.CreditTighteningRoundsRemaining > 0 {
		s.CreditTighteningRoundsRemaining--
	}
	if s.ConsolidationBoom.RoundsRemaining > 0 {
		s.ConsolidationBoom.RoundsRemaining--
		if s.ConsolidationBoom.RoundsRemaining == 0 {
			s.ConsolidationBoom = ConsolidationBoom{}
		}
	}

	running := s.ActiveTurnarounds[:0]
	for _, p := range s.ActiveTurnarounds {
		p.RoundsRemaining--
		if p.RoundsRemaining > 0 {
			running = append(running, p)
			continue
		}
		tier, ok := TurnaroundTierByID(p.Tier)
		i := s.businessIndex(p.BusinessID)
		if !ok || i < 0 || s.Businesses[i].Status != StatusActive {
			continue
		}
		b := s.Businesses[i]
		b.QualityRating = min(5, b.QualityRating+tier.QualityGain)
		b.QualityImprovedTiers += tier.QualityGain
		b, _ = shiftBusiness(b, 0, tier.MarginBoost)
		s.Businesses[i] = b
	}
	s.ActiveTurnarounds = running
	return s
}
