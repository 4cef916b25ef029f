package game

import "math"

// eventReducer applies one event kind to a state the caller already cloned.
type eventReducer func(s GameState, ev GameEvent, rng Rand) (GameState, []EventImpact)

var eventReducers map[EventType]eventReducer

func init() {
	eventReducers = map[EventType]eventReducer{
		EventBullMarket:        reduceMarketShift,
		EventRecession:         reduceRecession,
		EventInterestHike:      reduceInterestHike,
		EventInterestCut:       reduceInterestCut,
		EventInflation:         reduceInflation,
		EventCreditTightening:  reduceCreditTightening,
		EventQuiet:             reduceNothing,
		EventStarJoins:         reduceTargetShift,
		EventTalentLeaves:      reduceTalentLeaves,
		EventClientSigns:       reduceTargetShift,
		EventClientChurns:      reduceTargetShift,
		EventBreakthrough:      reduceBreakthrough,
		EventComplianceIssue:   reduceCompliance,
		EventSupplierShift:     reduceTargetShift,
		EventConsolidationBoom: reduceConsolidationBoom,
	}
}

// ApplyEventEffects resolves an event that needs no player decision and
// returns the new state plus a before/after record of everything touched.
// Choice-bearing events leave the state unchanged; see ResolveEventChoice.
func ApplyEventEffects(state GameState, ev GameEvent, rng Rand) (GameState, []EventImpact) {
	out := state.Clone()
	if HasChoices(ev) {
		return out, nil
	}
	if reduce, ok := eventReducers[ev.Type]; ok {
		return reduce(out, ev, rng)
	}
	if se, ok := sectorEventSpecByType(ev.Type); ok {
		return reduceSectorShift(out, se, rng)
	}
	return out, nil
}

func reduceNothing(s GameState, _ GameEvent, _ Rand) (GameState, []EventImpact) {
	return s, nil
}

// drawRange draws from [lo, hi] but consumes no randomness for a fixed value.
func drawRange(rng Rand, lo, hi float64) float64 {
	if lo == hi {
		return lo
	}
	return between(rng, lo, hi)
}

// shiftBusiness moves revenue by a fraction and margin by an absolute amount,
// then re-applies the margin band, EBITDA floor and peak ratchet.
func shiftBusiness(b Business, revenuePct, marginDelta float64) (Business, []EventImpact) {
	out := b.clone()
	if revenuePct != 0 {
		out.Revenue = maxInt(0, roundHalfUp(float64(b.Revenue)*(1+revenuePct)))
	}
	if marginDelta != 0 {
		out.EBITDAMargin = ClampMargin(b.EBITDAMargin+marginDelta, b.SectorID)
	}
	if revenuePct != 0 || marginDelta != 0 {
		out.EBITDA = roundHalfUp(float64(out.Revenue) * out.EBITDAMargin)
		out = ApplyEbitdaFloor(out)
		out = refreshPeaks(out)
	}

	var impacts []EventImpact
	if out.Revenue != b.Revenue {
		impacts = append(impacts, businessImpact(b, "revenue", float64(b.Revenue), float64(out.Revenue)))
	}
	if out.EBITDA != b.EBITDA {
		impacts = append(impacts, businessImpact(b, "ebitda", float64(b.EBITDA), float64(out.EBITDA)))
	}
	if out.EBITDAMargin != b.EBITDAMargin {
		impacts = append(impacts, businessImpact(b, "ebitda_margin", b.EBITDAMargin, out.EBITDAMargin))
	}
	return out, impacts
}

func businessImpact(b Business, metric string, before, after float64) EventImpact {
	return EventImpact{
		BusinessID:   b.ID,
		BusinessName: b.Name,
		Metric:       metric,
		Before:       before,
		After:        after,
		Delta:        after - before,
	}
}

func holdcoImpact(metric string, before, after float64) EventImpact {
	return EventImpact{Metric: metric, Before: before, After: after, Delta: after - before}
}

// shiftActive applies the same shift to every active business accepted by keep.
func shiftActive(s GameState, keep func(Business) bool, shift func(Business) (float64, float64)) (GameState, []EventImpact) {
	var impacts []EventImpact
	for i, b := range s.Businesses {
		if b.Status != StatusActive || (keep != nil && !keep(b)) {
			continue
		}
		rev, margin := shift(b)
		nb, imp := shiftBusiness(b, rev, margin)
		s.Businesses[i] = nb
		impacts = append(impacts, imp...)
	}
	return s, impacts
}

func reduceMarketShift(s GameState, ev GameEvent, rng Rand) (GameState, []EventImpact) {
	spec, _ := eventSpecByType(ev.Type)
	rev := drawRange(rng, spec.RevenueMin, spec.RevenueMax)
	return shiftActive(s, nil, func(Business) (float64, float64) { return rev, 0 })
}

func reduceRecession(s GameState, ev GameEvent, rng Rand) (GameState, []EventImpact) {
	spec, _ := eventSpecByType(ev.Type)
	rev := drawRange(rng, spec.RevenueMin, spec.RevenueMax)
	margin := drawRange(rng, spec.MarginMin, spec.MarginMax)
	return shiftActive(s, nil, func(b Business) (float64, float64) {
		return rev * SectorByID(b.SectorID).RecessionSensitivity, margin
	})
}

const (
	rateShockMin           = 0.005
	rateShockMax           = 0.015
	inflationRounds        = 2
	creditTighteningRounds = 2
	maxCreditTightening    = 4
)

func reduceInterestHike(s GameState, _ GameEvent, rng Rand) (GameState, []EventImpact) {
	before := s.InterestRate
	s.InterestRate = math.Min(MaxInterestRate, s.InterestRate+between(rng, rateShockMin, rateShockMax))
	return s, []EventImpact{holdcoImpact("interest_rate", before, s.InterestRate)}
}

func reduceInterestCut(s GameState, _ GameEvent, rng Rand) (GameState, []EventImpact) {
	before := s.InterestRate
	s.InterestRate = math.Max(MinInterestRate, s.InterestRate-between(rng, rateShockMin, rateShockMax))
	return s, []EventImpact{holdcoImpact("interest_rate", before, s.InterestRate)}
}

func reduceInflation(s GameState, ev GameEvent, rng Rand) (GameState, []EventImpact) {
	spec, _ := eventSpecByType(ev.Type)
	s.InflationRoundsRemaining = inflationRounds
	margin := drawRange(rng, spec.MarginMin, spec.MarginMax)
	return shiftActive(s, nil, func(Business) (float64, float64) { return 0, margin })
}

func reduceCreditTightening(s GameState, _ GameEvent, _ Rand) (GameState, []EventImpact) {
	before := s.CreditTighteningRoundsRemaining
	s.CreditTighteningRoundsRemaining = min(maxCreditTightening, s.CreditTighteningRoundsRemaining+creditTighteningRounds)
	return s, []EventImpact{holdcoImpact("credit_tightening_rounds", float64(before), float64(s.CreditTighteningRoundsRemaining))}
}

// shiftTarget applies a shift to the event's affected business only.
func shiftTarget(s GameState, ev GameEvent, rev, margin float64) (GameState, []EventImpact, int) {
	i := s.businessIndex(ev.AffectedBusinessID)
	if i < 0 || s.Businesses[i].Status != StatusActive {
		return s, nil, -1
	}
	nb, impacts := shiftBusiness(s.Businesses[i], rev, margin)
	s.Businesses[i] = nb
	return s, impacts, i
}

func reduceTargetShift(s GameState, ev GameEvent, rng Rand) (GameState, []EventImpact) {
	spec, _ := eventSpecByType(ev.Type)
	rev := drawRange(rng, spec.RevenueMin, spec.RevenueMax)
	margin := drawRange(rng, spec.MarginMin, spec.MarginMax)
	s, impacts, _ := shiftTarget(s, ev, rev, margin)
	return s, impacts
}

// reduceTalentLeaves is softened by the recruiting shared service.
func reduceTalentLeaves(s GameState, ev GameEvent, rng Rand) (GameState, []EventImpact) {
	spec, _ := eventSpecByType(EventTalentLeaves)
	keep := 1 - sharedServiceEffects(s.SharedServices).TalentRetention
	rev := drawRange(rng, spec.RevenueMin, spec.RevenueMax) * keep
	margin := drawRange(rng, spec.MarginMin, spec.MarginMax) * keep
	s, impacts, _ := shiftTarget(s, ev, rev, margin)
	return s, impacts
}

const breakthroughGrowthBoost = 0.01

func reduceBreakthrough(s GameState, ev GameEvent, rng Rand) (GameState, []EventImpact) {
	spec, _ := eventSpecByType(EventBreakthrough)
	margin := drawRange(rng, spec.MarginMin, spec.MarginMax)
	s, impacts, i := shiftTarget(s, ev, 0, margin)
	if i < 0 {
		return s, impacts
	}
	b := s.Businesses[i]
	before := b.OrganicGrowthRate
	b.OrganicGrowthRate = clamp(before+breakthroughGrowthBoost, MinGrowthRate, MaxGrowthRate)
	s.Businesses[i] = b
	return s, append(impacts, businessImpact(b, "organic_growth_rate", before, b.OrganicGrowthRate))
}

const (
	complianceCostMin = 0.05
	complianceCostMax = 0.15
)

func reduceCompliance(s GameState, ev GameEvent, rng Rand) (GameState, []EventImpact) {
	spec, _ := eventSpecByType(EventComplianceIssue)
	i := s.businessIndex(ev.AffectedBusinessID)
	if i < 0 || s.Businesses[i].Status != StatusActive {
		return s, nil
	}
	cost := maxInt(0, roundHalfUp(float64(s.Businesses[i].EBITDA)*between(rng, complianceCostMin, complianceCostMax)))
	before := s.Cash
	s.Cash -= cost
	s, impacts, _ := shiftTarget(s, ev, 0, drawRange(rng, spec.MarginMin, spec.MarginMax))
	return s, append(impacts, holdcoImpact("cash", float64(before), float64(s.Cash)))
}

func reduceSectorShift(s GameState, se sectorEventSpec, rng Rand) (GameState, []EventImpact) {
	rev := drawRange(rng, se.RevenueMin, se.RevenueMax)
	margin := drawRange(rng, se.MarginMin, se.MarginMax)
	inSector := func(b Business) bool { return b.SectorID == se.SectorID }
	return shiftActive(s, inSector, func(Business) (float64, float64) { return rev, margin })
}

func reduceConsolidationBoom(s GameState, ev GameEvent, _ Rand) (GameState, []EventImpact) {
	if ev.ConsolidationSectorID == "" {
		return s, nil
	}
	s.ConsolidationBoom = ConsolidationBoom{SectorID: ev.ConsolidationSectorID, RoundsRemaining: consolidationBoomRounds}
	return s, nil
}

const (
	equityGrantFraction    = 0.02
	keyManLossProbability  = 0.5
	keyManMarginHit        = -0.02
	decliningEquityRevenue = -0.05
	decliningEquityMargin  = -0.01
)

// ResolveEventChoice applies the player's decision on a choice-bearing event.
func ResolveEventChoice(state GameState, ev GameEvent, action string, rng Rand) (GameState, []EventImpact, error) {
	if !HasChoices(ev) {
		return state, nil, ErrNoPendingChoice
	}
	var choice *EventChoice
	for i := range ev.Choices {
		if ev.Choices[i].Action == action {
			choice = &ev.Choices[i]
			break
		}
	}
	if choice == nil {
		return state, nil, ErrUnknownChoice
	}

	out := state.Clone()
	idx := -1
	if ev.AffectedBusinessID != "" {
		idx = out.businessIndex(ev.AffectedBusinessID)
		if idx < 0 || out.Businesses[idx].Status != StatusActive {
			return state, nil, ErrBusinessNotFound
		}
	}
	if choice.Cost > out.Cash {
		return state, nil, ErrInsufficientCash
	}

	var impacts []EventImpact
	if choice.Cost > 0 {
		impacts = append(impacts, holdcoImpact("cash", float64(out.Cash), float64(out.Cash-choice.Cost)))
		out.Cash -= choice.Cost
	}

	switch action {
	case ActionAcceptOffer, ActionAcceptMBO:
		var imp []EventImpact
		out, imp = sellBusiness(out, idx, ev.OfferAmount)
		impacts = append(impacts, imp...)

	case ActionGrantEquity:
		issued := max(1, roundHalfUp(float64(out.SharesOutstanding)*equityGrantFraction))
		impacts = append(impacts, holdcoImpact("shares_outstanding", float64(out.SharesOutstanding), float64(out.SharesOutstanding+issued)))
		out.SharesOutstanding += issued

	case ActionDeclineEquity:
		nb, imp := shiftBusiness(out.Businesses[idx], decliningEquityRevenue, decliningEquityMargin)
		out.Businesses[idx] = nb
		impacts = append(impacts, imp...)

	case ActionAcceptKeyManRisk:
		if rng.Next() < keyManLossProbability {
			b := out.Businesses[idx]
			nb, imp := shiftBusiness(b, 0, keyManMarginHit)
			if nb.QualityRating > 1 {
				nb.QualityRating--
				imp = append(imp, businessImpact(b, "quality_rating", float64(b.QualityRating), float64(nb.QualityRating)))
			}
			out.Businesses[idx] = nb
			impacts = append(impacts, imp...)
		}

	case ActionPayOffNote:
		b := out.Businesses[idx]
		impacts = append(impacts, businessImpact(b, "seller_note", float64(b.SellerNote.Balance), 0))
		b.SellerNote = DebtTranche{}
		out.Businesses[idx] = b
	}

	out.ActionsThisRound = append(out.ActionsThisRound, action)
	if out.CurrentEvent != nil && out.CurrentEvent.ID == ev.ID {
		out.CurrentEvent = nil
	}
	return out, impacts, nil
}

// sellBusiness exits the business at price, repaying its opco debt and any
// remaining earn-out from the proceeds. The buyer assumes whatever the price
// does not cover. Bolt-ons leave with their platform but keep their
// integrated status.
func sellBusiness(s GameState, idx int, price int64) (GameState, []EventImpact) {
	b := s.Businesses[idx]
	before := s.Cash
	s.Cash += saleProceeds(b, price)

	b.Status = StatusSold
	b.ExitRound = s.Round
	b.ExitPrice = price
	b.SellerNote = DebtTranche{}
	b.BankDebt = DebtTranche{}
	b.EarnoutRemaining = 0
	s.Businesses[idx] = b

	for i, other := range s.Businesses {
		if other.ParentPlatformID == b.ID && other.Status == StatusIntegrated {
			other.ExitRound = s.Round
			s.Businesses[i] = other
		}
	}
	return s, []EventImpact{
		businessImpact(b, "exit_price", 0, float64(price)),
		holdcoImpact("cash", float64(before), float64(s.Cash)),
	}
}
