package game

import (
	"fmt"
	"math"
	"sort"
)

type EventChoice struct {
	Action  string `json:"action"`
	Label   string `json:"label"`
	Cost    int64  `json:"cost"`
	Variant string `json:"variant"` // positive | negative | neutral
}

// EventImpact records the before/after of one metric touched by an event.
type EventImpact struct {
	BusinessID   string  `json:"business_id,omitempty"`
	BusinessName string  `json:"business_name,omitempty"`
	Metric       string  `json:"metric"`
	Before       float64 `json:"before"`
	After        float64 `json:"after"`
	Delta        float64 `json:"delta"`
}

type GameEvent struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	Round       int       `json:"round"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Effect      string    `json:"effect"`

	AffectedBusinessID    string        `json:"affected_business_id,omitempty"`
	AffectedSectorID      string        `json:"affected_sector_id,omitempty"`
	Choices               []EventChoice `json:"choices,omitempty"`
	OfferAmount           int64         `json:"offer_amount,omitempty"`
	OfferMultiple         float64       `json:"offer_multiple,omitempty"`
	ConsolidationSectorID string        `json:"consolidation_sector_id,omitempty"`
	Impacts               []EventImpact `json:"impacts,omitempty"`
}

func (e GameEvent) clone() GameEvent {
	out := e
	out.Choices = append([]EventChoice(nil), e.Choices...)
	out.Impacts = append([]EventImpact(nil), e.Impacts...)
	return out
}

// HasChoices reports whether the event waits for a player decision instead
// of applying its effects immediately.
func HasChoices(e GameEvent) bool {
	return len(e.Choices) > 0
}

func newEvent(spec eventSpec, round int) GameEvent {
	return GameEvent{
		ID:          fmt.Sprintf("%s-r%d", spec.Type, round),
		Type:        spec.Type,
		Round:       round,
		Title:       spec.Title,
		Description: spec.Description,
		Effect:      spec.Effect,
	}
}

func quietEvent(round int) GameEvent {
	return GameEvent{
		ID:          fmt.Sprintf("%s-r%d", EventQuiet, round),
		Type:        EventQuiet,
		Round:       round,
		Title:       "A Quiet Year",
		Description: "Markets are calm and nothing unusual happens.",
		Effect:      "No effect.",
	}
}

// rollCumulative walks a fixed-order probability table and returns the index
// the draw lands in, or -1 for a miss. The running total never exceeds 1.
func rollCumulative(probs []float64, draw float64) int {
	cum := 0.0
	for i, p := range probs {
		if p <= 0 {
			continue
		}
		if cum+p > 1 {
			p = 1 - cum
		}
		cum += p
		if draw < cum {
			return i
		}
		if cum >= 1 {
			break
		}
	}
	return -1
}

// GenerateEvent rolls this round's event: global, then portfolio, then
// sector, then the consolidation boom and unsolicited offer checks. It always
// returns an event, falling back to a quiet year.
func GenerateEvent(state GameState, rng Rand) GameEvent {
	round := state.Round

	probs := make([]float64, len(globalEvents))
	for i, e := range globalEvents {
		probs[i] = e.Probability
	}
	if i := rollCumulative(probs, rng.Next()); i >= 0 {
		return newEvent(globalEvents[i], round)
	}

	active := state.ActiveBusinesses()
	if len(active) == 0 {
		return quietEvent(round)
	}
	if ev, ok := rollPortfolioEvent(state, active, rng); ok {
		return ev
	}
	if ev, ok := rollSectorEvent(state, active, rng); ok {
		return ev
	}
	if ev, ok := rollConsolidationBoom(state, active, rng); ok {
		return ev
	}
	if ev, ok := rollUnsolicitedOffer(state, active, rng); ok {
		return ev
	}
	return quietEvent(round)
}

func recentlyHit(state GameState, t EventType, businessID string, cooldown int) bool {
	if cooldown <= 0 {
		return false
	}
	for _, r := range state.EventLog {
		if r.Type == t && r.BusinessID == businessID && state.Round-r.Round <= cooldown {
			return true
		}
	}
	return false
}

// portfolioCandidates applies the eligibility predicates of one portfolio event.
func portfolioCandidates(state GameState, active []Business, spec eventSpec) []Business {
	if len(active) < spec.MinBusinesses {
		return nil
	}
	out := make([]Business, 0, len(active))
	for _, b := range active {
		if recentlyHit(state, spec.Type, b.ID, spec.CooldownRounds) {
			continue
		}
		switch spec.Type {
		case EventSellerNoteRenego:
			if b.SellerNote.Balance <= 0 {
				continue
			}
		case EventManagementBuyout:
			if b.QualityRating < 3 || state.Round-b.AcquisitionRound < 2 || b.IsPlatform || b.IntegrationRoundsRemaining > 0 {
				continue
			}
		}
		out = append(out, b)
	}
	return out
}

func rollPortfolioEvent(state GameState, active []Business, rng Rand) (GameEvent, bool) {
	effects := sharedServiceEffects(state.SharedServices)
	candidates := make([][]Business, len(portfolioEvents))
	probs := make([]float64, len(portfolioEvents))
	for i, spec := range portfolioEvents {
		candidates[i] = portfolioCandidates(state, active, spec)
		if len(candidates[i]) == 0 {
			continue
		}
		p := spec.Probability
		switch spec.Type {
		case EventTalentLeaves:
			p *= 1 - effects.TalentRetention
		case EventClientChurns:
			for _, b := range candidates[i] {
				if b.DueDiligence.RevenueConcentration == "high" {
					p *= 1.25
					break
				}
			}
		}
		probs[i] = p
	}

	i := rollCumulative(probs, rng.Next())
	if i < 0 {
		return GameEvent{}, false
	}
	spec := portfolioEvents[i]
	target := candidates[i][pickIndex(rng, len(candidates[i]))]

	ev := newEvent(spec, state.Round)
	ev.AffectedBusinessID = target.ID
	ev.Description = fmt.Sprintf("%s (%s)", spec.Description, target.Name)
	attachChoices(&ev, state, target)
	return ev, true
}

func attachChoices(ev *GameEvent, state GameState, b Business) {
	switch ev.Type {
	case EventEquityDemand:
		ev.Choices = []EventChoice{
			{Action: ActionGrantEquity, Label: "Grant equity (2% dilution)", Variant: "neutral"},
			{Action: ActionDeclineEquity, Label: "Decline and risk departure", Variant: "negative"},
		}
	case EventKeyManRisk:
		cost := maxInt(50, roundHalfUp(float64(b.EBITDA)*0.10))
		ev.Choices = []EventChoice{
			{Action: ActionRetentionBonus, Label: "Pay a retention bonus", Cost: cost, Variant: "positive"},
			{Action: ActionAcceptKeyManRisk, Label: "Accept the risk", Variant: "negative"},
		}
	case EventSellerNoteRenego:
		cost := roundHalfUp(float64(b.SellerNote.Balance) * 0.9)
		ev.Choices = []EventChoice{
			{Action: ActionPayOffNote, Label: "Pay off the note at a 10% discount", Cost: cost, Variant: "positive"},
			{Action: ActionKeepNoteTerms, Label: "Keep the existing terms", Variant: "neutral"},
		}
	case EventManagementBuyout:
		v := CalculateExitValuation(b, state.Round, state.LastEventType, portfolioContext(state), state.IntegratedPlatforms)
		ev.OfferAmount = roundHalfUp(float64(v.ExitPrice) * mboDiscount)
		ev.OfferMultiple = v.TotalMultiple * mboDiscount
		ev.Choices = []EventChoice{
			{Action: ActionAcceptMBO, Label: fmt.Sprintf("Sell to management for %d", ev.OfferAmount), Variant: "positive"},
			{Action: ActionDeclineMBO, Label: "Decline the buyout", Variant: "neutral"},
		}
	}
}

// ownedSectors lists the sectors of active businesses in first-seen order.
func ownedSectors(active []Business) []string {
	seen := make(map[string]bool)
	var out []string
	for _, b := range active {
		if !seen[b.SectorID] {
			seen[b.SectorID] = true
			out = append(out, b.SectorID)
		}
	}
	return out
}

func rollSectorEvent(state GameState, active []Business, rng Rand) (GameEvent, bool) {
	owned := make(map[string]bool)
	for _, id := range ownedSectors(active) {
		owned[id] = true
	}
	var table []sectorEventSpec
	var probs []float64
	for _, se := range sectorEvents {
		if owned[se.SectorID] {
			table = append(table, se)
			probs = append(probs, se.Probability)
		}
	}
	if len(table) == 0 {
		return GameEvent{}, false
	}
	i := rollCumulative(probs, rng.Next())
	if i < 0 {
		return GameEvent{}, false
	}
	ev := newEvent(table[i].eventSpec, state.Round)
	ev.AffectedSectorID = table[i].SectorID
	return ev, true
}

func rollConsolidationBoom(state GameState, active []Business, rng Rand) (GameEvent, bool) {
	if state.ConsolidationBoom.RoundsRemaining > 0 {
		return GameEvent{}, false
	}
	if rng.Next() >= consolidationBoomProbability {
		return GameEvent{}, false
	}
	sectors := ownedSectors(active)
	sort.Strings(sectors)
	sectorID := sectors[pickIndex(rng, len(sectors))]
	sector := SectorByID(sectorID)

	ev := GameEvent{
		ID:                    fmt.Sprintf("%s-r%d", EventConsolidationBoom, state.Round),
		Type:                  EventConsolidationBoom,
		Round:                 state.Round,
		Title:                 fmt.Sprintf("Consolidation Boom: %s", sector.Name),
		Description:           fmt.Sprintf("Buyers are racing to roll up %s businesses.", sector.Name),
		Effect:                fmt.Sprintf("Acquisition prices and exit interest in %s rise for %d rounds.", sector.Name, consolidationBoomRounds),
		AffectedSectorID:      sectorID,
		ConsolidationSectorID: sectorID,
	}
	return ev, true
}

// rollUnsolicitedOffer fires with compound probability 1-0.95^N across the
// N eligible businesses and prices the offer off the exit valuation.
func rollUnsolicitedOffer(state GameState, active []Business, rng Rand) (GameEvent, bool) {
	eligible := make([]Business, 0, len(active))
	for _, b := range active {
		if b.EBITDA > 0 && b.IntegrationRoundsRemaining == 0 {
			eligible = append(eligible, b)
		}
	}
	if len(eligible) == 0 {
		return GameEvent{}, false
	}
	p := 1 - math.Pow(1-offerProbabilityPerBusiness, float64(len(eligible)))
	if rng.Next() >= p {
		return GameEvent{}, false
	}
	b := eligible[pickIndex(rng, len(eligible))]
	v := CalculateExitValuation(b, state.Round, state.LastEventType, portfolioContext(state), state.IntegratedPlatforms)
	variance := between(rng, offerVarianceMin, offerVarianceMax)
	if state.ConsolidationBoom.RoundsRemaining > 0 && state.ConsolidationBoom.SectorID == b.SectorID {
		variance *= consolidationBoomOfferLift
	}
	offer := roundHalfUp(float64(v.ExitPrice) * variance)
	if offer <= 0 {
		return GameEvent{}, false
	}

	ev := GameEvent{
		ID:                 fmt.Sprintf("%s-r%d", EventUnsolicitedOffer, state.Round),
		Type:               EventUnsolicitedOffer,
		Round:              state.Round,
		Title:              "Unsolicited Offer",
		Description:        fmt.Sprintf("A buyer approaches you about %s.", b.Name),
		Effect:             fmt.Sprintf("Offer of %d (%.1fx EBITDA).", offer, v.TotalMultiple*variance),
		AffectedBusinessID: b.ID,
		OfferAmount:        offer,
		OfferMultiple:      v.TotalMultiple * variance,
		Choices: []EventChoice{
			{Action: ActionAcceptOffer, Label: "Accept the offer", Variant: "positive"},
			{Action: ActionDeclineOffer, Label: "Decline", Variant: "neutral"},
		},
	}
	return ev, true
}

func portfolioContext(state GameState) *PortfolioContext {
	ctx := &PortfolioContext{SharedServicesActive: sharedServiceEffects(state.SharedServices).ActiveCount}
	for _, b := range state.Businesses {
		if b.Status != StatusActive {
			continue
		}
		ctx.BusinessCount++
		ctx.TotalEBITDA += b.EBITDA
	}
	return ctx
}
