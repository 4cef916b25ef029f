package game

import "testing"

func TestGenerateEventQuietWhenEverythingMisses(t *testing.T) {
	state := sampleState()
	ev := GenerateEvent(state, stubRand{v: almostOne})
	if ev.Type != EventQuiet {
		t.Fatalf("expected quiet event, got %s", ev.Type)
	}
	if ev.ID == "" || ev.Title == "" || ev.Round != state.Round {
		t.Fatalf("quiet event missing fields: %+v", ev)
	}
}

func TestGenerateEventQuietWithPortfolioAndHighDraw(t *testing.T) {
	state := sampleState(sampleBusiness("a", "agency", 1_000), sampleBusiness("b", "saas", 800))
	ev := GenerateEvent(state, stubRand{v: almostOne})
	if ev.Type != EventQuiet {
		t.Fatalf("expected quiet event, got %s", ev.Type)
	}
}

func TestGenerateEventFirstGlobalOnLowDraw(t *testing.T) {
	state := sampleState(sampleBusiness("a", "agency", 1_000))
	ev := GenerateEvent(state, stubRand{v: 0})
	if ev.Type != EventBullMarket {
		t.Fatalf("expected the first global event, got %s", ev.Type)
	}
}

func TestGenerateEventAlwaysReturnsAnEvent(t *testing.T) {
	state := sampleState(sampleBusiness("a", "agency", 1_000), sampleBusiness("b", "restaurant", 900))
	rng := NewSeededRand(99)
	for i := 0; i < 500; i++ {
		ev := GenerateEvent(state, rng)
		if ev.Type == "" || ev.ID == "" {
			t.Fatalf("draw %d returned an empty event", i)
		}
		if HasChoices(ev) && ev.Type != EventUnsolicitedOffer && ev.AffectedBusinessID == "" {
			t.Fatalf("choice event without a business: %+v", ev)
		}
	}
}

func TestRollCumulative(t *testing.T) {
	probs := []float64{0.2, 0, 0.3}
	tests := []struct {
		draw float64
		want int
	}{
		{draw: 0, want: 0},
		{draw: 0.19, want: 0},
		{draw: 0.2, want: 2},
		{draw: 0.49, want: 2},
		{draw: 0.5, want: -1},
	}
	for _, tt := range tests {
		if got := rollCumulative(probs, tt.draw); got != tt.want {
			t.Fatalf("draw %v: expected %d, got %d", tt.draw, tt.want, got)
		}
	}
	if got := rollCumulative([]float64{0.8, 0.8, 0.8}, 0.99); got != 1 {
		t.Fatalf("running total must clamp at 1, got %d", got)
	}
}

func TestPortfolioCandidatesEligibility(t *testing.T) {
	young := sampleBusiness("young", "agency", 1_000)
	young.AcquisitionRound = 4
	platform := sampleBusiness("platform", "agency", 1_000)
	platform.IsPlatform = true
	seasoned := sampleBusiness("seasoned", "agency", 1_000)

	state := sampleState(young, platform, seasoned)
	state.Round = 5
	spec, _ := eventSpecByType(EventManagementBuyout)
	got := portfolioCandidates(state, state.ActiveBusinesses(), spec)
	if len(got) != 1 || got[0].ID != "seasoned" {
		t.Fatalf("expected only the seasoned business to qualify, got %+v", got)
	}

	noteSpec, _ := eventSpecByType(EventSellerNoteRenego)
	if got := portfolioCandidates(state, state.ActiveBusinesses(), noteSpec); len(got) != 0 {
		t.Fatalf("no business carries a seller note, got %d candidates", len(got))
	}

	supplier, _ := eventSpecByType(EventSupplierShift)
	if got := portfolioCandidates(state, state.ActiveBusinesses(), supplier); got != nil {
		t.Fatalf("supplier shift needs four businesses, got %d candidates", len(got))
	}
}

func TestPortfolioCandidatesCooldown(t *testing.T) {
	b := sampleBusiness("a", "agency", 1_000)
	state := sampleState(b)
	state.Round = 4
	state.EventLog = []EventRecord{{Round: 2, Type: EventEquityDemand, BusinessID: "a"}}

	spec, _ := eventSpecByType(EventEquityDemand)
	if got := portfolioCandidates(state, state.ActiveBusinesses(), spec); len(got) != 0 {
		t.Fatalf("business inside cooldown should be excluded")
	}
	state.Round = 5
	if got := portfolioCandidates(state, state.ActiveBusinesses(), spec); len(got) != 1 {
		t.Fatalf("business outside cooldown should qualify")
	}
}

func TestUnsolicitedOfferPricing(t *testing.T) {
	b := sampleBusiness("a", "agency", 1_000)
	state := sampleState(b)
	state.Round = 4

	// draw 0 fires the offer, picks the only business and takes the
	// low end of the price variance.
	ev, ok := rollUnsolicitedOffer(state, state.ActiveBusinesses(), stubRand{v: 0})
	if !ok {
		t.Fatalf("expected an offer")
	}
	v := CalculateExitValuation(b, state.Round, state.LastEventType, portfolioContext(state), nil)
	if want := roundHalfUp(float64(v.ExitPrice) * offerVarianceMin); ev.OfferAmount != want {
		t.Fatalf("expected offer %d, got %d", want, ev.OfferAmount)
	}
	if len(ev.Choices) != 2 || ev.AffectedBusinessID != "a" {
		t.Fatalf("unexpected offer event: %+v", ev)
	}

	state.ConsolidationBoom = ConsolidationBoom{SectorID: "agency", RoundsRemaining: 2}
	boosted, _ := rollUnsolicitedOffer(state, state.ActiveBusinesses(), stubRand{v: 0})
	if boosted.OfferAmount <= ev.OfferAmount {
		t.Fatalf("boom sector offer %d should beat %d", boosted.OfferAmount, ev.OfferAmount)
	}
}

func TestApplyEventEffectsInterestHikeClamps(t *testing.T) {
	state := sampleState(sampleBusiness("a", "agency", 1_000))
	state.InterestRate = 0.14
	ev := GameEvent{ID: "hike", Type: EventInterestHike, Round: 1}

	got, impacts := ApplyEventEffects(state, ev, stubRand{v: almostOne})
	if got.InterestRate != MaxInterestRate {
		t.Fatalf("expected rate clamped to exactly %v, got %v", MaxInterestRate, got.InterestRate)
	}
	if state.InterestRate != 0.14 {
		t.Fatalf("input state was modified")
	}
	if len(impacts) != 1 || impacts[0].Metric != "interest_rate" {
		t.Fatalf("unexpected impacts: %+v", impacts)
	}
}

func TestApplyEventEffectsInterestCutClamps(t *testing.T) {
	state := sampleState()
	state.InterestRate = 0.035
	got, _ := ApplyEventEffects(state, GameEvent{Type: EventInterestCut}, stubRand{v: almostOne})
	if got.InterestRate != MinInterestRate {
		t.Fatalf("expected rate clamped to %v, got %v", MinInterestRate, got.InterestRate)
	}
}

func TestApplyEventEffectsRecessionUsesSensitivity(t *testing.T) {
	agency := sampleBusiness("a", "agency", 1_000)
	health := sampleBusiness("h", "healthcare", 1_000)
	state := sampleState(agency, health)

	got, _ := ApplyEventEffects(state, GameEvent{Type: EventRecession}, stubRand{v: 0})
	agencyDrop := state.Businesses[0].Revenue - got.Businesses[0].Revenue
	healthDrop := state.Businesses[1].Revenue - got.Businesses[1].Revenue
	if agencyDrop <= healthDrop || healthDrop <= 0 {
		t.Fatalf("recession should hit the sensitive sector harder: agency=%d healthcare=%d", agencyDrop, healthDrop)
	}
}

func TestApplyEventEffectsSectorEventOnlyTouchesSector(t *testing.T) {
	agency := sampleBusiness("a", "agency", 1_000)
	saas := sampleBusiness("s", "saas", 1_000)
	state := sampleState(agency, saas)

	got, impacts := ApplyEventEffects(state, GameEvent{Type: "sector_agency_ad_boom"}, stubRand{v: 0})
	if got.Businesses[0].Revenue != 5_300 {
		t.Fatalf("expected agency revenue 5300, got %d", got.Businesses[0].Revenue)
	}
	if got.Businesses[1].Revenue != saas.Revenue {
		t.Fatalf("saas business should be untouched")
	}
	for _, im := range impacts {
		if im.BusinessID != "a" {
			t.Fatalf("impact on the wrong business: %+v", im)
		}
	}
}

func TestApplyEventEffectsCreditTighteningCaps(t *testing.T) {
	state := sampleState()
	state.CreditTighteningRoundsRemaining = 3
	got, _ := ApplyEventEffects(state, GameEvent{Type: EventCreditTightening}, stubRand{v: 0})
	if got.CreditTighteningRoundsRemaining != 4 {
		t.Fatalf("expected tightening capped at 4, got %d", got.CreditTighteningRoundsRemaining)
	}
}

func TestApplyEventEffectsConsolidationBoom(t *testing.T) {
	state := sampleState(sampleBusiness("a", "agency", 1_000))
	ev := GameEvent{Type: EventConsolidationBoom, ConsolidationSectorID: "agency"}
	got, _ := ApplyEventEffects(state, ev, stubRand{v: 0})
	if got.ConsolidationBoom.SectorID != "agency" || got.ConsolidationBoom.RoundsRemaining != 3 {
		t.Fatalf("unexpected boom: %+v", got.ConsolidationBoom)
	}
}

func TestApplyEventEffectsLeavesChoiceEventsAlone(t *testing.T) {
	state := sampleState(sampleBusiness("a", "agency", 1_000))
	ev := GameEvent{Type: EventUnsolicitedOffer, AffectedBusinessID: "a", Choices: []EventChoice{{Action: ActionAcceptOffer}}}
	got, impacts := ApplyEventEffects(state, ev, stubRand{v: 0})
	if impacts != nil || got.Cash != state.Cash || got.Businesses[0].Status != StatusActive {
		t.Fatalf("choice events must not apply effects automatically")
	}
}

func offerEvent(businessID string, amount int64) GameEvent {
	return GameEvent{
		ID:                 "offer-r3",
		Type:               EventUnsolicitedOffer,
		AffectedBusinessID: businessID,
		OfferAmount:        amount,
		Choices: []EventChoice{
			{Action: ActionAcceptOffer, Variant: "positive"},
			{Action: ActionDeclineOffer, Variant: "neutral"},
		},
	}
}

func TestResolveEventChoiceAcceptOffer(t *testing.T) {
	b := sampleBusiness("a", "agency", 1_000)
	b.SellerNote = DebtTranche{Balance: 1_000, Rate: 0.06, RoundsRemaining: 3}
	b.EarnoutRemaining = 500
	boltOn := sampleBusiness("bolt", "agency", 200)
	boltOn.Status = StatusIntegrated
	boltOn.ParentPlatformID = "a"
	state := sampleState(b, boltOn)
	ev := offerEvent("a", 6_000)
	state.CurrentEvent = &ev

	got, impacts, err := ResolveEventChoice(state, ev, ActionAcceptOffer, stubRand{v: 0})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Cash != state.Cash+6_000-1_500 {
		t.Fatalf("expected cash %d, got %d", state.Cash+4_500, got.Cash)
	}
	if got.Businesses[0].Status != StatusSold || got.Businesses[0].ExitPrice != 6_000 {
		t.Fatalf("business not sold: %+v", got.Businesses[0])
	}
	if bolt := got.Businesses[1]; bolt.Status != StatusIntegrated || bolt.ExitRound != state.Round {
		t.Fatalf("bolt-on should leave with its platform and stay integrated: %+v", bolt)
	}
	if got.CurrentEvent != nil {
		t.Fatalf("resolved event should be cleared")
	}
	if len(got.ActionsThisRound) != 1 || got.ActionsThisRound[0] != ActionAcceptOffer {
		t.Fatalf("action not recorded: %v", got.ActionsThisRound)
	}
	if len(impacts) == 0 {
		t.Fatalf("expected impacts")
	}
	if state.Businesses[0].Status != StatusActive {
		t.Fatalf("input state was modified")
	}
}

func TestResolveEventChoiceAcceptUnderwaterOffer(t *testing.T) {
	b := sampleBusiness("a", "agency", 500)
	b.SellerNote = DebtTranche{Balance: 5_000, Rate: 0.06, RoundsRemaining: 5}
	state := sampleState(b)
	v := CalculateExitValuation(b, state.Round, "", nil, nil)
	ev := offerEvent("a", v.ExitPrice)
	state.CurrentEvent = &ev

	got, _, err := ResolveEventChoice(state, ev, ActionAcceptOffer, stubRand{v: 0})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if v.NetProceeds != 0 {
		t.Fatalf("note exceeds the price so net proceeds should be 0, got %d", v.NetProceeds)
	}
	if got.Cash != state.Cash {
		t.Fatalf("selling below the note must not cost cash: before %d after %d", state.Cash, got.Cash)
	}
	if sold := got.Businesses[0]; sold.Status != StatusSold || sold.SellerNote.Balance != 0 {
		t.Fatalf("business should be sold with its note settled: %+v", sold)
	}
}

func TestResolveEventChoiceErrors(t *testing.T) {
	state := sampleState(sampleBusiness("a", "agency", 1_000))
	state.Cash = 10

	if _, _, err := ResolveEventChoice(state, GameEvent{Type: EventQuiet}, ActionAcceptOffer, stubRand{}); err != ErrNoPendingChoice {
		t.Fatalf("expected ErrNoPendingChoice, got %v", err)
	}
	if _, _, err := ResolveEventChoice(state, offerEvent("a", 100), "sell_everything", stubRand{}); err != ErrUnknownChoice {
		t.Fatalf("expected ErrUnknownChoice, got %v", err)
	}
	if _, _, err := ResolveEventChoice(state, offerEvent("missing", 100), ActionAcceptOffer, stubRand{}); err != ErrBusinessNotFound {
		t.Fatalf("expected ErrBusinessNotFound, got %v", err)
	}

	keyMan := GameEvent{
		Type:               EventKeyManRisk,
		AffectedBusinessID: "a",
		Choices:            []EventChoice{{Action: ActionRetentionBonus, Cost: 100}, {Action: ActionAcceptKeyManRisk}},
	}
	if _, _, err := ResolveEventChoice(state, keyMan, ActionRetentionBonus, stubRand{}); err != ErrInsufficientCash {
		t.Fatalf("expected ErrInsufficientCash, got %v", err)
	}
}

func TestResolveEventChoiceGrantEquity(t *testing.T) {
	state := sampleState(sampleBusiness("a", "agency", 1_000))
	ev := GameEvent{
		Type:               EventEquityDemand,
		AffectedBusinessID: "a",
		Choices:            []EventChoice{{Action: ActionGrantEquity}, {Action: ActionDeclineEquity}},
	}
	got, _, err := ResolveEventChoice(state, ev, ActionGrantEquity, stubRand{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.SharesOutstanding != StartingShares+20 {
		t.Fatalf("expected %d shares, got %d", StartingShares+20, got.SharesOutstanding)
	}
	if got.FounderShares != FounderShares {
		t.Fatalf("founder shares must not change")
	}

	declined, _, err := ResolveEventChoice(state, ev, ActionDeclineEquity, stubRand{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if declined.Businesses[0].Revenue != 4_750 {
		t.Fatalf("expected revenue 4750 after declining, got %d", declined.Businesses[0].Revenue)
	}
}

func TestResolveEventChoiceKeyManRisk(t *testing.T) {
	state := sampleState(sampleBusiness("a", "agency", 1_000))
	ev := GameEvent{
		Type:               EventKeyManRisk,
		AffectedBusinessID: "a",
		Choices:            []EventChoice{{Action: ActionRetentionBonus, Cost: 100}, {Action: ActionAcceptKeyManRisk}},
	}

	lucky, _, _ := ResolveEventChoice(state, ev, ActionAcceptKeyManRisk, stubRand{v: 0.9})
	if lucky.Businesses[0].QualityRating != 3 || lucky.Businesses[0].EBITDAMargin != 0.20 {
		t.Fatalf("a high draw should avoid the loss: %+v", lucky.Businesses[0])
	}

	unlucky, _, _ := ResolveEventChoice(state, ev, ActionAcceptKeyManRisk, stubRand{v: 0.1})
	if unlucky.Businesses[0].QualityRating != 2 || !approxEqual(unlucky.Businesses[0].EBITDAMargin, 0.18) {
		t.Fatalf("a low draw should cost quality and margin: %+v", unlucky.Businesses[0])
	}

	paid, _, _ := ResolveEventChoice(state, ev, ActionRetentionBonus, stubRand{v: 0.1})
	if paid.Cash != state.Cash-100 || paid.Businesses[0].QualityRating != 3 {
		t.Fatalf("retention bonus should only cost cash")
	}
}

func TestResolveEventChoicePayOffNote(t *testing.T) {
	b := sampleBusiness("a", "agency", 1_000)
	b.SellerNote = DebtTranche{Balance: 2_000, Rate: 0.06, RoundsRemaining: 4}
	state := sampleState(b)

	ev := GameEvent{Type: EventSellerNoteRenego, AffectedBusinessID: "a"}
	attachChoices(&ev, state, b)
	if ev.Choices[0].Cost != 1_800 {
		t.Fatalf("expected payoff at 1800, got %d", ev.Choices[0].Cost)
	}
	got, _, err := ResolveEventChoice(state, ev, ActionPayOffNote, stubRand{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Businesses[0].SellerNote.Balance != 0 || got.Cash != state.Cash-1_800 {
		t.Fatalf("note not paid off: %+v cash=%d", got.Businesses[0].SellerNote, got.Cash)
	}
}

func TestAttachChoicesKeyManCostFloor(t *testing.T) {
	b := sampleBusiness("a", "agency", 300)
	ev := GameEvent{Type: EventKeyManRisk}
	attachChoices(&ev, sampleState(b), b)
	if ev.Choices[0].Cost != 50 {
		t.Fatalf("expected minimum retention cost 50, got %d", ev.Choices[0].Cost)
	}
}
