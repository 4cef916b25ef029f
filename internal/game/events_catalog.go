package game

type EventType string

const (
	EventBullMarket       EventType = "global_bull_market"
	EventRecession        EventType = "global_recession"
	EventInterestHike     EventType = "global_interest_hike"
	EventInterestCut      EventType = "global_interest_cut"
	EventInflation        EventType = "global_inflation"
	EventCreditTightening EventType = "global_credit_tightening"
	EventQuiet            EventType = "global_quiet"

	EventStarJoins        EventType = "portfolio_star_joins"
	EventTalentLeaves     EventType = "portfolio_talent_leaves"
	EventClientSigns      EventType = "portfolio_client_signs"
	EventClientChurns     EventType = "portfolio_client_churns"
	EventBreakthrough     EventType = "portfolio_breakthrough"
	EventComplianceIssue  EventType = "portfolio_compliance_issue"
	EventSupplierShift    EventType = "portfolio_supplier_shift"
	EventEquityDemand     EventType = "portfolio_equity_demand"
	EventKeyManRisk       EventType = "portfolio_key_man_risk"
	EventSellerNoteRenego EventType = "portfolio_seller_note_renego"
	EventManagementBuyout EventType = "portfolio_mbo_proposal"

	EventConsolidationBoom EventType = "sector_consolidation_boom"
	EventUnsolicitedOffer  EventType = "unsolicited_offer"
)

// Choice actions understood by ResolveEventChoice.
const (
	ActionAcceptOffer      = "accept_offer"
	ActionDeclineOffer     = "decline_offer"
	ActionAcceptMBO        = "accept_mbo"
	ActionDeclineMBO       = "decline_mbo"
	ActionGrantEquity      = "grant_equity"
	ActionDeclineEquity    = "decline_equity"
	ActionRetentionBonus   = "retention_bonus"
	ActionAcceptKeyManRisk = "accept_key_man_risk"
	ActionPayOffNote       = "pay_off_note"
	ActionKeepNoteTerms    = "keep_note_terms"
)

type eventSpec struct {
	Type        EventType
	Title       string
	Description string
	Effect      string
	Probability float64

	// Eligibility hints.
	MinBusinesses  int
	CooldownRounds int

	RevenueMin float64 // fractional revenue change
	RevenueMax float64
	MarginMin  float64 // absolute margin change
	MarginMax  float64
}

// Rolled in this order; the first hit wins.
var globalEvents = []eventSpec{
	{Type: EventBullMarket, Title: "Bull Market", Description: "Risk appetite is high and buyers are paying up.", Effect: "Revenue +5-10% across the portfolio; exit multiples +0.5x this round.", Probability: 0.07, RevenueMin: 0.05, RevenueMax: 0.10},
	{Type: EventRecession, Title: "Recession", Description: "Demand contracts across the economy.", Effect: "Revenue falls by sector sensitivity; exit multiples -0.5x this round.", Probability: 0.05, RevenueMin: -0.10, RevenueMax: -0.05, MarginMin: -0.02, MarginMax: -0.01},
	{Type: EventInterestHike, Title: "Interest Rate Hike", Description: "The central bank raises rates.", Effect: "Holdco interest rate +0.5-1.5pp (max 15%).", Probability: 0.07},
	{Type: EventInterestCut, Title: "Interest Rate Cut", Description: "The central bank eases policy.", Effect: "Holdco interest rate -0.5-1.5pp (min 3%).", Probability: 0.06},
	{Type: EventInflation, Title: "Inflation Spike", Description: "Input costs are rising faster than prices.", Effect: "Margins -1-2pp now; revenue growth -3% for two rounds.", Probability: 0.05, MarginMin: -0.02, MarginMax: -0.01},
	{Type: EventCreditTightening, Title: "Credit Tightening", Description: "Lenders pull back.", Effect: "New bank debt is unavailable for two rounds.", Probability: 0.04},
}

var portfolioEvents = []eventSpec{
	{Type: EventStarJoins, Title: "Star Hire", Description: "A top performer joins one of your companies.", Effect: "Revenue +5-10%, margin +1pp.", Probability: 0.07, RevenueMin: 0.05, RevenueMax: 0.10, MarginMin: 0.01, MarginMax: 0.01},
	{Type: EventTalentLeaves, Title: "Key Talent Departs", Description: "A senior leader leaves for a competitor.", Effect: "Revenue -4-8%, margin -1.5pp (reduced by Recruiting & HR).", Probability: 0.07, RevenueMin: -0.08, RevenueMax: -0.04, MarginMin: -0.015, MarginMax: -0.015},
	{Type: EventClientSigns, Title: "Major Client Win", Description: "A large new client signs a multi-year contract.", Effect: "Revenue +8-15%.", Probability: 0.07, RevenueMin: 0.08, RevenueMax: 0.15},
	{Type: EventClientChurns, Title: "Major Client Loss", Description: "A large client moves to a competitor.", Effect: "Revenue -8-15%.", Probability: 0.06, RevenueMin: -0.15, RevenueMax: -0.08},
	{Type: EventBreakthrough, Title: "Operational Breakthrough", Description: "A process redesign unlocks efficiencies.", Effect: "Margin +2-4pp, organic growth +1pp.", Probability: 0.04, MarginMin: 0.02, MarginMax: 0.04},
	{Type: EventComplianceIssue, Title: "Compliance Issue", Description: "Regulators find problems that must be remediated.", Effect: "Cash cost of 5-15% of EBITDA, margin -1pp.", Probability: 0.04, MarginMin: -0.01, MarginMax: -0.01},
	{Type: EventSupplierShift, Title: "Supplier Shake-up", Description: "A key supplier reprices across your portfolio.", Effect: "Margin -1-3pp at one company.", Probability: 0.04, MinBusinesses: 4, MarginMin: -0.03, MarginMax: -0.01},
	{Type: EventEquityDemand, Title: "Equity Demand", Description: "A key manager asks for equity to stay.", Effect: "Grant equity (dilution) or risk losing them.", Probability: 0.04, CooldownRounds: 2},
	{Type: EventKeyManRisk, Title: "Key-Man Risk", Description: "The business depends heavily on a single operator.", Effect: "Pay a retention bonus or accept the risk.", Probability: 0.03, CooldownRounds: 3},
	{Type: EventSellerNoteRenego, Title: "Seller Note Offer", Description: "The seller offers a discount for early payoff of their note.", Effect: "Pay off the note at 90% or keep the terms.", Probability: 0.03},
	{Type: EventManagementBuyout, Title: "Management Buyout Proposal", Description: "The management team wants to buy the business.", Effect: "Sell to management at a discount to fair value, or decline.", Probability: 0.03},
}

type sectorEventSpec struct {
	eventSpec
	SectorID string
}

var sectorEvents = []sectorEventSpec{
	{SectorID: "agency", eventSpec: eventSpec{Type: "sector_agency_ai_disruption", Title: "AI Disrupts Agencies", Description: "Clients bring creative work in-house with AI tools.", Effect: "Agency revenue -5-12%.", Probability: 0.05, RevenueMin: -0.12, RevenueMax: -0.05}},
	{SectorID: "agency", eventSpec: eventSpec{Type: "sector_agency_ad_boom", Title: "Ad Spending Boom", Description: "Marketing budgets expand.", Effect: "Agency revenue +6-12%.", Probability: 0.04, RevenueMin: 0.06, RevenueMax: 0.12}},
	{SectorID: "saas", eventSpec: eventSpec{Type: "sector_saas_churn_spike", Title: "SaaS Churn Spike", Description: "Customers consolidate software vendors.", Effect: "SaaS revenue -4-10%.", Probability: 0.04, RevenueMin: -0.10, RevenueMax: -0.04}},
	{SectorID: "saas", eventSpec: eventSpec{Type: "sector_saas_pricing_power", Title: "SaaS Pricing Power", Description: "Price increases stick with little churn.", Effect: "SaaS margin +2-4pp.", Probability: 0.04, MarginMin: 0.02, MarginMax: 0.04}},
	{SectorID: "homeServices", eventSpec: eventSpec{Type: "sector_home_services_storm_season", Title: "Storm Season", Description: "Severe weather drives repair demand.", Effect: "Home services revenue +8-15%.", Probability: 0.05, RevenueMin: 0.08, RevenueMax: 0.15}},
	{SectorID: "consumer", eventSpec: eventSpec{Type: "sector_consumer_viral_moment", Title: "Viral Moment", Description: "A product goes viral on social media.", Effect: "Consumer revenue +10-20%.", Probability: 0.04, RevenueMin: 0.10, RevenueMax: 0.20}},
	{SectorID: "industrial", eventSpec: eventSpec{Type: "sector_industrial_reshoring", Title: "Reshoring Wave", Description: "Manufacturing returns onshore.", Effect: "Industrial revenue +5-10%.", Probability: 0.04, RevenueMin: 0.05, RevenueMax: 0.10}},
	{SectorID: "b2bServices", eventSpec: eventSpec{Type: "sector_b2b_outsourcing_wave", Title: "Outsourcing Wave", Description: "Companies outsource back-office work.", Effect: "B2B services revenue +5-10%.", Probability: 0.04, RevenueMin: 0.05, RevenueMax: 0.10}},
	{SectorID: "healthcare", eventSpec: eventSpec{Type: "sector_healthcare_reimbursement_cut", Title: "Reimbursement Cut", Description: "Payers cut reimbursement rates.", Effect: "Healthcare margin -2-4pp.", Probability: 0.04, MarginMin: -0.04, MarginMax: -0.02}},
	{SectorID: "restaurant", eventSpec: eventSpec{Type: "sector_restaurant_labor_squeeze", Title: "Labor Squeeze", Description: "Minimum wage increases hit restaurants.", Effect: "Restaurant margin -2-3pp.", Probability: 0.05, MarginMin: -0.03, MarginMax: -0.02}},
	{SectorID: "education", eventSpec: eventSpec{Type: "sector_education_enrollment_surge", Title: "Enrollment Surge", Description: "Reskilling demand surges.", Effect: "Education revenue +6-12%.", Probability: 0.04, RevenueMin: 0.06, RevenueMax: 0.12}},
	{SectorID: "insurance", eventSpec: eventSpec{Type: "sector_insurance_hard_market", Title: "Hard Insurance Market", Description: "Premiums rise and commissions follow.", Effect: "Insurance revenue +5-10%.", Probability: 0.04, RevenueMin: 0.05, RevenueMax: 0.10}},
	{SectorID: "distribution", eventSpec: eventSpec{Type: "sector_distribution_freight_spike", Title: "Freight Cost Spike", Description: "Shipping costs spike.", Effect: "Distribution margin -1-2pp.", Probability: 0.04, MarginMin: -0.02, MarginMax: -0.01}},
	{SectorID: "environmental", eventSpec: eventSpec{Type: "sector_environmental_regulation", Title: "New Environmental Rules", Description: "Tighter regulation drives compliance demand.", Effect: "Environmental revenue +6-12%.", Probability: 0.04, RevenueMin: 0.06, RevenueMax: 0.12}},
}

const (
	consolidationBoomProbability = 0.05
	consolidationBoomRounds      = 3
	consolidationBoomOfferLift   = 1.10
	offerProbabilityPerBusiness  = 0.05
	offerVarianceMin             = 0.9
	offerVarianceMax             = 1.2
	mboDiscount                  = 0.85
)

func sectorEventSpecByType(t EventType) (sectorEventSpec, bool) {
	for _, se := range sectorEvents {
		if se.Type == t {
			return se, true
		}
	}
	return sectorEventSpec{}, false
}

func eventSpecByType(t EventType) (eventSpec, bool) {
	for _, list := range [][]eventSpec{globalEvents, portfolioEvents} {
		for _, e := range list {
			if e.Type == t {
				return e, true
			}
		}
	}
	if se, ok := sectorEventSpecByType(t); ok {
		return se.eventSpec, true
	}
	return eventSpec{}, false
}
