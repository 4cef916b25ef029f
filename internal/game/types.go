package game

type BusinessStatus string

const (
	StatusActive     BusinessStatus = "active"
	StatusSold       BusinessStatus = "sold"
	StatusWoundDown  BusinessStatus = "wound_down"
	StatusIntegrated BusinessStatus = "integrated"
	StatusMerged     BusinessStatus = "merged"
)

type GameDuration string

const (
	DurationStandard GameDuration = "standard"
	DurationQuick    GameDuration = "quick"
)

// Rounds returns the number of rounds a game of this duration lasts.
func (d GameDuration) Rounds() int {
	if d == DurationQuick {
		return 10
	}
	return 20
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyNormal Difficulty = "normal"
)

type Improvement struct {
	Type         ImprovementType `json:"type"`
	AppliedRound int             `json:"applied_round"`
	Effect       float64         `json:"effect"`
}

type DebtTranche struct {
	Balance         int64   `json:"balance"`
	Rate            float64 `json:"rate"`
	RoundsRemaining int     `json:"rounds_remaining"`
}

// DueDiligence holds the qualitative facts surfaced before acquisition.
type DueDiligence struct {
	OperatorQuality      string `json:"operator_quality"`      // strong | moderate | weak
	CompetitivePosition  string `json:"competitive_position"`  // leader | competitive | commoditized
	RevenueConcentration string `json:"revenue_concentration"` // low | medium | high
}

type Business struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	SectorID string         `json:"sector_id"`
	SubType  string         `json:"sub_type"`
	Status   BusinessStatus `json:"status"`

	Revenue           int64   `json:"revenue"`
	EBITDA            int64   `json:"ebitda"`
	EBITDAMargin      float64 `json:"ebitda_margin"`
	PeakRevenue       int64   `json:"peak_revenue"`
	PeakEBITDA        int64   `json:"peak_ebitda"`
	OrganicGrowthRate float64 `json:"organic_growth_rate"`
	RevenueGrowthRate float64 `json:"revenue_growth_rate"`
	MarginDriftRate   float64 `json:"margin_drift_rate"`

	AcquisitionRound           int     `json:"acquisition_round"`
	AcquisitionPrice           int64   `json:"acquisition_price"`
	AcquisitionEBITDA          int64   `json:"acquisition_ebitda"`
	AcquisitionMargin          float64 `json:"acquisition_margin"`
	AcquisitionMultiple        float64 `json:"acquisition_multiple"`
	AcquisitionRevenue         int64   `json:"acquisition_revenue"`
	AcquisitionSizeTierPremium float64 `json:"acquisition_size_tier_premium"`

	SellerNote       DebtTranche `json:"seller_note"`
	BankDebt         DebtTranche `json:"bank_debt"`
	EarnoutRemaining int64       `json:"earnout_remaining"`
	EarnoutTarget    float64     `json:"earnout_target"`

	IsPlatform                 bool     `json:"is_platform"`
	PlatformScale              int      `json:"platform_scale"`
	BoltOnIDs                  []string `json:"bolt_on_ids"`
	ParentPlatformID           string   `json:"parent_platform_id,omitempty"`
	IntegratedPlatformID       string   `json:"integrated_platform_id,omitempty"`
	IntegrationRoundsRemaining int      `json:"integration_rounds_remaining"`
	IntegrationGrowthDrag      float64  `json:"integration_growth_drag"`

	QualityRating        int           `json:"quality_rating"`
	QualityImprovedTiers int           `json:"quality_improved_tiers"`
	Improvements         []Improvement `json:"improvements"`
	DueDiligence         DueDiligence  `json:"due_diligence"`

	WasMerged          bool    `json:"was_merged"`
	MergerBalanceRatio float64 `json:"merger_balance_ratio"`

	ExitRound int   `json:"exit_round,omitempty"`
	ExitPrice int64 `json:"exit_price,omitempty"`
}

// HasImprovement reports whether an improvement of type t was already applied.
func (b Business) HasImprovement(t ImprovementType) bool {
	for _, imp := range b.Improvements {
		if imp.Type == t {
			return true
		}
	}
	return false
}

func (b Business) clone() Business {
	out := b
	out.BoltOnIDs = append([]string(nil), b.BoltOnIDs...)
	out.Improvements = append([]Improvement(nil), b.Improvements...)
	return out
}

type SharedServiceState struct {
	Type          SharedServiceType `json:"type"`
	Active        bool              `json:"active"`
	UnlockedRound int               `json:"unlocked_round"`
}

type TurnaroundProgram struct {
	BusinessID      string `json:"business_id"`
	Tier            int    `json:"tier"`
	StartRound      int    `json:"start_round"`
	RoundsRemaining int    `json:"rounds_remaining"`
}

type IntegratedPlatform struct {
	ID             string   `json:"id"`
	RecipeID       string   `json:"recipe_id"`
	Name           string   `json:"name"`
	ConstituentIDs []string `json:"constituent_ids"`
	ForgedRound    int      `json:"forged_round"`
}

type ConsolidationBoom struct {
	SectorID        string `json:"sector_id"`
	RoundsRemaining int    `json:"rounds_remaining"`
}

type EventRecord struct {
	Round      int       `json:"round"`
	Type       EventType `json:"type"`
	BusinessID string    `json:"business_id,omitempty"`
}

// HistoricalMetrics is the per-round snapshot appended at the end of every round.
type HistoricalMetrics struct {
	Round                  int           `json:"round"`
	Cash                   int64         `json:"cash"`
	TotalRevenue           int64         `json:"total_revenue"`
	TotalEBITDA            int64         `json:"total_ebitda"`
	FCF                    int64         `json:"fcf"`
	FCFPerShare            float64       `json:"fcf_per_share"`
	NOPAT                  int64         `json:"nopat"`
	InvestedCapital        int64         `json:"invested_capital"`
	ROIC                   float64       `json:"roic"`
	ROIIC                  float64       `json:"roiic"`
	NetDebtToEBITDA        float64       `json:"net_debt_to_ebitda"`
	DistressLevel          DistressLevel `json:"distress_level"`
	IntrinsicValuePerShare float64       `json:"intrinsic_value_per_share"`
	TotalDebt              int64         `json:"total_debt"`
	InterestRate           float64       `json:"interest_rate"`
}

type GameState struct {
	ID         string       `json:"id"`
	Seed       int64        `json:"seed"`
	Duration   GameDuration `json:"duration"`
	Difficulty Difficulty   `json:"difficulty"`
	Round      int          `json:"round"`
	MaxRounds  int          `json:"max_rounds"`

	Cash                      int64   `json:"cash"`
	TotalDebt                 int64   `json:"total_debt"`
	InterestRate              float64 `json:"interest_rate"`
	HoldcoLoanRoundsRemaining int     `json:"holdco_loan_rounds_remaining"`

	Businesses []Business          `json:"businesses"`
	History    []HistoricalMetrics `json:"history"`

	SharedServices      []SharedServiceState `json:"shared_services"`
	MASourcingTier      int                  `json:"ma_sourcing_tier"`
	IntegratedPlatforms []IntegratedPlatform `json:"integrated_platforms"`
	ActiveTurnarounds   []TurnaroundProgram  `json:"active_turnarounds"`

	SharesOutstanding    int64 `json:"shares_outstanding"`
	FounderShares        int64 `json:"founder_shares"`
	InitialRaise         int64 `json:"initial_raise"`
	TotalDistributions   int64 `json:"total_distributions"`
	TotalBuybacks        int64 `json:"total_buybacks"`
	TotalInvestedCapital int64 `json:"total_invested_capital"`

	InflationRoundsRemaining        int               `json:"inflation_rounds_remaining"`
	CreditTighteningRoundsRemaining int               `json:"credit_tightening_rounds_remaining"`
	ConsolidationBoom               ConsolidationBoom `json:"consolidation_boom"`
	LastEventType                   EventType         `json:"last_event_type"`
	EventLog                        []EventRecord     `json:"event_log"`

	ExceededLeverage4x bool `json:"exceeded_leverage_4x"`
	HadCovenantBreach  bool `json:"had_covenant_breach"`
	HasRestructured    bool `json:"has_restructured"`
	BankruptRound      int  `json:"bankrupt_round,omitempty"`

	CurrentEvent     *GameEvent `json:"current_event,omitempty"`
	ActionsThisRound []string   `json:"actions_this_round"`
}

// IsOver reports whether the game reached a terminal state.
func (s GameState) IsOver() bool {
	return s.BankruptRound > 0 || s.Round > s.MaxRounds
}

// ActiveBusinesses returns the businesses still owned and operating.
func (s GameState) ActiveBusinesses() []Business {
	out := make([]Business, 0, len(s.Businesses))
	for _, b := range s.Businesses {
		if b.Status == StatusActive {
			out = append(out, b)
		}
	}
	return out
}

func (s GameState) businessIndex(id string) int {
	for i, b := range s.Businesses {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// Business looks up a business by id regardless of status.
func (s GameState) Business(id string) (Business, bool) {
	if i := s.businessIndex(id); i >= 0 {
		return s.Businesses[i], true
	}
	return Business{}, false
}

// Clone returns a deep copy so reducers can work without touching the caller's state.
func (s GameState) Clone() GameState {
	out := s
	out.Businesses = make([]Business, len(s.Businesses))
	for i, b := range s.Businesses {
		out.Businesses[i] = b.clone()
	}
	out.History = append([]HistoricalMetrics(nil), s.History...)
	out.SharedServices = append([]SharedServiceState(nil), s.SharedServices...)
	out.IntegratedPlatforms = make([]IntegratedPlatform, len(s.IntegratedPlatforms))
	for i, p := range s.IntegratedPlatforms {
		p.ConstituentIDs = append([]string(nil), p.ConstituentIDs...)
		out.IntegratedPlatforms[i] = p
	}
	out.ActiveTurnarounds = append([]TurnaroundProgram(nil), s.ActiveTurnarounds...)
	out.EventLog = append([]EventRecord(nil), s.EventLog...)
	out.ActionsThisRound = append([]string(nil), s.ActionsThisRound...)
	if s.CurrentEvent != nil {
		ev := s.CurrentEvent.clone()
		out.CurrentEvent = &ev
	}
	return out
}
