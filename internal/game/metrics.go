package game

// Metrics is the derived view of a portfolio at one point in time. Money
// fields are whole units; the FCF waterfall matches the round summary.
type Metrics struct {
	Cash             int64   `json:"cash"`
	TotalRevenue     int64   `json:"total_revenue"`
	TotalEBITDA      int64   `json:"total_ebitda"`
	AverageMargin    float64 `json:"average_margin"`
	ActiveBusinesses int     `json:"active_businesses"`

	// TotalDebt is holdco debt plus opco seller notes. Opco bank debt is
	// reported separately and stays out of the leverage ratio.
	TotalDebt       int64         `json:"total_debt"`
	OpcoBankDebt    int64         `json:"opco_bank_debt"`
	NetDebt         int64         `json:"net_debt"`
	NetDebtToEBITDA float64       `json:"net_debt_to_ebitda"`
	DistressLevel   DistressLevel `json:"distress_level"`
	InterestRate    float64       `json:"interest_rate"`

	Tax                PortfolioTaxBreakdown `json:"tax"`
	OperatingCashFlow  int64                 `json:"operating_cash_flow"`
	Capex              int64                 `json:"capex"`
	HoldcoDebtService  int64                 `json:"holdco_debt_service"`
	OpcoDebtService    int64                 `json:"opco_debt_service"`
	EarnoutPayments    int64                 `json:"earnout_payments"`
	SharedServicesCost int64                 `json:"shared_services_cost"`
	MASourcingCost     int64                 `json:"ma_sourcing_cost"`
	TurnaroundCost     int64                 `json:"turnaround_cost"`
	FCF                int64                 `json:"fcf"`
	FCFPerShare        float64               `json:"fcf_per_share"`

	NOPAT                  int64   `json:"nopat"`
	InvestedCapital        int64   `json:"invested_capital"`
	ROIC                   float64 `json:"roic"`
	ROIIC                  float64 `json:"roiic"`
	PortfolioValue         int64   `json:"portfolio_value"`
	IntrinsicValuePerShare float64 `json:"intrinsic_value_per_share"`
	NAV                    int64   `json:"nav"`
	MOIC                   float64 `json:"moic"`
}

// Snapshot reduces the metrics to the per-round history record.
func (m Metrics) Snapshot(round int) HistoricalMetrics {
	return HistoricalMetrics{
		Round:                  round,
		Cash:                   m.Cash,
		TotalRevenue:           m.TotalRevenue,
		TotalEBITDA:            m.TotalEBITDA,
		FCF:                    m.FCF,
		FCFPerShare:            m.FCFPerShare,
		NOPAT:                  m.NOPAT,
		InvestedCapital:        m.InvestedCapital,
		ROIC:                   m.ROIC,
		ROIIC:                  m.ROIIC,
		NetDebtToEBITDA:        m.NetDebtToEBITDA,
		DistressLevel:          m.DistressLevel,
		IntrinsicValuePerShare: m.IntrinsicValuePerShare,
		TotalDebt:              m.TotalDebt,
		InterestRate:           m.InterestRate,
	}
}

// CalculateAnnualFCF is a business's pre-tax cash flow after maintenance
// capex. Cash-conversion gains never lift it above EBITDA.
func CalculateAnnualFCF(b Business, capexReduction, cashConversionBonus float64) int64 {
	capex := businessCapex(b, capexReduction)
	fcf := b.EBITDA - capex
	if cashConversionBonus > 0 && fcf > 0 {
		fcf = minInt(b.EBITDA, fcf+roundHalfUp(float64(fcf)*cashConversionBonus))
	}
	return fcf
}

func businessCapex(b Business, capexReduction float64) int64 {
	rate := SectorByID(b.SectorID).CapexRate * (1 - clamp(capexReduction, 0, 1))
	return maxInt(0, roundHalfUp(float64(b.EBITDA)*rate))
}

type debtPayment struct {
	Interest  int64
	Principal int64
}

func (p debtPayment) Total() int64 { return p.Interest + p.Principal }

// trancheService is one round of interest plus straight-line principal.
func trancheService(t DebtTranche) debtPayment {
	if t.Balance <= 0 {
		return debtPayment{}
	}
	p := debtPayment{Interest: roundHalfUp(float64(t.Balance) * t.Rate)}
	if t.RoundsRemaining > 0 {
		p.Principal = minInt(t.Balance, roundHalfUp(float64(t.Balance)/float64(t.RoundsRemaining)))
	}
	return p
}

func holdcoTranche(s GameState, rate float64) DebtTranche {
	return DebtTranche{Balance: s.TotalDebt, Rate: rate, RoundsRemaining: s.HoldcoLoanRoundsRemaining}
}

// earnoutDue returns the earn-out owed this round: all of it once EBITDA
// growth since acquisition reaches the target.
func earnoutDue(b Business) int64 {
	if b.EarnoutRemaining <= 0 || b.AcquisitionEBITDA <= 0 {
		return 0
	}
	growth := float64(b.EBITDA-b.AcquisitionEBITDA) / float64(b.AcquisitionEBITDA)
	if growth >= b.EarnoutTarget {
		return b.EarnoutRemaining
	}
	return 0
}

// effectiveInterestRate adds the distress penalty to the holdco base rate.
func effectiveInterestRate(base float64, level DistressLevel) float64 {
	return clamp(base+RestrictionsFor(level).InterestPenalty, 0, MaxInterestRate+0.02)
}

// CalculateMetrics aggregates the active portfolio into the derived numbers
// shown every round. It never produces NaN or Inf.
func CalculateMetrics(state GameState) Metrics {
	m := Metrics{Cash: state.Cash}
	effects := sharedServiceEffects(state.SharedServices)
	active := state.ActiveBusinesses()
	m.ActiveBusinesses = len(active)

	var sellerNotes, opcoFCF int64
	for _, b := range active {
		m.TotalRevenue += b.Revenue
		m.TotalEBITDA += b.EBITDA
		sellerNotes += b.SellerNote.Balance
		m.OpcoBankDebt += b.BankDebt.Balance

		m.Capex += businessCapex(b, effects.CapexReduction)
		opcoFCF += CalculateAnnualFCF(b, effects.CapexReduction, effects.CashConversionBonus)
		m.OpcoDebtService += trancheService(b.SellerNote).Total() + trancheService(b.BankDebt).Total()
		m.EarnoutPayments += earnoutDue(b)
	}
	m.AverageMargin = safeDiv(float64(m.TotalEBITDA), float64(m.TotalRevenue), 0)

	m.TotalDebt = state.TotalDebt + sellerNotes
	m.NetDebt = m.TotalDebt - state.Cash
	if m.TotalEBITDA > 0 {
		m.NetDebtToEBITDA = float64(m.NetDebt) / float64(m.TotalEBITDA)
	}
	m.DistressLevel = CalculateDistressLevel(m.NetDebtToEBITDA, m.TotalDebt, m.TotalEBITDA)
	m.InterestRate = effectiveInterestRate(state.InterestRate, m.DistressLevel)

	m.SharedServicesCost = effects.AnnualCost
	m.MASourcingCost = maSourcingCost(state.MASourcingTier)
	m.TurnaroundCost = turnaroundAnnualCost(state.ActiveTurnarounds)
	m.Tax = CalculatePortfolioTax(active, state.TotalDebt, m.InterestRate, m.SharedServicesCost+m.MASourcingCost)
	m.HoldcoDebtService = trancheService(holdcoTranche(state, m.InterestRate)).Total()

	m.OperatingCashFlow = opcoFCF
	m.FCF = opcoFCF - m.Tax.TaxAmount - m.HoldcoDebtService - m.OpcoDebtService -
		m.EarnoutPayments - m.SharedServicesCost - m.MASourcingCost - m.TurnaroundCost
	m.FCFPerShare = safeDiv(float64(m.FCF), float64(state.SharesOutstanding), 0)

	m.NOPAT = roundHalfUp(float64(m.TotalEBITDA) * (1 - TaxRate))
	m.InvestedCapital = state.TotalInvestedCapital
	if m.InvestedCapital <= 0 {
		for _, b := range active {
			m.InvestedCapital += b.AcquisitionPrice
		}
	}
	m.ROIC = safeDiv(float64(m.NOPAT), float64(m.InvestedCapital), 0)
	if n := len(state.History); n > 0 {
		last := state.History[n-1]
		if dInvested := m.InvestedCapital - last.InvestedCapital; dInvested > 0 {
			m.ROIIC = safeDiv(float64(m.NOPAT-last.NOPAT), float64(dInvested), 0)
		}
	}

	pctx := portfolioContext(state)
	for _, b := range active {
		m.PortfolioValue += CalculateExitValuation(b, state.Round, state.LastEventType, pctx, state.IntegratedPlatforms).ExitPrice
	}
	allDebt := m.TotalDebt + m.OpcoBankDebt
	m.IntrinsicValuePerShare = safeDiv(float64(m.PortfolioValue+state.Cash-allDebt), float64(state.SharesOutstanding), 0)
	m.NAV = m.PortfolioValue + state.Cash - allDebt + state.TotalDistributions
	m.MOIC = safeDiv(float64(m.NAV), float64(state.InitialRaise), 0)
	return m
}
