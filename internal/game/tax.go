package game

// PortfolioTaxBreakdown summarizes one portfolio-level tax computation.
type PortfolioTaxBreakdown struct {
	GrossEBITDA        int64   `json:"gross_ebitda"`
	LossOffset         int64   `json:"loss_offset"`
	NetEBITDA          int64   `json:"net_ebitda"`
	HoldcoInterest     int64   `json:"holdco_interest"`
	OpcoInterest       int64   `json:"opco_interest"`
	TotalInterest      int64   `json:"total_interest"`
	SharedServicesCost int64   `json:"shared_services_cost"`
	TaxableIncome      int64   `json:"taxable_income"`
	TaxAmount          int64   `json:"tax_amount"`
	EffectiveRate      float64 `json:"effective_rate"`

	NaiveTax        int64 `json:"naive_tax"`
	TotalTaxSavings int64 `json:"total_tax_savings"`

	// Shield attribution: deducted from gross EBITDA in the fixed order
	// losses, interest, shared services.
	LossShield           int64 `json:"loss_shield"`
	InterestShield       int64 `json:"interest_shield"`
	SharedServicesShield int64 `json:"shared_services_shield"`
}

// CalculatePortfolioTax taxes the portfolio as one entity: negative-EBITDA
// businesses offset positive ones, and holdco plus opco interest and the
// shared-services cost are deductible.
func CalculatePortfolioTax(businesses []Business, holdcoDebt int64, holdcoRate float64, sharedServicesCost int64) PortfolioTaxBreakdown {
	var out PortfolioTaxBreakdown

	for _, b := range businesses {
		if b.Status != StatusActive {
			continue
		}
		if b.EBITDA >= 0 {
			out.GrossEBITDA += b.EBITDA
		} else {
			out.LossOffset += absInt(b.EBITDA)
		}
		out.OpcoInterest += roundHalfUp(float64(b.SellerNote.Balance) * b.SellerNote.Rate)
		out.OpcoInterest += roundHalfUp(float64(b.BankDebt.Balance) * b.BankDebt.Rate)
	}
	out.NetEBITDA = out.GrossEBITDA - out.LossOffset
	out.HoldcoInterest = roundHalfUp(float64(holdcoDebt) * holdcoRate)
	out.TotalInterest = out.HoldcoInterest + out.OpcoInterest
	out.SharedServicesCost = maxInt(0, sharedServicesCost)

	out.TaxableIncome = maxInt(0, out.NetEBITDA-out.TotalInterest-out.SharedServicesCost)
	out.TaxAmount = roundHalfUp(float64(out.TaxableIncome) * TaxRate)
	if out.NetEBITDA > 0 {
		out.EffectiveRate = safeDiv(float64(out.TaxAmount), float64(out.NetEBITDA), 0)
	}

	out.NaiveTax = roundHalfUp(float64(out.GrossEBITDA) * TaxRate)
	out.TotalTaxSavings = maxInt(0, out.NaiveTax-out.TaxAmount)

	remaining := out.GrossEBITDA
	lossUsed := minInt(out.LossOffset, remaining)
	remaining -= lossUsed
	interestUsed := minInt(maxInt(0, out.TotalInterest), remaining)
	remaining -= interestUsed
	servicesUsed := minInt(out.SharedServicesCost, remaining)

	out.LossShield = roundHalfUp(float64(lossUsed) * TaxRate)
	out.InterestShield = roundHalfUp(float64(interestUsed) * TaxRate)
	out.SharedServicesShield = roundHalfUp(float64(servicesUsed) * TaxRate)
	return out
}
