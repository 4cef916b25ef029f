package game

import "testing"

func TestPortfolioTaxWithoutDeductions(t *testing.T) {
	b := sampleBusiness("a", "agency", 1001)
	got := CalculatePortfolioTax([]Business{b}, 0, 0.07, 0)
	if got.TaxAmount != roundHalfUp(1001*TaxRate) {
		t.Fatalf("expected tax %d, got %d", roundHalfUp(1001*TaxRate), got.TaxAmount)
	}
	if got.TaxAmount != 300 {
		t.Fatalf("expected 300 after half-up rounding, got %d", got.TaxAmount)
	}
	if got.TotalTaxSavings != 0 {
		t.Fatalf("expected no savings, got %d", got.TotalTaxSavings)
	}
}

func TestPortfolioTaxInterestAboveEBITDA(t *testing.T) {
	b := sampleBusiness("a", "agency", 500)
	got := CalculatePortfolioTax([]Business{b}, 10_000, 0.10, 0)
	if got.TaxableIncome != 0 || got.TaxAmount != 0 {
		t.Fatalf("expected zero taxable income and tax, got %d and %d", got.TaxableIncome, got.TaxAmount)
	}
	if got.HoldcoInterest != 1_000 {
		t.Fatalf("expected holdco interest 1000, got %d", got.HoldcoInterest)
	}
}

func TestPortfolioTaxLossOffset(t *testing.T) {
	winner := sampleBusiness("a", "agency", 2_000)
	alone := CalculatePortfolioTax([]Business{winner}, 0, 0.07, 0)

	loser := sampleBusiness("b", "saas", 0)
	loser.EBITDA = -300
	both := CalculatePortfolioTax([]Business{winner, loser}, 0, 0.07, 0)

	if alone.TaxableIncome-both.TaxableIncome != 300 {
		t.Fatalf("expected taxable income to drop by 300, got %d -> %d", alone.TaxableIncome, both.TaxableIncome)
	}
	if both.LossOffset != 300 || both.NetEBITDA != 1_700 {
		t.Fatalf("unexpected offset breakdown: %+v", both)
	}
	if both.LossShield != 90 {
		t.Fatalf("expected loss shield 90, got %d", both.LossShield)
	}
}

func TestPortfolioTaxShieldOrder(t *testing.T) {
	b := sampleBusiness("a", "agency", 1_000)
	b.SellerNote = DebtTranche{Balance: 1_000, Rate: 0.10, RoundsRemaining: 5}
	got := CalculatePortfolioTax([]Business{b}, 2_000, 0.05, 200)

	if got.OpcoInterest != 100 || got.HoldcoInterest != 100 || got.TotalInterest != 200 {
		t.Fatalf("unexpected interest split: %+v", got)
	}
	if got.TaxableIncome != 600 || got.TaxAmount != 180 {
		t.Fatalf("expected taxable 600 and tax 180, got %d and %d", got.TaxableIncome, got.TaxAmount)
	}
	if got.InterestShield != 60 || got.SharedServicesShield != 60 {
		t.Fatalf("unexpected shields: interest=%d services=%d", got.InterestShield, got.SharedServicesShield)
	}
	if got.TotalTaxSavings != 120 {
		t.Fatalf("expected savings 120, got %d", got.TotalTaxSavings)
	}
}

func TestPortfolioTaxIgnoresInactive(t *testing.T) {
	sold := sampleBusiness("a", "agency", 1_000)
	sold.Status = StatusSold
	got := CalculatePortfolioTax([]Business{sold}, 0, 0.07, 0)
	if got.GrossEBITDA != 0 || got.TaxAmount != 0 {
		t.Fatalf("sold businesses should not be taxed: %+v", got)
	}
}
