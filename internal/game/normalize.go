package game

// NormalizeBusiness fills every field a legacy or hand-written record may be
// missing so the formulas downstream never need to coalesce.
func NormalizeBusiness(b Business) Business {
	out := b.clone()
	if out.Status == "" {
		out.Status = StatusActive
	}
	out.Status = BusinessStatus(normalizeKey(string(out.Status)))
	if out.Name == "" {
		out.Name = out.ID
	}
	if out.Revenue < 0 {
		out.Revenue = 0
	}
	if out.EBITDAMargin == 0 && out.Revenue > 0 {
		out.EBITDAMargin = float64(out.EBITDA) / float64(out.Revenue)
	}
	out.OrganicGrowthRate = clamp(finite(out.OrganicGrowthRate, 0), MinGrowthRate, MaxGrowthRate)
	out.RevenueGrowthRate = finite(out.RevenueGrowthRate, 0)
	out.MarginDriftRate = finite(out.MarginDriftRate, 0)

	if out.AcquisitionRevenue == 0 {
		out.AcquisitionRevenue = out.Revenue
	}
	if out.AcquisitionMargin == 0 {
		out.AcquisitionMargin = out.EBITDAMargin
	}
	if out.AcquisitionMultiple <= 0 {
		out.AcquisitionMultiple = SectorByID(out.SectorID).MultipleMin
	}
	out.PeakRevenue = maxInt(out.PeakRevenue, out.Revenue)
	out.PeakEBITDA = maxInt(out.PeakEBITDA, out.EBITDA)

	if out.QualityRating == 0 {
		out.QualityRating = 3
	}
	out.QualityRating = min(5, max(1, out.QualityRating))
	if out.IntegrationRoundsRemaining < 0 {
		out.IntegrationRoundsRemaining = 0
	}
	out.IntegrationGrowthDrag = finite(out.IntegrationGrowthDrag, 0)
	if out.MergerBalanceRatio < 0 {
		out.MergerBalanceRatio = 0
	}

	dd := &out.DueDiligence
	dd.OperatorQuality = normalizeKey(dd.OperatorQuality)
	dd.CompetitivePosition = normalizeKey(dd.CompetitivePosition)
	dd.RevenueConcentration = normalizeKey(dd.RevenueConcentration)
	if dd.OperatorQuality == "" {
		dd.OperatorQuality = "moderate"
	}
	if dd.CompetitivePosition == "" {
		dd.CompetitivePosition = "competitive"
	}
	if dd.RevenueConcentration == "" {
		dd.RevenueConcentration = "medium"
	}

	if out.BoltOnIDs == nil {
		out.BoltOnIDs = []string{}
	}
	// Each improvement type applies once; later duplicates are dropped.
	applied := Business{Improvements: make([]Improvement, 0, len(out.Improvements))}
	for _, imp := range out.Improvements {
		if !applied.HasImprovement(imp.Type) {
			applied.Improvements = append(applied.Improvements, imp)
		}
	}
	out.Improvements = applied.Improvements
	return out
}

// NormalizeState completes a decoded game state and every business in it.
func NormalizeState(s GameState) GameState {
	out := s.Clone()
	if out.Duration == "" {
		out.Duration = DurationStandard
	}
	if out.Difficulty == "" {
		out.Difficulty = DifficultyEasy
	}
	if out.MaxRounds <= 0 {
		out.MaxRounds = out.Duration.Rounds()
	}
	if out.Round <= 0 {
		out.Round = 1
	}
	if out.InterestRate <= 0 {
		out.InterestRate = StartingInterestRate
	}
	out.InterestRate = clamp(out.InterestRate, MinInterestRate, MaxInterestRate)
	if out.MASourcingTier < 0 {
		out.MASourcingTier = 0
	}
	for i, b := range out.Businesses {
		out.Businesses[i] = NormalizeBusiness(b)
	}
	if out.History == nil {
		out.History = []HistoricalMetrics{}
	}
	if out.SharedServices == nil {
		out.SharedServices = []SharedServiceState{}
	}
	if out.IntegratedPlatforms == nil {
		out.IntegratedPlatforms = []IntegratedPlatform{}
	}
	if out.ActiveTurnarounds == nil {
		out.ActiveTurnarounds = []TurnaroundProgram{}
	}
	if out.EventLog == nil {
		out.EventLog = []EventRecord{}
	}
	if out.ActionsThisRound == nil {
		out.ActionsThisRound = []string{}
	}
	return out
}
