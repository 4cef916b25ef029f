package game

import "sort"

type SharedServiceType string

const (
	ServiceFinanceReporting  SharedServiceType = "finance_reporting"
	ServiceRecruitingHR      SharedServiceType = "recruiting_hr"
	ServiceProcurement       SharedServiceType = "procurement"
	ServiceMarketingBrand    SharedServiceType = "marketing_brand"
	ServiceTechnologySystems SharedServiceType = "technology_systems"
)

type SharedServiceSpec struct {
	Type                SharedServiceType
	Name                string
	UnlockCost          int64
	AnnualCost          int64
	CapexReduction      float64
	CashConversionBonus float64
	GrowthBonus         float64
	MarginDefense       float64
	TalentRetention     float64 // fraction of talent-loss impact avoided
}

var sharedServiceCatalog = map[SharedServiceType]SharedServiceSpec{
	ServiceFinanceReporting:  {Type: ServiceFinanceReporting, Name: "Finance & Reporting", UnlockCost: 660, AnnualCost: 220, CashConversionBonus: 0.05},
	ServiceRecruitingHR:      {Type: ServiceRecruitingHR, Name: "Recruiting & HR", UnlockCost: 750, AnnualCost: 250, TalentRetention: 0.50},
	ServiceProcurement:       {Type: ServiceProcurement, Name: "Procurement", UnlockCost: 600, AnnualCost: 200, CapexReduction: 0.15},
	ServiceMarketingBrand:    {Type: ServiceMarketingBrand, Name: "Marketing & Brand", UnlockCost: 900, AnnualCost: 300, GrowthBonus: 0.015},
	ServiceTechnologySystems: {Type: ServiceTechnologySystems, Name: "Technology & Systems", UnlockCost: 1050, AnnualCost: 350, MarginDefense: 0.005},
}

// SharedServiceCatalog lists every shared service ordered by unlock cost.
func SharedServiceCatalog() []SharedServiceSpec {
	out := make([]SharedServiceSpec, 0, len(sharedServiceCatalog))
	for _, svc := range sharedServiceCatalog {
		out = append(out, svc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UnlockCost != out[j].UnlockCost {
			return out[i].UnlockCost < out[j].UnlockCost
		}
		return out[i].Type < out[j].Type
	})
	return out
}

// Annual cost of each M&A sourcing tier (index = tier).
var maSourcingAnnualCost = []int64{0, 300, 600, 1000}

// SharedServiceEffects aggregates the benefits of every active shared service.
type SharedServiceEffects struct {
	AnnualCost          int64
	CapexReduction      float64
	CashConversionBonus float64
	GrowthBonus         float64
	MarginDefense       float64
	TalentRetention     float64
	ActiveCount         int
}

func sharedServiceEffects(services []SharedServiceState) SharedServiceEffects {
	var out SharedServiceEffects
	for _, svc := range services {
		if !svc.Active {
			continue
		}
		spec, ok := sharedServiceCatalog[svc.Type]
		if !ok {
			continue
		}
		out.ActiveCount++
		out.AnnualCost += spec.AnnualCost
		out.CapexReduction += spec.CapexReduction
		out.CashConversionBonus += spec.CashConversionBonus
		out.GrowthBonus += spec.GrowthBonus
		out.MarginDefense += spec.MarginDefense
		out.TalentRetention += spec.TalentRetention
	}
	out.TalentRetention = clamp(out.TalentRetention, 0, 0.9)
	return out
}

func maSourcingCost(tier int) int64 {
	if tier <= 0 {
		return 0
	}
	if tier >= len(maSourcingAnnualCost) {
		tier = len(maSourcingAnnualCost) - 1
	}
	return maSourcingAnnualCost[tier]
}
