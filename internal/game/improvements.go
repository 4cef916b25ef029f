package game

type ImprovementType string

const (
	ImprovementOperatingPlaybook     ImprovementType = "operating_playbook"
	ImprovementPricingModel          ImprovementType = "pricing_model"
	ImprovementServiceExpansion      ImprovementType = "service_expansion"
	ImprovementFixUnderperformance   ImprovementType = "fix_underperformance"
	ImprovementRecurringRevenue      ImprovementType = "recurring_revenue_conversion"
	ImprovementManagementProfessnl   ImprovementType = "management_professionalization"
	ImprovementDigitalTransformation ImprovementType = "digital_transformation"
)

// Exit multiple premium credited per applied improvement type.
var improvementPremiums = map[ImprovementType]float64{
	ImprovementOperatingPlaybook:     0.15,
	ImprovementPricingModel:          0.15,
	ImprovementServiceExpansion:      0.15,
	ImprovementFixUnderperformance:   0.15,
	ImprovementRecurringRevenue:      0.30,
	ImprovementManagementProfessnl:   0.30,
	ImprovementDigitalTransformation: 0.50,
}

const maxImprovementsPremium = 1.0

func improvementsPremium(b Business) float64 {
	seen := make(map[ImprovementType]bool, len(b.Improvements))
	total := 0.0
	for _, imp := range b.Improvements {
		if seen[imp.Type] {
			continue
		}
		seen[imp.Type] = true
		p, ok := improvementPremiums[imp.Type]
		if !ok {
			p = 0.15
		}
		total += p
	}
	if total > maxImprovementsPremium {
		return maxImprovementsPremium
	}
	return total
}
