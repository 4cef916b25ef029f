package game

import "sort"

// TurnaroundTier describes one turnaround program a holdco may fund.
type TurnaroundTier struct {
	Tier        int
	Name        string
	UpfrontCost int64
	AnnualCost  int64
	Rounds      int
	QualityGain int
	MarginBoost float64
}

var turnaroundTiers = map[int]TurnaroundTier{
	1: {Tier: 1, Name: "Operational Fix", UpfrontCost: 300, AnnualCost: 150, Rounds: 4, QualityGain: 1, MarginBoost: 0.01},
	2: {Tier: 2, Name: "Full Restructuring", UpfrontCost: 800, AnnualCost: 300, Rounds: 3, QualityGain: 1, MarginBoost: 0.02},
	3: {Tier: 3, Name: "Transformational Overhaul", UpfrontCost: 1500, AnnualCost: 500, Rounds: 3, QualityGain: 2, MarginBoost: 0.03},
}

func TurnaroundTierByID(tier int) (TurnaroundTier, bool) {
	t, ok := turnaroundTiers[tier]
	return t, ok
}

func turnaroundAnnualCost(programs []TurnaroundProgram) int64 {
	var total int64
	for _, p := range programs {
		if p.RoundsRemaining <= 0 {
			continue
		}
		if t, ok := TurnaroundTierByID(p.Tier); ok {
			total += t.AnnualCost
		}
	}
	return total
}

// turnaroundExitPremium rewards exiting a business whose quality was lifted
// by completed turnaround programs.
func turnaroundExitPremium(b Business) float64 {
	switch {
	case b.QualityImprovedTiers >= 2:
		return 0.50
	case b.QualityImprovedTiers == 1:
		return 0.25
	default:
		return 0
	}
}

// PlatformRecipe is a cross-business combination that can be forged into an
// integrated platform for a one-time cost.
type PlatformRecipe struct {
	ID                string
	Name              string
	SectorIDs         []string
	MinConstituents   int
	MultipleExpansion float64
	ForgeCost         int64
}

var platformRecipes = map[string]PlatformRecipe{
	"home_services_hub":     {ID: "home_services_hub", Name: "Home Services Hub", SectorIDs: []string{"homeServices"}, MinConstituents: 3, MultipleExpansion: 1.0, ForgeCost: 1500},
	"vertical_software":     {ID: "vertical_software", Name: "Vertical Software Suite", SectorIDs: []string{"saas", "education"}, MinConstituents: 2, MultipleExpansion: 1.5, ForgeCost: 2500},
	"full_service_agency":   {ID: "full_service_agency", Name: "Full-Service Agency", SectorIDs: []string{"agency", "b2bServices"}, MinConstituents: 3, MultipleExpansion: 1.0, ForgeCost: 1200},
	"industrial_supply":     {ID: "industrial_supply", Name: "Industrial Supply Chain", SectorIDs: []string{"industrial", "distribution"}, MinConstituents: 2, MultipleExpansion: 1.25, ForgeCost: 2000},
	"risk_advisory_network": {ID: "risk_advisory_network", Name: "Risk Advisory Network", SectorIDs: []string{"insurance"}, MinConstituents: 3, MultipleExpansion: 1.5, ForgeCost: 2200},
}

func PlatformRecipeByID(id string) (PlatformRecipe, bool) {
	r, ok := platformRecipes[id]
	return r, ok
}

// TurnaroundTiers lists every turnaround program by tier.
func TurnaroundTiers() []TurnaroundTier {
	out := make([]TurnaroundTier, 0, len(turnaroundTiers))
	for _, t := range turnaroundTiers {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tier < out[j].Tier })
	return out
}

// PlatformRecipes lists every platform recipe ordered by id.
func PlatformRecipes() []PlatformRecipe {
	out := make([]PlatformRecipe, 0, len(platformRecipes))
	for _, r := range platformRecipes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Qualifies reports whether a forged platform with these constituents meets
// the recipe and whether sectorID is one of its sectors.
func (r PlatformRecipe) Qualifies(p IntegratedPlatform, sectorID string) bool {
	if len(p.ConstituentIDs) < r.MinConstituents {
		return false
	}
	for _, id := range r.SectorIDs {
		if id == sectorID {
			return true
		}
	}
	return false
}

// integratedPlatformPremium is the structural multiple expansion a business
// receives for belonging to a forged platform.
func integratedPlatformPremium(b Business, platforms []IntegratedPlatform) float64 {
	for _, p := range platforms {
		member := p.ID != "" && p.ID == b.IntegratedPlatformID
		if !member {
			for _, id := range p.ConstituentIDs {
				if id == b.ID {
					member = true
					break
				}
			}
		}
		if !member {
			continue
		}
		if r, ok := PlatformRecipeByID(p.RecipeID); ok && r.Qualifies(p, b.SectorID) {
			return r.MultipleExpansion
		}
		return 0
	}
	return 0
}
