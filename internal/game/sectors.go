package game

import "sort"

// Sector is read-only balance configuration shared by every business in it.
type Sector struct {
	ID         string
	Name       string
	FocusGroup string

	CapexRate            float64
	Volatility           float64 // amplitude of per-round revenue growth noise
	MarginVolatility     float64 // amplitude of per-round margin noise
	MarginMin            float64
	MarginMax            float64
	MultipleMin          float64
	MultipleMax          float64
	GrowthMin            float64
	GrowthMax            float64
	RecessionSensitivity float64
	EbitdaMin            int64
	EbitdaMax            int64
}

// MarginMidpoint is the centre of the sector's typical margin band.
func (s Sector) MarginMidpoint() float64 {
	return (s.MarginMin + s.MarginMax) / 2
}

var sectorCatalog = map[string]Sector{
	"agency": {
		ID: "agency", Name: "Marketing Agency", FocusGroup: "services",
		CapexRate: 0.03, Volatility: 0.06, MarginVolatility: 0.010,
		MarginMin: 0.10, MarginMax: 0.25, MultipleMin: 2.5, MultipleMax: 4.5,
		GrowthMin: -0.02, GrowthMax: 0.08, RecessionSensitivity: 1.3,
		EbitdaMin: 800, EbitdaMax: 2000,
	},
	"saas": {
		ID: "saas", Name: "B2B SaaS", FocusGroup: "tech",
		CapexRate: 0.05, Volatility: 0.08, MarginVolatility: 0.015,
		MarginMin: 0.15, MarginMax: 0.40, MultipleMin: 5.0, MultipleMax: 9.0,
		GrowthMin: 0.05, GrowthMax: 0.20, RecessionSensitivity: 0.8,
		EbitdaMin: 600, EbitdaMax: 2500,
	},
	"homeServices": {
		ID: "homeServices", Name: "Home Services", FocusGroup: "property",
		CapexRate: 0.06, Volatility: 0.04, MarginVolatility: 0.008,
		MarginMin: 0.12, MarginMax: 0.22, MultipleMin: 3.0, MultipleMax: 5.0,
		GrowthMin: 0.01, GrowthMax: 0.06, RecessionSensitivity: 0.9,
		EbitdaMin: 900, EbitdaMax: 2500,
	},
	"consumer": {
		ID: "consumer", Name: "Consumer Brand", FocusGroup: "consumer",
		CapexRate: 0.05, Volatility: 0.07, MarginVolatility: 0.012,
		MarginMin: 0.10, MarginMax: 0.25, MultipleMin: 3.0, MultipleMax: 5.5,
		GrowthMin: -0.01, GrowthMax: 0.10, RecessionSensitivity: 1.2,
		EbitdaMin: 700, EbitdaMax: 2200,
	},
	"industrial": {
		ID: "industrial", Name: "Industrial Manufacturing", FocusGroup: "industrial",
		CapexRate: 0.10, Volatility: 0.04, MarginVolatility: 0.008,
		MarginMin: 0.12, MarginMax: 0.20, MultipleMin: 4.0, MultipleMax: 6.0,
		GrowthMin: 0.00, GrowthMax: 0.05, RecessionSensitivity: 1.1,
		EbitdaMin: 1200, EbitdaMax: 3500,
	},
	"b2bServices": {
		ID: "b2bServices", Name: "B2B Services", FocusGroup: "services",
		CapexRate: 0.03, Volatility: 0.04, MarginVolatility: 0.008,
		MarginMin: 0.15, MarginMax: 0.28, MultipleMin: 3.5, MultipleMax: 6.0,
		GrowthMin: 0.02, GrowthMax: 0.07, RecessionSensitivity: 0.9,
		EbitdaMin: 900, EbitdaMax: 2800,
	},
	"healthcare": {
		ID: "healthcare", Name: "Healthcare Services", FocusGroup: "health",
		CapexRate: 0.06, Volatility: 0.03, MarginVolatility: 0.006,
		MarginMin: 0.12, MarginMax: 0.22, MultipleMin: 5.0, MultipleMax: 8.0,
		GrowthMin: 0.03, GrowthMax: 0.08, RecessionSensitivity: 0.4,
		EbitdaMin: 1000, EbitdaMax: 3000,
	},
	"restaurant": {
		ID: "restaurant", Name: "Restaurant Group", FocusGroup: "consumer",
		CapexRate: 0.08, Volatility: 0.06, MarginVolatility: 0.012,
		MarginMin: 0.08, MarginMax: 0.16, MultipleMin: 2.5, MultipleMax: 4.5,
		GrowthMin: -0.02, GrowthMax: 0.06, RecessionSensitivity: 1.4,
		EbitdaMin: 600, EbitdaMax: 1800,
	},
	"education": {
		ID: "education", Name: "Education & Training", FocusGroup: "tech",
		CapexRate: 0.04, Volatility: 0.05, MarginVolatility: 0.010,
		MarginMin: 0.15, MarginMax: 0.30, MultipleMin: 4.0, MultipleMax: 7.0,
		GrowthMin: 0.03, GrowthMax: 0.12, RecessionSensitivity: 0.6,
		EbitdaMin: 700, EbitdaMax: 2200,
	},
	"insurance": {
		ID: "insurance", Name: "Insurance Brokerage", FocusGroup: "financial",
		CapexRate: 0.02, Volatility: 0.03, MarginVolatility: 0.006,
		MarginMin: 0.20, MarginMax: 0.35, MultipleMin: 6.0, MultipleMax: 9.0,
		GrowthMin: 0.03, GrowthMax: 0.08, RecessionSensitivity: 0.5,
		EbitdaMin: 800, EbitdaMax: 2500,
	},
	"distribution": {
		ID: "distribution", Name: "Specialty Distribution", FocusGroup: "industrial",
		CapexRate: 0.04, Volatility: 0.04, MarginVolatility: 0.006,
		MarginMin: 0.06, MarginMax: 0.12, MultipleMin: 3.5, MultipleMax: 5.5,
		GrowthMin: 0.01, GrowthMax: 0.05, RecessionSensitivity: 1.0,
		EbitdaMin: 1200, EbitdaMax: 3500,
	},
	"environmental": {
		ID: "environmental", Name: "Environmental Services", FocusGroup: "industrial",
		CapexRate: 0.09, Volatility: 0.03, MarginVolatility: 0.006,
		MarginMin: 0.15, MarginMax: 0.25, MultipleMin: 5.0, MultipleMax: 7.5,
		GrowthMin: 0.03, GrowthMax: 0.08, RecessionSensitivity: 0.5,
		EbitdaMin: 1000, EbitdaMax: 3000,
	},
}

// fallbackSector is used for records whose sector id no longer exists.
var fallbackSector = Sector{
	ID: "unknown", Name: "Unknown", FocusGroup: "unknown",
	CapexRate: 0.05, Volatility: 0.05, MarginVolatility: 0.010,
	MarginMin: 0.10, MarginMax: 0.25, MultipleMin: 3.0, MultipleMax: 5.0,
	GrowthMin: 0.00, GrowthMax: 0.06, RecessionSensitivity: 1.0,
	EbitdaMin: 800, EbitdaMax: 2000,
}

// SectorByID returns the sector definition, falling back to neutral values
// for unknown ids.
func SectorByID(id string) Sector {
	if s, ok := sectorCatalog[id]; ok {
		return s
	}
	return fallbackSector
}

func LookupSector(id string) (Sector, error) {
	s, ok := sectorCatalog[id]
	if !ok {
		return Sector{}, ErrUnknownSector
	}
	return s, nil
}

// SectorIDs lists every configured sector in stable order.
func SectorIDs() []string {
	out := make([]string, 0, len(sectorCatalog))
	for id := range sectorCatalog {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// ClampMargin keeps a margin inside the band any business in the sector may occupy.
func ClampMargin(margin float64, sectorID string) float64 {
	s := SectorByID(sectorID)
	ceiling := s.MarginMax + 0.15
	if ceiling > MarginCeiling {
		ceiling = MarginCeiling
	}
	return clamp(finite(margin, MarginFloor), MarginFloor, ceiling)
}
