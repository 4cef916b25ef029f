package game

type DistressLevel string

const (
	DistressComfortable DistressLevel = "comfortable"
	DistressElevated    DistressLevel = "elevated"
	DistressStressed    DistressLevel = "stressed"
	DistressBreach      DistressLevel = "breach"
)

// DistressRestrictions lists the capital actions a distress level still allows.
type DistressRestrictions struct {
	CanAcquire      bool    `json:"can_acquire"`
	CanTakeDebt     bool    `json:"can_take_debt"`
	CanDistribute   bool    `json:"can_distribute"`
	CanBuyback      bool    `json:"can_buyback"`
	InterestPenalty float64 `json:"interest_penalty"`
}

// CalculateDistressLevel classifies leverage purely by threshold.
func CalculateDistressLevel(netDebtToEBITDA float64, totalDebt, totalEBITDA int64) DistressLevel {
	if totalDebt <= 0 {
		return DistressComfortable
	}
	if totalEBITDA <= 0 {
		return DistressBreach
	}
	switch {
	case netDebtToEBITDA >= 4.5:
		return DistressBreach
	case netDebtToEBITDA >= 3.5:
		return DistressStressed
	case netDebtToEBITDA >= 2.5:
		return DistressElevated
	default:
		return DistressComfortable
	}
}

func RestrictionsFor(level DistressLevel) DistressRestrictions {
	switch level {
	case DistressBreach:
		return DistressRestrictions{InterestPenalty: 0.02}
	case DistressStressed:
		return DistressRestrictions{CanAcquire: true, CanDistribute: true, CanBuyback: true, InterestPenalty: 0.01}
	default:
		return DistressRestrictions{CanAcquire: true, CanTakeDebt: true, CanDistribute: true, CanBuyback: true}
	}
}
