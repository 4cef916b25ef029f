package game

import (
	"errors"
	"math"
	"strings"
)

const (
	TaxRate = 0.30

	StartingCash         = int64(20_000)
	StartingShares       = int64(1_000)
	FounderShares        = int64(800)
	StartingInterestRate = 0.07

	MinInterestRate = 0.03
	MaxInterestRate = 0.15

	// Absolute floor for an exit multiple (distressed sale).
	MinExitMultiple = 2.0

	// A business never earns less than this share of its acquisition EBITDA.
	EbitdaFloorFraction = 0.30
	MarginFloor         = 0.03
	MarginCeiling       = 0.80

	MinGrowthRate = -0.50
	MaxGrowthRate = 0.80
)

var (
	ErrGameNotFound     = errors.New("game not found")
	ErrGameOver         = errors.New("game is over")
	ErrBusinessNotFound = errors.New("business not found")
	ErrNoPendingChoice  = errors.New("no pending event choice")
	ErrUnknownChoice    = errors.New("unknown event choice")
	ErrUnknownSector    = errors.New("unknown sector")
	ErrInsufficientCash = errors.New("insufficient cash")
	ErrGameInProgress   = errors.New("game is still in progress")
	ErrDuplicateEntry   = errors.New("leaderboard entry already submitted")
	ErrInvalidInitials  = errors.New("initials must be 2-4 letters or digits")
	ErrInvalidName      = errors.New("invalid name")
	ErrInvalidState     = errors.New("inconsistent game state")
)

// roundHalfUp matches the rounding used throughout the balance tables:
// halves always round toward positive infinity.
func roundHalfUp(v float64) int64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int64(math.Floor(v + 0.5))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// finite replaces NaN and ±Inf with fallback.
func finite(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

// safeDiv returns fallback when den is zero or the quotient is not finite.
func safeDiv(num, den, fallback float64) float64 {
	if den == 0 {
		return fallback
	}
	return finite(num/den, fallback)
}

func absInt(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func maxInt(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
