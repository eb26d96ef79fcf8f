package referral

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vestfolio/backend/internal/domain/shared"
)

// Level maps one upline depth to its commission percentage
type Level struct {
	Level   int             `json:"level"`
	Percent decimal.Decimal `json:"percent"`
}

// LevelConfig is the validated set of commission levels
type LevelConfig []Level

// DefaultLevels returns the built-in commission schedule used when no
// operator configuration exists. Pure function, safe to call anywhere.
func DefaultLevels() LevelConfig {
	return LevelConfig{
		{Level: 1, Percent: decimal.NewFromInt(5)},
		{Level: 2, Percent: decimal.NewFromInt(3)},
		{Level: 3, Percent: decimal.NewFromInt(2)},
		{Level: 4, Percent: decimal.NewFromInt(1)},
		{Level: 5, Percent: decimal.RequireFromString("0.5")},
	}
}

// Validate checks the schedule is well-formed: positive unique levels and
// positive percentages
func (c LevelConfig) Validate() error {
	if len(c) == 0 {
		return shared.NewDomainError("INVALID_INPUT", "Referral level config cannot be empty")
	}
	seen := make(map[int]struct{}, len(c))
	for _, l := range c {
		if l.Level < 1 {
			return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Referral level %d must be positive", l.Level))
		}
		if _, dup := seen[l.Level]; dup {
			return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Referral level %d is configured twice", l.Level))
		}
		seen[l.Level] = struct{}{}
		if l.Percent.LessThanOrEqual(decimal.Zero) {
			return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Referral level %d percent must be positive", l.Level))
		}
	}
	return nil
}

// PercentFor returns the configured percent for a level, if any
func (c LevelConfig) PercentFor(level int) (decimal.Decimal, bool) {
	for _, l := range c {
		if l.Level == level {
			return l.Percent, true
		}
	}
	return decimal.Zero, false
}

// MaxDepth returns the deepest configured level
func (c LevelConfig) MaxDepth() int {
	max := 0
	for _, l := range c {
		if l.Level > max {
			max = l.Level
		}
	}
	return max
}

// ResolveLevels returns the stored config when valid, the defaults
// otherwise. Pure fallback logic, kept separate for testability.
func ResolveLevels(stored LevelConfig) LevelConfig {
	if stored.Validate() != nil {
		return DefaultLevels()
	}
	return stored
}
