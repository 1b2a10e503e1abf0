package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ToleranceConfig holds configuration for tolerance inference
type ToleranceConfig struct {
	// defaults maps commodity to default tolerance (supports "*" wildcard)
	defaults map[string]decimal.Decimal
	// multiplier is applied to inferred tolerance (default 0.5)
	multiplier decimal.Decimal
}

// NewToleranceConfig creates a default tolerance configuration
// Default: 0.005 tolerance for all commodities, 0.5 multiplier
func NewToleranceConfig() *ToleranceConfig {
	return &ToleranceConfig{
		defaults: map[string]decimal.Decimal{
			"*": decimal.RequireFromString("0.005"),
		},
		multiplier: decimal.RequireFromString("0.5"),
	}
}

// SetDefault sets the tolerance used for a commodity when no amount of the
// transaction tells its precision. "*" applies to every commodity without a
// default of its own.
func (c *ToleranceConfig) SetDefault(commodity string, tolerance decimal.Decimal) error {
	if tolerance.IsNegative() {
		return fmt.Errorf("tolerance for %q must not be negative, got %s", commodity, tolerance)
	}
	c.defaults[commodity] = tolerance
	return nil
}

// SetMultiplier sets the factor applied to the smallest unit of the most
// precise amount.
func (c *ToleranceConfig) SetMultiplier(multiplier decimal.Decimal) error {
	if multiplier.IsNegative() {
		return fmt.Errorf("tolerance multiplier must not be negative, got %s", multiplier)
	}
	c.multiplier = multiplier
	return nil
}

// InferTolerance calculates tolerance from amount precision
// Algorithm:
//  1. Find the smallest exponent across all amounts
//  2. Calculate tolerance = 10^minExp * multiplier
//  3. If no amounts, use default tolerance for the commodity
func InferTolerance(amounts []decimal.Decimal, commodity string, config *ToleranceConfig) decimal.Decimal {
	if config == nil {
		config = NewToleranceConfig()
	}

	minExp := int32(0)
	foundAny := false

	for _, amount := range amounts {
		if amount.IsZero() {
			continue
		}

		exp := amount.Exponent()
		if !foundAny || exp < minExp {
			minExp = exp
			foundAny = true
		}
	}

	if !foundAny {
		return config.GetDefaultTolerance(commodity)
	}

	// minExp = -2 gives 0.01 * multiplier
	return decimal.New(1, minExp).Mul(config.multiplier)
}

// GetDefaultTolerance returns the default tolerance for a commodity
// Checks commodity-specific default first, then wildcard "*"
func (c *ToleranceConfig) GetDefaultTolerance(commodity string) decimal.Decimal {
	if c == nil {
		return decimal.RequireFromString("0.005")
	}

	if tolerance, ok := c.defaults[commodity]; ok {
		return tolerance
	}

	if tolerance, ok := c.defaults["*"]; ok {
		return tolerance
	}

	return decimal.RequireFromString("0.005")
}

// AmountEqual checks if two amounts are equal within tolerance
func AmountEqual(a, b decimal.Decimal, tolerance decimal.Decimal) bool {
	diff := a.Sub(b).Abs()
	return diff.LessThanOrEqual(tolerance)
}
