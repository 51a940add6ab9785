package engine

import "github.com/shopspring/decimal"

// TierPercents is the percentage split of the base pool across prize tiers.
// The three values must sum to 100; that is validated at the settings
// boundary, not here.
type TierPercents struct {
	Tier1 int
	Tier2 int
	Tier3 int
}

// PoolBreakdown holds the computed prize pools for one cycle, all rounded to
// currency cents.
type PoolBreakdown struct {
	BasePool           decimal.Decimal `json:"basePool"`
	Tier1Pool          decimal.Decimal `json:"tier1Pool"`
	Tier2Pool          decimal.Decimal `json:"tier2Pool"`
	Tier3Pool          decimal.Decimal `json:"tier3Pool"`
	CapExcess          decimal.Decimal `json:"capExcess"`
	TotalAvailable     decimal.Decimal `json:"totalAvailable"`
	JackpotCarryoverIn decimal.Decimal `json:"jackpotCarryoverIn"`
}

var oneHundred = decimal.NewFromInt(100)

// round2 applies currency-cent rounding (half up) as required at each
// computation step, not just at output.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// percentOf returns pct% of amount, rounded to cents.
func percentOf(amount decimal.Decimal, pct int) decimal.Decimal {
	return round2(amount.Mul(decimal.NewFromInt(int64(pct))).Div(oneHundred))
}

// ComputePools derives the tier pools from the active subscriber count, the
// per-subscriber contribution, the tier split and the jackpot carryover.
//
// The raw tier-1 pool (base share plus carryover) is capped at jackpotCap;
// any excess overflows into the tier-2 pool.
func ComputePools(subscribers int64, baseAmount decimal.Decimal, tiers TierPercents, carryover, jackpotCap decimal.Decimal) PoolBreakdown {
	basePool := round2(baseAmount.Mul(decimal.NewFromInt(subscribers)))

	tier1Raw := round2(percentOf(basePool, tiers.Tier1).Add(carryover))
	capExcess := decimal.Zero
	tier1 := tier1Raw
	if tier1Raw.GreaterThan(jackpotCap) {
		capExcess = tier1Raw.Sub(jackpotCap)
		tier1 = jackpotCap
	}

	tier2 := round2(percentOf(basePool, tiers.Tier2).Add(capExcess))
	tier3 := percentOf(basePool, tiers.Tier3)

	return PoolBreakdown{
		BasePool:           basePool,
		Tier1Pool:          tier1,
		Tier2Pool:          tier2,
		Tier3Pool:          tier3,
		CapExcess:          capExcess,
		TotalAvailable:     tier1.Add(tier2).Add(tier3),
		JackpotCarryoverIn: carryover,
	}
}
