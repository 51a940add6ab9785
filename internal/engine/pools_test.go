package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputePools(t *testing.T) {
	tiers := TierPercents{Tier1: 40, Tier2: 35, Tier3: 25}

	t.Run("splits the base pool across tiers", func(t *testing.T) {
		pools := ComputePools(100, d("10"), tiers, decimal.Zero, d("1000000"))

		assert.True(t, pools.BasePool.Equal(d("1000")), "base pool: %s", pools.BasePool)
		assert.True(t, pools.Tier1Pool.Equal(d("400")), "tier1: %s", pools.Tier1Pool)
		assert.True(t, pools.Tier2Pool.Equal(d("350")), "tier2: %s", pools.Tier2Pool)
		assert.True(t, pools.Tier3Pool.Equal(d("250")), "tier3: %s", pools.Tier3Pool)
		assert.True(t, pools.TotalAvailable.Equal(d("1000")))
		assert.True(t, pools.CapExcess.IsZero())
	})

	t.Run("adds carryover to the jackpot pool", func(t *testing.T) {
		pools := ComputePools(100, d("10"), tiers, d("500"), d("1000000"))
		assert.True(t, pools.Tier1Pool.Equal(d("900")), "tier1: %s", pools.Tier1Pool)
		assert.True(t, pools.JackpotCarryoverIn.Equal(d("500")))
	})

	t.Run("overflows the cap excess into tier 2", func(t *testing.T) {
		pools := ComputePools(100, d("10"), tiers, d("260000"), d("250000"))

		// tier1 raw = 400 + 260000 = 260400, capped at 250000
		assert.True(t, pools.Tier1Pool.Equal(d("250000")), "tier1: %s", pools.Tier1Pool)
		assert.True(t, pools.CapExcess.Equal(d("10400")), "excess: %s", pools.CapExcess)
		assert.True(t, pools.Tier2Pool.Equal(d("10750")), "tier2: %s", pools.Tier2Pool)
		assert.True(t, pools.Tier3Pool.Equal(d("250")))
	})

	t.Run("rounds each step to cents", func(t *testing.T) {
		// 33 subscribers at 0.07 = 2.31; 40% = 0.924 -> 0.92
		pools := ComputePools(33, d("0.07"), tiers, decimal.Zero, d("1000"))
		assert.True(t, pools.BasePool.Equal(d("2.31")), "base: %s", pools.BasePool)
		assert.True(t, pools.Tier1Pool.Equal(d("0.92")), "tier1: %s", pools.Tier1Pool)
		assert.True(t, pools.Tier2Pool.Equal(d("0.81")), "tier2: %s", pools.Tier2Pool)
		assert.True(t, pools.Tier3Pool.Equal(d("0.58")), "tier3: %s", pools.Tier3Pool)
	})

	t.Run("zero subscribers yields only the carryover", func(t *testing.T) {
		pools := ComputePools(0, d("10"), tiers, d("120.50"), d("1000000"))
		assert.True(t, pools.BasePool.IsZero())
		assert.True(t, pools.Tier1Pool.Equal(d("120.50")))
		assert.True(t, pools.Tier2Pool.IsZero())
		assert.True(t, pools.TotalAvailable.Equal(d("120.50")))
	})
}
