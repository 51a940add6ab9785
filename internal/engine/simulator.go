package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Participant is one user's score submission for the cycle.
type Participant struct {
	UserID string
	Scores []int
}

// ParticipantMatch records the audit detail for a single participant.
type ParticipantMatch struct {
	UserID         string `json:"userId"`
	MatchCount     int    `json:"matchCount"`
	MatchedNumbers []int  `json:"matchedNumbers"`
	Tier           int    `json:"tier"` // 0 means unmatched
}

// PayoutShare is the per-winner split of a tier payout.
type PayoutShare struct {
	Gross   decimal.Decimal `json:"gross"`
	Charity decimal.Decimal `json:"charity"`
	Net     decimal.Decimal `json:"net"`
}

// TierResult aggregates one prize tier.
type TierResult struct {
	WinnerCount int             `json:"winnerCount"`
	Pool        decimal.Decimal `json:"pool"`
	PerWinner   PayoutShare     `json:"perWinner"`
}

// SimulationResult is the full outcome of matching all participants against
// the winning numbers.
type SimulationResult struct {
	Matches         []ParticipantMatch `json:"matches"`
	Tiers           map[int]TierResult `json:"tiers"`
	JackpotRollover decimal.Decimal    `json:"jackpotRollover"`
}

// tierForMatches maps a match count to a prize tier; 0 means no prize.
func tierForMatches(count int) int {
	switch count {
	case 5:
		return 1
	case 4:
		return 2
	case 3:
		return 3
	default:
		return 0
	}
}

// Simulate classifies every participant by the number of distinct winning
// numbers present in their scores and computes the per-winner payout split.
//
// Matches are deduplicated by value: a participant submitting the same
// winning number twice matches it once. Per-winner gross is the tier pool
// divided by the winner count, rounded down to cents so the paid total never
// exceeds the pool; the cent remainder is not redistributed. A tier-1 pool
// with zero winners becomes the jackpot rollover for the next cycle; tiers 2
// and 3 with zero winners simply pay nothing.
func Simulate(participants []Participant, winningNumbers []int, pools PoolBreakdown, charityPercent int) *SimulationResult {
	winning := make(map[int]bool, len(winningNumbers))
	for _, n := range winningNumbers {
		winning[n] = true
	}

	matches := make([]ParticipantMatch, 0, len(participants))
	counts := map[int]int{1: 0, 2: 0, 3: 0}
	for _, p := range participants {
		seen := make(map[int]bool)
		var matched []int
		for _, s := range p.Scores {
			if winning[s] && !seen[s] {
				seen[s] = true
				matched = append(matched, s)
			}
		}
		sort.Ints(matched)
		tier := tierForMatches(len(matched))
		if tier != 0 {
			counts[tier]++
		}
		matches = append(matches, ParticipantMatch{
			UserID:         p.UserID,
			MatchCount:     len(matched),
			MatchedNumbers: matched,
			Tier:           tier,
		})
	}

	tierPools := map[int]decimal.Decimal{
		1: pools.Tier1Pool,
		2: pools.Tier2Pool,
		3: pools.Tier3Pool,
	}
	charityPct := decimal.NewFromInt(int64(charityPercent))

	tiers := make(map[int]TierResult, 3)
	rollover := decimal.Zero
	for tier, pool := range tierPools {
		result := TierResult{WinnerCount: counts[tier], Pool: pool}
		if counts[tier] > 0 {
			gross := pool.Div(decimal.NewFromInt(int64(counts[tier]))).RoundDown(2)
			charity := round2(gross.Mul(charityPct).Div(oneHundred))
			result.PerWinner = PayoutShare{
				Gross:   gross,
				Charity: charity,
				Net:     gross.Sub(charity),
			}
		} else if tier == 1 && pool.IsPositive() {
			rollover = pool
		}
		tiers[tier] = result
	}

	return &SimulationResult{
		Matches:         matches,
		Tiers:           tiers,
		JackpotRollover: rollover,
	}
}
