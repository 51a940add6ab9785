// Package engine holds the pure draw computations: score analysis, prize
// pool calculation, and match/payout simulation. Nothing in this package
// touches persistence or the clock.
package engine

import (
	"sort"

	"github.com/brightpools/charity-draw-backend/internal/models"
)

// Analysis is the result of analyzing a cycle's score pool.
type Analysis struct {
	Frequencies     map[int]int `json:"frequencies"`
	LeastPopular    []int       `json:"leastPopular"`
	MostPopular     []int       `json:"mostPopular"`
	WinningNumbers  []int       `json:"winningNumbers"`
	ValidScoreCount int         `json:"validScoreCount"`
	DistinctValues  int         `json:"distinctValues"`
}

// Analyze filters scores to [rangeMin, rangeMax], builds the frequency
// distribution and selects the winning numbers: the three least popular and
// two most popular distinct values, combined and sorted ascending.
//
// Ties on frequency break by ascending numeric value so the selection is
// deterministic. With fewer than five distinct values the result degrades to
// min(5, distinct) numbers with no duplicates; downstream tiers key off
// absolute match counts, so a short winning set simply cannot produce
// five-match winners.
func Analyze(scores []int, rangeMin, rangeMax int) (*Analysis, error) {
	freq := make(map[int]int)
	valid := 0
	for _, s := range scores {
		if s < rangeMin || s > rangeMax {
			continue
		}
		freq[s]++
		valid++
	}
	if valid == 0 {
		return nil, models.ErrNoValidScores
	}

	distinct := make([]int, 0, len(freq))
	for v := range freq {
		distinct = append(distinct, v)
	}
	sort.Slice(distinct, func(i, j int) bool {
		if freq[distinct[i]] != freq[distinct[j]] {
			return freq[distinct[i]] < freq[distinct[j]]
		}
		return distinct[i] < distinct[j]
	})

	leastN := 3
	if len(distinct) < leastN {
		leastN = len(distinct)
	}
	least := append([]int(nil), distinct[:leastN]...)

	selected := make(map[int]bool, 5)
	for _, v := range least {
		selected[v] = true
	}

	// Most popular two, walking from the high-frequency end and skipping
	// values already taken as least popular.
	var most []int
	for i := len(distinct) - 1; i >= 0 && len(most) < 2; i-- {
		if selected[distinct[i]] {
			continue
		}
		most = append(most, distinct[i])
		selected[distinct[i]] = true
	}

	winning := make([]int, 0, len(selected))
	for v := range selected {
		winning = append(winning, v)
	}
	sort.Ints(winning)

	return &Analysis{
		Frequencies:     freq,
		LeastPopular:    least,
		MostPopular:     most,
		WinningNumbers:  winning,
		ValidScoreCount: valid,
		DistinctValues:  len(distinct),
	}, nil
}
