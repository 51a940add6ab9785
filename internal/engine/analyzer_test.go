package engine

import (
	"testing"

	"github.com/brightpools/charity-draw-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze(t *testing.T) {
	t.Run("selects least and most popular numbers", func(t *testing.T) {
		scores := []int{1, 1, 1, 2, 2, 3, 4, 5, 6, 7}
		analysis, err := Analyze(scores, 1, 100)
		require.NoError(t, err)

		assert.Equal(t, []int{3, 4, 5}, analysis.LeastPopular)
		assert.ElementsMatch(t, []int{1, 2}, analysis.MostPopular)
		assert.Equal(t, []int{1, 2, 3, 4, 5}, analysis.WinningNumbers)
		assert.Equal(t, 10, analysis.ValidScoreCount)
		assert.Equal(t, 7, analysis.DistinctValues)
		assert.Equal(t, 3, analysis.Frequencies[1])
	})

	t.Run("is deterministic", func(t *testing.T) {
		scores := []int{9, 4, 4, 7, 7, 12, 12, 12, 30, 30, 30, 30, 8}
		first, err := Analyze(scores, 1, 100)
		require.NoError(t, err)
		for i := 0; i < 10; i++ {
			again, err := Analyze(scores, 1, 100)
			require.NoError(t, err)
			assert.Equal(t, first.WinningNumbers, again.WinningNumbers)
		}
	})

	t.Run("breaks frequency ties by ascending value", func(t *testing.T) {
		// every value appears once; the three smallest become least popular
		analysis, err := Analyze([]int{50, 10, 40, 20, 30}, 1, 100)
		require.NoError(t, err)
		assert.Equal(t, []int{10, 20, 30}, analysis.LeastPopular)
		assert.Equal(t, []int{10, 20, 30, 40, 50}, analysis.WinningNumbers)
	})

	t.Run("ignores out-of-range scores", func(t *testing.T) {
		analysis, err := Analyze([]int{0, 5, 101, 7, -3, 9, 200}, 1, 100)
		require.NoError(t, err)
		assert.Equal(t, 3, analysis.ValidScoreCount)
		assert.Equal(t, []int{5, 7, 9}, analysis.WinningNumbers)
	})

	t.Run("degrades below five distinct values without duplicates", func(t *testing.T) {
		analysis, err := Analyze([]int{5, 5, 8, 8, 8, 2}, 1, 100)
		require.NoError(t, err)
		assert.Equal(t, 3, analysis.DistinctValues)
		assert.Equal(t, []int{2, 5, 8}, analysis.WinningNumbers)
		assert.Empty(t, analysis.MostPopular)
	})

	t.Run("single distinct value yields one winning number", func(t *testing.T) {
		analysis, err := Analyze([]int{42, 42, 42}, 1, 100)
		require.NoError(t, err)
		assert.Equal(t, []int{42}, analysis.WinningNumbers)
	})

	t.Run("rejects an empty score pool", func(t *testing.T) {
		_, err := Analyze(nil, 1, 100)
		assert.ErrorIs(t, err, models.ErrNoValidScores)
	})

	t.Run("rejects a pool with only out-of-range scores", func(t *testing.T) {
		_, err := Analyze([]int{0, 101, 500}, 1, 100)
		assert.ErrorIs(t, err, models.ErrNoValidScores)
	})
}
