package services

import (
	"context"
	"testing"
	"time"

	"github.com/brightpools/charity-draw-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type drawTestEnv struct {
	service   *DrawServiceImpl
	drawRepo  *fakeDrawRepo
	winners   *fakeWinnerRepo
	donations *fakeDonationRepo
	subs      *fakeSubscriptionRepo
	rollovers *fakeRolloverRepo
	scores    *fakeScoreRepo
}

func testSettings() *models.DrawSettings {
	return &models.DrawSettings{
		BaseAmountPerSubscriber: 10,
		Tier1Percent:            40,
		Tier2Percent:            35,
		Tier3Percent:            25,
		CharityPercent:          10,
		JackpotCap:              1000000,
		DefaultCharityID:        "charity-1",
		ScoreRangeMin:           1,
		ScoreRangeMax:           100,
	}
}

// newDrawTestEnv wires a draw service against in-memory fakes with the clock
// pinned to March 2025.
func newDrawTestEnv(t *testing.T, entries []*models.ScoreEntry) *drawTestEnv {
	t.Helper()
	env := &drawTestEnv{
		drawRepo:  newFakeDrawRepo(),
		winners:   newFakeWinnerRepo(),
		donations: newFakeDonationRepo(),
		subs:      newFakeSubscriptionRepo(100),
		rollovers: newFakeRolloverRepo(),
		scores:    &fakeScoreRepo{entries: entries},
	}
	env.service = NewDrawService(
		env.drawRepo, env.winners, env.donations, env.scores,
		env.subs, &fakeSettingsRepo{settings: testSettings()}, env.rollovers,
	)
	env.service.now = func() time.Time {
		return time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	}
	return env
}

func scoreEntry(userID, monthYear string, scores ...int) *models.ScoreEntry {
	return &models.ScoreEntry{UserID: userID, MonthYear: monthYear, Scores: scores}
}

func TestDrawLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("open cycle rejects a bad label", func(t *testing.T) {
		env := newDrawTestEnv(t, nil)
		_, err := env.service.OpenCycle(ctx, "2025-03")
		assert.Error(t, err)
	})

	t.Run("only one mutable cycle at a time", func(t *testing.T) {
		env := newDrawTestEnv(t, nil)
		_, err := env.service.OpenCycle(ctx, "March 2025")
		require.NoError(t, err)
		_, err = env.service.OpenCycle(ctx, "April 2025")
		assert.Error(t, err)
	})

	t.Run("analysis on a future cycle is locked", func(t *testing.T) {
		env := newDrawTestEnv(t, nil)
		draw := &models.DrawCycle{MonthYear: "April 2025", Status: models.DrawStatusOpen}
		require.NoError(t, env.drawRepo.Create(ctx, draw))

		_, err := env.service.RunAnalysis(ctx, draw.ID, 0, 0)
		assert.ErrorIs(t, err, models.ErrFutureCycleLocked)
	})

	t.Run("analysis with no scores fails cleanly", func(t *testing.T) {
		env := newDrawTestEnv(t, nil)
		draw, err := env.service.OpenCycle(ctx, "March 2025")
		require.NoError(t, err)

		_, err = env.service.RunAnalysis(ctx, draw.ID, 0, 0)
		assert.ErrorIs(t, err, models.ErrNoValidScores)
	})

	t.Run("finalize without a preview is rejected", func(t *testing.T) {
		env := newDrawTestEnv(t, []*models.ScoreEntry{
			scoreEntry("u1", "March 2025", 10, 20, 30),
		})
		draw, err := env.service.OpenCycle(ctx, "March 2025")
		require.NoError(t, err)

		_, err = env.service.FinalizeDraft(ctx, draw.ID)
		assert.Error(t, err)
	})

	t.Run("analysis, finalize, verify and publish", func(t *testing.T) {
		// u1 and u2 both submit all five eventual winning numbers
		env := newDrawTestEnv(t, []*models.ScoreEntry{
			scoreEntry("u1", "March 2025", 10, 20, 30, 40, 50),
			scoreEntry("u2", "March 2025", 10, 20, 30, 40, 50),
		})
		draw, err := env.service.OpenCycle(ctx, "March 2025")
		require.NoError(t, err)

		preview, err := env.service.RunAnalysis(ctx, draw.ID, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, []int{10, 20, 30, 40, 50}, preview.Analysis.WinningNumbers)
		assert.Equal(t, int64(100), preview.SubscriberCount)
		assert.InDelta(t, 1000.0, preview.Pools.BasePool.InexactFloat64(), 0.001)

		// Preview persisted nothing
		winners, err := env.service.GetWinnersByDrawID(ctx, draw.ID)
		require.NoError(t, err)
		assert.Empty(t, winners)

		finalized, err := env.service.FinalizeDraft(ctx, draw.ID)
		require.NoError(t, err)
		assert.Equal(t, models.DrawStatusCompleted, finalized.Status)
		assert.Equal(t, 2, finalized.Tier1Winners)
		assert.Equal(t, 2, finalized.TotalParticipants)
		assert.InDelta(t, 400.0, finalized.Tier1Pool, 0.001)

		winners, err = env.service.GetWinnersByDrawID(ctx, draw.ID)
		require.NoError(t, err)
		require.Len(t, winners, 2)
		for _, w := range winners {
			assert.Equal(t, 1, w.Tier)
			assert.InDelta(t, 200.0, w.GrossPrize, 0.001)
			assert.InDelta(t, 20.0, w.CharityAmount, 0.001)
			assert.InDelta(t, 180.0, w.NetPayout, 0.001)
			assert.Equal(t, models.VerificationPending, w.VerificationStatus)
		}

		// Donations were committed against the default charity
		unsettled, err := env.donations.FindUnsettledByCharity(ctx, "charity-1")
		require.NoError(t, err)
		assert.Len(t, unsettled, 2)

		// Subscriptions were consumed
		active, err := env.subs.CountActive(ctx)
		require.NoError(t, err)
		assert.Zero(t, active)

		// Re-finalizing is rejected
		_, err = env.service.FinalizeDraft(ctx, draw.ID)
		assert.ErrorIs(t, err, models.ErrAlreadyFinalized)

		// Publishing with pending winners is blocked
		_, _, err = env.service.Publish(ctx, draw.ID)
		assert.ErrorIs(t, err, models.ErrUnverifiedWinnersRemain)

		for _, w := range winners {
			require.NoError(t, env.service.VerifyWinner(ctx, w.ID, models.VerificationVerified, "admin-1"))
		}

		published, next, err := env.service.Publish(ctx, draw.ID)
		require.NoError(t, err)
		assert.Equal(t, models.DrawStatusPublished, published.Status)
		assert.False(t, published.PublishedAt.IsZero())
		require.NotNil(t, next)
		assert.Equal(t, "April 2025", next.MonthYear)
		assert.Equal(t, models.DrawStatusOpen, next.Status)
	})

	t.Run("rejected winners block publishing", func(t *testing.T) {
		env := newDrawTestEnv(t, []*models.ScoreEntry{
			scoreEntry("u1", "March 2025", 10, 20, 30, 40, 50),
		})
		draw, err := env.service.OpenCycle(ctx, "March 2025")
		require.NoError(t, err)
		_, err = env.service.RunAnalysis(ctx, draw.ID, 0, 0)
		require.NoError(t, err)
		_, err = env.service.FinalizeDraft(ctx, draw.ID)
		require.NoError(t, err)

		winners, err := env.service.GetWinnersByDrawID(ctx, draw.ID)
		require.NoError(t, err)
		require.Len(t, winners, 1)
		require.NoError(t, env.service.VerifyWinner(ctx, winners[0].ID, models.VerificationRejected, "admin-1"))

		_, _, err = env.service.Publish(ctx, draw.ID)
		assert.ErrorIs(t, err, models.ErrUnverifiedWinnersRemain)
	})

	t.Run("unclaimed jackpot rolls into the next cycle", func(t *testing.T) {
		// nobody matches five numbers: winning set ends up [10,20,30,50,60]
		env := newDrawTestEnv(t, []*models.ScoreEntry{
			scoreEntry("u1", "March 2025", 10, 20, 30),
			scoreEntry("u2", "March 2025", 40, 50, 60),
		})
		draw, err := env.service.OpenCycle(ctx, "March 2025")
		require.NoError(t, err)
		preview, err := env.service.RunAnalysis(ctx, draw.ID, 0, 0)
		require.NoError(t, err)
		require.True(t, preview.Simulation.JackpotRollover.IsPositive())

		finalized, err := env.service.FinalizeDraft(ctx, draw.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, finalized.Tier1Winners)
		assert.InDelta(t, 400.0, finalized.JackpotRollover, 0.001)

		pending, err := env.rollovers.FindUnconsumedByDestination(ctx, "April 2025")
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.InDelta(t, 400.0, pending[0].RolloverAmount, 0.001)
		assert.Equal(t, draw.ID, pending[0].SourceDrawID)

		// u1 is the only tier-3 winner; verify and publish
		winners, err := env.service.GetWinnersByDrawID(ctx, draw.ID)
		require.NoError(t, err)
		for _, w := range winners {
			require.NoError(t, env.service.VerifyWinner(ctx, w.ID, models.VerificationVerified, "admin-1"))
		}
		published, next, err := env.service.Publish(ctx, draw.ID)
		require.NoError(t, err)
		require.NotNil(t, next)
		assert.InDelta(t, published.JackpotRollover, next.JackpotCarryoverIn, 0.001)
	})

	t.Run("reset restores a completed draw to open", func(t *testing.T) {
		env := newDrawTestEnv(t, []*models.ScoreEntry{
			scoreEntry("u1", "March 2025", 10, 20, 30, 40, 50),
		})
		draw, err := env.service.OpenCycle(ctx, "March 2025")
		require.NoError(t, err)
		_, err = env.service.RunAnalysis(ctx, draw.ID, 0, 0)
		require.NoError(t, err)
		_, err = env.service.FinalizeDraft(ctx, draw.ID)
		require.NoError(t, err)

		reset, err := env.service.Reset(ctx, draw.ID)
		require.NoError(t, err)
		assert.Equal(t, models.DrawStatusOpen, reset.Status)
		assert.Empty(t, reset.WinningNumbers)
		assert.Zero(t, reset.TotalPrizePool)
		assert.NotEmpty(t, reset.ExecutionLog, "reset must leave an audit trail")

		winners, err := env.service.GetWinnersByDrawID(ctx, draw.ID)
		require.NoError(t, err)
		assert.Empty(t, winners)

		active, err := env.subs.CountActive(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(100), active)

		// the draw can be run again after a fresh analysis
		_, err = env.service.RunAnalysis(ctx, draw.ID, 0, 0)
		require.NoError(t, err)
		_, err = env.service.FinalizeDraft(ctx, draw.ID)
		require.NoError(t, err)
	})

	t.Run("reset of an untouched draw is rejected", func(t *testing.T) {
		env := newDrawTestEnv(t, nil)
		draw, err := env.service.OpenCycle(ctx, "March 2025")
		require.NoError(t, err)
		_, err = env.service.Reset(ctx, draw.ID)
		assert.Error(t, err)
	})

	t.Run("verification is immutable after publish", func(t *testing.T) {
		env := newDrawTestEnv(t, []*models.ScoreEntry{
			scoreEntry("u1", "March 2025", 10, 20, 30, 40, 50),
		})
		draw, err := env.service.OpenCycle(ctx, "March 2025")
		require.NoError(t, err)
		_, err = env.service.RunAnalysis(ctx, draw.ID, 0, 0)
		require.NoError(t, err)
		_, err = env.service.FinalizeDraft(ctx, draw.ID)
		require.NoError(t, err)

		winners, err := env.service.GetWinnersByDrawID(ctx, draw.ID)
		require.NoError(t, err)
		require.Len(t, winners, 1)
		require.NoError(t, env.service.VerifyWinner(ctx, winners[0].ID, models.VerificationVerified, "admin-1"))
		_, _, err = env.service.Publish(ctx, draw.ID)
		require.NoError(t, err)

		err = env.service.VerifyWinner(ctx, winners[0].ID, models.VerificationRejected, "admin-2")
		assert.Error(t, err)
	})
}
