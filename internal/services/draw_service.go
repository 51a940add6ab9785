package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/brightpools/charity-draw-backend/internal/engine"
	"github.com/brightpools/charity-draw-backend/internal/models"
	"github.com/brightpools/charity-draw-backend/internal/repositories"
	"github.com/brightpools/charity-draw-backend/internal/utils"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure DrawServiceImpl implements DrawService
var _ DrawService = (*DrawServiceImpl)(nil)

// DrawComputation is the outcome of one RunAnalysis preview. It is cached
// per draw for the admin session so FinalizeDraft persists exactly what the
// admin reviewed, not a fresh snapshot.
type DrawComputation struct {
	DrawID          primitive.ObjectID       `json:"drawId"`
	MonthYear       string                   `json:"monthYear"`
	Analysis        *engine.Analysis         `json:"analysis"`
	Pools           engine.PoolBreakdown     `json:"pools"`
	Simulation      *engine.SimulationResult `json:"simulation"`
	Participants    int                      `json:"participants"`
	SubscriberCount int64                    `json:"subscriberCount"`
	ComputedAt      time.Time                `json:"computedAt"`

	settings     *models.DrawSettings
	carryoverIDs []primitive.ObjectID
}

// DrawServiceImpl owns the draw state machine and orchestrates the pure
// engine against live data snapshots.
type DrawServiceImpl struct {
	drawRepo         repositories.DrawCycleRepository
	winnerRepo       repositories.WinnerRepository
	donationRepo     repositories.DonationRepository
	scoreRepo        repositories.ScoreRepository
	subscriptionRepo repositories.SubscriptionRepository
	settingsRepo     repositories.SettingsRepository
	rolloverRepo     repositories.JackpotRolloverRepository

	now func() time.Time

	mu       sync.Mutex
	previews map[primitive.ObjectID]*DrawComputation
}

// NewDrawService creates a new DrawServiceImpl
func NewDrawService(
	drawRepo repositories.DrawCycleRepository,
	winnerRepo repositories.WinnerRepository,
	donationRepo repositories.DonationRepository,
	scoreRepo repositories.ScoreRepository,
	subscriptionRepo repositories.SubscriptionRepository,
	settingsRepo repositories.SettingsRepository,
	rolloverRepo repositories.JackpotRolloverRepository,
) *DrawServiceImpl {
	return &DrawServiceImpl{
		drawRepo:         drawRepo,
		winnerRepo:       winnerRepo,
		donationRepo:     donationRepo,
		scoreRepo:        scoreRepo,
		subscriptionRepo: subscriptionRepo,
		settingsRepo:     settingsRepo,
		rolloverRepo:     rolloverRepo,
		now:              time.Now,
		previews:         make(map[primitive.ObjectID]*DrawComputation),
	}
}

// OpenCycle creates a fresh OPEN cycle for the given month-year label.
func (s *DrawServiceImpl) OpenCycle(ctx context.Context, monthYear string) (*models.DrawCycle, error) {
	if _, err := utils.ParseMonthYear(monthYear); err != nil {
		return nil, err
	}

	existing, err := s.drawRepo.FindByMonthYear(ctx, monthYear)
	if err == nil && existing != nil {
		return existing, fmt.Errorf("a draw cycle already exists for %s", monthYear)
	}
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to check for existing cycle: %w", err)
	}

	if current, err := s.drawRepo.FindCurrent(ctx); err == nil && current != nil {
		return nil, fmt.Errorf("cycle %s is still %s; publish or reset it first", current.MonthYear, current.Status)
	} else if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to check current cycle: %w", err)
	}

	cycle := &models.DrawCycle{
		MonthYear: monthYear,
		Status:    models.DrawStatusOpen,
	}
	if err := s.drawRepo.Create(ctx, cycle); err != nil {
		slog.Error("Failed to create draw cycle", "error", err, "monthYear", monthYear)
		return nil, fmt.Errorf("failed to create draw cycle: %w", err)
	}
	slog.Info("Draw cycle opened", "drawId", cycle.ID, "monthYear", monthYear)
	return cycle, nil
}

// RunAnalysis computes a read-only preview: winning numbers, pools and the
// full match simulation, against the current live data. Nothing persists.
func (s *DrawServiceImpl) RunAnalysis(ctx context.Context, drawID primitive.ObjectID, rangeMin, rangeMax int) (*DrawComputation, error) {
	draw, err := s.drawRepo.FindByID(ctx, drawID)
	if err != nil {
		return nil, fmt.Errorf("draw not found: %w", err)
	}
	if draw.Status != models.DrawStatusOpen {
		return nil, fmt.Errorf("%w: draw %s is %s", models.ErrAlreadyFinalized, draw.MonthYear, draw.Status)
	}

	future, err := utils.MonthYearInFuture(draw.MonthYear, s.now())
	if err != nil {
		return nil, err
	}
	if future {
		return nil, fmt.Errorf("%w: %s", models.ErrFutureCycleLocked, draw.MonthYear)
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		slog.Error("Failed to fetch draw settings", "error", err)
		return nil, fmt.Errorf("failed to fetch draw settings: %w", err)
	}
	if rangeMin == 0 {
		rangeMin = settings.ScoreRangeMin
	}
	if rangeMax == 0 {
		rangeMax = settings.ScoreRangeMax
	}

	entries, err := s.scoreRepo.FindByMonthYear(ctx, draw.MonthYear)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch scores: %w", err)
	}

	var allScores []int
	participants := make([]engine.Participant, 0, len(entries))
	for _, e := range entries {
		allScores = append(allScores, e.Scores...)
		participants = append(participants, engine.Participant{UserID: e.UserID, Scores: e.Scores})
	}

	analysis, err := engine.Analyze(allScores, rangeMin, rangeMax)
	if err != nil {
		return nil, err
	}
	if analysis.DistinctValues < 5 {
		slog.Warn("Fewer than 5 distinct scores; winning numbers degraded",
			"drawId", drawID, "distinct", analysis.DistinctValues)
	}

	subscriberCount, err := s.subscriptionRepo.CountActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count active subscribers: %w", err)
	}

	carryover, carryoverIDs, err := s.loadCarryover(ctx, draw.MonthYear)
	if err != nil {
		return nil, err
	}

	pools := engine.ComputePools(
		subscriberCount,
		decimal.NewFromFloat(settings.BaseAmountPerSubscriber),
		engine.TierPercents{Tier1: settings.Tier1Percent, Tier2: settings.Tier2Percent, Tier3: settings.Tier3Percent},
		carryover,
		decimal.NewFromFloat(settings.JackpotCap),
	)
	simulation := engine.Simulate(participants, analysis.WinningNumbers, pools, settings.CharityPercent)

	computation := &DrawComputation{
		DrawID:          drawID,
		MonthYear:       draw.MonthYear,
		Analysis:        analysis,
		Pools:           pools,
		Simulation:      simulation,
		Participants:    len(participants),
		SubscriberCount: subscriberCount,
		ComputedAt:      s.now(),
		settings:        settings,
		carryoverIDs:    carryoverIDs,
	}

	s.mu.Lock()
	s.previews[drawID] = computation
	s.mu.Unlock()

	slog.Info("Draw analysis computed",
		"drawId", drawID,
		"monthYear", draw.MonthYear,
		"participants", len(participants),
		"winningNumbers", analysis.WinningNumbers,
		"totalPool", pools.TotalAvailable.StringFixed(2))
	return computation, nil
}

// loadCarryover sums the unconsumed rollovers destined for this cycle.
func (s *DrawServiceImpl) loadCarryover(ctx context.Context, monthYear string) (decimal.Decimal, []primitive.ObjectID, error) {
	rollovers, err := s.rolloverRepo.FindUnconsumedByDestination(ctx, monthYear)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return decimal.Zero, nil, fmt.Errorf("failed to fetch incoming rollovers: %w", err)
	}
	total := decimal.Zero
	var ids []primitive.ObjectID
	for _, r := range rollovers {
		total = total.Add(decimal.NewFromFloat(r.RolloverAmount))
		ids = append(ids, r.ID)
	}
	return total, ids, nil
}

// FinalizeDraft turns the cached preview into persisted winner and donation
// records and completes the draw. Re-finalizing a completed draw is rejected;
// the admin must reset first.
func (s *DrawServiceImpl) FinalizeDraft(ctx context.Context, drawID primitive.ObjectID) (*models.DrawCycle, error) {
	draw, err := s.drawRepo.FindByID(ctx, drawID)
	if err != nil {
		return nil, fmt.Errorf("draw not found: %w", err)
	}
	if draw.Status != models.DrawStatusOpen {
		return draw, fmt.Errorf("%w: draw %s is %s", models.ErrAlreadyFinalized, draw.MonthYear, draw.Status)
	}

	s.mu.Lock()
	preview := s.previews[drawID]
	s.mu.Unlock()
	if preview == nil {
		return draw, errors.New("no analysis preview for this draw; run analysis first")
	}

	// Claim the draw before writing winners so two concurrent finalizes
	// cannot double-process.
	if err := s.drawRepo.UpdateStatusIf(ctx, drawID, models.DrawStatusOpen, models.DrawStatusCompleted); err != nil {
		return draw, fmt.Errorf("failed to complete draw: %w", err)
	}

	winners, donations := s.buildWinnerRecords(drawID, preview)
	if len(winners) > 0 {
		if err := s.winnerRepo.CreateMany(ctx, winners); err != nil {
			slog.Error("Failed to create winner records", "error", err, "drawId", drawID)
			return draw, fmt.Errorf("failed to create winner records: %w", err)
		}
		// Donations reference winner ids assigned by the insert.
		for i, w := range winners {
			donations[i].WinnerID = w.ID
		}
		if err := s.donationRepo.CreateMany(ctx, s.nonZeroDonations(donations)); err != nil {
			slog.Error("Failed to create donation records", "error", err, "drawId", drawID)
			return draw, fmt.Errorf("failed to create donation records: %w", err)
		}
	}

	if err := s.subscriptionRepo.MarkConsumed(ctx, drawID); err != nil {
		slog.Error("Failed to mark subscriptions consumed", "error", err, "drawId", drawID)
		return draw, fmt.Errorf("failed to consume subscriptions: %w", err)
	}
	if err := s.rolloverRepo.MarkConsumed(ctx, preview.carryoverIDs); err != nil {
		slog.Error("Failed to mark rollovers consumed", "error", err, "drawId", drawID)
	}

	sim := preview.Simulation
	if sim.JackpotRollover.IsPositive() {
		next, err := utils.NextMonthYear(draw.MonthYear)
		if err == nil {
			rollover := &models.JackpotRollover{
				SourceDrawID:         drawID,
				SourceMonthYear:      draw.MonthYear,
				RolloverAmount:       sim.JackpotRollover.InexactFloat64(),
				DestinationMonthYear: next,
			}
			if err := s.rolloverRepo.Create(ctx, rollover); err != nil {
				slog.Error("Failed to record jackpot rollover", "error", err, "drawId", drawID)
			}
		}
	}

	now := s.now()
	draw.Status = models.DrawStatusCompleted
	draw.WinningNumbers = preview.Analysis.WinningNumbers
	draw.BasePool = preview.Pools.BasePool.InexactFloat64()
	draw.Tier1Pool = preview.Pools.Tier1Pool.InexactFloat64()
	draw.Tier2Pool = preview.Pools.Tier2Pool.InexactFloat64()
	draw.Tier3Pool = preview.Pools.Tier3Pool.InexactFloat64()
	draw.TotalPrizePool = preview.Pools.TotalAvailable.InexactFloat64()
	draw.JackpotCarryoverIn = preview.Pools.JackpotCarryoverIn.InexactFloat64()
	draw.JackpotRollover = sim.JackpotRollover.InexactFloat64()
	draw.TotalParticipants = preview.Participants
	draw.Tier1Winners = sim.Tiers[1].WinnerCount
	draw.Tier2Winners = sim.Tiers[2].WinnerCount
	draw.Tier3Winners = sim.Tiers[3].WinnerCount
	draw.CompletedAt = now
	draw.ExecutionLog = append(draw.ExecutionLog,
		fmt.Sprintf("%s: finalized with %d winners across %d participants",
			now.Format(time.RFC3339), len(winners), preview.Participants))
	if err := s.drawRepo.Update(ctx, draw); err != nil {
		slog.Error("Failed to update completed draw", "error", err, "drawId", drawID)
		return draw, fmt.Errorf("failed to update draw: %w", err)
	}

	s.mu.Lock()
	delete(s.previews, drawID)
	s.mu.Unlock()

	slog.Info("Draw finalized", "drawId", drawID, "monthYear", draw.MonthYear, "winners", len(winners))
	return draw, nil
}

// buildWinnerRecords materializes WinnerEntry and Donation rows from the
// preview. Donations are index-aligned with winners; winner ids are filled
// in after the insert assigns them.
func (s *DrawServiceImpl) buildWinnerRecords(drawID primitive.ObjectID, preview *DrawComputation) ([]*models.WinnerEntry, []*models.Donation) {
	var winners []*models.WinnerEntry
	var donations []*models.Donation
	for _, m := range preview.Simulation.Matches {
		if m.Tier == 0 {
			continue
		}
		share := preview.Simulation.Tiers[m.Tier].PerWinner
		winners = append(winners, &models.WinnerEntry{
			DrawID:             drawID,
			UserID:             m.UserID,
			Tier:               m.Tier,
			MatchCount:         m.MatchCount,
			MatchedNumbers:     m.MatchedNumbers,
			GrossPrize:         share.Gross.InexactFloat64(),
			CharityAmount:      share.Charity.InexactFloat64(),
			NetPayout:          share.Net.InexactFloat64(),
			VerificationStatus: models.VerificationPending,
			PaymentStatus:      models.PaymentUnpaid,
		})
		donations = append(donations, &models.Donation{
			DrawID:    drawID,
			CharityID: preview.settings.DefaultCharityID,
			Amount:    share.Charity.InexactFloat64(),
		})
	}
	return winners, donations
}

func (s *DrawServiceImpl) nonZeroDonations(donations []*models.Donation) []*models.Donation {
	out := make([]*models.Donation, 0, len(donations))
	for _, d := range donations {
		if d.Amount > 0 {
			out = append(out, d)
		}
	}
	return out
}

// Publish makes a completed, fully verified draw immutable and opens the
// next month's cycle. Failing to open the next cycle does not roll back the
// publish; it is logged and surfaced through the execution log.
func (s *DrawServiceImpl) Publish(ctx context.Context, drawID primitive.ObjectID) (*models.DrawCycle, *models.DrawCycle, error) {
	draw, err := s.drawRepo.FindByID(ctx, drawID)
	if err != nil {
		return nil, nil, fmt.Errorf("draw not found: %w", err)
	}
	if draw.Status != models.DrawStatusCompleted {
		return draw, nil, fmt.Errorf("draw is not in COMPLETED state (current: %s)", draw.Status)
	}

	notVerified, err := s.winnerRepo.CountNotVerified(ctx, drawID)
	if err != nil {
		return draw, nil, fmt.Errorf("failed to check winner verification: %w", err)
	}
	if notVerified > 0 {
		return draw, nil, fmt.Errorf("%w: %d winner(s) not verified", models.ErrUnverifiedWinnersRemain, notVerified)
	}

	if err := s.drawRepo.UpdateStatusIf(ctx, drawID, models.DrawStatusCompleted, models.DrawStatusPublished); err != nil {
		return draw, nil, fmt.Errorf("failed to publish draw: %w", err)
	}

	now := s.now()
	draw.Status = models.DrawStatusPublished
	draw.PublishedAt = now
	draw.ExecutionLog = append(draw.ExecutionLog, fmt.Sprintf("%s: published", now.Format(time.RFC3339)))

	// Best effort: open next month's cycle. The publish stands either way.
	var nextCycle *models.DrawCycle
	nextLabel, err := utils.NextMonthYear(draw.MonthYear)
	if err == nil {
		nextCycle = &models.DrawCycle{
			MonthYear:          nextLabel,
			Status:             models.DrawStatusOpen,
			JackpotCarryoverIn: draw.JackpotRollover,
		}
		if createErr := s.drawRepo.Create(ctx, nextCycle); createErr != nil {
			slog.Error("Failed to open next cycle after publish", "error", createErr, "monthYear", nextLabel)
			draw.ExecutionLog = append(draw.ExecutionLog,
				fmt.Sprintf("%s: WARNING: could not open next cycle %s: %s", now.Format(time.RFC3339), nextLabel, createErr))
			nextCycle = nil
		}
	} else {
		slog.Error("Failed to derive next cycle label", "error", err, "monthYear", draw.MonthYear)
	}

	if err := s.drawRepo.Update(ctx, draw); err != nil {
		slog.Error("Failed to update published draw", "error", err, "drawId", drawID)
	}

	slog.Info("Draw published", "drawId", drawID, "monthYear", draw.MonthYear, "nextCycleOpened", nextCycle != nil)
	return draw, nextCycle, nil
}

// Reset destroys the results of a completed or published draw and returns
// the cycle to a fresh OPEN state: winners and draft donations are deleted,
// rollovers sourced from this draw are removed and subscriptions it consumed
// are reactivated. The caller boundary is responsible for explicit
// confirmation; this operation is irreversible.
func (s *DrawServiceImpl) Reset(ctx context.Context, drawID primitive.ObjectID) (*models.DrawCycle, error) {
	draw, err := s.drawRepo.FindByID(ctx, drawID)
	if err != nil {
		return nil, fmt.Errorf("draw not found: %w", err)
	}
	if draw.Status == models.DrawStatusOpen {
		return draw, errors.New("draw has not been finalized; nothing to reset")
	}

	if err := s.winnerRepo.DeleteByDrawID(ctx, drawID); err != nil {
		return draw, fmt.Errorf("failed to delete winners: %w", err)
	}
	if err := s.donationRepo.DeleteByDrawID(ctx, drawID); err != nil {
		return draw, fmt.Errorf("failed to delete draft donations: %w", err)
	}
	if err := s.rolloverRepo.DeleteBySourceDraw(ctx, drawID); err != nil {
		return draw, fmt.Errorf("failed to delete rollover records: %w", err)
	}
	if err := s.subscriptionRepo.ReactivateForDraw(ctx, drawID); err != nil {
		return draw, fmt.Errorf("failed to reactivate subscriptions: %w", err)
	}

	now := s.now()
	draw.Status = models.DrawStatusOpen
	draw.WinningNumbers = nil
	draw.BasePool = 0
	draw.Tier1Pool = 0
	draw.Tier2Pool = 0
	draw.Tier3Pool = 0
	draw.TotalPrizePool = 0
	draw.JackpotRollover = 0
	draw.TotalParticipants = 0
	draw.Tier1Winners = 0
	draw.Tier2Winners = 0
	draw.Tier3Winners = 0
	draw.CompletedAt = time.Time{}
	draw.PublishedAt = time.Time{}
	draw.ExecutionLog = append(draw.ExecutionLog, fmt.Sprintf("%s: RESET to open", now.Format(time.RFC3339)))
	if err := s.drawRepo.Update(ctx, draw); err != nil {
		return draw, fmt.Errorf("failed to reset draw: %w", err)
	}

	s.mu.Lock()
	delete(s.previews, drawID)
	s.mu.Unlock()

	slog.Warn("Draw reset", "drawId", drawID, "monthYear", draw.MonthYear)
	return draw, nil
}

// VerifyWinner records the admin decision for a pending winner.
func (s *DrawServiceImpl) VerifyWinner(ctx context.Context, winnerID primitive.ObjectID, status models.VerificationStatus, actorID string) error {
	if status != models.VerificationVerified && status != models.VerificationRejected {
		return fmt.Errorf("invalid verification status %q", status)
	}
	winner, err := s.winnerRepo.FindByID(ctx, winnerID)
	if err != nil {
		return fmt.Errorf("winner not found: %w", err)
	}
	draw, err := s.drawRepo.FindByID(ctx, winner.DrawID)
	if err != nil {
		return fmt.Errorf("draw not found: %w", err)
	}
	if draw.IsPublished() {
		return errors.New("draw is published; winners are immutable")
	}
	if err := s.winnerRepo.UpdateVerification(ctx, winnerID, status, actorID); err != nil {
		return fmt.Errorf("failed to update verification: %w", err)
	}
	slog.Info("Winner verification updated", "winnerId", winnerID, "status", status, "actor", actorID)
	return nil
}

// GetCurrentCycle returns the mutable cycle, status re-derived from the
// persisted record.
func (s *DrawServiceImpl) GetCurrentCycle(ctx context.Context) (*models.DrawCycle, error) {
	cycle, err := s.drawRepo.FindCurrent(ctx)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errors.New("no open or completed draw cycle")
		}
		return nil, fmt.Errorf("failed to fetch current cycle: %w", err)
	}
	return cycle, nil
}

// GetCycleByID returns one cycle.
func (s *DrawServiceImpl) GetCycleByID(ctx context.Context, drawID primitive.ObjectID) (*models.DrawCycle, error) {
	return s.drawRepo.FindByID(ctx, drawID)
}

// GetCycles lists all cycles, newest first.
func (s *DrawServiceImpl) GetCycles(ctx context.Context) ([]*models.DrawCycle, error) {
	return s.drawRepo.FindAll(ctx)
}

// GetWinnersByDrawID lists the winners of a draw.
func (s *DrawServiceImpl) GetWinnersByDrawID(ctx context.Context, drawID primitive.ObjectID) ([]*models.WinnerEntry, error) {
	winners, err := s.winnerRepo.FindByDrawID(ctx, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve winners: %w", err)
	}
	return winners, nil
}
