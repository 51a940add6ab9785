package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/brightpools/charity-draw-backend/internal/models"
	"github.com/brightpools/charity-draw-backend/internal/repositories"
	"github.com/brightpools/charity-draw-backend/pkg/paygate"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure SettlementServiceImpl implements SettlementService
var _ SettlementService = (*SettlementServiceImpl)(nil)

// SettlementServiceImpl handles winner payouts and charity donation settlement.
type SettlementServiceImpl struct {
	winnerRepo   repositories.WinnerRepository
	donationRepo repositories.DonationRepository
	payoutRepo   repositories.CharityPayoutRepository
	gateway      PaymentGateway
}

// NewSettlementService creates a new SettlementServiceImpl
func NewSettlementService(
	winnerRepo repositories.WinnerRepository,
	donationRepo repositories.DonationRepository,
	payoutRepo repositories.CharityPayoutRepository,
	gateway PaymentGateway,
) *SettlementServiceImpl {
	return &SettlementServiceImpl{
		winnerRepo:   winnerRepo,
		donationRepo: donationRepo,
		payoutRepo:   payoutRepo,
		gateway:      gateway,
	}
}

// mapGatewayErr normalizes provider failures into the service error taxonomy.
func mapGatewayErr(err error) error {
	if errors.Is(err, paygate.ErrTimeout) {
		return fmt.Errorf("%w: %s", models.ErrExternalTimeout, err)
	}
	return fmt.Errorf("%w: %s", models.ErrExternalPaymentFailure, err)
}

// MarkWinnerPaid records a manual settlement. The reference is mandatory:
// it is the audit trail linking the record to the real-world transfer.
func (s *SettlementServiceImpl) MarkWinnerPaid(ctx context.Context, winnerID primitive.ObjectID, reference string) error {
	if strings.TrimSpace(reference) == "" {
		return models.ErrMissingReference
	}

	winner, err := s.winnerRepo.FindByID(ctx, winnerID)
	if err != nil {
		return fmt.Errorf("winner not found: %w", err)
	}
	if winner.VerificationStatus != models.VerificationVerified {
		return fmt.Errorf("winner %s is not verified", winnerID.Hex())
	}

	if err := s.winnerRepo.MarkPaid(ctx, winnerID, reference); err != nil {
		return fmt.Errorf("failed to mark winner paid: %w", err)
	}
	slog.Info("Winner settled manually", "winnerId", winnerID, "reference", reference)
	return nil
}

// MarkWinnersPaidBatch settles a batch of one draw's winners with a shared
// reference. The write is all-or-nothing: if any listed winner is already
// paid, unverified or belongs to another draw, nothing changes.
func (s *SettlementServiceImpl) MarkWinnersPaidBatch(ctx context.Context, drawID primitive.ObjectID, winnerIDs []primitive.ObjectID, reference string) error {
	if strings.TrimSpace(reference) == "" {
		return models.ErrMissingReference
	}
	if len(winnerIDs) == 0 {
		return errors.New("no winners listed")
	}

	if err := s.winnerRepo.MarkManyPaid(ctx, drawID, winnerIDs, reference); err != nil {
		if errors.Is(err, models.ErrPersistenceConflict) {
			return fmt.Errorf("%w: batch not applied", err)
		}
		return fmt.Errorf("failed to settle winner batch: %w", err)
	}
	slog.Info("Winner batch settled", "drawId", drawID, "count", len(winnerIDs), "reference", reference)
	return nil
}

// StartWinnerCheckout opens a provider checkout session for a verified,
// unpaid winner with a linked payout account. The winner stays UNPAID until
// the provider confirms.
func (s *SettlementServiceImpl) StartWinnerCheckout(ctx context.Context, winnerID primitive.ObjectID) (*paygate.Session, error) {
	winner, err := s.winnerRepo.FindByID(ctx, winnerID)
	if err != nil {
		return nil, fmt.Errorf("winner not found: %w", err)
	}
	if winner.VerificationStatus != models.VerificationVerified {
		return nil, fmt.Errorf("winner %s is not verified", winnerID.Hex())
	}
	if winner.PaymentStatus == models.PaymentPaid {
		return nil, fmt.Errorf("%w: winner already paid", models.ErrPersistenceConflict)
	}
	if winner.PayoutAccountID == "" {
		return nil, errors.New("winner has no linked payout account")
	}

	amount := decimal.NewFromFloat(winner.NetPayout)
	label := fmt.Sprintf("prize-%s", winnerID.Hex())
	session, err := s.gateway.CreateSession(ctx, winner.PayoutAccountID, amount, label)
	if err != nil {
		slog.Error("Winner checkout session failed", "error", err, "winnerId", winnerID)
		return nil, mapGatewayErr(err)
	}

	slog.Info("Winner checkout session created",
		"winnerId", winnerID, "sessionId", session.ID, "amount", amount.StringFixed(2))
	return session, nil
}

// ConfirmWinnerPayment finalizes a winner settlement from the provider
// callback.
func (s *SettlementServiceImpl) ConfirmWinnerPayment(ctx context.Context, winnerID primitive.ObjectID, providerRef string) error {
	if strings.TrimSpace(providerRef) == "" {
		return models.ErrMissingReference
	}
	if err := s.winnerRepo.MarkPaid(ctx, winnerID, providerRef); err != nil {
		return fmt.Errorf("failed to confirm winner payment: %w", err)
	}
	slog.Info("Winner payment confirmed", "winnerId", winnerID, "providerRef", providerRef)
	return nil
}

// collectUnsettled aggregates a charity's unsettled donations, failing if
// there is nothing to settle.
func (s *SettlementServiceImpl) collectUnsettled(ctx context.Context, charityID string) ([]*models.Donation, decimal.Decimal, error) {
	donations, err := s.donationRepo.FindUnsettledByCharity(ctx, charityID)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to fetch unsettled donations: %w", err)
	}
	if len(donations) == 0 {
		return nil, decimal.Zero, fmt.Errorf("no unsettled donations for charity %s", charityID)
	}
	total := decimal.Zero
	for _, d := range donations {
		total = total.Add(decimal.NewFromFloat(d.Amount))
	}
	return donations, total, nil
}

// StartCharityCheckout aggregates a charity's unsettled donations into a
// pending payout and opens a checkout session. If the session request fails
// the pending payout is rolled back so the donations can be retried.
func (s *SettlementServiceImpl) StartCharityCheckout(ctx context.Context, charityID, payeeAccount string) (*models.CharityPayout, *paygate.Session, error) {
	if payeeAccount == "" {
		return nil, nil, errors.New("payee account is required")
	}

	donations, total, err := s.collectUnsettled(ctx, charityID)
	if err != nil {
		return nil, nil, err
	}
	donationIDs := make([]primitive.ObjectID, len(donations))
	for i, d := range donations {
		donationIDs[i] = d.ID
	}

	payout := &models.CharityPayout{
		CharityID:         charityID,
		Amount:            total.InexactFloat64(),
		Status:            models.PayoutPending,
		SourceDonationIDs: donationIDs,
	}
	if err := s.payoutRepo.Create(ctx, payout); err != nil {
		return nil, nil, fmt.Errorf("failed to create pending payout: %w", err)
	}
	if err := s.donationRepo.MarkSettled(ctx, donationIDs, payout.ID); err != nil {
		if delErr := s.payoutRepo.Delete(ctx, payout.ID); delErr != nil {
			slog.Error("Failed to roll back pending payout", "error", delErr, "payoutId", payout.ID)
		}
		return nil, nil, fmt.Errorf("failed to reserve donations: %w", err)
	}

	label := fmt.Sprintf("charity-%s", payout.ID.Hex())
	session, err := s.gateway.CreateSession(ctx, payeeAccount, total, label)
	if err != nil {
		slog.Error("Charity checkout session failed; rolling back",
			"error", err, "charityId", charityID, "payoutId", payout.ID)
		if rbErr := s.donationRepo.MarkUnsettled(ctx, payout.ID); rbErr != nil {
			slog.Error("Failed to release donations during rollback", "error", rbErr, "payoutId", payout.ID)
		}
		if rbErr := s.payoutRepo.Delete(ctx, payout.ID); rbErr != nil {
			slog.Error("Failed to delete pending payout during rollback", "error", rbErr, "payoutId", payout.ID)
		}
		return nil, nil, mapGatewayErr(err)
	}

	slog.Info("Charity checkout session created",
		"charityId", charityID,
		"payoutId", payout.ID,
		"sessionId", session.ID,
		"donations", len(donations),
		"amount", total.StringFixed(2))
	return payout, session, nil
}

// ConfirmCharityPayment finalizes a pending charity payout from the provider
// callback.
func (s *SettlementServiceImpl) ConfirmCharityPayment(ctx context.Context, payoutID primitive.ObjectID, providerRef string) error {
	if strings.TrimSpace(providerRef) == "" {
		return models.ErrMissingReference
	}
	if err := s.payoutRepo.MarkPaid(ctx, payoutID, providerRef); err != nil {
		return fmt.Errorf("failed to confirm charity payment: %w", err)
	}
	slog.Info("Charity payout confirmed", "payoutId", payoutID, "providerRef", providerRef)
	return nil
}

// SettleCharityManual aggregates a charity's unsettled donations into a
// payout settled immediately with an admin-supplied reference, for transfers
// executed outside the payment provider.
func (s *SettlementServiceImpl) SettleCharityManual(ctx context.Context, charityID, reference string) (*models.CharityPayout, error) {
	if strings.TrimSpace(reference) == "" {
		return nil, models.ErrMissingReference
	}

	donations, total, err := s.collectUnsettled(ctx, charityID)
	if err != nil {
		return nil, err
	}
	donationIDs := make([]primitive.ObjectID, len(donations))
	for i, d := range donations {
		donationIDs[i] = d.ID
	}

	payout := &models.CharityPayout{
		CharityID:         charityID,
		Amount:            total.InexactFloat64(),
		Status:            models.PayoutPending,
		SourceDonationIDs: donationIDs,
	}
	if err := s.payoutRepo.Create(ctx, payout); err != nil {
		return nil, fmt.Errorf("failed to create payout: %w", err)
	}
	if err := s.donationRepo.MarkSettled(ctx, donationIDs, payout.ID); err != nil {
		if delErr := s.payoutRepo.Delete(ctx, payout.ID); delErr != nil {
			slog.Error("Failed to roll back payout", "error", delErr, "payoutId", payout.ID)
		}
		return nil, fmt.Errorf("failed to reserve donations: %w", err)
	}
	if err := s.payoutRepo.MarkPaid(ctx, payout.ID, reference); err != nil {
		return nil, fmt.Errorf("failed to mark payout paid: %w", err)
	}
	payout.Status = models.PayoutPaid
	payout.PayoutRef = reference

	slog.Info("Charity settled manually",
		"charityId", charityID, "payoutId", payout.ID, "donations", len(donations), "amount", total.StringFixed(2))
	return payout, nil
}

// GetCharityPayouts lists the payout history for a charity.
func (s *SettlementServiceImpl) GetCharityPayouts(ctx context.Context, charityID string) ([]*models.CharityPayout, error) {
	payouts, err := s.payoutRepo.FindByCharity(ctx, charityID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve payouts: %w", err)
	}
	return payouts, nil
}
