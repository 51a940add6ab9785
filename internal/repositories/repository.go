package repositories

import (
	"context"

	"github.com/brightpools/charity-draw-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DrawCycleRepository defines the interface for draw cycle persistence
type DrawCycleRepository interface {
	Create(ctx context.Context, cycle *models.DrawCycle) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.DrawCycle, error)
	FindByMonthYear(ctx context.Context, monthYear string) (*models.DrawCycle, error)
	// FindCurrent returns the single OPEN or COMPLETED cycle, if any.
	FindCurrent(ctx context.Context) (*models.DrawCycle, error)
	FindAll(ctx context.Context) ([]*models.DrawCycle, error)
	Update(ctx context.Context, cycle *models.DrawCycle) error
	// UpdateStatusIf performs a compare-and-set status transition and returns
	// models.ErrPersistenceConflict when the document is no longer in `from`.
	UpdateStatusIf(ctx context.Context, id primitive.ObjectID, from, to models.DrawStatus) error
}

// WinnerRepository defines the interface for winner entry persistence
type WinnerRepository interface {
	CreateMany(ctx context.Context, winners []*models.WinnerEntry) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.WinnerEntry, error)
	FindByDrawID(ctx context.Context, drawID primitive.ObjectID) ([]*models.WinnerEntry, error)
	// CountNotVerified counts winners of a draw whose verification status is
	// anything but VERIFIED. Publishing requires this to be zero.
	CountNotVerified(ctx context.Context, drawID primitive.ObjectID) (int64, error)
	UpdateVerification(ctx context.Context, id primitive.ObjectID, status models.VerificationStatus, actorID string) error
	// MarkPaid flips a single unpaid winner to PAID in one atomic update and
	// returns models.ErrPersistenceConflict if the winner was already paid.
	MarkPaid(ctx context.Context, id primitive.ObjectID, reference string) error
	// MarkManyPaid marks every listed winner of the draw paid with one shared
	// reference. All-or-nothing: nothing is written unless every id matches
	// an unpaid winner of that draw.
	MarkManyPaid(ctx context.Context, drawID primitive.ObjectID, ids []primitive.ObjectID, reference string) error
	DeleteByDrawID(ctx context.Context, drawID primitive.ObjectID) error
}

// DonationRepository defines the interface for donation commitment persistence
type DonationRepository interface {
	CreateMany(ctx context.Context, donations []*models.Donation) error
	FindUnsettledByCharity(ctx context.Context, charityID string) ([]*models.Donation, error)
	MarkSettled(ctx context.Context, ids []primitive.ObjectID, payoutID primitive.ObjectID) error
	MarkUnsettled(ctx context.Context, payoutID primitive.ObjectID) error
	DeleteByDrawID(ctx context.Context, drawID primitive.ObjectID) error
}

// CharityPayoutRepository defines the interface for charity payout persistence
type CharityPayoutRepository interface {
	Create(ctx context.Context, payout *models.CharityPayout) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.CharityPayout, error)
	FindByCharity(ctx context.Context, charityID string) ([]*models.CharityPayout, error)
	// MarkPaid transitions a PENDING payout to PAID with the provider
	// reference; an already-paid payout yields models.ErrPersistenceConflict.
	MarkPaid(ctx context.Context, id primitive.ObjectID, reference string) error
	// Delete removes a pending payout; used to roll back the record created
	// ahead of a failed payment-session request.
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ScoreRepository provides read access to submitted scores for a cycle
type ScoreRepository interface {
	FindByMonthYear(ctx context.Context, monthYear string) ([]*models.ScoreEntry, error)
}

// SubscriptionRepository defines the interface for subscription data
type SubscriptionRepository interface {
	CountActive(ctx context.Context) (int64, error)
	// MarkConsumed expires all active subscriptions against the given draw.
	MarkConsumed(ctx context.Context, drawID primitive.ObjectID) error
	// ReactivateForDraw restores only subscriptions expired by the given
	// draw, used when the draw is reset.
	ReactivateForDraw(ctx context.Context, drawID primitive.ObjectID) error
}

// SettingsRepository defines the interface for global draw settings
type SettingsRepository interface {
	Get(ctx context.Context) (*models.DrawSettings, error)
	Upsert(ctx context.Context, settings *models.DrawSettings) error
}

// JackpotRolloverRepository defines the interface for rollover records
type JackpotRolloverRepository interface {
	Create(ctx context.Context, rollover *models.JackpotRollover) error
	FindUnconsumedByDestination(ctx context.Context, monthYear string) ([]*models.JackpotRollover, error)
	MarkConsumed(ctx context.Context, ids []primitive.ObjectID) error
	DeleteBySourceDraw(ctx context.Context, drawID primitive.ObjectID) error
}

// AdminUserRepository defines the interface for admin account persistence
type AdminUserRepository interface {
	Create(ctx context.Context, adminUser *models.AdminUser) error
	FindByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.AdminUser, error)
}
