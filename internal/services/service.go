package services

import (
	"context"

	"github.com/brightpools/charity-draw-backend/internal/models"
	"github.com/brightpools/charity-draw-backend/pkg/paygate"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DrawService defines the interface for the draw lifecycle
type DrawService interface {
	// RunAnalysis computes a read-only preview of the draw against live data.
	RunAnalysis(ctx context.Context, drawID primitive.ObjectID, rangeMin, rangeMax int) (*DrawComputation, error)

	// FinalizeDraft persists the previewed winners and completes the draw.
	FinalizeDraft(ctx context.Context, drawID primitive.ObjectID) (*models.DrawCycle, error)

	// Publish makes a verified draw immutable and opens the next cycle.
	Publish(ctx context.Context, drawID primitive.ObjectID) (*models.DrawCycle, *models.DrawCycle, error)

	// Reset destroys a draw's results and returns the cycle to a fresh
	// pre-draw state. Irreversible.
	Reset(ctx context.Context, drawID primitive.ObjectID) (*models.DrawCycle, error)

	// VerifyWinner records the admin verification decision for a winner.
	VerifyWinner(ctx context.Context, winnerID primitive.ObjectID, status models.VerificationStatus, actorID string) error

	OpenCycle(ctx context.Context, monthYear string) (*models.DrawCycle, error)
	GetCurrentCycle(ctx context.Context) (*models.DrawCycle, error)
	GetCycleByID(ctx context.Context, drawID primitive.ObjectID) (*models.DrawCycle, error)
	GetCycles(ctx context.Context) ([]*models.DrawCycle, error)
	GetWinnersByDrawID(ctx context.Context, drawID primitive.ObjectID) ([]*models.WinnerEntry, error)
}

// SettlementService defines the interface for winner and charity settlement
type SettlementService interface {
	// MarkWinnerPaid settles a winner manually with an admin-supplied
	// payment reference.
	MarkWinnerPaid(ctx context.Context, winnerID primitive.ObjectID, reference string) error

	// MarkWinnersPaidBatch settles a batch of one draw's winners with a
	// shared reference; all-or-nothing.
	MarkWinnersPaidBatch(ctx context.Context, drawID primitive.ObjectID, winnerIDs []primitive.ObjectID, reference string) error

	// StartWinnerCheckout opens a provider checkout session for a winner
	// with a linked payout account.
	StartWinnerCheckout(ctx context.Context, winnerID primitive.ObjectID) (*paygate.Session, error)

	// ConfirmWinnerPayment finalizes a winner settlement from the provider
	// callback.
	ConfirmWinnerPayment(ctx context.Context, winnerID primitive.ObjectID, providerRef string) error

	// StartCharityCheckout aggregates a charity's unsettled donations into a
	// pending payout and opens a checkout session; the pending record is
	// rolled back if the session request fails.
	StartCharityCheckout(ctx context.Context, charityID, payeeAccount string) (*models.CharityPayout, *paygate.Session, error)

	// ConfirmCharityPayment finalizes a pending charity payout from the
	// provider callback.
	ConfirmCharityPayment(ctx context.Context, payoutID primitive.ObjectID, providerRef string) error

	// SettleCharityManual aggregates a charity's unsettled donations into a
	// payout settled immediately with an admin-supplied reference.
	SettleCharityManual(ctx context.Context, charityID, reference string) (*models.CharityPayout, error)

	GetCharityPayouts(ctx context.Context, charityID string) ([]*models.CharityPayout, error)
}

// SettingsService defines the interface for global draw settings
type SettingsService interface {
	GetSettings(ctx context.Context) (*models.DrawSettings, error)
	UpdateSettings(ctx context.Context, settings *models.DrawSettings, actorID string) error
}

// AuthService defines the interface for admin authentication
type AuthService interface {
	Login(ctx context.Context, req *models.LoginRequest) (string, error) // returns a JWT
}

// PaymentGateway is the payment-initiation collaborator: it turns an amount
// and payee into a redirect URL and later notifies success or failure out of
// band. pkg/paygate implements it; tests inject fakes.
type PaymentGateway interface {
	CreateSession(ctx context.Context, payeeAccount string, amount decimal.Decimal, label string) (*paygate.Session, error)
}
