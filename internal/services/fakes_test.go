package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/brightpools/charity-draw-backend/internal/models"
	"github.com/brightpools/charity-draw-backend/pkg/paygate"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// In-memory repository fakes backing the service tests.

type fakeDrawRepo struct {
	mu    sync.Mutex
	draws map[primitive.ObjectID]*models.DrawCycle
}

func newFakeDrawRepo() *fakeDrawRepo {
	return &fakeDrawRepo{draws: make(map[primitive.ObjectID]*models.DrawCycle)}
}

func (r *fakeDrawRepo) Create(ctx context.Context, cycle *models.DrawCycle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cycle.ID = primitive.NewObjectID()
	cycle.CreatedAt = time.Now()
	copied := *cycle
	r.draws[cycle.ID] = &copied
	return nil
}

func (r *fakeDrawRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.DrawCycle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.draws[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *d
	return &copied, nil
}

func (r *fakeDrawRepo) FindByMonthYear(ctx context.Context, monthYear string) (*models.DrawCycle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.draws {
		if d.MonthYear == monthYear {
			copied := *d
			return &copied, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeDrawRepo) FindCurrent(ctx context.Context) (*models.DrawCycle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.draws {
		if d.Status == models.DrawStatusOpen || d.Status == models.DrawStatusCompleted {
			copied := *d
			return &copied, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeDrawRepo) FindAll(ctx context.Context) ([]*models.DrawCycle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.DrawCycle, 0, len(r.draws))
	for _, d := range r.draws {
		copied := *d
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeDrawRepo) Update(ctx context.Context, cycle *models.DrawCycle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.draws[cycle.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	cycle.UpdatedAt = time.Now()
	copied := *cycle
	r.draws[cycle.ID] = &copied
	return nil
}

func (r *fakeDrawRepo) UpdateStatusIf(ctx context.Context, id primitive.ObjectID, from, to models.DrawStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.draws[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if d.Status != from {
		return models.ErrPersistenceConflict
	}
	d.Status = to
	return nil
}

type fakeWinnerRepo struct {
	mu      sync.Mutex
	winners map[primitive.ObjectID]*models.WinnerEntry
}

func newFakeWinnerRepo() *fakeWinnerRepo {
	return &fakeWinnerRepo{winners: make(map[primitive.ObjectID]*models.WinnerEntry)}
}

func (r *fakeWinnerRepo) CreateMany(ctx context.Context, winners []*models.WinnerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range winners {
		w.ID = primitive.NewObjectID()
		w.CreatedAt = time.Now()
		copied := *w
		r.winners[w.ID] = &copied
	}
	return nil
}

func (r *fakeWinnerRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.WinnerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.winners[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *w
	return &copied, nil
}

func (r *fakeWinnerRepo) FindByDrawID(ctx context.Context, drawID primitive.ObjectID) ([]*models.WinnerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.WinnerEntry, 0)
	for _, w := range r.winners {
		if w.DrawID == drawID {
			copied := *w
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeWinnerRepo) CountNotVerified(ctx context.Context, drawID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, w := range r.winners {
		if w.DrawID == drawID && w.VerificationStatus != models.VerificationVerified {
			n++
		}
	}
	return n, nil
}

func (r *fakeWinnerRepo) UpdateVerification(ctx context.Context, id primitive.ObjectID, status models.VerificationStatus, actorID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.winners[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	w.VerificationStatus = status
	w.VerifiedBy = actorID
	w.VerifiedAt = time.Now()
	return nil
}

func (r *fakeWinnerRepo) MarkPaid(ctx context.Context, id primitive.ObjectID, reference string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.winners[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if w.PaymentStatus == models.PaymentPaid {
		return models.ErrPersistenceConflict
	}
	w.PaymentStatus = models.PaymentPaid
	w.PaymentReference = reference
	w.PaidAt = time.Now()
	return nil
}

func (r *fakeWinnerRepo) MarkManyPaid(ctx context.Context, drawID primitive.ObjectID, ids []primitive.ObjectID, reference string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		w, ok := r.winners[id]
		if !ok || w.DrawID != drawID || w.PaymentStatus == models.PaymentPaid {
			return models.ErrPersistenceConflict
		}
	}
	for _, id := range ids {
		w := r.winners[id]
		w.PaymentStatus = models.PaymentPaid
		w.PaymentReference = reference
		w.PaidAt = time.Now()
	}
	return nil
}

func (r *fakeWinnerRepo) DeleteByDrawID(ctx context.Context, drawID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, w := range r.winners {
		if w.DrawID == drawID {
			delete(r.winners, id)
		}
	}
	return nil
}

type fakeDonationRepo struct {
	mu        sync.Mutex
	donations map[primitive.ObjectID]*models.Donation
}

func newFakeDonationRepo() *fakeDonationRepo {
	return &fakeDonationRepo{donations: make(map[primitive.ObjectID]*models.Donation)}
}

func (r *fakeDonationRepo) CreateMany(ctx context.Context, donations []*models.Donation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range donations {
		d.ID = primitive.NewObjectID()
		d.CreatedAt = time.Now()
		copied := *d
		r.donations[d.ID] = &copied
	}
	return nil
}

func (r *fakeDonationRepo) FindUnsettledByCharity(ctx context.Context, charityID string) ([]*models.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Donation, 0)
	for _, d := range r.donations {
		if d.CharityID == charityID && !d.Settled {
			copied := *d
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeDonationRepo) MarkSettled(ctx context.Context, ids []primitive.ObjectID, payoutID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		d, ok := r.donations[id]
		if !ok {
			return mongo.ErrNoDocuments
		}
		d.Settled = true
		d.PayoutID = payoutID
	}
	return nil
}

func (r *fakeDonationRepo) MarkUnsettled(ctx context.Context, payoutID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.donations {
		if d.PayoutID == payoutID {
			d.Settled = false
			d.PayoutID = primitive.NilObjectID
		}
	}
	return nil
}

func (r *fakeDonationRepo) DeleteByDrawID(ctx context.Context, drawID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, d := range r.donations {
		if d.DrawID == drawID {
			delete(r.donations, id)
		}
	}
	return nil
}

type fakePayoutRepo struct {
	mu      sync.Mutex
	payouts map[primitive.ObjectID]*models.CharityPayout
}

func newFakePayoutRepo() *fakePayoutRepo {
	return &fakePayoutRepo{payouts: make(map[primitive.ObjectID]*models.CharityPayout)}
}

func (r *fakePayoutRepo) Create(ctx context.Context, payout *models.CharityPayout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	payout.ID = primitive.NewObjectID()
	payout.CreatedAt = time.Now()
	copied := *payout
	r.payouts[payout.ID] = &copied
	return nil
}

func (r *fakePayoutRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.CharityPayout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payouts[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *p
	return &copied, nil
}

func (r *fakePayoutRepo) FindByCharity(ctx context.Context, charityID string) ([]*models.CharityPayout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.CharityPayout, 0)
	for _, p := range r.payouts {
		if p.CharityID == charityID {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakePayoutRepo) MarkPaid(ctx context.Context, id primitive.ObjectID, reference string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payouts[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if p.Status == models.PayoutPaid {
		return models.ErrPersistenceConflict
	}
	p.Status = models.PayoutPaid
	p.PayoutRef = reference
	p.PaidAt = time.Now()
	return nil
}

func (r *fakePayoutRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.payouts, id)
	return nil
}

type fakeScoreRepo struct {
	entries []*models.ScoreEntry
}

func (r *fakeScoreRepo) FindByMonthYear(ctx context.Context, monthYear string) ([]*models.ScoreEntry, error) {
	out := make([]*models.ScoreEntry, 0)
	for _, e := range r.entries {
		if e.MonthYear == monthYear {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeSubscriptionRepo struct {
	mu            sync.Mutex
	activeCount   int64
	consumedBy    map[primitive.ObjectID]int64
	reactivations int
}

func newFakeSubscriptionRepo(active int64) *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{activeCount: active, consumedBy: make(map[primitive.ObjectID]int64)}
}

func (r *fakeSubscriptionRepo) CountActive(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeCount, nil
}

func (r *fakeSubscriptionRepo) MarkConsumed(ctx context.Context, drawID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.consumedBy[drawID] = r.activeCount
	r.activeCount = 0
	return nil
}

func (r *fakeSubscriptionRepo) ReactivateForDraw(ctx context.Context, drawID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activeCount += r.consumedBy[drawID]
	delete(r.consumedBy, drawID)
	r.reactivations++
	return nil
}

type fakeSettingsRepo struct {
	settings *models.DrawSettings
}

func (r *fakeSettingsRepo) Get(ctx context.Context) (*models.DrawSettings, error) {
	if r.settings == nil {
		return nil, mongo.ErrNoDocuments
	}
	copied := *r.settings
	return &copied, nil
}

func (r *fakeSettingsRepo) Upsert(ctx context.Context, settings *models.DrawSettings) error {
	settings.UpdatedAt = time.Now()
	copied := *settings
	r.settings = &copied
	return nil
}

type fakeRolloverRepo struct {
	mu        sync.Mutex
	rollovers map[primitive.ObjectID]*models.JackpotRollover
}

func newFakeRolloverRepo() *fakeRolloverRepo {
	return &fakeRolloverRepo{rollovers: make(map[primitive.ObjectID]*models.JackpotRollover)}
}

func (r *fakeRolloverRepo) Create(ctx context.Context, rollover *models.JackpotRollover) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rollover.ID = primitive.NewObjectID()
	rollover.CreatedAt = time.Now()
	copied := *rollover
	r.rollovers[rollover.ID] = &copied
	return nil
}

func (r *fakeRolloverRepo) FindUnconsumedByDestination(ctx context.Context, monthYear string) ([]*models.JackpotRollover, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.JackpotRollover, 0)
	for _, ro := range r.rollovers {
		if ro.DestinationMonthYear == monthYear && !ro.Consumed {
			copied := *ro
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeRolloverRepo) MarkConsumed(ctx context.Context, ids []primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		if ro, ok := r.rollovers[id]; ok {
			ro.Consumed = true
		}
	}
	return nil
}

func (r *fakeRolloverRepo) DeleteBySourceDraw(ctx context.Context, drawID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, ro := range r.rollovers {
		if ro.SourceDrawID == drawID {
			delete(r.rollovers, id)
		}
	}
	return nil
}

// fakeGateway either succeeds with a canned session or fails with a
// configured error.
type fakeGateway struct {
	err      error
	sessions int
}

func (g *fakeGateway) CreateSession(ctx context.Context, payeeAccount string, amount decimal.Decimal, label string) (*paygate.Session, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.sessions++
	return &paygate.Session{
		ID:  fmt.Sprintf("sess_%d", g.sessions),
		URL: "https://pay.example.com/" + label,
	}, nil
}

var errGatewayDown = errors.New("gateway unreachable")
