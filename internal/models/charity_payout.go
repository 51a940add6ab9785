package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PayoutStatus represents the settlement state of a charity payout
type PayoutStatus string

const (
	PayoutPending PayoutStatus = "PENDING"
	PayoutPaid    PayoutStatus = "PAID"
)

// Donation records a single winner's charity deduction, committed at draw
// finalize time and later aggregated into a CharityPayout.
type Donation struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	DrawID    primitive.ObjectID `bson:"drawId" json:"drawId"`
	WinnerID  primitive.ObjectID `bson:"winnerId" json:"winnerId"`
	CharityID string             `bson:"charityId" json:"charityId"`
	Amount    float64            `bson:"amount" json:"amount"`
	Settled   bool               `bson:"settled" json:"settled"`
	PayoutID  primitive.ObjectID `bson:"payoutId,omitempty" json:"payoutId,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// CharityPayout aggregates donation commitments to one charity.
// Amount always equals the sum of the linked donation amounts; once PAID the
// record is immutable except for receipt metadata.
type CharityPayout struct {
	ID                primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	CharityID         string               `bson:"charityId" json:"charityId"`
	Amount            float64              `bson:"amount" json:"amount"`
	Status            PayoutStatus         `bson:"status" json:"status"`
	PayoutRef         string               `bson:"payoutRef,omitempty" json:"payoutRef,omitempty"`
	SourceDonationIDs []primitive.ObjectID `bson:"sourceDonationIds" json:"sourceDonationIds"`
	ReceiptURL        string               `bson:"receiptUrl,omitempty" json:"receiptUrl,omitempty"`
	PaidAt            time.Time            `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	CreatedAt         time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time            `bson:"updatedAt" json:"updatedAt"`
}
