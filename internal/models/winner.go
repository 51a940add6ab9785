package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VerificationStatus represents the admin verification state of a winner
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "PENDING"
	VerificationVerified VerificationStatus = "VERIFIED"
	VerificationRejected VerificationStatus = "REJECTED"
)

// PaymentStatus represents the settlement state of a winner payout
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "UNPAID"
	PaymentPaid   PaymentStatus = "PAID"
)

// WinnerEntry represents one winning participant of a draw, one per
// (drawId, userId) pair with a match count of at least 3.
// NetPayout is always GrossPrize minus CharityAmount.
type WinnerEntry struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	DrawID             primitive.ObjectID `bson:"drawId" json:"drawId"`
	UserID             string             `bson:"userId" json:"userId"`
	Tier               int                `bson:"tier" json:"tier"` // 1 = 5-match, 2 = 4-match, 3 = 3-match
	MatchCount         int                `bson:"matchCount" json:"matchCount"`
	MatchedNumbers     []int              `bson:"matchedNumbers" json:"matchedNumbers"`
	GrossPrize         float64            `bson:"grossPrize" json:"grossPrize"`
	CharityAmount      float64            `bson:"charityAmount" json:"charityAmount"`
	NetPayout          float64            `bson:"netPayout" json:"netPayout"`
	VerificationStatus VerificationStatus `bson:"verificationStatus" json:"verificationStatus"`
	VerifiedBy         string             `bson:"verifiedBy,omitempty" json:"verifiedBy,omitempty"`
	VerifiedAt         time.Time          `bson:"verifiedAt,omitempty" json:"verifiedAt,omitempty"`
	PaymentStatus      PaymentStatus      `bson:"paymentStatus" json:"paymentStatus"`
	PaymentReference   string             `bson:"paymentReference,omitempty" json:"paymentReference,omitempty"`
	PayoutAccountID    string             `bson:"payoutAccountId,omitempty" json:"payoutAccountId,omitempty"`
	PaidAt             time.Time          `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}
