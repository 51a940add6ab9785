package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JackpotRollover records a tier-1 pool carried from one cycle to the next
// because no participant matched all five winning numbers.
type JackpotRollover struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	SourceDrawID         primitive.ObjectID `bson:"sourceDrawId" json:"sourceDrawId"`
	SourceMonthYear      string             `bson:"sourceMonthYear" json:"sourceMonthYear"`
	RolloverAmount       float64            `bson:"rolloverAmount" json:"rolloverAmount"`
	DestinationMonthYear string             `bson:"destinationMonthYear" json:"destinationMonthYear"`
	Consumed             bool               `bson:"consumed" json:"consumed"` // picked up by the destination cycle's draw
	CreatedAt            time.Time          `bson:"createdAt" json:"createdAt"`
}
