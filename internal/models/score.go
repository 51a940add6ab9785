package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScoreEntry holds one user's submitted scores for a draw cycle. Entries are
// owned by the user and become immutable once a draw consumes them.
type ScoreEntry struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID      string             `bson:"userId" json:"userId"`
	MonthYear   string             `bson:"monthYear" json:"monthYear"`
	Scores      []int              `bson:"scores" json:"scores"` // 1..45, duplicates allowed
	SubmittedAt time.Time          `bson:"submittedAt" json:"submittedAt"`
}

// Subscription represents a user's paid participation in a cycle. Finalizing
// a draw marks matching subscriptions consumed; a reset reactivates only the
// ones consumed by that draw.
type Subscription struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID         string             `bson:"userId" json:"userId"`
	Active         bool               `bson:"active" json:"active"`
	ConsumedByDraw primitive.ObjectID `bson:"consumedByDraw,omitempty" json:"consumedByDraw,omitempty"`
	StartedAt      time.Time          `bson:"startedAt" json:"startedAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
