package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DrawStatus represents the lifecycle status of a draw cycle
type DrawStatus string

const (
	DrawStatusOpen      DrawStatus = "OPEN"
	DrawStatusCompleted DrawStatus = "COMPLETED"
	DrawStatusPublished DrawStatus = "PUBLISHED"
)

// DrawCycle represents one monthly prize round. Exactly one cycle may be
// OPEN or COMPLETED at a time; PUBLISHED cycles are immutable history.
type DrawCycle struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	MonthYear         string             `bson:"monthYear" json:"monthYear"` // e.g. "January 2025", unique
	Status            DrawStatus         `bson:"status" json:"status"`
	WinningNumbers    []int              `bson:"winningNumbers,omitempty" json:"winningNumbers,omitempty"`
	BasePool          float64            `bson:"basePool" json:"basePool"`
	Tier1Pool         float64            `bson:"tier1Pool" json:"tier1Pool"`
	Tier2Pool         float64            `bson:"tier2Pool" json:"tier2Pool"`
	Tier3Pool         float64            `bson:"tier3Pool" json:"tier3Pool"`
	TotalPrizePool    float64            `bson:"totalPrizePool" json:"totalPrizePool"`
	JackpotCarryoverIn float64           `bson:"jackpotCarryoverIn" json:"jackpotCarryoverIn"`
	JackpotRollover   float64            `bson:"jackpotRollover" json:"jackpotRollover"` // out of this cycle
	TotalParticipants int                `bson:"totalParticipants" json:"totalParticipants"`
	Tier1Winners      int                `bson:"tier1Winners" json:"tier1Winners"`
	Tier2Winners      int                `bson:"tier2Winners" json:"tier2Winners"`
	Tier3Winners      int                `bson:"tier3Winners" json:"tier3Winners"`
	ExecutionLog      []string           `bson:"executionLog,omitempty" json:"executionLog,omitempty"`
	CompletedAt       time.Time          `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	PublishedAt       time.Time          `bson:"publishedAt,omitempty" json:"publishedAt,omitempty"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsPublished reports whether the cycle is immutable history. Display state
// is always re-derived from the persisted record, never from client flags.
func (d *DrawCycle) IsPublished() bool {
	return d.Status == DrawStatusPublished
}
