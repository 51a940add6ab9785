package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DrawSettings holds the global draw configuration, mutated only by admins
// and read by the prize pool calculator.
type DrawSettings struct {
	ID                      primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	BaseAmountPerSubscriber float64            `bson:"baseAmountPerSubscriber" json:"baseAmountPerSubscriber"`
	Tier1Percent            int                `bson:"tier1Percent" json:"tier1Percent"`
	Tier2Percent            int                `bson:"tier2Percent" json:"tier2Percent"`
	Tier3Percent            int                `bson:"tier3Percent" json:"tier3Percent"`
	CharityPercent          int                `bson:"charityPercent" json:"charityPercent"`
	JackpotCap              float64            `bson:"jackpotCap" json:"jackpotCap"`
	DefaultCharityID        string             `bson:"defaultCharityId" json:"defaultCharityId"`
	ScoreRangeMin           int                `bson:"scoreRangeMin" json:"scoreRangeMin"`
	ScoreRangeMax           int                `bson:"scoreRangeMax" json:"scoreRangeMax"`
	UpdatedBy               string             `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	UpdatedAt               time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Validate checks the settings invariants before they are persisted.
func (s *DrawSettings) Validate() error {
	if s.Tier1Percent+s.Tier2Percent+s.Tier3Percent != 100 {
		return errors.New("tier percentages must sum to 100")
	}
	if s.CharityPercent < 0 || s.CharityPercent > 100 {
		return errors.New("charity percentage must be between 0 and 100")
	}
	if s.BaseAmountPerSubscriber < 0 {
		return errors.New("base amount per subscriber cannot be negative")
	}
	if s.JackpotCap <= 0 {
		return errors.New("jackpot cap must be positive")
	}
	if s.ScoreRangeMin < 1 || s.ScoreRangeMax < s.ScoreRangeMin {
		return errors.New("invalid score range")
	}
	return nil
}
