package entity

import (
	"time"

	"github.com/google/uuid"
)

// ReviewCard carries the spaced-repetition state for one outline node a user
// chose to study.
type ReviewCard struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId         uuid.UUID `gorm:"type:uuid;index"`
	DocumentId     uuid.UUID `gorm:"type:uuid;index"`
	NodeId         uuid.UUID `gorm:"type:uuid"`
	Repetitions    int
	IntervalDays   int
	EaseFactor     float64
	DueAt          time.Time
	LastReviewedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}
