package model

import (
	"time"

	"github.com/google/uuid"
)

type ReviewCard struct {
	Id             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId         uuid.UUID  `gorm:"type:uuid;not null;index:idx_review_cards_user_due,priority:1;uniqueIndex:idx_review_cards_user_node,priority:1"`
	DocumentId     uuid.UUID  `gorm:"type:uuid;not null;index"`
	NodeId         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_review_cards_user_node,priority:2"`
	Repetitions    int        `gorm:"not null;default:0"`
	IntervalDays   int        `gorm:"not null;default:0"`
	EaseFactor     float64    `gorm:"not null;default:2.5"`
	DueAt          time.Time  `gorm:"not null;index:idx_review_cards_user_due,priority:2"`
	LastReviewedAt *time.Time
	CreatedAt      time.Time  `gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime"`
}

func (ReviewCard) TableName() string {
	return "review_cards"
}
