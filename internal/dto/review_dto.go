package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateReviewCardRequest struct {
	DocumentId uuid.UUID `json:"document_id" validate:"required"`
	NodeId     uuid.UUID `json:"node_id" validate:"required"`
}

type CreateReviewCardResponse struct {
	Id    uuid.UUID `json:"id"`
	DueAt time.Time `json:"due_at"`
}

type ReviewCardItem struct {
	Id           uuid.UUID `json:"id"`
	DocumentId   uuid.UUID `json:"document_id"`
	NodeId       uuid.UUID `json:"node_id"`
	Repetitions  int       `json:"repetitions"`
	IntervalDays int       `json:"interval_days"`
	EaseFactor   float64   `json:"ease_factor"`
	DueAt        time.Time `json:"due_at"`
}

type GradeReviewCardRequest struct {
	Id    uuid.UUID
	Grade int `json:"grade" validate:"min=0,max=5"`
}

type GradeReviewCardResponse struct {
	Id           uuid.UUID `json:"id"`
	Repetitions  int       `json:"repetitions"`
	IntervalDays int       `json:"interval_days"`
	EaseFactor   float64   `json:"ease_factor"`
	DueAt        time.Time `json:"due_at"`
}
