package entity

import (
	"time"

	"github.com/google/uuid"
)

// Document lifecycle statuses. A document arrives NORMALIZED, moves through
// STRUCTURING while the pipeline runs, and ends STRUCTURED or FAILED.
const (
	DocumentStatusNormalized  = "NORMALIZED"
	DocumentStatusStructuring = "STRUCTURING"
	DocumentStatusStructured  = "STRUCTURED"
	DocumentStatusFailed      = "FAILED"
)

type Document struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title     string
	Content   string
	Language  string
	Status    string
	NodeCount int
	UserId    uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
