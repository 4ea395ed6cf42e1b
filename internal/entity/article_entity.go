package entity

import (
	"time"

	"github.com/google/uuid"
)

// Article is a user-authored write-up, optionally linked to the document it
// was written about and carrying any number of tags.
type Article struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title      string
	Body       string
	DocumentId *uuid.UUID
	UserId     uuid.UUID `gorm:"type:uuid;index"`
	Tags       []*Tag
	CreatedAt  time.Time
	UpdatedAt  *time.Time
	DeletedAt  *time.Time
	IsDeleted  bool
}
