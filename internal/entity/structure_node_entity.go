package entity

import (
	"time"

	"github.com/google/uuid"
)

// StructureNode is one resolved node of a document's outline tree. Offsets
// are byte positions into the document content; ParentId is nil for roots and
// SiblingIndex is 1-based among nodes sharing the same parent.
type StructureNode struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey"`
	DocumentId   uuid.UUID `gorm:"type:uuid;index"`
	ParentId     *uuid.UUID
	Type         string
	Title        string
	Depth        int
	SiblingIndex int
	StartOffset  int
	EndOffset    int
	Confidence   float64
	StartAnchor  string
	EndAnchor    string
	Metadata     map[string]interface{}
	CreatedAt    time.Time
}
