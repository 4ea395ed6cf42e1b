package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type StructureNode struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId   uuid.UUID      `gorm:"type:uuid;not null;index:idx_structure_nodes_doc_depth,priority:1"`
	ParentId     *uuid.UUID     `gorm:"type:uuid;index"`
	Type         string         `gorm:"type:varchar(32);not null"`
	Title        string         `gorm:"type:varchar(512);not null"`
	Depth        int            `gorm:"not null;index:idx_structure_nodes_doc_depth,priority:2"`
	SiblingIndex int            `gorm:"not null"`
	StartOffset  int            `gorm:"not null"`
	EndOffset    int            `gorm:"not null"`
	Confidence   float64        `gorm:"not null"`
	StartAnchor  string         `gorm:"type:text"`
	EndAnchor    string         `gorm:"type:text"`
	Metadata     datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
}

func (StructureNode) TableName() string {
	return "structure_nodes"
}
