package dto

import (
	"github.com/google/uuid"
)

// PublishStructureBuildMessage is the queue payload for one structuring job.
type PublishStructureBuildMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
	MaxDepth   int       `json:"max_depth"`
}

type BuildStructureRequest struct {
	DocumentId uuid.UUID `json:"document_id" validate:"required"`
	MaxDepth   int       `json:"max_depth"`
}

type BuildStructureResponse struct {
	DocumentId uuid.UUID `json:"document_id"`
	Status     string    `json:"status"`
}

// StructureNodeItem is one node of the outline tree; Children are ordered by
// sibling index.
type StructureNodeItem struct {
	Id           uuid.UUID            `json:"id"`
	Type         string               `json:"type"`
	Title        string               `json:"title"`
	Depth        int                  `json:"depth"`
	SiblingIndex int                  `json:"sibling_index"`
	StartOffset  int                  `json:"start_offset"`
	EndOffset    int                  `json:"end_offset"`
	Confidence   float64              `json:"confidence"`
	Children     []*StructureNodeItem `json:"children"`
}

type ShowStructureResponse struct {
	DocumentId uuid.UUID            `json:"document_id"`
	Status     string               `json:"status"`
	NodeCount  int                  `json:"node_count"`
	Roots      []*StructureNodeItem `json:"roots"`
}

// ShowSectionTextResponse carries the exact document slice a node spans.
type ShowSectionTextResponse struct {
	NodeId      uuid.UUID `json:"node_id"`
	Title       string    `json:"title"`
	StartOffset int       `json:"start_offset"`
	EndOffset   int       `json:"end_offset"`
	Text        string    `json:"text"`
}
