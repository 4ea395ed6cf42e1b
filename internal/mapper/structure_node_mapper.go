package mapper

import (
	"encoding/json"

	"ai-reader-be/internal/entity"
	"ai-reader-be/internal/model"

	"gorm.io/datatypes"
)

type StructureNodeMapper struct{}

func NewStructureNodeMapper() *StructureNodeMapper {
	return &StructureNodeMapper{}
}

func (m *StructureNodeMapper) ToEntity(n *model.StructureNode) *entity.StructureNode {
	if n == nil {
		return nil
	}

	var metadata map[string]interface{}
	if len(n.Metadata) > 0 {
		// Best effort: malformed metadata payloads degrade to nil.
		_ = json.Unmarshal(n.Metadata, &metadata)
	}

	return &entity.StructureNode{
		Id:           n.Id,
		DocumentId:   n.DocumentId,
		ParentId:     n.ParentId,
		Type:         n.Type,
		Title:        n.Title,
		Depth:        n.Depth,
		SiblingIndex: n.SiblingIndex,
		StartOffset:  n.StartOffset,
		EndOffset:    n.EndOffset,
		Confidence:   n.Confidence,
		StartAnchor:  n.StartAnchor,
		EndAnchor:    n.EndAnchor,
		Metadata:     metadata,
		CreatedAt:    n.CreatedAt,
	}
}

func (m *StructureNodeMapper) ToModel(n *entity.StructureNode) *model.StructureNode {
	if n == nil {
		return nil
	}

	var metadata datatypes.JSON
	if n.Metadata != nil {
		if raw, err := json.Marshal(n.Metadata); err == nil {
			metadata = raw
		}
	}

	return &model.StructureNode{
		Id:           n.Id,
		DocumentId:   n.DocumentId,
		ParentId:     n.ParentId,
		Type:         n.Type,
		Title:        n.Title,
		Depth:        n.Depth,
		SiblingIndex: n.SiblingIndex,
		StartOffset:  n.StartOffset,
		EndOffset:    n.EndOffset,
		Confidence:   n.Confidence,
		StartAnchor:  n.StartAnchor,
		EndAnchor:    n.EndAnchor,
		Metadata:     metadata,
		CreatedAt:    n.CreatedAt,
	}
}

func (m *StructureNodeMapper) ToEntities(nodes []*model.StructureNode) []*entity.StructureNode {
	entities := make([]*entity.StructureNode, len(nodes))
	for i, n := range nodes {
		entities[i] = m.ToEntity(n)
	}
	return entities
}

func (m *StructureNodeMapper) ToModels(nodes []*entity.StructureNode) []*model.StructureNode {
	models := make([]*model.StructureNode, len(nodes))
	for i, n := range nodes {
		models[i] = m.ToModel(n)
	}
	return models
}
