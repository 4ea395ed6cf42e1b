package mapper

import (
	"time"

	"ai-reader-be/internal/entity"
	"ai-reader-be/internal/model"
)

type ReviewCardMapper struct{}

func NewReviewCardMapper() *ReviewCardMapper {
	return &ReviewCardMapper{}
}

func (m *ReviewCardMapper) ToEntity(c *model.ReviewCard) *entity.ReviewCard {
	if c == nil {
		return nil
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.ReviewCard{
		Id:             c.Id,
		UserId:         c.UserId,
		DocumentId:     c.DocumentId,
		NodeId:         c.NodeId,
		Repetitions:    c.Repetitions,
		IntervalDays:   c.IntervalDays,
		EaseFactor:     c.EaseFactor,
		DueAt:          c.DueAt,
		LastReviewedAt: c.LastReviewedAt,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}

func (m *ReviewCardMapper) ToModel(c *entity.ReviewCard) *model.ReviewCard {
	if c == nil {
		return nil
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.ReviewCard{
		Id:             c.Id,
		UserId:         c.UserId,
		DocumentId:     c.DocumentId,
		NodeId:         c.NodeId,
		Repetitions:    c.Repetitions,
		IntervalDays:   c.IntervalDays,
		EaseFactor:     c.EaseFactor,
		DueAt:          c.DueAt,
		LastReviewedAt: c.LastReviewedAt,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}

func (m *ReviewCardMapper) ToEntities(cards []*model.ReviewCard) []*entity.ReviewCard {
	entities := make([]*entity.ReviewCard, len(cards))
	for i, c := range cards {
		entities[i] = m.ToEntity(c)
	}
	return entities
}
