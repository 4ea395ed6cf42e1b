package mapper

import (
	"time"

	"ai-reader-be/internal/entity"
	"ai-reader-be/internal/model"

	"gorm.io/gorm"
)

type ArticleMapper struct {
	tagMapper *TagMapper
}

func NewArticleMapper(tagMapper *TagMapper) *ArticleMapper {
	return &ArticleMapper{tagMapper: tagMapper}
}

func (m *ArticleMapper) ToEntity(a *model.Article) *entity.Article {
	if a == nil {
		return nil
	}

	var deletedAt *time.Time
	if a.DeletedAt.Valid {
		t := a.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !a.UpdatedAt.IsZero() {
		t := a.UpdatedAt
		updatedAt = &t
	}

	return &entity.Article{
		Id:         a.Id,
		Title:      a.Title,
		Body:       a.Body,
		DocumentId: a.DocumentId,
		UserId:     a.UserId,
		Tags:       m.tagMapper.ToEntities(a.Tags),
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  updatedAt,
		DeletedAt:  deletedAt,
		IsDeleted:  a.DeletedAt.Valid,
	}
}

func (m *ArticleMapper) ToModel(a *entity.Article) *model.Article {
	if a == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if a.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *a.DeletedAt, Valid: true}
	} else if a.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if a.UpdatedAt != nil {
		updatedAt = *a.UpdatedAt
	}

	return &model.Article{
		Id:         a.Id,
		Title:      a.Title,
		Body:       a.Body,
		DocumentId: a.DocumentId,
		UserId:     a.UserId,
		Tags:       m.tagMapper.ToModels(a.Tags),
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  updatedAt,
		DeletedAt:  deletedAt,
	}
}

func (m *ArticleMapper) ToEntities(articles []*model.Article) []*entity.Article {
	entities := make([]*entity.Article, len(articles))
	for i, a := range articles {
		entities[i] = m.ToEntity(a)
	}
	return entities
}
