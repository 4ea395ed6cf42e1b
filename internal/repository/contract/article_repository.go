package contract

import (
	"context"

	"ai-reader-be/internal/entity"
	"ai-reader-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ArticleRepository interface {
	Create(ctx context.Context, article *entity.Article) error
	Update(ctx context.Context, article *entity.Article) error
	// ReplaceTags swaps the article's tag set atomically.
	ReplaceTags(ctx context.Context, articleId uuid.UUID, tags []*entity.Tag) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Article, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Article, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
