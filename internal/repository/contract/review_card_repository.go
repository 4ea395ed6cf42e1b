package contract

import (
	"context"

	"ai-reader-be/internal/entity"
	"ai-reader-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ReviewCardRepository interface {
	Create(ctx context.Context, card *entity.ReviewCard) error
	Update(ctx context.Context, card *entity.ReviewCard) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ReviewCard, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ReviewCard, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
