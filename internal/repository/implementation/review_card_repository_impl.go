package implementation

import (
	"context"
	"errors"

	"ai-reader-be/internal/entity"
	"ai-reader-be/internal/mapper"
	"ai-reader-be/internal/model"
	"ai-reader-be/internal/repository/contract"
	"ai-reader-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReviewCardRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ReviewCardMapper
}

func NewReviewCardRepository(db *gorm.DB) contract.ReviewCardRepository {
	return &ReviewCardRepositoryImpl{
		db:     db,
		mapper: mapper.NewReviewCardMapper(),
	}
}

func (r *ReviewCardRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ReviewCardRepositoryImpl) Create(ctx context.Context, card *entity.ReviewCard) error {
	m := r.mapper.ToModel(card)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*card = *r.mapper.ToEntity(m)
	return nil
}

func (r *ReviewCardRepositoryImpl) Update(ctx context.Context, card *entity.ReviewCard) error {
	m := r.mapper.ToModel(card)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*card = *r.mapper.ToEntity(m)
	return nil
}

func (r *ReviewCardRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.ReviewCard{}, id).Error
}

func (r *ReviewCardRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ReviewCard, error) {
	var m model.ReviewCard
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ReviewCardRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ReviewCard, error) {
	var models []*model.ReviewCard
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ReviewCardRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ReviewCard{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
