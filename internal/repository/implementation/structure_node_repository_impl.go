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

// nodeBatchSize bounds one multi-row insert; a depth layer larger than this
// is written in several batches.
const nodeBatchSize = 200

type StructureNodeRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.StructureNodeMapper
}

func NewStructureNodeRepository(db *gorm.DB) contract.StructureNodeRepository {
	return &StructureNodeRepositoryImpl{
		db:     db,
		mapper: mapper.NewStructureNodeMapper(),
	}
}

func (r *StructureNodeRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *StructureNodeRepositoryImpl) SaveAll(ctx context.Context, nodes []*entity.StructureNode) error {
	if len(nodes) == 0 {
		return nil
	}
	models := r.mapper.ToModels(nodes)
	if err := r.db.WithContext(ctx).CreateInBatches(models, nodeBatchSize).Error; err != nil {
		return err
	}
	for i, m := range models {
		*nodes[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *StructureNodeRepositoryImpl) FindByDocumentAndDepthLessThan(ctx context.Context, documentId uuid.UUID, depth int) ([]*entity.StructureNode, error) {
	var models []*model.StructureNode
	err := r.db.WithContext(ctx).
		Where("document_id = ? AND depth < ?", documentId, depth).
		Order("depth ASC, start_offset ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *StructureNodeRepositoryImpl) FindByDocumentOrderByStartOffset(ctx context.Context, documentId uuid.UUID) ([]*entity.StructureNode, error) {
	var models []*model.StructureNode
	err := r.db.WithContext(ctx).
		Where("document_id = ?", documentId).
		Order("start_offset ASC, depth ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *StructureNodeRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.StructureNode, error) {
	var m model.StructureNode
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *StructureNodeRepositoryImpl) CountByDocument(ctx context.Context, documentId uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.StructureNode{}).
		Where("document_id = ?", documentId).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *StructureNodeRepositoryImpl) DeleteByDocument(ctx context.Context, documentId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("document_id = ?", documentId).
		Delete(&model.StructureNode{}).Error
}
