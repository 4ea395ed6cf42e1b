package contract

import (
	"context"

	"ai-reader-be/internal/entity"
	"ai-reader-be/internal/repository/specification"

	"github.com/google/uuid"
)

type StructureNodeRepository interface {
	// SaveAll persists one depth layer in a single batch insert.
	SaveAll(ctx context.Context, nodes []*entity.StructureNode) error
	// FindByDocumentAndDepthLessThan returns all persisted nodes shallower
	// than depth, the candidate parents for the layer about to be written.
	FindByDocumentAndDepthLessThan(ctx context.Context, documentId uuid.UUID, depth int) ([]*entity.StructureNode, error)
	FindByDocumentOrderByStartOffset(ctx context.Context, documentId uuid.UUID) ([]*entity.StructureNode, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.StructureNode, error)
	CountByDocument(ctx context.Context, documentId uuid.UUID) (int64, error)
	DeleteByDocument(ctx context.Context, documentId uuid.UUID) error
}
