package unitofwork

import (
	"context"

	"ai-reader-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	DocumentRepository() contract.DocumentRepository
	StructureNodeRepository() contract.StructureNodeRepository
	TagRepository() contract.TagRepository
	ArticleRepository() contract.ArticleRepository
	ReviewCardRepository() contract.ReviewCardRepository
}
