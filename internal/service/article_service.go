// FILE: internal/service/article_service.go
package service

import (
	"context"
	"time"

	"ai-reader-be/internal/dto"
	"ai-reader-be/internal/entity"
	"ai-reader-be/internal/repository/specification"
	"ai-reader-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IArticleService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateArticleRequest) (*dto.CreateArticleResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowArticleResponse, error)
	List(ctx context.Context, userId uuid.UUID) ([]*dto.ShowArticleResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateArticleRequest) (*dto.UpdateArticleResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type articleService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewArticleService(uowFactory unitofwork.RepositoryFactory) IArticleService {
	return &articleService{
		uowFactory: uowFactory,
	}
}

func (c *articleService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateArticleRequest) (*dto.CreateArticleResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	tags, err := c.ownedTags(ctx, uow, userId, req.TagIds)
	if err != nil {
		return nil, err
	}

	article := entity.Article{
		Id:         uuid.New(),
		Title:      req.Title,
		Body:       req.Body,
		DocumentId: req.DocumentId,
		UserId:     userId,
		Tags:       tags,
		CreatedAt:  time.Now(),
	}
	if err := uow.ArticleRepository().Create(ctx, &article); err != nil {
		return nil, err
	}

	return &dto.CreateArticleResponse{Id: article.Id}, nil
}

func (c *articleService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowArticleResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	article, err := uow.ArticleRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedByUser{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, nil
	}
	return toShowArticleResponse(article), nil
}

func (c *articleService) List(ctx context.Context, userId uuid.UUID) ([]*dto.ShowArticleResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	articles, err := uow.ArticleRepository().FindAll(ctx,
		specification.OwnedByUser{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ShowArticleResponse, len(articles))
	for i, a := range articles {
		res[i] = toShowArticleResponse(a)
	}
	return res, nil
}

func (c *articleService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateArticleRequest) (*dto.UpdateArticleResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	article, err := uow.ArticleRepository().FindOne(ctx,
		specification.ByID{ID: req.Id},
		specification.OwnedByUser{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, nil
	}

	tags, err := c.ownedTags(ctx, uow, userId, req.TagIds)
	if err != nil {
		return nil, err
	}

	article.Title = req.Title
	article.Body = req.Body
	if err := uow.ArticleRepository().Update(ctx, article); err != nil {
		return nil, err
	}
	if err := uow.ArticleRepository().ReplaceTags(ctx, article.Id, tags); err != nil {
		return nil, err
	}

	return &dto.UpdateArticleResponse{Id: article.Id}, nil
}

func (c *articleService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	article, err := uow.ArticleRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedByUser{UserID: userId},
	)
	if err != nil {
		return err
	}
	if article == nil {
		return nil
	}
	return uow.ArticleRepository().Delete(ctx, id)
}

// ownedTags loads the requested tags restricted to the caller; unknown or
// foreign tag ids are silently dropped.
func (c *articleService) ownedTags(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, tagIds []uuid.UUID) ([]*entity.Tag, error) {
	if len(tagIds) == 0 {
		return nil, nil
	}
	return uow.TagRepository().FindAll(ctx,
		specification.ByIDs{IDs: tagIds},
		specification.OwnedByUser{UserID: userId},
	)
}

func toShowArticleResponse(a *entity.Article) *dto.ShowArticleResponse {
	tags := make([]dto.TagItem, len(a.Tags))
	for i, t := range a.Tags {
		tags[i] = dto.TagItem{
			Id:        t.Id,
			Name:      t.Name,
			Color:     t.Color,
			CreatedAt: t.CreatedAt,
		}
	}
	return &dto.ShowArticleResponse{
		Id:         a.Id,
		Title:      a.Title,
		Body:       a.Body,
		DocumentId: a.DocumentId,
		Tags:       tags,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}
