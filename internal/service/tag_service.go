// FILE: internal/service/tag_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"ai-reader-be/internal/dto"
	"ai-reader-be/internal/entity"
	"ai-reader-be/internal/repository/specification"
	"ai-reader-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type ITagService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateTagRequest) (*dto.CreateTagResponse, error)
	List(ctx context.Context, userId uuid.UUID) ([]*dto.TagItem, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateTagRequest) (*dto.UpdateTagResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type tagService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewTagService(uowFactory unitofwork.RepositoryFactory) ITagService {
	return &tagService{
		uowFactory: uowFactory,
	}
}

func (c *tagService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateTagRequest) (*dto.CreateTagResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.TagRepository().FindOne(ctx,
		specification.OwnedByUser{UserID: userId},
		specification.ByName{Name: req.Name},
	)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("tag %q already exists", req.Name)
	}

	tag := entity.Tag{
		Id:        uuid.New(),
		Name:      req.Name,
		Color:     req.Color,
		UserId:    userId,
		CreatedAt: time.Now(),
	}
	if err := uow.TagRepository().Create(ctx, &tag); err != nil {
		return nil, err
	}

	return &dto.CreateTagResponse{Id: tag.Id}, nil
}

func (c *tagService) List(ctx context.Context, userId uuid.UUID) ([]*dto.TagItem, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	tags, err := uow.TagRepository().FindAll(ctx,
		specification.OwnedByUser{UserID: userId},
		specification.OrderBy{Field: "name", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.TagItem, len(tags))
	for i, t := range tags {
		items[i] = &dto.TagItem{
			Id:        t.Id,
			Name:      t.Name,
			Color:     t.Color,
			CreatedAt: t.CreatedAt,
		}
	}
	return items, nil
}

func (c *tagService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateTagRequest) (*dto.UpdateTagResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	tag, err := uow.TagRepository().FindOne(ctx,
		specification.ByID{ID: req.Id},
		specification.OwnedByUser{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return nil, nil
	}

	tag.Name = req.Name
	tag.Color = req.Color
	if err := uow.TagRepository().Update(ctx, tag); err != nil {
		return nil, err
	}

	return &dto.UpdateTagResponse{Id: tag.Id}, nil
}

func (c *tagService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	tag, err := uow.TagRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedByUser{UserID: userId},
	)
	if err != nil {
		return err
	}
	if tag == nil {
		return nil
	}
	return uow.TagRepository().Delete(ctx, id)
}
