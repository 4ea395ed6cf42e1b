// FILE: internal/service/review_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"ai-reader-be/internal/dto"
	"ai-reader-be/internal/entity"
	"ai-reader-be/internal/repository/specification"
	"ai-reader-be/internal/repository/unitofwork"
	"ai-reader-be/pkg/review"

	"github.com/google/uuid"
)

type IReviewService interface {
	CreateCard(ctx context.Context, userId uuid.UUID, req *dto.CreateReviewCardRequest) (*dto.CreateReviewCardResponse, error)
	DueCards(ctx context.Context, userId uuid.UUID) ([]*dto.ReviewCardItem, error)
	GradeCard(ctx context.Context, userId uuid.UUID, req *dto.GradeReviewCardRequest) (*dto.GradeReviewCardResponse, error)
	DeleteCard(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type reviewService struct {
	uowFactory unitofwork.RepositoryFactory
	scheduler  *review.Scheduler
}

func NewReviewService(uowFactory unitofwork.RepositoryFactory) IReviewService {
	return &reviewService{
		uowFactory: uowFactory,
		scheduler:  review.NewScheduler(),
	}
}

func (c *reviewService) CreateCard(ctx context.Context, userId uuid.UUID, req *dto.CreateReviewCardRequest) (*dto.CreateReviewCardResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	node, err := uow.StructureNodeRepository().FindOne(ctx, specification.ByID{ID: req.NodeId})
	if err != nil {
		return nil, err
	}
	if node == nil || node.DocumentId != req.DocumentId {
		return nil, fmt.Errorf("node %s does not belong to document %s", req.NodeId, req.DocumentId)
	}

	document, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: req.DocumentId},
		specification.OwnedByUser{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, nil
	}

	existing, err := uow.ReviewCardRepository().FindOne(ctx,
		specification.OwnedByUser{UserID: userId},
		specification.Filter("node_id", req.NodeId),
	)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &dto.CreateReviewCardResponse{Id: existing.Id, DueAt: existing.DueAt}, nil
	}

	state := review.NewState()
	now := time.Now()
	card := entity.ReviewCard{
		Id:           uuid.New(),
		UserId:       userId,
		DocumentId:   req.DocumentId,
		NodeId:       req.NodeId,
		Repetitions:  state.Repetitions,
		IntervalDays: state.IntervalDays,
		EaseFactor:   state.EaseFactor,
		DueAt:        now, // A fresh card is due immediately.
		CreatedAt:    now,
	}
	if err := uow.ReviewCardRepository().Create(ctx, &card); err != nil {
		return nil, err
	}

	return &dto.CreateReviewCardResponse{Id: card.Id, DueAt: card.DueAt}, nil
}

func (c *reviewService) DueCards(ctx context.Context, userId uuid.UUID) ([]*dto.ReviewCardItem, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	cards, err := uow.ReviewCardRepository().FindAll(ctx,
		specification.OwnedByUser{UserID: userId},
		specification.DueBefore{Time: time.Now()},
		specification.OrderBy{Field: "due_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.ReviewCardItem, len(cards))
	for i, card := range cards {
		items[i] = &dto.ReviewCardItem{
			Id:           card.Id,
			DocumentId:   card.DocumentId,
			NodeId:       card.NodeId,
			Repetitions:  card.Repetitions,
			IntervalDays: card.IntervalDays,
			EaseFactor:   card.EaseFactor,
			DueAt:        card.DueAt,
		}
	}
	return items, nil
}

func (c *reviewService) GradeCard(ctx context.Context, userId uuid.UUID, req *dto.GradeReviewCardRequest) (*dto.GradeReviewCardResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	card, err := uow.ReviewCardRepository().FindOne(ctx,
		specification.ByID{ID: req.Id},
		specification.OwnedByUser{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, nil
	}

	now := time.Now()
	state := review.State{
		Repetitions:  card.Repetitions,
		IntervalDays: card.IntervalDays,
		EaseFactor:   card.EaseFactor,
	}
	next, dueAt := c.scheduler.Review(state, review.Grade(req.Grade), now)

	card.Repetitions = next.Repetitions
	card.IntervalDays = next.IntervalDays
	card.EaseFactor = next.EaseFactor
	card.DueAt = dueAt
	card.LastReviewedAt = &now
	if err := uow.ReviewCardRepository().Update(ctx, card); err != nil {
		return nil, err
	}

	return &dto.GradeReviewCardResponse{
		Id:           card.Id,
		Repetitions:  card.Repetitions,
		IntervalDays: card.IntervalDays,
		EaseFactor:   card.EaseFactor,
		DueAt:        card.DueAt,
	}, nil
}

func (c *reviewService) DeleteCard(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	card, err := uow.ReviewCardRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedByUser{UserID: userId},
	)
	if err != nil {
		return err
	}
	if card == nil {
		return nil
	}
	return uow.ReviewCardRepository().Delete(ctx, id)
}
