package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateArticleRequest struct {
	Title      string      `json:"title" validate:"required"`
	Body       string      `json:"body"`
	DocumentId *uuid.UUID  `json:"document_id"`
	TagIds     []uuid.UUID `json:"tag_ids"`
}

type CreateArticleResponse struct {
	Id uuid.UUID `json:"id"`
}

type ShowArticleResponse struct {
	Id         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	Body       string     `json:"body"`
	DocumentId *uuid.UUID `json:"document_id"`
	Tags       []TagItem  `json:"tags"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at"`
}

type UpdateArticleRequest struct {
	Id     uuid.UUID
	Title  string      `json:"title" validate:"required"`
	Body   string      `json:"body"`
	TagIds []uuid.UUID `json:"tag_ids"`
}

type UpdateArticleResponse struct {
	Id uuid.UUID `json:"id"`
}
