package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateDocumentRequest struct {
	Title    string `json:"title" validate:"required"`
	Content  string `json:"content" validate:"required"`
	Language string `json:"language"`
}

type CreateDocumentResponse struct {
	Id uuid.UUID `json:"id"`
}

type ShowDocumentResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Language  string     `json:"language"`
	Status    string     `json:"status"`
	NodeCount int        `json:"node_count"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type ShowDocumentContentResponse struct {
	Id      uuid.UUID `json:"id"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
}

type UpdateDocumentRequest struct {
	Id    uuid.UUID
	Title string `json:"title" validate:"required"`
}

type UpdateDocumentResponse struct {
	Id uuid.UUID `json:"id"`
}
