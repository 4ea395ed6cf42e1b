package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateTagRequest struct {
	Name  string `json:"name" validate:"required,max=64"`
	Color string `json:"color"`
}

type CreateTagResponse struct {
	Id uuid.UUID `json:"id"`
}

type TagItem struct {
	Id        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

type UpdateTagRequest struct {
	Id    uuid.UUID
	Name  string `json:"name" validate:"required,max=64"`
	Color string `json:"color"`
}

type UpdateTagResponse struct {
	Id uuid.UUID `json:"id"`
}
