package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateCategoryRequest struct {
	Name string
}

type Service interface {
	List(ctx context.Context) ([]Category, error)
	Create(context.Context, CreateCategoryRequest) (Category, error)
	Delete(ctx context.Context, id snowflake.ID) error
}

var (
	ErrNotFound    = errors.New("category_not_found")
	ErrInvalidName = errors.New("invalid_name")
	ErrNameExists  = errors.New("name_exists")
)
