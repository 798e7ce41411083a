package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateProjectRequest struct {
	Name        string
	Description string
}

type Service interface {
	List(ctx context.Context) ([]Project, error)
	GetByID(ctx context.Context, id snowflake.ID) (Project, error)
	Create(context.Context, CreateProjectRequest) (Project, error)
	Delete(ctx context.Context, id snowflake.ID) error
}

var (
	ErrNotFound    = errors.New("project_not_found")
	ErrInvalidName = errors.New("invalid_name")
	ErrNameExists  = errors.New("name_exists")
)
