package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type RegisterRequest struct {
	Username string
	Email    string
	Password string
}

type Service interface {
	List(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id snowflake.ID) (User, error)
	Register(context.Context, RegisterRequest) (User, error)
	Authenticate(ctx context.Context, username, password string) (User, error)
}

var (
	ErrNotFound           = errors.New("user_not_found")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidUsername    = errors.New("invalid_username")
	ErrInvalidPassword    = errors.New("invalid_password")
	ErrUsernameExists     = errors.New("username_exists")
)
