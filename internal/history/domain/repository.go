package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindByItem(ctx context.Context, db *gorm.DB, itemID snowflake.ID) (*Ledger, error)
	Insert(ctx context.Context, db *gorm.DB, ledger *Ledger) error
	UpdateActions(ctx context.Context, db *gorm.DB, id snowflake.ID, actions []Action) error
}
