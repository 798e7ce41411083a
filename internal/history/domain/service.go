package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Service appends and reads per-item stock history.
//
// Append takes the caller's gorm handle so a ledger write lands inside the
// caller's transaction when there is one (the assembly path).
type Service interface {
	Append(ctx context.Context, db *gorm.DB, itemID snowflake.ID, action Action) (AppendResult, error)
	ReadHistory(ctx context.Context, itemID snowflake.ID, limit int) ([]EnrichedAction, error)
}

var ErrNotFound = errors.New("history_not_found")
