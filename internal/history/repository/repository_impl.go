package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/stockroomhq/stockroom/internal/history/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByItem(ctx context.Context, db *gorm.DB, itemID snowflake.ID) (*domain.Ledger, error) {
	var ledger domain.Ledger
	err := db.WithContext(ctx).
		Where("item_id = ?", itemID).
		First(&ledger).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ledger, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, ledger *domain.Ledger) error {
	return db.WithContext(ctx).Create(ledger).Error
}

func (r *repo) UpdateActions(ctx context.Context, db *gorm.DB, id snowflake.ID, actions []domain.Action) error {
	return db.WithContext(ctx).
		Model(&domain.Ledger{}).
		Where("id = ?", id).
		Update("actions", datatypes.NewJSONSlice(actions)).Error
}
