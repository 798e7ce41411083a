package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stockroomhq/stockroom/internal/item/domain"
	"github.com/stockroomhq/stockroom/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, item *domain.Item) error {
	return db.WithContext(ctx).Create(item).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Item, error) {
	var item domain.Item
	err := db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repo) FindStockFields(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.StockFields, error) {
	var fields domain.StockFields
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, in_stock, is_assembly, min_allowed_quantity
		 FROM items WHERE id = ?`,
		id,
	).Scan(&fields).Error
	if err != nil {
		return nil, err
	}
	if fields.ID == 0 {
		return nil, nil
	}
	return &fields, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListItemFilter, page pagination.Pagination) ([]*domain.Item, error) {
	stmt := db.WithContext(ctx).Model(&domain.Item{})
	if filter.Name != "" {
		stmt = stmt.Where("name = ?", filter.Name)
	}
	if filter.CategoryID != nil {
		stmt = stmt.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Assembly != nil {
		stmt = stmt.Where("is_assembly = ?", *filter.Assembly)
	}

	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err == nil && cursor.CreatedAt != "" {
			if after, parseErr := time.Parse(time.RFC3339Nano, cursor.CreatedAt); parseErr == nil {
				id, _ := snowflake.ParseString(cursor.ID)
				stmt = stmt.Where("created_at < ? OR (created_at = ? AND id < ?)", after, after, id)
			}
		}
	}

	limit := page.PageSize
	if limit <= 0 {
		limit = 50
	}

	var items []*domain.Item
	err := stmt.
		Order("created_at desc, id desc").
		Limit(limit + 1).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) AdjustStock(ctx context.Context, db *gorm.DB, id snowflake.ID, delta float64, assembled bool) (*domain.Item, error) {
	updates := map[string]any{
		"in_stock": gorm.Expr("in_stock + ?", delta),
	}
	if delta > 0 {
		updates["total_in"] = gorm.Expr("total_in + ?", delta)
		if assembled {
			updates["total_assembled"] = gorm.Expr("total_assembled + ?", delta)
		}
	} else {
		updates["total_out"] = gorm.Expr("total_out + ?", -delta)
	}

	res := db.WithContext(ctx).
		Model(&domain.Item{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.FindByID(ctx, db, id)
}

func (r *repo) SetStock(ctx context.Context, db *gorm.DB, id snowflake.ID, newAmount float64) (*domain.Item, error) {
	prev, err := r.FindByID(ctx, db, id)
	if err != nil || prev == nil {
		return nil, err
	}

	err = db.WithContext(ctx).
		Model(&domain.Item{}).
		Where("id = ?", id).
		Update("in_stock", newAmount).Error
	if err != nil {
		return nil, err
	}
	return prev, nil
}

func (r *repo) UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	return db.WithContext(ctx).
		Model(&domain.Item{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *repo) BomComponents(ctx context.Context, db *gorm.DB, bom []domain.BomEntry) ([]domain.BomComponent, error) {
	if len(bom) == 0 {
		return nil, nil
	}

	ids := make([]snowflake.ID, 0, len(bom))
	for _, entry := range bom {
		ids = append(ids, entry.ItemID)
	}

	var rows []domain.StockFields
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, in_stock, is_assembly FROM items WHERE id IN ?`,
		ids,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[snowflake.ID]domain.StockFields, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}

	components := make([]domain.BomComponent, 0, len(bom))
	for _, entry := range bom {
		row, ok := byID[entry.ItemID]
		if !ok {
			continue
		}
		components = append(components, domain.BomComponent{
			ItemID:           entry.ItemID,
			Name:             row.Name,
			RequiredQuantity: entry.RequiredQuantity,
			InStock:          row.InStock,
			IsAssembly:       row.IsAssembly,
		})
	}
	return components, nil
}

func (r *repo) CategoryName(ctx context.Context, db *gorm.DB, id snowflake.ID) (string, error) {
	var row struct{ Name string }
	err := db.WithContext(ctx).Raw(
		`SELECT name FROM item_categories WHERE id = ?`, id,
	).Scan(&row).Error
	if err != nil {
		return "", err
	}
	return row.Name, nil
}

func (r *repo) ProjectRefs(ctx context.Context, db *gorm.DB, itemID snowflake.ID) ([]domain.ProjectRef, error) {
	var refs []domain.ProjectRef
	err := db.WithContext(ctx).Raw(
		`SELECT p.id, p.name
		 FROM projects p
		 JOIN item_projects ip ON ip.project_id = p.id
		 WHERE ip.item_id = ?
		 ORDER BY p.name`,
		itemID,
	).Scan(&refs).Error
	if err != nil {
		return nil, err
	}
	return refs, nil
}

func (r *repo) AssociateProjects(ctx context.Context, db *gorm.DB, itemID snowflake.ID, projectIDs []snowflake.ID) error {
	for _, projectID := range projectIDs {
		link := domain.ItemProject{ItemID: itemID, ProjectID: projectID}
		if err := db.WithContext(ctx).Create(&link).Error; err != nil {
			return err
		}
	}
	return nil
}
