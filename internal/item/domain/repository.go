package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/stockroomhq/stockroom/pkg/db/pagination"
	"gorm.io/gorm"
)

// StockFields is the projection the assembly walk reads for each component.
type StockFields struct {
	ID                 snowflake.ID
	Name               string
	InStock            float64
	IsAssembly         bool
	MinAllowedQuantity float64
}

type ListItemFilter struct {
	Name       string
	CategoryID *snowflake.ID
	Assembly   *bool
}

// Repository is the item store boundary. Every method takes the gorm handle so
// a caller-owned transaction threads through unchanged.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, item *Item) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Item, error)
	FindStockFields(ctx context.Context, db *gorm.DB, id snowflake.ID) (*StockFields, error)
	List(ctx context.Context, db *gorm.DB, filter ListItemFilter, page pagination.Pagination) ([]*Item, error)

	// AdjustStock atomically applies delta to in_stock and the matching
	// lockstep counter (total_in for credits, total_out for debits; assembled
	// credits additionally bump total_assembled), returning the updated row.
	// Returns (nil, nil) when the item does not exist.
	AdjustStock(ctx context.Context, db *gorm.DB, id snowflake.ID, delta float64, assembled bool) (*Item, error)

	// SetStock overwrites in_stock without touching the counters and returns
	// the item as it was before the write.
	SetStock(ctx context.Context, db *gorm.DB, id snowflake.ID, newAmount float64) (*Item, error)

	UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error

	BomComponents(ctx context.Context, db *gorm.DB, bom []BomEntry) ([]BomComponent, error)
	CategoryName(ctx context.Context, db *gorm.DB, id snowflake.ID) (string, error)
	ProjectRefs(ctx context.Context, db *gorm.DB, itemID snowflake.ID) ([]ProjectRef, error)
	AssociateProjects(ctx context.Context, db *gorm.DB, itemID snowflake.ID, projectIDs []snowflake.ID) error
}
