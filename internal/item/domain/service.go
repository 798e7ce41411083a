package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stockroomhq/stockroom/pkg/db/pagination"
)

type ListItemRequest struct {
	PageToken  string
	PageSize   int
	Name       string
	CategoryID *snowflake.ID
	Assembly   *bool
}

type ListItemResponse struct {
	pagination.PageInfo
	Items []Item `json:"items"`
}

type CreateItemRequest struct {
	ActorID            snowflake.ID
	Name               string
	SKU                string
	InStock            float64
	MeasurementUnit    string
	UnitPrice          float64
	Bom                []BomEntry
	MinAllowedQuantity float64
	ShopLink           string
	Location           string
	Properties         []Property
	CategoryID         *snowflake.ID
	ProjectIDs         []snowflake.ID
	OccurredAt         *time.Time
}

// UpdateItemRequest patches item detail fields. Stock is never updated through
// this path; it moves only through AdjustQuantity, SetQuantity and Assemble.
type UpdateItemRequest struct {
	ItemID             snowflake.ID
	Name               *string
	MeasurementUnit    *string
	UnitPrice          *float64
	MinAllowedQuantity *float64
	ShopLink           *string
	Location           *string
	CategoryID         *snowflake.ID
}

type AdjustQuantityRequest struct {
	ActorID    snowflake.ID
	ItemID     snowflake.ID
	Amount     float64
	ProjectID  *snowflake.ID
	Comment    string
	OccurredAt *time.Time
}

type SetQuantityRequest struct {
	ActorID   snowflake.ID
	ItemID    snowflake.ID
	NewAmount float64
	Comment   string
}

type AssembleRequest struct {
	ActorID    snowflake.ID
	ItemID     snowflake.ID
	Quantity   float64
	OccurredAt *time.Time
}

type Service interface {
	List(context.Context, ListItemRequest) (ListItemResponse, error)
	GetByID(ctx context.Context, id snowflake.ID) (ItemDetail, error)
	Create(context.Context, CreateItemRequest) (Item, error)
	UpdateFields(context.Context, UpdateItemRequest) (Item, error)
	RawBomMaterials(ctx context.Context, id snowflake.ID) ([]RawMaterial, error)
	AdjustQuantity(context.Context, AdjustQuantityRequest) (Item, error)
	SetQuantity(context.Context, SetQuantityRequest) (Item, error)
	Assemble(context.Context, AssembleRequest) (Item, error)
}

var (
	ErrNotFound        = errors.New("item_not_found")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidQuantity = errors.New("invalid_quantity")
	ErrInvalidBom      = errors.New("invalid_bom")
	ErrSKUExists       = errors.New("sku_exists")
	ErrNoChange        = errors.New("no_change")
)

// InsufficientStockError names the component that cut an assembly short.
type InsufficientStockError struct {
	ItemID    snowflake.ID
	Name      string
	Required  float64
	Available float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock of %q insufficient. Required: %v, Available: %v", e.Name, e.Required, e.Available)
}
