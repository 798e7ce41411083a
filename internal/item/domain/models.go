package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// BomEntry is one line of an assembly's bill of materials: the component item
// and how many of it one unit of the assembly consumes.
type BomEntry struct {
	ItemID           snowflake.ID `json:"item_id"`
	RequiredQuantity float64      `json:"required_quantity"`
}

type Property struct {
	Name  string  `json:"name"`
	Unit  string  `json:"unit,omitempty"`
	Value float64 `json:"value"`
}

// Item is a stocked part or an assembly built from other items.
//
// IsAssembly is derived once at creation from whether a BOM was supplied and is
// not independently mutable. The BOM graph must be acyclic; this is a documented
// contract, not something the engine enforces at runtime.
type Item struct {
	ID                 snowflake.ID                  `gorm:"primaryKey" json:"id"`
	Name               string                        `gorm:"not null" json:"name"`
	SKU                string                        `gorm:"uniqueIndex;not null" json:"sku"`
	InStock            float64                       `gorm:"not null;default:0" json:"in_stock"`
	MeasurementUnit    string                        `json:"measurement_unit,omitempty"`
	UnitPrice          float64                       `json:"unit_price,omitempty"`
	IsAssembly         bool                          `gorm:"not null;default:false" json:"is_assembly"`
	Bom                datatypes.JSONSlice[BomEntry] `gorm:"type:jsonb" json:"bom,omitempty"`
	MinAllowedQuantity float64                       `gorm:"not null;default:0" json:"min_allowed_quantity"`
	ShopLink           string                        `json:"shop_link,omitempty"`
	Location           string                        `json:"location,omitempty"`
	Properties         datatypes.JSONSlice[Property] `gorm:"type:jsonb" json:"properties,omitempty"`
	CategoryID         *snowflake.ID                 `gorm:"index" json:"category_id,omitempty"`
	HistoryID          *snowflake.ID                 `json:"history_id,omitempty"`
	TotalIn            float64                       `gorm:"not null;default:0" json:"total_in"`
	TotalOut           float64                       `gorm:"not null;default:0" json:"total_out"`
	TotalAssembled     float64                       `gorm:"not null;default:0" json:"total_assembled"`
	CreatedAt          time.Time                     `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time                     `gorm:"not null" json:"updated_at"`
}

// ItemProject associates an item with a project.
type ItemProject struct {
	ItemID    snowflake.ID `gorm:"primaryKey" json:"item_id"`
	ProjectID snowflake.ID `gorm:"primaryKey;index" json:"project_id"`
}

// RawMaterial is one flattened leaf of a BOM tree: a non-assembly item and the
// total quantity of it required to build one unit of the resolved root.
type RawMaterial struct {
	ItemID           snowflake.ID `json:"item_id"`
	Name             string       `json:"name"`
	RequiredQuantity float64      `json:"required_quantity"`
	InStock          float64      `json:"in_stock"`
}

// BomComponent is a BOM entry joined with the component's display fields.
type BomComponent struct {
	ItemID           snowflake.ID `json:"item_id"`
	Name             string       `json:"name"`
	RequiredQuantity float64      `json:"required_quantity"`
	InStock          float64      `json:"in_stock"`
	IsAssembly       bool         `json:"is_assembly"`
}

type ProjectRef struct {
	ID   snowflake.ID `json:"id"`
	Name string       `json:"name"`
}

// ItemDetail is an item with its BOM, category and project references resolved.
type ItemDetail struct {
	Item
	BomDetails   []BomComponent `json:"bom_details,omitempty"`
	CategoryName string         `json:"category_name,omitempty"`
	Projects     []ProjectRef   `json:"projects,omitempty"`
}
