package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// ActionKind is the closed set of stock-affecting actions a ledger records.
type ActionKind string

const (
	ActionCreate         ActionKind = "create"
	ActionUpdateQuantity ActionKind = "update_quantity"
	ActionSetQuantity    ActionKind = "set_quantity"
	ActionAssemble       ActionKind = "assemble"
)

// Action is one stock-affecting event. CreatedAt may be caller-supplied for
// backdated corrections; RecordedAt is always the time of the write.
type Action struct {
	Kind       ActionKind    `json:"kind"`
	Quantity   float64       `json:"quantity"`
	PrevStock  *float64      `json:"prev_stock,omitempty"`
	ActorID    snowflake.ID  `json:"actor_id"`
	ProjectID  *snowflake.ID `json:"project_id,omitempty"`
	Comment    string        `json:"comment,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	RecordedAt time.Time     `json:"recorded_at"`
}

// Ledger is the per-item action log. One row per item, created lazily on the
// first action; Actions stays sorted by CreatedAt ascending on every insert.
type Ledger struct {
	ID        snowflake.ID                `gorm:"primaryKey" json:"id"`
	ItemID    snowflake.ID                `gorm:"uniqueIndex;not null" json:"item_id"`
	Actions   datatypes.JSONSlice[Action] `gorm:"type:jsonb" json:"actions"`
	CreatedAt time.Time                   `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time                   `gorm:"not null" json:"updated_at"`
}

// EnrichedAction is an action with actor and project display data joined in.
type EnrichedAction struct {
	Action
	ActorName   string `json:"actor_name,omitempty"`
	ProjectName string `json:"project_name,omitempty"`
}

type AppendResult struct {
	Created bool
}
