package models

import (
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Input is one field a caller must supply at prediction time, owned by
// its model. Lat/Lng are set only for map inputs, Options only for
// categorical ones.
type Input struct {
	bun.BaseModel `bun:"table:inputs"`

	ID          int64     `bun:"id,pk,autoincrement"`
	ModelID     uuid.UUID `bun:"model_id,type:uuid,notnull"`
	ColumnName  string    `bun:"column_name"`
	Lat         string    `bun:"lat,nullzero"`
	Lng         string    `bun:"lng,nullzero"`
	Label       string    `bun:"label,notnull"`
	Type        string    `bun:"type,notnull"`
	Options     []string  `bun:"options,type:jsonb,nullzero"`
	Description string    `bun:"description,nullzero"`
	Unit        string    `bun:"unit,nullzero"`

	Model *Model `bun:"rel:belongs-to,join:model_id=id"`
}
